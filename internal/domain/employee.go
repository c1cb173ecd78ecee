package domain

import "time"

// Employee represents a worker registered with a company. The token is the
// opaque bearer credential kiosk and mobile devices authenticate with.
type Employee struct {
	ID         string
	CompanyID  string
	LocationID *string
	Name       string
	Role       string
	Token      string
	IsActive   bool
	CreatedAt  time.Time
}
