package static

import _ "embed"

// APIMd contains the embedded api.md file served to integrators.
//
//go:embed api.md
var APIMd string
