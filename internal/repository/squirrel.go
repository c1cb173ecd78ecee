package repository

import sq "github.com/Masterminds/squirrel"

// psql is the shared Squirrel statement builder; every query in this package
// goes through it so they all get PostgreSQL dollar placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
