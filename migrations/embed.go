// Package migrations holds the versioned PostgreSQL schema. The files are
// embedded so the server and the migrate tool work without a checkout.
package migrations

import "embed"

// FS contains every *.up.sql and *.down.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
