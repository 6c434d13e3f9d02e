// Package migrations содержит схемы SQL-хранилищ для goose.
package migrations

import "embed"

//go:embed postgres/*.sql sqlite/*.sql
var FS embed.FS
