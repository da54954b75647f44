package migrations

import "embed"

// FS contains embedded SQLite migrations for list storage.
//
//go:embed *.sql
var FS embed.FS
