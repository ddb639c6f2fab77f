package migrations

import "embed"

// FS contains embedded SQLite migrations for the recent projects store.
//
//go:embed *.sql
var FS embed.FS
