package migrations

import "embed"

// FS contains embedded SQLite migrations for wishlist storage.
//
//go:embed *.sql
var FS embed.FS
