// Package migrations embeds the SQL migration files applied by storage.Open.
package migrations

import "embed"

// FS holds the embedded goose migration files.
//
//go:embed *.sql
var FS embed.FS
