// Package migrations holds the schema scripts applied by the SQLite store.
package migrations

import "embed"

// FS holds the numbered up and down scripts.
//
//go:embed *.sql
var FS embed.FS
