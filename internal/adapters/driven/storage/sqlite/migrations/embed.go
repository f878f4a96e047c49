// Package migrations embeds SQL migration files for the SQLite stores.
//
// Each database has its own directory of NNN_name.up.sql files:
// ingest/ for the dedup table and meta/ for per-snapshot metadata.
package migrations

import (
	"embed"
	"io/fs"
)

// FS contains all SQL migration files embedded at compile time.
//
//go:embed ingest/*.sql meta/*.sql
var FS embed.FS

// Ingest returns the migrations of the ingestion dedup database.
func Ingest() fs.FS {
	return sub("ingest")
}

// Meta returns the migrations of a snapshot metadata database.
func Meta() fs.FS {
	return sub("meta")
}

func sub(dir string) fs.FS {
	f, err := fs.Sub(FS, dir)
	if err != nil {
		// Only reachable if the embed pattern above changes.
		panic(err)
	}
	return f
}
