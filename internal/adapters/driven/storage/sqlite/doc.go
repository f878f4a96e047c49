// Package sqlite keeps MediaMind's two SQLite databases, using the cgo-free
// modernc.org/sqlite driver.
//
// IngestStore is the dedup table behind ingestion (data/ingest.db): one row
// per local path already uploaded. MetaStore is the metadata half of an
// index snapshot (snapshots/<version>/meta.db), mapping a vector id to its
// document key, page and text. It is written once by the index build and
// opened read-only afterwards.
//
// Schemas come from the embedded migrations/ingest and migrations/meta
// trees and are applied on open.
package sqlite
