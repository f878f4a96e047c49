// Package domain holds MediaMind's data types and error taxonomy.
//
// A stored PDF becomes one Chunk per page. Indexing turns chunks into a
// snapshot made of VectorRecords and MetaRecords sharing one integer id.
// A Query ranks Passages, and an AskResult pairs them with a cited answer
// or the reason there is none. Settings is the whole runtime configuration.
//
// This package imports the standard library only.
package domain
