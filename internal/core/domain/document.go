package domain

import (
	"path"
	"strings"
)

// SourceKind records how a chunk's text was obtained.
type SourceKind string

// Chunk sources.
const (
	// SourceNative means the page carried a usable text layer.
	SourceNative SourceKind = "native"

	// SourceScanned means the text came from OCR of the page images.
	SourceScanned SourceKind = "scanned"
)

// IsValid returns true if the source kind is recognised.
func (k SourceKind) IsValid() bool {
	return k == SourceNative || k == SourceScanned
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// Location identifies where in a document a chunk came from.
type Location struct {
	// Page is the 1-based page number.
	Page int `json:"page"`
}

// DocumentSource is a stored document handed to the extractor.
type DocumentSource struct {
	// Path is the storage key the bytes were read from.
	Path string

	// Data is the raw PDF content.
	Data []byte
}

// Chunk is the unit of retrieval: the text of one page of one document.
// Chunks are immutable once the extractor has produced them.
type Chunk struct {
	// ChunkID is a globally unique identifier (UUID).
	ChunkID string `json:"chunk_id"`

	// Source is native or scanned.
	Source SourceKind `json:"source"`

	// DocPath is the storage key of the originating document.
	DocPath string `json:"doc_path"`

	// Loc is the page location within the document.
	Loc Location `json:"loc"`

	// Text is the page text, possibly empty.
	Text string `json:"text"`
}

// SkippedDocument is one entry of the extraction skip report.
type SkippedDocument struct {
	// Path is the storage key of the document.
	Path string `json:"path"`

	// Reason is a short machine-friendly reason such as "encrypted".
	Reason string `json:"reason"`
}

// ExtractionReport summarises one extraction run.
type ExtractionReport struct {
	// Documents is the number of PDF keys considered.
	Documents int

	// Chunks holds every chunk produced, in document then page order.
	Chunks []Chunk

	// Skipped lists rejected documents with their reasons.
	Skipped []SkippedDocument
}

// IsPDFKey reports whether a storage key or path names a PDF file.
func IsPDFKey(key string) bool {
	return strings.EqualFold(path.Ext(key), ".pdf")
}
