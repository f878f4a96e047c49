// Package driven lists what the MediaMind core needs from the outside world.
//
// Storage: ObjectStore holds the raw PDFs (S3 or MinIO), IngestStore is the
// upload dedup table, ChunkStore carries extracted pages from extraction to
// indexing and SnapshotStore publishes and opens versioned index snapshots,
// each pairing a VectorIndex with a MetadataStore.
//
// Documents: PDFParser reads text layers; OCRService and PageImages recover
// text from scanned pages; PageRenderer draws page previews.
//
// Models: EmbeddingService and LLMService.
//
// ChangeNotifier reports new files in the incoming directory for ingest
// --watch. OCRService, PageRenderer, LLMService and ChangeNotifier may be
// nil; the stages that need them degrade or refuse with a typed error.
//
// Only the domain package may be imported from here.
package driven
