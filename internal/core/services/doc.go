// Package services is the MediaMind core.
//
// Offline, IngestService uploads new local PDFs, ExtractService turns stored
// PDFs into one chunk per page (with OCR fallback for scanned pages) and
// IndexService embeds the chunks and publishes a versioned snapshot. At
// request time RetrievalService ranks snapshot passages for a question and
// SynthesisService asks the language model for an answer citing them.
//
// Every side effect goes through a port in core/ports/driven, so each
// service is tested against the in-memory adapters.
package services
