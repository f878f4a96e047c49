package driven

import "context"

// PDFParser opens PDF documents for text extraction.
type PDFParser interface {
	// Open parses data. Password-protected documents fail with
	// domain.ErrEncrypted; anything else unreadable fails with another error.
	Open(data []byte) (PDFDocument, error)
}

// PDFDocument is an opened PDF.
type PDFDocument interface {
	// NumPages returns the page count.
	NumPages() int

	// PageText returns the text layer of the 1-based page.
	PageText(page int) (string, error)

	// Close releases resources.
	Close() error
}

// OCRService recognises text in the raster images embedded in a PDF.
// This is an optional service - when nil, pages without a text layer yield
// empty chunks.
type OCRService interface {
	// OpenImages prepares the document's embedded images for per-page access.
	OpenImages(ctx context.Context, data []byte) (PageImages, error)

	// Recognise returns the text found in one image.
	Recognise(ctx context.Context, image []byte) (string, error)

	// Ping validates the OCR tooling is available.
	Ping(ctx context.Context) error
}

// PageImages gives access to the embedded images of an opened document.
type PageImages interface {
	// Images returns the encoded images of the 1-based page.
	Images(ctx context.Context, page int) ([][]byte, error)

	// Close releases resources (e.g. temporary files).
	Close() error
}

// PageRenderer rasterises a PDF page for preview.
type PageRenderer interface {
	// RenderPage returns a PNG of the 1-based page at the given resolution.
	RenderPage(ctx context.Context, data []byte, page, dpi int) ([]byte, error)
}
