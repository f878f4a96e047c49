// Package pdftext reads the text layer of PDF documents with a pure Go parser.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.PDFParser = (*Parser)(nil)

// Parser opens PDFs from memory.
type Parser struct{}

// NewParser creates a PDF parser.
func NewParser() *Parser {
	return &Parser{}
}

// Open parses data. The underlying parser panics on some malformed input;
// those panics are returned as errors.
func (p *Parser) Open(data []byte) (doc driven.PDFDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("%w: malformed PDF: %v", domain.ErrExtraction, r)
		}
	}()

	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF")) {
		return nil, fmt.Errorf("%w: not a PDF", domain.ErrExtraction)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if isEncrypted(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrEncrypted, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}
	return &document{reader: reader}, nil
}

func isEncrypted(err error) bool {
	if errors.Is(err, pdf.ErrInvalidPassword) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "encrypt")
}

// document is an opened PDF.
type document struct {
	reader *pdf.Reader
}

func (d *document) NumPages() int {
	return d.reader.NumPage()
}

// PageText returns the plain text of the 1-based page. Pages without a
// content stream yield an empty string.
func (d *document) PageText(page int) (text string, err error) {
	if page < 1 || page > d.reader.NumPage() {
		return "", fmt.Errorf("page %d out of range 1..%d", page, d.reader.NumPage())
	}

	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: page %d: %v", domain.ErrExtraction, page, r)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() || p.V.Key("Contents").IsNull() {
		return "", nil
	}
	text, err = p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("%w: page %d: %v", domain.ErrExtraction, page, err)
	}
	return text, nil
}

func (d *document) Close() error {
	return nil
}
