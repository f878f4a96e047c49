// Package poppler rasterises PDF pages with pdftoppm.
package poppler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/custodia-labs/mediamind/internal/adapters/driven/command"
	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

// Ensure Renderer implements the interface.
var _ driven.PageRenderer = (*Renderer)(nil)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// Renderer renders pages to PNG.
type Renderer struct {
	runner   command.Runner
	pdftoppm string
}

// New creates a renderer from settings.
func New(cfg domain.RenderSettings) *Renderer {
	return NewWithRunner(cfg, command.ExecRunner{})
}

// NewWithRunner creates a renderer with a custom command runner.
func NewWithRunner(cfg domain.RenderSettings, runner command.Runner) *Renderer {
	bin := cfg.PDFToPPMPath
	if bin == "" {
		bin = "pdftoppm"
	}
	return &Renderer{runner: runner, pdftoppm: bin}
}

// RenderPage renders one 1-based page of data at dpi.
func (r *Renderer) RenderPage(ctx context.Context, data []byte, page, dpi int) ([]byte, error) {
	if page < 1 {
		return nil, domain.NewValidationError("page", "must be at least 1")
	}
	if dpi <= 0 {
		dpi = domain.DefaultPreviewDPI
	}

	dir, err := os.MkdirTemp("", "mediamind-render-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(dir)

	input := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(input, data, 0600); err != nil {
		return nil, fmt.Errorf("writing document: %w", err)
	}

	p := strconv.Itoa(page)
	out := filepath.Join(dir, "page")
	if _, err := r.runner.Run(ctx, r.pdftoppm,
		"-png", "-r", strconv.Itoa(dpi), "-f", p, "-l", p, "-singlefile", input, out); err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", page, err)
	}

	png, err := os.ReadFile(out + ".png")
	if err != nil {
		return nil, fmt.Errorf("reading rendered page: %w", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		return nil, fmt.Errorf("rendering page %d: output is not a PNG", page)
	}
	return png, nil
}

// Ping checks that pdftoppm responds.
func (r *Renderer) Ping(ctx context.Context) error {
	if _, err := r.runner.Run(ctx, r.pdftoppm, "-v"); err != nil {
		return fmt.Errorf("pdftoppm: %w", err)
	}
	return nil
}
