// Package tesseract recognises text in PDF images using poppler's
// pdfimages and the tesseract CLI.
package tesseract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/mediamind/internal/adapters/driven/command"
	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.OCRService = (*Service)(nil)

const imagePrefix = "img"

// Service runs OCR through external tools.
type Service struct {
	runner    command.Runner
	tesseract string
	pdfimages string
	language  string
}

// New creates an OCR service from settings.
func New(cfg domain.OCRSettings) *Service {
	return NewWithRunner(cfg, command.ExecRunner{})
}

// NewWithRunner creates an OCR service with a custom command runner.
func NewWithRunner(cfg domain.OCRSettings, runner command.Runner) *Service {
	s := &Service{
		runner:    runner,
		tesseract: cfg.TesseractPath,
		pdfimages: cfg.PDFImagesPath,
		language:  cfg.Language,
	}
	if s.tesseract == "" {
		s.tesseract = "tesseract"
	}
	if s.pdfimages == "" {
		s.pdfimages = "pdfimages"
	}
	if s.language == "" {
		s.language = "eng"
	}
	return s
}

// Ping checks that both tools respond.
func (s *Service) Ping(ctx context.Context) error {
	if _, err := s.runner.Run(ctx, s.tesseract, "--version"); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOCRFailure, err)
	}
	if _, err := s.runner.Run(ctx, s.pdfimages, "-v"); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrOCRFailure, err)
	}
	return nil
}

// OpenImages extracts every embedded image of the document into a
// temporary directory, named by page.
func (s *Service) OpenImages(ctx context.Context, data []byte) (driven.PageImages, error) {
	dir, err := os.MkdirTemp("", "mediamind-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}

	input := filepath.Join(dir, "doc.pdf")
	if err := os.WriteFile(input, data, 0600); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("writing document: %w", err)
	}

	// -p puts the page number in each file name: img-PPP-NNN.png
	if _, err := s.runner.Run(ctx, s.pdfimages, "-png", "-p", input, filepath.Join(dir, imagePrefix)); err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("%w: %v", domain.ErrOCRFailure, err)
	}

	images, err := indexImages(dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return &pageImages{dir: dir, byPage: images}, nil
}

// indexImages groups the extracted files by page number.
func indexImages(dir string) (map[int][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading images: %w", err)
	}

	byPage := make(map[int][]string)
	for _, e := range entries {
		page, ok := pageOf(e.Name())
		if !ok {
			continue
		}
		byPage[page] = append(byPage[page], filepath.Join(dir, e.Name()))
	}
	for _, files := range byPage {
		sort.Strings(files)
	}
	return byPage, nil
}

// pageOf parses the page number out of "img-PPP-NNN.ext".
func pageOf(name string) (int, bool) {
	if !strings.HasPrefix(name, imagePrefix+"-") {
		return 0, false
	}
	parts := strings.Split(strings.TrimPrefix(name, imagePrefix+"-"), "-")
	if len(parts) != 2 {
		return 0, false
	}
	page, err := strconv.Atoi(parts[0])
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}

// Recognise runs tesseract over one encoded image.
func (s *Service) Recognise(ctx context.Context, image []byte) (string, error) {
	f, err := os.CreateTemp("", "mediamind-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(image); err != nil {
		f.Close()
		return "", fmt.Errorf("writing image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing image: %w", err)
	}

	out, err := s.runner.Run(ctx, s.tesseract, f.Name(), "stdout", "-l", s.language)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrOCRFailure, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// pageImages serves images extracted by OpenImages.
type pageImages struct {
	dir    string
	byPage map[int][]string
}

func (p *pageImages) Images(_ context.Context, page int) ([][]byte, error) {
	files := p.byPage[page]
	images := make([][]byte, 0, len(files))
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading image: %w", err)
		}
		images = append(images, data)
	}
	return images, nil
}

func (p *pageImages) Close() error {
	return os.RemoveAll(p.dir)
}
