package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

// uriScheme prefixes every resource URI this server answers.
const uriScheme = "mediamind://"

const (
	documentsPath = uriScheme + "documents/"
	pagesPath     = uriScheme + "pages/"
)

// registerResources exposes document links and page renderings. Both need
// the preview port.
func (s *Server) registerResources() {
	if s.ports.Preview == nil {
		return
	}

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsPath + "{+key}",
		Name:        "document-url",
		Description: "Time-limited download URL of a stored PDF",
		MIMEType:    "text/uri-list",
	}, s.handleDocumentResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: pagesPath + "{page}/{+key}",
		Name:        "page-preview",
		Description: "PNG rendering of one page of a stored PDF",
		MIMEType:    "image/png",
	}, s.handlePageResource)
}

func (s *Server) handleDocumentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	key, ok := documentKey(uri)
	if !ok {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	link, err := s.ports.Preview.DocumentURL(ctx, key)
	if err != nil {
		return nil, resourceError(uri, "presigning document", err)
	}
	return single(&mcp.ResourceContents{URI: uri, MIMEType: "text/uri-list", Text: link}), nil
}

func (s *Server) handlePageResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := req.Params.URI
	page, key, ok := pageRef(uri)
	if !ok {
		return nil, mcp.ResourceNotFoundError(uri)
	}

	png, err := s.ports.Preview.RenderPage(ctx, key, page)
	if err != nil {
		return nil, resourceError(uri, "rendering page", err)
	}
	return single(&mcp.ResourceContents{URI: uri, MIMEType: "image/png", Blob: png}), nil
}

func single(c *mcp.ResourceContents) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{c}}
}

// resourceError reports an unknown key or page as a missing resource so
// clients can tell it apart from a backend failure.
func resourceError(uri, action string, err error) error {
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) {
		return mcp.ResourceNotFoundError(uri)
	}
	return fmt.Errorf("%s: %w", action, err)
}

// documentKey returns the storage key of mediamind://documents/{key}.
// Percent-encoded keys are decoded.
func documentKey(uri string) (string, bool) {
	rest, ok := strings.CutPrefix(uri, documentsPath)
	if !ok {
		return "", false
	}
	return decodeKey(rest)
}

// pageRef returns the 1-based page and storage key of
// mediamind://pages/{page}/{key}.
func pageRef(uri string) (int, string, bool) {
	rest, ok := strings.CutPrefix(uri, pagesPath)
	if !ok {
		return 0, "", false
	}
	num, rawKey, ok := strings.Cut(rest, "/")
	if !ok {
		return 0, "", false
	}
	page, err := strconv.Atoi(num)
	if err != nil || page < 1 {
		return 0, "", false
	}
	key, ok := decodeKey(rawKey)
	return page, key, ok
}

func decodeKey(raw string) (string, bool) {
	key, err := url.PathUnescape(raw)
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}
