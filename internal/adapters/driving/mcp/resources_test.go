package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediamind/internal/core/domain"
)

func TestDocumentKey(t *testing.T) {
	tests := map[string]struct {
		uri    string
		key    string
		wantOK bool
	}{
		"plain key":     {"mediamind://documents/raw/pdf/report.pdf", "raw/pdf/report.pdf", true},
		"escaped space": {"mediamind://documents/raw/pdf/annual%20report.pdf", "raw/pdf/annual report.pdf", true},
		"other scheme":  {"file://documents/raw/pdf/report.pdf", "", false},
		"no key":        {"mediamind://documents/", "", false},
		"bad escape":    {"mediamind://documents/raw/%zz.pdf", "", false},
		"empty":         {"", "", false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			key, ok := documentKey(tc.uri)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.key, key)
		})
	}
}

func TestPageRef(t *testing.T) {
	tests := map[string]struct {
		uri    string
		page   int
		key    string
		wantOK bool
	}{
		"page and key":  {"mediamind://pages/3/raw/pdf/a.pdf", 3, "raw/pdf/a.pdf", true},
		"escaped key":   {"mediamind://pages/1/raw/pdf/my%20cats.pdf", 1, "raw/pdf/my cats.pdf", true},
		"not a number":  {"mediamind://pages/x/raw/pdf/a.pdf", 0, "", false},
		"page zero":     {"mediamind://pages/0/raw/pdf/a.pdf", 0, "", false},
		"missing key":   {"mediamind://pages/3", 0, "", false},
		"document path": {"mediamind://documents/3/a.pdf", 0, "", false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			page, key, ok := pageRef(tc.uri)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.page, page)
			assert.Equal(t, tc.key, key)
		})
	}
}

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func previewServer(t *testing.T, preview *mockPreviewService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Search: &mockSearchService{}, Preview: preview})
	require.NoError(t, err)
	return server
}

func TestServer_DocumentResource(t *testing.T) {
	ctx := context.Background()
	preview := &mockPreviewService{url: "https://minio.local/b/raw/pdf/a.pdf?X-Amz-Signature=x"}
	server := previewServer(t, preview)

	result, err := server.handleDocumentResource(ctx, readRequest("mediamind://documents/raw/pdf/a.pdf"))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, preview.url, result.Contents[0].Text)
	assert.Equal(t, "text/uri-list", result.Contents[0].MIMEType)
	assert.Equal(t, "raw/pdf/a.pdf", preview.key)

	_, err = server.handleDocumentResource(ctx, readRequest("mediamind://other/x"))
	assert.Error(t, err)
}

func TestServer_PageResource(t *testing.T) {
	ctx := context.Background()
	preview := &mockPreviewService{png: []byte("\x89PNG")}
	server := previewServer(t, preview)

	result, err := server.handlePageResource(ctx, readRequest("mediamind://pages/2/raw/pdf/a.pdf"))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, []byte("\x89PNG"), result.Contents[0].Blob)
	assert.Equal(t, "image/png", result.Contents[0].MIMEType)
	assert.Equal(t, 2, preview.page)

	_, err = server.handlePageResource(ctx, readRequest("mediamind://pages/0/raw/pdf/a.pdf"))
	assert.Error(t, err)
}

func TestResourceError(t *testing.T) {
	const uri = "mediamind://pages/9/raw/pdf/a.pdf"

	outOfRange := resourceError(uri, "rendering page", domain.NewValidationError("page", "9 out of range"))
	assert.Equal(t, mcp.ResourceNotFoundError(uri).Error(), outOfRange.Error())

	missing := resourceError(uri, "presigning document", domain.ErrNotFound)
	assert.Equal(t, mcp.ResourceNotFoundError(uri).Error(), missing.Error())

	backend := resourceError(uri, "rendering page", errors.New("pdftoppm: exit status 1"))
	assert.EqualError(t, backend, "rendering page: pdftoppm: exit status 1")
}
