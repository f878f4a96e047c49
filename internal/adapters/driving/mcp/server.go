package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/mediamind/internal/logger"
)

// Version is the MCP server version.
const Version = "0.1.0"

const (
	serverName        = "mediamind"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Server exposes passage search, cited answers and document resources to
// MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer creates a new MCP server with the given ports. Tools and
// resources for optional ports are registered only when the port is set.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	impl := &mcp.Implementation{
		Name:    serverName,
		Title:   "MediaMind",
		Version: Version,
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(impl, &mcp.ServerOptions{
			Instructions: instructions(ports),
		}),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// instructions tells the client which capabilities this instance offers.
func instructions(ports *Ports) string {
	var b strings.Builder
	b.WriteString("MediaMind searches a library of PDF documents page by page. ")
	b.WriteString("Use the search tool to find relevant pages.")
	if ports.Answer != nil {
		b.WriteString(" Use the ask tool for an answer that cites pages by their [n] markers.")
	}
	if ports.Preview != nil {
		b.WriteString(" Read " + uriScheme + "documents/{key} for a download link and " +
			uriScheme + "pages/{page}/{key} for a rendered page image.")
	}
	return b.String()
}

// Run serves MCP over stdio until the context is cancelled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("MCP server running on stdio (%s)", strings.Join(s.ports.capabilities(), ", "))
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until the context is
// cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP server shutdown: %v", err)
		}
	}()

	logger.Info("MCP server listening on http://localhost%s (%s)", addr, strings.Join(s.ports.capabilities(), ", "))
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
