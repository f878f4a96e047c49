package cli

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/mediamind/internal/adapters/driving/mcp"
)

var (
	mcpAddr       string
	mcpSearchOnly bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the corpus to MCP clients",
	Long: `Serve the PDF corpus to AI assistants over the Model Context Protocol.

Tools:     search (ranked passages), ask (cited answer)
Resources: mediamind://documents/{key}      presigned download URL
           mediamind://pages/{page}/{key}   page rendered as PNG

Stdio is used unless --addr is given, in which case the streamable HTTP
transport listens there.

Desktop client entry:
  {"mcpServers": {"mediamind": {"command": "mediamind", "args": ["mcp", "serve"]}}}`,
	Example: `  mediamind mcp serve
  mediamind mcp serve --addr 127.0.0.1:8765
  mediamind mcp serve --search-only`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().StringVar(&mcpAddr, "addr", "", "listen on this host:port over HTTP instead of stdio")
	mcpServeCmd.Flags().BoolVar(&mcpSearchOnly, "search-only", false, "do not offer the ask tool")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if mcpAddr != "" {
		if _, _, err := net.SplitHostPort(mcpAddr); err != nil {
			return fmt.Errorf("invalid --addr %q: %w", mcpAddr, err)
		}
	}

	ports := &mcp.Ports{Search: searchService, Preview: previewService}
	if !mcpSearchOnly {
		ports.Answer = answerService
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}
	if mcpAddr != "" {
		return server.RunHTTP(cmd.Context(), mcpAddr)
	}
	return server.Run(cmd.Context())
}
