// Package driving lists what the CLI, TUI, HTTP API and MCP server may ask
// of the core: run a pipeline stage, search, ask and preview.
//
// The services package implements every interface here; adapters take the
// narrowest one they need so they can be tested with small fakes.
package driving
