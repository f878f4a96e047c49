package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullPorts() *Ports {
	return &Ports{
		Search:  &mockSearchService{},
		Answer:  &mockAnswerService{},
		Preview: &mockPreviewService{},
	}
}

func TestPorts(t *testing.T) {
	tests := map[string]struct {
		ports   *Ports
		wantErr bool
		caps    []string
	}{
		"nil":          {ports: nil, wantErr: true},
		"answer only":  {ports: &Ports{Answer: &mockAnswerService{}}, wantErr: true},
		"search only":  {ports: &Ports{Search: &mockSearchService{}}, caps: []string{"search"}},
		"no preview":   {ports: &Ports{Search: &mockSearchService{}, Answer: &mockAnswerService{}}, caps: []string{"search", "ask"}},
		"every port":   {ports: fullPorts(), caps: []string{"search", "ask", "preview"}},
		"preview only": {ports: &Ports{Search: &mockSearchService{}, Preview: &mockPreviewService{}}, caps: []string{"search", "preview"}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			err := tc.ports.Validate()
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrMissingSearchService)
				srv, err := NewServer(tc.ports)
				assert.ErrorIs(t, err, ErrMissingSearchService)
				assert.Nil(t, srv)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.caps, tc.ports.capabilities())
		})
	}
}

func TestInstructions_FollowPorts(t *testing.T) {
	minimal := instructions(&Ports{Search: &mockSearchService{}})
	assert.Contains(t, minimal, "search tool")
	assert.NotContains(t, minimal, "ask tool")
	assert.NotContains(t, minimal, uriScheme)

	full := instructions(fullPorts())
	assert.Contains(t, full, "ask tool")
	assert.Contains(t, full, uriScheme+"documents/{key}")
	assert.Contains(t, full, uriScheme+"pages/{page}/{key}")
}

// connect wires an in-memory client session to a server built from ports.
func connect(t *testing.T, ports *Ports) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	srv, err := NewServer(ports)
	require.NoError(t, err)

	clientT, serverT := mcp.NewInMemoryTransports()
	ss, err := srv.server.Connect(ctx, serverT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0"}, nil)
	cs, err := client.Connect(ctx, clientT, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func TestServer_ListsToolsForConfiguredPorts(t *testing.T) {
	tests := map[string]struct {
		ports *Ports
		want  []string
	}{
		"search only": {ports: &Ports{Search: &mockSearchService{}}, want: []string{"search"}},
		"every port":  {ports: fullPorts(), want: []string{"ask", "search"}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cs := connect(t, tc.ports)

			res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
			require.NoError(t, err)

			names := make([]string, 0, len(res.Tools))
			for _, tool := range res.Tools {
				names = append(names, tool.Name)
			}
			assert.ElementsMatch(t, tc.want, names)
		})
	}
}
