package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeCmd_HasAddrFlag(t *testing.T) {
	flag := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, flag)
	assert.Equal(t, "", flag.DefValue)
}

func TestServeCmd_RequiresAnswerService(t *testing.T) {
	SetServices(&Services{})
	defer SetServices(nil)
	defer resetFlags()

	_, err := executeCommand("serve", "--addr", "127.0.0.1:0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating server")
}
