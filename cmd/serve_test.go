package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ServeCommand_help(t *testing.T) {
	buf := new(strings.Builder)

	rootCmd := SetupCLI("x.y.z", "1234567890abcdef")
	rootCmd.SetArgs([]string{"serve", "--help"})
	rootCmd.SetOut(buf)
	err := rootCmd.Execute()
	require.NoError(t, err)

	expectedContains := []string{
		"Run the aframp API server",
		"--port int",
		"--cors-allowed-origins string",
		"--quote-cache-size int",
		"--flutterwave-webhook-secret string",
		"--paystack-webhook-secret string",
		"--mpesa-webhook-secret string",
		"--horizon-url string",
		"--hot-wallet-secret string",
		"--database-url string",
		"--notification-messenger-type string",
		"--operator-email string",
	}

	output := buf.String()
	for _, expected := range expectedContains {
		assert.Contains(t, output, expected)
	}
}

func Test_ServeCommand_missingRequiredFlags(t *testing.T) {
	rootCmd := SetupCLI("x.y.z", "1234567890abcdef")
	rootCmd.SetArgs([]string{"serve"})
	buf := new(strings.Builder)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)

	err := rootCmd.Execute()
	assert.Error(t, err)
}
