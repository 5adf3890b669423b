// File: cmd/root_test.go
package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPristineRootCmd builds a fresh command tree without the persistent
// bootstrap hook so tests never touch the global logger or config state.
func newPristineRootCmd() *cobra.Command {
	testCmd := &cobra.Command{
		Use:     rootCmd.Use,
		Short:   rootCmd.Short,
		Version: Version,
		Run:     func(cmd *cobra.Command, args []string) { _ = cmd.Help() },
	}
	testCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	testCmd.AddCommand(newSmokeCmd())
	return testCmd
}

func TestRootCmd_VersionFlag(t *testing.T) {
	testRootCmd := newPristineRootCmd()
	var out bytes.Buffer
	testRootCmd.SetOut(&out)
	testRootCmd.SetErr(&out)
	testRootCmd.SetArgs([]string{"--version"})

	err := testRootCmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), Version)
}

func TestRootCmd_NoArgs(t *testing.T) {
	testRootCmd := newPristineRootCmd()
	var out bytes.Buffer
	testRootCmd.SetOut(&out)
	testRootCmd.SetErr(&out)
	testRootCmd.SetArgs([]string{})

	err := testRootCmd.ExecuteContext(context.Background())

	require.NoError(t, err)
	assert.Contains(t, out.String(), "chatdriver drives headless-browser sessions")
}

func TestSmokeCmd_Flags(t *testing.T) {
	smoke := newSmokeCmd()

	selector := smoke.Flags().Lookup("selector")
	require.NotNil(t, selector)
	assert.Equal(t, "body", selector.DefValue)

	username := smoke.Flags().Lookup("username")
	require.NotNil(t, username)
	assert.Equal(t, "smoke", username.DefValue)
}
