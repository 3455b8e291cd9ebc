package clicommon

import (
	"testing"

	"github.com/klothoplatform/cdk-notices/pkg/logging"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSetupRoot(t *testing.T) {
	var cfg CommonConfig
	var got *zap.Logger
	root := &cobra.Command{
		Use: "app",
		RunE: func(cmd *cobra.Command, args []string) error {
			got = logging.GetLogger(cmd.Context())
			return nil
		},
	}
	SetupRoot(root, &cfg)
	root.SetArgs([]string{"--verbose", "--json-log", "--color", "never"})

	require.NoError(t, root.Execute())
	assert.NotNil(t, got)
	assert.Same(t, zap.L(), got)

	opts := cfg.LogOpts()
	assert.True(t, opts.Verbose)
	assert.Equal(t, "json", opts.Encoding)
	assert.Equal(t, "never", opts.Color)
	assert.True(t, got.Core().Enabled(zap.DebugLevel))
}
