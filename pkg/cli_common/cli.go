package clicommon

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"

	"github.com/klothoplatform/cdk-notices/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type CommonConfig struct {
	verbose   bool
	jsonLog   bool
	color     string
	profileTo string
}

func (cfg CommonConfig) LogOpts() logging.LogOpts {
	opts := logging.LogOpts{
		Verbose: cfg.verbose,
		Color:   cfg.color,
		DefaultLevels: map[string]zapcore.Level{
			"notices.cache": zap.InfoLevel,
		},
	}
	if cfg.jsonLog {
		opts.Encoding = "json"
	}
	return opts
}

func setupProfiling(commonCfg *CommonConfig) (func(), error) {
	if commonCfg.profileTo == "" {
		return func() {}, nil
	}
	err := os.MkdirAll(filepath.Dir(commonCfg.profileTo), 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}
	profileF, err := os.OpenFile(commonCfg.profileTo, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile file: %w", err)
	}
	err = pprof.StartCPUProfile(profileF)
	if err != nil {
		profileF.Close()
		return nil, fmt.Errorf("failed to start profile: %w", err)
	}
	return func() {
		pprof.StopCPUProfile()
		profileF.Close()
	}, nil
}

// SetupRoot adds the logging and profiling flags to root. Before any command runs, the configured logger replaces
// the global one and is attached to the command's context.
func SetupRoot(root *cobra.Command, commonCfg *CommonConfig) {
	flags := root.PersistentFlags()
	flags.BoolVarP(&commonCfg.verbose, "verbose", "v", false, "Enable verbose logging")
	flags.BoolVar(&commonCfg.jsonLog, "json-log", false, "Enable JSON logging")
	flags.StringVar(&commonCfg.color, "color", "auto", "Colorize logs: auto, always or never")
	flags.StringVar(&commonCfg.profileTo, "profiling", "", "Profile to file")

	profileClose := func() {}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger := commonCfg.LogOpts().NewLogger()
		zap.ReplaceGlobals(logger)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))

		closeProfile, err := setupProfiling(commonCfg)
		if err != nil {
			return err
		}
		profileClose = closeProfile
		return nil
	}

	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		zap.L().Sync() //nolint:errcheck

		profileClose()
	}
}
