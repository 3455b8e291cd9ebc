package main

import (
	"bytes"
	"fmt"

	"github.com/alitto/pond"
	"github.com/klothoplatform/cdk-notices/pkg/cli_config"
	"github.com/klothoplatform/cdk-notices/pkg/cloudassembly"
	"github.com/klothoplatform/cdk-notices/pkg/logging"
	"github.com/klothoplatform/cdk-notices/pkg/notices"
	"github.com/klothoplatform/cdk-notices/pkg/versioncheck"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type noticesConfig struct {
	unacknowledged   bool
	appOut           string
	bootstrapVersion int
	noCache          bool
}

func newNoticesCmd(root *rootConfig) *cobra.Command {
	cfg := &noticesConfig{}
	cmd := &cobra.Command{
		Use:   "notices",
		Short: "Shows relevant notices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNotices(cmd, root, cfg)
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&cfg.unacknowledged, "unacknowledged", "u", false, "Only show unacknowledged notices, with a count")
	flags.StringVarP(&cfg.appOut, "app-out", "o", "cdk.out", "Cloud assembly directory of the app")
	flags.IntVar(&cfg.bootstrapVersion, "bootstrap-version", 0, "Version of the bootstrap stack, if known")
	flags.BoolVar(&cfg.noCache, "no-cache", false, "Fetch notices even if the cached copy is still fresh")
	return cmd
}

func runNotices(cmd *cobra.Command, root *rootConfig, cfg *noticesConfig) error {
	ctx := cmd.Context()
	log := logging.GetLogger(ctx)

	opts, err := loadOptions(ctx, root)
	if err != nil {
		return err
	}
	if opts.Notices.Disabled {
		log.Info("Notices are disabled. Run with --set-option notices.disabled=false to turn them back on.")
		return nil
	}

	cacheFile, err := cli_config.CdkCachePath(notices.CacheFileName)
	if err != nil {
		return err
	}
	ds := notices.NewCachedDataSource(cacheFile, &notices.WebsiteDataSource{URL: opts.Notices.URL}, cfg.noCache)

	if asm, err := cloudassembly.Load(cfg.appOut); err == nil {
		log.Debug("Found cloud assembly",
			zap.String("dir", cfg.appOut),
			zap.String("framework", asm.Tree.FrameworkVersion()),
		)
	}

	// Notices and the version check both go to the network, so run them side by side and print in a fixed order.
	var noticesOut bytes.Buffer
	var upgradeMessage string
	pool := pond.New(2, 2)
	pool.Submit(func() {
		n := notices.New(notices.Options{
			AcknowledgedIssueNumbers: opts.AcknowledgedIssues(),
			Output:                   &noticesOut,
			Logger:                   log,
		})
		n.Display(ctx, ds, notices.DisplayOptions{
			CliVersion:       Version,
			OutDir:           cfg.appOut,
			BootstrapVersion: cfg.bootstrapVersion,
			Unacknowledged:   cfg.unacknowledged,
		})
	})
	pool.Submit(func() {
		upgradeMessage = checkVersion(cmd)
	})
	pool.StopAndWait()

	out := cmd.ErrOrStderr()
	if _, err := noticesOut.WriteTo(out); err != nil {
		return err
	}
	if upgradeMessage != "" {
		fmt.Fprintln(out, upgradeMessage)
	}
	return nil
}

func checkVersion(cmd *cobra.Command) string {
	checker, err := versioncheck.NewChecker()
	if err != nil {
		logging.GetLogger(cmd.Context()).Debug("Could not set up version check", zap.Error(err))
		return ""
	}
	return checker.Message(cmd.Context(), Version)
}
