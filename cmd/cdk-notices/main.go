package main

import (
	"context"
	"fmt"
	"os"

	clicommon "github.com/klothoplatform/cdk-notices/pkg/cli_common"
	"github.com/klothoplatform/cdk-notices/pkg/options"
	"github.com/lithammer/dedent"
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X main.Version=..."
var Version = "0.0.0-dev"

type rootConfig struct {
	clicommon.CommonConfig
	setOption map[string]string
}

func newRootCmd() *cobra.Command {
	cfg := &rootConfig{}
	root := &cobra.Command{
		Use:   "cdk-notices",
		Short: "Show the notices that affect your CDK CLI and app",
		Long: dedent.Dedent(`
			Shows notices about known issues and security advisories that affect the CDK CLI version,
			the construct libraries your app was synthesized with, or your bootstrap stack.

			Options are persisted in ~/.cdk/options.yaml ($CDK_HOME/options.yaml when CDK_HOME is set):

			    notices.url            override the notices feed
			    notices.disabled       stop showing notices
			    notices.acknowledged   notices you no longer want to see (see "acknowledge")
		`),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(cfg.setOption) == 0 {
				return cmd.Help()
			}
			_, err := loadOptions(cmd.Context(), cfg)
			return err
		},
	}
	clicommon.SetupRoot(root, &cfg.CommonConfig)
	root.PersistentFlags().StringToStringVar(&cfg.setOption, "set-option", nil, "Sets a CLI option, e.g. notices.disabled=true")

	root.AddCommand(
		newNoticesCmd(cfg),
		newAcknowledgeCmd(cfg),
		newVersionCmd(cfg),
	)
	return root
}

// loadOptions persists any --set-option values, then reads the options.
func loadOptions(ctx context.Context, cfg *rootConfig) (options.Options, error) {
	store, err := options.DefaultStore()
	if err != nil {
		return options.Options{}, err
	}
	if err := store.Set(ctx, cfg.setOption); err != nil {
		return options.Options{}, err
	}
	return store.Read()
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
