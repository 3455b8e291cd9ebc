package main

import (
	"strconv"

	"github.com/klothoplatform/cdk-notices/pkg/logging"
	"github.com/klothoplatform/cdk-notices/pkg/options"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newAcknowledgeCmd(root *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:     "acknowledge <issue-number>",
		Aliases: []string{"ack"},
		Short:   "Stops a notice from being shown",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			issueNumber, err := strconv.Atoi(args[0])
			if err != nil || issueNumber <= 0 {
				return errors.Errorf("invalid issue number %q", args[0])
			}
			ctx := cmd.Context()
			if _, err := loadOptions(ctx, root); err != nil {
				return err
			}
			store, err := options.DefaultStore()
			if err != nil {
				return err
			}
			if err := store.Acknowledge(issueNumber); err != nil {
				return err
			}
			logging.GetLogger(ctx).Debug("Acknowledged notice", zap.Int("issue", issueNumber))
			return nil
		},
	}
}
