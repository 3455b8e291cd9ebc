package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(root *rootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Shows the CLI version, and whether a newer one is available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadOptions(cmd.Context(), root); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), Version)
			if msg := checkVersion(cmd); msg != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}
			return nil
		},
	}
}
