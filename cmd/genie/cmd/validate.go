package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/genie/internal/geniectl"
)

func validateCmd(a *geniectl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <fixture>",
		Short: "Check that every resource in a fixture file would be accepted",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext(cmd)
			defer stop()
			return a.Validate(ctx, args[0])
		},
	}
	return cmd
}
