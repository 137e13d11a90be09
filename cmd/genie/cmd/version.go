package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/genie/internal/geniectl"
)

func versionCmd() *cobra.Command {
	a := geniectl.New()
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Version()
		},
	}
	return cmd
}
