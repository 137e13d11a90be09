package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/genie/internal/geniectl"
)

func criteriaCmd(a *geniectl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "criteria",
		Short: "Convert cluster criteria to and from their flat form",
	}
	cmd.AddCommand(
		criteriaEncodeCmd(a),
		criteriaDecodeCmd(a),
	)
	return cmd
}

func criteriaEncodeCmd(a *geniectl.App) *cobra.Command {
	return &cobra.Command{
		Use:     "encode <set>...",
		Short:   "Print the flat form of the given criteria sets, each a comma separated list of tags",
		Example: "genie criteria encode 'sched:sla,type:yarn' sched:adhoc",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.EncodeCriteria(args)
		},
	}
}

func criteriaDecodeCmd(a *geniectl.App) *cobra.Command {
	return &cobra.Command{
		Use:     "decode <criteria>",
		Short:   "Print the criteria sets held in a flat form",
		Example: "genie criteria decode 'sched:sla,type:yarn|sched:adhoc'",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.DecodeCriteria(args[0])
		},
	}
}
