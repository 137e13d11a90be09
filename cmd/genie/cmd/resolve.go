package cmd

import (
	"github.com/spf13/cobra"

	"github.com/G-Research/genie/internal/geniectl"
)

func resolveCmd(a *geniectl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the clusters, and the command on each, that would run a job",
		Long: `Resolve cluster criteria and command criteria against the resources of a fixture file.

Cluster criteria sets are tried in order; tags within a set are separated by commas and sets by '|'.
With --job, the criteria of a job defined in the fixture are used and the job records the result.`,
		Example: `genie resolve --fixture fixture.yaml --cluster-criteria 'sched:sla,type:yarn|sched:adhoc' --command-criteria type:pig
genie resolve --fixture fixture.yaml --job job-1`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var params geniectl.ResolveParams
			var err error
			if params.FixturePath, err = cmd.Flags().GetString("fixture"); err != nil {
				return err
			}
			if params.ClusterCriteria, err = cmd.Flags().GetString("cluster-criteria"); err != nil {
				return err
			}
			if params.CommandCriteria, err = cmd.Flags().GetString("command-criteria"); err != nil {
				return err
			}
			if params.JobId, err = cmd.Flags().GetString("job"); err != nil {
				return err
			}
			ctx, stop := commandContext(cmd)
			defer stop()
			return a.Resolve(ctx, params)
		},
	}
	cmd.Flags().String("fixture", "", "YAML or JSON file of applications, commands, clusters and jobs to load first")
	cmd.Flags().String("cluster-criteria", "", "Ordered cluster criteria sets, e.g. 'sched:sla,type:yarn|sched:adhoc'")
	cmd.Flags().String("command-criteria", "", "Tags the chosen command must carry, e.g. 'type:pig,ver:0.16'")
	cmd.Flags().String("job", "", "Id of a fixture job whose criteria to resolve")
	cmd.MarkFlagsMutuallyExclusive("job", "cluster-criteria")
	cmd.MarkFlagsMutuallyExclusive("job", "command-criteria")
	return cmd
}
