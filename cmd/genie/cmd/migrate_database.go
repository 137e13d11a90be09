package cmd

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/G-Research/genie/internal/geniectl"
)

func migrateDbCmd(a *geniectl.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrateDatabase",
		Short: "migrates the broker database to the latest version",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := commandContext(cmd)
			defer stop()
			start := time.Now()
			log.Info("Beginning broker database migration")
			if err := a.MigrateDatabase(ctx); err != nil {
				return err
			}
			log.Infof("Broker database migrated in %s", time.Since(start))
			return nil
		},
	}
	return cmd
}
