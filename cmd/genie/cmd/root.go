package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/G-Research/genie/internal/broker/configuration"
	"github.com/G-Research/genie/internal/common/brokercontext"
	"github.com/G-Research/genie/internal/common/logging"
	"github.com/G-Research/genie/internal/geniectl"
)

const (
	CustomConfigLocation string = "config"
	StoreType            string = "store"
	// DefaultConfigFile is read from the home directory when no --config is given.
	DefaultConfigFile string = ".genie.yaml"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "genie",
		SilenceUsage: true,
		Short:        "genie matches jobs to the clusters and commands that can run them.",
	}

	addConfigFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		resolveCmd(geniectl.New()),
		validateCmd(geniectl.New()),
		criteriaCmd(geniectl.New()),
		migrateDbCmd(geniectl.New()),
		versionCmd(),
	)

	return cmd
}

func addConfigFlags(flags *pflag.FlagSet) {
	flags.StringSlice(
		CustomConfigLocation,
		[]string{},
		"Fully qualified path to application configuration file (for multiple config files repeat this arg or separate paths with commas)")
	flags.String(StoreType, "", "Overrides store.type from the configuration (memdb or postgres)")
}

// initParams loads the configuration files named on the command line into params
// and reconfigures logging from the result.
func initParams(cmd *cobra.Command, params *geniectl.Params) error {
	paths, err := configPaths(cmd)
	if err != nil {
		return err
	}
	v := viper.New()
	if err := v.BindPFlag("store.type", cmd.Flags().Lookup(StoreType)); err != nil {
		return err
	}
	config, err := configuration.LoadConfig(v, paths)
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		configuration.LogValidationErrors(err)
		return err
	}
	if err := logging.ConfigureLogging(config.Logging, os.Stderr); err != nil {
		return err
	}
	params.Config = config
	return nil
}

// configPaths returns the --config files, or the default file in the home directory if it exists.
func configPaths(cmd *cobra.Command) ([]string, error) {
	paths, err := cmd.Flags().GetStringSlice(CustomConfigLocation)
	if err != nil {
		return nil, err
	}
	if len(paths) > 0 {
		return paths, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		log.Debugf("No home directory, skipping %s: %s", DefaultConfigFile, err)
		return nil, nil
	}
	path := filepath.Join(home, DefaultConfigFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WithStack(err)
	}
	return []string{path}, nil
}

// commandContext returns a context for the command that is cancelled on interrupt.
func commandContext(cmd *cobra.Command) (*brokercontext.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return brokercontext.WithInterrupt(brokercontext.New(ctx, log.WithField("command", cmd.Name())))
}
