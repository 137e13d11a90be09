// Package geniectl implements the genie command line tool: it loads resources into a broker and runs
// resolutions against them.
package geniectl

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/utils/clock"

	"github.com/G-Research/genie/internal/broker/configuration"
	"github.com/G-Research/genie/internal/broker/metrics"
	"github.com/G-Research/genie/internal/broker/repository"
	"github.com/G-Research/genie/internal/broker/repository/postgres"
	"github.com/G-Research/genie/internal/broker/service"
	"github.com/G-Research/genie/internal/common/brokercontext"
	"github.com/G-Research/genie/internal/geniectl/build"
)

type App struct {
	// Parameters passed to the CLI by the user.
	Params *Params
	// Out is used to write the output. Defaults to standard out,
	// but can be overridden in tests to make assertions on the application's output.
	Out io.Writer
	// Broker metrics are registered here.
	Registerer prometheus.Registerer
	Clock      clock.PassiveClock
}

// Params holds the broker configuration resolved from config files and the environment.
type Params struct {
	Config configuration.BrokerConfig
}

// New instantiates an App with default parameters, writing to standard output.
func New() *App {
	return &App{
		Params:     &Params{},
		Out:        os.Stdout,
		Registerer: prometheus.NewRegistry(),
		Clock:      clock.RealClock{},
	}
}

// Version prints build information (e.g., current git commit) to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
	fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
	fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
	fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)
	return nil
}

// newService builds a broker service over the configured store. The returned function releases the store.
func (a *App) newService(ctx *brokercontext.Context) (*service.Service, func(), error) {
	config := a.Params.Config
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	m := metrics.New(config.Metrics.Namespace)
	if err := a.Registerer.Register(m); err != nil {
		closeStore()
		return nil, nil, errors.WithStack(err)
	}
	release := func() {
		a.Registerer.Unregister(m)
		closeStore()
	}
	return service.New(store, config.Jobs, a.Clock, m), release, nil
}

func (a *App) openStore(ctx *brokercontext.Context) (repository.Store, func(), error) {
	switch a.Params.Config.Store.Type {
	case configuration.StoreTypePostgres:
		db, err := postgres.OpenPgxPool(ctx, a.Params.Config.Postgres)
		if err != nil {
			return nil, nil, errors.WithMessage(err, "failed to connect to database")
		}
		return postgres.NewPostgresStore(db), db.Close, nil
	default:
		store, err := repository.NewMemDbStore()
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

// MigrateDatabase brings the configured postgres database up to the latest schema.
func (a *App) MigrateDatabase(ctx *brokercontext.Context) error {
	if a.Params.Config.Store.Type != configuration.StoreTypePostgres {
		return errors.Errorf("store type is %q; migrations only apply to %q", a.Params.Config.Store.Type, configuration.StoreTypePostgres)
	}
	db, err := postgres.OpenPgxPool(ctx, a.Params.Config.Postgres)
	if err != nil {
		return errors.WithMessage(err, "failed to connect to database")
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return errors.WithMessage(err, "failed to migrate database")
	}
	fmt.Fprintln(a.Out, "Database migrated")
	return nil
}
