package postgres

import (
	"context"
	"sort"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"

	"github.com/G-Research/genie/internal/broker/configuration"
)

// CreateConnectionString renders libpq key/value connection parameters.
// https://www.postgresql.org/docs/10/libpq-connect.html#id-1.7.3.8.3.5
func CreateConnectionString(values map[string]string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "='" + replacer.Replace(values[k]) + "'"
	}
	return strings.Join(parts, " ")
}

func OpenPgxPool(ctx context.Context, config configuration.PostgresConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(CreateConnectionString(config.Connection))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if config.MaxOpenConns > 0 {
		poolConfig.MaxConns = int32(config.MaxOpenConns)
	}
	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, errors.WithStack(err)
	}
	return db, nil
}
