package configuration

import (
	"github.com/G-Research/genie/internal/common/logging"
)

const (
	StoreTypeMemDb    = "memdb"
	StoreTypePostgres = "postgres"
)

type BrokerConfig struct {
	Logging  logging.Config
	Store    StoreConfig
	Postgres PostgresConfig
	Jobs     JobsConfig
	Metrics  MetricsConfig
}

type StoreConfig struct {
	// Either memdb or postgres
	Type string `validate:"oneof=memdb postgres"`
}

type PostgresConfig struct {
	MaxOpenConns int `validate:"gte=0"`
	// libpq connection parameters, e.g. host, port, user, password, dbname and sslmode
	Connection map[string]string
}

type JobsConfig struct {
	// Allow any job status to follow any other, as older clients expect.
	// When false, status changes must follow INIT -> RUNNING -> SUCCEEDED/KILLED/FAILED.
	LegacyTransitions bool
}

type MetricsConfig struct {
	Namespace string `validate:"required"`
}
