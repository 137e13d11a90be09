package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/G-Research/genie/internal/common/util"
)

// testDbEnvVar holds the connection string of a postgres server tests may create databases on,
// e.g. "host=localhost port=5432 user=postgres password=psw sslmode=disable".
const testDbEnvVar = "GENIE_TEST_POSTGRES"

// withTestDb creates a dedicated, migrated database for the test and drops it afterwards.
// The test is skipped if no server is configured.
func withTestDb(t *testing.T, action func(db *pgxpool.Pool) error) {
	connectionString := os.Getenv(testDbEnvVar)
	if connectionString == "" {
		t.Skipf("%s not set", testDbEnvVar)
	}
	ctx := context.Background()

	dbName := "test_" + util.NewULID()
	admin, err := pgx.Connect(ctx, connectionString)
	require.NoError(t, err)
	defer admin.Close(ctx)
	_, err = admin.Exec(ctx, "CREATE DATABASE "+dbName)
	require.NoError(t, err)

	defer func() {
		// disconnect all users before cleanup
		_, err := admin.Exec(ctx,
			`SELECT pg_terminate_backend(pg_stat_activity.pid)
			 FROM pg_stat_activity WHERE pg_stat_activity.datname = '`+dbName+`';`)
		if err != nil {
			t.Logf("failed to disconnect users: %s", err)
		}
		if _, err := admin.Exec(ctx, "DROP DATABASE "+dbName); err != nil {
			t.Logf("failed to drop database %s: %s", dbName, err)
		}
	}()

	db, err := pgxpool.Connect(ctx, connectionString+" dbname="+dbName)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, action(db))
}

func truncateAll(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, "TRUNCATE applications, commands, clusters, jobs")
	return errors.WithStack(err)
}
