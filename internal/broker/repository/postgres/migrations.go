package postgres

import (
	"context"
	"embed"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgtype/pgxtype"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationFs embed.FS

type migration struct {
	id   int
	name string
	sql  string
}

// Migrate updates the supplied database to the latest schema.
// If the database is already at the latest version then this is a no-op.
func Migrate(ctx context.Context, db pgxtype.Querier) error {
	start := time.Now()
	migrations, err := readMigrations(migrationFs, "migrations")
	if err != nil {
		return err
	}
	if err := updateDatabase(ctx, db, migrations); err != nil {
		return err
	}
	log.Infof("Updated genie database in %s", time.Since(start))
	return nil
}

func updateDatabase(ctx context.Context, db pgxtype.Querier, migrations []migration) error {
	version, err := readVersion(ctx, db)
	if err != nil {
		return err
	}
	log.Debugf("Current database version %d", version)

	for _, m := range migrations {
		if m.id <= version {
			continue
		}
		if _, err := db.Exec(ctx, m.sql); err != nil {
			return errors.WithMessagef(err, "failed to apply migration %s", m.name)
		}
		version = m.id
		if err := setVersion(ctx, db, version); err != nil {
			return err
		}
	}
	return nil
}

func readVersion(ctx context.Context, db pgxtype.Querier) (int, error) {
	_, err := db.Exec(ctx, `CREATE SEQUENCE IF NOT EXISTS database_version START WITH 0 MINVALUE 0;`)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	var version int
	if err := db.QueryRow(ctx, `SELECT last_value FROM database_version`).Scan(&version); err != nil {
		return 0, errors.WithStack(err)
	}
	return version, nil
}

func setVersion(ctx context.Context, db pgxtype.Querier, version int) error {
	_, err := db.Exec(ctx, `SELECT setval('database_version', $1)`, version)
	return errors.WithStack(err)
}

// readMigrations loads every file in dir named <id>_<description>.sql, in id order.
func readMigrations(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	migrations := make([]migration, 0, len(entries))
	for _, entry := range entries {
		id, err := strconv.Atoi(strings.Split(entry.Name(), "_")[0])
		if err != nil {
			return nil, errors.Wrapf(err, "migration %s has no numeric prefix", entry.Name())
		}
		sql, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, errors.WithStack(err)
		}
		migrations = append(migrations, migration{id: id, name: entry.Name(), sql: string(sql)})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].id < migrations[j].id })
	return migrations, nil
}
