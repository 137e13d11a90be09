// Package postgres implements repository.Store on PostgreSQL.
//
// Each resource kind has its own table. The full entity is stored as a JSON document next to the columns used for
// lookups: tags are a JSON array so that tag containment can be answered with the @> operator.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/G-Research/genie/internal/broker/criteria"
	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/broker/repository"
	"github.com/G-Research/genie/internal/common/genieerrors"
)

var dialect = goqu.Dialect("postgres")

var tables = map[model.Kind]exp.IdentifierExpression{
	model.KindApplication: goqu.T("applications"),
	model.KindCommand:     goqu.T("commands"),
	model.KindCluster:     goqu.T("clusters"),
	model.KindJob:         goqu.T("jobs"),
}

var (
	col_id      = goqu.C("id")
	col_name    = goqu.C("name")
	col_version = goqu.C("version")
	col_status  = goqu.C("status")
	col_tags    = goqu.C("tags")
	col_doc     = goqu.C("doc")
)

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) View(ctx context.Context, fn func(repository.Txn) error) error {
	return s.run(ctx, pgx.TxOptions{
		IsoLevel:       pgx.RepeatableRead,
		AccessMode:     pgx.ReadOnly,
		DeferrableMode: pgx.Deferrable,
	}, fn)
}

// Update runs fn in a serializable transaction. If postgres aborts it because of a concurrent writer,
// the returned error is a *genieerrors.ErrConflict.
func (s *PostgresStore) Update(ctx context.Context, fn func(repository.Txn) error) error {
	return s.run(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	}, fn)
}

func (s *PostgresStore) run(ctx context.Context, opts pgx.TxOptions, fn func(repository.Txn) error) error {
	err := s.db.BeginTxFunc(ctx, opts, func(tx pgx.Tx) error {
		return fn(&pgTxn{ctx: ctx, tx: tx})
	})
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.SerializationFailure {
		return errors.WithStack(&genieerrors.ErrConflict{Type: "transaction", Value: pgErr.Message})
	}
	return err
}

type pgTxn struct {
	ctx context.Context
	tx  pgx.Tx
}

// entity is implemented by the pointer types of every resource kind.
type entity[T any] interface {
	*T
	model.Entity
}

func (t *pgTxn) GetApplication(id string) (*model.Application, error) {
	return get[model.Application](t, model.KindApplication, id)
}

func (t *pgTxn) GetCommand(id string) (*model.Command, error) {
	return get[model.Command](t, model.KindCommand, id)
}

func (t *pgTxn) GetCluster(id string) (*model.Cluster, error) {
	return get[model.Cluster](t, model.KindCluster, id)
}

func (t *pgTxn) GetJob(id string) (*model.Job, error) {
	return get[model.Job](t, model.KindJob, id)
}

func (t *pgTxn) Exists(kind model.Kind, id string) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	sql, args, err := dialect.From(table).Select(goqu.L("1")).Where(col_id.Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return false, errors.WithStack(err)
	}
	var one int
	err = t.tx.QueryRow(t.ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.WithStack(err)
	}
	return true, nil
}

func (t *pgTxn) SaveApplication(application *model.Application) error {
	return save(t, application, string(application.Status), nil)
}

func (t *pgTxn) SaveCommand(command *model.Command) error {
	return save(t, command, string(command.Status), nil)
}

func (t *pgTxn) SaveCluster(cluster *model.Cluster) error {
	return save(t, cluster, string(cluster.Status), nil)
}

func (t *pgTxn) SaveJob(job *model.Job) error {
	return save(t, job, string(job.Status), goqu.Record{
		"cluster_criteria": criteria.EncodeClusterCriteria(job.ClusterCriteria),
		"command_criteria": criteria.EncodeTags(job.CommandCriteria),
	})
}

func (t *pgTxn) Delete(kind model.Kind, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	sql, args, err := dialect.Delete(table).Where(col_id.Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return errors.WithStack(err)
	}
	tag, err := t.tx.Exec(t.ctx, sql, args...)
	if err != nil {
		return errors.WithStack(err)
	}
	if tag.RowsAffected() == 0 {
		return &genieerrors.ErrNotFound{Type: string(kind), Value: id}
	}
	return nil
}

func (t *pgTxn) ListApplications(filter repository.Filter) ([]*model.Application, error) {
	return list[model.Application](t, model.KindApplication, filter)
}

func (t *pgTxn) ListCommands(filter repository.Filter) ([]*model.Command, error) {
	return list[model.Command](t, model.KindCommand, filter)
}

func (t *pgTxn) ListClusters(filter repository.Filter) ([]*model.Cluster, error) {
	return list[model.Cluster](t, model.KindCluster, filter)
}

func (t *pgTxn) FindClusters(status model.ClusterStatus, tags model.TagSet) ([]*model.Cluster, error) {
	return list[model.Cluster](t, model.KindCluster, repository.Filter{Statuses: []string{string(status)}, Tags: tags})
}

func (t *pgTxn) FindCommands(clusterId string, statuses ...model.CommandStatus) ([]*model.Command, error) {
	cluster, err := t.GetCluster(clusterId)
	if err != nil {
		return nil, err
	}
	commandIds := cluster.CommandIds()
	if len(commandIds) == 0 {
		return []*model.Command{}, nil
	}
	where := []exp.Expression{col_id.In(commandIds)}
	if len(statuses) > 0 {
		where = append(where, col_status.In(repository.CommandStatusStrings(statuses)))
	}
	commands, err := query[model.Command](t, dialect.From(tables[model.KindCommand]).Select(col_doc).Where(where...))
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 && len(commands) != len(commandIds) {
		return nil, errors.Errorf("cluster %s lists %d commands but only %d exist", clusterId, len(commandIds), len(commands))
	}
	// Rows come back in no particular order; restore the cluster's.
	slices.SortFunc(commands, func(a, b *model.Command) bool {
		return slices.Index(commandIds, a.Id) < slices.Index(commandIds, b.Id)
	})
	return commands, nil
}

func tableFor(kind model.Kind) (exp.IdentifierExpression, error) {
	table, ok := tables[kind]
	if !ok {
		return nil, errors.Errorf("unknown resource kind %q", kind)
	}
	return table, nil
}

func get[T any, PT entity[T]](t *pgTxn, kind model.Kind, id string) (PT, error) {
	var zero PT
	table, err := tableFor(kind)
	if err != nil {
		return zero, err
	}
	results, err := query[T, PT](t, dialect.From(table).Select(col_doc).Where(col_id.Eq(id)))
	if err != nil {
		return zero, err
	}
	if len(results) == 0 {
		return zero, &genieerrors.ErrNotFound{Type: string(kind), Value: id}
	}
	return results[0], nil
}

func list[T any, PT entity[T]](t *pgTxn, kind model.Kind, filter repository.Filter) ([]PT, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	ds := dialect.From(table).Select(col_doc).Order(col_id.Asc())
	if filter.Name != "" {
		ds = ds.Where(col_name.Eq(filter.Name))
	}
	if len(filter.Statuses) > 0 {
		ds = ds.Where(col_status.In(filter.Statuses))
	}
	if !filter.Tags.IsEmpty() {
		tags, err := json.Marshal(filter.Tags)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		ds = ds.Where(goqu.L("? @> ?::jsonb", col_tags, string(tags)))
	}
	return query[T, PT](t, ds)
}

func query[T any, PT entity[T]](t *pgTxn, ds *goqu.SelectDataset) ([]PT, error) {
	sql, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	rows, err := t.tx.Query(t.ctx, sql, args...)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer rows.Close()

	result := make([]PT, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, errors.WithStack(err)
		}
		e := PT(new(T))
		if err := json.Unmarshal(doc, e); err != nil {
			return nil, errors.Wrapf(err, "failed to decode stored %s", e.Kind())
		}
		result = append(result, e)
	}
	return result, errors.WithStack(rows.Err())
}

func save[T any, PT entity[T]](t *pgTxn, e PT, status string, extra goqu.Record) error {
	r := e.GetResource()
	kind := e.Kind()
	if r.Id == "" {
		return &genieerrors.ErrInvalidArgument{Name: "id", Value: r.Id, Message: fmt.Sprintf("a %s must have an id to be saved", kind)}
	}
	table, err := tableFor(kind)
	if err != nil {
		return err
	}

	previousVersion := r.EntityVersion
	r.EntityVersion++
	if err := write(t, table, e, status, previousVersion, extra); err != nil {
		r.EntityVersion = previousVersion
		return err
	}
	return nil
}

func write(t *pgTxn, table exp.IdentifierExpression, e model.Entity, status string, previousVersion int64, extra goqu.Record) error {
	r := e.GetResource()
	kind := e.Kind()
	doc, err := json.Marshal(e)
	if err != nil {
		return errors.WithStack(err)
	}
	tags, err := json.Marshal(r.Tags())
	if err != nil {
		return errors.WithStack(err)
	}
	record := goqu.Record{
		"name":    r.Name,
		"version": r.EntityVersion,
		"status":  status,
		"tags":    string(tags),
		"doc":     string(doc),
	}
	for k, v := range extra {
		record[k] = v
	}

	if previousVersion == 0 {
		record["id"] = r.Id
		sql, args, err := dialect.Insert(table).Rows(record).Prepared(true).ToSQL()
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = t.tx.Exec(t.ctx, sql, args...)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return &genieerrors.ErrAlreadyExists{Type: string(kind), Value: r.Id}
		}
		return errors.WithStack(err)
	}

	sql, args, err := dialect.Update(table).
		Set(record).
		Where(col_id.Eq(r.Id), col_version.Eq(previousVersion)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return errors.WithStack(err)
	}
	tag, err := t.tx.Exec(t.ctx, sql, args...)
	if err != nil {
		return errors.WithStack(err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return t.updateFailure(table, kind, r.Id, previousVersion)
}

// updateFailure explains why an update matched no row.
func (t *pgTxn) updateFailure(table exp.IdentifierExpression, kind model.Kind, id string, expectedVersion int64) error {
	sql, args, err := dialect.From(table).Select(col_version).Where(col_id.Eq(id)).Prepared(true).ToSQL()
	if err != nil {
		return errors.WithStack(err)
	}
	var actualVersion int64
	err = t.tx.QueryRow(t.ctx, sql, args...).Scan(&actualVersion)
	if errors.Is(err, pgx.ErrNoRows) {
		return &genieerrors.ErrNotFound{Type: string(kind), Value: id, Message: "resource was deleted since it was read"}
	}
	if err != nil {
		return errors.WithStack(err)
	}
	return &genieerrors.ErrConflict{
		Type:            string(kind),
		Value:           id,
		ExpectedVersion: expectedVersion,
		ActualVersion:   actualVersion,
	}
}
