package repository

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/G-Research/genie/internal/broker/model"
	"github.com/G-Research/genie/internal/common/genieerrors"
)

const (
	idIndex     = "id"
	nameIndex   = "name"
	statusIndex = "status"
	tagsIndex   = "tags" // one entry per tag, so a lookup by any single tag is cheap
)

var tables = map[model.Kind]string{
	model.KindApplication: "applications",
	model.KindCommand:     "commands",
	model.KindCluster:     "clusters",
	model.KindJob:         "jobs",
}

// record is the row stored in every memdb table. Entity is a private copy never handed out.
type record struct {
	Id      string
	Name    string
	Status  string
	Tags    []string
	Version int64
	Entity  model.Entity
}

// MemDbStore is a Store built on https://github.com/hashicorp/go-memdb.
// Writers are serialised and readers see an immutable snapshot, so every transaction is isolated.
type MemDbStore struct {
	db *memdb.MemDB
}

func NewMemDbStore() (*MemDbStore, error) {
	db, err := memdb.NewMemDB(memDbSchema())
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &MemDbStore{db: db}, nil
}

func (s *MemDbStore) View(ctx context.Context, fn func(Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := s.db.Txn(false)
	defer txn.Abort()
	return fn(&memDbTxn{txn: txn})
}

func (s *MemDbStore) Update(ctx context.Context, fn func(Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	txn := s.db.Txn(true)
	// Abort is a no-op once the transaction has been committed.
	defer txn.Abort()
	if err := fn(&memDbTxn{txn: txn}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

type memDbTxn struct {
	txn *memdb.Txn
}

// entity is implemented by the pointer types of every resource kind.
type entity[T any] interface {
	model.Entity
	Clone() T
}

func (t *memDbTxn) GetApplication(id string) (*model.Application, error) {
	return get[*model.Application](t.txn, model.KindApplication, id)
}

func (t *memDbTxn) GetCommand(id string) (*model.Command, error) {
	return get[*model.Command](t.txn, model.KindCommand, id)
}

func (t *memDbTxn) GetCluster(id string) (*model.Cluster, error) {
	return get[*model.Cluster](t.txn, model.KindCluster, id)
}

func (t *memDbTxn) GetJob(id string) (*model.Job, error) {
	return get[*model.Job](t.txn, model.KindJob, id)
}

func (t *memDbTxn) Exists(kind model.Kind, id string) (bool, error) {
	rec, err := first(t.txn, kind, id)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

func (t *memDbTxn) SaveApplication(application *model.Application) error {
	return save(t.txn, application, string(application.Status))
}

func (t *memDbTxn) SaveCommand(command *model.Command) error {
	return save(t.txn, command, string(command.Status))
}

func (t *memDbTxn) SaveCluster(cluster *model.Cluster) error {
	return save(t.txn, cluster, string(cluster.Status))
}

func (t *memDbTxn) SaveJob(job *model.Job) error {
	return save(t.txn, job, string(job.Status))
}

func (t *memDbTxn) Delete(kind model.Kind, id string) error {
	rec, err := first(t.txn, kind, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return &genieerrors.ErrNotFound{Type: string(kind), Value: id}
	}
	if err := t.txn.Delete(tables[kind], rec); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

func (t *memDbTxn) ListApplications(filter Filter) ([]*model.Application, error) {
	return list[*model.Application](t.txn, model.KindApplication, filter)
}

func (t *memDbTxn) ListCommands(filter Filter) ([]*model.Command, error) {
	return list[*model.Command](t.txn, model.KindCommand, filter)
}

func (t *memDbTxn) ListClusters(filter Filter) ([]*model.Cluster, error) {
	return list[*model.Cluster](t.txn, model.KindCluster, filter)
}

func (t *memDbTxn) FindClusters(status model.ClusterStatus, tags model.TagSet) ([]*model.Cluster, error) {
	return list[*model.Cluster](t.txn, model.KindCluster, Filter{Statuses: []string{string(status)}, Tags: tags})
}

func (t *memDbTxn) FindCommands(clusterId string, statuses ...model.CommandStatus) ([]*model.Command, error) {
	cluster, err := t.GetCluster(clusterId)
	if err != nil {
		return nil, err
	}
	result := make([]*model.Command, 0, len(cluster.CommandIds()))
	for _, commandId := range cluster.CommandIds() {
		command, err := t.GetCommand(commandId)
		if err != nil {
			return nil, errors.WithMessagef(err, "cluster %s lists command %s", clusterId, commandId)
		}
		if len(statuses) == 0 || slices.Contains(statuses, command.Status) {
			result = append(result, command)
		}
	}
	return result, nil
}

func first(txn *memdb.Txn, kind model.Kind, id string) (*record, error) {
	table, ok := tables[kind]
	if !ok {
		return nil, errors.Errorf("unknown resource kind %q", kind)
	}
	raw, err := txn.First(table, idIndex, id)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if raw == nil {
		return nil, nil
	}
	return raw.(*record), nil
}

func get[T entity[T]](txn *memdb.Txn, kind model.Kind, id string) (T, error) {
	var zero T
	rec, err := first(txn, kind, id)
	if err != nil {
		return zero, err
	}
	if rec == nil {
		return zero, &genieerrors.ErrNotFound{Type: string(kind), Value: id}
	}
	e, ok := rec.Entity.(T)
	if !ok {
		panic(fmt.Sprintf("expected %T in table %s, but got %T", zero, tables[kind], rec.Entity))
	}
	return e.Clone(), nil
}

func save[T entity[T]](txn *memdb.Txn, e T, status string) error {
	r := e.GetResource()
	kind := e.Kind()
	if r.Id == "" {
		return &genieerrors.ErrInvalidArgument{Name: "id", Value: r.Id, Message: fmt.Sprintf("a %s must have an id to be saved", kind)}
	}
	existing, err := first(txn, kind, r.Id)
	if err != nil {
		return err
	}
	if err := checkVersion(kind, r, existing); err != nil {
		return err
	}

	r.EntityVersion++
	stored := e.Clone()
	rec := &record{
		Id:      r.Id,
		Name:    r.Name,
		Status:  status,
		Tags:    r.Tags().Slice(),
		Version: r.EntityVersion,
		Entity:  stored,
	}
	if err := txn.Insert(tables[kind], rec); err != nil {
		r.EntityVersion--
		return errors.WithStack(err)
	}
	return nil
}

func checkVersion(kind model.Kind, r *model.Resource, existing *record) error {
	if r.EntityVersion == 0 {
		if existing != nil {
			return &genieerrors.ErrAlreadyExists{Type: string(kind), Value: r.Id}
		}
		return nil
	}
	if existing == nil {
		return &genieerrors.ErrNotFound{Type: string(kind), Value: r.Id, Message: "resource was deleted since it was read"}
	}
	if existing.Version != r.EntityVersion {
		return &genieerrors.ErrConflict{
			Type:            string(kind),
			Value:           r.Id,
			ExpectedVersion: r.EntityVersion,
			ActualVersion:   existing.Version,
		}
	}
	return nil
}

func list[T entity[T]](txn *memdb.Txn, kind model.Kind, filter Filter) ([]T, error) {
	it, err := iterator(txn, tables[kind], filter)
	if err != nil {
		return nil, err
	}
	result := make([]T, 0)
	for raw := it.Next(); raw != nil; raw = it.Next() {
		rec := raw.(*record)
		r := rec.Entity.GetResource()
		if !filter.Matches(rec.Name, rec.Status, r.Tags()) {
			continue
		}
		result = append(result, rec.Entity.(T).Clone())
	}
	slices.SortFunc(result, func(a, b T) bool {
		return a.GetResource().Id < b.GetResource().Id
	})
	return result, nil
}

// iterator picks the narrowest index the filter allows. Matches is still applied to every row.
func iterator(txn *memdb.Txn, table string, filter Filter) (memdb.ResultIterator, error) {
	var it memdb.ResultIterator
	var err error
	switch {
	case !filter.Tags.IsEmpty():
		it, err = txn.Get(table, tagsIndex, filter.Tags.Slice()[0])
	case filter.Name != "":
		it, err = txn.Get(table, nameIndex, filter.Name)
	case len(filter.Statuses) == 1:
		it, err = txn.Get(table, statusIndex, filter.Statuses[0])
	default:
		it, err = txn.Get(table, idIndex)
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return it, nil
}

func memDbSchema() *memdb.DBSchema {
	schema := &memdb.DBSchema{Tables: make(map[string]*memdb.TableSchema, len(tables))}
	for _, table := range tables {
		schema.Tables[table] = &memdb.TableSchema{
			Name: table,
			Indexes: map[string]*memdb.IndexSchema{
				idIndex: {
					Name:    idIndex,
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Id"},
				},
				nameIndex: {
					Name:         nameIndex,
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "Name"},
				},
				statusIndex: {
					Name:         statusIndex,
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "Status"},
				},
				tagsIndex: {
					Name:         tagsIndex,
					AllowMissing: true,
					Indexer:      &memdb.StringSliceFieldIndex{Field: "Tags"},
				},
			},
		}
	}
	return schema
}
