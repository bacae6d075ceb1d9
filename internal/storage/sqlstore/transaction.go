package sqlstore

import (
	"context"
	"fmt"

	"github.com/Fooracles/SystemApp-sub000/internal/storage"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// Verify txStorage implements storage.Transaction at compile time
var _ storage.Transaction = (*txStorage)(nil)

// txStorage runs the shared queries against an open *sql.Tx.
type txStorage struct {
	q *queries
}

// RunInTransaction executes fn within a database transaction.
//
// On success the transaction is committed; if fn returns an error or
// panics it is rolled back. With SQLite the pool holds one connection, so
// fn must only use tx, never the parent store.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(&txStorage{q: s.queries(tx)}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

func (t *txStorage) CreateItem(ctx context.Context, item *types.WorkItem, actorID int64) error {
	return t.q.createItem(ctx, item, actorID)
}

func (t *txStorage) GetItem(ctx context.Context, id int64) (*types.WorkItem, error) {
	return t.q.getItem(ctx, id)
}

func (t *txStorage) UpdateItem(ctx context.Context, id int64, updates map[string]interface{}, actorID int64) error {
	return t.q.updateItem(ctx, id, updates, actorID)
}

func (t *txStorage) CreateTask(ctx context.Context, task *types.DelegationTask, actorID int64) error {
	return t.q.createTask(ctx, task, actorID)
}

func (t *txStorage) GetTask(ctx context.Context, id int64) (*types.DelegationTask, error) {
	return t.q.getTask(ctx, id)
}

func (t *txStorage) UpdateTask(ctx context.Context, id int64, updates map[string]interface{}, actorID int64) error {
	return t.q.updateTask(ctx, id, updates, actorID)
}
