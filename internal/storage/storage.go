// Package storage defines the interface for task and work item storage.
//
// The SQL implementation lives in the sqlstore sub-package; factory opens
// it from configuration.
package storage

import (
	"context"
	"errors"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// ErrNotFound is returned when a requested entity does not exist in the database.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned on a unique constraint violation.
var ErrConflict = errors.New("conflict")

// Storage is the interface satisfied by *sqlstore.Store.
// Consumers depend on this interface rather than on the concrete type so that
// wrappers (telemetry) can be substituted.
type Storage interface {
	// Users and directory data
	CreateUser(ctx context.Context, user *types.User) error
	GetUser(ctx context.Context, id int64) (*types.User, error)
	FindUserByName(ctx context.Context, name string) (*types.User, error)
	ListUsers(ctx context.Context, filter types.UserFilter) ([]*types.User, error)
	CreateDepartment(ctx context.Context, dept *types.Department) error
	ListDepartments(ctx context.Context) ([]*types.Department, error)
	CreateClientAccount(ctx context.Context, acct *types.ClientAccount) error
	ListClientAccounts(ctx context.Context) ([]*types.ClientAccount, error)

	// Work items (Task / Ticket / Required)
	CreateItem(ctx context.Context, item *types.WorkItem, actorID int64) error
	GetItem(ctx context.Context, id int64) (*types.WorkItem, error)
	SearchItems(ctx context.Context, filter types.ItemFilter) ([]*types.WorkItem, error)
	UpdateItem(ctx context.Context, id int64, updates map[string]interface{}, actorID int64) error

	// Delegation tasks
	CreateTask(ctx context.Context, task *types.DelegationTask, actorID int64) error
	GetTask(ctx context.Context, id int64) (*types.DelegationTask, error)
	SearchTasks(ctx context.Context, filter types.TaskFilter) ([]*types.DelegationTask, error)
	UpdateTask(ctx context.Context, id int64, updates map[string]interface{}, actorID int64) error

	// Audit trail
	GetEvents(ctx context.Context, entity string, entityID int64, limit int) ([]*types.Event, error)

	// Transactions
	RunInTransaction(ctx context.Context, fn func(tx Transaction) error) error

	// Lifecycle
	Close() error
}

// Transaction exposes the storage methods that run inside one database
// transaction. If fn returns an error or panics the transaction is rolled
// back; otherwise it is committed.
//
//	err := store.RunInTransaction(ctx, func(tx storage.Transaction) error {
//	    if err := tx.UpdateTask(ctx, old.ID, closeUpdates, actorID); err != nil {
//	        return err // Triggers rollback
//	    }
//	    return tx.CreateTask(ctx, next, actorID)
//	})
type Transaction interface {
	CreateItem(ctx context.Context, item *types.WorkItem, actorID int64) error
	GetItem(ctx context.Context, id int64) (*types.WorkItem, error)
	UpdateItem(ctx context.Context, id int64, updates map[string]interface{}, actorID int64) error

	CreateTask(ctx context.Context, task *types.DelegationTask, actorID int64) error
	GetTask(ctx context.Context, id int64) (*types.DelegationTask, error)
	UpdateTask(ctx context.Context, id int64, updates map[string]interface{}, actorID int64) error
}
