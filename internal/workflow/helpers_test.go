package workflow

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Fooracles/SystemApp-sub000/internal/storage/sqlstore"
	"github.com/Fooracles/SystemApp-sub000/internal/testutil/teststore"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// wednesday is 2024-03-06 10:00 UTC, inside ISO week 10.
var wednesday = time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)

type env struct {
	svc   *Service
	store *sqlstore.Store
	ctx   context.Context

	admin, manager, otherManager, doer, client *types.User
	dept                                       *types.Department
	account                                    *types.ClientAccount
}

func (e *env) actor(u *types.User) types.Actor { return types.ActorFromUser(u) }

func newEnv(t *testing.T) *env {
	t.Helper()
	te := teststore.NewEnv(t)
	org := te.SeedOrg()

	e := &env{
		store:        te.Store,
		ctx:          te.Ctx,
		admin:        org.Admin,
		manager:      org.Manager,
		otherManager: org.OtherManager,
		doer:         org.Doer,
		client:       org.Client,
		dept:         org.Dept,
		account:      org.Account,
	}
	e.svc = New(te.Store, Options{
		Location:    time.UTC,
		Now:         func() time.Time { return wednesday },
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Attachments: NewAttachments(t.TempDir(), 1<<20),
		PageSize:    2,
	})
	return e
}

// newTask creates a pending task for the fixture doer, assigned by the manager.
func (e *env) newTask(t *testing.T, date, clock string) *types.DelegationTask {
	t.Helper()
	task, err := e.svc.CreateTask(e.ctx, e.actor(e.manager), CreateTaskInput{
		Description:     "Reconcile invoices " + date,
		Doer:            e.doer.Name,
		PlannedDate:     date,
		PlannedTime:     clock,
		DurationMinutes: "45",
	})
	require.NoError(t, err)
	return task
}
