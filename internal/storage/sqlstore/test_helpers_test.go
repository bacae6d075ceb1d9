package sqlstore

import (
	"context"
	"testing"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// newTestStore creates a migrated SQLite store in a temp dir.
// File-based databases are more reliable than in-memory for connection pool scenarios.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	store, err := Open(ctx, Config{Driver: DriverSQLite, DSN: t.TempDir() + "/test.db"})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if cerr := store.Close(); cerr != nil {
			t.Fatalf("Failed to close test database: %v", cerr)
		}
	})
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return store
}

// fixture is a small org: one admin, a manager with one report, a second
// manager, and two client users on the same account.
type fixture struct {
	admin, manager, otherManager, doer, client, client2 *types.User
	dept                                                *types.Department
	account                                             *types.ClientAccount
}

func seed(t *testing.T, s *Store) fixture {
	t.Helper()
	ctx := context.Background()

	f := fixture{
		dept:    &types.Department{Name: "Operations"},
		account: &types.ClientAccount{Name: "Acme"},
	}
	if err := s.CreateDepartment(ctx, f.dept); err != nil {
		t.Fatalf("CreateDepartment: %v", err)
	}
	if err := s.CreateClientAccount(ctx, f.account); err != nil {
		t.Fatalf("CreateClientAccount: %v", err)
	}

	mk := func(u *types.User) *types.User {
		t.Helper()
		if err := s.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser(%s): %v", u.Name, err)
		}
		return u
	}
	f.admin = mk(&types.User{Name: "Ada Admin", Role: types.RoleAdmin})
	f.manager = mk(&types.User{Name: "Mona Manager", Role: types.RoleManager, DepartmentID: &f.dept.ID})
	f.otherManager = mk(&types.User{Name: "Omar Manager", Role: types.RoleManager})
	f.doer = mk(&types.User{Name: "Dev Doer", Role: types.RoleDoer, ManagerID: &f.manager.ID, DepartmentID: &f.dept.ID})
	f.client = mk(&types.User{Name: "Cleo Client", Role: types.RoleClient, ClientAccountID: &f.account.ID})
	f.client2 = mk(&types.User{Name: "Cal Client", Role: types.RoleClient, ClientAccountID: &f.account.ID})
	return f
}
