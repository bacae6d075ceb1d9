// Package teststore provides SQLite-backed test helpers shared by the
// service and API tests.
//
// Each store lives in the test's temp dir, is migrated on creation and is
// closed when the test completes.
//
// Usage:
//
//	func TestSomething(t *testing.T) {
//	    env := teststore.NewEnv(t)
//	    org := env.SeedOrg()
//	    svc := workflow.New(env.Store, opts)
//	    svc.CreateTask(env.Ctx, types.ActorFromUser(org.Manager), in)
//	}
package teststore

import (
	"context"
	"testing"

	"github.com/Fooracles/SystemApp-sub000/internal/storage/sqlstore"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// New creates an isolated, migrated SQLite store for a single test.
func New(t testing.TB) *sqlstore.Store {
	t.Helper()

	ctx := context.Background()
	store, err := sqlstore.Open(ctx, sqlstore.Config{Driver: sqlstore.DriverSQLite, DSN: t.TempDir() + "/test.db"})
	if err != nil {
		t.Fatalf("teststore: failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("teststore: failed to migrate: %v", err)
	}
	return store
}

// Env provides a test environment with common setup and helpers.
type Env struct {
	t     testing.TB
	Store *sqlstore.Store
	Ctx   context.Context
}

// NewEnv creates a new test environment backed by an isolated store.
func NewEnv(t testing.TB) *Env {
	t.Helper()
	return &Env{t: t, Store: New(t), Ctx: context.Background()}
}

// Org is the standard fixture: an admin, a manager with one doer, a second
// manager outside that team and a client user on one account.
type Org struct {
	Admin, Manager, OtherManager, Doer, Client *types.User

	Dept    *types.Department
	Account *types.ClientAccount
}

// SeedOrg creates the standard fixture with a department and account named
// "Operations" and "Acme".
func (e *Env) SeedOrg() Org {
	e.t.Helper()
	return e.SeedOrgNamed("Operations", "Acme")
}

// SeedOrgNamed is SeedOrg with explicit department and account names.
func (e *Env) SeedOrgNamed(dept, account string) Org {
	e.t.Helper()
	o := Org{
		Dept:    e.CreateDepartment(dept),
		Account: e.CreateAccount(account),
	}
	o.Admin = e.CreateUser(&types.User{Name: "Ada Admin", Role: types.RoleAdmin})
	o.Manager = e.CreateUser(&types.User{Name: "Mona Manager", Role: types.RoleManager, DepartmentID: &o.Dept.ID})
	o.OtherManager = e.CreateUser(&types.User{Name: "Omar Manager", Role: types.RoleManager})
	o.Doer = e.CreateUser(&types.User{Name: "Dev Doer", Role: types.RoleDoer, ManagerID: &o.Manager.ID, DepartmentID: &o.Dept.ID})
	o.Client = e.CreateUser(&types.User{Name: "Cleo Client", Role: types.RoleClient, ClientAccountID: &o.Account.ID})
	return o
}

// CreateUser inserts u and returns it with its ID populated.
func (e *Env) CreateUser(u *types.User) *types.User {
	e.t.Helper()
	if err := e.Store.CreateUser(e.Ctx, u); err != nil {
		e.t.Fatalf("CreateUser(%q) failed: %v", u.Name, err)
	}
	return u
}

// CreateDepartment inserts a department.
func (e *Env) CreateDepartment(name string) *types.Department {
	e.t.Helper()
	d := &types.Department{Name: name}
	if err := e.Store.CreateDepartment(e.Ctx, d); err != nil {
		e.t.Fatalf("CreateDepartment(%q) failed: %v", name, err)
	}
	return d
}

// CreateAccount inserts a client account.
func (e *Env) CreateAccount(name string) *types.ClientAccount {
	e.t.Helper()
	a := &types.ClientAccount{Name: name}
	if err := e.Store.CreateClientAccount(e.Ctx, a); err != nil {
		e.t.Fatalf("CreateClientAccount(%q) failed: %v", name, err)
	}
	return a
}

