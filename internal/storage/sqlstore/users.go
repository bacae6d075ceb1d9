package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Fooracles/SystemApp-sub000/internal/query"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

const userColumns = `id, name, email, role, manager_id, department_id, client_account_id`

// CreateUser inserts user and sets its ID.
func (s *Store) CreateUser(ctx context.Context, user *types.User) error {
	if strings.TrimSpace(user.Name) == "" {
		return fmt.Errorf("validation failed: user name is required")
	}
	if !user.Role.IsValid() {
		return fmt.Errorf("validation failed: invalid role %q", user.Role)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (name, email, role, manager_id, department_id, client_account_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.Name, user.Email, string(user.Role), int64PtrArg(user.ManagerID), int64PtrArg(user.DepartmentID), int64PtrArg(user.ClientAccountID))
	if err != nil {
		return wrapDBError("insert user", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("user id", err)
	}
	user.ID = id
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*types.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get user %d", id)
	}
	return u, nil
}

// FindUserByName looks a user up by case-insensitive exact name.
func (s *Store) FindUserByName(ctx context.Context, name string) (*types.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(name) = ? ORDER BY id LIMIT 1`,
		strings.ToLower(strings.TrimSpace(name)))
	u, err := scanUser(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "find user %q", name)
	}
	return u, nil
}

// ListUsers returns users matching filter ordered by name.
func (s *Store) ListUsers(ctx context.Context, filter types.UserFilter) ([]*types.User, error) {
	b := &query.Builder{}
	if filter.Role != nil {
		b.Where(query.Eq("role", string(*filter.Role)))
	}
	if filter.ClientAccountID != nil {
		b.Where(query.Eq("client_account_id", *filter.ClientAccountID))
	}
	if filter.ManagerID != nil {
		b.Where(query.Eq("manager_id", *filter.ManagerID))
	}
	where, args := b.Build()

	// #nosec G202 - where is built from parameterized predicates
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users `+where+` ORDER BY name, id`, args...)
	if err != nil {
		return nil, wrapDBError("list users", err)
	}
	defer func() { _ = rows.Close() }()

	var users []*types.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*types.User, error) {
	var (
		u             types.User
		role          string
		managerID     sql.NullInt64
		departmentID  sql.NullInt64
		clientAccount sql.NullInt64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &role, &managerID, &departmentID, &clientAccount); err != nil {
		return nil, err
	}
	u.Role = types.Role(role)
	u.ManagerID = nullInt64Ptr(managerID)
	u.DepartmentID = nullInt64Ptr(departmentID)
	u.ClientAccountID = nullInt64Ptr(clientAccount)
	return &u, nil
}

// CreateDepartment inserts dept and sets its ID.
func (s *Store) CreateDepartment(ctx context.Context, dept *types.Department) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO departments (name) VALUES (?)`, strings.TrimSpace(dept.Name))
	if err != nil {
		return wrapDBErrorf(err, "insert department %q", dept.Name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("department id", err)
	}
	dept.ID = id
	return nil
}

// ListDepartments returns all departments ordered by name.
func (s *Store) ListDepartments(ctx context.Context) ([]*types.Department, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM departments ORDER BY name`)
	if err != nil {
		return nil, wrapDBError("list departments", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.Department
	for rows.Next() {
		var d types.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// CreateClientAccount inserts acct and sets its ID.
func (s *Store) CreateClientAccount(ctx context.Context, acct *types.ClientAccount) error {
	res, err := s.db.ExecContext(ctx, `INSERT INTO client_accounts (name) VALUES (?)`, strings.TrimSpace(acct.Name))
	if err != nil {
		return wrapDBErrorf(err, "insert client account %q", acct.Name)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("client account id", err)
	}
	acct.ID = id
	return nil
}

// ListClientAccounts returns all client accounts ordered by name.
func (s *Store) ListClientAccounts(ctx context.Context) ([]*types.ClientAccount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM client_accounts ORDER BY name`)
	if err != nil {
		return nil, wrapDBError("list client accounts", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*types.ClientAccount
	for rows.Next() {
		var a types.ClientAccount
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan client account: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
