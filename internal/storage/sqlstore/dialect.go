package sqlstore

import "fmt"

// Driver names accepted by Open.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// dialect carries the few statements that differ between MySQL and SQLite.
// Queries themselves use only the shared subset: ? placeholders, LOWER,
// LIKE ... ESCAPE, and string-typed dates.
type dialect struct {
	name   string
	schema []string
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverMySQL:
		return dialect{name: DriverMySQL, schema: mysqlSchema}, nil
	case DriverSQLite, "sqlite3":
		return dialect{name: DriverSQLite, schema: sqliteSchema}, nil
	}
	return dialect{}, fmt.Errorf("unsupported database driver %q (supported: mysql, sqlite)", driver)
}
