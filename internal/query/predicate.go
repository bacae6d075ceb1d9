// Package query builds parameterized WHERE clauses and in-memory orderings
// for task and work item listings.
package query

import (
	"strings"
)

// Predicate is a parameterized SQL boolean expression. The zero value
// matches everything and is dropped when combined.
type Predicate struct {
	SQL  string
	Args []any
}

// IsEmpty reports whether p contributes nothing to a WHERE clause.
func (p Predicate) IsEmpty() bool {
	return strings.TrimSpace(p.SQL) == ""
}

// Raw wraps a hand-written expression. Placeholders must match args.
func Raw(sql string, args ...any) Predicate {
	return Predicate{SQL: sql, Args: args}
}

// Eq matches column = value.
func Eq(column string, value any) Predicate {
	return Predicate{SQL: column + " = ?", Args: []any{value}}
}

// Contains matches a case-insensitive substring of column. LIKE wildcards
// in s are escaped.
func Contains(column, s string) Predicate {
	return Predicate{
		SQL:  "LOWER(" + column + ") LIKE ? ESCAPE '!'",
		Args: []any{"%" + escapeLike(strings.ToLower(s)) + "%"},
	}
}

// In matches column against a list of values. An empty list matches nothing.
func In[T any](column string, values []T) Predicate {
	if len(values) == 0 {
		return Predicate{SQL: "1 = 0"}
	}
	placeholders := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = "?"
		args[i] = v
	}
	return Predicate{SQL: column + " IN (" + strings.Join(placeholders, ", ") + ")", Args: args}
}

// And joins the non-empty predicates with AND.
func And(preds ...Predicate) Predicate {
	return join(" AND ", preds)
}

// Or joins the non-empty predicates with OR.
func Or(preds ...Predicate) Predicate {
	return join(" OR ", preds)
}

func join(sep string, preds []Predicate) Predicate {
	var clauses []string
	var args []any
	for _, p := range preds {
		if p.IsEmpty() {
			continue
		}
		clauses = append(clauses, p.SQL)
		args = append(args, p.Args...)
	}
	switch len(clauses) {
	case 0:
		return Predicate{}
	case 1:
		return Predicate{SQL: clauses[0], Args: args}
	}
	return Predicate{SQL: "(" + strings.Join(clauses, sep) + ")", Args: args}
}

// Builder accumulates predicates that combine with AND.
type Builder struct {
	preds []Predicate
}

// Where adds p to the builder.
func (b *Builder) Where(p Predicate) *Builder {
	if !p.IsEmpty() {
		b.preds = append(b.preds, p)
	}
	return b
}

// Build returns the WHERE clause (including the keyword) and its args.
// It returns an empty string when nothing was added.
func (b *Builder) Build() (string, []any) {
	if len(b.preds) == 0 {
		return "", nil
	}
	clauses := make([]string, len(b.preds))
	var args []any
	for i, p := range b.preds {
		clauses[i] = p.SQL
		args = append(args, p.Args...)
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}
