package database

import (
	"fmt"
	"strings"

	"github.com/koustreak/tablescope/internal/errs"
)

// Dialect controls which SQL placeholder and identifier-quoting style the
// query builder emits.
type Dialect int

const (
	// DialectPostgres uses $1, $2, … placeholders and "double-quoted" identifiers.
	DialectPostgres Dialect = iota

	// DialectMySQL uses ? placeholders and `backtick-quoted` identifiers.
	DialectMySQL
)

func (d Dialect) String() string {
	if d == DialectMySQL {
		return "mysql"
	}
	return "postgres"
}

// validOps is the allowlist of comparison operators for WHERE clauses.
// Any operator not in this list is rejected to prevent SQL injection
// through the operator position (which cannot be parameterized).
var validOps = map[string]bool{
	"=":     true,
	"!=":    true,
	"<>":    true,
	"<":     true,
	">":     true,
	"<=":    true,
	">=":    true,
	"LIKE":  true,
	"ILIKE": true,
}

// SortDirection controls the ORDER BY direction.
type SortDirection bool

const (
	Asc  SortDirection = false
	Desc SortDirection = true
)

func (s SortDirection) String() string {
	if s == Desc {
		return "DESC"
	}
	return "ASC"
}

// TableRef names the relation a statement reads from. Schema is optional.
type TableRef struct {
	Schema string
	Name   string
}

// Predicate is one `column op value` condition. Predicates are ANDed.
type Predicate struct {
	Column string
	Op     string
	Value  any
}

// OrderTerm is one ORDER BY entry.
type OrderTerm struct {
	Column string
	Dir    SortDirection
}

// Statement is the structured, dialect-free form of a SELECT. It is what the
// builder renders from, and what tests and callers inspect without parsing SQL.
type Statement struct {
	Table   TableRef
	Columns []string
	Where   []Predicate
	OrderBy []OrderTerm
	Limit   *int
	Offset  *int
}

// SelectBuilder constructs a parameterized SELECT query using a fluent API.
// Values are never interpolated into the SQL string; they are always passed as args.
//
// Usage (MySQL):
//
//	sql, args, err := Select("TABLES", DialectMySQL).
//	    From("information_schema", "TABLES").
//	    Columns("TABLE_NAME", "ENGINE").
//	    Where("TABLE_SCHEMA", "=", "shop").
//	    OrderBy("TABLE_NAME", Asc).
//	    Build()
type SelectBuilder struct {
	dialect Dialect
	stmt    Statement
}

// Select starts a new SelectBuilder for the given table and dialect.
func Select(table string, d Dialect) *SelectBuilder {
	return &SelectBuilder{dialect: d, stmt: Statement{Table: TableRef{Name: table}}}
}

// From sets a schema-qualified source table, replacing the one given to Select.
func (b *SelectBuilder) From(schema, table string) *SelectBuilder {
	b.stmt.Table = TableRef{Schema: schema, Name: table}
	return b
}

// Columns restricts the SELECT to the specified columns.
// If not called, SELECT * is used.
func (b *SelectBuilder) Columns(cols ...string) *SelectBuilder {
	b.stmt.Columns = append([]string(nil), cols...)
	return b
}

// Where adds a WHERE condition. op must be one of the allowed comparison
// operators (=, !=, <, >, <=, >=, LIKE, ILIKE).
// Multiple calls are combined with AND.
func (b *SelectBuilder) Where(column, op string, value any) *SelectBuilder {
	b.stmt.Where = append(b.stmt.Where, Predicate{Column: column, Op: op, Value: value})
	return b
}

// OrderBy appends an ORDER BY clause for the given column and direction.
func (b *SelectBuilder) OrderBy(column string, dir SortDirection) *SelectBuilder {
	b.stmt.OrderBy = append(b.stmt.OrderBy, OrderTerm{Column: column, Dir: dir})
	return b
}

// Limit sets the maximum number of rows to return.
func (b *SelectBuilder) Limit(n int) *SelectBuilder {
	b.stmt.Limit = &n
	return b
}

// Offset sets the number of rows to skip (for pagination).
func (b *SelectBuilder) Offset(n int) *SelectBuilder {
	b.stmt.Offset = &n
	return b
}

// Dialect returns the dialect the builder renders for.
func (b *SelectBuilder) Dialect() Dialect {
	return b.dialect
}

// Statement returns a copy of the structured statement built so far.
// Mutating the copy does not affect the builder.
func (b *SelectBuilder) Statement() Statement {
	s := b.stmt
	s.Columns = append([]string(nil), b.stmt.Columns...)
	s.Where = append([]Predicate(nil), b.stmt.Where...)
	s.OrderBy = append([]OrderTerm(nil), b.stmt.OrderBy...)
	if b.stmt.Limit != nil {
		n := *b.stmt.Limit
		s.Limit = &n
	}
	if b.stmt.Offset != nil {
		n := *b.stmt.Offset
		s.Offset = &n
	}
	return s
}

// Build produces the final SQL string and argument slice.
// Returns an invalid-input error if the statement cannot be represented:
// a missing table, an empty identifier, or an operator outside the allowlist.
func (b *SelectBuilder) Build() (string, []any, error) {
	if b.stmt.Table.Name == "" {
		return "", nil, errs.New(errs.ErrKindInvalidInput, "select statement has no source table")
	}

	// --- column list ---
	cols := "*"
	if len(b.stmt.Columns) > 0 {
		quoted := make([]string, len(b.stmt.Columns))
		for i, c := range b.stmt.Columns {
			if c == "" {
				return "", nil, errs.Newf(errs.ErrKindInvalidInput, "empty column name at position %d", i)
			}
			quoted[i] = b.quoteIdent(c)
		}
		cols = strings.Join(quoted, ", ")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(cols)
	sb.WriteString(" FROM ")
	if b.stmt.Table.Schema != "" {
		sb.WriteString(b.quoteIdent(b.stmt.Table.Schema))
		sb.WriteString(".")
	}
	sb.WriteString(b.quoteIdent(b.stmt.Table.Name))

	var args []any
	argIdx := 1

	// --- WHERE ---
	if len(b.stmt.Where) > 0 {
		parts := make([]string, 0, len(b.stmt.Where))
		for _, w := range b.stmt.Where {
			op := strings.ToUpper(w.Op)
			if !validOps[op] {
				return "", nil, errs.Newf(errs.ErrKindInvalidInput, "unsupported WHERE operator: %q", w.Op)
			}
			if op == "ILIKE" && b.dialect == DialectMySQL {
				return "", nil, errs.New(errs.ErrKindInvalidInput, "ILIKE is not supported by mysql")
			}
			if w.Column == "" {
				return "", nil, errs.New(errs.ErrKindInvalidInput, "WHERE condition has an empty column name")
			}
			parts = append(parts, fmt.Sprintf("%s %s %s", b.quoteIdent(w.Column), op, b.placeholder(argIdx)))
			args = append(args, w.Value)
			argIdx++
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(parts, " AND "))
	}

	// --- ORDER BY ---
	if len(b.stmt.OrderBy) > 0 {
		parts := make([]string, len(b.stmt.OrderBy))
		for i, o := range b.stmt.OrderBy {
			parts[i] = fmt.Sprintf("%s %s", b.quoteIdent(o.Column), o.Dir)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	// --- LIMIT ---
	if b.stmt.Limit != nil {
		sb.WriteString(fmt.Sprintf(" LIMIT %s", b.placeholder(argIdx)))
		args = append(args, *b.stmt.Limit)
		argIdx++
	}

	// --- OFFSET ---
	if b.stmt.Offset != nil {
		sb.WriteString(fmt.Sprintf(" OFFSET %s", b.placeholder(argIdx)))
		args = append(args, *b.stmt.Offset)
	}

	return sb.String(), args, nil
}

// placeholder returns the correct parameter placeholder for the dialect.
// Postgres: $1, $2, …   MySQL: ? (index is ignored)
func (b *SelectBuilder) placeholder(idx int) string {
	if b.dialect == DialectMySQL {
		return "?"
	}
	return fmt.Sprintf("$%d", idx)
}

// quoteIdent quotes an identifier so reserved words and mixed-case names
// survive. MySQL without ANSI_QUOTES only accepts backticks.
func (b *SelectBuilder) quoteIdent(name string) string {
	if b.dialect == DialectMySQL {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
