package schema

import (
	"strings"

	"github.com/koustreak/tablescope/internal/database"
)

// QueryTables builds the base-table listing for one MySQL schema:
//
//	SELECT TABLE_NAME, ENGINE, AUTO_INCREMENT, TABLE_COLLATION, TABLE_COMMENT, CREATE_OPTIONS
//	FROM information_schema.TABLES
//	WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE'
//	ORDER BY TABLE_NAME ASC
//
// The schema name is bound as an argument. An empty or unknown schema is not
// an error here; it simply matches no rows.
func QueryTables(schema string) *database.SelectBuilder {
	return database.Select(TablesView, database.DialectMySQL).
		From(InformationSchema, TablesView).
		Columns(columnNames()...).
		Where(string(FieldTableSchema), "=", schema).
		Where(string(FieldTableType), "=", BaseTable.String()).
		OrderBy(string(FieldTableName), database.Asc)
}

// QueryTableNames builds a name-only listing of one kind of relation.
// It only touches columns every information_schema implementation has, so it
// renders for both dialects.
func QueryTableNames(schema string, kind TableKind, d database.Dialect) *database.SelectBuilder {
	return database.Select(ident(d, TablesView), d).
		From(ident(d, InformationSchema), ident(d, TablesView)).
		Columns(ident(d, string(FieldTableName))).
		Where(ident(d, string(FieldTableSchema)), "=", schema).
		Where(ident(d, string(FieldTableType)), "=", kind.String()).
		OrderBy(ident(d, string(FieldTableName)), database.Asc)
}

// QueryTableExists builds a lookup that returns one row when table is a base
// table of schema.
func QueryTableExists(schema, table string, d database.Dialect) *database.SelectBuilder {
	return database.Select(ident(d, TablesView), d).
		From(ident(d, InformationSchema), ident(d, TablesView)).
		Columns(ident(d, string(FieldTableName))).
		Where(ident(d, string(FieldTableSchema)), "=", schema).
		Where(ident(d, string(FieldTableType)), "=", BaseTable.String()).
		Where(ident(d, string(FieldTableName)), "=", table).
		Limit(1)
}

// ident folds catalog identifiers to the case the dialect stores them in.
// Postgres keeps information_schema in lower case and quoting makes it exact.
func ident(d database.Dialect, name string) string {
	if d == database.DialectPostgres {
		return strings.ToLower(name)
	}
	return name
}
