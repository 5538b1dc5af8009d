// Package schema lists the base tables of a database schema from
// information_schema.TABLES.
//
// QueryTables builds the listing as a structured SELECT and DecodeTable turns
// each result row into a TableRecord; both are driven by the same ordered
// column list, so they cannot drift apart. Introspector runs the query over a
// database.Reader.
package schema

import "context"

// Reader is the read surface the HTTP server and CLI depend on.
type Reader interface {
	// ListTables returns the base tables of schema ordered by name.
	ListTables(ctx context.Context, schema string) ([]TableRecord, error)

	// ListTableNames returns the names of relations of the given kind, ordered.
	ListTableNames(ctx context.Context, schema string, kind TableKind) ([]string, error)

	// TableExists reports whether table is a base table of schema.
	TableExists(ctx context.Context, schema, table string) (bool, error)
}
