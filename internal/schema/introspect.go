package schema

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/koustreak/tablescope/internal/database"
	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/logger"
)

// DecodePolicy decides what ListTables does with a row that fails to decode.
type DecodePolicy int

const (
	// PolicyAbort returns the first decode error and no records.
	PolicyAbort DecodePolicy = iota
	// PolicySkip logs the failing row and keeps going.
	PolicySkip
)

func (p DecodePolicy) String() string {
	if p == PolicySkip {
		return "skip"
	}
	return "abort"
}

// ParseDecodePolicy accepts "abort" or "skip".
func ParseDecodePolicy(s string) (DecodePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return PolicyAbort, nil
	case "skip":
		return PolicySkip, nil
	}
	return PolicyAbort, errs.Newf(errs.ErrKindInvalidInput, "unknown decode policy %q", s)
}

// Option configures an Introspector.
type Option func(*Introspector)

// WithDecodePolicy sets how ListTables treats undecodable rows.
func WithDecodePolicy(p DecodePolicy) Option {
	return func(i *Introspector) { i.policy = p }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(i *Introspector) { i.log = l }
}

// WithQueryTimeout bounds every query the Introspector issues. Zero disables it.
func WithQueryTimeout(d time.Duration) Option {
	return func(i *Introspector) { i.timeout = d }
}

// Introspector implements Reader on top of any database.Reader.
// It holds no mutable state and is safe for concurrent use.
type Introspector struct {
	db      database.Reader
	policy  DecodePolicy
	log     *logger.Logger
	timeout time.Duration
}

var _ Reader = (*Introspector)(nil)

// NewIntrospector creates an Introspector over db.
func NewIntrospector(db database.Reader, opts ...Option) *Introspector {
	i := &Introspector{db: db, log: logger.Nop()}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Tables streams the base tables of schema in name order. Each step yields
// either a record or an error; a decode error affects only its row and the
// caller may keep ranging. Query and iteration errors end the sequence.
// The cursor is closed when the loop finishes or breaks.
func (i *Introspector) Tables(ctx context.Context, schema string) iter.Seq2[*TableRecord, error] {
	return func(yield func(*TableRecord, error) bool) {
		if d := i.db.Dialect(); d != database.DialectMySQL {
			yield(nil, errs.Newf(errs.ErrKindInvalidInput,
				"table metadata listing needs the mysql information_schema, driver speaks %s", d))
			return
		}

		sql, args, err := QueryTables(schema).Build()
		if err != nil {
			yield(nil, err)
			return
		}

		ctx, cancel := i.withTimeout(ctx)
		defer cancel()

		rows, err := i.db.Query(ctx, sql, args...)
		if err != nil {
			yield(nil, err)
			return
		}
		defer rows.Close()

		names, err := rows.Columns()
		if err != nil {
			yield(nil, errs.Wrap(errs.ErrKindQueryFailed, "cannot read result columns", err))
			return
		}
		if err := CheckColumns(names); err != nil {
			yield(nil, errs.Wrap(errs.ErrKindQueryFailed, "unexpected result shape", err))
			return
		}

		for rows.Next() {
			if !yield(DecodeTable(rows)) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// ListTables collects Tables, applying the decode policy.
func (i *Introspector) ListTables(ctx context.Context, schema string) ([]TableRecord, error) {
	log := i.log.With().Str("schema", schema).Logger()
	log.Debug("listing base tables")

	records := make([]TableRecord, 0)
	skipped := 0
	for rec, err := range i.Tables(ctx, schema) {
		if err != nil {
			if i.policy == PolicySkip && errs.IsDecodeFailed(err) {
				skipped++
				log.WarnWith("skipping undecodable table row", err, map[string]interface{}{
					"position": len(records) + skipped,
				})
				continue
			}
			log.ErrorWith("listing base tables failed", err, nil)
			return nil, err
		}
		records = append(records, *rec)
	}

	log.InfoWith("listed base tables", map[string]interface{}{
		"tables":  len(records),
		"skipped": skipped,
	})
	return records, nil
}

// ListTableNames returns the names of relations of the given kind in schema.
func (i *Introspector) ListTableNames(ctx context.Context, schema string, kind TableKind) ([]string, error) {
	if !kind.Valid() {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "invalid table kind %d", int(kind))
	}

	sql, args, err := QueryTableNames(schema, kind, i.db.Dialect()).Build()
	if err != nil {
		return nil, err
	}

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	rows, err := i.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return database.ScanStrings(rows)
}

// TableExists reports whether table is a base table of schema.
func (i *Introspector) TableExists(ctx context.Context, schema, table string) (bool, error) {
	sql, args, err := QueryTableExists(schema, table, i.db.Dialect()).Build()
	if err != nil {
		return false, err
	}

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	row, err := i.db.QueryRow(ctx, sql, args...)
	if err != nil {
		return false, err
	}

	var name string
	if err := row.Scan(&name); err != nil {
		if errs.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (i *Introspector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, i.timeout)
}
