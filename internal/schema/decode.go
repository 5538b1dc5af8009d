package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/koustreak/tablescope/internal/database"
	"github.com/koustreak/tablescope/internal/errs"
)

// ColumnDecodeError describes a result value that does not fit its field.
// It is always returned wrapped in an *errs.Error of kind decode_failed.
type ColumnDecodeError struct {
	Column TablesField
	Index  int
	Value  any
	Reason string
}

func (e *ColumnDecodeError) Error() string {
	return fmt.Sprintf("column %d (%s): %s", e.Index, e.Column, e.Reason)
}

// DecodeTable scans the current row of a QueryTables result and decodes it.
func DecodeTable(row database.Row) (*TableRecord, error) {
	values, err := database.ScanValues(row, len(tableColumns))
	if err != nil {
		return nil, err
	}
	return DecodeValues(values)
}

// DecodeValues decodes one row given as values in TableColumns order.
// A value of the wrong type, or NULL in a non-nullable column, fails the
// whole row; nothing is coerced.
func DecodeValues(values []any) (*TableRecord, error) {
	if len(values) != len(tableColumns) {
		return nil, errs.Newf(errs.ErrKindDecodeFailed,
			"expected %d values, got %d", len(tableColumns), len(values))
	}

	rec := &TableRecord{}
	for i, c := range tableColumns {
		v := values[i]
		if v == nil {
			if c.nullable {
				continue
			}
			return nil, decodeError(c.field, i, v, "unexpected NULL")
		}
		if err := c.assign(rec, v); err != nil {
			return nil, decodeError(c.field, i, v, err.Error())
		}
	}
	return rec, nil
}

// CheckColumns verifies that result column names line up with TableColumns.
// Matching is case-insensitive: servers differ in how they echo identifiers.
func CheckColumns(names []string) error {
	if len(names) != len(tableColumns) {
		return errs.Newf(errs.ErrKindDecodeFailed,
			"result has %d columns, want %d %v", len(names), len(tableColumns), columnNames())
	}
	for i, c := range tableColumns {
		if !strings.EqualFold(names[i], string(c.field)) {
			return errs.Newf(errs.ErrKindDecodeFailed,
				"result column %d is %q, want %s", i, names[i], c.field)
		}
	}
	return nil
}

func decodeError(field TablesField, idx int, v any, reason string) error {
	cause := &ColumnDecodeError{Column: field, Index: idx, Value: v, Reason: reason}
	return errs.Wrap(errs.ErrKindDecodeFailed, "cannot decode table row", cause)
}

func decodeString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	default:
		return "", fmt.Errorf("want text, got %T", v)
	}
}

// decodeUint accepts integer kinds and decimal-digit text (the MySQL text
// protocol delivers numbers as []byte). Floats, signs and fractions fail.
func decodeUint(v any) (uint64, error) {
	switch n := v.(type) {
	case int64:
		return nonNegative(n)
	case int32:
		return nonNegative(int64(n))
	case int16:
		return nonNegative(int64(n))
	case int8:
		return nonNegative(int64(n))
	case int:
		return nonNegative(int64(n))
	case uint64:
		return n, nil
	case uint32:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint8:
		return uint64(n), nil
	case uint:
		return uint64(n), nil
	case []byte:
		return parseDigits(string(n))
	case string:
		return parseDigits(n)
	default:
		return 0, fmt.Errorf("want integer, got %T", v)
	}
}

func nonNegative(n int64) (uint64, error) {
	if n < 0 {
		return 0, fmt.Errorf("want non-negative integer, got %d", n)
	}
	return uint64(n), nil
}

func parseDigits(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("want integer, got %q", s)
	}
	return n, nil
}
