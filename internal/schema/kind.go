package schema

import (
	"fmt"
	"strings"

	"github.com/koustreak/tablescope/internal/errs"
)

// TableKind is the closed set of TABLE_TYPE values the view reports.
type TableKind int

const (
	BaseTable TableKind = iota
	View
	SystemView
)

// tableKindLiterals maps each kind to the exact TABLE_TYPE literal.
var tableKindLiterals = [...]string{
	BaseTable:  "BASE TABLE",
	View:       "VIEW",
	SystemView: "SYSTEM VIEW",
}

// String returns the TABLE_TYPE literal for k.
func (k TableKind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("TableKind(%d)", int(k))
	}
	return tableKindLiterals[k]
}

// Valid reports whether k is one of the declared kinds.
func (k TableKind) Valid() bool {
	return k >= BaseTable && int(k) < len(tableKindLiterals)
}

// ParseTableKind accepts a TABLE_TYPE literal, case-insensitively, with
// underscores standing in for spaces ("base_table" works in URLs).
func ParseTableKind(s string) (TableKind, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "_", " "))
	for k, lit := range tableKindLiterals {
		if lit == norm {
			return TableKind(k), nil
		}
	}
	return 0, errs.Newf(errs.ErrKindInvalidInput, "unknown table kind %q", s)
}

func (k TableKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, errs.Newf(errs.ErrKindInvalidInput, "invalid table kind %d", int(k))
	}
	return []byte(k.String()), nil
}

func (k *TableKind) UnmarshalText(b []byte) error {
	parsed, err := ParseTableKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
