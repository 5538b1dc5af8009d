package schema

import (
	"errors"
	"testing"

	"github.com/koustreak/tablescope/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeValues(t *testing.T) {
	rec, err := DecodeValues([]any{"orders", "InnoDB", 42, "utf8mb4_general_ci", "note", ""})
	require.NoError(t, err)

	assert.Equal(t, &TableRecord{
		Name:          "orders",
		Engine:        "InnoDB",
		AutoIncrement: 42,
		Collation:     "utf8mb4_general_ci",
		Comment:       "note",
		CreateOptions: "",
	}, rec)
}

func TestDecodeValues_DriverRepresentations(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   TableRecord
	}{
		{
			name:   "text protocol bytes",
			values: []any{[]byte("users"), []byte("MyISAM"), []byte("1001"), []byte("latin1_swedish_ci"), []byte(""), []byte("row_format=DYNAMIC")},
			want:   TableRecord{Name: "users", Engine: "MyISAM", AutoIncrement: 1001, Collation: "latin1_swedish_ci", CreateOptions: "row_format=DYNAMIC"},
		},
		{
			name:   "binary protocol unsigned",
			values: []any{"t", "InnoDB", uint64(18446744073709551615), "c", "", ""},
			want:   TableRecord{Name: "t", Engine: "InnoDB", AutoIncrement: 18446744073709551615, Collation: "c"},
		},
		{
			name:   "null auto increment and create options",
			values: []any{"t", "InnoDB", nil, "c", "", nil},
			want:   TableRecord{Name: "t", Engine: "InnoDB", Collation: "c"},
		},
		{
			name:   "strings are not trimmed or folded",
			values: []any{"  Mixed Case  ", "InnoDB", int64(0), "c", "line1\nline2 ", " partitioned"},
			want:   TableRecord{Name: "  Mixed Case  ", Engine: "InnoDB", Collation: "c", Comment: "line1\nline2 ", CreateOptions: " partitioned"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := DecodeValues(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *rec)
		})
	}
}

func TestDecodeValues_AutoIncrementIntegerKinds(t *testing.T) {
	good := []any{int8(7), int16(7), int32(7), int64(7), 7, uint8(7), uint16(7), uint32(7), uint64(7), uint(7)}

	for _, v := range good {
		rec, err := DecodeValues([]any{"orders", "InnoDB", v, "c", "", ""})
		require.NoError(t, err, "value %#v", v)
		assert.Equal(t, uint64(7), rec.AutoIncrement, "value %#v", v)
	}
}

func TestDecodeValues_AutoIncrementMustBeInteger(t *testing.T) {
	bad := []any{4.2, float32(1), "4.2", "abc", []byte("12x"), "", "+5", -1, int8(-1), int16(-300), int64(-7), true}

	for _, v := range bad {
		_, err := DecodeValues([]any{"orders", "InnoDB", v, "c", "", ""})
		require.Error(t, err, "value %#v", v)
		assert.True(t, errs.IsDecodeFailed(err))

		var colErr *ColumnDecodeError
		require.True(t, errors.As(err, &colErr))
		assert.Equal(t, FieldAutoIncrement, colErr.Column)
		assert.Equal(t, 2, colErr.Index)
		assert.Equal(t, v, colErr.Value)
	}
}

func TestDecodeValues_NullInRequiredColumn(t *testing.T) {
	required := map[int]TablesField{0: FieldTableName, 1: FieldEngine, 3: FieldTableCollation, 4: FieldTableComment}

	for idx, field := range required {
		values := []any{"orders", "InnoDB", 1, "c", "", ""}
		values[idx] = nil

		_, err := DecodeValues(values)
		require.Error(t, err)

		var colErr *ColumnDecodeError
		require.True(t, errors.As(err, &colErr))
		assert.Equal(t, field, colErr.Column)
		assert.Contains(t, err.Error(), "unexpected NULL")
	}
}

func TestDecodeValues_WrongTextType(t *testing.T) {
	_, err := DecodeValues([]any{42, "InnoDB", 1, "c", "", ""})
	require.Error(t, err)
	assert.True(t, errs.IsDecodeFailed(err))
	assert.Contains(t, err.Error(), "TABLE_NAME")
}

func TestDecodeValues_WrongArity(t *testing.T) {
	_, err := DecodeValues([]any{"orders", "InnoDB"})
	require.Error(t, err)
	assert.True(t, errs.IsDecodeFailed(err))
}

type sliceRow []any

func (r sliceRow) Scan(dest ...any) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *any:
			*p = r[i]
		case *string:
			*p = r[i].(string)
		}
	}
	return nil
}

type failingRow struct{ err error }

func (r failingRow) Scan(...any) error { return r.err }

func TestDecodeTable(t *testing.T) {
	rec, err := DecodeTable(sliceRow{"orders", "InnoDB", int64(42), "utf8mb4_general_ci", "note", ""})
	require.NoError(t, err)
	assert.Equal(t, "orders", rec.Name)
	assert.Equal(t, uint64(42), rec.AutoIncrement)

	_, err = DecodeTable(failingRow{err: errors.New("bad connection")})
	require.Error(t, err)
	assert.True(t, errs.IsQueryFailed(err))
}

func TestCheckColumns(t *testing.T) {
	assert.NoError(t, CheckColumns([]string{
		"TABLE_NAME", "ENGINE", "AUTO_INCREMENT", "TABLE_COLLATION", "TABLE_COMMENT", "CREATE_OPTIONS",
	}))
	assert.NoError(t, CheckColumns([]string{
		"table_name", "engine", "auto_increment", "table_collation", "table_comment", "create_options",
	}))

	err := CheckColumns([]string{
		"TABLE_NAME", "AUTO_INCREMENT", "ENGINE", "TABLE_COLLATION", "TABLE_COMMENT", "CREATE_OPTIONS",
	})
	require.Error(t, err)
	assert.True(t, errs.IsDecodeFailed(err))

	assert.Error(t, CheckColumns([]string{"TABLE_NAME"}))
}

func TestTableColumns(t *testing.T) {
	assert.Equal(t, []TablesField{
		FieldTableName, FieldEngine, FieldAutoIncrement, FieldTableCollation, FieldTableComment, FieldCreateOptions,
	}, TableColumns())

	cols := TableColumns()
	cols[0] = FieldChecksum
	assert.Equal(t, FieldTableName, TableColumns()[0], "callers get a copy")
}

func TestAllTablesFields(t *testing.T) {
	assert.Len(t, AllTablesFields, 21)
	for _, f := range TableColumns() {
		assert.Contains(t, AllTablesFields, f)
	}
	assert.Equal(t, "TABLE_COMMENT", FieldTableComment.String())
}
