package schema

import (
	"encoding/json"
	"testing"

	"github.com/koustreak/tablescope/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableKind_Literals(t *testing.T) {
	assert.Equal(t, "BASE TABLE", BaseTable.String())
	assert.Equal(t, "VIEW", View.String())
	assert.Equal(t, "SYSTEM VIEW", SystemView.String())
	assert.Equal(t, "TableKind(7)", TableKind(7).String())
	assert.False(t, TableKind(-1).Valid())
}

func TestParseTableKind(t *testing.T) {
	tests := map[string]TableKind{
		"BASE TABLE":  BaseTable,
		"base_table":  BaseTable,
		" view ":      View,
		"System View": SystemView,
		"SYSTEM_VIEW": SystemView,
	}
	for in, want := range tests {
		got, err := ParseTableKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTableKind("TEMPORARY")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestTableKind_JSON(t *testing.T) {
	b, err := json.Marshal(map[string]TableKind{"kind": SystemView})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"SYSTEM VIEW"}`, string(b))

	var out struct{ Kind TableKind }
	require.NoError(t, json.Unmarshal([]byte(`{"Kind":"VIEW"}`), &out))
	assert.Equal(t, View, out.Kind)

	assert.Error(t, json.Unmarshal([]byte(`{"Kind":"nope"}`), &out))
}
