package schema

// TableRecord is one base table as reported by information_schema.TABLES.
// String fields are carried exactly as the server returned them.
type TableRecord struct {
	Name          string `json:"name"`
	Engine        string `json:"engine"`
	AutoIncrement uint64 `json:"auto_increment"` // 0 when the table has no AUTO_INCREMENT column
	Collation     string `json:"collation"`
	Comment       string `json:"comment"`
	CreateOptions string `json:"create_options"`
}

// column binds one selected field to its slot in TableRecord.
// nullable columns decode NULL to the zero value; the rest reject it.
type column struct {
	field    TablesField
	nullable bool
	assign   func(r *TableRecord, v any) error
}

// tableColumns is the one ordered column list shared by QueryTables and the
// decoder. Reordering it changes both the SELECT list and the decode order.
var tableColumns = []column{
	{field: FieldTableName, assign: func(r *TableRecord, v any) (err error) {
		r.Name, err = decodeString(v)
		return err
	}},
	{field: FieldEngine, assign: func(r *TableRecord, v any) (err error) {
		r.Engine, err = decodeString(v)
		return err
	}},
	{field: FieldAutoIncrement, nullable: true, assign: func(r *TableRecord, v any) (err error) {
		r.AutoIncrement, err = decodeUint(v)
		return err
	}},
	{field: FieldTableCollation, assign: func(r *TableRecord, v any) (err error) {
		r.Collation, err = decodeString(v)
		return err
	}},
	{field: FieldTableComment, assign: func(r *TableRecord, v any) (err error) {
		r.Comment, err = decodeString(v)
		return err
	}},
	{field: FieldCreateOptions, nullable: true, assign: func(r *TableRecord, v any) (err error) {
		r.CreateOptions, err = decodeString(v)
		return err
	}},
}

// TableColumns returns the fields QueryTables selects, in select order.
func TableColumns() []TablesField {
	out := make([]TablesField, len(tableColumns))
	for i, c := range tableColumns {
		out[i] = c.field
	}
	return out
}

func columnNames() []string {
	out := make([]string, len(tableColumns))
	for i, c := range tableColumns {
		out[i] = string(c.field)
	}
	return out
}
