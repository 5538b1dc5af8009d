package schema

// Identifiers of the metadata view queried by this package.
const (
	InformationSchema = "information_schema"
	TablesView        = "TABLES"
)

// TablesField names one column of information_schema.TABLES.
// Ref: https://dev.mysql.com/doc/refman/8.0/en/information-schema-tables-table.html
type TablesField string

const (
	FieldTableCatalog   TablesField = "TABLE_CATALOG"
	FieldTableSchema    TablesField = "TABLE_SCHEMA"
	FieldTableName      TablesField = "TABLE_NAME"
	FieldTableType      TablesField = "TABLE_TYPE"
	FieldEngine         TablesField = "ENGINE"
	FieldVersion        TablesField = "VERSION"
	FieldRowFormat      TablesField = "ROW_FORMAT"
	FieldTableRows      TablesField = "TABLE_ROWS"
	FieldAvgRowLength   TablesField = "AVG_ROW_LENGTH"
	FieldDataLength     TablesField = "DATA_LENGTH"
	FieldMaxDataLength  TablesField = "MAX_DATA_LENGTH"
	FieldIndexLength    TablesField = "INDEX_LENGTH"
	FieldDataFree       TablesField = "DATA_FREE"
	FieldAutoIncrement  TablesField = "AUTO_INCREMENT"
	FieldCreateTime     TablesField = "CREATE_TIME"
	FieldUpdateTime     TablesField = "UPDATE_TIME"
	FieldCheckTime      TablesField = "CHECK_TIME"
	FieldTableCollation TablesField = "TABLE_COLLATION"
	FieldChecksum       TablesField = "CHECKSUM"
	FieldCreateOptions  TablesField = "CREATE_OPTIONS"
	FieldTableComment   TablesField = "TABLE_COMMENT"
)

// AllTablesFields lists every column of the view in definition order.
var AllTablesFields = []TablesField{
	FieldTableCatalog,
	FieldTableSchema,
	FieldTableName,
	FieldTableType,
	FieldEngine,
	FieldVersion,
	FieldRowFormat,
	FieldTableRows,
	FieldAvgRowLength,
	FieldDataLength,
	FieldMaxDataLength,
	FieldIndexLength,
	FieldDataFree,
	FieldAutoIncrement,
	FieldCreateTime,
	FieldUpdateTime,
	FieldCheckTime,
	FieldTableCollation,
	FieldChecksum,
	FieldCreateOptions,
	FieldTableComment,
}

func (f TablesField) String() string { return string(f) }
