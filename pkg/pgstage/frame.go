package pgstage

// ColumnType is the inferred storage type of one source column. It is the
// explicit contract between the read phase (which infers types from the data)
// and the write phase (which emits deterministic DDL from them).
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeBool
	TypeBigInt
	TypeDouble
	TypeTimestamp
	TypeDate
)

// PostgresType returns the PostgreSQL DDL type for this column type.
func (t ColumnType) PostgresType() string {
	switch t {
	case TypeBool:
		return "boolean"
	case TypeBigInt:
		return "bigint"
	case TypeDouble:
		return "double precision"
	case TypeTimestamp:
		return "timestamptz"
	case TypeDate:
		return "date"
	default:
		return "text"
	}
}

// String returns a human-readable name for logging.
func (t ColumnType) String() string {
	return t.PostgresType()
}

// Column describes one column of a Frame: its name (from the source header)
// and its inferred type.
type Column struct {
	Name string
	Type ColumnType
}

// Frame is the in-memory tabular representation of one fully-read dataset.
// Row values are typed per the column's ColumnType (bool, int64, float64,
// time.Time, or string); nil represents SQL NULL. Column order follows the
// source header order and determines destination column order.
type Frame struct {
	Columns []Column
	Rows    [][]any
}

// ColumnNames returns the column names in order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}
