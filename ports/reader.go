package ports

// Table is a raw tabular dataset as read from disk: a header row plus
// string cells, before any coercion.
type Table struct {
	Headers []string
	Rows    [][]string
}

// ColumnIndex returns the position of the named header, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// TableReader loads a raw table from a data file.
type TableReader interface {
	ReadTable() (*Table, error)
}
