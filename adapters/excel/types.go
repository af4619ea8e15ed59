package excel

// Table is the raw content of a two-column series file
type Table struct {
	Headers []string   // empty when the file has no header row
	Rows    [][]string // data rows, cells trimmed
}

// Column returns the cells of column idx, "" where a row is short
func (t *Table) Column(idx int) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}
