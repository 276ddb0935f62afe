package metadata

// Table is an ordered, read-only sequence of rows.
type Table struct {
	Source string
	rows   []Row
}

// NewTable copies rows into a new Table and numbers them by position.
func NewTable(source string, rows []Row) *Table {
	t := &Table{
		Source: source,
		rows:   make([]Row, len(rows)),
	}

	for i, row := range rows {
		row.Index = i
		t.rows[i] = row
	}

	return t
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns the row at position i and whether i was in range.
func (t *Table) Row(i int) (Row, bool) {
	if t == nil || i < 0 || i >= len(t.rows) {
		return Row{}, false
	}

	return t.rows[i], true
}

// Rows returns a copy of the rows in table order. Changes to the returned
// slice do not affect the table.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}

	out := make([]Row, len(t.rows))
	copy(out, t.rows)

	return out
}
