package table

import (
	"fmt"
)

// Table is an immutable, column-major tabular dataset. Every accessor
// returns copies, so callers can never change a loaded table.
type Table struct {
	name   string
	schema Schema
	index  map[string]int
	cols   [][]Cell
	rows   int
}

// New builds a Table from a schema and one cell slice per schema column.
// The cell slices are copied.
func New(name string, schema Schema, columns [][]Cell) (*Table, error) {
	if len(schema.Columns) != len(columns) {
		return nil, fmt.Errorf("schema has %d columns but %d were supplied", len(schema.Columns), len(columns))
	}

	index := make(map[string]int, len(schema.Columns))
	rows := -1
	cols := make([][]Cell, len(columns))
	for i, c := range schema.Columns {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has an empty name", i)
		}
		if _, dup := index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		if c.Kind != KindNumeric && c.Kind != KindCategorical {
			return nil, fmt.Errorf("column %q has unknown kind %q", c.Name, c.Kind)
		}
		if rows >= 0 && len(columns[i]) != rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, len(columns[i]), rows)
		}
		rows = len(columns[i])
		index[c.Name] = i
		cols[i] = append([]Cell(nil), columns[i]...)
	}
	if rows < 0 {
		rows = 0
	}

	return &Table{
		name:   name,
		schema: schema.clone(),
		index:  index,
		cols:   cols,
		rows:   rows,
	}, nil
}

// Name is the sheet (or file) the table was loaded from.
func (t *Table) Name() string { return t.name }

// Rows returns the number of data rows.
func (t *Table) Rows() int { return t.rows }

// Width returns the number of columns.
func (t *Table) Width() int { return len(t.cols) }

// Schema returns a copy of the table schema.
func (t *Table) Schema() Schema { return t.schema.clone() }

// Columns returns the column names in table order.
func (t *Table) Columns() []string { return t.schema.Names() }

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Kind returns the declared kind of a column.
func (t *Table) Kind(name string) (ColumnKind, bool) {
	i, ok := t.index[name]
	if !ok {
		return "", false
	}
	return t.schema.Columns[i].Kind, true
}

// Column returns a copy of the cells of a column.
func (t *Table) Column(name string) ([]Cell, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return append([]Cell(nil), t.cols[i]...), true
}

// Cell returns a single cell.
func (t *Table) Cell(name string, row int) (Cell, bool) {
	i, ok := t.index[name]
	if !ok || row < 0 || row >= t.rows {
		return Cell{}, false
	}
	return t.cols[i][row], true
}

// Numbers returns the non-missing values of a numeric column in row order.
// ok is false when the column does not exist or is not numeric.
func (t *Table) Numbers(name string) (values []float64, ok bool) {
	i, exists := t.index[name]
	if !exists || t.schema.Columns[i].Kind != KindNumeric {
		return nil, false
	}
	values = make([]float64, 0, t.rows)
	for _, c := range t.cols[i] {
		if !c.Missing {
			values = append(values, c.Number)
		}
	}
	return values, true
}

// Labels returns the raw text of every cell of a column; missing cells
// are reported through the parallel missing slice.
func (t *Table) Labels(name string) (labels []string, missing []bool, ok bool) {
	i, exists := t.index[name]
	if !exists {
		return nil, nil, false
	}
	labels = make([]string, t.rows)
	missing = make([]bool, t.rows)
	for r, c := range t.cols[i] {
		labels[r] = c.Raw
		missing[r] = c.Missing
	}
	return labels, missing, true
}

// Head returns up to n rows as raw strings, for previews.
func (t *Table) Head(n int) [][]string {
	if n > t.rows || n < 0 {
		n = t.rows
	}
	out := make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(t.cols))
		for c := range t.cols {
			if !t.cols[c][r].Missing {
				row[c] = t.cols[c][r].Raw
			}
		}
		out[r] = row
	}
	return out
}
