package table

// ColumnKind classifies a column's value domain. It is assigned once by
// schema inference and never changes for the lifetime of a Table.
type ColumnKind string

const (
	KindNumeric     ColumnKind = "numeric"
	KindCategorical ColumnKind = "categorical"
)

// Cell is one value of a column. Raw keeps the text as read from the file;
// Number is only meaningful for cells of numeric columns.
type Cell struct {
	Raw     string  `json:"raw"`
	Number  float64 `json:"number,omitempty"`
	Missing bool    `json:"missing,omitempty"`
}

// ColumnSchema is the declared type of a column plus the evidence the
// inference step used to decide it.
type ColumnSchema struct {
	Name         string     `json:"name"`
	Kind         ColumnKind `json:"kind"`
	NonMissing   int        `json:"non_missing"`
	Missing      int        `json:"missing"`
	Distinct     int        `json:"distinct"`
	NumericRatio float64    `json:"numeric_ratio"`
}

// Schema is the ordered column list of a Table.
type Schema struct {
	Columns []ColumnSchema `json:"columns"`
}

// Column returns the schema entry for name.
func (s Schema) Column(name string) (ColumnSchema, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSchema{}, false
}

// Names returns column names in table order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// NumericColumns returns the names of numeric columns in table order.
func (s Schema) NumericColumns() []string {
	return s.namesOfKind(KindNumeric)
}

// CategoricalColumns returns the names of categorical columns in table order.
func (s Schema) CategoricalColumns() []string {
	return s.namesOfKind(KindCategorical)
}

func (s Schema) namesOfKind(kind ColumnKind) []string {
	names := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Kind == kind {
			names = append(names, c.Name)
		}
	}
	return names
}

func (s Schema) clone() Schema {
	cols := make([]ColumnSchema, len(s.Columns))
	copy(cols, s.Columns)
	return Schema{Columns: cols}
}

// RawSheet is a sheet as read from a file: trimmed header names and string
// rows, before any typing.
type RawSheet struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}
