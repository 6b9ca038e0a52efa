package datareadiness

import (
	"tabreport/adapters/datareadiness/coercer"
	"tabreport/domain/table"
	"tabreport/internal/errors"
)

// SchemaAdapter turns a raw sheet into a typed, immutable table. Column
// classification happens here, once, and is recorded in the table schema.
type SchemaAdapter struct {
	coercer *coercer.TypeCoercer
}

// NewSchemaAdapter creates a schema adapter using the given coercer
func NewSchemaAdapter(c *coercer.TypeCoercer) *SchemaAdapter {
	if c == nil {
		c = coercer.NewTypeCoercer(coercer.DefaultCoercionConfig())
	}
	return &SchemaAdapter{coercer: c}
}

// InferSchema classifies every column of the sheet as numeric or categorical.
func (a *SchemaAdapter) InferSchema(sheet *table.RawSheet) table.Schema {
	schema := table.Schema{Columns: make([]table.ColumnSchema, len(sheet.Headers))}
	for i, header := range sheet.Headers {
		analysis := a.coercer.AnalyzeColumn(columnValues(sheet, i))
		kind := table.KindCategorical
		if analysis.IsNumeric {
			kind = table.KindNumeric
		}
		schema.Columns[i] = table.ColumnSchema{
			Name:         header,
			Kind:         kind,
			NonMissing:   analysis.ValidCount,
			Missing:      analysis.MissingCount,
			Distinct:     analysis.DistinctCount,
			NumericRatio: analysis.NumericRatio,
		}
	}
	return schema
}

// BuildTable infers the schema and materialises the typed table. In a
// numeric column, values that fail to parse (possible only with a
// threshold below 1) become missing cells.
func (a *SchemaAdapter) BuildTable(sheet *table.RawSheet) (*table.Table, error) {
	if sheet == nil || len(sheet.Headers) == 0 {
		return nil, errors.ParseError("sheet has no header row", nil)
	}

	schema := a.InferSchema(sheet)
	columns := make([][]table.Cell, len(sheet.Headers))
	for i, col := range schema.Columns {
		values := columnValues(sheet, i)
		cells := make([]table.Cell, len(values))
		for r, raw := range values {
			if a.coercer.IsMissing(raw) {
				cells[r] = table.Cell{Raw: raw, Missing: true}
				continue
			}
			if col.Kind == table.KindNumeric {
				v, ok := a.coercer.ParseNumber(raw)
				cells[r] = table.Cell{Raw: raw, Number: v, Missing: !ok}
				continue
			}
			cells[r] = table.Cell{Raw: raw}
		}
		columns[i] = cells
	}

	t, err := table.New(sheet.Name, schema, columns)
	if err != nil {
		return nil, errors.ParseError("invalid table layout", err)
	}
	return t, nil
}

func columnValues(sheet *table.RawSheet, col int) []string {
	values := make([]string, len(sheet.Rows))
	for r, row := range sheet.Rows {
		if col < len(row) {
			values[r] = row[col]
		}
	}
	return values
}
