package excel

import (
	"context"

	"tabreport/adapters/datareadiness"
	"tabreport/adapters/datareadiness/coercer"
	"tabreport/ports"
)

// TableLoader reads uploads with DataReader and types them through schema
// inference.
type TableLoader struct {
	config ExcelConfig
	schema *datareadiness.SchemaAdapter
}

var _ ports.TableLoaderPort = (*TableLoader)(nil)

// NewTableLoader creates a loader with the given limits and coercion rules
func NewTableLoader(config ExcelConfig, coercion coercer.CoercionConfig) *TableLoader {
	return &TableLoader{
		config: config,
		schema: datareadiness.NewSchemaAdapter(coercer.NewTypeCoercer(coercion)),
	}
}

// Load implements ports.TableLoaderPort.
func (l *TableLoader) Load(ctx context.Context, fileName string, data []byte, sheet string) (*ports.LoadedFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := NewDataReader(fileName, data, l.config)
	if err != nil {
		return nil, err
	}
	sheets, err := reader.ListSheets()
	if err != nil {
		return nil, err
	}
	raw, err := reader.ReadSheet(sheet)
	if err != nil {
		return nil, err
	}
	tbl, err := l.schema.BuildTable(raw)
	if err != nil {
		return nil, err
	}

	return &ports.LoadedFile{
		FileName: fileName,
		Sheets:   sheets,
		Sheet:    raw.Name,
		Table:    tbl,
	}, nil
}
