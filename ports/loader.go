package ports

import (
	"context"

	"tabreport/domain/table"
)

// LoadedFile is a spreadsheet read into a typed table.
type LoadedFile struct {
	FileName string
	Sheets   []string
	Sheet    string
	Table    *table.Table
}

// TableLoaderPort reads an uploaded file into a table. An empty sheet name
// selects the first sheet. Failures carry the PARSE_ERROR code.
type TableLoaderPort interface {
	Load(ctx context.Context, fileName string, data []byte, sheet string) (*LoadedFile, error)
}
