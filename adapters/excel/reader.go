package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"tabreport/domain/table"
	"tabreport/internal"
	"tabreport/internal/errors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

// DataReader reads an uploaded Excel or CSV file held in memory
type DataReader struct {
	fileName string
	data     []byte
	fileType FileType
	config   ExcelConfig
	logger   *internal.Logger
}

// NewDataReader validates the upload's extension and content and returns a
// reader for it. Unsupported, empty or mislabelled files fail with PARSE_ERROR.
func NewDataReader(fileName string, data []byte, config ExcelConfig) (*DataReader, error) {
	if len(data) == 0 {
		return nil, errors.ParseError(fmt.Sprintf("file %q is empty", fileName), nil)
	}
	if config.MaxBytes > 0 && int64(len(data)) > config.MaxBytes {
		return nil, errors.ParseError(fmt.Sprintf("file size (%.1f MB) exceeds the %.0f MB limit",
			float64(len(data))/(1024*1024), float64(config.MaxBytes)/(1024*1024)), nil)
	}

	fileType, err := detectFileType(fileName, data)
	if err != nil {
		return nil, err
	}

	return &DataReader{
		fileName: fileName,
		data:     data,
		fileType: fileType,
		config:   config,
		logger:   internal.DefaultLogger.With("DataReader"),
	}, nil
}

// detectFileType checks the extension first and then confirms it against
// the sniffed content type.
func detectFileType(fileName string, data []byte) (FileType, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	detected := mimetype.Detect(data)

	switch ext {
	case ".xlsx", ".xlsm":
		if !hasAncestor(detected, mimeZip) {
			return "", errors.ParseError(fmt.Sprintf("file %q is not a valid Excel workbook (detected %s)", fileName, detected.String()), nil)
		}
		return FileTypeXLSX, nil
	case ".csv", ".txt":
		if !hasAncestor(detected, mimeText) {
			return "", errors.ParseError(fmt.Sprintf("file %q is not a text file (detected %s)", fileName, detected.String()), nil)
		}
		return FileTypeCSV, nil
	case ".xls":
		if hasAncestor(detected, mimeOLE) {
			return "", errors.ParseError("legacy .xls workbooks are not supported; save the file as .xlsx", nil)
		}
		return "", errors.ParseError(fmt.Sprintf("file %q is not a valid Excel workbook", fileName), nil)
	default:
		return "", errors.ParseError(fmt.Sprintf("unsupported file extension %q", ext), nil)
	}
}

func hasAncestor(m *mimetype.MIME, mime string) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(mime) {
			return true
		}
	}
	return false
}

// FileType returns the detected container format
func (r *DataReader) FileType() FileType {
	return r.fileType
}

// FileName returns the name the file was uploaded under
func (r *DataReader) FileName() string {
	return r.fileName
}

// ListSheets returns sheet names in workbook order. CSV files have one sheet.
func (r *DataReader) ListSheets() ([]string, error) {
	if r.fileType == FileTypeCSV {
		return []string{csvSheetName}, nil
	}

	f, err := r.openWorkbook()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ParseError("workbook has no sheets", nil)
	}
	return sheets, nil
}

// ReadSheet reads one sheet. An empty name selects the first sheet.
func (r *DataReader) ReadSheet(sheet string) (*table.RawSheet, error) {
	switch r.fileType {
	case FileTypeCSV:
		if sheet != "" && sheet != csvSheetName {
			return nil, errors.ParseError(fmt.Sprintf("sheet %q does not exist", sheet), nil)
		}
		return r.readCSVData()
	case FileTypeXLSX:
		return r.readExcelData(sheet)
	default:
		return nil, errors.ParseError(fmt.Sprintf("unsupported file type: %s", r.fileType), nil)
	}
}

func (r *DataReader) openWorkbook() (*excelize.File, error) {
	f, err := excelize.OpenReader(bytes.NewReader(r.data))
	if err != nil {
		return nil, errors.ParseError("failed to open Excel file", err)
	}
	return f, nil
}

// readExcelData reads a sheet's raw cell values (no number formatting applied)
func (r *DataReader) readExcelData(sheet string) (*table.RawSheet, error) {
	startTime := time.Now()
	f, err := r.openWorkbook()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ParseError("workbook has no sheets", nil)
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if !contains(sheets, sheet) {
		return nil, errors.ParseError(fmt.Sprintf("sheet %q does not exist", sheet), nil)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	r.logger.Debug("sheet %q read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	return r.processRows(sheet, rows)
}

// readCSVData reads CSV data into a raw sheet
func (r *DataReader) readCSVData() (*table.RawSheet, error) {
	data := bytes.TrimPrefix(r.data, []byte("\xef\xbb\xbf"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.ParseError("failed to read CSV file", err)
	}
	return r.processRows(csvSheetName, rows)
}

// processRows converts raw string rows into a RawSheet: the first
// non-blank row is the header.
func (r *DataReader) processRows(sheet string, rows [][]string) (*table.RawSheet, error) {
	start := 0
	for start < len(rows) && isBlankRow(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, errors.ParseError(fmt.Sprintf("sheet %q is empty", sheet), nil)
	}

	headers := normaliseHeaders(rows[start], sheetWidth(rows[start], rows[start+1:]))

	dataRows := make([][]string, 0, len(rows)-start-1)
	for _, row := range rows[start+1:] {
		if r.config.SkipBlankRows && isBlankRow(row) {
			continue
		}
		cells := make([]string, len(headers))
		for j := 0; j < len(row) && j < len(headers); j++ {
			cells[j] = strings.TrimSpace(row[j])
		}
		dataRows = append(dataRows, cells)
		if r.config.MaxRows > 0 && len(dataRows) > r.config.MaxRows {
			return nil, errors.ParseError(fmt.Sprintf("sheet %q has more than %d rows", sheet, r.config.MaxRows), nil)
		}
	}

	if len(dataRows) == 0 {
		return nil, errors.ParseError(fmt.Sprintf("sheet %q must have at least a header row and one data row", sheet), nil)
	}

	r.logger.Info("%s sheet %q processed (%d columns, %d rows)",
		strings.ToUpper(string(r.fileType)), sheet, len(headers), len(dataRows))

	return &table.RawSheet{
		Name:    sheet,
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// sheetWidth is the number of columns that carry a header or any data.
// Blank trailing columns are dropped.
func sheetWidth(header []string, rows [][]string) int {
	width := lastNonBlank(header)
	for _, row := range rows {
		if w := lastNonBlank(row); w > width {
			width = w
		}
	}
	return width
}

func lastNonBlank(row []string) int {
	n := len(row)
	for n > 0 && strings.TrimSpace(row[n-1]) == "" {
		n--
	}
	return n
}

// normaliseHeaders trims names, names blank headers "Unnamed: N" and
// suffixes duplicates with .1, .2, ... skipping any suffix that is already
// a header of its own.
func normaliseHeaders(row []string, width int) []string {
	headers := make([]string, width)
	taken := make(map[string]bool, width)
	for i := range headers {
		name := ""
		if i < len(row) {
			name = strings.TrimSpace(row[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		headers[i] = name
		taken[name] = true
	}

	used := make(map[string]bool, width)
	suffix := make(map[string]int, width)
	for i, name := range headers {
		if !used[name] {
			used[name] = true
			continue
		}
		candidate := name
		for used[candidate] || taken[candidate] {
			suffix[name]++
			candidate = fmt.Sprintf("%s.%d", name, suffix[name])
		}
		headers[i] = candidate
		used[candidate] = true
	}
	return headers
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
