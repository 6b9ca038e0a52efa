package excel

// FileType is the container format of an uploaded spreadsheet
type FileType string

const (
	FileTypeXLSX FileType = "xlsx"
	FileTypeCSV  FileType = "csv"
)

// csvSheetName is the single implicit sheet of a CSV file.
const csvSheetName = "Sheet1"

const (
	mimeZip  = "application/zip"
	mimeText = "text/plain"
	mimeOLE  = "application/x-ole-storage"
)
