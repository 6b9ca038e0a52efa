package excel

// ExcelConfig holds configuration for spreadsheet reading
type ExcelConfig struct {
	MaxBytes int64 `json:"max_bytes"`
	MaxRows  int   `json:"max_rows"`
	// SkipBlankRows drops rows whose every cell is empty.
	SkipBlankRows bool `json:"skip_blank_rows"`
}

// DefaultExcelConfig returns sensible defaults for spreadsheet processing
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		MaxBytes:      50 * 1024 * 1024,
		MaxRows:       1_000_000,
		SkipBlankRows: true,
	}
}
