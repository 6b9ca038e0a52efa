package coercer

import (
	"math"
	"strconv"
	"strings"
)

// TypeCoercer handles deterministic cell coercion with configurable rules
type TypeCoercer struct {
	config  CoercionConfig
	missing map[string]bool
}

// CoercionConfig defines the coercion thresholds and rules
type CoercionConfig struct {
	// NumericThreshold is the share of non-missing values that must parse
	// as numbers for a column to be numeric. 1.0 means every value.
	NumericThreshold         float64  `json:"numeric_threshold"`
	AllowThousandsSeparators bool     `json:"allow_thousands_separators"` // 1,234.5
	AllowParenNegatives      bool     `json:"allow_paren_negatives"`      // (123) -> -123
	AllowCurrencySymbols     bool     `json:"allow_currency_symbols"`     // $, €, £, ¥, ₫
	MissingTokens            []string `json:"missing_tokens"`
}

// DefaultMissingTokens are the cell texts read as missing values.
var DefaultMissingTokens = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

// DefaultCoercionConfig returns strict defaults: a column is numeric only
// when every non-missing value is a plain number.
func DefaultCoercionConfig() CoercionConfig {
	return CoercionConfig{
		NumericThreshold: 1.0,
		MissingTokens:    DefaultMissingTokens,
	}
}

// NewTypeCoercer creates a coercer with the given config
func NewTypeCoercer(config CoercionConfig) *TypeCoercer {
	if config.NumericThreshold <= 0 || config.NumericThreshold > 1 {
		config.NumericThreshold = 1.0
	}
	if config.MissingTokens == nil {
		config.MissingTokens = DefaultMissingTokens
	}
	missing := make(map[string]bool, len(config.MissingTokens))
	for _, tok := range config.MissingTokens {
		missing[tok] = true
	}
	return &TypeCoercer{config: config, missing: missing}
}

// Config returns the active configuration.
func (c *TypeCoercer) Config() CoercionConfig {
	return c.config
}

// IsMissing reports whether a raw cell should be treated as a missing value.
func (c *TypeCoercer) IsMissing(raw string) bool {
	return c.missing[strings.TrimSpace(raw)]
}

// ParseNumber attempts to read a raw cell as a finite float.
func (c *TypeCoercer) ParseNumber(raw string) (float64, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	if val, ok := parseFinite(cleanVal); ok {
		return val, true
	}

	isNegative := false
	if c.config.AllowParenNegatives && strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimSuffix(strings.TrimPrefix(cleanVal, "("), ")")
		isNegative = true
	}

	if c.config.AllowCurrencySymbols {
		for _, symbol := range []string{"$", "€", "£", "¥", "₫", "USD", "EUR", "GBP", "JPY", "VND"} {
			cleanVal = strings.ReplaceAll(cleanVal, symbol, "")
		}
		cleanVal = strings.TrimSpace(cleanVal)
	}

	if c.config.AllowThousandsSeparators && isGroupedNumber(cleanVal) {
		cleanVal = strings.ReplaceAll(cleanVal, ",", "")
	}

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	return parseFinite(cleanVal)
}

// parseFinite rejects the textual NaN/Inf forms strconv accepts.
func parseFinite(s string) (float64, bool) {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}

// isGroupedNumber accepts 1,234 and 1,234,567.89 but not 12,34.
func isGroupedNumber(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	intPart := s
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart = s[:dot]
	}
	groups := strings.Split(intPart, ",")
	if len(groups) < 2 {
		return false
	}
	for i, g := range groups {
		if g == "" || (i > 0 && len(g) != 3) || len(g) > 3 {
			return false
		}
		for _, r := range g {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// TypeAnalysis captures how a column's raw values coerce
type TypeAnalysis struct {
	TotalCount    int     `json:"total_count"`
	MissingCount  int     `json:"missing_count"`
	ValidCount    int     `json:"valid_count"`
	NumericCount  int     `json:"numeric_count"`
	DistinctCount int     `json:"distinct_count"`
	NumericRatio  float64 `json:"numeric_ratio"`
	IsNumeric     bool    `json:"is_numeric"`
}

// AnalyzeColumn analyses raw values to decide whether a column is numeric.
// A column with no non-missing values is not numeric.
func (c *TypeCoercer) AnalyzeColumn(values []string) TypeAnalysis {
	analysis := TypeAnalysis{TotalCount: len(values)}
	distinct := make(map[string]struct{})

	for _, raw := range values {
		if c.IsMissing(raw) {
			analysis.MissingCount++
			continue
		}
		analysis.ValidCount++
		if v, ok := c.ParseNumber(raw); ok {
			analysis.NumericCount++
			distinct[strconv.FormatFloat(v, 'g', -1, 64)] = struct{}{}
		} else {
			distinct[strings.TrimSpace(raw)] = struct{}{}
		}
	}

	analysis.DistinctCount = len(distinct)
	if analysis.ValidCount > 0 {
		analysis.NumericRatio = float64(analysis.NumericCount) / float64(analysis.ValidCount)
		analysis.IsNumeric = analysis.NumericRatio >= c.config.NumericThreshold
	}
	return analysis
}
