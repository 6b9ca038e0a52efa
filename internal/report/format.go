// Package report turns aggregator results into presentation output:
// formatted numbers, markdown/HTML summaries and CSV exports.
package report

import (
	"math"
	"strconv"

	"tabreport/domain/stats"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Undefined is how an undefined value is shown to users.
const Undefined = "undefined"

var printer = message.NewPrinter(language.English)

// FormatNumber rounds to two decimals and groups thousands with commas.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Undefined
	}
	out := printer.Sprintf("%.2f", v)
	if out == "-0.00" {
		return "0.00"
	}
	return out
}

// FormatOptional formats a defined value or returns Undefined.
func FormatOptional(o stats.Optional) string {
	v, ok := o.Float()
	if !ok {
		return Undefined
	}
	return FormatNumber(v)
}

// FormatCount groups thousands of an integer count.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// exact renders a value for machine-readable export.
func exact(o stats.Optional) string {
	v, ok := o.Float()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
