package testkit

import (
	"fmt"
	"math/rand"
	"strconv"
)

// SalesColumns is the fixed schema of the generated sales sheet.
var SalesColumns = []string{
	"Product ID", "Category", "Price", "Quantity", "Revenue", "Cost", "Profit", "Month", "Region",
}

// SalesGeneratorConfig configures the sales data generator
type SalesGeneratorConfig struct {
	RowCount   int      `json:"row_count"`
	Categories []string `json:"categories"`
	Months     []string `json:"months"`
	Regions    []string `json:"regions"`
	Seed       int64    `json:"seed"`
}

// DefaultSalesConfig returns the defaults used by the demo workbook
func DefaultSalesConfig() SalesGeneratorConfig {
	return SalesGeneratorConfig{
		RowCount:   100,
		Categories: []string{"A", "B", "C", "D"},
		Months:     []string{"Month 1", "Month 2", "Month 3", "Month 4"},
		Regions:    []string{"North", "Central", "South"},
		Seed:       42,
	}
}

// SalesDataGenerator generates a deterministic product sales table
type SalesDataGenerator struct {
	config SalesGeneratorConfig
	rng    *rand.Rand
}

// NewSalesDataGenerator creates a new sales data generator
func NewSalesDataGenerator(config SalesGeneratorConfig) *SalesDataGenerator {
	return &SalesDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRows returns RowCount rows in SalesColumns order, as text cells.
func (g *SalesDataGenerator) GenerateRows() [][]string {
	rows := make([][]string, 0, g.config.RowCount)
	for i := 1; i <= g.config.RowCount; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("SP%03d", i),
			g.pick(g.config.Categories),
			formatFloat(g.uniform(10_000, 500_000)),
			strconv.Itoa(10 + g.rng.Intn(990)),
			formatFloat(g.uniform(500_000, 5_000_000)),
			formatFloat(g.uniform(200_000, 3_000_000)),
			formatFloat(g.uniform(-100_000, 2_000_000)),
			g.pick(g.config.Months),
			g.pick(g.config.Regions),
		})
	}
	return rows
}

// Workbook renders the generated rows as an xlsx file.
func (g *SalesDataGenerator) Workbook(sheet string) ([]byte, error) {
	return WorkbookBytes(Sheet{Name: sheet, Headers: SalesColumns, Rows: g.GenerateRows()})
}

func (g *SalesDataGenerator) uniform(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

func (g *SalesDataGenerator) pick(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[g.rng.Intn(len(values))]
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
