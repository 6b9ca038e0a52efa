package analysis

import (
	"tabreport/domain/table"
	"tabreport/internal/errors"
)

func requireColumn(t *table.Table, name string) error {
	if !t.HasColumn(name) {
		return errors.InvalidColumn(name, "")
	}
	return nil
}

func requireNumeric(t *table.Table, name string) error {
	kind, ok := t.Kind(name)
	if !ok {
		return errors.InvalidColumn(name, "")
	}
	if kind != table.KindNumeric {
		return errors.InvalidColumn(name, "is not numeric")
	}
	return nil
}

// series returns a numeric column aligned to rows, with a parallel
// presence mask.
func series(t *table.Table, name string) ([]float64, []bool) {
	cells, _ := t.Column(name)
	values := make([]float64, len(cells))
	present := make([]bool, len(cells))
	for i, c := range cells {
		if !c.Missing {
			values[i] = c.Number
			present[i] = true
		}
	}
	return values, present
}
