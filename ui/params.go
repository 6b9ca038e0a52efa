package ui

import (
	"net/url"
	"strings"

	"tabreport/internal/analysis"
)

// commandFrom reads a command from form or query values.
func commandFrom(get func(string) string) analysis.Command {
	field := func(key string) string { return strings.TrimSpace(get(key)) }
	return analysis.Command{
		Op:          analysis.Operation(field("op")),
		Column:      field("column"),
		GroupColumn: field("group_column"),
		ValueColumn: field("value_column"),
		Agg:         field("agg"),
		ColumnA:     field("column_a"),
		ColumnB:     field("column_b"),
	}
}

// commandQuery encodes a command as a query string. Empty fields are left out.
func commandQuery(cmd analysis.Command) string {
	q := url.Values{}
	for key, value := range map[string]string{
		"op":           string(cmd.Op),
		"column":       cmd.Column,
		"group_column": cmd.GroupColumn,
		"value_column": cmd.ValueColumn,
		"agg":          cmd.Agg,
		"column_a":     cmd.ColumnA,
		"column_b":     cmd.ColumnB,
	} {
		if value != "" {
			q.Set(key, value)
		}
	}
	return q.Encode()
}
