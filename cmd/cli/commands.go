package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tabreport/internal/analysis"
	"tabreport/internal/errors"
	"tabreport/internal/report"
	"tabreport/ports"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	formatMarkdown = "markdown"
	formatHTML     = "html"
	formatJSON     = "json"
	formatCSV      = "csv"
)

func validFormat(f string) bool {
	switch f {
	case formatMarkdown, formatHTML, formatJSON, formatCSV:
		return true
	}
	return false
}

func (c *cli) load(ctx context.Context, path string) (*ports.LoadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ParseError(fmt.Sprintf("cannot read %s", path), err)
	}
	return c.loader.Load(ctx, filepath.Base(path), data, c.sheet)
}

// run loads path, executes cmd and prints the result in the chosen format.
func (c *cli) run(ctx context.Context, path string, cmd analysis.Command) (*analysis.Result, error) {
	loaded, err := c.load(ctx, path)
	if err != nil {
		return nil, err
	}
	result, err := analysis.Execute(loaded.Table, cmd)
	if err != nil {
		return nil, err
	}
	return result, c.print(result)
}

func (c *cli) print(result *analysis.Result) error {
	switch c.format {
	case formatJSON:
		enc := json.NewEncoder(c.out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case formatCSV:
		data, err := report.ResultCSV(result)
		if err != nil {
			return err
		}
		_, err = c.out.Write(data)
		return err
	case formatHTML:
		_, err := c.out.Write(report.ToHTML(report.ResultMarkdown(result)))
		return err
	default:
		_, err := fmt.Fprint(c.out, report.ResultMarkdown(result))
		return err
	}
}

func newSheetsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "sheets FILE",
		Short: "List the worksheets of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := c.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, name := range loaded.Sheets {
				fmt.Fprintln(c.out, name)
			}
			return nil
		},
	}
}

func newDescribeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "describe FILE [COLUMN]",
		Short: "Descriptive statistics for every numeric column, or one column",
		Example: `  tabreport describe sales.xlsx
  tabreport describe sales.xlsx Revenue --sheet Q1`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := analysis.Command{Op: analysis.OpDescribe}
			if len(args) == 2 {
				command = analysis.Command{Op: analysis.OpColumnDetail, Column: args[1]}
			}
			_, err := c.run(cmd.Context(), args[0], command)
			return err
		},
	}
}

func newGroupCmd(c *cli) *cobra.Command {
	var agg string

	cmd := &cobra.Command{
		Use:     "group FILE GROUP_COLUMN VALUE_COLUMN",
		Short:   "Aggregate a column per group",
		Example: "  tabreport group sales.xlsx Region Revenue --agg mean",
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.run(cmd.Context(), args[0], analysis.Command{
				Op:          analysis.OpGroupReduce,
				GroupColumn: args[1],
				ValueColumn: args[2],
				Agg:         agg,
			})
			return err
		},
	}

	cmd.Flags().StringVar(&agg, "agg", "sum", "Aggregation: sum|mean|max|min|count")
	return cmd
}

func newCorrelateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "correlate FILE",
		Short: "Pearson correlation matrix of the numeric columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.run(cmd.Context(), args[0], analysis.Command{Op: analysis.OpCorrelation})
			return err
		},
	}
}

func newTrendCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "trend FILE COLUMN",
		Short: "Row-over-row changes of a numeric column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.run(cmd.Context(), args[0], analysis.Command{Op: analysis.OpTrend, Column: args[1]})
			return err
		},
	}
}

func newCompareCmd(c *cli) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "compare FILE COLUMN_A COLUMN_B",
		Short: "Compare the means and sums of two numeric columns",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := c.run(cmd.Context(), args[0], analysis.Command{
				Op:      analysis.OpCompare,
				ColumnA: args[1],
				ColumnB: args[2],
			})
			if err != nil {
				return err
			}
			if strict && !result.Compare.Ratio.Defined() {
				return errors.DivisionByZero(fmt.Sprintf("mean of %q is zero or undefined", args[2]))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when the ratio of means is undefined")
	return cmd
}

func newReportCmd(c *cli) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "report FILE...",
		Short: "Summary report (overview, statistics, correlations) for one or more files",
		Long: `Build a summary report for every file. Files are loaded and summarised
concurrently, each into its own table; output keeps the argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.format == formatJSON || c.format == formatCSV {
				return errors.InvalidInput("report supports markdown and html output only")
			}
			return c.report(cmd.Context(), args, concurrency)
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Files processed at once")
	return cmd
}

func (c *cli) report(ctx context.Context, paths []string, concurrency int) error {
	summaries := make([]string, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			loaded, err := c.load(ctx, path)
			if err != nil {
				return errors.Wrapf(err, "%s", path)
			}
			summaries[i] = report.Summary(fmt.Sprintf("%s (%s)", loaded.FileName, loaded.Sheet), loaded.Table)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	md := strings.Join(summaries, "\n---\n\n")
	if c.format == formatHTML {
		_, err := c.out.Write(report.ToHTML(md))
		return err
	}
	_, err := fmt.Fprint(c.out, md)
	return err
}
