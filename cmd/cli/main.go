package main

import (
	"fmt"
	"io"
	"os"

	"tabreport/adapters/excel"
	"tabreport/internal/config"
	"tabreport/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(&cli{out: os.Stdout}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cli carries what every subcommand shares.
type cli struct {
	out    io.Writer
	loader *excel.TableLoader

	sheet  string
	format string
}

func newRootCmd(c *cli) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tabreport",
		Short:         "Descriptive statistics and reports for spreadsheets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(c.format) {
				return fmt.Errorf("unknown output format %q (use markdown, html, json or csv)", c.format)
			}
			if c.loader != nil {
				return nil
			}
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.loader = excel.NewTableLoader(container.ExcelConfig(cfg), container.CoercionConfig(cfg))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&c.sheet, "sheet", "", "Worksheet to read (default: first sheet)")
	rootCmd.PersistentFlags().StringVarP(&c.format, "output", "o", formatMarkdown, "Output format: markdown|html|json|csv")

	rootCmd.AddCommand(
		newSheetsCmd(c),
		newDescribeCmd(c),
		newGroupCmd(c),
		newCorrelateCmd(c),
		newTrendCmd(c),
		newCompareCmd(c),
		newReportCmd(c),
	)
	return rootCmd
}
