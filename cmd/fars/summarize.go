package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	kafkaadapter "github.com/couchcryptid/fars-data/internal/adapter/kafka"
	"github.com/couchcryptid/fars-data/internal/adapter/xlsx"
	"github.com/couchcryptid/fars-data/internal/domain"
)

func newSummarizeCmd() *cobra.Command {
	var (
		format   string
		xlsxPath string
		publish  bool
	)
	cmd := &cobra.Command{
		Use:   "summarize [YEAR...]",
		Short: "Count crashes per month for each year",
		Long: `Count crashes per month for each year and print the month-by-year table.

Years may be given as separate arguments or comma-separated. Without
arguments every year in the data directory is summarized. Years that fail to
load are reported and left out of the table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			years, err := a.yearsOrAll(args)
			if err != nil {
				return err
			}

			summary, err := a.pipeline.SummarizeYears(years)
			if err != nil {
				return err
			}
			for _, s := range summary.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %d: %s\n", s.Year, s.Reason)
			}

			if err := printSummary(cmd.OutOrStdout(), summary, format); err != nil {
				return err
			}
			if xlsxPath != "" {
				if err := writeXLSX(xlsxPath, summary); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", xlsxPath)
			}
			if publish {
				if !a.cfg.PublishEnabled() {
					return errors.New("--publish requires KAFKA_BROKERS")
				}
				w := kafkaadapter.NewWriter(a.cfg, a.logger)
				defer w.Close()
				return a.pipeline.Publish(cmd.Context(), summary, w)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, csv or json")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write the table to this Excel file")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish the table to the Kafka summary topic")
	return cmd
}

func printSummary(w io.Writer, s domain.SummaryTable, format string) error {
	switch format {
	case "table":
		return printTable(w, s)
	case "csv":
		return s.DataFrame().WriteCSV(w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	default:
		return fmt.Errorf("unknown format %q: want table, csv or json", format)
	}
}

func printTable(w io.Writer, s domain.SummaryTable) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(s.Columns(), "\t")+"\t")
	for _, row := range s.Rows {
		cells := make([]string, 0, len(row.Counts)+1)
		cells = append(cells, strconv.Itoa(row.Month))
		for _, c := range row.Counts {
			if c == nil {
				cells = append(cells, "NaN")
				continue
			}
			cells = append(cells, strconv.Itoa(*c))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	return tw.Flush()
}

func writeXLSX(path string, s domain.SummaryTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := xlsx.WriteSummary(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
