package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/fars-data/internal/domain"
)

var errValidationFailed = errors.New("validation failed")

// fileResult is the validation outcome of one data file.
type fileResult struct {
	name   string
	report domain.ValidationReport
	err    error
}

func (r fileResult) passed() bool { return r.err == nil && r.report.Passed() }

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [YEAR...]",
		Short: "Check data files for the columns and values the loader relies on",
		Long: `Check data files for the columns and values the loader relies on.

Each file is read in full and checked for the required columns, MONTH values
within 1-12 and a STATE on every row. Coordinate sentinels are counted but
are not errors. Without arguments every year in the data directory is
checked. Exits non-zero when any check fails.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			years, err := a.yearsOrAll(args)
			if err != nil {
				return err
			}

			results := make([]fileResult, len(years))
			for i, year := range years {
				report, err := a.pipeline.ValidateYear(year)
				results[i] = fileResult{
					name:   filepath.Base(domain.ResolveYearFile(a.cfg.DataDir, year)),
					report: report,
					err:    err,
				}
			}

			if !printValidation(cmd.OutOrStdout(), results) {
				return errValidationFailed
			}
			return nil
		},
	}
}

// printValidation writes a per-file PASS/FAIL report followed by the
// detailed errors, and reports whether everything passed.
func printValidation(w io.Writer, results []fileResult) bool {
	fmt.Fprintln(w, "=== FARS Data Validation ===")

	allPassed := true
	for _, r := range results {
		fmt.Fprintln(w)
		if r.err != nil {
			allPassed = false
			fmt.Fprintf(w, "%s\n  \033[31mFAIL\033[0m %v\n", r.name, r.err)
			continue
		}
		fmt.Fprintf(w, "%s (%d rows)\n", r.name, r.report.Rows)
		for _, p := range r.report.Phases {
			status := "\033[32mPASS\033[0m"
			if !p.Passed() {
				status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.Errors))
				allPassed = false
			}
			fmt.Fprintf(w, "  %-24s %s\n", p.Name, status)
		}
		fmt.Fprintf(w, "  coordinate sentinels: %d latitude, %d longitude\n",
			r.report.LatitudeSentinels, r.report.LongitudeSentinels)
	}

	for _, r := range results {
		for _, p := range r.report.Phases {
			if p.Passed() {
				continue
			}
			fmt.Fprintf(w, "\n--- %s: %s ---\n", r.name, p.Name)
			for i, e := range p.Errors {
				fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
			}
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return true
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return false
}
