// Package xlsx exports summary tables as Excel workbooks.
package xlsx

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/fars-data/internal/domain"
)

// Sheet names in the exported workbook.
const (
	SummarySheet = "Summary"
	SkippedSheet = "Skipped"
)

// ContentType is the media type of the exported workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteSummary writes s as a workbook: a Summary sheet with the MONTH column
// and one column per year, missing counts left blank, and a Skipped sheet
// listing the years that failed to load, if any.
func WriteSummary(w io.Writer, s domain.SummaryTable) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := writeCounts(f, s); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if len(s.Skipped) > 0 {
		if err := writeSkipped(f, s.Skipped); err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
	}
	if err := f.SetDocProps(&excelize.DocProperties{
		Title:   "FARS crashes by month",
		Creator: "fars",
		Created: s.GeneratedAt.UTC().Format(time.RFC3339),
	}); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func writeCounts(f *excelize.File, s domain.SummaryTable) error {
	header := make([]any, 0, len(s.Years)+1)
	for _, name := range s.Columns() {
		header = append(header, name)
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return err
	}

	for i, row := range s.Rows {
		r := i + 2
		if err := setCell(f, SummarySheet, 1, r, row.Month); err != nil {
			return err
		}
		for j, c := range row.Counts {
			if c == nil {
				continue
			}
			if err := setCell(f, SummarySheet, j+2, r, *c); err != nil {
				return err
			}
		}
	}
	return f.SetPanes(SummarySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSkipped(f *excelize.File, skipped []domain.YearFailure) error {
	if _, err := f.NewSheet(SkippedSheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(SkippedSheet, "A1", &[]any{"year", "reason"}); err != nil {
		return err
	}
	for i, s := range skipped {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SkippedSheet, cell, &[]any{s.Year, s.Reason}); err != nil {
			return err
		}
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(sheet, cell, value)
}
