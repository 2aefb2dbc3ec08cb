package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// MonthsPerYear is the fixed row count of a SummaryTable.
const MonthsPerYear = 12

// MonthCounts is one summary row. Counts is aligned with SummaryTable.Years;
// a nil entry means no crash was observed for that (year, month).
type MonthCounts struct {
	Month  int
	Counts []*int
}

// YearFailure records a requested year that could not be loaded.
type YearFailure struct {
	Year   int    `json:"year"`
	Reason string `json:"reason"`
}

// SummaryTable is the wide month-by-year crash count table.
type SummaryTable struct {
	Years       []int
	Rows        []MonthCounts
	Skipped     []YearFailure
	GeneratedAt time.Time
}

// Summarize concatenates the month tables of the successful results, counts
// rows per (year, MONTH) and pivots the years into columns. Failed results
// are listed in Skipped. Rows with a missing or out-of-range MONTH are not
// counted.
func Summarize(results []YearResult) (SummaryTable, error) {
	summary := SummaryTable{GeneratedAt: clock.Now()}

	counts := make(map[int]map[int]int) // year -> month -> count
	var tables []dataframe.DataFrame
	for _, r := range results {
		if !r.OK() {
			summary.Skipped = append(summary.Skipped, YearFailure{Year: r.Year, Reason: r.Err.Error()})
			continue
		}
		// A year that loaded gets a column even when it has no countable row.
		if counts[r.Year] == nil {
			counts[r.Year] = make(map[int]int)
		}
		tables = append(tables, r.Months)
	}

	if len(tables) > 0 {
		combined := tables[0]
		for _, t := range tables[1:] {
			combined = combined.RBind(t)
		}
		if combined.Err != nil {
			return SummaryTable{}, fmt.Errorf("combine month tables: %w", combined.Err)
		}
		if err := countMonths(combined, counts); err != nil {
			return SummaryTable{}, err
		}
	}

	for year := range counts {
		summary.Years = append(summary.Years, year)
	}
	sort.Ints(summary.Years)

	summary.Rows = make([]MonthCounts, MonthsPerYear)
	for i := range summary.Rows {
		month := i + 1
		row := MonthCounts{Month: month, Counts: make([]*int, len(summary.Years))}
		for j, year := range summary.Years {
			if n, ok := counts[year][month]; ok {
				row.Counts[j] = &n
			}
		}
		summary.Rows[i] = row
	}
	return summary, nil
}

func countMonths(combined dataframe.DataFrame, counts map[int]map[int]int) error {
	months := combined.Col(ColMonth)
	years := combined.Col(ColYear)
	if months.Err != nil {
		return fmt.Errorf("count months: %w", months.Err)
	}
	if years.Err != nil {
		return fmt.Errorf("count months: %w", years.Err)
	}

	for i := 0; i < combined.Nrow(); i++ {
		year, err := years.Elem(i).Int()
		if err != nil {
			continue
		}
		if counts[year] == nil {
			counts[year] = make(map[int]int)
		}
		m := months.Elem(i)
		if m.IsNA() {
			continue
		}
		month, err := m.Int()
		if err != nil || month < 1 || month > MonthsPerYear {
			continue
		}
		counts[year][month]++
	}
	return nil
}

// Columns returns the column headers: MONTH followed by each year.
func (s SummaryTable) Columns() []string {
	cols := make([]string, 0, len(s.Years)+1)
	cols = append(cols, ColMonth)
	for _, y := range s.Years {
		cols = append(cols, strconv.Itoa(y))
	}
	return cols
}

// Count returns the crash count for (month, year). ok is false when the cell
// is missing or the year is not a column.
func (s SummaryTable) Count(month, year int) (int, bool) {
	col := -1
	for j, y := range s.Years {
		if y == year {
			col = j
			break
		}
	}
	if col < 0 || month < 1 || month > len(s.Rows) {
		return 0, false
	}
	c := s.Rows[month-1].Counts[col]
	if c == nil {
		return 0, false
	}
	return *c, true
}

// DataFrame renders the summary as a record table. Missing cells are NaN.
func (s SummaryTable) DataFrame() dataframe.DataFrame {
	months := make([]int, len(s.Rows))
	for i, row := range s.Rows {
		months[i] = row.Month
	}
	cols := []series.Series{series.New(months, series.Int, ColMonth)}

	for j, year := range s.Years {
		values := make([]interface{}, len(s.Rows))
		for i, row := range s.Rows {
			if c := row.Counts[j]; c != nil {
				values[i] = *c
			} else {
				values[i] = "NaN"
			}
		}
		cols = append(cols, series.New(values, series.Int, strconv.Itoa(year)))
	}
	return dataframe.New(cols...)
}

// MarshalJSON encodes the summary as its columns and one object per row,
// with null for missing cells.
func (s SummaryTable) MarshalJSON() ([]byte, error) {
	rows := make([]map[string]*int, len(s.Rows))
	for i, row := range s.Rows {
		month := row.Month
		obj := map[string]*int{ColMonth: &month}
		for j, year := range s.Years {
			obj[strconv.Itoa(year)] = row.Counts[j]
		}
		rows[i] = obj
	}

	skipped := s.Skipped
	if skipped == nil {
		skipped = []YearFailure{}
	}
	return json.Marshal(struct {
		Columns     []string          `json:"columns"`
		Rows        []map[string]*int `json:"rows"`
		Skipped     []YearFailure     `json:"skipped"`
		GeneratedAt time.Time         `json:"generated_at"`
	}{
		Columns:     s.Columns(),
		Rows:        rows,
		Skipped:     skipped,
		GeneratedAt: s.GeneratedAt,
	})
}
