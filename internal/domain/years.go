package domain

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// YearResult is the outcome of loading one requested year. Exactly one of
// Months and Err is meaningful: Months on success, Err on failure.
type YearResult struct {
	Year   int
	Months dataframe.DataFrame
	Err    error
}

// OK reports whether the year loaded.
func (r YearResult) OK() bool {
	return r.Err == nil
}

// ProjectMonths reduces a record table to its MONTH column plus a constant
// year column.
func ProjectMonths(df dataframe.DataFrame, year int) (dataframe.DataFrame, error) {
	months := df.Select([]string{ColMonth})
	if months.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("project months: %w", months.Err)
	}

	years := make([]int, months.Nrow())
	for i := range years {
		years[i] = year
	}
	out := months.Mutate(series.New(years, series.Int, ColYear))
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("project months: %w", out.Err)
	}
	return out, nil
}
