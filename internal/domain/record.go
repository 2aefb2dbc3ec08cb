package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Column names used by the loaders and aggregations.
const (
	ColMonth     = "MONTH"
	ColState     = "STATE"
	ColLatitude  = "LATITUDE"
	ColLongitude = "LONGITUD"

	// ColYear is added by ProjectMonths; it is not part of the source files.
	ColYear = "year"
)

// Sentinel thresholds: values above these mean "not recorded".
const (
	MaxLatitude  = 90.0
	MaxLongitude = 900.0
)

// requiredTypes declares the schema of the columns every data file must carry.
// Remaining columns are type-inferred.
var requiredTypes = map[string]series.Type{
	ColMonth:     series.Int,
	ColState:     series.Int,
	ColLatitude:  series.Float,
	ColLongitude: series.Float,
}

// RequiredColumns lists the required columns in a stable order.
var RequiredColumns = []string{ColMonth, ColState, ColLongitude, ColLatitude}

// MissingColumns returns the required columns absent from df, in
// RequiredColumns order.
func MissingColumns(df dataframe.DataFrame) []string {
	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}
	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// RequireColumns returns an error wrapping ErrMissingColumns when df lacks
// any required column.
func RequireColumns(df dataframe.DataFrame) error {
	if missing := MissingColumns(df); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return nil
}

// ParseYear converts textual input to a year, truncating any fractional part
// ("2013.9" -> 2013).
func ParseYear(s string) (int, error) {
	n, err := parseTruncated(s)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q: %w", s, err)
	}
	return n, nil
}

// ParseState converts textual input to a state code the same way ParseYear does.
func ParseState(s string) (int, error) {
	n, err := parseTruncated(s)
	if err != nil {
		return 0, fmt.Errorf("invalid state %q: %w", s, err)
	}
	return n, nil
}

func parseTruncated(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("out of range")
	}
	return int(f), nil
}
