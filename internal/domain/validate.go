package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gota/gota/dataframe"
)

// maxPhaseErrors caps the per-row messages kept for one phase.
const maxPhaseErrors = 10

// Phase is one named check with the problems it found.
type Phase struct {
	Name   string
	Errors []string

	// dropped counts errors beyond maxPhaseErrors.
	dropped int
}

func (p *Phase) errorf(format string, args ...any) {
	if len(p.Errors) >= maxPhaseErrors {
		p.dropped++
		return
	}
	p.Errors = append(p.Errors, fmt.Sprintf(format, args...))
}

func (p *Phase) finish() {
	if p.dropped > 0 {
		p.Errors = append(p.Errors, fmt.Sprintf("... and %d more", p.dropped))
	}
}

// Passed reports whether the phase found no problems.
func (p Phase) Passed() bool { return len(p.Errors) == 0 }

// ValidationReport is the result of ValidateRecords.
type ValidationReport struct {
	Rows   int
	Phases []Phase

	// Sentinel counts are informational; sentinels are legal values.
	LatitudeSentinels  int
	LongitudeSentinels int
}

// Passed reports whether every phase passed.
func (r ValidationReport) Passed() bool {
	for _, p := range r.Phases {
		if !p.Passed() {
			return false
		}
	}
	return true
}

// ValidateRecords checks a record table read with ReadRecords against the
// columns this package depends on. Row numbers in messages are 1-based data
// rows (the header is not counted).
func ValidateRecords(df dataframe.DataFrame) ValidationReport {
	report := ValidationReport{Rows: df.Nrow()}

	columns := Phase{Name: "Required columns"}
	missing := MissingColumns(df)
	if len(missing) > 0 {
		columns.errorf("missing: %s", strings.Join(missing, ", "))
	}
	report.Phases = append(report.Phases, columns)
	absent := make(map[string]bool, len(missing))
	for _, c := range missing {
		absent[c] = true
	}

	if !absent[ColMonth] {
		report.Phases = append(report.Phases, validateMonths(df))
	}
	if !absent[ColState] {
		report.Phases = append(report.Phases, validateStates(df))
	}
	if !absent[ColLatitude] {
		report.LatitudeSentinels = countAbove(df, ColLatitude, MaxLatitude)
	}
	if !absent[ColLongitude] {
		report.LongitudeSentinels = countAbove(df, ColLongitude, MaxLongitude)
	}
	return report
}

func validateMonths(df dataframe.DataFrame) Phase {
	p := Phase{Name: "MONTH in 1-12"}
	months := df.Col(ColMonth)
	for i := 0; i < months.Len(); i++ {
		e := months.Elem(i)
		if e.IsNA() {
			p.errorf("row %d: MONTH missing", i+1)
			continue
		}
		m, err := e.Int()
		if err != nil || m < 1 || m > MonthsPerYear {
			p.errorf("row %d: MONTH %q out of range", i+1, e.String())
		}
	}
	p.finish()
	return p
}

func validateStates(df dataframe.DataFrame) Phase {
	p := Phase{Name: "STATE present"}
	states := df.Col(ColState)
	for i := 0; i < states.Len(); i++ {
		if states.Elem(i).IsNA() {
			p.errorf("row %d: STATE missing", i+1)
		}
	}
	p.finish()
	return p
}

func countAbove(df dataframe.DataFrame, col string, limit float64) int {
	n := 0
	for _, v := range df.Col(col).Float() {
		if !math.IsNaN(v) && v > limit {
			n++
		}
	}
	return n
}
