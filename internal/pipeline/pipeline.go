package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/fars-data/internal/domain"
	"github.com/couchcryptid/fars-data/internal/observability"
	"github.com/go-gota/gota/dataframe"
)

// SummaryPublisher delivers a summary table to a downstream sink.
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, s domain.SummaryTable) error
}

// Pipeline runs the load, summarize and map operations against one data
// directory. It holds no per-call state; every call re-reads its files.
type Pipeline struct {
	dataDir string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline reading data files from dataDir.
func New(dataDir string, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		dataDir: dataDir,
		logger:  logger,
		metrics: metrics,
	}
}

// DataDir returns the directory data files are read from.
func (p *Pipeline) DataDir() string {
	return p.dataDir
}

// CheckReadiness returns nil if the data directory exists and can be listed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	info, err := os.Stat(p.dataDir)
	if err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("data dir %s is not a directory", p.dataDir)
	}
	if _, err := os.ReadDir(p.dataDir); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	return nil
}

// LoadYear loads the full record table for one year.
func (p *Pipeline) LoadYear(year int) (dataframe.DataFrame, error) {
	path := domain.ResolveYearFile(p.dataDir, year)
	start := time.Now()

	df, err := domain.LoadRecords(path)
	if err != nil {
		p.metrics.LoadFailures.WithLabelValues(failureReason(err)).Inc()
		return dataframe.DataFrame{}, err
	}

	p.metrics.FilesLoaded.Inc()
	p.metrics.RowsLoaded.Add(float64(df.Nrow()))
	p.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	p.logger.Debug("data file loaded", "year", year, "path", path, "rows", df.Nrow(), "columns", df.Ncol())
	return df, nil
}

// ValidateYear reads one year's file without the required-column check and
// reports its integrity problems. The error is non-nil only when the file
// cannot be read at all.
func (p *Pipeline) ValidateYear(year int) (domain.ValidationReport, error) {
	path := domain.ResolveYearFile(p.dataDir, year)
	df, err := domain.ReadRecords(path)
	if err != nil {
		p.metrics.LoadFailures.WithLabelValues(failureReason(err)).Inc()
		return domain.ValidationReport{}, err
	}
	report := domain.ValidateRecords(df)
	p.logger.Debug("data file validated", "year", year, "path", path, "rows", report.Rows, "passed", report.Passed())
	return report, nil
}

// LoadYears loads each year in order and reduces it to its MONTH column plus
// a year column. A year that fails is logged and returned as a failed
// result; the remaining years still load. The result has one entry per
// requested year, in request order.
func (p *Pipeline) LoadYears(years []int) []domain.YearResult {
	results := make([]domain.YearResult, len(years))
	for i, year := range years {
		results[i] = p.loadMonths(year)
		if err := results[i].Err; err != nil {
			p.logger.Warn("year failed to load, skipping", "year", year, "error", err)
			p.metrics.YearsSkipped.Inc()
		}
	}
	return results
}

func (p *Pipeline) loadMonths(year int) domain.YearResult {
	df, err := p.LoadYear(year)
	if err != nil {
		return domain.YearResult{Year: year, Err: err}
	}
	months, err := domain.ProjectMonths(df, year)
	if err != nil {
		return domain.YearResult{Year: year, Err: err}
	}
	return domain.YearResult{Year: year, Months: months}
}

// SummarizeYears builds the month-by-year crash count table for the given
// years. Years that fail to load are left out and listed in Skipped.
func (p *Pipeline) SummarizeYears(years []int) (domain.SummaryTable, error) {
	summary, err := domain.Summarize(p.LoadYears(years))
	if err != nil {
		return domain.SummaryTable{}, err
	}
	p.metrics.SummariesBuilt.Inc()
	p.logger.Info("summary built",
		"requested", len(years),
		"columns", len(summary.Years),
		"skipped", len(summary.Skipped),
	)
	return summary, nil
}

// Publish hands a summary to pub.
func (p *Pipeline) Publish(ctx context.Context, s domain.SummaryTable, pub SummaryPublisher) error {
	if err := pub.PublishSummary(ctx, s); err != nil {
		p.metrics.PublishFailures.Inc()
		return fmt.Errorf("publish summary: %w", err)
	}
	p.metrics.SummariesPublished.Inc()
	p.logger.Info("summary published", "columns", len(s.Years))
	return nil
}

// MapState loads one year, selects the crashes of state and hands them to r.
// It returns domain.ErrFileNotFound for a missing year and
// domain.ErrInvalidState for a state absent from that year. A state with no
// rows is not an error: nothing is rendered and the empty map is returned.
func (p *Pipeline) MapState(ctx context.Context, state, year int, r domain.MapRenderer) (domain.StateMap, error) {
	df, err := p.LoadYear(year)
	if err != nil {
		return domain.StateMap{}, err
	}
	m, err := domain.BuildStateMap(df, state, year)
	if err != nil {
		return domain.StateMap{}, err
	}
	if err := p.render(ctx, m, r); err != nil {
		return domain.StateMap{}, err
	}
	return m, nil
}

// render draws m unless it is empty.
func (p *Pipeline) render(ctx context.Context, m domain.StateMap, r domain.MapRenderer) error {
	if m.Empty() {
		p.logger.Info("no accidents to plot", "state", m.State, "year", m.Year)
		p.metrics.MapsEmpty.Inc()
		return nil
	}
	if err := r.RenderStateMap(ctx, m); err != nil {
		return fmt.Errorf("render state %d, %d: %w", m.State, m.Year, err)
	}
	p.metrics.MapsRendered.Inc()
	p.logger.Info("state map rendered",
		"state", m.State,
		"year", m.Year,
		"sites", len(m.Sites),
		"points", len(m.Points()),
	)
	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrFileNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrMissingColumns):
		return "schema"
	default:
		return "parse"
	}
}
