package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/fars-data/internal/domain"
	"github.com/couchcryptid/fars-data/internal/observability"
	"github.com/couchcryptid/fars-data/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var dataDir = filepath.Join("..", "..", "data")

// --- mocks ---

type mockRenderer struct {
	calls []domain.StateMap
	err   error
}

func (m *mockRenderer) RenderStateMap(_ context.Context, sm domain.StateMap) error {
	m.calls = append(m.calls, sm)
	return m.err
}

type mockPublisher struct {
	published []domain.SummaryTable
	err       error
}

func (m *mockPublisher) PublishSummary(_ context.Context, s domain.SummaryTable) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, s)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(t *testing.T) (*pipeline.Pipeline, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	return pipeline.New(dataDir, discardLogger(), metrics), metrics
}

// --- tests ---

func TestLoadYear(t *testing.T) {
	p, metrics := newTestPipeline(t)

	df, err := p.LoadYear(2014)
	require.NoError(t, err)
	assert.Equal(t, 123, df.Nrow())
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.FilesLoaded), 0)
	assert.InDelta(t, 123.0, testutil.ToFloat64(metrics.RowsLoaded), 0)
}

func TestLoadYear_NotFound(t *testing.T) {
	p, metrics := newTestPipeline(t)

	_, err := p.LoadYear(1999)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.LoadFailures.WithLabelValues("not_found")), 0)
}

func TestLoadYear_PlainCSVFallback(t *testing.T) {
	dir := t.TempDir()
	csv := "STATE,MONTH,LATITUDE,LONGITUD\n1,1,32.5,-86.9\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accident_2020.csv"), []byte(csv), 0o600))

	p := pipeline.New(dir, discardLogger(), observability.NewMetricsForTesting())
	df, err := p.LoadYear(2020)
	require.NoError(t, err)
	assert.Equal(t, 1, df.Nrow())
}

func TestLoadYears_PreservesOrderAndLength(t *testing.T) {
	p, _ := newTestPipeline(t)

	years := []int{2014, 1999, 2013, 2014}
	results := p.LoadYears(years)

	require.Len(t, results, len(years))
	for i, r := range results {
		assert.Equal(t, years[i], r.Year)
	}
	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.True(t, results[2].OK())
	assert.True(t, results[3].OK(), "duplicates load independently")

	assert.Equal(t, []string{domain.ColMonth, domain.ColYear}, results[0].Months.Names())
	assert.Equal(t, 123, results[0].Months.Nrow())
	assert.ErrorIs(t, results[1].Err, domain.ErrFileNotFound)
}

func TestLoadYears_WarnsOnFailedYear(t *testing.T) {
	var logs bytes.Buffer
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(dataDir, slog.New(slog.NewTextHandler(&logs, nil)), metrics)

	results := p.LoadYears([]int{2013, 1999})

	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "year=1999")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.YearsSkipped), 0)
}

func TestLoadYears_SchemaFailureIsPerYear(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accident_2020.csv"), []byte("STATE\n1\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accident_2021.csv"),
		[]byte("STATE,MONTH,LATITUDE,LONGITUD\n1,3,32.5,-86.9\n"), 0o600))

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(dir, discardLogger(), metrics)

	results := p.LoadYears([]int{2020, 2021})
	assert.ErrorIs(t, results[0].Err, domain.ErrMissingColumns)
	assert.True(t, results[1].OK())
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.LoadFailures.WithLabelValues("schema")), 0)
}

func TestSummarizeYears_ReferenceYears(t *testing.T) {
	p, metrics := newTestPipeline(t)

	summary, err := p.SummarizeYears([]int{2013, 2014})
	require.NoError(t, err)

	assert.Equal(t, []string{"MONTH", "2013", "2014"}, summary.Columns())
	require.Len(t, summary.Rows, 12)
	for i, row := range summary.Rows {
		assert.Equal(t, i+1, row.Month)
	}
	jan, ok := summary.Count(1, 2013)
	require.True(t, ok)
	assert.Equal(t, 12, jan)
	dec, ok := summary.Count(12, 2014)
	require.True(t, ok)
	assert.Equal(t, 13, dec)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.SummariesBuilt), 0)
}

func TestSummarizeYears_OneColumnPerValidYear(t *testing.T) {
	p, _ := newTestPipeline(t)

	summary, err := p.SummarizeYears([]int{2015, 1999, 2013, 2015})
	require.NoError(t, err)

	assert.Equal(t, []int{2013, 2015}, summary.Years)
	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, 1999, summary.Skipped[0].Year)
	assert.Len(t, summary.Rows, 12)
}

func TestSummarizeYears_AllMissing(t *testing.T) {
	p, _ := newTestPipeline(t)

	summary, err := p.SummarizeYears([]int{1990, 1991})
	require.NoError(t, err)
	assert.Equal(t, []string{"MONTH"}, summary.Columns())
	assert.Len(t, summary.Rows, 12)
	assert.Len(t, summary.Skipped, 2)
}

func TestPublish(t *testing.T) {
	p, metrics := newTestPipeline(t)
	summary, err := p.SummarizeYears([]int{2013})
	require.NoError(t, err)

	pub := &mockPublisher{}
	require.NoError(t, p.Publish(context.Background(), summary, pub))
	require.Len(t, pub.published, 1)
	assert.Equal(t, []int{2013}, pub.published[0].Years)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.SummariesPublished), 0)
}

func TestPublish_Error(t *testing.T) {
	p, metrics := newTestPipeline(t)

	err := p.Publish(context.Background(), domain.SummaryTable{}, &mockPublisher{err: errors.New("broker down")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.PublishFailures), 0)
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.SummariesPublished), 0)
}

func TestMapState_Renders(t *testing.T) {
	p, metrics := newTestPipeline(t)
	r := &mockRenderer{}

	m, err := p.MapState(context.Background(), 56, 2013, r)
	require.NoError(t, err)

	require.Len(t, r.calls, 1)
	assert.Equal(t, m, r.calls[0])
	assert.Len(t, m.Sites, 3)
	assert.Len(t, m.Points(), 1)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.MapsRendered), 0)
}

func TestMapState_InvalidState(t *testing.T) {
	p, _ := newTestPipeline(t)
	r := &mockRenderer{}

	_, err := p.MapState(context.Background(), 2, 2013, r)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Empty(t, r.calls)
}

func TestMapState_MissingYear(t *testing.T) {
	p, _ := newTestPipeline(t)
	r := &mockRenderer{}

	_, err := p.MapState(context.Background(), 1, 1999, r)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
	assert.Empty(t, r.calls)
}

func TestMapState_RendererError(t *testing.T) {
	p, _ := newTestPipeline(t)
	r := &mockRenderer{err: errors.New("disk full")}

	_, err := p.MapState(context.Background(), 1, 2013, r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestValidateYear(t *testing.T) {
	p, _ := newTestPipeline(t)

	report, err := p.ValidateYear(2013)
	require.NoError(t, err)
	assert.True(t, report.Passed())
	assert.Equal(t, 125, report.Rows)

	_, err = p.ValidateYear(1999)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestValidateYear_ReportsMissingColumns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accident_2020.csv"), []byte("STATE,FATALS\n1,1\n"), 0o600))
	p := pipeline.New(dir, discardLogger(), observability.NewMetricsForTesting())

	report, err := p.ValidateYear(2020)
	require.NoError(t, err)
	assert.False(t, report.Passed())
	assert.Equal(t, "Required columns", report.Phases[0].Name)
}

func TestHeaderOnlyYear(t *testing.T) {
	dir := t.TempDir()
	header := "STATE,ST_CASE,MONTH,LATITUDE,LONGITUD\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accident_2020.csv"), []byte(header), 0o600))
	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(dir, discardLogger(), metrics)

	df, err := p.LoadYear(2020)
	require.NoError(t, err)
	assert.Equal(t, 0, df.Nrow())
	assert.Equal(t, 5, df.Ncol())

	summary, err := p.SummarizeYears([]int{2020, 2021})
	require.NoError(t, err)
	assert.Equal(t, []int{2020}, summary.Years)
	require.Len(t, summary.Skipped, 1)
	assert.Equal(t, 2021, summary.Skipped[0].Year)
	assert.InDelta(t, 1.0, testutil.ToFloat64(metrics.YearsSkipped), 0)

	r := &mockRenderer{}
	_, err = p.MapState(context.Background(), 5, 2020, r)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Empty(t, r.calls)
	assert.InDelta(t, 0.0, testutil.ToFloat64(metrics.LoadFailures.WithLabelValues("parse")), 0)
}

func TestCheckReadiness(t *testing.T) {
	p, _ := newTestPipeline(t)
	require.NoError(t, p.CheckReadiness(context.Background()))

	missing := pipeline.New(filepath.Join(t.TempDir(), "nope"), discardLogger(), observability.NewMetricsForTesting())
	assert.Error(t, missing.CheckReadiness(context.Background()))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	notDir := pipeline.New(file, discardLogger(), observability.NewMetricsForTesting())
	assert.Error(t, notDir.CheckReadiness(context.Background()))
}
