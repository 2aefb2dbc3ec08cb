package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/go-gota/gota/dataframe"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/fars-data/internal/adapter/mapplot"
	"github.com/couchcryptid/fars-data/internal/adapter/xlsx"
	"github.com/couchcryptid/fars-data/internal/domain"
)

// Service is the data backend behind the API routes.
// It is implemented by pipeline.Pipeline.
type Service interface {
	sharedobs.ReadinessChecker
	DataDir() string
	LoadYear(year int) (dataframe.DataFrame, error)
	SummarizeYears(years []int) (domain.SummaryTable, error)
	MapState(ctx context.Context, state, year int, r domain.MapRenderer) (domain.StateMap, error)
}

// MapRendering builds a renderer for each map request.
type MapRendering struct {
	New           func(w io.Writer, format string) domain.MapRenderer
	DefaultFormat string
}

// Server exposes health, readiness, metrics and the read-only data API.
type Server struct {
	httpServer *http.Server
	svc        Service
	maps       MapRendering
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and the
// /api/v1 routes.
func NewServer(addr string, svc Service, maps MapRendering, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	if maps.DefaultFormat == "" {
		maps.DefaultFormat = mapplot.FormatPNG
	}
	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		maps:   maps,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(svc))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/v1/summary", s.handleSummary)
	mux.HandleFunc("GET /api/v1/years/{year}", s.handleYear)
	mux.HandleFunc("GET /api/v1/states/{state}/map", s.handleStateMap)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// handleSummary serves the month-by-year table. Without a years parameter
// every year found in the data directory is summarized.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	if format != "" && format != "json" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "format must be json or xlsx")
		return
	}

	years, err := domain.ParseYears(q["years"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(years) == 0 {
		if years, err = domain.DiscoverYears(s.svc.DataDir()); err != nil {
			s.internalError(w, "discover years", err)
			return
		}
	}

	summary, err := s.svc.SummarizeYears(years)
	if err != nil {
		s.internalError(w, "summarize", err)
		return
	}

	if format == "xlsx" {
		var buf bytes.Buffer
		if err := xlsx.WriteSummary(&buf, summary); err != nil {
			s.internalError(w, "export summary", err)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="fars-summary.xlsx"`)
		writeBody(w, xlsx.ContentType, buf.Bytes())
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) handleYear(w http.ResponseWriter, r *http.Request) {
	year, err := domain.ParseYear(r.PathValue("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	df, err := s.svc.LoadYear(year)
	switch {
	case errors.Is(err, domain.ErrFileNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, domain.ErrMissingColumns):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		s.internalError(w, "load year", err)
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{
		"year":    year,
		"rows":    df.Nrow(),
		"columns": df.Names(),
	})
}

// handleStateMap renders into a buffer first so that a failure can still be
// reported with a proper status code.
func (s *Server) handleStateMap(w http.ResponseWriter, r *http.Request) {
	state, err := domain.ParseState(r.PathValue("state"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	q := r.URL.Query()
	if q.Get("year") == "" {
		writeError(w, http.StatusBadRequest, "year is required")
		return
	}
	year, err := domain.ParseYear(q.Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = s.maps.DefaultFormat
	}
	if !mapplot.ValidFormat(format) {
		writeError(w, http.StatusBadRequest, "format must be png, svg or pdf")
		return
	}

	var buf bytes.Buffer
	m, err := s.svc.MapState(r.Context(), state, year, s.maps.New(&buf, format))
	switch {
	case errors.Is(err, domain.ErrFileNotFound), errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.internalError(w, "map state", err)
		return
	}

	if m.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeBody(w, mapplot.ContentType(format), buf.Bytes())
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("request failed", "op", op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client gone
}
