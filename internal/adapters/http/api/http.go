// Package api exposes chart tables and trend predictions over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/okian/cupstats/internal/domain/aggregate"
	"github.com/okian/cupstats/internal/domain/dataset"
	"github.com/okian/cupstats/internal/domain/trend"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Counts(ctx context.Context) (dataset.Counts, error)
	Options(ctx context.Context) (dataset.Options, error)

	EditionGoals(ctx context.Context, host string) (aggregate.Result, error)
	EditionAttendance(ctx context.Context, host string) (aggregate.Result, error)
	Titles(ctx context.Context, host string) (aggregate.Result, error)
	EditionMetrics(ctx context.Context, year int) (aggregate.Result, error)

	StageDistribution(ctx context.Context, stage string) (aggregate.Result, error)
	MatchGoals(ctx context.Context, stage string) (aggregate.Result, error)
	MatchAttendance(ctx context.Context, stage string) (aggregate.AttendanceView, error)
	MatchStats(ctx context.Context, year int) (aggregate.Result, error)
	Correlation(ctx context.Context, year int) (aggregate.Result, error)
	GoalsByYear(ctx context.Context, year int) (aggregate.Result, error)

	PlayerEvents(ctx context.Context, team string) (aggregate.PlayerEvents, error)

	Predict(ctx context.Context, year int, predictionType string) (trend.Result, error)
	PredictionYears() (def, minYear, maxYear int)
}

// InvalidRequestFunc reports whether a dependency error was caused by the
// caller's input.
type InvalidRequestFunc func(error) bool

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	chartHandler      *ChartHandler
	predictionHandler *PredictionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, invalid InvalidRequestFunc) *Server {
	if invalid == nil {
		invalid = func(error) bool { return false }
	}
	return &Server{
		healthHandler:     NewHealthHandler(deps),
		statsHandler:      NewStatsHandler(statsProvider),
		chartHandler:      NewChartHandler(deps),
		predictionHandler: NewPredictionHandler(deps, invalid),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.Use(RequestIDMiddleware)

	get := func(path, endpoint string, h http.HandlerFunc) {
		r.HandleFunc(path, MetricsMiddleware(h, endpoint)).Methods(http.MethodGet)
	}

	get("/healthz", "healthz", s.healthHandler.HandleHealth)
	r.Handle("/metrics", s.healthHandler.MetricsHandler()).Methods(http.MethodGet)
	get("/stats", "stats", s.statsHandler.HandleStats)
	get("/filters", "filters", s.chartHandler.HandleFilters)

	get("/editions/goals", "edition_goals", s.chartHandler.byText("host", s.chartHandler.deps.EditionGoals))
	get("/editions/attendance", "edition_attendance", s.chartHandler.byText("host", s.chartHandler.deps.EditionAttendance))
	get("/editions/titles", "edition_titles", s.chartHandler.byText("host", s.chartHandler.deps.Titles))
	get("/editions/{year:[0-9]+}/metrics", "edition_metrics", s.chartHandler.HandleEditionMetrics)

	get("/matches/stages", "match_stages", s.chartHandler.byText("stage", s.chartHandler.deps.StageDistribution))
	get("/matches/goals", "match_goals", s.chartHandler.byText("stage", s.chartHandler.deps.MatchGoals))
	get("/matches/attendance", "match_attendance", s.chartHandler.HandleMatchAttendance)
	get("/matches/stats", "match_stats", s.chartHandler.byYear(s.chartHandler.deps.MatchStats))
	get("/matches/correlation", "match_correlation", s.chartHandler.byYear(s.chartHandler.deps.Correlation))
	get("/matches/goals-by-year", "goals_by_year", s.chartHandler.byYear(s.chartHandler.deps.GoalsByYear))

	get("/players", "players", s.chartHandler.HandlePlayers)
	get("/predictions", "predictions", s.predictionHandler.HandlePredict)
	get("/predictions/types", "prediction_types", s.predictionHandler.HandleTypes)

	// Middlewares only run on matched routes.
	r.NotFoundHandler = RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	}))
	r.MethodNotAllowedHandler = RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	}))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDependencyError maps a service error to a response. Anything that is
// not the caller's fault is a 503 until the dataset is loaded.
func writeDependencyError(w http.ResponseWriter, err error, invalid InvalidRequestFunc) {
	switch {
	case errors.Is(err, ErrBadRequest) || (invalid != nil && invalid(err)):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusServiceUnavailable, "unavailable", fmt.Errorf("%w: %w", ErrNotReady, err))
	}
}

// queryYear parses an optional year parameter; absent or blank means 0.
func queryYear(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", ErrBadRequest, name, raw)
	}
	return year, nil
}
