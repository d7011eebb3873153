package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/okian/cupstats/internal/domain/aggregate"
)

// ChartHandler serves the derived chart tables.
type ChartHandler struct {
	deps Dependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps Dependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

// byText serves a chart filtered by one text query parameter.
func (h *ChartHandler) byText(param string, chart func(context.Context, string) (aggregate.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := chart(r.Context(), r.URL.Query().Get(param))
		if err != nil {
			writeDependencyError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// byYear serves a chart filtered by the optional year query parameter.
func (h *ChartHandler) byYear(chart func(context.Context, int) (aggregate.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		year, err := queryYear(r, "year")
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		res, err := chart(r.Context(), year)
		if err != nil {
			writeDependencyError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// HandleEditionMetrics handles GET /editions/{year}/metrics requests.
func (h *ChartHandler) HandleEditionMetrics(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(mux.Vars(r)["year"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	res, err := h.deps.EditionMetrics(r.Context(), year)
	if err != nil {
		writeDependencyError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleMatchAttendance handles GET /matches/attendance?stage= requests.
func (h *ChartHandler) HandleMatchAttendance(w http.ResponseWriter, r *http.Request) {
	av, err := h.deps.MatchAttendance(r.Context(), r.URL.Query().Get("stage"))
	if err != nil {
		writeDependencyError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, av)
}

// HandlePlayers handles GET /players?team= requests.
func (h *ChartHandler) HandlePlayers(w http.ResponseWriter, r *http.Request) {
	pe, err := h.deps.PlayerEvents(r.Context(), r.URL.Query().Get("team"))
	if err != nil {
		writeDependencyError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, pe)
}

// HandleFilters handles GET /filters requests.
func (h *ChartHandler) HandleFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.deps.Options(r.Context())
	if err != nil {
		writeDependencyError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}
