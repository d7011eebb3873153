package api

import (
	"net/http"

	"github.com/okian/cupstats/internal/domain/trend"
)

// PredictionHandler serves trend predictions.
type PredictionHandler struct {
	deps    Dependencies
	invalid InvalidRequestFunc
}

// NewPredictionHandler creates a new prediction handler.
func NewPredictionHandler(deps Dependencies, invalid InvalidRequestFunc) *PredictionHandler {
	return &PredictionHandler{deps: deps, invalid: invalid}
}

type predictionResponse struct {
	trend.Result
	Lines []string `json:"lines,omitempty"`
}

type typeInfo struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Unit  string `json:"unit"`
}

type typesResponse struct {
	Types       []typeInfo `json:"types"`
	DefaultYear int        `json:"default_year"`
	MinYear     int        `json:"min_year"`
	MaxYear     int        `json:"max_year"`
}

// HandlePredict handles GET /predictions?year=&type= requests. Insufficient
// data and fit errors are reported in the body with a 200 status.
func (h *PredictionHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r, "year")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	kind := r.URL.Query().Get("type")
	if kind == "" {
		kind = trend.TotalAttendance.String()
	}

	res, err := h.deps.Predict(r.Context(), year, kind)
	if err != nil {
		writeDependencyError(w, err, h.invalid)
		return
	}

	resp := predictionResponse{Result: res}
	if res.Summary != nil {
		resp.Lines = res.Summary.Lines()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleTypes handles GET /predictions/types requests.
func (h *PredictionHandler) HandleTypes(w http.ResponseWriter, _ *http.Request) {
	def, lo, hi := h.deps.PredictionYears()
	resp := typesResponse{DefaultYear: def, MinYear: lo, MaxYear: hi}
	for _, t := range trend.Types() {
		cfg, err := t.Config()
		if err != nil {
			continue
		}
		resp.Types = append(resp.Types, typeInfo{Type: cfg.Token, Title: cfg.Title, Unit: cfg.Unit})
	}
	writeJSON(w, http.StatusOK, resp)
}
