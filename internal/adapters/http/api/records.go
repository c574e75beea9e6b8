package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/okian/schedluck/internal/adapters/repository"
	"github.com/okian/schedluck/internal/domain/model"
	"github.com/okian/schedluck/internal/domain/record"
)

// RecordsHandler serves stored team results.
type RecordsHandler struct {
	deps RecordsDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordsDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

type teamSummary struct {
	Team      model.TeamID     `json:"team"`
	State     repository.State `json:"state"`
	Error     string           `json:"error,omitempty"`
	Schedules uint64           `json:"schedules"`
	UpdatedAt time.Time        `json:"updated_at"`
}

type teamDetail struct {
	teamSummary
	Records      record.Distribution `json:"records"`
	Completeness []record.Count      `json:"completeness"`
	Summary      record.Summary      `json:"summary"`
}

func summarize(e repository.Entry) teamSummary {
	return teamSummary{
		Team:      e.Team,
		State:     e.State,
		Error:     e.Err,
		Schedules: e.Distribution.Total(),
		UpdatedAt: e.UpdatedAt,
	}
}

// HandleList handles GET /records requests.
func (h *RecordsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_records"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	entries, err := h.deps.Entries(r.Context())
	if err != nil {
		writeStoreError(w, Wrap(op, err))
		return
	}
	out := make([]teamSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, summarize(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /records/{team} requests.
func (h *RecordsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_record"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	team := strings.TrimPrefix(r.URL.Path, "/records/")
	if team == "" || strings.Contains(team, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, ErrBadRequest))
		return
	}
	e, err := h.deps.Entry(r.Context(), model.TeamID(team))
	if err != nil {
		writeStoreError(w, Wrap(op, err))
		return
	}

	detail := teamDetail{teamSummary: summarize(e)}
	if e.State == repository.StateAggregated {
		detail.Records = e.Distribution
		detail.Completeness = e.Distribution.Completeness(h.deps.Weeks())
		detail.Summary = record.Summarize(e.Distribution)
	} else {
		detail.Records = record.NewDistribution()
		detail.Completeness = []record.Count{}
	}
	writeJSON(w, http.StatusOK, detail)
}
