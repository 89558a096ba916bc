package api

import "net/http"

// StatsSource reports process counters: open and total sessions, queue
// size, tick interval and the size of the loaded timeline.
type StatsSource interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the service counters as a flat JSON object.
type StatsHandler struct {
	source StatsSource
}

// NewStatsHandler creates a stats handler backed by source.
func NewStatsHandler(source StatsSource) *StatsHandler {
	return &StatsHandler{source: source}
}

// HandleStats handles GET /stats. Counters change every request, so the
// response is never cached.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.source.GetStats())
}
