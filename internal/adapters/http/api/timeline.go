package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/isles/internal/domain/model"
)

// TimelineDependencies defines the interface for timeline reads.
type TimelineDependencies interface {
	Segments() []model.Segment
}

// TimelineHandler serves the shared segment timeline.
type TimelineHandler struct {
	deps TimelineDependencies
}

// NewTimelineHandler creates a new timeline handler.
func NewTimelineHandler(deps TimelineDependencies) *TimelineHandler {
	return &TimelineHandler{deps: deps}
}

type timelineResponse struct {
	Count    int             `json:"count"`
	Segments []model.Segment `json:"segments"`
}

// HandleGetTimeline handles GET /timeline requests.
func (h *TimelineHandler) HandleGetTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	segs := h.deps.Segments()
	writeJSON(w, http.StatusOK, timelineResponse{Count: len(segs), Segments: segs})
}

// HandleGetSegment handles GET /timeline/{index} requests.
func (h *TimelineHandler) HandleGetSegment(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_segment"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/timeline/")
	index, err := strconv.Atoi(raw)
	if err != nil || raw == "" || strings.Contains(raw, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	segs := h.deps.Segments()
	if index < 0 || index >= len(segs) {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, segs[index])
}
