// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/okian/isles/internal/app"
	"github.com/okian/isles/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Segments returns the shared timeline.
	Segments() []model.Segment

	// Sessions lists every open session.
	Sessions() []app.Snapshot

	// SessionSnapshot returns one session or an error wrapping app.ErrSessionNotFound.
	SessionSnapshot(id uuid.UUID) (app.Snapshot, error)
}

// Server wires HTTP routes for the service.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	timelineHandler *TimelineHandler
	sessionsHandler *SessionsHandler
	ws              http.Handler
}

// NewServer creates a new API server with all handlers. ws may be nil.
func NewServer(deps Dependencies, stats StatsSource, ws http.Handler) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(stats),
		timelineHandler: NewTimelineHandler(deps),
		sessionsHandler: NewSessionsHandler(deps),
		ws:              ws,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", instrument("healthz", s.healthHandler.HandleHealth))
	mux.HandleFunc("/stats", instrument("stats", s.statsHandler.HandleStats))
	mux.HandleFunc("/timeline", instrument("timeline", s.timelineHandler.HandleGetTimeline))
	mux.HandleFunc("/timeline/", instrument("segment", s.timelineHandler.HandleGetSegment))
	mux.HandleFunc("/sessions", instrument("sessions", s.sessionsHandler.HandleListSessions))
	mux.HandleFunc("/sessions/", instrument("session", s.sessionsHandler.HandleGetSession))
	if s.ws != nil {
		// Not wrapped: the upgrade needs the raw http.Hijacker.
		mux.Handle("/ws", s.ws)
	}
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
