// Package gateway exposes the skill system over HTTP: health, skill and run
// listings, audit queries, event history, routing, and a WebSocket event
// stream.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bioclaw/bioclaw/internal/audit"
	"github.com/bioclaw/bioclaw/internal/events"
	"github.com/bioclaw/bioclaw/internal/gateway/ws"
	"github.com/bioclaw/bioclaw/internal/router"
	"github.com/bioclaw/bioclaw/internal/runs"
	"github.com/bioclaw/bioclaw/internal/skills"
)

// Server is the bioclaw gateway HTTP server.
type Server struct {
	httpServer *http.Server
	hub        *ws.Hub
	bus        *events.Bus
	registry   *skills.Registry
	runs       runs.Store
	audit      audit.Store
	router     *router.Router
}

// NewServer creates a new gateway server.
func NewServer(bus *events.Bus, registry *skills.Registry, store runs.Store, auditStore audit.Store, rt *router.Router, host string, port int) *Server {
	hub := ws.NewHub(bus, rt)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	s := &Server{
		hub:      hub,
		bus:      bus,
		registry: registry,
		runs:     store,
		audit:    auditStore,
		router:   rt,
	}

	// Routes
	r.Get("/api/health", s.handleHealth)
	r.Get("/api/ws", hub.ServeWS)
	r.Get("/api/events", s.handleEvents)
	r.Get("/api/skills", s.handleSkills)
	r.Get("/api/runs", s.handleRuns)
	r.Get("/api/audit", s.handleAudit)
	r.Post("/api/route", s.handleRoute)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", host, port),
		Handler: r,
	}

	return s
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("bioclaw gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}

	history := s.bus.History(limit)

	type eventJSON struct {
		ID        string             `json:"id"`
		RunID     string             `json:"run_id,omitempty"`
		Type      string             `json:"type"`
		Timestamp string             `json:"timestamp"`
		Source    events.EventSource `json:"source"`
		Payload   map[string]any     `json:"payload"`
	}

	result := make([]eventJSON, len(history))
	for i, e := range history {
		result[i] = eventJSON{
			ID:        e.ID,
			RunID:     e.RunID,
			Type:      string(e.Type),
			Timestamp: e.Timestamp.Format(time.RFC3339Nano),
			Source:    e.Source,
			Payload:   e.Payload,
		}
	}
	writeJSON(w, result)
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.registry.All())
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	list, err := s.runs.List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, list)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		http.Error(w, "audit store not available", http.StatusServiceUnavailable)
		return
	}

	q := r.URL.Query()
	f := audit.Filter{
		RunID:  q.Get("run"),
		Skill:  q.Get("skill"),
		Status: q.Get("status"),
	}
	if v := q.Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &f.Limit)
	}

	entries, err := s.audit.List(r.Context(), f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

// handleRoute routes a request without executing the selected skill.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req router.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	decision, err := s.router.Route(r.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, router.ErrNoMatch) || errors.Is(err, router.ErrSkillNotFound) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, decision)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
