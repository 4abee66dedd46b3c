package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/openclaw/clawevolve/controller/internal/orchestrator"
	"github.com/openclaw/clawevolve/controller/internal/telemetry"
)

// #region server

// Server is the controller's HTTP surface.
type Server struct {
	addr    string
	ctrl    *orchestrator.Controller
	hub     *Hub
	metrics *Metrics
	mux     *http.ServeMux
}

// NewServer wires the handlers. hub and metrics should already be
// registered as sinks on the controller.
func NewServer(addr string, ctrl *orchestrator.Controller, hub *Hub, metrics *Metrics) *Server {
	s := &Server{
		addr:    addr,
		ctrl:    ctrl,
		hub:     hub,
		metrics: metrics,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/status", s.handleStatus)
	s.mux.HandleFunc("/v1/trajectories", s.handleIngest)
	s.mux.HandleFunc("/v1/evolve", s.handleEvolve)
	s.mux.HandleFunc("/v1/runs", s.handleRuns)
	s.mux.HandleFunc("/v1/events", s.handleEvents)
	s.mux.HandleFunc("/ws", s.hub.HandleWS)
	s.mux.Handle("/metrics", s.metrics.Handler())
	return s
}

// Handler returns the routing handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{Addr: s.addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		server.Close()
	}()
	log.Printf("[WEB] serving on %s", s.addr)
	err := server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// #endregion server

// #region handlers

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Status())
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var t telemetry.Trajectory
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid trajectory: " + err.Error()})
		return
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now().UTC()
	}

	st := s.ctrl.Ingest(t)
	s.metrics.ObserveIngest(st)
	writeJSON(w, http.StatusAccepted, st)
}

func (s *Server) handleEvolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var ov orchestrator.EvolveOverrides
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&ov); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid overrides: " + err.Error()})
			return
		}
	}

	summary, err := s.ctrl.Evolve(r.Context(), ov)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{"error": err.Error(), "run": summary})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.RunHistory())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Events())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[WEB] write response: %v", err)
	}
}

// #endregion handlers
