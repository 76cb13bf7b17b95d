// Package health exposes liveness and readiness probes for the
// long-running watch mode.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

const checkTimeout = 5 * time.Second

// CheckFunc probes one dependency. It returns whether the dependency
// is usable and an optional detail message.
type CheckFunc func(ctx context.Context) (bool, string)

type checkResult struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

type report struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version,omitempty"`
	Checks    map[string]checkResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// Server serves /live, /ready and /health on its own port so probes
// keep working even when the main workload is busy.
type Server struct {
	port    int
	version string

	mu     sync.RWMutex
	checks map[string]CheckFunc

	srv *http.Server
}

// NewServer creates a probe server. Start must be called to serve.
func NewServer(port int, version string) *Server {
	return &Server{
		port:    port,
		version: version,
		checks:  make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named dependency check. Checks registered after
// Start are picked up on the next probe.
func (s *Server) RegisterCheck(name string, check CheckFunc) {
	s.mu.Lock()
	s.checks[name] = check
	s.mu.Unlock()
}

// Start begins serving probes in the background.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/live", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "alive")
	})
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/health", s.handleHealth)

	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: checkTimeout,
	}

	go func() {
		// Probes are best-effort; a failed listen never takes the
		// router down.
		_ = s.srv.ListenAndServe()
	}()

	return nil
}

// Stop shuts the probe server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) snapshot() map[string]CheckFunc {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]CheckFunc, len(s.checks))
	for name, fn := range s.checks {
		out[name] = fn
	}
	return out
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	for _, check := range s.snapshot() {
		if ok, _ := check(ctx); !ok {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	fmt.Fprint(w, "ready")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	rep := report{
		Status:    "ok",
		Version:   s.version,
		Checks:    make(map[string]checkResult),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	for name, check := range s.snapshot() {
		ok, msg := check(ctx)
		rep.Checks[name] = checkResult{Healthy: ok, Message: msg}
		if !ok {
			rep.Status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if rep.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(rep)
}
