package server

import (
	"net/http"
	"time"

	"github.com/nlopezgi/bazel-toolchains/pkg/errors"
	"github.com/nlopezgi/bazel-toolchains/pkg/serializer"
)

// HealthResponse is the document served by the liveness and readiness probes.
type HealthResponse struct {
	Status    string    `json:"status" yaml:"status"`
	Service   string    `json:"service" yaml:"service"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Reason    string    `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// handleHealth handles GET /healthz. Liveness is unconditional: a process
// that can answer is alive.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"method not allowed", false, nil)
		return
	}
	s.writeProbe(w, http.StatusOK, "healthy", "")
}

// handleReady handles GET /ready. Readiness flips on once Run has started the
// listener and off again when shutdown begins.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, r, http.StatusMethodNotAllowed, errors.ErrCodeMethodNotAllowed,
			"method not allowed", false, nil)
		return
	}

	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	if !ready {
		s.writeProbe(w, http.StatusServiceUnavailable, "not_ready", "service is initializing or shutting down")
		return
	}
	s.writeProbe(w, http.StatusOK, "ready", "")
}

func (s *Server) writeProbe(w http.ResponseWriter, status int, state, reason string) {
	serializer.RespondJSON(w, status, HealthResponse{
		Status:    state,
		Service:   s.name,
		Timestamp: time.Now().UTC(),
		Reason:    reason,
	})
}
