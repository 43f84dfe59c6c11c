// Package webhook exposes a small HTTP surface for publishing outside the
// watched trigger flow, for example from a phone shortcut.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/colereed/showrunner/internal/bundle"
	"github.com/colereed/showrunner/internal/publish"
)

// Server handles POST /publish (publish the most recent bundle as a draft)
// and GET /health.
type Server struct {
	outputsDir string
	service    *publish.Service
	log        *slog.Logger
}

func NewServer(outputsDir string, service *publish.Service, log *slog.Logger) *Server {
	return &Server{outputsDir: outputsDir, service: service, log: log}
}

// Handler returns the route mux, separated from ListenAndServe for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /publish", s.handlePublish)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// ListenAndServe blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.Info("webhook server listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	dir, err := bundle.Latest(s.outputsDir)
	if err != nil {
		s.log.Error("no bundle to publish", "error", err)
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	post, err := s.service.Run(r.Context(), dir)
	if err != nil {
		var pubErr *publish.PublishError
		status := http.StatusBadGateway
		if errors.As(err, &pubErr) && pubErr.Op == "read bundle" {
			status = http.StatusUnprocessableEntity
		}
		s.log.Error("webhook publish failed", "bundle", dir, "error", err)
		writeJSON(w, status, map[string]string{"error": err.Error(), "bundle": dir})
		return
	}

	s.log.Info("webhook publish succeeded", "bundle", dir, "post_id", post.ID)
	writeJSON(w, http.StatusOK, map[string]any{
		"bundle":   dir,
		"post_id":  post.ID,
		"edit_url": post.EditURL,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
