package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bellhop-dev/bellhop/pkg/client"
)

// sessionStatus is one row of the /sessions listing.
type sessionStatus struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	Occupants int    `json:"occupants"`
	Error     string `json:"error,omitempty"`
}

// serveOps exposes metrics, health, and per-session status over HTTP.
// It lives for the duration of the run and shuts down with the context.
func serveOps(ctx context.Context, addr string, sessions []*client.Session, log *slog.Logger) {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/sessions", func(w http.ResponseWriter, req *http.Request) {
		statuses := make([]sessionStatus, 0, len(sessions))
		for _, s := range sessions {
			st := sessionStatus{
				ID:        s.ID(),
				State:     s.State().String(),
				Occupants: len(s.Room().Occupants()),
			}
			if err := s.Err(); err != nil {
				st.Error = err.Error()
			}
			statuses = append(statuses, st)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(statuses)
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info("ops endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("ops endpoint failed", "err", err)
	}
}
