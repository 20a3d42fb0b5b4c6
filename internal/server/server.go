// Package server exposes the scoring engine as the HTTP verification service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ppiankov/trustlens/internal/client"
	"github.com/ppiankov/trustlens/internal/model"
	"github.com/ppiankov/trustlens/internal/worker"
)

// Health probe values
const (
	HealthStatus = "TrustLens Live Backend Running"
	HealthMode   = "INTELLIGENT FALLBACK (AI-READY)"
)

const (
	errBadBody      = "Request body must be JSON: { text: string }"
	errTooLarge     = "Request body too large"
	errVerifyFailed = "Verification failed"
	errRateLimited  = "Too many requests"
)

// Server is the verification HTTP service
type Server struct {
	cfg      model.ServerConfig
	verifier client.Verifier
	limiter  *worker.Limiter
	log      *zap.Logger
}

// New creates a server scoring requests with verifier
func New(cfg model.ServerConfig, verifier client.Verifier, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}

	s := &Server{cfg: cfg, verifier: verifier, log: log}
	if cfg.RateLimit.Enabled {
		s.limiter = worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize)
	}
	return s
}

// Routes returns the service router
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors)
	if s.limiter != nil {
		r.Use(s.rateLimit)
	}

	r.Get("/", s.handleHealth)
	r.Post("/verify", s.handleVerify)
	return r
}

// ListenAndServe serves on cfg.Addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("verification service listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, client.HealthStatus{Status: HealthStatus, Mode: HealthMode})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var body struct {
		Text *string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, errTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, errBadBody)
		return
	}
	if body.Text == nil || *body.Text == "" {
		writeError(w, http.StatusBadRequest, errBadBody)
		return
	}

	result, err := s.verifier.Verify(r.Context(), *body.Text)
	if err != nil {
		s.log.Error("scoring failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errVerifyFailed)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
