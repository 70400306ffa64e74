// Package api exposes provider administration and prompt operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/lueurxax/tolgee-ai/internal/core/llm"
	"github.com/lueurxax/tolgee-ai/internal/core/prompt"
	"github.com/lueurxax/tolgee-ai/internal/platform/observability"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	maxBodyBytes      = 20 << 20

	headerUserID = "X-User-Id"

	logKeyMethod   = "method"
	logKeyPath     = "path"
	logKeyRoute    = "route"
	logKeyStatus   = "status"
	logKeyDuration = "duration"
	logKeyRequest  = "request_id"
)

// Options configures the HTTP listener.
type Options struct {
	Port           int
	RequestTimeout time.Duration
}

// Server serves the REST API.
type Server struct {
	providers *llm.ProviderService
	prompts   *prompt.Service
	opts      Options
	now       func() time.Time
	logger    *zerolog.Logger
}

// NewServer creates the API server.
func NewServer(providers *llm.ProviderService, prompts *prompt.Service, opts Options, logger *zerolog.Logger) *Server {
	return &Server{providers: providers, prompts: prompts, opts: opts, now: time.Now, logger: logger}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	if s.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
	}

	r.Route("/v2/organizations/{organizationId}/llm-providers", func(r chi.Router) {
		r.Get("/", s.listProviders)
		r.Post("/", s.createProvider)
		r.Get("/server-providers", s.listServerProviders)
		r.Post("/run", s.runPrompt)
		r.Put("/{providerId}", s.updateProvider)
		r.Delete("/{providerId}", s.deleteProvider)
	})

	r.Route("/v2/projects/{projectId}/prompts", func(r chi.Router) {
		r.Get("/", s.listPrompts)
		r.Post("/", s.createPrompt)
		r.Get("/default", s.defaultPrompt)
		r.Get("/get-variables", s.promptVariables)
		r.Post("/run", s.runPlayground)
		r.Post("/translate", s.translate)
		r.Get("/{promptId}", s.getPrompt)
		r.Put("/{promptId}", s.updatePrompt)
		r.Delete("/{promptId}", s.deletePrompt)
	})

	return r
}

// Start serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		//nolint:errcheck,contextcheck // shutdown is best-effort, the parent context is already canceled
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.opts.Port).Msg("API server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server error: %w", err)
	}

	return nil
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		observability.HTTPRequests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()

		s.logger.Debug().
			Str(logKeyMethod, r.Method).
			Str(logKeyRoute, route).
			Int(logKeyStatus, ww.Status()).
			Dur(logKeyDuration, time.Since(start)).
			Str(logKeyRequest, middleware.GetReqID(r.Context())).
			Msg("request served")
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return validationError("body", err.Error())
	}

	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, validationError(name)
	}

	return id, nil
}

func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, validationError(name)
	}

	return &id, nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, validationError(name)
	}

	return v, nil
}
