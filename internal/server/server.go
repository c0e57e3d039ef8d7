// Package server serves the csstree HTTP API: parse, validate, generate and
// match endpoints under /v1, with health checks and optional metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/csstree/internal/api"
	"github.com/Sumatoshi-tech/csstree/internal/observability"
	"github.com/Sumatoshi-tech/csstree/pkg/config"
)

// Route paths.
const (
	PathParse    = "/v1/parse"
	PathValidate = "/v1/validate"
	PathGenerate = "/v1/generate"
	PathMatch    = "/v1/match"
	PathHealth   = "/healthz"
	PathReady    = "/readyz"
	PathMetrics  = "/metrics"
)

// shutdownTimeout bounds the drain of in-flight requests on shutdown.
const shutdownTimeout = 10 * time.Second

// bodyOverhead is the room left in a request body for JSON framing and
// escaping around the CSS payload.
const bodyOverhead = 4

// ErrBadBody indicates a request body that is not a JSON object of the
// expected shape.
var ErrBadBody = errors.New("invalid request body")

// Deps holds the collaborators of the API handler.
type Deps struct {
	// Service runs the requests. Nil uses api.NewService(nil, 0).
	Service *api.Service

	// Tracer creates request spans. Nil uses a no-op tracer.
	Tracer trace.Tracer

	// Metrics records RED metrics per route. May be nil.
	Metrics *observability.REDMetrics

	// MetricsHandler is mounted at /metrics when non-nil.
	MetricsHandler http.Handler

	// Logger receives request failures. Nil uses slog.Default().
	Logger *slog.Logger

	// MaxBodyBytes caps request bodies. Zero allows four times
	// api.DefaultMaxInputBytes.
	MaxBodyBytes int64
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	service *api.Service
	logger  *slog.Logger
	maxBody int64
}

// NewHandler returns the API routes wrapped in tracing and metrics middleware.
func NewHandler(deps Deps) http.Handler {
	h := &handler{
		service: deps.Service,
		logger:  deps.Logger,
		maxBody: deps.MaxBodyBytes,
	}

	if h.service == nil {
		h.service = api.NewService(nil, 0)
	}

	if h.logger == nil {
		h.logger = slog.Default()
	}

	if h.maxBody <= 0 {
		h.maxBody = bodyOverhead * api.DefaultMaxInputBytes
	}

	tracer := deps.Tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer("")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+PathParse, route(h, h.service.Parse))
	mux.HandleFunc("POST "+PathValidate, route(h, h.service.Validate))
	mux.HandleFunc("POST "+PathGenerate, route(h, h.service.Generate))
	mux.HandleFunc("POST "+PathMatch, route(h, h.service.Match))
	mux.Handle("GET "+PathHealth, observability.HealthHandler())
	mux.Handle("GET "+PathReady, observability.ReadyHandler(observability.DictionaryCheck(h.service.Syntax().Lexer())))

	if deps.MetricsHandler != nil {
		mux.Handle("GET "+PathMetrics, deps.MetricsHandler)
	}

	return observability.HTTPMiddleware(tracer, deps.Metrics, mux)
}

// route decodes a JSON request of type Req, runs call and writes its
// response or error.
func route[Req, Resp any](h *handler, call func(Req) (Resp, error)) http.HandlerFunc {
	return func(rw http.ResponseWriter, hr *http.Request) {
		var req Req

		decoder := json.NewDecoder(http.MaxBytesReader(rw, hr.Body, h.maxBody))
		decoder.DisallowUnknownFields()

		err := decoder.Decode(&req)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.fail(hr.Context(), rw, fmt.Errorf("%w: %w", api.ErrInputTooLarge, err))

				return
			}

			h.fail(hr.Context(), rw, fmt.Errorf("%w: %w", ErrBadBody, err))

			return
		}

		resp, err := call(req)
		if err != nil {
			h.fail(hr.Context(), rw, err)

			return
		}

		writeJSON(hr.Context(), rw, http.StatusOK, resp)
	}
}

func (h *handler) fail(ctx context.Context, rw http.ResponseWriter, err error) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "request failed", "error", err)
	}

	writeJSON(ctx, rw, status, ErrorResponse{Error: err.Error()})
}

// StatusOf maps a request error to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, api.ErrInputTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrBadBody):
		return http.StatusBadRequest
	case api.IsClientError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes the given value as JSON with status code.
func writeJSON(ctx context.Context, rw http.ResponseWriter, status int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	encoder := json.NewEncoder(rw)
	encoder.SetEscapeHTML(false)

	encodeErr := encoder.Encode(value)
	if encodeErr != nil {
		slog.Default().ErrorContext(ctx, "failed to encode JSON response", "error", encodeErr)
	}
}

// Server is the HTTP API server.
type Server struct {
	http   *http.Server
	addr   string
	logger *slog.Logger
}

// New creates a Server listening on cfg.Addr() once run.
func New(cfg config.ServerConfig, handler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		http: &http.Server{
			Handler:      handler,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		addr:   cfg.Addr(),
		logger: logger,
	}
}

// Listen opens the listening socket.
func (s *Server) Listen(ctx context.Context) (net.Listener, error) {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.addr, err)
	}

	return listener, nil
}

// Serve handles connections on listener until ctx is done, then drains
// in-flight requests.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	serveErr := make(chan error, 1)

	go func() {
		serveErr <- s.http.Serve(listener)
	}()

	s.logger.InfoContext(ctx, "csstree server listening", "addr", listener.Addr().String())

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	err = <-serveErr
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}

	return nil
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	listener, err := s.Listen(ctx)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listener)
}
