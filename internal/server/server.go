// Package server exposes a resource store over the transfer protocol.
// Requests are handled independently; the store is the only shared state
// and concurrent publishes to one version are not serialized.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"nyoka-packages/internal/core"
	"nyoka-packages/internal/ports"
)

const (
	requestIDHeader = "X-Request-Id"
	tracerName      = "nyoka-packages/server"
	shutdownTimeout = 10 * time.Second
)

type Server struct {
	Store    ports.ResourceStorePort
	Resolver core.ClosureResolver

	tracer   trace.Tracer
	registry *prometheus.Registry
	metrics  *metrics
}

type Option func(*Server)

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// WithRegistry registers server metrics on registry instead of a private one.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

func NewServer(store ports.ResourceStorePort, opts ...Option) *Server {
	s := &Server{
		Store:    store,
		Resolver: core.NewClosureResolver(store),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	s.metrics = newMetrics(s.registry)
	return s
}

type handler func(http.ResponseWriter, *http.Request, httprouter.Params) (route string, status int)

func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.GET(routeResources, s.httpHandler(s.getResources))
	router.GET(routeVersions, s.httpHandler(s.getVersions))
	router.POST(routeVersion, s.httpHandler(s.postResource))
	router.GET(routeFile, s.httpHandler(s.getFile))
	router.HEAD(routeFile, s.httpHandler(s.getFile))
	router.GET(routeDependencies, s.httpHandler(s.getDependencies))
	router.GET(routeManifest, s.httpHandler(s.getManifest))

	router.GET(routeHealth, s.httpHandler(getHealth))
	router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return router
}

func (s *Server) httpHandler(h handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		start := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := s.tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("request.id", requestID),
			))
		defer span.End()
		logger := log.With().Str("request_id", requestID).Logger()
		ctx = logger.WithContext(ctx)

		route, status := h(w, r.WithContext(ctx), p)
		statusStr := strconv.Itoa(status)
		if status == 0 {
			statusStr = "???"
		}

		elapsed := time.Since(start)
		s.metrics.responseDuration.
			WithLabelValues(route, statusStr).
			Observe(float64(elapsed.Nanoseconds()) / float64(time.Millisecond))
		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		logger.Info().
			Str("remote_addr", r.RemoteAddr).
			Str("method", r.Method).
			Str("uri", r.RequestURI).
			Int("status", status).
			Dur("elapsed", elapsed).
			Msg("handled request")
	}
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("repository server listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("repository server stopped").
			WithCause(err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("repository server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
