// Package httpapi exposes the settings, request and analytics services over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/example/bellhop/internal/ctxutil"
	"github.com/example/bellhop/internal/metrics"
	"github.com/example/bellhop/internal/ports/primary"
	"github.com/example/bellhop/internal/version"
)

// Services are the primary ports served by the API.
type Services struct {
	Settings  primary.SettingsService
	Requests  primary.RequestService
	Analytics primary.AnalyticsService
}

// Server routes HTTP requests to the application services.
type Server struct {
	services        Services
	analyticsWindow time.Duration
	logger          *zap.Logger
	router          *mux.Router
}

// NewServer creates a Server. analyticsWindow is the trailing window embedded in settings reads.
func NewServer(services Services, analyticsWindow time.Duration, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		services:        services,
		analyticsWindow: analyticsWindow,
		logger:          logger,
		router:          mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.tenantMiddleware, s.accessLogMiddleware)

	s.router.HandleFunc("/healthz", s.health).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	settings := api.PathPrefix("/settings/escalation").Subrouter()
	settings.HandleFunc("", s.getSettings).Methods("GET")
	settings.HandleFunc("", s.putSettings).Methods("PUT")
	settings.HandleFunc("/field", s.patchSettingsField).Methods("PATCH")
	settings.HandleFunc("/presets", s.listPresets).Methods("GET")

	requests := api.PathPrefix("/requests").Subrouter()
	requests.HandleFunc("", s.listRequests).Methods("GET")
	requests.HandleFunc("", s.openRequest).Methods("POST")
	requests.HandleFunc("/{id}", s.getRequest).Methods("GET")
	requests.HandleFunc("/{id}/acknowledge", s.acknowledgeRequest).Methods("POST")
	requests.HandleFunc("/{id}/close", s.closeRequest).Methods("POST")

	api.HandleFunc("/analytics/escalation", s.getAnalytics).Methods("GET")
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"version": version.Get(),
	})
}

// tenantMiddleware stores the tenantId query parameter, if any, on the request context.
func (s *Server) tenantMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if tenantID := queryTenant(r); tenantID != "" {
			r = r.WithContext(ctxutil.WithTenantID(r.Context(), tenantID))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.String("tenant_id", ctxutil.TenantFromContext(r.Context())),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// queryTenant accepts merchantId as an alias, as sent by older backoffice clients.
func queryTenant(r *http.Request) string {
	q := r.URL.Query()
	if id := q.Get("tenantId"); id != "" {
		return id
	}
	return q.Get("merchantId")
}
