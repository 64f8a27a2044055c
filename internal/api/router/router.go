// Package router assembles the HTTP surface of the scheduling service.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/clinic-scheduler/internal/booking"
	"github.com/wolfman30/clinic-scheduler/internal/records"
	"github.com/wolfman30/clinic-scheduler/internal/reminders"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	BookingHandler *booking.Handler
	RecordStore    records.Store
	ReminderStore  reminders.Store
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(requestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.BookingHandler != nil {
		r.Mount("/conversations", cfg.BookingHandler.Routes())
	}

	admin := NewAdminHandler(cfg.RecordStore, cfg.ReminderStore, cfg.Logger)
	r.Mount("/admin", admin.Routes())

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// requestLogger logs one line per request with the request id from chi's
// middleware.
func requestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
