// Package router assembles the HTTP routes and the middleware stack.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DAN6256/EmailServer/internal/config"
	"github.com/DAN6256/EmailServer/internal/http/handlers/delivery"
	"github.com/DAN6256/EmailServer/internal/http/handlers/notification"
	"github.com/DAN6256/EmailServer/internal/http/handlers/system"
	"github.com/DAN6256/EmailServer/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// Dispatcher is everything the routes need from notifier.Dispatcher.
type Dispatcher interface {
	notification.Dispatcher
	system.Checker
}

// Deps are the dependencies shared by the handlers.
type Deps struct {
	Dispatcher Dispatcher
	Deliveries storage.DeliveryLog
	Mail       config.Mail
	Server     config.HTTPServer
	Log        *slog.Logger
}

// New returns the root handler.
//
// Route table:
//
//	POST /api/send-application-confirmation → email an applicant
//	POST /api/send-booking-confirmation     → email tutor and student
//	GET  /api/test-email                    → mail configuration self-check
//	GET  /api/config                        → public mail configuration
//	GET  /api/deliveries                    → recent delivery attempts
//	GET  /api/deliveries/{id}               → one delivery attempt
//	GET  /health                            → liveness
//	GET  /                                  → redirect to /health
func New(deps Deps) http.Handler {
	if deps.Deliveries == nil {
		deps.Deliveries = storage.Nop{}
	}
	if deps.Log == nil {
		deps.Log = slog.Default()
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/send-application-confirmation", notification.Application(deps.Dispatcher))
	mux.HandleFunc("POST /api/send-booking-confirmation", notification.Booking(deps.Dispatcher))
	mux.HandleFunc("GET /api/test-email", system.TestEmail(deps.Dispatcher))
	mux.HandleFunc("GET /api/config", system.Config(deps.Mail))
	mux.HandleFunc("GET /api/deliveries", delivery.GetList(deps.Deliveries))
	mux.HandleFunc("GET /api/deliveries/{id}", delivery.GetByID(deps.Deliveries))
	mux.HandleFunc("GET /health", system.Health())
	mux.HandleFunc("GET /{$}", system.Root())

	stack := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(deps.Log),
		middleware.Recoverer,
		// An empty origin list lets the cors package allow every origin.
		cors.Handler(cors.Options{
			AllowedOrigins: deps.Server.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}),
	}
	if deps.Server.RequestsPerMinute > 0 {
		stack = append(stack, httprate.LimitByIP(deps.Server.RequestsPerMinute, time.Minute))
	}

	return chi.Chain(stack...).Handler(mux)
}

// requestLogger logs one line per request once the response is written.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("request completed",
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.Int("status", status),
				slog.Int("bytes", ww.BytesWritten()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
