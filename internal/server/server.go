// Package server assembles the HTTP API from the domain handlers.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"clubpulse/internal/attendance"
	"clubpulse/internal/auth"
	"clubpulse/internal/dues"
	"clubpulse/internal/guest"
	"clubpulse/internal/member"
	"clubpulse/internal/stats"
)

// Deps collects the services the router composes.
type Deps struct {
	Auth       auth.Service
	Members    member.Service
	Attendance attendance.Service
	Guests     guest.Service
	Dues       dues.Service
	Stats      stats.Service
	Logger     *zap.Logger
}

// New builds the full API router. Login endpoints are public; everything
// else requires a bearer token, and member administration requires the
// admin role.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(d.Logger))

	authHandler := auth.NewHandler(d.Auth)
	memberHandler := member.NewHandler(d.Members)
	attendanceHandler := attendance.NewHandler(d.Attendance, d.Members)
	guestHandler := guest.NewHandler(d.Guests)
	duesHandler := dues.NewHandler(d.Dues)
	statsHandler := stats.NewHandler(d.Stats)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Group(authHandler.Routes)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(d.Auth))

			r.Route("/members", func(r chi.Router) {
				r.Use(auth.RequireAdmin)
				memberHandler.Routes(r)
			})
			r.Route("/attendance", attendanceHandler.Routes)
			r.Route("/guests", guestHandler.Routes)
			r.Route("/charges", guestHandler.ChargeRoutes)
			r.Route("/dues", duesHandler.Routes)
			r.Route("/stats", statsHandler.Routes)
		})
	})
	return r
}

// requestLogger emits one structured line per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", middleware.GetReqID(r.Context())),
			)
		})
	}
}
