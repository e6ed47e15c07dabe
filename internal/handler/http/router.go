package http

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/config"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries what the router needs besides handlers.
type RouterConfig struct {
	App       config.AppConfig
	RateLimit config.RateLimitConfig
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// LogOutput defaults to os.Stdout.
	LogOutput io.Writer
}

func NewRouter(rc RouterConfig, jwtService jwt.Service, attendanceHandler AttendanceHandler, lateRequestHandler LateRequestHandler) *chi.Mux {
	r := chi.NewRouter()

	out := rc.LogOutput
	if out == nil {
		out = os.Stdout
	}
	logFormat := httplog.SchemaECS.Concise(rc.App.Env != "development")
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-attendance"),
		slog.String("version", rc.App.Version),
		slog.String("env", rc.App.Env),
	)

	origins := rc.App.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if rc.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", rc.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if rc.RateLimit.RequestsPerMinute > 0 {
			r.Use(httprate.LimitByIP(rc.RateLimit.RequestsPerMinute, time.Minute))
		}

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/late-requests", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionLateRequestSubmit)).Post("/", lateRequestHandler.Submit)
				r.Get("/", lateRequestHandler.List)
				r.Get("/{id}", lateRequestHandler.Get)

				// HR only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireReviewer)
					r.Post("/{id}/approve", lateRequestHandler.Approve)
					r.Post("/{id}/reject", lateRequestHandler.Reject)
					r.Patch("/{id}/status", lateRequestHandler.UpdateStatus)
				})
			})

			r.Route("/attendances", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceWrite)).Post("/punches", attendanceHandler.RecordPunches)
				r.With(middleware.RequirePermission(user.PermissionAttendanceRecompute)).Post("/recompute", attendanceHandler.Recompute)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Post("/preview", attendanceHandler.Preview)
				r.With(middleware.RequirePermission(user.PermissionAttendanceExport)).Get("/export", attendanceHandler.Export)
				r.Get("/", attendanceHandler.List)
				r.Get("/{id}", attendanceHandler.Get)
			})
		})
	})
	return r
}
