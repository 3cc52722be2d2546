package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/vontade-empenho/ponto-backend/internal/config"
	"github.com/vontade-empenho/ponto-backend/internal/handler/http/middleware"
	"github.com/vontade-empenho/ponto-backend/internal/handler/http/response"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/jwt"
)

// Handlers groups the route handlers the router mounts.
type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Schedule   ScheduleHandler
	Stream     StreamHandler
}

func NewRouter(app config.AppConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "ponto-backend"),
		slog.String("version", app.Version),
		slog.String("env", app.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		r.With(chiMiddleware.AllowContentType("application/json")).Post("/auth/login", h.Auth.Login)

		// Authenticated by a short-lived token in the query string
		r.Get("/stream", h.Stream.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.TenantRequired)

			r.Get("/stream/token", h.Stream.Token)

			r.Get("/dashboard/today", h.Attendance.Dashboard)
			r.Get("/reports/daily", h.Attendance.DailyReport)
			r.Get("/timesheet", h.Attendance.Timesheet)
			r.Get("/events", h.Attendance.ListEvents)
			r.Get("/employees", h.Attendance.ListEmployees)
			r.Get("/diagnostics", h.Attendance.Diagnostics)

			r.Route("/schedules", func(r chi.Router) {
				r.Get("/", h.Schedule.List)
				r.Route("/assignments/{employeeID}", func(r chi.Router) {
					r.Put("/", h.Schedule.Assign)
					r.Delete("/", h.Schedule.Unassign)
				})
				r.Put("/{id}", h.Schedule.Upsert)
				r.Delete("/{id}", h.Schedule.Delete)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})
	return r
}
