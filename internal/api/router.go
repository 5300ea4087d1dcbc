package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/clinova/clinic-backend/internal/account"
	"github.com/clinova/clinic-backend/internal/auth"
	"github.com/clinova/clinic-backend/internal/metrics"
	"github.com/clinova/clinic-backend/internal/scheduling"
)

type RouterConfig struct {
	Accounts   *account.Service
	Scheduling *scheduling.Service
	JWT        *auth.JWTManager
	PgPool     *pgxpool.Pool
	Redis      *redis.Client
	Metrics    *metrics.Collector
	Registry   *prometheus.Registry
	Env        string
	Version    string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	if cfg.Metrics != nil {
		r.Use(MetricsMiddleware(cfg.Metrics))
	}

	// Health and metrics
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	if cfg.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(cfg.Registry))
	}

	// Public auth endpoints
	r.Post("/auth/register", registerHandler(cfg.Accounts))
	r.Post("/auth/login", loginHandler(cfg.Accounts))

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.JWT))

		r.Get("/doctors", listDoctorsHandler(cfg.Accounts))
		r.Get("/doctors/{id}/slots", listSlotsHandler(cfg.Scheduling))
		r.Get("/doctors/{id}/availability", listAvailabilityHandler(cfg.Scheduling))

		r.With(RequireRole(string(account.RoleDoctor), string(account.RoleAdmin))).
			Post("/doctors/{id}/availability", addAvailabilityHandler(cfg.Scheduling))

		r.Post("/appointments", bookAppointmentHandler(cfg.Scheduling))
		r.Get("/appointments/me", myAppointmentsHandler(cfg.Scheduling))
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler(cfg.Scheduling))
		r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Scheduling))

		// Admin-only
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(string(account.RoleAdmin)))
			r.Get("/admin/dashboard", dashboardHandler(cfg.Accounts))
			r.Get("/admin/patients", listPatientsHandler(cfg.Accounts))
			r.Delete("/admin/users/{id}", deleteUserHandler(cfg.Accounts))
		})
	})

	return r
}
