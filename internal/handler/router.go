package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/observability"
	"github.com/boddenberg/licenciamento-bfa-go/internal/service"
)

var tracer = otel.Tracer("handler")

// Services groups the use cases the router exposes.
type Services struct {
	Companies  *service.CompanyService
	Licenses   *service.LicenseService
	Compliance *service.ComplianceService
	Dashboard  *service.DashboardService
	Auth       *service.AuthService
	Backend    Pinger
}

// RouterConfig holds the HTTP-level knobs.
type RouterConfig struct {
	AuthRequired bool
	CORSOrigins  []string
	RateLimit    int // requests per minute per IP on /v1; 0 disables
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svc Services, metrics *observability.Metrics, cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(svc.Backend, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
		}

		// =============================================
		// Autenticação (pública)
		// POST /v1/login
		// =============================================
		r.Post("/login", loginHandler(svc.Auth, logger))

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(svc.Auth, cfg.AuthRequired, logger))

			r.Get("/sessao", sessionHandler(logger))
			r.Post("/logout", logoutHandler(svc.Auth, logger))

			// =============================================
			// Empresas
			// =============================================
			r.Get("/empresas", listCompaniesHandler(svc.Companies, logger))
			r.Post("/empresas", createCompanyHandler(svc.Companies, logger))
			r.Put("/empresas/{id}", updateCompanyHandler(svc.Companies, logger))
			r.Delete("/empresas/{id}", deleteCompanyHandler(svc.Companies, logger))
			r.Get("/empresas/{id}/licencas", companyLicensesHandler(svc.Companies, logger))

			// =============================================
			// Licenças
			// =============================================
			r.Get("/licencas", listLicensesHandler(svc.Licenses, logger))
			r.Post("/licencas", createLicenseHandler(svc.Licenses, logger))
			r.Get("/licencas/{id}", getLicenseHandler(svc.Licenses, logger))
			r.Put("/licencas/{id}", updateLicenseHandler(svc.Licenses, logger))
			r.Delete("/licencas/{id}", deleteLicenseHandler(svc.Licenses, logger))

			// =============================================
			// Condicionantes
			// =============================================
			r.Get("/condicionantes", listComplianceHandler(svc.Compliance, logger))
			r.Post("/condicionantes", createComplianceHandler(svc.Compliance, logger))
			r.Get("/condicionantes/urgentes", urgentComplianceHandler(svc.Compliance, logger))
			r.Post("/condicionantes/prazo", previewDueDateHandler(svc.Compliance, logger))
			r.Get("/condicionantes/{id}", getComplianceHandler(svc.Compliance, logger))
			r.Put("/condicionantes/{id}", updateComplianceHandler(svc.Compliance, logger))
			r.Delete("/condicionantes/{id}", deleteComplianceHandler(svc.Compliance, logger))
			r.Post("/condicionantes/{id}/marcar-cumprida", markFulfilledHandler(svc.Compliance, logger))
			r.Post("/condicionantes/{id}/marcar-cumprida-rapido", markFulfilledQuickHandler(svc.Compliance, logger))
			r.Post("/condicionantes/{id}/marcar-pendente", markPendingHandler(svc.Compliance, logger))

			// =============================================
			// Dashboard & métricas
			// =============================================
			r.Get("/dashboard", dashboardHandler(svc.Dashboard, logger))
			r.Get("/metricas", metricsSnapshotHandler(metrics))
		})
	})

	return r
}
