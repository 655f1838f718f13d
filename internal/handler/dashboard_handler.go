package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/deadline"
	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/observability"
	"github.com/boddenberg/licenciamento-bfa-go/internal/service"
)

// Pinger checks that the licensing backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ============================================================
// Dashboard & métricas
// ============================================================

func dashboardHandler(svc *service.DashboardService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		d, err := svc.Get(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, d)
	}
}

var urgencyTiers = []string{
	deadline.TierOverdue.String(),
	deadline.TierUrgent.String(),
	deadline.TierUpcoming.String(),
	deadline.TierPending.String(),
	deadline.TierFulfilled.String(),
}

func metricsSnapshotHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot(urgencyTiers))
	}
}

// ============================================================
// Operational
// ============================================================

func healthzHandler(backend Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "licenciamento-bfa", Status: "healthy", LastChecked: now},
		}

		if backend != nil {
			ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()

			start := time.Now()
			err := backend.Ping(ctx)
			h := domain.ServiceHealth{
				Name:        "licenciamento-api",
				Status:      "healthy",
				LatencyMs:   time.Since(start).Milliseconds(),
				LastChecked: now,
			}
			if err != nil {
				logger.Warn("healthz: backend unreachable", zap.Error(err))
				h.Status = "degraded"
				h.Error = err.Error()
			}
			services = append(services, h)
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overallStatus = "degraded"
				break
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
