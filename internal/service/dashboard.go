package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/boddenberg/licenciamento-bfa-go/internal/deadline"
	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/observability"
	"github.com/boddenberg/licenciamento-bfa-go/internal/port"
)

var dashboardTracer = otel.Tracer("service/dashboard")

// UrgentAction is one row of "Próximas Ações Urgentes".
type UrgentAction struct {
	deadline.View
	Label   string `json:"rotulo"`
	Variant string `json:"variante"`
}

// NewUrgentAction labels a view the way the dashboard shows it.
func NewUrgentAction(v deadline.View) UrgentAction {
	days := v.Days()
	a := UrgentAction{View: v}
	switch {
	case days == deadline.NoDeadline:
		a.Label, a.Variant = "Sem prazo", "default"
	case days < 0:
		a.Label, a.Variant = fmt.Sprintf("Vencida há %d dias", -days), "destructive"
	case days <= deadline.UpcomingWindowDays:
		a.Label, a.Variant = fmt.Sprintf("Vence em %d dias", days), "warning"
	default:
		a.Label, a.Variant = fmt.Sprintf("Vence em %d dias", days), "default"
	}
	return a
}

// Dashboard is the home screen: backend totals plus the urgent actions.
type Dashboard struct {
	Summary       domain.DashboardSummary `json:"resumo"`
	UrgentActions []UrgentAction          `json:"acoes_urgentes"`
	ByUrgency     map[string]int          `json:"por_urgencia"`
}

// DashboardService assembles the dashboard.
type DashboardService struct {
	summary    port.DashboardGateway
	compliance port.ComplianceGateway
	metrics    *observability.Metrics
	logger     *zap.Logger
	clock      clock
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(summary port.DashboardGateway, compliance port.ComplianceGateway, metrics *observability.Metrics, logger *zap.Logger) *DashboardService {
	return &DashboardService{summary: summary, compliance: compliance, metrics: metrics, logger: logger}
}

// Get fetches the summary and the urgent list concurrently. Either failing
// fails the whole dashboard.
func (s *DashboardService) Get(ctx context.Context) (*Dashboard, error) {
	ctx, span := dashboardTracer.Start(ctx, "DashboardService.Get")
	defer span.End()

	var (
		summary *domain.DashboardSummary
		urgent  []domain.ComplianceItem
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.summary.GetDashboardSummary(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		urgent, err = s.compliance.ListUrgentCompliance(gCtx)
		return err
	})
	if err := g.Wait(); err != nil {
		observability.ForContext(ctx, s.logger).Warn("dashboard fetch failed", zap.Error(err))
		return nil, err
	}

	views := deadline.BuildViews(urgent, s.clock.now())
	d := &Dashboard{
		Summary:       *summary,
		UrgentActions: make([]UrgentAction, 0, len(views)),
		ByUrgency:     make(map[string]int),
	}
	for _, v := range views {
		d.UrgentActions = append(d.UrgentActions, NewUrgentAction(v))
	}
	for tier, n := range deadline.CountByTier(views) {
		d.ByUrgency[tier.String()] = n
		if s.metrics != nil {
			s.metrics.RecordClassified(tier.String(), n)
		}
	}
	if d.Summary.NextActions == nil {
		d.Summary.NextActions = []domain.ComplianceItem{}
	}
	return d, nil
}
