package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/deadline"
	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/observability"
	"github.com/boddenberg/licenciamento-bfa-go/internal/port"
)

var complianceTracer = otel.Tracer("service/compliance")

// ComplianceMutation is the result of a compliance item write.
type ComplianceMutation = Mutation[domain.ComplianceItem, deadline.View]

// ComplianceService manages condicionantes and applies the deadline engine to them.
type ComplianceService struct {
	backend  port.ComplianceGateway
	licenses port.LicenseGateway
	metrics  *observability.Metrics
	logger   *zap.Logger
	clock    clock
}

// NewComplianceService creates a new compliance service.
func NewComplianceService(backend port.ComplianceGateway, licenses port.LicenseGateway, metrics *observability.Metrics, logger *zap.Logger) *ComplianceService {
	return &ComplianceService{backend: backend, licenses: licenses, metrics: metrics, logger: logger}
}

// List returns items decorated with days remaining and urgency, in display order.
func (s *ComplianceService) List(ctx context.Context, filter domain.ComplianceFilter) ([]deadline.View, error) {
	ctx, span := complianceTracer.Start(ctx, "ComplianceService.List")
	defer span.End()

	items, err := s.backend.ListCompliance(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := s.classify(items)
	span.SetAttributes(attribute.Int("compliance.count", len(views)))
	return views, nil
}

// Urgent returns the backend's urgent list in display order. A positive
// daysAhead further keeps only pending items due within that many days.
func (s *ComplianceService) Urgent(ctx context.Context, daysAhead int) ([]deadline.View, error) {
	ctx, span := complianceTracer.Start(ctx, "ComplianceService.Urgent")
	defer span.End()
	span.SetAttributes(attribute.Int("window.days", daysAhead))

	items, err := s.backend.ListUrgentCompliance(ctx)
	if err != nil {
		return nil, err
	}
	views := s.classify(items)
	if daysAhead > 0 {
		views = deadline.WithinWindow(views, daysAhead)
	}
	return views, nil
}

// Get returns one decorated item.
func (s *ComplianceService) Get(ctx context.Context, id int64) (*deadline.View, error) {
	ctx, span := complianceTracer.Start(ctx, "ComplianceService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("compliance.id", id))

	item, err := s.backend.GetCompliance(ctx, id)
	if err != nil {
		return nil, err
	}
	v := deadline.NewView(*item, s.clock.now())
	return &v, nil
}

// Preview resolves the effective due date of a draft against the current
// licenses without saving anything.
func (s *ComplianceService) Preview(ctx context.Context, draft *deadline.Draft) (*deadline.Draft, error) {
	ctx, span := complianceTracer.Start(ctx, "ComplianceService.Preview")
	defer span.End()

	licenses, err := s.licenses.ListLicenses(ctx, domain.LicenseFilter{Flat: true})
	if err != nil {
		return nil, err
	}
	resolved := *draft
	resolved.Resolve(licenses)
	return &resolved, nil
}

// Create resolves the due date, validates and creates the item.
func (s *ComplianceService) Create(ctx context.Context, draft *deadline.Draft) (*ComplianceMutation, error) {
	ctx, span := complianceTracer.Start(ctx, "ComplianceService.Create")
	defer span.End()

	draft.ID = 0
	payload, err := s.prepare(ctx, draft)
	if err != nil {
		return nil, err
	}
	created, err := s.backend.CreateCompliance(ctx, payload)
	if err != nil {
		return nil, err
	}

	observability.ForContext(ctx, s.logger).Info("compliance item created",
		zap.Int64("compliance_id", created.ID),
		zap.Int64("license_id", created.LicenseID),
		zap.String("due_date", created.DueDate.String()),
	)
	return refetch(ctx, s.logger, s.metrics, "condicionante", created, s.refresh), nil
}

// Update resolves the due date, validates and replaces the item.
func (s *ComplianceService) Update(ctx context.Context, id int64, draft *deadline.Draft) (*ComplianceMutation, error) {
	ctx, span := complianceTracer.Start(ctx, "ComplianceService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("compliance.id", id))

	draft.ID = id
	payload, err := s.prepare(ctx, draft)
	if err != nil {
		return nil, err
	}
	updated, err := s.backend.UpdateCompliance(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	return refetch(ctx, s.logger, s.metrics, "condicionante", updated, s.refresh), nil
}

func (s *ComplianceService) prepare(ctx context.Context, draft *deadline.Draft) (domain.CompliancePayload, error) {
	if err := draft.Validate(); err != nil {
		return domain.CompliancePayload{}, err
	}
	licenses, err := s.licenses.ListLicenses(ctx, domain.LicenseFilter{Flat: true})
	if err != nil {
		return domain.CompliancePayload{}, err
	}
	draft.Resolve(licenses)
	return draft.Payload(), nil
}

// Delete removes an item once confirmed.
func (s *ComplianceService) Delete(ctx context.Context, id int64, confirmed bool) (*ComplianceMutation, error) {
	ctx, span := complianceTracer.Start(ctx, "ComplianceService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("compliance.id", id))

	if err := requireConfirmation(confirmed, "excluir condicionante"); err != nil {
		return nil, err
	}
	if err := s.backend.DeleteCompliance(ctx, id); err != nil {
		return nil, err
	}
	return refetch[domain.ComplianceItem](ctx, s.logger, s.metrics, "condicionante", nil, s.refresh), nil
}

// MarkFulfilled records fulfillment with an optional note and proof file.
// A missing date means today.
func (s *ComplianceService) MarkFulfilled(ctx context.Context, id int64, in domain.FulfillmentInput) (*ComplianceMutation, error) {
	ctx, span := complianceTracer.Start(ctx, "ComplianceService.MarkFulfilled")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("compliance.id", id),
		attribute.Bool("attachment", in.Attachment != nil),
	)

	if in.FulfilledOn.IsZero() {
		in.FulfilledOn = domain.DateOf(s.clock.now())
	}
	item, err := s.backend.MarkFulfilled(ctx, id, in)
	if err != nil {
		return nil, err
	}
	deadline.MarkFulfilled(item, in.FulfilledOn)

	observability.ForContext(ctx, s.logger).Info("compliance item fulfilled",
		zap.Int64("compliance_id", id),
		zap.String("fulfilled_on", in.FulfilledOn.String()),
	)
	return refetch(ctx, s.logger, s.metrics, "condicionante", item, s.refresh), nil
}

// MarkFulfilledQuick fulfils an item today with no notes or proof.
func (s *ComplianceService) MarkFulfilledQuick(ctx context.Context, id int64) (*ComplianceMutation, error) {
	ctx, span := complianceTracer.Start(ctx, "ComplianceService.MarkFulfilledQuick")
	defer span.End()
	span.SetAttributes(attribute.Int64("compliance.id", id))

	item, err := s.backend.MarkFulfilledQuick(ctx, id)
	if err != nil {
		return nil, err
	}
	if !item.IsFulfilled() {
		deadline.MarkFulfilled(item, domain.DateOf(s.clock.now()))
	}
	return refetch(ctx, s.logger, s.metrics, "condicionante", item, s.refresh), nil
}

// MarkPending reverts an item to pending once confirmed.
func (s *ComplianceService) MarkPending(ctx context.Context, id int64, confirmed bool) (*ComplianceMutation, error) {
	ctx, span := complianceTracer.Start(ctx, "ComplianceService.MarkPending")
	defer span.End()
	span.SetAttributes(attribute.Int64("compliance.id", id))

	if err := requireConfirmation(confirmed, "marcar condicionante como pendente"); err != nil {
		return nil, err
	}
	item, err := s.backend.MarkPending(ctx, id)
	if err != nil {
		return nil, err
	}
	deadline.MarkPending(item)
	return refetch(ctx, s.logger, s.metrics, "condicionante", item, s.refresh), nil
}

func (s *ComplianceService) refresh(ctx context.Context) ([]deadline.View, error) {
	items, err := s.backend.ListCompliance(ctx, domain.ComplianceFilter{})
	if err != nil {
		return nil, err
	}
	return s.classify(items), nil
}

func (s *ComplianceService) classify(items []domain.ComplianceItem) []deadline.View {
	views := deadline.BuildViews(items, s.clock.now())
	if s.metrics != nil {
		for tier, n := range deadline.CountByTier(views) {
			s.metrics.RecordClassified(tier.String(), n)
		}
	}
	return views
}
