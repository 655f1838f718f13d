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

var licenseTracer = otel.Tracer("service/licenses")

// LicenseMutation is the result of a license write.
type LicenseMutation = Mutation[domain.License, deadline.LicenseView]

// LicenseDetail is one license with its compliance items in display order.
type LicenseDetail struct {
	deadline.LicenseView
	Items []deadline.View `json:"condicionantes"`
}

// LicenseService manages licenças.
type LicenseService struct {
	backend port.LicenseGateway
	metrics *observability.Metrics
	logger  *zap.Logger
	clock   clock
}

// NewLicenseService creates a new license service.
func NewLicenseService(backend port.LicenseGateway, metrics *observability.Metrics, logger *zap.Logger) *LicenseService {
	return &LicenseService{backend: backend, metrics: metrics, logger: logger}
}

// List returns licenses with situation badges, in force first.
func (s *LicenseService) List(ctx context.Context, filter domain.LicenseFilter) ([]deadline.LicenseView, error) {
	ctx, span := licenseTracer.Start(ctx, "LicenseService.List")
	defer span.End()

	licenses, err := s.backend.ListLicenses(ctx, filter)
	if err != nil {
		return nil, err
	}
	views := deadline.BuildLicenseViews(licenses, s.clock.now())
	span.SetAttributes(attribute.Int("licenses.count", len(views)))
	return views, nil
}

// Get returns one license and its compliance items sorted for display.
func (s *LicenseService) Get(ctx context.Context, id int64) (*LicenseDetail, error) {
	ctx, span := licenseTracer.Start(ctx, "LicenseService.Get")
	defer span.End()
	span.SetAttributes(attribute.Int64("license.id", id))

	license, err := s.backend.GetLicense(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.clock.now()
	items := license.Compliance
	license.Compliance = nil
	for i := range items {
		if items[i].License == nil {
			items[i].License = license
		}
		if items[i].Company == nil {
			items[i].Company = license.Company
		}
	}

	return &LicenseDetail{
		LicenseView: deadline.NewLicenseView(*license, now),
		Items:       deadline.BuildViews(items, now),
	}, nil
}

// Create validates and creates a license.
func (s *LicenseService) Create(ctx context.Context, draft *domain.LicenseDraft) (*LicenseMutation, error) {
	ctx, span := licenseTracer.Start(ctx, "LicenseService.Create")
	defer span.End()

	if err := draft.Validate(); err != nil {
		return nil, err
	}
	created, err := s.backend.CreateLicense(ctx, draft)
	if err != nil {
		return nil, err
	}

	observability.ForContext(ctx, s.logger).Info("license created",
		zap.Int64("license_id", created.ID),
		zap.Int64("company_id", created.CompanyID),
	)
	return refetch(ctx, s.logger, s.metrics, "licenca", created, s.refresh), nil
}

// Update validates and replaces a license.
func (s *LicenseService) Update(ctx context.Context, id int64, draft *domain.LicenseDraft) (*LicenseMutation, error) {
	ctx, span := licenseTracer.Start(ctx, "LicenseService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("license.id", id))

	if err := draft.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.backend.UpdateLicense(ctx, id, draft)
	if err != nil {
		return nil, err
	}
	return refetch(ctx, s.logger, s.metrics, "licenca", updated, s.refresh), nil
}

// Delete removes a license once confirmed.
func (s *LicenseService) Delete(ctx context.Context, id int64, confirmed bool) (*LicenseMutation, error) {
	ctx, span := licenseTracer.Start(ctx, "LicenseService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("license.id", id))

	if err := requireConfirmation(confirmed, "excluir licença"); err != nil {
		return nil, err
	}
	if err := s.backend.DeleteLicense(ctx, id); err != nil {
		return nil, err
	}

	observability.ForContext(ctx, s.logger).Info("license deleted", zap.Int64("license_id", id))
	return refetch[domain.License](ctx, s.logger, s.metrics, "licenca", nil, s.refresh), nil
}

func (s *LicenseService) refresh(ctx context.Context) ([]deadline.LicenseView, error) {
	return s.List(ctx, domain.LicenseFilter{})
}
