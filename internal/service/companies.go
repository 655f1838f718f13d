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

var companyTracer = otel.Tracer("service/companies")

// CompanyMutation is the result of a company write.
type CompanyMutation = Mutation[domain.Company, domain.Company]

// CompanyService manages empresas.
type CompanyService struct {
	backend port.CompanyGateway
	metrics *observability.Metrics
	logger  *zap.Logger
	clock   clock
}

// NewCompanyService creates a new company service.
func NewCompanyService(backend port.CompanyGateway, metrics *observability.Metrics, logger *zap.Logger) *CompanyService {
	return &CompanyService{backend: backend, metrics: metrics, logger: logger}
}

// List returns companies with their display CNPJ, filtered by an optional
// accent-insensitive search over legal name and CNPJ.
func (s *CompanyService) List(ctx context.Context, search string) ([]domain.Company, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.List")
	defer span.End()

	companies, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	if search == "" {
		return companies, nil
	}

	out := make([]domain.Company, 0, len(companies))
	for _, c := range companies {
		if matchCompany(c, search) {
			out = append(out, c)
		}
	}
	span.SetAttributes(attribute.Int("companies.matched", len(out)))
	return out, nil
}

func (s *CompanyService) list(ctx context.Context) ([]domain.Company, error) {
	companies, err := s.backend.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	for i := range companies {
		companies[i] = companies[i].WithDisplay()
	}
	return companies, nil
}

// Create validates the draft and creates the company. An invalid CNPJ never
// reaches the backend.
func (s *CompanyService) Create(ctx context.Context, draft *domain.CompanyDraft) (*CompanyMutation, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.Create")
	defer span.End()

	if err := draft.Validate(); err != nil {
		return nil, err
	}
	created, err := s.backend.CreateCompany(ctx, draft)
	if err != nil {
		return nil, err
	}
	display := created.WithDisplay()

	observability.ForContext(ctx, s.logger).Info("company created", zap.Int64("company_id", created.ID))
	return refetch(ctx, s.logger, s.metrics, "empresa", &display, s.list), nil
}

// Update validates the draft and replaces the company.
func (s *CompanyService) Update(ctx context.Context, id int64, draft *domain.CompanyDraft) (*CompanyMutation, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.Update")
	defer span.End()
	span.SetAttributes(attribute.Int64("company.id", id))

	if err := draft.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.backend.UpdateCompany(ctx, id, draft)
	if err != nil {
		return nil, err
	}
	display := updated.WithDisplay()

	return refetch(ctx, s.logger, s.metrics, "empresa", &display, s.list), nil
}

// Delete removes the company once confirmed.
func (s *CompanyService) Delete(ctx context.Context, id int64, confirmed bool) (*CompanyMutation, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("company.id", id))

	if err := requireConfirmation(confirmed, "excluir empresa"); err != nil {
		return nil, err
	}
	if err := s.backend.DeleteCompany(ctx, id); err != nil {
		return nil, err
	}

	observability.ForContext(ctx, s.logger).Info("company deleted", zap.Int64("company_id", id))
	return refetch[domain.Company](ctx, s.logger, s.metrics, "empresa", nil, s.list), nil
}

// Licenses lists the licenses of one company, decorated and sorted.
func (s *CompanyService) Licenses(ctx context.Context, id int64) ([]deadline.LicenseView, error) {
	ctx, span := companyTracer.Start(ctx, "CompanyService.Licenses")
	defer span.End()
	span.SetAttributes(attribute.Int64("company.id", id))

	licenses, err := s.backend.ListCompanyLicenses(ctx, id)
	if err != nil {
		return nil, err
	}
	return deadline.BuildLicenseViews(licenses, s.clock.now()), nil
}
