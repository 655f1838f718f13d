// Package port defines the interfaces (ports) for external dependencies.
// The licensing backend is reached only through these, so services can be
// tested against hand-written fakes.
package port

import (
	"context"
	"time"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// CompanyGateway covers /api/empresas.
type CompanyGateway interface {
	ListCompanies(ctx context.Context) ([]domain.Company, error)
	CreateCompany(ctx context.Context, draft *domain.CompanyDraft) (*domain.Company, error)
	UpdateCompany(ctx context.Context, id int64, draft *domain.CompanyDraft) (*domain.Company, error)
	DeleteCompany(ctx context.Context, id int64) error
	ListCompanyLicenses(ctx context.Context, companyID int64) ([]domain.License, error)
}

// LicenseGateway covers /api/licencas.
type LicenseGateway interface {
	ListLicenses(ctx context.Context, filter domain.LicenseFilter) ([]domain.License, error)
	GetLicense(ctx context.Context, id int64) (*domain.License, error)
	CreateLicense(ctx context.Context, draft *domain.LicenseDraft) (*domain.License, error)
	UpdateLicense(ctx context.Context, id int64, draft *domain.LicenseDraft) (*domain.License, error)
	DeleteLicense(ctx context.Context, id int64) error
}

// ComplianceGateway covers /api/condicionantes.
type ComplianceGateway interface {
	ListCompliance(ctx context.Context, filter domain.ComplianceFilter) ([]domain.ComplianceItem, error)
	ListUrgentCompliance(ctx context.Context) ([]domain.ComplianceItem, error)
	GetCompliance(ctx context.Context, id int64) (*domain.ComplianceItem, error)
	CreateCompliance(ctx context.Context, payload domain.CompliancePayload) (*domain.ComplianceItem, error)
	UpdateCompliance(ctx context.Context, id int64, payload domain.CompliancePayload) (*domain.ComplianceItem, error)
	DeleteCompliance(ctx context.Context, id int64) error
	MarkFulfilled(ctx context.Context, id int64, in domain.FulfillmentInput) (*domain.ComplianceItem, error)
	MarkFulfilledQuick(ctx context.Context, id int64) (*domain.ComplianceItem, error)
	MarkPending(ctx context.Context, id int64) (*domain.ComplianceItem, error)
}

// DashboardGateway covers /api/dashboard.
type DashboardGateway interface {
	GetDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error)
}

// AuthGateway covers /api/login.
type AuthGateway interface {
	Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error)
}

// Backend is the whole licensing REST API.
type Backend interface {
	CompanyGateway
	LicenseGateway
	ComplianceGateway
	DashboardGateway
	AuthGateway
}

// Cache provides generic caching with per-entry TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T, ttl time.Duration)
	Delete(key string)
}
