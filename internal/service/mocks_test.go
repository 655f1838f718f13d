package service

import (
	"context"
	"sync"
	"time"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
	"github.com/boddenberg/licenciamento-bfa-go/internal/port"
)

// --- Mocks ---

// fakeBackend is an in-memory port.Backend that records every call in order.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	companies  []domain.Company
	licenses   []domain.License
	compliance []domain.ComplianceItem
	urgent     []domain.ComplianceItem
	summary    *domain.DashboardSummary
	login      *domain.LoginResponse

	// errs makes the named operation fail.
	errs map[string]error

	lastCompanyDraft *domain.CompanyDraft
	lastCompliance   domain.CompliancePayload
	lastFulfillment  domain.FulfillmentInput
	urgentDelay      time.Duration
	summaryDelay     time.Duration
}

var _ port.Backend = (*fakeBackend)(nil)

func (f *fakeBackend) record(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
	return f.errs[op]
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) ListCompanies(context.Context) ([]domain.Company, error) {
	if err := f.record("ListCompanies"); err != nil {
		return nil, err
	}
	return append([]domain.Company(nil), f.companies...), nil
}

func (f *fakeBackend) CreateCompany(_ context.Context, d *domain.CompanyDraft) (*domain.Company, error) {
	if err := f.record("CreateCompany"); err != nil {
		return nil, err
	}
	f.lastCompanyDraft = d
	c := domain.Company{ID: int64(len(f.companies) + 1), LegalName: d.LegalName, CNPJ: d.CNPJ}
	f.companies = append(f.companies, c)
	return &c, nil
}

func (f *fakeBackend) UpdateCompany(_ context.Context, id int64, d *domain.CompanyDraft) (*domain.Company, error) {
	if err := f.record("UpdateCompany"); err != nil {
		return nil, err
	}
	return &domain.Company{ID: id, LegalName: d.LegalName, CNPJ: d.CNPJ}, nil
}

func (f *fakeBackend) DeleteCompany(context.Context, int64) error {
	return f.record("DeleteCompany")
}

func (f *fakeBackend) ListCompanyLicenses(_ context.Context, companyID int64) ([]domain.License, error) {
	if err := f.record("ListCompanyLicenses"); err != nil {
		return nil, err
	}
	var out []domain.License
	for _, l := range f.licenses {
		if l.CompanyID == companyID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeBackend) ListLicenses(context.Context, domain.LicenseFilter) ([]domain.License, error) {
	if err := f.record("ListLicenses"); err != nil {
		return nil, err
	}
	return append([]domain.License(nil), f.licenses...), nil
}

func (f *fakeBackend) GetLicense(_ context.Context, id int64) (*domain.License, error) {
	if err := f.record("GetLicense"); err != nil {
		return nil, err
	}
	for _, l := range f.licenses {
		if l.ID == id {
			l.Compliance = nil
			for _, c := range f.compliance {
				if c.LicenseID == id {
					l.Compliance = append(l.Compliance, c)
				}
			}
			return &l, nil
		}
	}
	return nil, &domain.ErrUpstream{Status: 404, Message: "Licença não encontrada"}
}

func (f *fakeBackend) CreateLicense(_ context.Context, d *domain.LicenseDraft) (*domain.License, error) {
	if err := f.record("CreateLicense"); err != nil {
		return nil, err
	}
	return &domain.License{ID: 99, CompanyID: d.CompanyID, Type: d.Type, ExpiresOn: d.ExpiresOn}, nil
}

func (f *fakeBackend) UpdateLicense(_ context.Context, id int64, d *domain.LicenseDraft) (*domain.License, error) {
	if err := f.record("UpdateLicense"); err != nil {
		return nil, err
	}
	return &domain.License{ID: id, CompanyID: d.CompanyID, Type: d.Type, ExpiresOn: d.ExpiresOn}, nil
}

func (f *fakeBackend) DeleteLicense(context.Context, int64) error {
	return f.record("DeleteLicense")
}

func (f *fakeBackend) ListCompliance(context.Context, domain.ComplianceFilter) ([]domain.ComplianceItem, error) {
	if err := f.record("ListCompliance"); err != nil {
		return nil, err
	}
	return append([]domain.ComplianceItem(nil), f.compliance...), nil
}

func (f *fakeBackend) ListUrgentCompliance(ctx context.Context) ([]domain.ComplianceItem, error) {
	if f.urgentDelay > 0 {
		select {
		case <-time.After(f.urgentDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.record("ListUrgentCompliance"); err != nil {
		return nil, err
	}
	return append([]domain.ComplianceItem(nil), f.urgent...), nil
}

func (f *fakeBackend) GetCompliance(_ context.Context, id int64) (*domain.ComplianceItem, error) {
	if err := f.record("GetCompliance"); err != nil {
		return nil, err
	}
	for _, c := range f.compliance {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, &domain.ErrUpstream{Status: 404}
}

func (f *fakeBackend) CreateCompliance(_ context.Context, p domain.CompliancePayload) (*domain.ComplianceItem, error) {
	if err := f.record("CreateCompliance"); err != nil {
		return nil, err
	}
	f.lastCompliance = p
	item := domain.ComplianceItem{ID: 50, LicenseID: p.LicenseID, Description: p.Description}
	if p.DueDate != nil {
		item.DueDate = domain.MustParseDate(*p.DueDate)
	}
	return &item, nil
}

func (f *fakeBackend) UpdateCompliance(_ context.Context, id int64, p domain.CompliancePayload) (*domain.ComplianceItem, error) {
	if err := f.record("UpdateCompliance"); err != nil {
		return nil, err
	}
	f.lastCompliance = p
	return &domain.ComplianceItem{ID: id, LicenseID: p.LicenseID, Description: p.Description}, nil
}

func (f *fakeBackend) DeleteCompliance(context.Context, int64) error {
	return f.record("DeleteCompliance")
}

func (f *fakeBackend) MarkFulfilled(_ context.Context, id int64, in domain.FulfillmentInput) (*domain.ComplianceItem, error) {
	if err := f.record("MarkFulfilled"); err != nil {
		return nil, err
	}
	f.lastFulfillment = in
	return &domain.ComplianceItem{ID: id, FulfilledOn: in.FulfilledOn, Status: domain.ComplianceStatusFulfilled}, nil
}

func (f *fakeBackend) MarkFulfilledQuick(_ context.Context, id int64) (*domain.ComplianceItem, error) {
	if err := f.record("MarkFulfilledQuick"); err != nil {
		return nil, err
	}
	return &domain.ComplianceItem{ID: id, Status: domain.ComplianceStatusFulfilled}, nil
}

func (f *fakeBackend) MarkPending(_ context.Context, id int64) (*domain.ComplianceItem, error) {
	if err := f.record("MarkPending"); err != nil {
		return nil, err
	}
	return &domain.ComplianceItem{ID: id, Status: domain.ComplianceStatusFulfilled}, nil
}

func (f *fakeBackend) GetDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	if f.summaryDelay > 0 {
		select {
		case <-time.After(f.summaryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.record("GetDashboardSummary"); err != nil {
		return nil, err
	}
	if f.summary == nil {
		return &domain.DashboardSummary{}, nil
	}
	s := *f.summary
	return &s, nil
}

func (f *fakeBackend) Login(context.Context, domain.LoginRequest) (*domain.LoginResponse, error) {
	if err := f.record("Login"); err != nil {
		return nil, err
	}
	return f.login, nil
}
