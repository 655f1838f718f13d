package client

import (
	"context"
	"net/http"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// ============================================================
// /api/empresas
// ============================================================

// ListCompanies fetches every company.
func (c *Client) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	var out []domain.Company
	if err := c.do(ctx, request{op: "ListCompanies", method: http.MethodGet, path: "/api/empresas"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCompany posts a validated draft.
func (c *Client) CreateCompany(ctx context.Context, draft *domain.CompanyDraft) (*domain.Company, error) {
	r, err := jsonRequest("CreateCompany", http.MethodPost, "/api/empresas", draft)
	if err != nil {
		return nil, err
	}
	var out domain.Company
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCompany replaces a company.
func (c *Client) UpdateCompany(ctx context.Context, id int64, draft *domain.CompanyDraft) (*domain.Company, error) {
	r, err := jsonRequest("UpdateCompany", http.MethodPut, idPath("/api/empresas", id), draft)
	if err != nil {
		return nil, err
	}
	var out domain.Company
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCompany removes a company. The backend refuses while licenses reference it.
func (c *Client) DeleteCompany(ctx context.Context, id int64) error {
	return c.do(ctx, request{op: "DeleteCompany", method: http.MethodDelete, path: idPath("/api/empresas", id)}, nil)
}

// ListCompanyLicenses fetches the licenses of one company.
func (c *Client) ListCompanyLicenses(ctx context.Context, companyID int64) ([]domain.License, error) {
	var out []domain.License
	r := request{op: "ListCompanyLicenses", method: http.MethodGet, path: idPath("/api/empresas", companyID) + "/licencas"}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return out, nil
}
