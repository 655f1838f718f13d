package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// ============================================================
// /api/licencas
// ============================================================

// ListLicenses fetches licenses, optionally filtered by company and status.
func (c *Client) ListLicenses(ctx context.Context, filter domain.LicenseFilter) ([]domain.License, error) {
	q := url.Values{}
	if filter.CompanyID > 0 {
		q.Set("empresa_id", strconv.FormatInt(filter.CompanyID, 10))
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}
	if filter.Flat {
		q.Set("flat", "true")
	}

	var out []domain.License
	r := request{op: "ListLicenses", method: http.MethodGet, path: "/api/licencas", query: q}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetLicense fetches one license with its compliance items.
func (c *Client) GetLicense(ctx context.Context, id int64) (*domain.License, error) {
	var out domain.License
	if err := c.do(ctx, request{op: "GetLicense", method: http.MethodGet, path: idPath("/api/licencas", id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateLicense posts a validated draft.
func (c *Client) CreateLicense(ctx context.Context, draft *domain.LicenseDraft) (*domain.License, error) {
	r, err := jsonRequest("CreateLicense", http.MethodPost, "/api/licencas", draft.Payload())
	if err != nil {
		return nil, err
	}
	var out domain.License
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLicense replaces a license.
func (c *Client) UpdateLicense(ctx context.Context, id int64, draft *domain.LicenseDraft) (*domain.License, error) {
	r, err := jsonRequest("UpdateLicense", http.MethodPut, idPath("/api/licencas", id), draft.Payload())
	if err != nil {
		return nil, err
	}
	var out domain.License
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteLicense removes a license.
func (c *Client) DeleteLicense(ctx context.Context, id int64) error {
	return c.do(ctx, request{op: "DeleteLicense", method: http.MethodDelete, path: idPath("/api/licencas", id)}, nil)
}
