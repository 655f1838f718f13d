package client

import (
	"context"
	"net/http"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// GetDashboardSummary fetches the headline counts and next actions.
func (c *Client) GetDashboardSummary(ctx context.Context) (*domain.DashboardSummary, error) {
	var out domain.DashboardSummary
	if err := c.do(ctx, request{op: "GetDashboardSummary", method: http.MethodGet, path: "/api/dashboard/resumo"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a backend token.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	r, err := jsonRequest("Login", http.MethodPost, "/api/login", req)
	if err != nil {
		return nil, err
	}
	var out domain.LoginResponse
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
