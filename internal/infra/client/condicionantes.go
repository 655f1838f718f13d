package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
)

// ============================================================
// /api/condicionantes
// ============================================================

// ListCompliance fetches compliance items, optionally filtered.
func (c *Client) ListCompliance(ctx context.Context, filter domain.ComplianceFilter) ([]domain.ComplianceItem, error) {
	q := url.Values{}
	if filter.LicenseID > 0 {
		q.Set("licenca_id", strconv.FormatInt(filter.LicenseID, 10))
	}
	if filter.Status != "" {
		q.Set("status", filter.Status)
	}

	var out []domain.ComplianceItem
	r := request{op: "ListCompliance", method: http.MethodGet, path: "/api/condicionantes", query: q}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListUrgentCompliance fetches the items the backend considers urgent or overdue.
func (c *Client) ListUrgentCompliance(ctx context.Context) ([]domain.ComplianceItem, error) {
	var out []domain.ComplianceItem
	r := request{op: "ListUrgentCompliance", method: http.MethodGet, path: "/api/condicionantes/urgentes"}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCompliance fetches one item with its license and company.
func (c *Client) GetCompliance(ctx context.Context, id int64) (*domain.ComplianceItem, error) {
	var out domain.ComplianceItem
	r := request{op: "GetCompliance", method: http.MethodGet, path: idPath("/api/condicionantes", id)}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCompliance posts a new item.
func (c *Client) CreateCompliance(ctx context.Context, payload domain.CompliancePayload) (*domain.ComplianceItem, error) {
	r, err := jsonRequest("CreateCompliance", http.MethodPost, "/api/condicionantes", payload)
	if err != nil {
		return nil, err
	}
	var out domain.ComplianceItem
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCompliance replaces an item.
func (c *Client) UpdateCompliance(ctx context.Context, id int64, payload domain.CompliancePayload) (*domain.ComplianceItem, error) {
	r, err := jsonRequest("UpdateCompliance", http.MethodPut, idPath("/api/condicionantes", id), payload)
	if err != nil {
		return nil, err
	}
	var out domain.ComplianceItem
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCompliance removes an item.
func (c *Client) DeleteCompliance(ctx context.Context, id int64) error {
	return c.do(ctx, request{op: "DeleteCompliance", method: http.MethodDelete, path: idPath("/api/condicionantes", id)}, nil)
}

// MarkFulfilled posts the fulfillment form as multipart: the date, optional
// notes and an optional proof file under "comprovante".
func (c *Client) MarkFulfilled(ctx context.Context, id int64, in domain.FulfillmentInput) (*domain.ComplianceItem, error) {
	body, contentType, err := fulfillmentForm(in)
	if err != nil {
		return nil, err
	}
	r := request{
		op:          "MarkFulfilled",
		method:      http.MethodPost,
		path:        idPath("/api/condicionantes", id) + "/marcar-cumprida",
		body:        body,
		contentType: contentType,
	}
	var out domain.ComplianceItem
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkFulfilledQuick fulfils an item today, with no notes or proof.
func (c *Client) MarkFulfilledQuick(ctx context.Context, id int64) (*domain.ComplianceItem, error) {
	var out domain.ComplianceItem
	r := request{op: "MarkFulfilledQuick", method: http.MethodPost, path: idPath("/api/condicionantes", id) + "/marcar-cumprida-rapido"}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkPending reverts an item to pending.
func (c *Client) MarkPending(ctx context.Context, id int64) (*domain.ComplianceItem, error) {
	var out domain.ComplianceItem
	r := request{op: "MarkPending", method: http.MethodPost, path: idPath("/api/condicionantes", id) + "/marcar-pendente"}
	if err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func fulfillmentForm(in domain.FulfillmentInput) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	if !in.FulfilledOn.IsZero() {
		if err := w.WriteField("data_envio_cumprimento", in.FulfilledOn.String()); err != nil {
			return nil, "", err
		}
	}
	if in.Notes != "" {
		if err := w.WriteField("observacoes", in.Notes); err != nil {
			return nil, "", err
		}
	}
	if a := in.Attachment; a != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="comprovante"; filename=%q`, a.FileName))
		h.Set("Content-Type", a.ContentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(a.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
