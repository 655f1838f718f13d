// Package client talks to the licensing REST backend (/api/...).
// Every call is made once: no retries, no circuit breaker. Concurrency is
// capped by a bulkhead and each request carries a fresh X-Request-ID.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/domain"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/observability"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/licenciamento-bfa-go/internal/session"
)

var tracer = otel.Tracer("client")

const (
	serviceName  = "licenciamento-api"
	maxErrorBody = 64 << 10
)

// Client implements port.Backend over HTTP.
type Client struct {
	httpClient *http.Client
	baseURL    string
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// Option customizes a Client.
type Option func(*Client)

// WithMetrics records per-operation latency and errors.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClock overrides the clock used for session expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a backend client rooted at baseURL (e.g. http://localhost:5000).
func New(httpClient *http.Client, baseURL string, bulkhead *resilience.Bulkhead, logger *zap.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		bulkhead:   bulkhead,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes one backend call.
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(op, method, path string, payload any) (request, error) {
	r := request{op: op, method: method, path: path}
	if payload == nil {
		return r, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return r, fmt.Errorf("encode %s payload: %w", op, err)
	}
	r.body = bytes.NewReader(b)
	r.contentType = "application/json"
	return r, nil
}

// do executes r and decodes a 2xx body into out (when non-nil).
func (c *Client) do(ctx context.Context, r request, out any) (err error) {
	ctx, span := tracer.Start(ctx, "Backend."+r.op)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", r.method),
		attribute.String("backend.path", r.path),
	)

	start := time.Now()
	defer func() {
		if c.metrics != nil {
			c.metrics.RecordUpstream(r.op, time.Since(start), err)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	sess, hasSession := session.FromContext(ctx)
	if hasSession && sess.Expired(c.now()) {
		return &domain.ErrUnauthorized{Message: "Sessão expirada"}
	}

	return c.bulkhead.Do(ctx, func() error {
		target := c.baseURL + r.path
		if len(r.query) > 0 {
			target += "?" + r.query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
		if err != nil {
			return fmt.Errorf("build %s request: %w", r.op, err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID(ctx))
		if r.contentType != "" {
			req.Header.Set("Content-Type", r.contentType)
		}
		if hasSession {
			req.Header.Set("Authorization", "Bearer "+sess.Token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.logger.Error("backend: request failed",
				zap.String("op", r.op),
				zap.String("method", r.method),
				zap.String("path", r.path),
				zap.Error(err),
			)
			return &domain.ErrExternalService{Service: serviceName, Err: err}
		}
		defer resp.Body.Close()
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			upstreamErr := decodeError(resp)
			c.logger.Warn("backend: non-2xx response",
				zap.String("op", r.op),
				zap.String("path", r.path),
				zap.Int("status", resp.StatusCode),
				zap.String("erro", upstreamErr.Error()),
			)
			if resp.StatusCode == http.StatusUnauthorized {
				return &domain.ErrUnauthorized{Message: upstreamErr.Error()}
			}
			return upstreamErr
		}

		c.logger.Debug("backend: request OK",
			zap.String("op", r.op),
			zap.String("path", r.path),
			zap.Int("status", resp.StatusCode),
		)

		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return &domain.ErrExternalService{Service: serviceName, Err: fmt.Errorf("decode %s response: %w", r.op, err)}
		}
		return nil
	})
}

// decodeError reads the backend's {"erro": "..."} body.
func decodeError(resp *http.Response) *domain.ErrUpstream {
	var body struct {
		Erro string `json:"erro"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	_ = json.Unmarshal(raw, &body)
	return &domain.ErrUpstream{Status: resp.StatusCode, Message: body.Erro}
}

// requestID reuses the inbound chi request id when there is one.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}

func idPath(prefix string, id int64) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}

// Ping checks that the backend answers at all. Any HTTP status counts as
// reachable; only transport failures are reported.
func (c *Client) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Backend.Ping")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return &domain.ErrExternalService{Service: serviceName, Err: err}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
	return nil
}
