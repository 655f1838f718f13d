package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boddenberg/licenciamento-bfa-go/internal/handler"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/cache"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/client"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/observability"
	"github.com/boddenberg/licenciamento-bfa-go/internal/infra/resilience"
	"github.com/boddenberg/licenciamento-bfa-go/internal/service"
	"github.com/boddenberg/licenciamento-bfa-go/internal/session"
)

// newTestRouter wires the real services and client against a fake backend.
func newTestRouter(t *testing.T, backend http.HandlerFunc, cfg handler.RouterConfig) http.Handler {
	t.Helper()
	return newTestRouterWithTimeout(t, backend, cfg, 0)
}

// newTestRouterWithTimeout is newTestRouter with an HTTP client timeout, as
// HTTP_TIMEOUT sets it in production. Zero means no timeout.
func newTestRouterWithTimeout(t *testing.T, backend http.HandlerFunc, cfg handler.RouterConfig, timeout time.Duration) http.Handler {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	httpClient := srv.Client()
	httpClient.Timeout = timeout

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	sessions := cache.New[*session.Session](time.Hour)
	t.Cleanup(sessions.Close)

	c := client.New(httpClient, srv.URL, resilience.NewBulkhead(4), logger, client.WithMetrics(metrics))
	licenses := service.NewLicenseService(c, metrics, logger)
	svc := handler.Services{
		Companies:  service.NewCompanyService(c, metrics, logger),
		Licenses:   licenses,
		Compliance: service.NewComplianceService(c, c, metrics, logger),
		Dashboard:  service.NewDashboardService(c, c, metrics, logger),
		Auth:       service.NewAuthService(c, sessions, "", 8*time.Hour, metrics, logger),
		Backend:    c,
	}
	return handler.NewRouter(svc, metrics, cfg, logger)
}

func testToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"exp":     exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return tok
}

func do(t *testing.T, h http.Handler, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Erro string `json:"erro"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Erro
}

func notCalled(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("backend must not be called: %s %s", r.Method, r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// ============================================================
// Operational
// ============================================================

func TestOperationalEndpoints(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, handler.RouterConfig{})

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/ping"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}
}

func TestHealthz_ReportsBackend(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}, handler.RouterConfig{})

	rec := do(t, router, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status   string `json:"status"`
		Services []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	require.Len(t, body.Services, 2)
	assert.Equal(t, "licenciamento-api", body.Services[1].Name)
}

// ============================================================
// Auth
// ============================================================

func TestLogin_ReturnsSession(t *testing.T) {
	exp := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	token := testToken(t, exp)
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/login", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": token,
			"user":  map[string]any{"id": 7, "email": "ana@exemplo.com"},
		})
	}, handler.RouterConfig{AuthRequired: true})

	rec := do(t, router, http.MethodPost, "/v1/login", "", strings.NewReader(`{"email":"ana@exemplo.com","password":"x"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var info struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
		User      struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, token, info.Token)
	assert.Equal(t, int64(7), info.User.ID)
	assert.True(t, exp.Equal(info.ExpiresAt))

	rec = do(t, router, http.MethodGet, "/v1/sessao", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin_MissingPasswordNeverReachesBackend(t *testing.T) {
	router := newTestRouter(t, notCalled(t), handler.RouterConfig{})

	rec := do(t, router, http.MethodPost, "/v1/login", "", strings.NewReader(`{"email":"ana@exemplo.com"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	router := newTestRouter(t, notCalled(t), handler.RouterConfig{AuthRequired: true})

	rec := do(t, router, http.MethodGet, "/v1/empresas", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token de autenticação não fornecido", errorMessage(t, rec))

	req := httptest.NewRequest(http.MethodGet, "/v1/empresas", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExpiredToken_Rejected(t *testing.T) {
	router := newTestRouter(t, notCalled(t), handler.RouterConfig{AuthRequired: true})

	rec := do(t, router, http.MethodGet, "/v1/empresas", testToken(t, time.Now().Add(-time.Minute)), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Sessão expirada", errorMessage(t, rec))
}

func TestLogout_ForgetsSession(t *testing.T) {
	router := newTestRouter(t, notCalled(t), handler.RouterConfig{AuthRequired: true})
	token := testToken(t, time.Now().Add(time.Hour))

	rec := do(t, router, http.MethodPost, "/v1/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// ============================================================
// Empresas
// ============================================================

func TestListCompanies_SearchAndBearerForwarding(t *testing.T) {
	token := testToken(t, time.Now().Add(time.Hour))
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+token, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[
			{"id":1,"razao_social":"Mineração São João","cnpj":"11222333000181"},
			{"id":2,"razao_social":"Usina Norte","cnpj":"45723174000110"}
		]`)
	}, handler.RouterConfig{AuthRequired: true})

	rec := do(t, router, http.MethodGet, "/v1/empresas?busca=sao+joao", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "11.222.333/0001-81", got[0]["cnpj_formatado"])
}

func TestCreateCompany_InvalidCNPJ(t *testing.T) {
	router := newTestRouter(t, notCalled(t), handler.RouterConfig{})

	rec := do(t, router, http.MethodPost, "/v1/empresas", "", strings.NewReader(`{"razao_social":"X","cnpj":"11.222.333/0001-00"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, errorMessage(t, rec))
}

func TestDeleteCompany_RequiresConfirmation(t *testing.T) {
	router := newTestRouter(t, notCalled(t), handler.RouterConfig{})

	rec := do(t, router, http.MethodDelete, "/v1/empresas/3", "", nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
}

func TestDeleteCompany_BackendRefusalPassesThrough(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"erro":"Não é possível deletar empresa com licenças associadas"}`)
	}, handler.RouterConfig{})

	rec := do(t, router, http.MethodDelete, "/v1/empresas/3?confirmar=true", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Não é possível deletar empresa com licenças associadas", errorMessage(t, rec))
}

func TestInvalidPathID(t *testing.T) {
	router := newTestRouter(t, notCalled(t), handler.RouterConfig{})

	rec := do(t, router, http.MethodGet, "/v1/licencas/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "ID inválido", errorMessage(t, rec))
}

// ============================================================
// Condicionantes
// ============================================================

func TestListCompliance_DisplayOrder(t *testing.T) {
	today := time.Now().UTC()
	day := func(offset int) string { return today.AddDate(0, 0, offset).Format("2006-01-02") }

	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "12", r.URL.Query().Get("licenca_id"))
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "licenca_id": 12, "descricao": "a", "data_limite": day(60)},
			{"id": 2, "licenca_id": 12, "descricao": "b", "data_limite": day(-2)},
			{"id": 3, "licenca_id": 12, "descricao": "c", "data_limite": day(3)},
			{"id": 4, "licenca_id": 12, "descricao": "d", "data_limite": day(-9)},
			{"id": 5, "licenca_id": 12, "descricao": "e", "data_limite": day(1), "data_envio_cumprimento": day(0)},
		})
	}, handler.RouterConfig{})

	rec := do(t, router, http.MethodGet, "/v1/condicionantes?licenca_id=12", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []struct {
		ID       int64  `json:"id"`
		Urgencia string `json:"urgencia"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	ids := make([]int64, 0, len(got))
	for _, v := range got {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []int64{4, 2, 3, 1, 5}, ids)
	assert.Equal(t, "vencida", got[0].Urgencia)
	assert.Equal(t, "cumprida", got[4].Urgencia)
}

func TestPreviewDueDate_FromRenewal(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("flat"))
		_, _ = io.WriteString(w, `[{"id":12,"empresa_id":1,"tipo_licenca":"LO","data_emissao":"2024-01-01","data_vencimento":"2025-12-31"}]`)
	}, handler.RouterConfig{})

	rec := do(t, router, http.MethodPost, "/v1/condicionantes/prazo", "", strings.NewReader(`{"licenca_id":12,"descricao":"Renovar","renovacao":true}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		DataLimite string `json:"data_limite"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "2025-09-02", got.DataLimite)
}

func TestMarkPending_RequiresConfirmation(t *testing.T) {
	router := newTestRouter(t, notCalled(t), handler.RouterConfig{})

	rec := do(t, router, http.MethodPost, "/v1/condicionantes/4/marcar-pendente", "", nil)
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
}

func TestMarkFulfilled_MultipartWithProof(t *testing.T) {
	var writes, lists int32
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/condicionantes/4/marcar-cumprida":
			atomic.AddInt32(&writes, 1)
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "2025-06-10", r.FormValue("data_envio_cumprimento"))
			assert.Equal(t, "protocolo 123", r.FormValue("observacoes"))
			if _, fh, err := r.FormFile("comprovante"); assert.NoError(t, err) {
				assert.Equal(t, "oficio.pdf", fh.Filename)
			}
			_, _ = io.WriteString(w, `{"id":4,"licenca_id":12,"descricao":"x","data_envio_cumprimento":"2025-06-10"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/api/condicionantes":
			assert.Equal(t, int32(1), atomic.LoadInt32(&writes), "refetch must follow the write")
			atomic.AddInt32(&lists, 1)
			_, _ = io.WriteString(w, `[]`)
		default:
			t.Errorf("unexpected call %s %s", r.Method, r.URL.Path)
		}
	}, handler.RouterConfig{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("data_envio_cumprimento", "2025-06-10"))
	require.NoError(t, mw.WriteField("observacoes", "protocolo 123"))
	fw, err := mw.CreateFormFile("comprovante", "oficio.pdf")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/condicionantes/4/marcar-cumprida", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int32(1), atomic.LoadInt32(&lists))

	var got struct {
		Item struct {
			Status string `json:"status"`
		} `json:"item"`
		Lista []any `json:"lista"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "cumprida", got.Item.Status)
	assert.NotNil(t, got.Lista)
}

func TestMarkFulfilled_RejectsDisguisedFile(t *testing.T) {
	router := newTestRouter(t, notCalled(t), handler.RouterConfig{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("comprovante", "foto.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("definitely not a png"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/condicionantes/4/marcar-cumprida", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWriteWithFailedRefetch_IsStale(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, `{"id":4,"licenca_id":12,"descricao":"x","data_envio_cumprimento":"2025-06-10"}`)
	}, handler.RouterConfig{})

	rec := do(t, router, http.MethodPost, "/v1/condicionantes/4/marcar-cumprida-rapido", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Stale bool `json:"desatualizada"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Stale)
}

// ============================================================
// Errors & dashboard
// ============================================================

func TestUpstreamFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode int
	}{
		{"not found passes through", http.StatusNotFound, http.StatusNotFound},
		{"server error becomes bad gateway", http.StatusInternalServerError, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}, handler.RouterConfig{})

			rec := do(t, router, http.MethodGet, "/v1/condicionantes/9", "", nil)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, errorMessage(t, rec), "HTTP error! status:")
		})
	}
}

func TestUpstreamTimeout_IsGatewayTimeout(t *testing.T) {
	router := newTestRouterWithTimeout(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, handler.RouterConfig{}, 50*time.Millisecond)

	rec := do(t, router, http.MethodGet, "/v1/empresas", "", nil)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "Tempo de resposta do servidor esgotado", errorMessage(t, rec))
}

func TestCallerDeadline_IsGatewayTimeout(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, handler.RouterConfig{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/v1/condicionantes", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Equal(t, "Tempo de resposta do servidor esgotado", errorMessage(t, rec))
}

func TestDashboard(t *testing.T) {
	today := time.Now().UTC()
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/dashboard/resumo":
			_, _ = io.WriteString(w, `{"totais":{"empresas":2,"licencas":3,"condicionantes":5},"alertas":{"condicionantes_vencidas":1}}`)
		case "/api/condicionantes/urgentes":
			_ = json.NewEncoder(w).Encode([]map[string]any{
				{"id": 1, "licenca_id": 1, "descricao": "a", "data_limite": today.AddDate(0, 0, -3).Format("2006-01-02")},
				{"id": 2, "licenca_id": 1, "descricao": "b", "data_limite": today.AddDate(0, 0, 12).Format("2006-01-02")},
			})
		default:
			t.Errorf("unexpected call %s", r.URL.Path)
		}
	}, handler.RouterConfig{})

	rec := do(t, router, http.MethodGet, "/v1/dashboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var got struct {
		Resumo struct {
			Totais struct {
				Empresas int `json:"empresas"`
			} `json:"totais"`
		} `json:"resumo"`
		Acoes []struct {
			Rotulo   string `json:"rotulo"`
			Variante string `json:"variante"`
		} `json:"acoes_urgentes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 2, got.Resumo.Totais.Empresas)
	require.Len(t, got.Acoes, 2)
	assert.Equal(t, "Vencida há 3 dias", got.Acoes[0].Rotulo)
	assert.Equal(t, "destructive", got.Acoes[0].Variante)
	assert.Equal(t, "Vence em 12 dias", got.Acoes[1].Rotulo)
	assert.Equal(t, "warning", got.Acoes[1].Variante)

	rec = do(t, router, http.MethodGet, "/v1/metricas", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var snap struct {
		Classificadas map[string]float64 `json:"classificadas"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, float64(1), snap.Classificadas["vencida"])
}

func TestRateLimit(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}, handler.RouterConfig{RateLimit: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, router, http.MethodGet, "/v1/empresas", "", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, notCalled(t), handler.RouterConfig{CORSOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/v1/empresas", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
