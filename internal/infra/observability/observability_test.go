package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Levels(t *testing.T) {
	assert.True(t, NewLogger("debug").Core().Enabled(zapcore.DebugLevel))
	assert.False(t, NewLogger("warn").Core().Enabled(zapcore.InfoLevel))
	assert.True(t, NewLogger("bogus").Core().Enabled(zapcore.InfoLevel))
}

func TestZapLoggerMiddleware_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	for _, status := range []int{200, 404, 502} {
		h := ZapLoggerMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(status)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/empresas", nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
}

func TestForContext_AddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-1")

	ForContext(ctx, zap.New(core)).Info("hello")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-1", logs.All()[0].ContextMap()["request_id"])
}

func TestInitTracer_EmptyEndpoint(t *testing.T) {
	shutdown, err := InitTracer("", "test")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()

	m.RecordUpstream("ListCompanies", 10*time.Millisecond, nil)
	m.RecordUpstream("ListCompanies", 10*time.Millisecond, errors.New("down"))
	m.IncrCacheHit("session")
	m.IncrCacheHit("session")
	m.IncrCacheHit("session")
	m.IncrCacheMiss("session")
	m.RecordClassified("vencida", 2)
	m.RecordClassified("urgente", 0)
	m.RecordWrite("empresa", true)
	m.RecordWrite("condicionante", false)

	s := m.Snapshot([]string{"vencida", "urgente"})
	assert.Equal(t, 1.0, s.UpstreamErrors)
	assert.InDelta(t, 0.75, s.CacheHitRate, 1e-9)
	assert.Equal(t, 2.0, s.Classified["vencida"])
	assert.Equal(t, 0.0, s.Classified["urgente"])
	assert.Equal(t, 1.0, s.StaleRefetches)

	assert.Equal(t, 1.0, getCounterValue(m.upstreamErrors, "ListCompanies"))
}
