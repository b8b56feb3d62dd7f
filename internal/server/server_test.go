package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/TokenScout/internal/observability"
)

type fakeCounter struct {
	n   int
	err error
}

func (f fakeCounter) Count(context.Context) (int, error) {
	return f.n, f.err
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRoot(t *testing.T) {
	h := New("", nil, nil).Handler()

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bot is running.", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		users      UserCounter
		wantStatus string
		wantUsers  *int
	}{
		{"without registry", nil, "ok", nil},
		{"with registry", fakeCounter{n: 3}, "ok", intPtr(3)},
		{"registry down", fakeCounter{err: errors.New("conn refused")}, "degraded", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, New("", tt.users, nil).Handler(), "/health")
			require.Equal(t, http.StatusOK, rec.Code)

			var body HealthStatus
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantUsers, body.Users)
			assert.NotEmpty(t, body.Uptime)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := observability.NewMetrics("srvtest", prometheus.NewRegistry())
	m.ObserveUpdate("command")

	rec := get(t, New("", nil, m).Handler(), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `srvtest_telegram_updates_total{kind="command"} 1`)
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New("0", nil, nil).Run(ctx) }()

	cancel()
	assert.NoError(t, <-done)
}

func intPtr(n int) *int { return &n }
