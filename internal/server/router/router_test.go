package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/autoshop/internal/config"
	"github.com/mamadbah2/autoshop/internal/repository/memory"
	"github.com/mamadbah2/autoshop/internal/server/handlers"
	"github.com/mamadbah2/autoshop/internal/service/alerts"
	"github.com/mamadbah2/autoshop/internal/service/catalog"
	"github.com/mamadbah2/autoshop/internal/service/ledger"
	"github.com/mamadbah2/autoshop/internal/service/notifications"
	"github.com/mamadbah2/autoshop/internal/service/reporting"
)

func newTestRouter() http.Handler {
	store := memory.NewStore()
	trigger := alerts.NewTrigger(store, store, notifications.NewDispatcher(nil, store, nil), config.AlertsConfig{NotifyTimeout: time.Second}, nil)

	return New(Handlers{
		Catalog: handlers.NewCatalogHandler(catalog.NewService(store, nil), nil),
		Stock:   handlers.NewStockHandler(ledger.NewService(store, store, trigger, config.LedgerConfig{Timeout: time.Second, MaxAttempts: 3}, nil), nil),
		Reports: handlers.NewReportHandler(reporting.NewService(store, nil, time.UTC, nil), trigger, store, nil),
	}, nil)
}

func TestHealthz(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	_, err := uuid.Parse(w.Header().Get(requestIDHeader))
	require.NoError(t, err)
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/inventory/brands", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestRoutesMounted(t *testing.T) {
	r := newTestRouter()

	for _, path := range []string{
		"/api/inventory/stock/low",
		"/api/inventory/products",
		"/api/inventory/movements",
		"/api/users",
		"/api/notifications",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
