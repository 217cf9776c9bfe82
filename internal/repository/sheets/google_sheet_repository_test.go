package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/mamadbah2/autoshop/internal/config"
)

func newTestRepository(t *testing.T, handler http.HandlerFunc) *GoogleSheetRepository {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	repo, err := newRepository(context.Background(), "sheet-1", zap.NewNop(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return repo
}

func TestNewGoogleSheetRepositoryRequiresConfig(t *testing.T) {
	_, err := NewGoogleSheetRepository(context.Background(), config.SheetsConfig{SpreadsheetID: "x"}, nil)
	assert.Error(t, err)
}

func TestAppendRows(t *testing.T) {
	var got struct {
		Values [][]interface{} `json:"values"`
	}
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/spreadsheets/sheet-1/values/")
		assert.True(t, strings.HasSuffix(r.URL.Path, ":append"), r.URL.Path)
		assert.Equal(t, "USER_ENTERED", r.URL.Query().Get("valueInputOption"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1"}`))
	})

	err := repo.AppendRows(context.Background(), "DailySummary!A:F", [][]interface{}{{"2026-03-10", "Bulb", "sale", 2, 80.5, 1}})
	require.NoError(t, err)
	require.Len(t, got.Values, 1)
	assert.Equal(t, "Bulb", got.Values[0][1])
}

func TestAppendRowsSkipsEmptyInput(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	assert.NoError(t, repo.AppendRows(context.Background(), "DailySummary!A:F", nil))
	assert.Error(t, repo.AppendRows(context.Background(), "", [][]interface{}{{"x"}}))
}

func TestReadRange(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`{"range":"DailySummary!A1:A3","values":[["Date"],["2026-03-09"],["2026-03-10"]]}`))
	})

	rows, err := repo.ReadRange(context.Background(), "DailySummary!A:A")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2026-03-10", rows[2][0])
}

func TestReadRangeError(t *testing.T) {
	repo := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	})

	_, err := repo.ReadRange(context.Background(), "DailySummary!A:A")
	assert.Error(t, err)
}
