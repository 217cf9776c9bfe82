package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/autoshop/internal/config"
	"github.com/mamadbah2/autoshop/internal/domain/models"
	"github.com/mamadbah2/autoshop/internal/repository/memory"
	"github.com/mamadbah2/autoshop/internal/service/alerts"
	"github.com/mamadbah2/autoshop/internal/service/catalog"
	"github.com/mamadbah2/autoshop/internal/service/ledger"
	"github.com/mamadbah2/autoshop/internal/service/notifications"
	"github.com/mamadbah2/autoshop/internal/service/reporting"
)

type testEnv struct {
	router  *gin.Engine
	store   *memory.Store
	catalog *catalog.Service
	clerk   *models.User
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	dispatcher := notifications.NewDispatcher(nil, store, nil)
	trigger := alerts.NewTrigger(store, store, dispatcher, config.AlertsConfig{NotifyTimeout: time.Second}, nil)
	ledgerSvc := ledger.NewService(store, store, trigger, config.LedgerConfig{Timeout: 5 * time.Second, MaxAttempts: 5}, nil)
	catalogSvc := catalog.NewService(store, nil)
	reportSvc := reporting.NewService(store, nil, time.UTC, nil)

	stock := NewStockHandler(ledgerSvc, nil)
	cat := NewCatalogHandler(catalogSvc, nil)
	reports := NewReportHandler(reportSvc, trigger, store, nil)

	r := gin.New()
	r.POST("/stock/deduct", stock.Deduct)
	r.POST("/stock/add", stock.Add)
	r.GET("/stock/low", reports.LowStock)
	r.GET("/stock/low/export", reports.LowStockWorkbook)
	r.GET("/movements", reports.Movements)
	r.GET("/movements/summary", reports.Summary)
	r.GET("/movements/daily", reports.DailySummary)
	r.POST("/reports/daily/export", reports.ExportDailySummary)
	r.POST("/alerts/sweep", reports.SweepAlerts)
	r.GET("/notifications", reports.Notifications)
	r.POST("/brands", cat.CreateBrand)
	r.GET("/brands", cat.ListBrands)
	r.POST("/models", cat.CreateVehicleModel)
	r.POST("/products", cat.CreateProduct)
	r.GET("/products/:id", cat.GetProduct)
	r.PATCH("/products/:id", cat.UpdateProduct)
	r.POST("/users", cat.CreateUser)

	clerk, err := catalogSvc.CreateUser(context.Background(), models.User{
		Name: "Meera", Role: models.RoleInventoryManager, MobileNumber: "+919800000000",
	})
	require.NoError(t, err)

	return &testEnv{router: r, store: store, catalog: catalogSvc, clerk: clerk}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedProduct(t *testing.T, stock, reorder int) *models.Product {
	t.Helper()
	ctx := context.Background()
	brand, err := e.catalog.CreateBrand(ctx, "Maruti", "")
	require.NoError(t, err)
	model, err := e.catalog.CreateVehicleModel(ctx, brand.ID, "Swift", "")
	require.NoError(t, err)
	category, err := e.catalog.CreateCategory(ctx, "Brakes", "")
	require.NoError(t, err)

	p, err := e.catalog.CreateProduct(ctx, catalog.NewProduct{
		BrandID:       brand.ID,
		ModelID:       model.ID,
		CategoryID:    category.ID,
		ProductName:   "Brake pad",
		SKU:           "BP-1",
		OpeningStock:  stock,
		ReorderLevel:  &reorder,
		PurchasePrice: 150,
		SellingPrice:  250,
		PerformedBy:   e.clerk.ID,
	})
	require.NoError(t, err)
	return p
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestDeductStock(t *testing.T) {
	env := setupEnv(t)
	p := env.seedProduct(t, 10, 5)

	w := env.do(t, http.MethodPost, "/stock/deduct", gin.H{
		"productId":     p.ID.Hex(),
		"quantity":      6,
		"referenceType": "order",
		"referenceId":   "ORD-9",
		"unitPrice":     250,
		"performedBy":   env.clerk.ID.Hex(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res ledger.Result
	decode(t, w, &res)
	assert.True(t, res.Success)
	assert.Equal(t, "Stock deducted successfully", res.Message)
	assert.Equal(t, 10, res.StockBefore)
	assert.Equal(t, 4, res.StockAfter)
	require.NotNil(t, res.Product)
	assert.Equal(t, models.StatusLowStock, res.Product.Status)
	// Nothing could be delivered without SMS credentials.
	assert.False(t, res.AlertSent)

	w = env.do(t, http.MethodPost, "/stock/deduct", gin.H{
		"productId":     p.ID.Hex(),
		"quantity":      4,
		"referenceType": "order",
		"performedBy":   env.clerk.ID.Hex(),
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stockBefore":4`)
	assert.Contains(t, w.Body.String(), `"stockAfter":0`)
}

func TestDeductStockFailures(t *testing.T) {
	env := setupEnv(t)
	p := env.seedProduct(t, 10, 5)

	tests := []struct {
		name    string
		body    gin.H
		status  int
		message string
	}{
		{
			name:    "insufficient stock",
			body:    gin.H{"productId": p.ID.Hex(), "quantity": 999, "referenceType": "order", "performedBy": env.clerk.ID.Hex()},
			status:  http.StatusConflict,
			message: "Insufficient stock. Available: 10, Required: 999",
		},
		{
			name:    "unknown product",
			body:    gin.H{"productId": "64b000000000000000000000", "quantity": 1, "referenceType": "order", "performedBy": env.clerk.ID.Hex()},
			status:  http.StatusNotFound,
			message: "Product not found",
		},
		{
			name:    "unknown user",
			body:    gin.H{"productId": p.ID.Hex(), "quantity": 1, "referenceType": "order", "performedBy": "64b000000000000000000000"},
			status:  http.StatusNotFound,
			message: "User not found",
		},
		{
			name:   "zero quantity",
			body:   gin.H{"productId": p.ID.Hex(), "quantity": 0, "referenceType": "order", "performedBy": env.clerk.ID.Hex()},
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown reference type",
			body:   gin.H{"productId": p.ID.Hex(), "quantity": 1, "referenceType": "barter", "performedBy": env.clerk.ID.Hex()},
			status: http.StatusBadRequest,
		},
		{
			name:    "malformed product id",
			body:    gin.H{"productId": "nope", "quantity": 1, "referenceType": "order", "performedBy": env.clerk.ID.Hex()},
			status:  http.StatusBadRequest,
			message: "invalid productId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/stock/deduct", tt.body)
			assert.Equal(t, tt.status, w.Code)

			var res ledger.Result
			decode(t, w, &res)
			assert.False(t, res.Success)
			if tt.message != "" {
				assert.Equal(t, tt.message, res.Message)
			}
		})
	}

	stored, err := env.store.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.StockQty)
}

func TestAddStock(t *testing.T) {
	env := setupEnv(t)
	p := env.seedProduct(t, 2, 5)

	w := env.do(t, http.MethodPost, "/stock/add", gin.H{
		"productId":     p.ID.Hex(),
		"quantity":      8,
		"type":          "purchase",
		"unitPrice":     140,
		"invoiceNumber": "INV-7",
		"performedBy":   env.clerk.ID.Hex(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res ledger.Result
	decode(t, w, &res)
	assert.True(t, res.Success)
	assert.Equal(t, 10, res.StockAfter)

	w = env.do(t, http.MethodPost, "/stock/add", gin.H{
		"productId":   p.ID.Hex(),
		"quantity":    1,
		"type":        "sale",
		"performedBy": env.clerk.ID.Hex(),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/movements?productId="+p.ID.Hex()+"&type=purchase", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var movements []models.StockMovement
	decode(t, w, &movements)
	require.Len(t, movements, 1)
	assert.Equal(t, models.ReferencePurchaseOrder, movements[0].ReferenceType)
	assert.Equal(t, "INV-7", movements[0].InvoiceNumber)
	assert.Equal(t, 1120.0, movements[0].TotalAmount)
}

func TestCatalogEndpoints(t *testing.T) {
	env := setupEnv(t)

	w := env.do(t, http.MethodPost, "/brands", gin.H{"name": "Hyundai"})
	require.Equal(t, http.StatusCreated, w.Code)
	var brand models.Brand
	decode(t, w, &brand)

	w = env.do(t, http.MethodPost, "/brands", gin.H{"name": "hyundai"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/brands", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/models", gin.H{"parentId": brand.ID.Hex(), "name": "Creta"})
	require.Equal(t, http.StatusCreated, w.Code)
	var model models.VehicleModel
	decode(t, w, &model)
	assert.Equal(t, "Hyundai", model.BrandName)

	w = env.do(t, http.MethodGet, "/brands", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var brands []models.Brand
	decode(t, w, &brands)
	assert.Len(t, brands, 1)
}

func TestProductEndpoints(t *testing.T) {
	env := setupEnv(t)
	p := env.seedProduct(t, 4, 5)

	w := env.do(t, http.MethodGet, "/products/"+p.ID.Hex(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Product
	decode(t, w, &got)
	assert.Equal(t, "Maruti", got.BrandName)
	assert.Equal(t, models.StatusLowStock, got.Status)

	w = env.do(t, http.MethodPatch, "/products/"+p.ID.Hex(), gin.H{"reorderLevel": 2, "sellingPrice": 275.5})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	assert.Equal(t, models.StatusInStock, got.Status)
	assert.Equal(t, 275.5, got.SellingPrice)
	assert.Equal(t, 4, got.StockQty)

	w = env.do(t, http.MethodPatch, "/products/"+p.ID.Hex(), gin.H{"gstRate": 140})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/products/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/products/64b000000000000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	other, err := env.catalog.CreateProduct(context.Background(), catalog.NewProduct{
		BrandID:     p.BrandID,
		ModelID:     p.ModelID,
		CategoryID:  p.CategoryID,
		ProductName: "Brake disc",
		SKU:         "BD-1",
		PerformedBy: env.clerk.ID,
	})
	require.NoError(t, err)

	w = env.do(t, http.MethodPatch, "/products/"+other.ID.Hex(), gin.H{"sku": "BP-1"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLowStockReports(t *testing.T) {
	env := setupEnv(t)
	p := env.seedProduct(t, 3, 5)

	w := env.do(t, http.MethodGet, "/stock/low", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []models.LowStockItem
	decode(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].Product.ID)
	assert.Equal(t, "Brakes", items[0].CategoryName)

	w = env.do(t, http.MethodGet, "/stock/low/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, "1", w.Header().Get("X-Item-Count"))

	book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Low Stock")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSummaryEndpoints(t *testing.T) {
	env := setupEnv(t)
	env.seedProduct(t, 6, 2)
	today := time.Now().UTC().Format(dateLayout)

	w := env.do(t, http.MethodGet, "/movements/summary?from="+today+"&to="+today, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Items []models.MovementSummary `json:"items"`
	}
	decode(t, w, &body)
	require.Len(t, body.Items, 1)
	assert.Equal(t, models.MovementAdjustment, body.Items[0].Type)
	assert.Equal(t, 6, body.Items[0].TotalQuantity)

	w = env.do(t, http.MethodGet, "/movements/summary?from=2026-03-10&to=2026-03-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/movements/summary?from=yesterday&to="+today, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/movements/daily", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &body)
	assert.Len(t, body.Items, 1)

	w = env.do(t, http.MethodPost, "/reports/daily/export", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAlertSweepAndNotifications(t *testing.T) {
	env := setupEnv(t)
	p := env.seedProduct(t, 6, 5)

	w := env.do(t, http.MethodPost, "/stock/deduct", gin.H{
		"productId":     p.ID.Hex(),
		"quantity":      2,
		"referenceType": "service_visit",
		"performedBy":   env.clerk.ID.Hex(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/alerts/sweep", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var sweep struct {
		Count int `json:"count"`
	}
	decode(t, w, &sweep)
	assert.Zero(t, sweep.Count)

	w = env.do(t, http.MethodGet, "/notifications?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var log []models.Notification
	decode(t, w, &log)
	// One attempt from the deduction and one from the sweep.
	require.Len(t, log, 2)
	for _, entry := range log {
		assert.Equal(t, models.NotificationFailed, entry.Status)
		assert.Equal(t, "+919800000000", entry.Recipient)
	}

	w = env.do(t, http.MethodGet, "/notifications?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
