package reporting

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/autoshop/internal/domain/models"
	"github.com/mamadbah2/autoshop/internal/repository/memory"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

type fakeSheet struct {
	rows     [][]interface{}
	appended int
}

func (f *fakeSheet) AppendRows(_ context.Context, _ string, rows [][]interface{}) error {
	f.rows = append(f.rows, rows...)
	f.appended++
	return nil
}

func (f *fakeSheet) ReadRange(context.Context, string) ([][]interface{}, error) {
	out := make([][]interface{}, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r[:1])
	}
	return out, nil
}

func seedOpening(t *testing.T, store *memory.Store, name string, qty int, at time.Time) {
	t.Helper()
	p := &models.Product{ProductName: name, StockQty: qty, ReorderLevel: 5, IsActive: true}
	p.RefreshStatus()
	m := &models.StockMovement{
		ProductName:     name,
		Type:            models.MovementAdjustment,
		QuantityChange:  qty,
		QuantityAfter:   qty,
		ReferenceType:   models.ReferenceStockAdjustment,
		TotalAmount:     float64(qty) * 10,
		TransactionDate: at,
	}
	require.NoError(t, store.CreateProduct(context.Background(), p, m))
}

func TestMovementSummaryRejectsInvertedRange(t *testing.T) {
	svc := NewService(memory.NewStore(), nil, ist, nil)
	now := time.Now()

	_, err := svc.MovementSummary(context.Background(), now, now.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestDailySummaryUsesShopTimezone(t *testing.T) {
	store := memory.NewStore()
	seedOpening(t, store, "Late night", 3, time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)) // 23:30 IST on the 10th
	seedOpening(t, store, "Next day", 2, time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC))   // 00:30 IST on the 11th

	svc := NewService(store, nil, ist, nil)

	got, err := svc.DailySummary(context.Background(), time.Date(2026, 3, 10, 12, 0, 0, 0, ist))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Late night", got[0].ProductName)
	assert.Equal(t, 3, got[0].TotalQuantity)

	start, end := svc.DayBounds(time.Date(2026, 3, 11, 9, 0, 0, 0, ist))
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, ist), start)
	assert.Equal(t, time.Date(2026, 3, 11, 23, 59, 59, 999000000, ist), end)
}

func TestExportDailySummaryIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	day := time.Date(2026, 3, 10, 10, 0, 0, 0, ist)
	seedOpening(t, store, "Bulb", 4, day)
	seedOpening(t, store, "Wiper", 6, day.Add(time.Hour))

	sheet := &fakeSheet{}
	svc := NewService(store, sheet, ist, nil)

	res, err := svc.ExportDailySummary(ctx, day)
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.Equal(t, 2, res.Rows)
	require.Len(t, sheet.rows, 2)
	assert.Equal(t, []interface{}{"2026-03-10", "Bulb", "adjustment", 4, 40.0, 1}, sheet.rows[0])

	res, err = svc.ExportDailySummary(ctx, day)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Len(t, sheet.rows, 2)
	assert.Equal(t, 1, sheet.appended)
}

func TestExportDailySummaryWithoutSheets(t *testing.T) {
	svc := NewService(memory.NewStore(), nil, ist, nil)
	_, err := svc.ExportDailySummary(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrExportNotAvailable)
}

func TestWriteLowStockWorkbook(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, store.CreateProduct(ctx, &models.Product{
		ProductName: "Horn relay", SKU: "HR-2", BrandName: "Bosch", StockQty: 1, ReorderLevel: 3,
		Status: models.StatusLowStock, RackNumber: "R4", BinNumber: "B2", IsActive: true,
	}, nil))
	require.NoError(t, store.CreateProduct(ctx, &models.Product{
		ProductName: "Mud flap", SKU: "MF-1", StockQty: 20, ReorderLevel: 3, IsActive: true,
	}, nil))

	svc := NewService(store, nil, ist, nil)

	var buf bytes.Buffer
	n, err := svc.WriteLowStockWorkbook(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(lowStockSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Product", rows[0][0])
	assert.Equal(t, "Horn relay", rows[1][0])
	assert.Equal(t, "HR-2", rows[1][1])
	assert.Equal(t, "Bosch", rows[1][2])
	assert.Equal(t, "1", rows[1][6])
	assert.Equal(t, "low_stock", rows[1][8])
	assert.Equal(t, "R4/B2", rows[1][11])
}
