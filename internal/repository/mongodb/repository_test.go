package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/autoshop/internal/domain/models"
	"github.com/mamadbah2/autoshop/internal/repository"
)

// newTestRepository connects to the replica set named by MONGODB_TEST_URI and
// uses a throwaway database.
func newTestRepository(t *testing.T) *MongoDBRepository {
	t.Helper()
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := NewMongoDBRepository(ctx, uri, fmt.Sprintf("autoshop_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	require.NoError(t, repo.EnsureIndexes(ctx))

	t.Cleanup(func() {
		_ = repo.db.Drop(context.Background())
		_ = repo.Close(context.Background())
	})
	return repo
}

func TestApplyStockChangeIsVersioned(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	p := &models.Product{ProductName: "Wiper blade", SKU: "WB-1", StockQty: 5, ReorderLevel: 2, IsActive: true}
	p.RefreshStatus()
	require.NoError(t, repo.CreateProduct(ctx, p, nil))

	update := *p
	update.StockQty = 3
	update.Version = 1
	update.RefreshStatus()
	move := &models.StockMovement{ProductID: p.ID, Type: models.MovementSale, QuantityBefore: 5, QuantityChange: -2, QuantityAfter: 3, ReferenceType: models.ReferenceOrder, TransactionDate: time.Now().UTC()}
	require.NoError(t, repo.ApplyStockChange(ctx, &update, 0, move))

	stale := *p
	stale.StockQty = 4
	stale.Version = 1
	err := repo.ApplyStockChange(ctx, &stale, 0, &models.StockMovement{ProductID: p.ID, Type: models.MovementSale, ReferenceType: models.ReferenceOrder})
	assert.ErrorIs(t, err, repository.ErrVersionConflict)

	got, err := repo.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.StockQty)
	assert.Equal(t, int64(1), got.Version)

	movements, err := repo.ListMovements(ctx, models.MovementFilter{ProductID: &p.ID})
	require.NoError(t, err)
	assert.Len(t, movements, 1)

	_, err = repo.GetProduct(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDuplicateSKURejected(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateProduct(ctx, &models.Product{ProductName: "Horn", SKU: "HN-1"}, nil))
	err := repo.CreateProduct(ctx, &models.Product{ProductName: "Horn 2", SKU: "HN-1"}, nil)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestSaveProductRejectsTakenSKU(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateProduct(ctx, &models.Product{ProductName: "Horn", SKU: "HN-1"}, nil))
	other := &models.Product{ProductName: "Relay", SKU: "RL-1"}
	require.NoError(t, repo.CreateProduct(ctx, other, nil))

	update := *other
	update.SKU = "HN-1"
	update.Version = 1
	assert.ErrorIs(t, repo.SaveProduct(ctx, &update, 0), repository.ErrDuplicate)

	got, err := repo.GetProduct(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "RL-1", got.SKU)
}

func TestSummarizeMovementsFollowsRename(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	id := primitive.NewObjectID()
	for i, name := range []string{"Headlamp", "Headlamp LED", "Headlamp"} {
		at := day.Add(time.Duration([]int{1, 3, 2}[i]) * time.Hour)
		_, err := repo.db.Collection(movementsColl).InsertOne(ctx, &models.StockMovement{
			ID: primitive.NewObjectID(), ProductID: id, ProductName: name, Type: models.MovementSale,
			QuantityChange: -1, TotalAmount: 10, TransactionDate: at,
		})
		require.NoError(t, err)
	}

	got, err := repo.SummarizeMovements(ctx, day, day.Add(24*time.Hour-time.Millisecond))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Headlamp LED", got[0].ProductName)
	assert.Equal(t, -3, got[0].TotalQuantity)
	assert.Equal(t, 30.0, got[0].TotalAmount)
}

func TestFindLowStockResolvesNames(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	brand := &models.Brand{Name: "Tata", IsActive: true}
	require.NoError(t, repo.CreateBrand(ctx, brand))
	vendor := &models.Vendor{Name: "Sharma Auto", MobileNumber: "+919811111111", IsActive: true}
	require.NoError(t, repo.CreateVendor(ctx, vendor))

	low := &models.Product{ProductName: "Fuse", BrandID: brand.ID, BrandName: "Old name", VendorID: &vendor.ID, StockQty: 1, ReorderLevel: 3, IsActive: true}
	ok := &models.Product{ProductName: "Relay", BrandID: brand.ID, StockQty: 9, ReorderLevel: 3, IsActive: true}
	inactive := &models.Product{ProductName: "Bulb", BrandID: brand.ID, StockQty: 0, ReorderLevel: 3}
	for _, p := range []*models.Product{low, ok, inactive} {
		p.RefreshStatus()
		require.NoError(t, repo.CreateProduct(ctx, p, nil))
	}

	items, err := repo.FindLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, low.ID, items[0].Product.ID)
	assert.Equal(t, "Tata", items[0].BrandName)
	assert.Equal(t, "Sharma Auto", items[0].VendorName)
	assert.Equal(t, "+919811111111", items[0].VendorMobile)
}
