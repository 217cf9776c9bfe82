package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/autoshop/internal/domain/models"
)

func (r *MongoDBRepository) CreateBrand(ctx context.Context, b *models.Brand) error {
	return insertOne(ctx, r.db.Collection(brandsColl), &b.ID, b, "brand")
}

func (r *MongoDBRepository) GetBrand(ctx context.Context, id primitive.ObjectID) (*models.Brand, error) {
	return findByID[models.Brand](ctx, r.db.Collection(brandsColl), id, "brand")
}

func (r *MongoDBRepository) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return findAll[models.Brand](ctx, r.db.Collection(brandsColl), bson.M{}, byName(), "brands")
}

func (r *MongoDBRepository) CreateVehicleModel(ctx context.Context, m *models.VehicleModel) error {
	return insertOne(ctx, r.db.Collection(vehicleModelsColl), &m.ID, m, "model")
}

func (r *MongoDBRepository) GetVehicleModel(ctx context.Context, id primitive.ObjectID) (*models.VehicleModel, error) {
	return findByID[models.VehicleModel](ctx, r.db.Collection(vehicleModelsColl), id, "model")
}

func (r *MongoDBRepository) ListVehicleModels(ctx context.Context, brandID *primitive.ObjectID) ([]models.VehicleModel, error) {
	filter := bson.M{}
	if brandID != nil {
		filter["brand_id"] = *brandID
	}
	return findAll[models.VehicleModel](ctx, r.db.Collection(vehicleModelsColl), filter, byName(), "models")
}

func (r *MongoDBRepository) CreateVariant(ctx context.Context, v *models.Variant) error {
	return insertOne(ctx, r.db.Collection(variantsColl), &v.ID, v, "variant")
}

func (r *MongoDBRepository) GetVariant(ctx context.Context, id primitive.ObjectID) (*models.Variant, error) {
	return findByID[models.Variant](ctx, r.db.Collection(variantsColl), id, "variant")
}

func (r *MongoDBRepository) ListVariants(ctx context.Context, modelID *primitive.ObjectID) ([]models.Variant, error) {
	filter := bson.M{}
	if modelID != nil {
		filter["model_id"] = *modelID
	}
	return findAll[models.Variant](ctx, r.db.Collection(variantsColl), filter, byName(), "variants")
}

func (r *MongoDBRepository) CreateCategory(ctx context.Context, c *models.Category) error {
	return insertOne(ctx, r.db.Collection(categoriesColl), &c.ID, c, "category")
}

func (r *MongoDBRepository) GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	return findByID[models.Category](ctx, r.db.Collection(categoriesColl), id, "category")
}

func (r *MongoDBRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	return findAll[models.Category](ctx, r.db.Collection(categoriesColl), bson.M{}, byName(), "categories")
}

func (r *MongoDBRepository) CreateRange(ctx context.Context, rg *models.Range) error {
	return insertOne(ctx, r.db.Collection(rangesColl), &rg.ID, rg, "range")
}

func (r *MongoDBRepository) GetRange(ctx context.Context, id primitive.ObjectID) (*models.Range, error) {
	return findByID[models.Range](ctx, r.db.Collection(rangesColl), id, "range")
}

func (r *MongoDBRepository) ListRanges(ctx context.Context) ([]models.Range, error) {
	return findAll[models.Range](ctx, r.db.Collection(rangesColl), bson.M{}, byName(), "ranges")
}

func (r *MongoDBRepository) CreateVendor(ctx context.Context, v *models.Vendor) error {
	return insertOne(ctx, r.db.Collection(vendorsColl), &v.ID, v, "vendor")
}

func (r *MongoDBRepository) GetVendor(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	return findByID[models.Vendor](ctx, r.db.Collection(vendorsColl), id, "vendor")
}

func (r *MongoDBRepository) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	return findAll[models.Vendor](ctx, r.db.Collection(vendorsColl), bson.M{}, byName(), "vendors")
}
