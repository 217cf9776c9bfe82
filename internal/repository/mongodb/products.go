package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/autoshop/internal/domain/models"
	"github.com/mamadbah2/autoshop/internal/repository"
)

// CreateProduct inserts a product and, when opening is non-nil, its opening
// stock movement in the same transaction.
func (r *MongoDBRepository) CreateProduct(ctx context.Context, p *models.Product, opening *models.StockMovement) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}

	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := insertOne(sc, r.db.Collection(productsColl), &p.ID, p, "product"); err != nil {
			return err
		}
		if opening == nil {
			return nil
		}
		opening.ProductID = p.ID
		return insertOne(sc, r.db.Collection(movementsColl), &opening.ID, opening, "stock movement")
	})
}

// GetProduct looks a product up by id.
func (r *MongoDBRepository) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return findByID[models.Product](ctx, r.db.Collection(productsColl), id, "product")
}

// ListProducts returns products matching filter ordered by name.
func (r *MongoDBRepository) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.ActiveOnly {
		query["is_active"] = true
	}
	if filter.BrandID != nil {
		query["brand_id"] = *filter.BrandID
	}
	if filter.CategoryID != nil {
		query["category_id"] = *filter.CategoryID
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	opts := options.Find().SetSort(bson.D{{Key: "product_name", Value: 1}})
	return findAll[models.Product](ctx, r.db.Collection(productsColl), query, opts, "products")
}

// SaveProduct replaces the product if its stored version still equals expectedVersion.
func (r *MongoDBRepository) SaveProduct(ctx context.Context, p *models.Product, expectedVersion int64) error {
	return replaceVersioned(ctx, r.db.Collection(productsColl), p, expectedVersion)
}

// ApplyStockChange saves the product and appends the movement in one transaction.
func (r *MongoDBRepository) ApplyStockChange(ctx context.Context, p *models.Product, expectedVersion int64, m *models.StockMovement) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := replaceVersioned(sc, r.db.Collection(productsColl), p, expectedVersion); err != nil {
			return err
		}
		return insertOne(sc, r.db.Collection(movementsColl), &m.ID, m, "stock movement")
	})
}

func replaceVersioned(ctx context.Context, coll *mongo.Collection, p *models.Product, expectedVersion int64) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": p.ID, "version": expectedVersion}, p)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("sku %s: %w", p.SKU, repository.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("replace product %s: %w", p.ID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		n, err := coll.CountDocuments(ctx, bson.M{"_id": p.ID})
		if err != nil {
			return fmt.Errorf("count product %s: %w", p.ID.Hex(), err)
		}
		if n == 0 {
			return fmt.Errorf("product %s: %w", p.ID.Hex(), repository.ErrNotFound)
		}
		return fmt.Errorf("product %s at version %d: %w", p.ID.Hex(), expectedVersion, repository.ErrVersionConflict)
	}
	return nil
}

// FindLowStock lists active products whose stock is at or below the reorder
// level, lowest stock first, resolving parent names from the catalog.
func (r *MongoDBRepository) FindLowStock(ctx context.Context) ([]models.LowStockItem, error) {
	lookupName := func(from, localField, as string) bson.D {
		return bson.D{{Key: "$lookup", Value: bson.M{
			"from":         from,
			"localField":   localField,
			"foreignField": "_id",
			"as":           as,
		}}}
	}
	firstOr := func(arr, field, fallback string) bson.M {
		return bson.M{"$ifNull": bson.A{
			bson.M{"$arrayElemAt": bson.A{"$" + arr + "." + field, 0}},
			fallback,
		}}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"is_active": true,
			"$expr":     bson.M{"$lte": bson.A{"$stock_qty", "$reorder_level"}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "stock_qty", Value: 1}, {Key: "product_name", Value: 1}}}},
		lookupName(brandsColl, "brand_id", "_brand"),
		lookupName(vehicleModelsColl, "model_id", "_model"),
		lookupName(variantsColl, "variant_id", "_variant"),
		lookupName(categoriesColl, "category_id", "_category"),
		lookupName(vendorsColl, "vendor_id", "_vendor"),
		{{Key: "$addFields", Value: bson.M{
			"resolved_brand_name":    firstOr("_brand", "name", "$brand_name"),
			"resolved_model_name":    firstOr("_model", "name", "$model_name"),
			"resolved_variant_name":  firstOr("_variant", "name", "$variant_name"),
			"resolved_category_name": firstOr("_category", "name", "$category_name"),
			"resolved_vendor_name":   firstOr("_vendor", "name", "$vendor_name"),
			"resolved_vendor_mobile": firstOr("_vendor", "mobile_number", ""),
		}}},
		{{Key: "$project", Value: bson.M{"_brand": 0, "_model": 0, "_variant": 0, "_category": 0, "_vendor": 0}}},
	}

	cursor, err := r.db.Collection(productsColl).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate low stock: %w", err)
	}
	out := make([]models.LowStockItem, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode low stock: %w", err)
	}
	return out, nil
}

// ListMovements returns movements matching filter, newest first.
func (r *MongoDBRepository) ListMovements(ctx context.Context, filter models.MovementFilter) ([]models.StockMovement, error) {
	query := bson.M{}
	if filter.ProductID != nil {
		query["product_id"] = *filter.ProductID
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.From != nil || filter.To != nil {
		window := bson.M{}
		if filter.From != nil {
			window["$gte"] = *filter.From
		}
		if filter.To != nil {
			window["$lte"] = *filter.To
		}
		query["transaction_date"] = window
	}

	opts := options.Find().SetSort(bson.D{{Key: "transaction_date", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return findAll[models.StockMovement](ctx, r.db.Collection(movementsColl), query, opts, "stock movements")
}

// SummarizeMovements groups movements inside [from, to] by product and type.
// Each group carries the product name of its latest movement.
func (r *MongoDBRepository) SummarizeMovements(ctx context.Context, from, to time.Time) ([]models.MovementSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"transaction_date": bson.M{"$gte": from, "$lte": to}}}},
		{{Key: "$sort", Value: bson.D{{Key: "transaction_date", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"product_id": "$product_id",
				"type":       "$type",
			},
			"product_name":   bson.M{"$last": "$product_name"},
			"total_quantity": bson.M{"$sum": "$quantity_change"},
			"total_amount":   bson.M{"$sum": "$total_amount"},
			"count":          bson.M{"$sum": 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":            0,
			"product_id":     "$_id.product_id",
			"product_name":   1,
			"type":           "$_id.type",
			"total_quantity": 1,
			"total_amount":   1,
			"count":          1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "product_name", Value: 1}, {Key: "type", Value: 1}}}},
	}

	cursor, err := r.db.Collection(movementsColl).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate movement summary: %w", err)
	}
	out := make([]models.MovementSummary, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode movement summary: %w", err)
	}
	// $sum over doubles accumulates binary error; amounts are money.
	for i := range out {
		out[i].TotalAmount = decimal.NewFromFloat(out[i].TotalAmount).Round(2).InexactFloat64()
	}
	return out, nil
}
