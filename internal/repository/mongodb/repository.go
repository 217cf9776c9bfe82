package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/autoshop/internal/repository"
)

const (
	productsColl      = "inventory_products"
	movementsColl     = "stock_movements"
	brandsColl        = "brands"
	vehicleModelsColl = "vehicle_models"
	variantsColl      = "variants"
	categoriesColl    = "product_categories"
	rangesColl        = "product_ranges"
	vendorsColl       = "vendors"
	usersColl         = "users"
	notificationsColl = "notifications"
)

// MongoDBRepository is the MongoDB implementation of the inventory store.
// Stock changes use multi-document transactions, so the deployment must be a
// replica set.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// EnsureIndexes creates the indexes the queries rely on.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		productsColl: {
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"sku": bson.M{"$gt": ""}})},
			{Keys: bson.D{{Key: "brand_id", Value: 1}, {Key: "model_id", Value: 1}, {Key: "variant_id", Value: 1}, {Key: "category_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "stock_qty", Value: 1}}},
			{Keys: bson.D{{Key: "vendor_id", Value: 1}}},
		},
		movementsColl: {
			{Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "transaction_date", Value: -1}}},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "transaction_date", Value: -1}}},
			{Keys: bson.D{{Key: "reference_id", Value: 1}, {Key: "reference_type", Value: 1}}},
			{Keys: bson.D{{Key: "transaction_date", Value: -1}}},
		},
		brandsColl:        {{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}},
		vehicleModelsColl: {{Keys: bson.D{{Key: "brand_id", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}},
		variantsColl:      {{Keys: bson.D{{Key: "model_id", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}},
		categoriesColl:    {{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}},
		rangesColl:        {{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)}},
		usersColl:         {{Keys: bson.D{{Key: "role", Value: 1}, {Key: "is_active", Value: 1}}}},
	}

	for coll, indexes := range specs {
		if _, err := r.db.Collection(coll).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// withTransaction runs fn inside a multi-document transaction.
func (r *MongoDBRepository) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	session, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

func insertOne(ctx context.Context, coll *mongo.Collection, id *primitive.ObjectID, doc interface{}, what string) error {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("insert %s: %w", what, repository.ErrDuplicate)
		}
		return fmt.Errorf("insert %s: %w", what, err)
	}
	return nil
}

func findByID[T any](ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, what string) (*T, error) {
	var out T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%s %s: %w", what, id.Hex(), repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", what, id.Hex(), err)
	}
	return &out, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts *options.FindOptions, what string) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", what, err)
	}
	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", what, err)
	}
	return out, nil
}

func byName() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
}
