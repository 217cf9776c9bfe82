package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/autoshop/internal/domain/models"
)

// CreateUser inserts a staff member.
func (r *MongoDBRepository) CreateUser(ctx context.Context, u *models.User) error {
	return insertOne(ctx, r.db.Collection(usersColl), &u.ID, u, "user")
}

// GetUser looks a user up by id.
func (r *MongoDBRepository) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findByID[models.User](ctx, r.db.Collection(usersColl), id, "user")
}

// ListUsers returns every user ordered by name.
func (r *MongoDBRepository) ListUsers(ctx context.Context) ([]models.User, error) {
	return findAll[models.User](ctx, r.db.Collection(usersColl), bson.M{}, byName(), "users")
}

// FindAlertRecipients returns active users holding one of roles with a mobile number.
func (r *MongoDBRepository) FindAlertRecipients(ctx context.Context, roles []string) ([]models.Contact, error) {
	filter := bson.M{
		"role":          bson.M{"$in": roles},
		"is_active":     true,
		"mobile_number": bson.M{"$exists": true, "$nin": bson.A{nil, ""}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetProjection(bson.M{"name": 1, "mobile_number": 1, "email": 1})

	users, err := findAll[models.User](ctx, r.db.Collection(usersColl), filter, opts, "alert recipients")
	if err != nil {
		return nil, err
	}

	contacts := make([]models.Contact, 0, len(users))
	for _, u := range users {
		contacts = append(contacts, models.Contact{Name: u.Name, Mobile: u.MobileNumber, Email: u.Email})
	}
	return contacts, nil
}

// SaveNotification appends a delivery log entry.
func (r *MongoDBRepository) SaveNotification(ctx context.Context, n *models.Notification) error {
	if err := insertOne(ctx, r.db.Collection(notificationsColl), &n.ID, n, "notification"); err != nil {
		return fmt.Errorf("save notification: %w", err)
	}
	return nil
}

// ListNotifications returns the most recent log entries first.
func (r *MongoDBRepository) ListNotifications(ctx context.Context, limit int) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return findAll[models.Notification](ctx, r.db.Collection(notificationsColl), bson.M{}, opts, "notifications")
}
