package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationChannel identifies how a notification was delivered.
type NotificationChannel string

const (
	ChannelSMS   NotificationChannel = "sms"
	ChannelEmail NotificationChannel = "email"
)

// NotificationStatus is the delivery outcome recorded in the log. Pending
// marks a message queued for a channel with no delivery provider yet.
type NotificationStatus string

const (
	NotificationSent    NotificationStatus = "sent"
	NotificationFailed  NotificationStatus = "failed"
	NotificationPending NotificationStatus = "pending"
)

// Notification is one entry of the delivery log.
type Notification struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Channel           NotificationChannel `bson:"type" json:"type"`
	Recipient         string              `bson:"recipient" json:"recipient"`
	Subject           string              `bson:"subject,omitempty" json:"subject,omitempty"`
	Message           string              `bson:"message" json:"message"`
	Status            NotificationStatus  `bson:"status" json:"status"`
	Error             string              `bson:"error,omitempty" json:"error,omitempty"`
	ProviderMessageID string              `bson:"provider_message_id,omitempty" json:"providerMessageId,omitempty"`
	SentAt            time.Time           `bson:"sent_at" json:"sentAt"`
}
