package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles that are responsible for inventory by default.
const (
	RoleAdmin            = "Admin"
	RoleInventoryManager = "Inventory Manager"
)

// User is a staff member known to the user directory.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Role         string             `bson:"role" json:"role"`
	MobileNumber string             `bson:"mobile_number,omitempty" json:"mobileNumber,omitempty"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	IsActive     bool               `bson:"is_active" json:"isActive"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Contact is a reachable alert recipient. Email is optional.
type Contact struct {
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
	Email  string `json:"email,omitempty"`
}
