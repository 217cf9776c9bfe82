package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Brand is the root of the catalog hierarchy.
type Brand struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Logo        string             `bson:"logo,omitempty" json:"logo,omitempty"`
	IsActive    bool               `bson:"is_active" json:"isActive"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// VehicleModel belongs to a brand and carries a copy of the brand name.
type VehicleModel struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BrandID     primitive.ObjectID `bson:"brand_id" json:"brandId"`
	BrandName   string             `bson:"brand_name" json:"brandName"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool               `bson:"is_active" json:"isActive"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// VariantName enumerates the trims a vehicle model can come in.
type VariantName string

const (
	VariantBase     VariantName = "Base"
	VariantMid      VariantName = "Mid"
	VariantTop      VariantName = "Top"
	VariantCustom   VariantName = "Custom"
	VariantStandard VariantName = "Standard"
)

// Valid reports whether v is a known trim.
func (v VariantName) Valid() bool {
	switch v {
	case VariantBase, VariantMid, VariantTop, VariantCustom, VariantStandard:
		return true
	}
	return false
}

// Variant belongs to a model and carries copies of the model and brand names.
type Variant struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ModelID     primitive.ObjectID `bson:"model_id" json:"modelId"`
	ModelName   string             `bson:"model_name" json:"modelName"`
	BrandID     primitive.ObjectID `bson:"brand_id" json:"brandId"`
	BrandName   string             `bson:"brand_name" json:"brandName"`
	Name        VariantName        `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool               `bson:"is_active" json:"isActive"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Category groups products by kind of part or accessory.
type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool               `bson:"is_active" json:"isActive"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Range is a product line within a category.
type Range struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive    bool               `bson:"is_active" json:"isActive"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// BankDetails holds vendor payout information.
type BankDetails struct {
	AccountName   string `bson:"account_name,omitempty" json:"accountName,omitempty"`
	AccountNumber string `bson:"account_number,omitempty" json:"accountNumber,omitempty"`
	IFSCCode      string `bson:"ifsc_code,omitempty" json:"ifscCode,omitempty"`
	BankName      string `bson:"bank_name,omitempty" json:"bankName,omitempty"`
}

// Vendor supplies products to the shop.
type Vendor struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name               string             `bson:"name" json:"name"`
	ContactPerson      string             `bson:"contact_person,omitempty" json:"contactPerson,omitempty"`
	MobileNumber       string             `bson:"mobile_number" json:"mobileNumber"`
	AlternativeNumber  string             `bson:"alternative_number,omitempty" json:"alternativeNumber,omitempty"`
	Email              string             `bson:"email,omitempty" json:"email,omitempty"`
	Address            string             `bson:"address,omitempty" json:"address,omitempty"`
	City               string             `bson:"city,omitempty" json:"city,omitempty"`
	State              string             `bson:"state,omitempty" json:"state,omitempty"`
	PinCode            string             `bson:"pin_code,omitempty" json:"pinCode,omitempty"`
	GSTNumber          string             `bson:"gst_number,omitempty" json:"gstNumber,omitempty"`
	PANNumber          string             `bson:"pan_number,omitempty" json:"panNumber,omitempty"`
	BankDetails        *BankDetails       `bson:"bank_details,omitempty" json:"bankDetails,omitempty"`
	PaymentTerms       string             `bson:"payment_terms,omitempty" json:"paymentTerms,omitempty"`
	CreditLimit        float64            `bson:"credit_limit,omitempty" json:"creditLimit,omitempty"`
	OutstandingBalance float64            `bson:"outstanding_balance" json:"outstandingBalance"`
	Rating             int                `bson:"rating,omitempty" json:"rating,omitempty"`
	Notes              string             `bson:"notes,omitempty" json:"notes,omitempty"`
	IsActive           bool               `bson:"is_active" json:"isActive"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	BrandID    *primitive.ObjectID
	CategoryID *primitive.ObjectID
	Status     ProductStatus
	ActiveOnly bool
}
