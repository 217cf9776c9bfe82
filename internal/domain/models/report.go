package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MovementSummary aggregates movements of one type for one product.
type MovementSummary struct {
	ProductID     primitive.ObjectID `bson:"product_id" json:"productId"`
	ProductName   string             `bson:"product_name" json:"productName"`
	Type          MovementType       `bson:"type" json:"type"`
	TotalQuantity int                `bson:"total_quantity" json:"totalQuantity"`
	TotalAmount   float64            `bson:"total_amount" json:"totalAmount"`
	Count         int                `bson:"count" json:"count"`
}

// LowStockItem is a low-stock product with catalog and vendor fields resolved
// from the current parent records.
type LowStockItem struct {
	Product      Product `bson:",inline" json:"product"`
	BrandName    string  `bson:"resolved_brand_name" json:"brandName"`
	ModelName    string  `bson:"resolved_model_name" json:"modelName"`
	VariantName  string  `bson:"resolved_variant_name" json:"variantName,omitempty"`
	CategoryName string  `bson:"resolved_category_name" json:"categoryName"`
	VendorName   string  `bson:"resolved_vendor_name" json:"vendorName,omitempty"`
	VendorMobile string  `bson:"resolved_vendor_mobile" json:"vendorMobile,omitempty"`
}

// DailyExport records that a day's summary was pushed to the spreadsheet.
type DailyExport struct {
	Date       time.Time `json:"date"`
	Rows       int       `json:"rows"`
	Skipped    bool      `json:"skipped"`
	ExportedAt time.Time `json:"exportedAt"`
}
