package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductStatus enumerates the stock states a product can be in.
type ProductStatus string

const (
	StatusInStock      ProductStatus = "in_stock"
	StatusLowStock     ProductStatus = "low_stock"
	StatusOutOfStock   ProductStatus = "out_of_stock"
	StatusDiscontinued ProductStatus = "discontinued"
)

// Product is the catalog leaf carrying denormalized parent names alongside
// pricing and stock fields.
type Product struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	BrandID     primitive.ObjectID  `bson:"brand_id" json:"brandId"`
	BrandName   string              `bson:"brand_name" json:"brandName"`
	ModelID     primitive.ObjectID  `bson:"model_id" json:"modelId"`
	ModelName   string              `bson:"model_name" json:"modelName"`
	VariantID   *primitive.ObjectID `bson:"variant_id,omitempty" json:"variantId,omitempty"`
	VariantName string              `bson:"variant_name,omitempty" json:"variantName,omitempty"`

	CategoryID   primitive.ObjectID  `bson:"category_id" json:"categoryId"`
	CategoryName string              `bson:"category_name" json:"categoryName"`
	RangeID      *primitive.ObjectID `bson:"range_id,omitempty" json:"rangeId,omitempty"`
	RangeName    string              `bson:"range_name,omitempty" json:"rangeName,omitempty"`

	ProductName string `bson:"product_name" json:"productName"`
	Color       string `bson:"color,omitempty" json:"color,omitempty"`
	Finish      string `bson:"finish,omitempty" json:"finish,omitempty"`
	SKU         string `bson:"sku" json:"sku"`
	Barcode     string `bson:"barcode,omitempty" json:"barcode,omitempty"`

	StockQty      int    `bson:"stock_qty" json:"stockQty"`
	ReorderLevel  int    `bson:"reorder_level" json:"reorderLevel"`
	MinStockLevel int    `bson:"min_stock_level" json:"minStockLevel"`
	MaxStockLevel *int   `bson:"max_stock_level,omitempty" json:"maxStockLevel,omitempty"`
	Unit          string `bson:"unit" json:"unit"`

	PurchasePrice float64 `bson:"purchase_price" json:"purchasePrice"`
	SellingPrice  float64 `bson:"selling_price" json:"sellingPrice"`
	MRP           float64 `bson:"mrp" json:"mrp"`
	GSTRate       float64 `bson:"gst_rate" json:"gstRate"`

	VendorID         *primitive.ObjectID `bson:"vendor_id,omitempty" json:"vendorId,omitempty"`
	VendorName       string              `bson:"vendor_name,omitempty" json:"vendorName,omitempty"`
	VendorPartNumber string              `bson:"vendor_part_number,omitempty" json:"vendorPartNumber,omitempty"`

	Status          ProductStatus `bson:"status" json:"status"`
	LastRestockDate *time.Time    `bson:"last_restock_date,omitempty" json:"lastRestockDate,omitempty"`
	LastSaleDate    *time.Time    `bson:"last_sale_date,omitempty" json:"lastSaleDate,omitempty"`

	WarehouseLocation string `bson:"warehouse_location,omitempty" json:"warehouseLocation,omitempty"`
	RackNumber        string `bson:"rack_number,omitempty" json:"rackNumber,omitempty"`
	BinNumber         string `bson:"bin_number,omitempty" json:"binNumber,omitempty"`

	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Warranty    string `bson:"warranty,omitempty" json:"warranty,omitempty"`
	Notes       string `bson:"notes,omitempty" json:"notes,omitempty"`

	LowStockAlertSent bool       `bson:"low_stock_alert_sent" json:"lowStockAlertSent"`
	LastAlertDate     *time.Time `bson:"last_alert_date,omitempty" json:"lastAlertDate,omitempty"`

	IsActive bool `bson:"is_active" json:"isActive"`

	// Version is bumped on every write and guards read-modify-write cycles.
	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// ComputeStatus derives the stock status from the quantity on hand and the
// reorder threshold. It never yields StatusDiscontinued.
func ComputeStatus(stockQty, reorderLevel int) ProductStatus {
	switch {
	case stockQty <= 0:
		return StatusOutOfStock
	case stockQty <= reorderLevel:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// RefreshStatus recomputes Status from the current stock fields. Callers run it
// before every write.
func (p *Product) RefreshStatus() {
	p.Status = ComputeStatus(p.StockQty, p.ReorderLevel)
}

// IsLowStock reports whether the product sits at or below its reorder level.
func (p *Product) IsLowStock() bool {
	return p.StockQty <= p.ReorderLevel
}

// NeedsLowStockAlert reports whether a new alert episode should start.
func (p *Product) NeedsLowStockAlert() bool {
	return p.IsLowStock() && !p.LowStockAlertSent
}

// DisplaySKU returns the SKU or a placeholder for products without one.
func (p *Product) DisplaySKU() string {
	if p.SKU == "" {
		return "N/A"
	}
	return p.SKU
}
