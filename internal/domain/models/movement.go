package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MovementType enumerates the kinds of stock-affecting events.
type MovementType string

const (
	MovementPurchase   MovementType = "purchase"
	MovementSale       MovementType = "sale"
	MovementReturn     MovementType = "return"
	MovementAdjustment MovementType = "adjustment"
	MovementDamage     MovementType = "damage"
	MovementTransfer   MovementType = "transfer"
	MovementRestock    MovementType = "restock"
)

// Valid reports whether t is one of the known movement types.
func (t MovementType) Valid() bool {
	switch t {
	case MovementPurchase, MovementSale, MovementReturn, MovementAdjustment,
		MovementDamage, MovementTransfer, MovementRestock:
		return true
	}
	return false
}

// IsInbound reports whether t is accepted by stock additions.
func (t MovementType) IsInbound() bool {
	switch t {
	case MovementPurchase, MovementReturn, MovementAdjustment, MovementRestock:
		return true
	}
	return false
}

// ReferenceType identifies the kind of transaction a movement originates from.
type ReferenceType string

const (
	ReferenceOrder           ReferenceType = "order"
	ReferenceServiceVisit    ReferenceType = "service_visit"
	ReferencePurchaseOrder   ReferenceType = "purchase_order"
	ReferenceReturn          ReferenceType = "return"
	ReferenceManual          ReferenceType = "manual"
	ReferenceStockAdjustment ReferenceType = "stock_adjustment"
)

// Valid reports whether r belongs to the closed set of reference types.
func (r ReferenceType) Valid() bool {
	switch r {
	case ReferenceOrder, ReferenceServiceVisit, ReferencePurchaseOrder,
		ReferenceReturn, ReferenceManual, ReferenceStockAdjustment:
		return true
	}
	return false
}

// StockMovement is an immutable record of one stock quantity change. Once
// appended it is never updated or deleted.
type StockMovement struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID   primitive.ObjectID `bson:"product_id" json:"productId"`
	ProductName string             `bson:"product_name" json:"productName"`
	SKU         string             `bson:"sku,omitempty" json:"sku,omitempty"`

	Type           MovementType `bson:"type" json:"type"`
	QuantityBefore int          `bson:"quantity_before" json:"quantityBefore"`
	QuantityChange int          `bson:"quantity_change" json:"quantityChange"`
	QuantityAfter  int          `bson:"quantity_after" json:"quantityAfter"`

	ReferenceType   ReferenceType `bson:"reference_type" json:"referenceType"`
	ReferenceID     string        `bson:"reference_id,omitempty" json:"referenceId,omitempty"`
	ReferenceNumber string        `bson:"reference_number,omitempty" json:"referenceNumber,omitempty"`

	VendorID     *primitive.ObjectID `bson:"vendor_id,omitempty" json:"vendorId,omitempty"`
	VendorName   string              `bson:"vendor_name,omitempty" json:"vendorName,omitempty"`
	CustomerID   string              `bson:"customer_id,omitempty" json:"customerId,omitempty"`
	CustomerName string              `bson:"customer_name,omitempty" json:"customerName,omitempty"`

	UnitPrice   float64 `bson:"unit_price" json:"unitPrice"`
	TotalAmount float64 `bson:"total_amount" json:"totalAmount"`

	PerformedBy     primitive.ObjectID `bson:"performed_by" json:"performedBy"`
	PerformedByName string             `bson:"performed_by_name,omitempty" json:"performedByName,omitempty"`
	PerformedByRole string             `bson:"performed_by_role,omitempty" json:"performedByRole,omitempty"`

	Notes         string     `bson:"notes,omitempty" json:"notes,omitempty"`
	InvoiceNumber string     `bson:"invoice_number,omitempty" json:"invoiceNumber,omitempty"`
	InvoiceDate   *time.Time `bson:"invoice_date,omitempty" json:"invoiceDate,omitempty"`

	TransactionDate time.Time `bson:"transaction_date" json:"transactionDate"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
}

// Consistent reports whether the quantity snapshot adds up.
func (m *StockMovement) Consistent() bool {
	return m.QuantityAfter == m.QuantityBefore+m.QuantityChange && m.QuantityAfter >= 0
}

// MovementFilter narrows movement history listings.
type MovementFilter struct {
	ProductID *primitive.ObjectID
	Type      MovementType
	From      *time.Time
	To        *time.Time
	Limit     int
}
