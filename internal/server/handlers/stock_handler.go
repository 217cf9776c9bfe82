package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/autoshop/internal/domain/models"
	"github.com/mamadbah2/autoshop/internal/service/ledger"
)

// StockHandler exposes the stock ledger over HTTP.
type StockHandler struct {
	ledger *ledger.Service
	logger *zap.Logger
}

// NewStockHandler constructs the HTTP handler adapter.
func NewStockHandler(svc *ledger.Service, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{ledger: svc, logger: logger}
}

type deductStockRequest struct {
	ProductID       string  `json:"productId" binding:"required"`
	Quantity        int     `json:"quantity"`
	ReferenceType   string  `json:"referenceType" binding:"required"`
	ReferenceID     string  `json:"referenceId"`
	ReferenceNumber string  `json:"referenceNumber"`
	UnitPrice       float64 `json:"unitPrice"`
	PerformedBy     string  `json:"performedBy" binding:"required"`
	CustomerID      string  `json:"customerId"`
	CustomerName    string  `json:"customerName"`
	Notes           string  `json:"notes"`
}

type addStockRequest struct {
	ProductID     string     `json:"productId" binding:"required"`
	Quantity      int        `json:"quantity"`
	Type          string     `json:"type" binding:"required"`
	UnitPrice     float64    `json:"unitPrice"`
	PerformedBy   string     `json:"performedBy" binding:"required"`
	VendorID      string     `json:"vendorId"`
	VendorName    string     `json:"vendorName"`
	InvoiceNumber string     `json:"invoiceNumber"`
	InvoiceDate   *time.Time `json:"invoiceDate"`
	Notes         string     `json:"notes"`
}

// Deduct records a sale or service consumption.
func (h *StockHandler) Deduct(c *gin.Context) {
	var req deductStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reject(c, "invalid request body", err)
		return
	}

	productID, performedBy, ok := h.ids(c, req.ProductID, req.PerformedBy)
	if !ok {
		return
	}

	change, err := h.ledger.DeductStock(c.Request.Context(), ledger.DeductRequest{
		ProductID:       productID,
		Quantity:        req.Quantity,
		ReferenceType:   models.ReferenceType(req.ReferenceType),
		ReferenceID:     req.ReferenceID,
		ReferenceNumber: req.ReferenceNumber,
		UnitPrice:       req.UnitPrice,
		PerformedBy:     performedBy,
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		Notes:           req.Notes,
	})
	h.respond(c, change, err, "Stock deducted successfully")
}

// Add records stock coming in.
func (h *StockHandler) Add(c *gin.Context) {
	var req addStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.reject(c, "invalid request body", err)
		return
	}

	productID, performedBy, ok := h.ids(c, req.ProductID, req.PerformedBy)
	if !ok {
		return
	}
	vendorID, err := optionalObjectID(req.VendorID)
	if err != nil {
		h.reject(c, "invalid vendorId", err)
		return
	}

	change, err := h.ledger.AddStock(c.Request.Context(), ledger.AddRequest{
		ProductID:     productID,
		Quantity:      req.Quantity,
		Type:          models.MovementType(req.Type),
		UnitPrice:     req.UnitPrice,
		PerformedBy:   performedBy,
		VendorID:      vendorID,
		VendorName:    req.VendorName,
		InvoiceNumber: req.InvoiceNumber,
		InvoiceDate:   req.InvoiceDate,
		Notes:         req.Notes,
	})
	h.respond(c, change, err, "Stock added successfully")
}

func (h *StockHandler) ids(c *gin.Context, product, user string) (primitive.ObjectID, primitive.ObjectID, bool) {
	productID, err := primitive.ObjectIDFromHex(product)
	if err != nil {
		h.reject(c, "invalid productId", err)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	performedBy, err := primitive.ObjectIDFromHex(user)
	if err != nil {
		h.reject(c, "invalid performedBy", err)
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return productID, performedBy, true
}

func (h *StockHandler) reject(c *gin.Context, msg string, err error) {
	h.logger.Warn(msg, zap.Error(err))
	c.JSON(http.StatusBadRequest, ledger.Result{Success: false, Message: msg})
}

func (h *StockHandler) respond(c *gin.Context, change *ledger.Change, err error, successMessage string) {
	result := ledger.Outcome(change, err, successMessage)
	if err == nil {
		c.JSON(http.StatusOK, result)
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("stock operation failed", zap.Error(err))
	} else {
		h.logger.Warn("stock operation rejected", zap.Int("status", status), zap.Error(err))
	}
	c.JSON(status, result)
}
