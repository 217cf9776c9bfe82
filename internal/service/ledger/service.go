// Package ledger is the single authority for changing product stock. Every
// change is committed together with exactly one movement record.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/autoshop/internal/config"
	"github.com/mamadbah2/autoshop/internal/domain/models"
	"github.com/mamadbah2/autoshop/internal/repository"
)

// ProductStore is the persistence the ledger needs.
type ProductStore interface {
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ApplyStockChange(ctx context.Context, p *models.Product, expectedVersion int64, m *models.StockMovement) error
}

// UserDirectory resolves the staff member performing a change.
type UserDirectory interface {
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// AlertEvaluator starts a low-stock alert episode when one is due. It updates
// p in place when the latch gets set.
type AlertEvaluator interface {
	Evaluate(ctx context.Context, p *models.Product) bool
}

// DeductRequest describes a sale or service consumption.
type DeductRequest struct {
	ProductID       primitive.ObjectID
	Quantity        int
	ReferenceType   models.ReferenceType
	ReferenceID     string
	ReferenceNumber string
	UnitPrice       float64
	PerformedBy     primitive.ObjectID
	CustomerID      string
	CustomerName    string
	Notes           string
}

// AddRequest describes stock coming into the shop.
type AddRequest struct {
	ProductID     primitive.ObjectID
	Quantity      int
	Type          models.MovementType
	UnitPrice     float64
	PerformedBy   primitive.ObjectID
	VendorID      *primitive.ObjectID
	VendorName    string
	InvoiceNumber string
	InvoiceDate   *time.Time
	Notes         string
}

// Change is the result of a committed stock mutation.
type Change struct {
	Product     *models.Product       `json:"product"`
	Movement    *models.StockMovement `json:"movement"`
	StockBefore int                   `json:"stockBefore"`
	StockAfter  int                   `json:"stockAfter"`
	AlertSent   bool                  `json:"alertSent"`
}

// Service applies stock mutations.
type Service struct {
	products    ProductStore
	users       UserDirectory
	alerts      AlertEvaluator
	timeout     time.Duration
	maxAttempts int
	now         func() time.Time
	logger      *zap.Logger
}

// NewService wires a ledger. alerts may be nil, in which case no alert is evaluated.
func NewService(products ProductStore, users UserDirectory, alerts AlertEvaluator, cfg config.LedgerConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Service{
		products:    products,
		users:       users,
		alerts:      alerts,
		timeout:     cfg.Timeout,
		maxAttempts: cfg.MaxAttempts,
		now:         time.Now,
		logger:      logger,
	}
}

// DeductStock removes quantity from a product and records a sale movement.
// Nothing is persisted when the product lacks stock.
func (s *Service) DeductStock(ctx context.Context, req DeductRequest) (*Change, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.UnitPrice < 0 {
		return nil, ErrInvalidPrice
	}
	if !req.ReferenceType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidReference, req.ReferenceType)
	}

	change, err := s.commit(ctx, req.ProductID, req.PerformedBy, func(p *models.Product, user *models.User, now time.Time) (*models.StockMovement, error) {
		if p.StockQty < req.Quantity {
			return nil, &InsufficientStockError{Available: p.StockQty, Required: req.Quantity}
		}

		before := p.StockQty
		p.StockQty -= req.Quantity
		p.LastSaleDate = &now

		m := newMovement(p, user, models.MovementSale, before, -req.Quantity, req.UnitPrice, now)
		m.ReferenceType = req.ReferenceType
		m.ReferenceID = req.ReferenceID
		m.ReferenceNumber = req.ReferenceNumber
		m.CustomerID = req.CustomerID
		m.CustomerName = req.CustomerName
		m.Notes = req.Notes
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock deducted",
		zap.String("product_id", req.ProductID.Hex()),
		zap.Int("quantity", req.Quantity),
		zap.Int("stock_after", change.StockAfter),
		zap.String("reference_type", string(req.ReferenceType)))

	if change.Product.NeedsLowStockAlert() && s.alerts != nil {
		change.AlertSent = s.evaluateAlert(ctx, change.Product)
	}
	return change, nil
}

// AddStock puts quantity back on the shelf. Crossing above the reorder level
// re-arms the low-stock alert.
func (s *Service) AddStock(ctx context.Context, req AddRequest) (*Change, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if req.UnitPrice < 0 {
		return nil, ErrInvalidPrice
	}
	if !req.Type.IsInbound() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMovementType, req.Type)
	}

	change, err := s.commit(ctx, req.ProductID, req.PerformedBy, func(p *models.Product, user *models.User, now time.Time) (*models.StockMovement, error) {
		before := p.StockQty
		p.StockQty += req.Quantity
		p.LastRestockDate = &now
		if p.StockQty > p.ReorderLevel {
			p.LowStockAlertSent = false
		}

		m := newMovement(p, user, req.Type, before, req.Quantity, req.UnitPrice, now)
		m.ReferenceType = models.ReferencePurchaseOrder
		m.VendorID = req.VendorID
		m.VendorName = req.VendorName
		m.InvoiceNumber = req.InvoiceNumber
		m.InvoiceDate = req.InvoiceDate
		m.Notes = req.Notes
		if m.VendorID == nil {
			m.VendorID = p.VendorID
		}
		if m.VendorName == "" {
			m.VendorName = p.VendorName
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock added",
		zap.String("product_id", req.ProductID.Hex()),
		zap.Int("quantity", req.Quantity),
		zap.Int("stock_after", change.StockAfter),
		zap.String("type", string(req.Type)))

	return change, nil
}

type mutation func(p *models.Product, user *models.User, now time.Time) (*models.StockMovement, error)

// commit runs one read-modify-write cycle, retrying when another writer
// bumped the product version in between.
func (s *Service) commit(ctx context.Context, productID, userID primitive.ObjectID, mutate mutation) (*Change, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID.Hex())
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		p, err := s.products.GetProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID.Hex())
			}
			return nil, fmt.Errorf("load product: %w", err)
		}

		now := s.now().UTC()
		before := p.StockQty
		expected := p.Version

		m, err := mutate(p, user, now)
		if err != nil {
			return nil, err
		}
		p.RefreshStatus()
		p.Version = expected + 1
		p.UpdatedAt = now

		err = s.products.ApplyStockChange(ctx, p, expected, m)
		if err == nil {
			return &Change{Product: p, Movement: m, StockBefore: before, StockAfter: p.StockQty}, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID.Hex())
			}
			return nil, fmt.Errorf("apply stock change: %w", err)
		}

		s.logger.Debug("version conflict, retrying",
			zap.String("product_id", productID.Hex()),
			zap.Int("attempt", attempt))
	}

	return nil, fmt.Errorf("%w: gave up after %d attempts", ErrConcurrentUpdate, s.maxAttempts)
}

// evaluateAlert runs after the mutation committed. Delivery problems must not
// surface to the caller, so it works on a context detached from the request.
func (s *Service) evaluateAlert(ctx context.Context, p *models.Product) bool {
	return s.alerts.Evaluate(context.WithoutCancel(ctx), p)
}

func newMovement(p *models.Product, user *models.User, mt models.MovementType, before, change int, unitPrice float64, now time.Time) *models.StockMovement {
	total := decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(abs(change)))).Round(2)

	return &models.StockMovement{
		ProductID:       p.ID,
		ProductName:     p.ProductName,
		SKU:             p.SKU,
		Type:            mt,
		QuantityBefore:  before,
		QuantityChange:  change,
		QuantityAfter:   before + change,
		UnitPrice:       unitPrice,
		TotalAmount:     total.InexactFloat64(),
		PerformedBy:     user.ID,
		PerformedByName: user.Name,
		PerformedByRole: user.Role,
		TransactionDate: now,
		CreatedAt:       now,
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
