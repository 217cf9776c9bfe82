package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/autoshop/internal/domain/models"
)

// NewProduct is the input for CreateProduct. Nil pointers take the shop defaults.
type NewProduct struct {
	BrandID    primitive.ObjectID
	ModelID    primitive.ObjectID
	VariantID  *primitive.ObjectID
	CategoryID primitive.ObjectID
	RangeID    *primitive.ObjectID
	VendorID   *primitive.ObjectID

	ProductName      string
	Color            string
	Finish           string
	SKU              string
	Barcode          string
	VendorPartNumber string

	OpeningStock  int
	ReorderLevel  *int
	MinStockLevel *int
	MaxStockLevel *int
	Unit          string

	PurchasePrice float64
	SellingPrice  float64
	MRP           float64
	GSTRate       *float64

	WarehouseLocation string
	RackNumber        string
	BinNumber         string
	Description       string
	Warranty          string
	Notes             string

	// PerformedBy is required when OpeningStock is positive.
	PerformedBy primitive.ObjectID
}

// ProductPatch changes descriptive, pricing and threshold fields. Stock
// quantity is only changed through the ledger.
type ProductPatch struct {
	ProductName   *string
	SKU           *string
	Barcode       *string
	ReorderLevel  *int
	MinStockLevel *int
	MaxStockLevel *int
	Unit          *string
	PurchasePrice *float64
	SellingPrice  *float64
	MRP           *float64
	GSTRate       *float64

	WarehouseLocation *string
	RackNumber        *string
	BinNumber         *string
	Description       *string
	Warranty          *string
	Notes             *string
	IsActive          *bool
}

// CreateProduct adds a product, copying the current parent names. A positive
// opening stock is recorded as an adjustment movement in the same write.
func (s *Service) CreateProduct(ctx context.Context, in NewProduct) (*models.Product, error) {
	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		return nil, invalid("product name must be provided")
	}
	if in.OpeningStock < 0 {
		return nil, invalid("opening stock must not be negative")
	}
	if in.PurchasePrice < 0 || in.SellingPrice < 0 || in.MRP < 0 {
		return nil, invalid("prices must not be negative")
	}

	p := &models.Product{
		ProductName:       name,
		Color:             in.Color,
		Finish:            in.Finish,
		SKU:               strings.TrimSpace(in.SKU),
		Barcode:           in.Barcode,
		VendorPartNumber:  in.VendorPartNumber,
		StockQty:          in.OpeningStock,
		ReorderLevel:      intOr(in.ReorderLevel, defaultReorderLevel),
		MinStockLevel:     intOr(in.MinStockLevel, defaultMinStockLevel),
		MaxStockLevel:     in.MaxStockLevel,
		Unit:              in.Unit,
		PurchasePrice:     in.PurchasePrice,
		SellingPrice:      in.SellingPrice,
		MRP:               in.MRP,
		GSTRate:           defaultGSTRate,
		WarehouseLocation: in.WarehouseLocation,
		RackNumber:        in.RackNumber,
		BinNumber:         in.BinNumber,
		Description:       in.Description,
		Warranty:          in.Warranty,
		Notes:             in.Notes,
		IsActive:          true,
	}
	if p.Unit == "" {
		p.Unit = defaultUnit
	}
	if in.GSTRate != nil {
		p.GSTRate = *in.GSTRate
	}
	if err := validateLevels(p); err != nil {
		return nil, err
	}

	if err := s.resolveParents(ctx, p, in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.RefreshStatus()

	var opening *models.StockMovement
	if in.OpeningStock > 0 {
		user, err := s.store.GetUser(ctx, in.PerformedBy)
		if err != nil {
			return nil, fmt.Errorf("resolve user: %w", err)
		}
		p.LastRestockDate = &now
		opening = &models.StockMovement{
			ProductName:     p.ProductName,
			SKU:             p.SKU,
			Type:            models.MovementAdjustment,
			QuantityBefore:  0,
			QuantityChange:  in.OpeningStock,
			QuantityAfter:   in.OpeningStock,
			ReferenceType:   models.ReferenceStockAdjustment,
			VendorID:        p.VendorID,
			VendorName:      p.VendorName,
			UnitPrice:       p.PurchasePrice,
			PerformedBy:     user.ID,
			PerformedByName: user.Name,
			PerformedByRole: user.Role,
			Notes:           "Opening stock",
			TransactionDate: now,
			CreatedAt:       now,
		}
		opening.TotalAmount = movementTotal(p.PurchasePrice, in.OpeningStock)
	}

	if err := s.store.CreateProduct(ctx, p, opening); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", p.ID.Hex()),
		zap.String("sku", p.SKU),
		zap.Int("opening_stock", p.StockQty))
	return p, nil
}

func (s *Service) resolveParents(ctx context.Context, p *models.Product, in NewProduct) error {
	brand, err := s.store.GetBrand(ctx, in.BrandID)
	if err != nil {
		return fmt.Errorf("resolve brand: %w", err)
	}
	p.BrandID, p.BrandName = brand.ID, brand.Name

	model, err := s.store.GetVehicleModel(ctx, in.ModelID)
	if err != nil {
		return fmt.Errorf("resolve model: %w", err)
	}
	if model.BrandID != brand.ID {
		return invalid("model %s does not belong to brand %s", model.Name, brand.Name)
	}
	p.ModelID, p.ModelName = model.ID, model.Name

	if in.VariantID != nil {
		variant, err := s.store.GetVariant(ctx, *in.VariantID)
		if err != nil {
			return fmt.Errorf("resolve variant: %w", err)
		}
		if variant.ModelID != model.ID {
			return invalid("variant %s does not belong to model %s", variant.Name, model.Name)
		}
		p.VariantID, p.VariantName = &variant.ID, string(variant.Name)
	}

	category, err := s.store.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}
	p.CategoryID, p.CategoryName = category.ID, category.Name

	if in.RangeID != nil {
		rg, err := s.store.GetRange(ctx, *in.RangeID)
		if err != nil {
			return fmt.Errorf("resolve range: %w", err)
		}
		p.RangeID, p.RangeName = &rg.ID, rg.Name
	}

	if in.VendorID != nil {
		vendor, err := s.store.GetVendor(ctx, *in.VendorID)
		if err != nil {
			return fmt.Errorf("resolve vendor: %w", err)
		}
		p.VendorID, p.VendorName = &vendor.ID, vendor.Name
	}
	return nil
}

// GetProduct looks a product up by id.
func (s *Service) GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// ListProducts lists products matching filter.
func (s *Service) ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	return s.store.ListProducts(ctx, filter)
}

// UpdateProductDetails applies patch and recomputes the status. Raising the
// reorder level never dispatches an alert; moving it below the current stock
// re-arms the latch the same way a restock does.
func (s *Service) UpdateProductDetails(ctx context.Context, id primitive.ObjectID, patch ProductPatch) (*models.Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	expected := p.Version

	if patch.ProductName != nil {
		name := strings.TrimSpace(*patch.ProductName)
		if name == "" {
			return nil, invalid("product name must not be empty")
		}
		p.ProductName = name
	}
	setString(&p.SKU, patch.SKU)
	setString(&p.Barcode, patch.Barcode)
	setString(&p.Unit, patch.Unit)
	setString(&p.WarehouseLocation, patch.WarehouseLocation)
	setString(&p.RackNumber, patch.RackNumber)
	setString(&p.BinNumber, patch.BinNumber)
	setString(&p.Description, patch.Description)
	setString(&p.Warranty, patch.Warranty)
	setString(&p.Notes, patch.Notes)
	if patch.ReorderLevel != nil {
		p.ReorderLevel = *patch.ReorderLevel
	}
	if patch.MinStockLevel != nil {
		p.MinStockLevel = *patch.MinStockLevel
	}
	if patch.MaxStockLevel != nil {
		p.MaxStockLevel = patch.MaxStockLevel
	}
	setFloat(&p.PurchasePrice, patch.PurchasePrice)
	setFloat(&p.SellingPrice, patch.SellingPrice)
	setFloat(&p.MRP, patch.MRP)
	setFloat(&p.GSTRate, patch.GSTRate)
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}

	if p.PurchasePrice < 0 || p.SellingPrice < 0 || p.MRP < 0 {
		return nil, invalid("prices must not be negative")
	}
	if err := validateLevels(p); err != nil {
		return nil, err
	}

	if p.StockQty > p.ReorderLevel {
		p.LowStockAlertSent = false
	}
	p.RefreshStatus()
	p.Version = expected + 1
	p.UpdatedAt = s.now().UTC()

	if err := s.store.SaveProduct(ctx, p, expected); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return p, nil
}

func validateLevels(p *models.Product) error {
	if p.ReorderLevel < 0 || p.MinStockLevel < 0 {
		return invalid("stock levels must not be negative")
	}
	if p.MaxStockLevel != nil && *p.MaxStockLevel < 0 {
		return invalid("max stock level must not be negative")
	}
	if p.GSTRate < 0 || p.GSTRate > 100 {
		return invalid("gst rate must be between 0 and 100")
	}
	return nil
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func movementTotal(unitPrice float64, qty int) float64 {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(qty))).Round(2).InexactFloat64()
}
