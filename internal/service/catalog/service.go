// Package catalog manages the brand → model → variant → category → range →
// product hierarchy, vendors and the staff directory.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/autoshop/internal/domain/models"
)

// ErrInvalidInput marks requests rejected before touching the store.
var ErrInvalidInput = errors.New("invalid input")

const (
	defaultReorderLevel  = 5
	defaultMinStockLevel = 5
	defaultUnit          = "piece"
	defaultGSTRate       = 18
)

// Store is the persistence used by the catalog.
type Store interface {
	CreateBrand(ctx context.Context, b *models.Brand) error
	GetBrand(ctx context.Context, id primitive.ObjectID) (*models.Brand, error)
	ListBrands(ctx context.Context) ([]models.Brand, error)

	CreateVehicleModel(ctx context.Context, m *models.VehicleModel) error
	GetVehicleModel(ctx context.Context, id primitive.ObjectID) (*models.VehicleModel, error)
	ListVehicleModels(ctx context.Context, brandID *primitive.ObjectID) ([]models.VehicleModel, error)

	CreateVariant(ctx context.Context, v *models.Variant) error
	GetVariant(ctx context.Context, id primitive.ObjectID) (*models.Variant, error)
	ListVariants(ctx context.Context, modelID *primitive.ObjectID) ([]models.Variant, error)

	CreateCategory(ctx context.Context, c *models.Category) error
	GetCategory(ctx context.Context, id primitive.ObjectID) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	CreateRange(ctx context.Context, r *models.Range) error
	GetRange(ctx context.Context, id primitive.ObjectID) (*models.Range, error)
	ListRanges(ctx context.Context) ([]models.Range, error)

	CreateVendor(ctx context.Context, v *models.Vendor) error
	GetVendor(ctx context.Context, id primitive.ObjectID) (*models.Vendor, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)

	CreateProduct(ctx context.Context, p *models.Product, opening *models.StockMovement) error
	GetProduct(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ListProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	SaveProduct(ctx context.Context, p *models.Product, expectedVersion int64) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Service exposes catalog use-cases.
type Service struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

// NewService wires a catalog service.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, now: time.Now, logger: logger}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func requireName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name must be provided")
	}
	return name, nil
}

// CreateBrand adds a brand.
func (s *Service) CreateBrand(ctx context.Context, name, description string) (*models.Brand, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	b := &models.Brand{Name: name, Description: description, IsActive: true, CreatedAt: now, UpdatedAt: now}
	if err := s.store.CreateBrand(ctx, b); err != nil {
		return nil, fmt.Errorf("create brand: %w", err)
	}
	return b, nil
}

// CreateVehicleModel adds a model under brandID, copying the brand name.
func (s *Service) CreateVehicleModel(ctx context.Context, brandID primitive.ObjectID, name, description string) (*models.VehicleModel, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	brand, err := s.store.GetBrand(ctx, brandID)
	if err != nil {
		return nil, fmt.Errorf("resolve brand: %w", err)
	}

	now := s.now().UTC()
	m := &models.VehicleModel{
		BrandID:     brand.ID,
		BrandName:   brand.Name,
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateVehicleModel(ctx, m); err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}
	return m, nil
}

// CreateVariant adds a trim under modelID, copying model and brand names.
func (s *Service) CreateVariant(ctx context.Context, modelID primitive.ObjectID, name models.VariantName, description string) (*models.Variant, error) {
	if !name.Valid() {
		return nil, invalid("variant name %q is not one of Base, Mid, Top, Custom, Standard", name)
	}
	model, err := s.store.GetVehicleModel(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("resolve model: %w", err)
	}

	now := s.now().UTC()
	v := &models.Variant{
		ModelID:     model.ID,
		ModelName:   model.Name,
		BrandID:     model.BrandID,
		BrandName:   model.BrandName,
		Name:        name,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateVariant(ctx, v); err != nil {
		return nil, fmt.Errorf("create variant: %w", err)
	}
	return v, nil
}

// CreateCategory adds a product category.
func (s *Service) CreateCategory(ctx context.Context, name, description string) (*models.Category, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c := &models.Category{Name: name, Description: description, IsActive: true, CreatedAt: now, UpdatedAt: now}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// CreateRange adds a product range.
func (s *Service) CreateRange(ctx context.Context, name, description string) (*models.Range, error) {
	name, err := requireName(name)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	r := &models.Range{Name: name, Description: description, IsActive: true, CreatedAt: now, UpdatedAt: now}
	if err := s.store.CreateRange(ctx, r); err != nil {
		return nil, fmt.Errorf("create range: %w", err)
	}
	return r, nil
}

// CreateVendor adds a supplier. Name and mobile number are mandatory.
func (s *Service) CreateVendor(ctx context.Context, v models.Vendor) (*models.Vendor, error) {
	name, err := requireName(v.Name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(v.MobileNumber) == "" {
		return nil, invalid("vendor mobile number must be provided")
	}
	if v.CreditLimit < 0 || v.OutstandingBalance < 0 {
		return nil, invalid("vendor balances must not be negative")
	}
	if v.Rating < 0 || v.Rating > 5 {
		return nil, invalid("vendor rating must be between 0 and 5")
	}

	now := s.now().UTC()
	v.ID = primitive.NilObjectID
	v.Name = name
	v.IsActive = true
	v.CreatedAt = now
	v.UpdatedAt = now
	if err := s.store.CreateVendor(ctx, &v); err != nil {
		return nil, fmt.Errorf("create vendor: %w", err)
	}
	return &v, nil
}

func (s *Service) ListBrands(ctx context.Context) ([]models.Brand, error) {
	return s.store.ListBrands(ctx)
}

func (s *Service) ListVehicleModels(ctx context.Context, brandID *primitive.ObjectID) ([]models.VehicleModel, error) {
	return s.store.ListVehicleModels(ctx, brandID)
}

func (s *Service) ListVariants(ctx context.Context, modelID *primitive.ObjectID) ([]models.Variant, error) {
	return s.store.ListVariants(ctx, modelID)
}

func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) ListRanges(ctx context.Context) ([]models.Range, error) {
	return s.store.ListRanges(ctx)
}

func (s *Service) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	return s.store.ListVendors(ctx)
}

// CreateUser adds a staff member to the directory.
func (s *Service) CreateUser(ctx context.Context, u models.User) (*models.User, error) {
	name, err := requireName(u.Name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(u.Role) == "" {
		return nil, invalid("role must be provided")
	}

	now := s.now().UTC()
	u.ID = primitive.NilObjectID
	u.Name = name
	u.MobileNumber = strings.TrimSpace(u.MobileNumber)
	u.IsActive = true
	u.CreatedAt = now
	u.UpdatedAt = now
	if err := s.store.CreateUser(ctx, &u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &u, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.store.ListUsers(ctx)
}
