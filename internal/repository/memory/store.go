// Package memory is a process-local implementation of the inventory store.
// It backs STORAGE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/autoshop/internal/domain/models"
	"github.com/mamadbah2/autoshop/internal/repository"
)

// Store keeps every collection in maps guarded by one mutex, so a stock
// change and its movement are applied as a unit.
type Store struct {
	mu sync.RWMutex

	products      map[primitive.ObjectID]models.Product
	movements     []models.StockMovement
	brands        map[primitive.ObjectID]models.Brand
	vehicleModels map[primitive.ObjectID]models.VehicleModel
	variants      map[primitive.ObjectID]models.Variant
	categories    map[primitive.ObjectID]models.Category
	ranges        map[primitive.ObjectID]models.Range
	vendors       map[primitive.ObjectID]models.Vendor
	users         map[primitive.ObjectID]models.User
	notifications []models.Notification
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		products:      make(map[primitive.ObjectID]models.Product),
		brands:        make(map[primitive.ObjectID]models.Brand),
		vehicleModels: make(map[primitive.ObjectID]models.VehicleModel),
		variants:      make(map[primitive.ObjectID]models.Variant),
		categories:    make(map[primitive.ObjectID]models.Category),
		ranges:        make(map[primitive.ObjectID]models.Range),
		vendors:       make(map[primitive.ObjectID]models.Vendor),
		users:         make(map[primitive.ObjectID]models.User),
	}
}

// Close is a no-op kept for parity with the MongoDB repository.
func (s *Store) Close(context.Context) error { return nil }

// CreateProduct inserts a product and, when opening is non-nil, its opening
// stock movement.
func (s *Store) CreateProduct(_ context.Context, p *models.Product, opening *models.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkSKULocked(p); err != nil {
		return err
	}

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	s.products[p.ID] = *p

	if opening != nil {
		opening.ProductID = p.ID
		s.appendMovementLocked(opening)
	}
	return nil
}

// GetProduct returns a copy of the stored product.
func (s *Store) GetProduct(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id.Hex(), repository.ErrNotFound)
	}
	return &p, nil
}

// ListProducts returns products matching filter ordered by name.
func (s *Store) ListProducts(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.ActiveOnly && !p.IsActive {
			continue
		}
		if filter.BrandID != nil && p.BrandID != *filter.BrandID {
			continue
		}
		if filter.CategoryID != nil && p.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out, nil
}

// SaveProduct replaces the product if its stored version still equals expectedVersion.
func (s *Store) SaveProduct(_ context.Context, p *models.Product, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveProductLocked(p, expectedVersion)
}

// ApplyStockChange saves the product and appends the movement as one unit.
func (s *Store) ApplyStockChange(_ context.Context, p *models.Product, expectedVersion int64, m *models.StockMovement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveProductLocked(p, expectedVersion); err != nil {
		return err
	}
	s.appendMovementLocked(m)
	return nil
}

func (s *Store) saveProductLocked(p *models.Product, expectedVersion int64) error {
	current, ok := s.products[p.ID]
	if !ok {
		return fmt.Errorf("product %s: %w", p.ID.Hex(), repository.ErrNotFound)
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("product %s at version %d: %w", p.ID.Hex(), expectedVersion, repository.ErrVersionConflict)
	}
	if err := s.checkSKULocked(p); err != nil {
		return err
	}
	s.products[p.ID] = *p
	return nil
}

// checkSKULocked rejects a SKU held by another product. Empty SKUs never clash.
func (s *Store) checkSKULocked(p *models.Product) error {
	if p.SKU == "" {
		return nil
	}
	for id, existing := range s.products {
		if id != p.ID && existing.SKU == p.SKU {
			return fmt.Errorf("sku %s: %w", p.SKU, repository.ErrDuplicate)
		}
	}
	return nil
}

func (s *Store) appendMovementLocked(m *models.StockMovement) {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	s.movements = append(s.movements, *m)
}

// FindLowStock lists active products at or below their reorder level, lowest
// stock first, with parent names taken from the current catalog records.
func (s *Store) FindLowStock(_ context.Context) ([]models.LowStockItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.LowStockItem
	for _, p := range s.products {
		if !p.IsActive || !p.IsLowStock() {
			continue
		}

		item := models.LowStockItem{
			Product:      p,
			BrandName:    p.BrandName,
			ModelName:    p.ModelName,
			VariantName:  p.VariantName,
			CategoryName: p.CategoryName,
			VendorName:   p.VendorName,
		}
		if b, ok := s.brands[p.BrandID]; ok {
			item.BrandName = b.Name
		}
		if m, ok := s.vehicleModels[p.ModelID]; ok {
			item.ModelName = m.Name
		}
		if p.VariantID != nil {
			if v, ok := s.variants[*p.VariantID]; ok {
				item.VariantName = string(v.Name)
			}
		}
		if c, ok := s.categories[p.CategoryID]; ok {
			item.CategoryName = c.Name
		}
		if p.VendorID != nil {
			if v, ok := s.vendors[*p.VendorID]; ok {
				item.VendorName = v.Name
				item.VendorMobile = v.MobileNumber
			}
		}
		out = append(out, item)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Product.StockQty != out[j].Product.StockQty {
			return out[i].Product.StockQty < out[j].Product.StockQty
		}
		return out[i].Product.ProductName < out[j].Product.ProductName
	})
	return out, nil
}

// ListMovements returns movements matching filter, newest first.
func (s *Store) ListMovements(_ context.Context, filter models.MovementFilter) ([]models.StockMovement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.StockMovement
	for i := len(s.movements) - 1; i >= 0; i-- {
		m := s.movements[i]
		if filter.ProductID != nil && m.ProductID != *filter.ProductID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		if filter.From != nil && m.TransactionDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.TransactionDate.After(*filter.To) {
			continue
		}
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].TransactionDate.After(out[j].TransactionDate) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type summaryKey struct {
	productID primitive.ObjectID
	mtype     models.MovementType
}

// SummarizeMovements groups movements inside [from, to] by product and type.
// Each group carries the product name of its latest movement.
func (s *Store) SummarizeMovements(_ context.Context, from, to time.Time) ([]models.MovementSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[summaryKey]decimal.Decimal)
	latest := make(map[summaryKey]time.Time)
	groups := make(map[summaryKey]*models.MovementSummary)
	for _, m := range s.movements {
		if m.TransactionDate.Before(from) || m.TransactionDate.After(to) {
			continue
		}
		key := summaryKey{productID: m.ProductID, mtype: m.Type}
		g, ok := groups[key]
		if !ok {
			g = &models.MovementSummary{ProductID: m.ProductID, Type: m.Type}
			groups[key] = g
		}
		if !ok || !m.TransactionDate.Before(latest[key]) {
			g.ProductName = m.ProductName
			latest[key] = m.TransactionDate
		}
		g.TotalQuantity += m.QuantityChange
		g.Count++
		totals[key] = totals[key].Add(decimal.NewFromFloat(m.TotalAmount))
	}

	out := make([]models.MovementSummary, 0, len(groups))
	for key, g := range groups {
		g.TotalAmount = totals[key].Round(2).InexactFloat64()
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductName != out[j].ProductName {
			return out[i].ProductName < out[j].ProductName
		}
		return out[i].Type < out[j].Type
	})
	return out, nil
}

// CreateUser inserts a staff member.
func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	s.users[u.ID] = *u
	return nil
}

// GetUser looks a user up by id.
func (s *Store) GetUser(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), repository.ErrNotFound)
	}
	return &u, nil
}

// ListUsers returns every user ordered by name.
func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByName(s.users, func(u models.User) string { return u.Name }), nil
}

// FindAlertRecipients returns active users holding one of roles with a mobile number.
func (s *Store) FindAlertRecipients(_ context.Context, roles []string) ([]models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Contact
	for _, u := range sortedByName(s.users, func(u models.User) string { return u.Name }) {
		if !u.IsActive || strings.TrimSpace(u.MobileNumber) == "" || !containsRole(roles, u.Role) {
			continue
		}
		out = append(out, models.Contact{Name: u.Name, Mobile: u.MobileNumber, Email: u.Email})
	}
	return out, nil
}

// SaveNotification appends a delivery log entry.
func (s *Store) SaveNotification(_ context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	s.notifications = append(s.notifications, *n)
	return nil
}

// ListNotifications returns the most recent log entries first.
func (s *Store) ListNotifications(_ context.Context, limit int) ([]models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Notification, 0, len(s.notifications))
	for i := len(s.notifications) - 1; i >= 0; i-- {
		out = append(out, s.notifications[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func containsRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func sortedByName[T any](m map[primitive.ObjectID]T, name func(T) string) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return name(out[i]) < name(out[j]) })
	return out
}
