package memory

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mamadbah2/autoshop/internal/domain/models"
	"github.com/mamadbah2/autoshop/internal/repository"
)

func insertUnique[T any](m map[primitive.ObjectID]T, id *primitive.ObjectID, v *T, clash func(T) bool, what string) error {
	for _, existing := range m {
		if clash(existing) {
			return fmt.Errorf("%s: %w", what, repository.ErrDuplicate)
		}
	}
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	m[*id] = *v
	return nil
}

func lookup[T any](m map[primitive.ObjectID]T, id primitive.ObjectID, what string) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", what, id.Hex(), repository.ErrNotFound)
	}
	return &v, nil
}

func sameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// CreateBrand inserts a brand; names are unique.
func (s *Store) CreateBrand(_ context.Context, b *models.Brand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertUnique(s.brands, &b.ID, b, func(e models.Brand) bool { return sameName(e.Name, b.Name) }, "brand "+b.Name)
}

// GetBrand looks a brand up by id.
func (s *Store) GetBrand(_ context.Context, id primitive.ObjectID) (*models.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(s.brands, id, "brand")
}

// ListBrands returns all brands ordered by name.
func (s *Store) ListBrands(_ context.Context) ([]models.Brand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByName(s.brands, func(b models.Brand) string { return b.Name }), nil
}

// CreateVehicleModel inserts a model; names are unique per brand.
func (s *Store) CreateVehicleModel(_ context.Context, m *models.VehicleModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertUnique(s.vehicleModels, &m.ID, m, func(e models.VehicleModel) bool {
		return e.BrandID == m.BrandID && sameName(e.Name, m.Name)
	}, "model "+m.Name)
}

// GetVehicleModel looks a model up by id.
func (s *Store) GetVehicleModel(_ context.Context, id primitive.ObjectID) (*models.VehicleModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(s.vehicleModels, id, "model")
}

// ListVehicleModels returns models, optionally restricted to one brand.
func (s *Store) ListVehicleModels(_ context.Context, brandID *primitive.ObjectID) ([]models.VehicleModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := sortedByName(s.vehicleModels, func(m models.VehicleModel) string { return m.Name })
	if brandID == nil {
		return all, nil
	}
	out := all[:0]
	for _, m := range all {
		if m.BrandID == *brandID {
			out = append(out, m)
		}
	}
	return out, nil
}

// CreateVariant inserts a variant; names are unique per model.
func (s *Store) CreateVariant(_ context.Context, v *models.Variant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertUnique(s.variants, &v.ID, v, func(e models.Variant) bool {
		return e.ModelID == v.ModelID && e.Name == v.Name
	}, "variant "+string(v.Name))
}

// GetVariant looks a variant up by id.
func (s *Store) GetVariant(_ context.Context, id primitive.ObjectID) (*models.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(s.variants, id, "variant")
}

// ListVariants returns variants, optionally restricted to one model.
func (s *Store) ListVariants(_ context.Context, modelID *primitive.ObjectID) ([]models.Variant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := sortedByName(s.variants, func(v models.Variant) string { return v.ModelName + "/" + string(v.Name) })
	if modelID == nil {
		return all, nil
	}
	out := all[:0]
	for _, v := range all {
		if v.ModelID == *modelID {
			out = append(out, v)
		}
	}
	return out, nil
}

// CreateCategory inserts a category; names are unique.
func (s *Store) CreateCategory(_ context.Context, c *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertUnique(s.categories, &c.ID, c, func(e models.Category) bool { return sameName(e.Name, c.Name) }, "category "+c.Name)
}

// GetCategory looks a category up by id.
func (s *Store) GetCategory(_ context.Context, id primitive.ObjectID) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(s.categories, id, "category")
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(_ context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByName(s.categories, func(c models.Category) string { return c.Name }), nil
}

// CreateRange inserts a product range; names are unique.
func (s *Store) CreateRange(_ context.Context, r *models.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertUnique(s.ranges, &r.ID, r, func(e models.Range) bool { return sameName(e.Name, r.Name) }, "range "+r.Name)
}

// GetRange looks a range up by id.
func (s *Store) GetRange(_ context.Context, id primitive.ObjectID) (*models.Range, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(s.ranges, id, "range")
}

// ListRanges returns all ranges ordered by name.
func (s *Store) ListRanges(_ context.Context) ([]models.Range, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByName(s.ranges, func(r models.Range) string { return r.Name }), nil
}

// CreateVendor inserts a vendor.
func (s *Store) CreateVendor(_ context.Context, v *models.Vendor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertUnique(s.vendors, &v.ID, v, func(models.Vendor) bool { return false }, "vendor "+v.Name)
}

// GetVendor looks a vendor up by id.
func (s *Store) GetVendor(_ context.Context, id primitive.ObjectID) (*models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lookup(s.vendors, id, "vendor")
}

// ListVendors returns all vendors ordered by name.
func (s *Store) ListVendors(_ context.Context) ([]models.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedByName(s.vendors, func(v models.Vendor) string { return v.Name }), nil
}
