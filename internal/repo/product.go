package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nnvstore/backend/internal/models"
)

// ProductFilters are the catalog's optional equality filters. Empty fields
// are ignored.
type ProductFilters struct {
	Category string
	Brand    string
	Model    string
	Color    string
	Memory   string
}

func applyFilters(q *gorm.DB, f ProductFilters) *gorm.DB {
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Brand != "" {
		q = q.Where("brand = ?", f.Brand)
	}
	if f.Model != "" {
		q = q.Where("model = ?", f.Model)
	}
	if f.Color != "" {
		q = q.Where("color = ?", f.Color)
	}
	if f.Memory != "" {
		q = q.Where("memory = ?", f.Memory)
	}
	return q
}

func (r *GormRepo) ListProducts(ctx context.Context, offset, limit int, f ProductFilters) ([]models.Product, int64, error) {
	base := applyFilters(
		r.DB.WithContext(ctx).Model(&models.Product{}).Where("stock_quantity > 0"), f)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []models.Product
	if err := base.
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC")
		}).
		Order("id ASC").Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// GetProduct returns only in-stock products, the storefront treats sold-out
// items as absent.
func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.DB.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC")
		}).
		Where("id = ? AND stock_quantity > 0", id).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) GetProductAny(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Preload("Images").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FilterOptions lists the distinct values still available for each filter
// field given the filters already applied to the other fields.
func (r *GormRepo) FilterOptions(ctx context.Context, applied ProductFilters) (map[string][]string, error) {
	fields := []struct {
		name  string
		strip func(ProductFilters) ProductFilters
	}{
		{"category", func(f ProductFilters) ProductFilters { f.Category = ""; return f }},
		{"brand", func(f ProductFilters) ProductFilters { f.Brand = ""; return f }},
		{"model", func(f ProductFilters) ProductFilters { f.Model = ""; return f }},
		{"color", func(f ProductFilters) ProductFilters { f.Color = ""; return f }},
		{"memory", func(f ProductFilters) ProductFilters { f.Memory = ""; return f }},
	}

	out := make(map[string][]string, len(fields))
	for _, fld := range fields {
		q := applyFilters(
			r.DB.WithContext(ctx).Model(&models.Product{}).Where("stock_quantity > 0"),
			fld.strip(applied))
		var values []string
		if err := q.Distinct(fld.name).
			Where(fld.name+" <> ''").
			Order(fld.name + " ASC").
			Pluck(fld.name, &values).Error; err != nil {
			return nil, err
		}
		out[fld.name] = values
	}
	return out, nil
}

// CreateProduct writes the product and its images in one transaction.
func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(p).Error
	})
}

// UpdateProduct replaces the product fields and, when images are given, the
// whole image set.
func (r *GormRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Product
		if err := tx.First(&existing, p.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		updates := map[string]any{
			"brand":          p.Brand,
			"model":          p.Model,
			"category":       p.Category,
			"color":          p.Color,
			"memory":         p.Memory,
			"description":    p.Description,
			"price":          p.Price,
			"stock_quantity": p.StockQuantity,
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
			return err
		}
		if p.Images != nil {
			if err := tx.Where("product_id = ?", p.ID).Delete(&models.ProductImage{}).Error; err != nil {
				return err
			}
			for i := range p.Images {
				p.Images[i].ID = 0
				p.Images[i].ProductID = p.ID
			}
			if len(p.Images) > 0 {
				if err := tx.Create(&p.Images).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
}
