package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nnvstore/backend/internal/models"
)

// CartView is a cart row joined with live product data, so price and
// availability always reflect the current catalog.
type CartView struct {
	ProductID     uint      `json:"id"`
	Quantity      uint      `json:"quantity"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Model         string    `json:"model"`
	Price         float64   `json:"price"`
	Category      string    `json:"category"`
	Color         string    `json:"color"`
	Memory        string    `json:"memory"`
	StockQuantity uint      `json:"stock_quantity"`
	Image         string    `json:"image,omitempty"`
	AddedAt       time.Time `json:"added_at"`
}

type SyncItem struct {
	ProductID uint `json:"id"`
	Quantity  uint `json:"quantity"`
}

func (r *GormRepo) GetCartView(ctx context.Context, userID uint) ([]CartView, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []CartView{}, nil
	}

	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	var products []models.Product
	if err := r.DB.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, sort_order ASC")
		}).
		Where("id IN ?", ids).
		Find(&products).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	view := make([]CartView, 0, len(items))
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		v := CartView{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			Name:          p.Name(),
			Brand:         p.Brand,
			Model:         p.Model,
			Price:         p.Price,
			Category:      p.Category,
			Color:         p.Color,
			Memory:        p.Memory,
			StockQuantity: p.StockQuantity,
			AddedAt:       it.CreatedAt,
		}
		if len(p.Images) > 0 {
			v.Image = p.Images[0].ImageURL
		}
		view = append(view, v)
	}
	return view, nil
}

// AddToCart merges quantity into the user's cart row subject to the stock
// ceiling. The accumulate path is a single conditional UPDATE so two
// concurrent adds cannot push the row past the ceiling, and the insert is an
// ON CONFLICT DO NOTHING so two concurrent first adds cannot collide on the
// unique index.
func (r *GormRepo) AddToCart(ctx context.Context, userID, productID, quantity uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		accumulate := func() (bool, error) {
			res := tx.Model(&models.CartItem{}).
				Where("user_id = ? AND product_id = ?", userID, productID).
				Where("quantity + ? <= ?", quantity, product.StockQuantity).
				Update("quantity", gorm.Expr("quantity + ?", quantity))
			return res.RowsAffected > 0, res.Error
		}

		if merged, err := accumulate(); err != nil || merged {
			return err
		}
		if quantity > product.StockQuantity {
			return ErrInsufficientStock
		}

		item := models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).Create(&item)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		// A row appeared since the first accumulate: either it was there all
		// along with the ceiling blocking, or a concurrent first add won the
		// insert. Merge into it; a second miss is a real ceiling hit.
		if merged, err := accumulate(); err != nil || merged {
			return err
		}
		return ErrInsufficientStock
	})
}

// UpdateCartItem sets the row to an absolute quantity. Zero removes the row.
func (r *GormRepo) UpdateCartItem(ctx context.Context, userID, productID, quantity uint) error {
	if quantity == 0 {
		return r.RemoveFromCart(ctx, userID, productID)
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if quantity > product.StockQuantity {
			return ErrInsufficientStock
		}
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", userID, productID).
			Update("quantity", quantity)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, productID uint) error {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// SyncCart merges a pre-login client cart into the persisted one in a single
// transaction. Per product the persisted quantity becomes
// min(persisted + incoming, stock); unknown product ids are dropped.
func (r *GormRepo) SyncCart(ctx context.Context, userID uint, incoming []SyncItem) error {
	if len(incoming) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, in := range incoming {
			if in.Quantity == 0 {
				continue
			}
			var product models.Product
			if err := tx.First(&product, in.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}

			var item models.CartItem
			err := tx.Where("user_id = ? AND product_id = ?", userID, in.ProductID).First(&item).Error
			switch {
			case err == nil:
				merged := item.Quantity + in.Quantity
				if merged > product.StockQuantity {
					merged = product.StockQuantity
				}
				if merged == 0 {
					continue
				}
				if err := tx.Model(&item).Update("quantity", merged).Error; err != nil {
					return err
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				merged := in.Quantity
				if merged > product.StockQuantity {
					merged = product.StockQuantity
				}
				if merged == 0 {
					continue
				}
				item = models.CartItem{UserID: userID, ProductID: in.ProductID, Quantity: merged}
				if err := tx.Create(&item).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}
		return nil
	})
}
