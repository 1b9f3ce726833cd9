package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nnvstore/backend/internal/models"
)

const BestOfferSlots = 4

// BestOfferView is a slot joined with its product, Product is nil when the
// configured id no longer resolves.
type BestOfferView struct {
	Position  int             `json:"position"`
	ProductID *uint           `json:"configured_id"`
	Product   *models.Product `json:"product"`
}

func (r *GormRepo) GetBestOffers(ctx context.Context) ([]BestOfferView, error) {
	var slots []models.BestOffer
	if err := r.DB.WithContext(ctx).Order("position ASC").Find(&slots).Error; err != nil {
		return nil, err
	}

	out := make([]BestOfferView, 0, BestOfferSlots)
	for _, s := range slots {
		v := BestOfferView{Position: s.Position, ProductID: s.ProductID}
		if s.ProductID != nil {
			var p models.Product
			err := r.DB.WithContext(ctx).
				Preload("Images", func(db *gorm.DB) *gorm.DB {
					return db.Order("is_primary DESC, sort_order ASC")
				}).
				First(&p, *s.ProductID).Error
			if err == nil {
				v.Product = &p
			} else if err != gorm.ErrRecordNotFound {
				return nil, err
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// UpdateBestOffers overwrites the four slots in order. Missing trailing ids
// clear their slots.
func (r *GormRepo) UpdateBestOffers(ctx context.Context, productIDs []*uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := 0; i < BestOfferSlots; i++ {
			var id *uint
			if i < len(productIDs) {
				id = productIDs[i]
			}
			slot := models.BestOffer{Position: i + 1, ProductID: id}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "position"}},
				DoUpdates: clause.AssignmentColumns([]string{"product_id"}),
			}).Create(&slot).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
