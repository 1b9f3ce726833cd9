package service

import (
	"context"
	"fmt"

	"github.com/nnvstore/backend/internal/repo"
)

type BestOfferService struct {
	Repo *repo.GormRepo
}

func (s *BestOfferService) Get(ctx context.Context) ([]repo.BestOfferView, error) {
	return s.Repo.GetBestOffers(ctx)
}

// Update overwrites the four storefront slots. Ids are not checked against
// the catalog, a dangling id simply renders as an empty slot.
func (s *BestOfferService) Update(ctx context.Context, productIDs []*uint) ([]repo.BestOfferView, error) {
	if len(productIDs) > repo.BestOfferSlots {
		return nil, fmt.Errorf("at most %d best offers: %w", repo.BestOfferSlots, ErrValidation)
	}
	if err := s.Repo.UpdateBestOffers(ctx, productIDs); err != nil {
		return nil, err
	}
	return s.Repo.GetBestOffers(ctx)
}
