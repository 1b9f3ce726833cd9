package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nnvstore/backend/internal/cache"
	"github.com/nnvstore/backend/internal/kv"
	"github.com/nnvstore/backend/internal/logging"
	"github.com/nnvstore/backend/internal/mykafka"
	"github.com/nnvstore/backend/internal/repo"
)

// How long a sync payload is remembered for retry dedup.
const syncDedupTTL = 10 * time.Minute

type CartService struct {
	Repo     *repo.GormRepo
	Cache    *cache.Cache
	Store    kv.Store
	Producer *mykafka.Producer
}

func (s *CartService) GetCart(ctx context.Context, userID uint) ([]repo.CartView, error) {
	var cached []repo.CartView
	if err := s.Cache.GetCart(ctx, userID, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		logging.FromContext(ctx).Error("cart cache read", "error", err)
	}

	view, err := s.Repo.GetCartView(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetCart(ctx, userID, view); err != nil {
		logging.FromContext(ctx).Error("cart cache write", "error", err)
	}
	return view, nil
}

// invalidate drops the cache entry before the mutation returns, so the next
// read within the TTL cannot be stale.
func (s *CartService) invalidate(ctx context.Context, userID uint) {
	if err := s.Cache.InvalidateCart(ctx, userID); err != nil {
		logging.FromContext(ctx).Error("cart cache invalidate", "error", err)
	}
}

func (s *CartService) AddItem(ctx context.Context, userID, productID, quantity uint) ([]repo.CartView, error) {
	if productID == 0 {
		return nil, fmt.Errorf("product_id required: %w", ErrValidation)
	}
	if quantity == 0 {
		quantity = 1
	}
	if err := s.Repo.AddToCart(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)

	publish(ctx, s.Producer, mykafka.TopicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":       "cart_item_added",
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})
	return s.GetCart(ctx, userID)
}

func (s *CartService) UpdateItem(ctx context.Context, userID, productID, quantity uint) ([]repo.CartView, error) {
	if productID == 0 {
		return nil, fmt.Errorf("product_id required: %w", ErrValidation)
	}
	if err := s.Repo.UpdateCartItem(ctx, userID, productID, quantity); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)

	publish(ctx, s.Producer, mykafka.TopicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":       "cart_item_updated",
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})
	return s.GetCart(ctx, userID)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID uint) ([]repo.CartView, error) {
	if err := s.Repo.RemoveFromCart(ctx, userID, productID); err != nil {
		return nil, err
	}
	s.invalidate(ctx, userID)

	publish(ctx, s.Producer, mykafka.TopicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":       "cart_item_removed",
		"user_id":    userID,
		"product_id": productID,
	})
	return s.GetCart(ctx, userID)
}

func (s *CartService) ClearCart(ctx context.Context, userID uint) error {
	if err := s.Repo.ClearCart(ctx, userID); err != nil {
		return err
	}
	s.invalidate(ctx, userID)

	publish(ctx, s.Producer, mykafka.TopicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":    "cart_cleared",
		"user_id": userID,
	})
	return nil
}

func syncDedupKey(userID uint, items []repo.SyncItem) string {
	payload, _ := json.Marshal(items)
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("cart_sync:%d:%s", userID, hex.EncodeToString(sum[:]))
}

// SyncCart merges a pre-login cart into the persisted one. A repeated call
// with the same payload inside the dedup window is a no-op, which makes the
// operation safe to retry.
func (s *CartService) SyncCart(ctx context.Context, userID uint, items []repo.SyncItem) ([]repo.CartView, error) {
	if len(items) == 0 {
		return s.GetCart(ctx, userID)
	}

	key := syncDedupKey(userID, items)
	if _, err := s.Store.Get(ctx, key); err == nil {
		return s.GetCart(ctx, userID)
	} else if !errors.Is(err, kv.ErrNotFound) {
		return nil, err
	}

	if err := s.Repo.SyncCart(ctx, userID, items); err != nil {
		return nil, err
	}
	if err := s.Store.Set(ctx, key, []byte("1"), syncDedupTTL); err != nil {
		logging.FromContext(ctx).Error("cart sync dedup write", "error", err)
	}
	s.invalidate(ctx, userID)

	publish(ctx, s.Producer, mykafka.TopicCartEvents, fmt.Sprint(userID), map[string]any{
		"type":    "cart_synced",
		"user_id": userID,
		"items":   len(items),
	})
	return s.GetCart(ctx, userID)
}
