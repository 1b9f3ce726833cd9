package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nnvstore/backend/internal/kv"
)

const (
	CartTTL    = 3 * time.Minute
	CatalogTTL = time.Minute
)

var ErrMiss = errors.New("cache: miss")

// Cache stores JSON snapshots in the shared kv store. Writers must
// invalidate the key before returning so a follow-up read inside the TTL is
// never stale.
type Cache struct {
	Store kv.Store
}

func cartKey(userID uint) string {
	return fmt.Sprintf("cart:%d", userID)
}

func (c *Cache) GetJSON(ctx context.Context, key string, out any) error {
	data, err := c.Store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return ErrMiss
		}
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		// A corrupt entry is dropped, the caller falls through to the DB.
		_ = c.Store.Delete(ctx, key)
		return ErrMiss
	}
	return nil
}

func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Store.Set(ctx, key, data, ttl)
}

func (c *Cache) GetCart(ctx context.Context, userID uint, out any) error {
	return c.GetJSON(ctx, cartKey(userID), out)
}

func (c *Cache) SetCart(ctx context.Context, userID uint, v any) error {
	return c.SetJSON(ctx, cartKey(userID), v, CartTTL)
}

func (c *Cache) InvalidateCart(ctx context.Context, userID uint) error {
	return c.Store.Delete(ctx, cartKey(userID))
}
