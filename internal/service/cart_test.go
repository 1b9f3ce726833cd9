package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nnvstore/backend/internal/repo"
)

func TestAddItemAccumulates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	product := env.seedProduct("Apple", "iPhone 15", 999, 5)

	view, err := env.Cart.AddItem(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)
	require.Len(t, view, 1)
	require.Equal(t, uint(2), view[0].Quantity)
	require.Equal(t, "Apple iPhone 15", view[0].Name)

	view, err = env.Cart.AddItem(ctx, user.ID, product.ID, 2)
	require.NoError(t, err)
	require.Equal(t, uint(4), view[0].Quantity)

	// The next add would push past stock.
	_, err = env.Cart.AddItem(ctx, user.ID, product.ID, 2)
	require.ErrorIs(t, err, repo.ErrInsufficientStock)
	require.Equal(t, uint(4), env.cartQuantity(user.ID, product.ID))
}

func TestAddItemFirstAddLosesInsertRace(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	product := env.seedProduct("Apple", "iPhone 15", 999, 10)

	// Slip a competing row in just before the insert runs, inside the same
	// transaction, the way a concurrent first add would land it.
	fired := false
	require.NoError(t, env.DB.Callback().Create().Before("gorm:create").
		Register("competing_first_add", func(d *gorm.DB) {
			if fired || d.Statement.Table != "cart_items" {
				return
			}
			fired = true
			now := time.Now()
			d.Session(&gorm.Session{NewDB: true}).Exec(
				"INSERT INTO cart_items (user_id, product_id, quantity, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
				user.ID, product.ID, 2, now, now,
			)
		}))
	defer env.DB.Callback().Create().Remove("competing_first_add")

	// The add must merge into the winner's row instead of surfacing the
	// unique-index violation.
	view, err := env.Cart.AddItem(ctx, user.ID, product.ID, 3)
	require.NoError(t, err)
	require.True(t, fired)
	require.Len(t, view, 1)
	require.Equal(t, uint(5), env.cartQuantity(user.ID, product.ID))
}

func TestAddItemDefaultsToOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	product := env.seedProduct("Apple", "iPhone 15", 999, 5)

	view, err := env.Cart.AddItem(ctx, user.ID, product.ID, 0)
	require.NoError(t, err)
	require.Equal(t, uint(1), view[0].Quantity)
}

func TestAddItemRejectsUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")

	_, err := env.Cart.AddItem(ctx, user.ID, 999, 1)
	require.ErrorIs(t, err, repo.ErrNotFound)

	_, err = env.Cart.AddItem(ctx, user.ID, 0, 1)
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	product := env.seedProduct("Apple", "iPhone 15", 999, 5)

	_, err := env.Cart.AddItem(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	view, err := env.Cart.UpdateItem(ctx, user.ID, product.ID, 3)
	require.NoError(t, err)
	require.Equal(t, uint(3), view[0].Quantity)

	_, err = env.Cart.UpdateItem(ctx, user.ID, product.ID, 6)
	require.ErrorIs(t, err, repo.ErrInsufficientStock)

	// Zero removes the row.
	view, err = env.Cart.UpdateItem(ctx, user.ID, product.ID, 0)
	require.NoError(t, err)
	require.Empty(t, view)

	_, err = env.Cart.UpdateItem(ctx, user.ID, product.ID, 1)
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestRemoveItem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	product := env.seedProduct("Apple", "iPhone 15", 999, 5)

	_, err := env.Cart.AddItem(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	view, err := env.Cart.RemoveItem(ctx, user.ID, product.ID)
	require.NoError(t, err)
	require.Empty(t, view)

	_, err = env.Cart.RemoveItem(ctx, user.ID, product.ID)
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestClearCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	p1 := env.seedProduct("Apple", "iPhone 15", 999, 5)
	p2 := env.seedProduct("Samsung", "Galaxy S24", 899, 5)

	_, err := env.Cart.AddItem(ctx, user.ID, p1.ID, 1)
	require.NoError(t, err)
	_, err = env.Cart.AddItem(ctx, user.ID, p2.ID, 1)
	require.NoError(t, err)

	require.NoError(t, env.Cart.ClearCart(ctx, user.ID))

	view, err := env.Cart.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, view)
}

func TestSyncCartMergesWithStockCeiling(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	existing := env.seedProduct("Apple", "iPhone 15", 999, 5)
	fresh := env.seedProduct("Samsung", "Galaxy S24", 899, 2)

	_, err := env.Cart.AddItem(ctx, user.ID, existing.ID, 2)
	require.NoError(t, err)

	view, err := env.Cart.SyncCart(ctx, user.ID, []repo.SyncItem{
		{ProductID: existing.ID, Quantity: 4}, // 2+4 capped at stock 5
		{ProductID: fresh.ID, Quantity: 10},   // capped at stock 2
		{ProductID: 999, Quantity: 1},         // unknown, dropped
	})
	require.NoError(t, err)
	require.Len(t, view, 2)
	require.Equal(t, uint(5), env.cartQuantity(user.ID, existing.ID))
	require.Equal(t, uint(2), env.cartQuantity(user.ID, fresh.ID))
}

func TestSyncCartRetryIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	product := env.seedProduct("Apple", "iPhone 15", 999, 10)

	payload := []repo.SyncItem{{ProductID: product.ID, Quantity: 3}}

	_, err := env.Cart.SyncCart(ctx, user.ID, payload)
	require.NoError(t, err)
	require.Equal(t, uint(3), env.cartQuantity(user.ID, product.ID))

	// Same payload again inside the dedup window must not merge twice.
	_, err = env.Cart.SyncCart(ctx, user.ID, payload)
	require.NoError(t, err)
	require.Equal(t, uint(3), env.cartQuantity(user.ID, product.ID))

	// A different payload still merges.
	_, err = env.Cart.SyncCart(ctx, user.ID, []repo.SyncItem{{ProductID: product.ID, Quantity: 2}})
	require.NoError(t, err)
	require.Equal(t, uint(5), env.cartQuantity(user.ID, product.ID))
}

func TestGetCartUsesCacheUntilMutation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	product := env.seedProduct("Apple", "iPhone 15", 999, 5)

	_, err := env.Cart.AddItem(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)

	// Prime the cache, then change the row behind the service's back.
	_, err = env.Cart.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, env.DB.Exec("UPDATE cart_items SET quantity = 4 WHERE user_id = ?", user.ID).Error)

	view, err := env.Cart.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, uint(1), view[0].Quantity, "cached view expected")

	// Any mutation drops the entry.
	_, err = env.Cart.AddItem(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)
	view, err = env.Cart.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, uint(5), view[0].Quantity)
}
