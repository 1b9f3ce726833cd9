package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nnvstore/backend/internal/models"
	"github.com/nnvstore/backend/internal/repo"
)

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	p1 := env.seedProduct("Apple", "iPhone 15", 999, 5)
	p2 := env.seedProduct("Samsung", "Galaxy S24", 899.50, 3)

	_, err := env.Cart.AddItem(ctx, user.ID, p1.ID, 2)
	require.NoError(t, err)
	_, err = env.Cart.AddItem(ctx, user.ID, p2.ID, 1)
	require.NoError(t, err)

	order, err := env.Orders.CreateOrder(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPendingPayment, order.Status)
	require.InDelta(t, 2*999+899.50, order.TotalPrice, 0.001)
	require.Len(t, order.Items, 2)

	// Stock went down, the cart is gone.
	require.Equal(t, uint(3), env.productStock(p1.ID))
	require.Equal(t, uint(2), env.productStock(p2.ID))
	view, err := env.Cart.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Empty(t, view)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")

	_, err := env.Orders.CreateOrder(ctx, user.ID)
	require.ErrorIs(t, err, repo.ErrEmptyCart)
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	p1 := env.seedProduct("Apple", "iPhone 15", 999, 5)
	p2 := env.seedProduct("Samsung", "Galaxy S24", 899, 5)

	_, err := env.Cart.AddItem(ctx, user.ID, p1.ID, 2)
	require.NoError(t, err)
	_, err = env.Cart.AddItem(ctx, user.ID, p2.ID, 3)
	require.NoError(t, err)

	// Stock drained between carting and checkout.
	require.NoError(t, env.DB.Exec("UPDATE products SET stock_quantity = 1 WHERE id = ?", p2.ID).Error)

	_, err = env.Orders.CreateOrder(ctx, user.ID)
	require.ErrorIs(t, err, repo.ErrInsufficientStock)

	// Nothing was committed: first item's decrement rolled back, cart intact.
	require.Equal(t, uint(5), env.productStock(p1.ID))
	require.Equal(t, uint(1), env.productStock(p2.ID))
	require.Equal(t, uint(2), env.cartQuantity(user.ID, p1.ID))

	var count int64
	require.NoError(t, env.DB.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestOrderSnapshotsPrices(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	product := env.seedProduct("Apple", "iPhone 15", 999, 5)

	_, err := env.Cart.AddItem(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)
	order, err := env.Orders.CreateOrder(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, env.DB.Exec("UPDATE products SET price = 1299 WHERE id = ?", product.ID).Error)

	got, err := env.Orders.GetUserOrder(ctx, user.ID, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.InDelta(t, 999, got.Items[0].Price, 0.001)
	require.InDelta(t, 999, got.TotalPrice, 0.001)
}

func TestSequentialOrdersContendForStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	first := env.seedUser("first@example.com", "password123")
	second := env.seedUser("second@example.com", "password123")
	product := env.seedProduct("Apple", "iPhone 15", 999, 3)

	_, err := env.Cart.AddItem(ctx, first.ID, product.ID, 2)
	require.NoError(t, err)
	_, err = env.Cart.AddItem(ctx, second.ID, product.ID, 2)
	require.NoError(t, err)

	_, err = env.Orders.CreateOrder(ctx, first.ID)
	require.NoError(t, err)

	// Only one unit left, the second order cannot take two.
	_, err = env.Orders.CreateOrder(ctx, second.ID)
	require.ErrorIs(t, err, repo.ErrInsufficientStock)
	require.Equal(t, uint(1), env.productStock(product.ID))
}

func TestGetUserOrderScopedToOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser("owner@example.com", "password123")
	other := env.seedUser("other@example.com", "password123")
	product := env.seedProduct("Apple", "iPhone 15", 999, 5)

	_, err := env.Cart.AddItem(ctx, owner.ID, product.ID, 1)
	require.NoError(t, err)
	order, err := env.Orders.CreateOrder(ctx, owner.ID)
	require.NoError(t, err)

	_, err = env.Orders.GetUserOrder(ctx, other.ID, order.ID)
	require.ErrorIs(t, err, repo.ErrNotFound)
}

func TestListUserOrdersPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	product := env.seedProduct("Apple", "iPhone 15", 999, 100)

	for i := 0; i < 3; i++ {
		_, err := env.Cart.AddItem(ctx, user.ID, product.ID, 1)
		require.NoError(t, err)
		_, err = env.Orders.CreateOrder(ctx, user.ID)
		require.NoError(t, err)
	}

	page, err := env.Orders.ListUserOrders(ctx, user.ID, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.EqualValues(t, 3, page.Pagination.Total)
	require.True(t, page.Pagination.HasNext)

	page, err = env.Orders.ListUserOrders(ctx, user.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.True(t, page.Pagination.HasPrev)
}

func TestUpdateStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser("user@example.com", "password123")
	product := env.seedProduct("Apple", "iPhone 15", 999, 5)

	_, err := env.Cart.AddItem(ctx, user.ID, product.ID, 1)
	require.NoError(t, err)
	order, err := env.Orders.CreateOrder(ctx, user.ID)
	require.NoError(t, err)

	updated, err := env.Orders.UpdateStatus(ctx, order.ID, models.OrderStatusPaid)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPaid, updated.Status)

	_, err = env.Orders.UpdateStatus(ctx, order.ID, "refunded")
	require.ErrorIs(t, err, ErrValidation)

	_, err = env.Orders.UpdateStatus(ctx, 999, models.OrderStatusShipped)
	require.ErrorIs(t, err, repo.ErrNotFound)
}
