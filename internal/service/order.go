package service

import (
	"context"
	"fmt"

	"github.com/nnvstore/backend/internal/cache"
	"github.com/nnvstore/backend/internal/logging"
	"github.com/nnvstore/backend/internal/models"
	"github.com/nnvstore/backend/internal/mykafka"
	"github.com/nnvstore/backend/internal/repo"
	"github.com/nnvstore/backend/internal/util"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Cache    *cache.Cache
	Producer *mykafka.Producer
}

func (s *OrderService) CreateOrder(ctx context.Context, userID uint) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", userID)

	order, err := s.Repo.CreateOrderFromCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.InvalidateCart(ctx, userID); err != nil {
		l.Error("cart cache invalidate", "error", err)
	}

	l.Info("order created", "order_id", order.ID, "total", order.TotalPrice)
	publish(ctx, s.Producer, mykafka.TopicOrderEvents, fmt.Sprint(userID), map[string]any{
		"type":     "order_created",
		"user_id":  userID,
		"order_id": order.ID,
		"total":    order.TotalPrice,
	})
	return order, nil
}

type OrderPage struct {
	Items      []models.Order  `json:"items"`
	Pagination util.Pagination `json:"pagination"`
}

func (s *OrderService) ListUserOrders(ctx context.Context, userID uint, page, perPage int) (*OrderPage, error) {
	offset, limit := util.Calculate(page, perPage)
	orders, total, err := s.Repo.ListOrdersForUser(ctx, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	return &OrderPage{Items: orders, Pagination: util.Paginate(page, limit, total)}, nil
}

func (s *OrderService) GetUserOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	return s.Repo.GetOrderForUser(ctx, userID, orderID)
}

func (s *OrderService) ListAllOrders(ctx context.Context, page, perPage int) (*OrderPage, error) {
	offset, limit := util.Calculate(page, perPage)
	orders, total, err := s.Repo.ListOrders(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	return &OrderPage{Items: orders, Pagination: util.Paginate(page, limit, total)}, nil
}

func (s *OrderService) GetOrderDetails(ctx context.Context, orderID uint) (*models.Order, error) {
	return s.Repo.GetOrder(ctx, orderID)
}

// UpdateStatus sets one of the five closed statuses. There are no guarded
// transitions, the admin may move an order to any status.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("unknown order status %q: %w", status, ErrValidation)
	}
	order, err := s.Repo.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Producer, mykafka.TopicOrderEvents, fmt.Sprint(order.UserID), map[string]any{
		"type":     "order_status_updated",
		"order_id": order.ID,
		"status":   string(status),
	})
	return order, nil
}
