package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aroi-pos/api/internal/enum"
	"github.com/aroi-pos/api/internal/store"
)

// Errors returned by the order and settlement services.
var (
	ErrEmptyCart            = errors.New("cart has no items")
	ErrNoOutstandingOrders  = errors.New("no outstanding orders for table")
	ErrInvalidPaymentMethod = errors.New("invalid payment_method")
)

// Publisher pushes core events to external observers (the floor
// screens). Implemented by ws.Hub; a nil Publisher disables events.
type Publisher interface {
	Publish(eventType string, payload any)
}

// OrderService turns a cart into a persisted order round and keeps the
// table's occupancy status in step.
type OrderService struct {
	tables store.TableStore
	orders store.OrderStore
	events Publisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(tables store.TableStore, orders store.OrderStore, events Publisher) *OrderService {
	return &OrderService{tables: tables, orders: orders, events: events}
}

// Submit persists the cart as a PENDING order and, if the table is
// still EMPTY, marks it OCCUPIED. The table transition happens strictly
// after the order write, so a failed write never flips the table. On
// success the cart's lines are cleared; on any error they are kept so
// staff can retry.
func (s *OrderService) Submit(ctx context.Context, cart *Cart) (store.Order, error) {
	if cart.Empty() {
		return store.Order{}, ErrEmptyCart
	}

	order, err := s.orders.CreateOrder(ctx, store.CreateOrderParams{
		TableID:     cart.TableID,
		TableNumber: cart.TableNumber,
		Lines:       cart.Lines(),
		Total:       cart.Total(),
	})
	if err != nil {
		return store.Order{}, fmt.Errorf("create order: %w", err)
	}

	table, err := s.tables.GetTable(ctx, cart.TableID)
	if err != nil {
		return store.Order{}, fmt.Errorf("get table: %w", err)
	}
	if table.Status == enum.TableStatusEmpty {
		table, err = s.tables.UpdateTableStatus(ctx, cart.TableID, enum.TableStatusOccupied)
		if err != nil {
			return store.Order{}, fmt.Errorf("occupy table: %w", err)
		}
		publish(s.events, "table_updated", table)
	}

	cart.clear()
	publish(s.events, "order_created", order)
	return order, nil
}

func publish(events Publisher, eventType string, payload any) {
	if events == nil {
		return
	}
	events.Publish(eventType, payload)
}
