package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an id does not resolve to an entity.
var ErrNotFound = errors.New("not found")

type CreateTableParams struct {
	TableNumber string
	Seats       int32
}

type UpdateTableParams struct {
	ID          uuid.UUID
	TableNumber string
	Seats       int32
	Status      string
}

type CreateMenuItemParams struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	Category      string
	ImageURL      string
	IsRecommended bool
	IsAvailable   bool
}

type UpdateMenuItemParams struct {
	ID            uuid.UUID
	Name          string
	Description   string
	Price         decimal.Decimal
	Category      string
	ImageURL      string
	IsRecommended bool
	IsAvailable   bool
}

type CreateOrderParams struct {
	TableID     uuid.UUID
	TableNumber string
	Lines       []OrderLine
	Total       decimal.Decimal
}

// TableStore defines the persistence methods for floor tables.
type TableStore interface {
	ListTables(ctx context.Context) ([]Table, error)
	GetTable(ctx context.Context, id uuid.UUID) (Table, error)
	CreateTable(ctx context.Context, arg CreateTableParams) (Table, error)
	UpdateTable(ctx context.Context, arg UpdateTableParams) (Table, error)
	UpdateTableStatus(ctx context.Context, id uuid.UUID, status string) (Table, error)
	DeleteTable(ctx context.Context, id uuid.UUID) error
}

// MenuStore defines the persistence methods for the menu catalog.
type MenuStore interface {
	ListMenuItems(ctx context.Context) ([]MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error)
	CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error
}

// OrderStore defines the persistence methods for orders.
//
// ListOutstandingOrders returns a table's unpaid rounds in creation
// order. MarkOrderPaid is a no-op on an already PAID order: it returns
// the stored row unchanged, so a retried settlement never re-charges.
type OrderStore interface {
	CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (Order, error)
	ListOutstandingOrders(ctx context.Context, tableID uuid.UUID) ([]Order, error)
	ListPaidOrders(ctx context.Context, from, to time.Time) ([]Order, error)
	MarkOrderPaid(ctx context.Context, id uuid.UUID, paymentMethod string, paidAt time.Time) (Order, error)
}

// Store bundles all entity stores. Satisfied by *Postgres and *Memory.
type Store interface {
	TableStore
	MenuStore
	OrderStore
}
