package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Table is a physical table on the restaurant floor. Status is one of
// enum.TableStatus*; a freshly created table starts EMPTY.
type Table struct {
	ID          uuid.UUID `json:"id"`
	TableNumber string    `json:"table_number"`
	Seats       int32     `json:"seats"`
	Status      string    `json:"status"`
}

// MenuItem is an orderable catalog entry. The order flow reads it but
// never mutates it; edits come from menu management.
type MenuItem struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	ImageURL      string          `json:"image_url"`
	IsRecommended bool            `json:"is_recommended"`
	IsAvailable   bool            `json:"is_available"`
}

// OrderLine is one cart line embedded in an order. Name and price are
// snapshots taken at order time, so later menu edits never rewrite
// historical orders.
type OrderLine struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int32           `json:"quantity"`
	Note       string          `json:"note,omitempty"`
}

// Order is one submitted round for a table. PAID orders are permanent
// sales records and are never deleted.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	TableID       uuid.UUID       `json:"table_id"`
	TableNumber   string          `json:"table_number"`
	Lines         []OrderLine     `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	PaidDate      *time.Time      `json:"paid_date,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
