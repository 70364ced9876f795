package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aroi-pos/api/internal/enum"
	"github.com/aroi-pos/api/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bill is the consolidated view of a table's outstanding rounds.
type Bill struct {
	TableID     uuid.UUID
	TableNumber string
	Lines       []store.OrderLine
	GrandTotal  decimal.Decimal
	Orders      []store.Order
}

// SettlementService merges a table's outstanding orders into one bill
// and marks them paid in a single settlement.
type SettlementService struct {
	tables store.TableStore
	orders store.OrderStore
	events Publisher
	now    func() time.Time
}

// NewSettlementService creates a new SettlementService.
func NewSettlementService(tables store.TableStore, orders store.OrderStore, events Publisher) *SettlementService {
	return &SettlementService{tables: tables, orders: orders, events: events, now: time.Now}
}

// SetClock overrides the paid_date timestamp source. Test hook.
func (s *SettlementService) SetClock(now func() time.Time) {
	s.now = now
}

// Outstanding returns the table's unpaid rounds in the order they were
// placed.
func (s *SettlementService) Outstanding(ctx context.Context, tableID uuid.UUID) ([]store.Order, error) {
	orders, err := s.orders.ListOutstandingOrders(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("list outstanding orders: %w", err)
	}
	return orders, nil
}

// ComputeBill consolidates the outstanding rounds. Lines are grouped by
// menu item with quantities summed; when rounds disagree on a price
// (the menu changed between rounds) the first-seen snapshot wins. The
// grand total is the sum of the per-order totals, not of the merged
// lines, so the stored order totals stay authoritative.
func (s *SettlementService) ComputeBill(ctx context.Context, tableID uuid.UUID) (Bill, error) {
	table, err := s.tables.GetTable(ctx, tableID)
	if err != nil {
		return Bill{}, err
	}

	orders, err := s.Outstanding(ctx, tableID)
	if err != nil {
		return Bill{}, err
	}

	bill := Bill{
		TableID:     table.ID,
		TableNumber: table.TableNumber,
		Lines:       MergeLines(orders),
		GrandTotal:  decimal.Zero,
		Orders:      orders,
	}
	for _, o := range orders {
		bill.GrandTotal = bill.GrandTotal.Add(o.Total)
	}
	return bill, nil
}

// MergeLines flattens the orders' lines into one list, summing
// quantities per menu item. First-seen name, price and note are kept.
func MergeLines(orders []store.Order) []store.OrderLine {
	var merged []store.OrderLine
	index := make(map[uuid.UUID]int)
	for _, o := range orders {
		for _, l := range o.Lines {
			if i, ok := index[l.MenuItemID]; ok {
				merged[i].Quantity += l.Quantity
				continue
			}
			index[l.MenuItemID] = len(merged)
			merged = append(merged, l)
		}
	}
	return merged
}

// Settle marks every outstanding order for the table PAID with the
// given payment method and frees the table. The per-order updates are
// sequential and deliberately untransacted (the store offers no
// multi-document guarantee): on a partial failure the table keeps its
// status, and a retry re-fetches the now-smaller outstanding set and
// continues. Already PAID orders are never charged again.
func (s *SettlementService) Settle(ctx context.Context, tableID uuid.UUID, paymentMethod string) (store.Table, error) {
	if paymentMethod != enum.PaymentMethodCash && paymentMethod != enum.PaymentMethodTransfer {
		return store.Table{}, ErrInvalidPaymentMethod
	}

	if _, err := s.tables.GetTable(ctx, tableID); err != nil {
		return store.Table{}, err
	}

	outstanding, err := s.Outstanding(ctx, tableID)
	if err != nil {
		return store.Table{}, err
	}
	if len(outstanding) == 0 {
		return store.Table{}, ErrNoOutstandingOrders
	}

	paidAt := s.now()
	settled := make([]uuid.UUID, 0, len(outstanding))
	for _, o := range outstanding {
		if _, err := s.orders.MarkOrderPaid(ctx, o.ID, paymentMethod, paidAt); err != nil {
			return store.Table{}, fmt.Errorf("mark order %s paid: %w", o.ID, err)
		}
		settled = append(settled, o.ID)
	}

	// The table is freed only after every order update succeeded.
	table, err := s.tables.UpdateTableStatus(ctx, tableID, enum.TableStatusEmpty)
	if err != nil {
		return store.Table{}, fmt.Errorf("free table: %w", err)
	}

	publish(s.events, "order_settled", map[string]any{
		"table_id":       tableID,
		"order_ids":      settled,
		"payment_method": paymentMethod,
		"paid_date":      paidAt,
	})
	publish(s.events, "table_updated", table)
	return table, nil
}
