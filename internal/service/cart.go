package service

import (
	"sync"

	"github.com/aroi-pos/api/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart accumulates the current round of line items for one table visit.
// Lines are keyed by menu item: adding an item that is already in the
// cart bumps its quantity instead of appending a duplicate line.
//
// A cart belongs to a single ordering session (one staff member, one
// terminal) and is not safe for concurrent use.
type Cart struct {
	TableID     uuid.UUID
	TableNumber string

	lines []store.OrderLine
}

// NewCart opens an ordering session for the given table.
func NewCart(table store.Table) *Cart {
	return &Cart{TableID: table.ID, TableNumber: table.TableNumber}
}

// AddItem puts one unit of the menu item in the cart, snapshotting its
// name and price from the catalog.
func (c *Cart) AddItem(item store.MenuItem) {
	for i := range c.lines {
		if c.lines[i].MenuItemID == item.ID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, store.OrderLine{
		MenuItemID: item.ID,
		Name:       item.Name,
		Price:      item.Price,
		Quantity:   1,
	})
}

// RemoveItem drops the whole line for the menu item, whatever its
// quantity. Unknown ids are ignored.
func (c *Cart) RemoveItem(menuItemID uuid.UUID) {
	for i := range c.lines {
		if c.lines[i].MenuItemID == menuItemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// ChangeQuantity adjusts a line's quantity by delta. The line is
// removed when the result would drop to zero or below.
func (c *Cart) ChangeQuantity(menuItemID uuid.UUID, delta int32) {
	for i := range c.lines {
		if c.lines[i].MenuItemID != menuItemID {
			continue
		}
		if c.lines[i].Quantity+delta <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity += delta
		}
		return
	}
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []store.OrderLine {
	out := make([]store.OrderLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total recomputes the running total from the lines; nothing is cached.
func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Price.Mul(decimal.NewFromInt32(l.Quantity)))
	}
	return sum
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

func (c *Cart) clear() {
	c.lines = nil
}

// CartRegistry hands out cart sessions by id. A session is created when
// staff opens a table's order screen and removed on explicit cancel;
// submit clears the cart's lines but keeps the session alive for the
// next round.
type CartRegistry struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*Cart
}

// NewCartRegistry creates an empty registry.
func NewCartRegistry() *CartRegistry {
	return &CartRegistry{carts: make(map[uuid.UUID]*Cart)}
}

// Create registers a new cart for the table and returns its handle.
func (r *CartRegistry) Create(table store.Table) (uuid.UUID, *Cart) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New()
	cart := NewCart(table)
	r.carts[id] = cart
	return id, cart
}

// Get resolves a cart handle.
func (r *CartRegistry) Get(id uuid.UUID) (*Cart, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[id]
	return cart, ok
}

// Delete ends a session. Deleting an unknown handle is a no-op.
func (r *CartRegistry) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, id)
}
