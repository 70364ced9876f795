package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aroi-pos/api/internal/enum"
	"github.com/google/uuid"
)

// Memory is an in-process Store backed by maps. It mirrors the
// document-store semantics the Postgres implementation provides:
// generated ids, insertion-ordered orders, no cross-entity cascades.
// Used by tests and by deployments without a database.
type Memory struct {
	mu     sync.Mutex
	tables map[uuid.UUID]Table
	menu   map[uuid.UUID]MenuItem
	orders []Order

	now func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		tables: make(map[uuid.UUID]Table),
		menu:   make(map[uuid.UUID]MenuItem),
		now:    time.Now,
	}
}

// SetClock overrides the timestamp source for order creation. Test hook.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// --- Tables ---

func (m *Memory) ListTables(ctx context.Context) ([]Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Table, 0, len(m.tables))
	for _, t := range m.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TableNumber < out[j].TableNumber })
	return out, nil
}

func (m *Memory) GetTable(ctx context.Context, id uuid.UUID) (Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[id]
	if !ok {
		return Table{}, ErrNotFound
	}
	return t, nil
}

func (m *Memory) CreateTable(ctx context.Context, arg CreateTableParams) (Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := Table{
		ID:          uuid.New(),
		TableNumber: arg.TableNumber,
		Seats:       arg.Seats,
		Status:      enum.TableStatusEmpty,
	}
	m.tables[t.ID] = t
	return t, nil
}

func (m *Memory) UpdateTable(ctx context.Context, arg UpdateTableParams) (Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[arg.ID]
	if !ok {
		return Table{}, ErrNotFound
	}
	t.TableNumber = arg.TableNumber
	t.Seats = arg.Seats
	t.Status = arg.Status
	m.tables[arg.ID] = t
	return t, nil
}

func (m *Memory) UpdateTableStatus(ctx context.Context, id uuid.UUID, status string) (Table, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tables[id]
	if !ok {
		return Table{}, ErrNotFound
	}
	t.Status = status
	m.tables[id] = t
	return t, nil
}

func (m *Memory) DeleteTable(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tables[id]; !ok {
		return ErrNotFound
	}
	// Orders referencing the table are kept; they stay addressable by
	// table_id even though no table resolves to them anymore.
	delete(m.tables, id)
	return nil
}

// --- Menu ---

func (m *Memory) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MenuItem, 0, len(m.menu))
	for _, it := range m.menu {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.menu[id]
	if !ok {
		return MenuItem{}, ErrNotFound
	}
	return it, nil
}

func (m *Memory) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it := MenuItem{
		ID:            uuid.New(),
		Name:          arg.Name,
		Description:   arg.Description,
		Price:         arg.Price,
		Category:      arg.Category,
		ImageURL:      arg.ImageURL,
		IsRecommended: arg.IsRecommended,
		IsAvailable:   arg.IsAvailable,
	}
	m.menu[it.ID] = it
	return it, nil
}

func (m *Memory) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.menu[arg.ID]
	if !ok {
		return MenuItem{}, ErrNotFound
	}
	it.Name = arg.Name
	it.Description = arg.Description
	it.Price = arg.Price
	it.Category = arg.Category
	it.ImageURL = arg.ImageURL
	it.IsRecommended = arg.IsRecommended
	it.IsAvailable = arg.IsAvailable
	m.menu[arg.ID] = it
	return it, nil
}

func (m *Memory) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.menu[id]; !ok {
		return ErrNotFound
	}
	delete(m.menu, id)
	return nil
}

// --- Orders ---

func (m *Memory) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o := Order{
		ID:          uuid.New(),
		TableID:     arg.TableID,
		TableNumber: arg.TableNumber,
		Lines:       copyLines(arg.Lines),
		Total:       arg.Total,
		Status:      enum.OrderStatusPending,
		CreatedAt:   m.now(),
	}
	m.orders = append(m.orders, o)
	return copyOrder(o), nil
}

func (m *Memory) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range m.orders {
		if o.ID == id {
			return copyOrder(o), nil
		}
	}
	return Order{}, ErrNotFound
}

func (m *Memory) ListOutstandingOrders(ctx context.Context, tableID uuid.UUID) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Order
	for _, o := range m.orders {
		if o.TableID == tableID && o.Status != enum.OrderStatusPaid {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

func (m *Memory) ListPaidOrders(ctx context.Context, from, to time.Time) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Order
	for _, o := range m.orders {
		if o.Status != enum.OrderStatusPaid || o.PaidDate == nil {
			continue
		}
		if o.PaidDate.Before(from) || !o.PaidDate.Before(to) {
			continue
		}
		out = append(out, copyOrder(o))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PaidDate.Before(*out[j].PaidDate) })
	return out, nil
}

func (m *Memory) MarkOrderPaid(ctx context.Context, id uuid.UUID, paymentMethod string, paidAt time.Time) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, o := range m.orders {
		if o.ID != id {
			continue
		}
		if o.Status == enum.OrderStatusPaid {
			return copyOrder(o), nil
		}
		o.Status = enum.OrderStatusPaid
		o.PaymentMethod = paymentMethod
		t := paidAt
		o.PaidDate = &t
		m.orders[i] = o
		return copyOrder(o), nil
	}
	return Order{}, ErrNotFound
}

func copyLines(lines []OrderLine) []OrderLine {
	out := make([]OrderLine, len(lines))
	copy(out, lines)
	return out
}

func copyOrder(o Order) Order {
	o.Lines = copyLines(o.Lines)
	if o.PaidDate != nil {
		t := *o.PaidDate
		o.PaidDate = &t
	}
	return o
}
