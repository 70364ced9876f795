package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aroi-pos/api/internal/enum"
	"github.com/aroi-pos/api/internal/service"
	"github.com/aroi-pos/api/internal/store"
	"github.com/google/uuid"
)

// recordingPublisher captures published events in order.
type recordingPublisher struct {
	events []recordedEvent
}

type recordedEvent struct {
	eventType string
	payload   any
}

func (p *recordingPublisher) Publish(eventType string, payload any) {
	p.events = append(p.events, recordedEvent{eventType, payload})
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}

// failingOrderStore wraps a Store and fails selected order writes.
type failingOrderStore struct {
	store.Store
	failCreate bool
	failPaidID uuid.UUID
}

var errBoom = errors.New("boom")

func (f *failingOrderStore) CreateOrder(ctx context.Context, arg store.CreateOrderParams) (store.Order, error) {
	if f.failCreate {
		return store.Order{}, errBoom
	}
	return f.Store.CreateOrder(ctx, arg)
}

func TestSubmitEmptyCart(t *testing.T) {
	m := store.NewMemory()
	svc := service.NewOrderService(m, m, nil)

	table, _ := m.CreateTable(context.Background(), store.CreateTableParams{TableNumber: "1", Seats: 2})
	cart := service.NewCart(table)

	if _, err := svc.Submit(context.Background(), cart); !errors.Is(err, service.ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
}

func TestSubmitOccupiesEmptyTable(t *testing.T) {
	m := store.NewMemory()
	pub := &recordingPublisher{}
	svc := service.NewOrderService(m, m, pub)
	ctx := context.Background()

	table, _ := m.CreateTable(ctx, store.CreateTableParams{TableNumber: "1", Seats: 2})
	cart := service.NewCart(table)
	cart.AddItem(menuItem("Pad Thai", 80))
	cart.AddItem(menuItem("Thai Iced Tea", 35))

	order, err := svc.Submit(ctx, cart)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if order.Status != enum.OrderStatusPending {
		t.Errorf("order status = %s, want PENDING", order.Status)
	}
	if order.TableNumber != "1" {
		t.Errorf("order table_number = %s", order.TableNumber)
	}
	if want := "115"; order.Total.String() != want {
		t.Errorf("order total = %s, want %s", order.Total, want)
	}

	got, _ := m.GetTable(ctx, table.ID)
	if got.Status != enum.TableStatusOccupied {
		t.Errorf("table status = %s, want OCCUPIED", got.Status)
	}

	if !cart.Empty() {
		t.Errorf("cart not cleared after submit")
	}

	want := []string{"table_updated", "order_created"}
	if got := pub.types(); len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestSubmitSecondRoundKeepsTableOccupied(t *testing.T) {
	m := store.NewMemory()
	pub := &recordingPublisher{}
	svc := service.NewOrderService(m, m, pub)
	ctx := context.Background()

	table, _ := m.CreateTable(ctx, store.CreateTableParams{TableNumber: "1", Seats: 2})
	cart := service.NewCart(table)

	cart.AddItem(menuItem("Pad Thai", 80))
	if _, err := svc.Submit(ctx, cart); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	cart.AddItem(menuItem("Mango Sticky Rice", 85))
	if _, err := svc.Submit(ctx, cart); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	outstanding, _ := m.ListOutstandingOrders(ctx, table.ID)
	if len(outstanding) != 2 {
		t.Fatalf("got %d outstanding orders, want 2", len(outstanding))
	}

	// Only the first round flips the table, so exactly one table_updated.
	var tableEvents int
	for _, e := range pub.events {
		if e.eventType == "table_updated" {
			tableEvents++
		}
	}
	if tableEvents != 1 {
		t.Errorf("table_updated published %d times, want 1", tableEvents)
	}
}

func TestSubmitFailedWriteLeavesTableAndCart(t *testing.T) {
	m := store.NewMemory()
	failing := &failingOrderStore{Store: m, failCreate: true}
	svc := service.NewOrderService(m, failing, nil)
	ctx := context.Background()

	table, _ := m.CreateTable(ctx, store.CreateTableParams{TableNumber: "1", Seats: 2})
	cart := service.NewCart(table)
	cart.AddItem(menuItem("Khao Pad", 70))

	if _, err := svc.Submit(ctx, cart); !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want errBoom", err)
	}

	// The table transition happens strictly after the order write.
	got, _ := m.GetTable(ctx, table.ID)
	if got.Status != enum.TableStatusEmpty {
		t.Errorf("table status = %s, want EMPTY after failed write", got.Status)
	}

	// The cart keeps its lines for a retry.
	if cart.Empty() {
		t.Errorf("cart cleared despite failed write")
	}
}
