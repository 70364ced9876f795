package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aroi-pos/api/internal/enum"
	"github.com/aroi-pos/api/internal/handler"
	"github.com/aroi-pos/api/internal/service"
	"github.com/aroi-pos/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type billJSON struct {
	TableID     string          `json:"table_id"`
	TableNumber string          `json:"table_number"`
	Lines       []orderLineJSON `json:"lines"`
	GrandTotal  string          `json:"grand_total"`
	Orders      []orderJSON     `json:"orders"`
}

func newBillingRouter(m *store.Memory) chi.Router {
	r := chi.NewRouter()
	settlement := service.NewSettlementService(m, m, nil)
	h := handler.NewBillingHandler(settlement, "Aroi Restaurant", time.UTC)
	r.Route("/tables", h.RegisterRoutes)
	return r
}

// seatedTable creates an OCCUPIED table with two unpaid rounds:
// Pad Thai x1 + Thai Iced Tea x1 (115), then Pad Thai x1 (80).
func seatedTable(t *testing.T, m *store.Memory) (store.Table, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	table, err := m.CreateTable(ctx, store.CreateTableParams{TableNumber: "3", Seats: 4})
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	m.UpdateTableStatus(ctx, table.ID, enum.TableStatusOccupied)

	padThaiID := uuid.New()
	m.CreateOrder(ctx, store.CreateOrderParams{
		TableID:     table.ID,
		TableNumber: "3",
		Lines: []store.OrderLine{
			{MenuItemID: padThaiID, Name: "Pad Thai", Price: decimal.NewFromInt(80), Quantity: 1},
			{MenuItemID: uuid.New(), Name: "Thai Iced Tea", Price: decimal.NewFromInt(35), Quantity: 1},
		},
		Total: decimal.NewFromInt(115),
	})
	m.CreateOrder(ctx, store.CreateOrderParams{
		TableID:     table.ID,
		TableNumber: "3",
		Lines: []store.OrderLine{
			{MenuItemID: padThaiID, Name: "Pad Thai", Price: decimal.NewFromInt(80), Quantity: 1},
		},
		Total: decimal.NewFromInt(80),
	})
	return table, padThaiID
}

func TestTableOrders(t *testing.T) {
	m := store.NewMemory()
	table, _ := seatedTable(t, m)
	r := newBillingRouter(m)

	rec := doJSON(t, r, http.MethodGet, fmt.Sprintf("/tables/%s/orders", table.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	orders := decodeBody[[]orderJSON](t, rec)
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if orders[0].Total != "115.00" || orders[1].Total != "80.00" {
		t.Errorf("orders = %+v", orders)
	}
}

func TestTableBill(t *testing.T) {
	m := store.NewMemory()
	table, padThaiID := seatedTable(t, m)
	r := newBillingRouter(m)

	rec := doJSON(t, r, http.MethodGet, fmt.Sprintf("/tables/%s/bill", table.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	bill := decodeBody[billJSON](t, rec)
	if bill.GrandTotal != "195.00" {
		t.Errorf("grand total = %s, want 195.00", bill.GrandTotal)
	}
	if len(bill.Lines) != 2 {
		t.Fatalf("merged lines = %+v", bill.Lines)
	}
	if bill.Lines[0].MenuItemID != padThaiID.String() || bill.Lines[0].Quantity != 2 {
		t.Errorf("first merged line = %+v, want Pad Thai x2", bill.Lines[0])
	}
	if len(bill.Orders) != 2 {
		t.Errorf("bill carries %d orders, want 2", len(bill.Orders))
	}
}

func TestTableBillNotFound(t *testing.T) {
	r := newBillingRouter(store.NewMemory())

	rec := doJSON(t, r, http.MethodGet, fmt.Sprintf("/tables/%s/bill", uuid.New()), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestTableReceipt(t *testing.T) {
	m := store.NewMemory()
	table, _ := seatedTable(t, m)
	r := newBillingRouter(m)

	rec := doJSON(t, r, http.MethodGet, fmt.Sprintf("/tables/%s/receipt", table.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("content type = %s", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{"Aroi Restaurant", "Table: 3", "Pad Thai x2", "Total: 195.00", "Thank you!"} {
		if !strings.Contains(body, want) {
			t.Errorf("receipt missing %q:\n%s", want, body)
		}
	}
}

func TestSettleTable(t *testing.T) {
	m := store.NewMemory()
	table, _ := seatedTable(t, m)
	r := newBillingRouter(m)

	rec := doJSON(t, r, http.MethodPost, fmt.Sprintf("/tables/%s/settle", table.ID),
		map[string]string{"payment_method": enum.PaymentMethodCash})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}

	freed := decodeBody[store.Table](t, rec)
	if freed.Status != enum.TableStatusEmpty {
		t.Errorf("table status = %s, want EMPTY", freed.Status)
	}

	outstanding, _ := m.ListOutstandingOrders(context.Background(), table.ID)
	if len(outstanding) != 0 {
		t.Errorf("%d orders still outstanding", len(outstanding))
	}

	// Settling the now-clear table conflicts.
	rec = doJSON(t, r, http.MethodPost, fmt.Sprintf("/tables/%s/settle", table.ID),
		map[string]string{"payment_method": enum.PaymentMethodCash})
	if rec.Code != http.StatusConflict {
		t.Errorf("second settle status = %d, want 409", rec.Code)
	}
}

func TestSettleValidation(t *testing.T) {
	m := store.NewMemory()
	table, _ := seatedTable(t, m)
	r := newBillingRouter(m)

	rec := doJSON(t, r, http.MethodPost, fmt.Sprintf("/tables/%s/settle", table.ID),
		map[string]string{"payment_method": "CARD"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid method status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, r, http.MethodPost, fmt.Sprintf("/tables/%s/settle", uuid.New()),
		map[string]string{"payment_method": enum.PaymentMethodCash})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown table status = %d, want 404", rec.Code)
	}
}
