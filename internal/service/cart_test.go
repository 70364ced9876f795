package service_test

import (
	"testing"

	"github.com/aroi-pos/api/internal/enum"
	"github.com/aroi-pos/api/internal/service"
	"github.com/aroi-pos/api/internal/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func menuItem(name string, price int64) store.MenuItem {
	return store.MenuItem{
		ID:          uuid.New(),
		Name:        name,
		Price:       decimal.NewFromInt(price),
		Category:    enum.MenuCategoryMain,
		IsAvailable: true,
	}
}

func TestAddItemMergesByMenuItem(t *testing.T) {
	cart := service.NewCart(store.Table{ID: uuid.New(), TableNumber: "1"})
	padThai := menuItem("Pad Thai", 80)
	tea := menuItem("Thai Iced Tea", 35)

	cart.AddItem(padThai)
	cart.AddItem(tea)
	cart.AddItem(padThai)

	lines := cart.Lines()
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].MenuItemID != padThai.ID || lines[0].Quantity != 2 {
		t.Errorf("first line = %+v, want Pad Thai x2", lines[0])
	}
	if lines[1].MenuItemID != tea.ID || lines[1].Quantity != 1 {
		t.Errorf("second line = %+v, want Thai Iced Tea x1", lines[1])
	}
}

func TestAddItemSnapshotsNameAndPrice(t *testing.T) {
	cart := service.NewCart(store.Table{ID: uuid.New(), TableNumber: "1"})
	item := menuItem("Green Curry", 90)
	cart.AddItem(item)

	// A later catalog edit must not reach the cart line.
	item.Name = "Renamed"
	item.Price = decimal.NewFromInt(999)

	lines := cart.Lines()
	if lines[0].Name != "Green Curry" {
		t.Errorf("line name = %s, want Green Curry", lines[0].Name)
	}
	if !lines[0].Price.Equal(decimal.NewFromInt(90)) {
		t.Errorf("line price = %s, want 90", lines[0].Price)
	}
}

func TestChangeQuantityDropsLineAtZero(t *testing.T) {
	cart := service.NewCart(store.Table{ID: uuid.New(), TableNumber: "1"})
	item := menuItem("Spring Rolls", 55)

	cart.AddItem(item)
	cart.AddItem(item)
	cart.ChangeQuantity(item.ID, -1)

	if lines := cart.Lines(); len(lines) != 1 || lines[0].Quantity != 1 {
		t.Fatalf("after -1: lines = %+v", lines)
	}

	cart.ChangeQuantity(item.ID, -1)
	if !cart.Empty() {
		t.Errorf("cart should be empty after quantity reaches zero")
	}

	// Below zero is the same as zero.
	cart.AddItem(item)
	cart.ChangeQuantity(item.ID, -5)
	if !cart.Empty() {
		t.Errorf("cart should be empty after quantity drops below zero")
	}
}

func TestChangeQuantityUnknownItemIsNoOp(t *testing.T) {
	cart := service.NewCart(store.Table{ID: uuid.New(), TableNumber: "1"})
	cart.AddItem(menuItem("Khao Pad", 70))

	cart.ChangeQuantity(uuid.New(), -1)

	if len(cart.Lines()) != 1 {
		t.Errorf("unknown id changed the cart")
	}
}

func TestRemoveItemDropsWholeLine(t *testing.T) {
	cart := service.NewCart(store.Table{ID: uuid.New(), TableNumber: "1"})
	item := menuItem("Chicken Satay", 65)

	cart.AddItem(item)
	cart.AddItem(item)
	cart.AddItem(item)
	cart.RemoveItem(item.ID)

	if !cart.Empty() {
		t.Errorf("remove should drop the line regardless of quantity")
	}
}

func TestTotalRecomputesFromLines(t *testing.T) {
	cart := service.NewCart(store.Table{ID: uuid.New(), TableNumber: "1"})
	padThai := menuItem("Pad Thai", 80)
	tea := menuItem("Thai Iced Tea", 35)

	cart.AddItem(padThai)
	cart.AddItem(padThai)
	cart.AddItem(tea)

	if want := decimal.NewFromInt(195); !cart.Total().Equal(want) {
		t.Errorf("total = %s, want %s", cart.Total(), want)
	}

	cart.ChangeQuantity(padThai.ID, -1)
	if want := decimal.NewFromInt(115); !cart.Total().Equal(want) {
		t.Errorf("total after change = %s, want %s", cart.Total(), want)
	}
}

func TestCartRegistrySessions(t *testing.T) {
	reg := service.NewCartRegistry()
	table := store.Table{ID: uuid.New(), TableNumber: "7"}

	id, cart := reg.Create(table)
	if cart.TableID != table.ID || cart.TableNumber != "7" {
		t.Fatalf("cart bound to wrong table: %+v", cart)
	}

	got, ok := reg.Get(id)
	if !ok || got != cart {
		t.Fatalf("registry did not return the same cart")
	}

	reg.Delete(id)
	if _, ok := reg.Get(id); ok {
		t.Errorf("cart still resolvable after delete")
	}

	// Deleting twice is fine.
	reg.Delete(id)
}
