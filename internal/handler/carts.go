package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/aroi-pos/api/internal/service"
	"github.com/aroi-pos/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CartStore defines the database methods needed by cart handlers.
// Satisfied by store.Store; narrow interface for testability.
type CartStore interface {
	GetTable(ctx context.Context, id uuid.UUID) (store.Table, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (store.MenuItem, error)
}

// CartHandler handles the per-table ordering session: opening a cart,
// editing its lines and submitting it as an order round.
type CartHandler struct {
	store  CartStore
	carts  *service.CartRegistry
	orders *service.OrderService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(store CartStore, carts *service.CartRegistry, orders *service.OrderService) *CartHandler {
	return &CartHandler{store: store, carts: carts, orders: orders}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
// Expected to be mounted at /carts.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/items", h.AddItem)
	r.Patch("/{id}/items/{itemID}", h.ChangeQuantity)
	r.Delete("/{id}/items/{itemID}", h.RemoveItem)
	r.Post("/{id}/submit", h.Submit)
}

// --- Request / Response types ---

type createCartRequest struct {
	TableID string `json:"table_id"`
}

type addCartItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
}

type changeQuantityRequest struct {
	Delta int32 `json:"delta"`
}

type cartResponse struct {
	CartID      uuid.UUID           `json:"cart_id"`
	TableID     uuid.UUID           `json:"table_id"`
	TableNumber string              `json:"table_number"`
	Lines       []orderLineResponse `json:"lines"`
	Total       string              `json:"total"`
}

func toCartResponse(id uuid.UUID, cart *service.Cart) cartResponse {
	return cartResponse{
		CartID:      id,
		TableID:     cart.TableID,
		TableNumber: cart.TableNumber,
		Lines:       toOrderLineResponses(cart.Lines()),
		Total:       cart.Total().StringFixed(2),
	}
}

// --- Handlers ---

// Create opens an ordering session for a table.
func (h *CartHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	tableID, err := uuid.Parse(req.TableID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table_id"})
		return
	}

	table, err := h.store.GetTable(r.Context(), tableID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: get table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	id, cart := h.carts.Create(table)
	writeJSON(w, http.StatusCreated, toCartResponse(id, cart))
}

// Get returns the cart's current lines and running total.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.resolveCart(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, toCartResponse(id, cart))
}

// Delete cancels the ordering session. Nothing is persisted.
func (h *CartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart ID"})
		return
	}

	h.carts.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// AddItem puts one unit of a menu item in the cart. Unavailable items
// are rejected; the line snapshots the item's current name and price.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.resolveCart(w, r)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	menuItemID, err := uuid.Parse(req.MenuItemID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu_item_id"})
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), menuItemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if !item.IsAvailable {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "menu item is not available"})
		return
	}

	cart.AddItem(item)
	writeJSON(w, http.StatusOK, toCartResponse(id, cart))
}

// ChangeQuantity adjusts a line's quantity by delta. The line is
// dropped when the result reaches zero.
func (h *CartHandler) ChangeQuantity(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.resolveCart(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req changeQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Delta == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "delta must be non-zero"})
		return
	}

	cart.ChangeQuantity(itemID, req.Delta)
	writeJSON(w, http.StatusOK, toCartResponse(id, cart))
}

// RemoveItem drops a whole line from the cart.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, cart, ok := h.resolveCart(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	cart.RemoveItem(itemID)
	writeJSON(w, http.StatusOK, toCartResponse(id, cart))
}

// Submit persists the cart as an order round. On success the cart is
// emptied but the session stays open for the table's next round.
func (h *CartHandler) Submit(w http.ResponseWriter, r *http.Request) {
	_, cart, ok := h.resolveCart(w, r)
	if !ok {
		return
	}

	order, err := h.orders.Submit(r.Context(), cart)
	if err != nil {
		if errors.Is(err, service.ErrEmptyCart) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart has no items"})
			return
		}
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: submit cart: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order))
}

func (h *CartHandler) resolveCart(w http.ResponseWriter, r *http.Request) (uuid.UUID, *service.Cart, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart ID"})
		return uuid.Nil, nil, false
	}

	cart, ok := h.carts.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart not found"})
		return uuid.Nil, nil, false
	}
	return id, cart, true
}
