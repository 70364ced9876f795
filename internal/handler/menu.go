package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/aroi-pos/api/internal/enum"
	"github.com/aroi-pos/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItemStore defines the database methods needed by menu handlers.
// Satisfied by store.Store; narrow interface for testability.
type MenuItemStore interface {
	ListMenuItems(ctx context.Context) ([]store.MenuItem, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (store.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg store.CreateMenuItemParams) (store.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg store.UpdateMenuItemParams) (store.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) error
}

// MenuHandler handles menu catalog CRUD endpoints.
type MenuHandler struct {
	store MenuItemStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuItemStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterRoutes registers menu endpoints on the given Chi router.
// Expected to be mounted at /menu-items.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type menuItemRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Price         string `json:"price"`
	Category      string `json:"category"`
	ImageURL      string `json:"image_url"`
	IsRecommended bool   `json:"is_recommended"`
	IsAvailable   bool   `json:"is_available"`
}

type menuItemResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         string    `json:"price"`
	Category      string    `json:"category"`
	ImageURL      string    `json:"image_url"`
	IsRecommended bool      `json:"is_recommended"`
	IsAvailable   bool      `json:"is_available"`
}

func toMenuItemResponse(m store.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:            m.ID,
		Name:          m.Name,
		Description:   m.Description,
		Price:         m.Price.StringFixed(2),
		Category:      m.Category,
		ImageURL:      m.ImageURL,
		IsRecommended: m.IsRecommended,
		IsAvailable:   m.IsAvailable,
	}
}

// --- Helpers ---

func isValidCategory(category string) bool {
	switch category {
	case enum.MenuCategoryMain, enum.MenuCategorySnack, enum.MenuCategoryDessert, enum.MenuCategoryDrink:
		return true
	}
	return false
}

var errNegativePrice = errors.New("negative price")

func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if d.IsNegative() {
		return decimal.Decimal{}, errNegativePrice
	}
	return d, nil
}

func (h *MenuHandler) parseRequest(r *http.Request) (menuItemRequest, decimal.Decimal, string) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, decimal.Decimal{}, "invalid request body"
	}

	if req.Name == "" {
		return req, decimal.Decimal{}, "name is required"
	}
	if req.Price == "" {
		return req, decimal.Decimal{}, "price is required"
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			return req, decimal.Decimal{}, "price must be >= 0"
		}
		return req, decimal.Decimal{}, "invalid price"
	}
	if !isValidCategory(req.Category) {
		return req, decimal.Decimal{}, "invalid category"
	}
	return req, price, ""
}

// --- Handlers ---

// List returns the menu catalog, optionally filtered by availability
// and category: ?available=true&category=MAIN
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMenuItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	availableOnly := r.URL.Query().Get("available") == "true"
	category := r.URL.Query().Get("category")

	resp := make([]menuItemResponse, 0, len(items))
	for _, m := range items {
		if availableOnly && !m.IsAvailable {
			continue
		}
		if category != "" && m.Category != category {
			continue
		}
		resp = append(resp, toMenuItemResponse(m))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single menu item by ID.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Create adds a new item to the catalog.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, price, msg := h.parseRequest(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), store.CreateMenuItemParams{
		Name:          req.Name,
		Description:   req.Description,
		Price:         price,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
		IsRecommended: req.IsRecommended,
		IsAvailable:   req.IsAvailable,
	})
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
}

// Update replaces a catalog item. Existing order lines keep their
// snapshot name and price.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	req, price, msg := h.parseRequest(r)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	item, err := h.store.UpdateMenuItem(r.Context(), store.UpdateMenuItemParams{
		ID:            id,
		Name:          req.Name,
		Description:   req.Description,
		Price:         price,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
		IsRecommended: req.IsRecommended,
		IsAvailable:   req.IsAvailable,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// Delete removes an item from the catalog.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	if err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
