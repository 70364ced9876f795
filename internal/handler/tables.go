package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/aroi-pos/api/internal/enum"
	"github.com/aroi-pos/api/internal/service"
	"github.com/aroi-pos/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// TablesStore defines the database methods needed by table handlers.
// Satisfied by store.Store; narrow interface for testability.
// ListOutstandingOrders backs the desync warning on manual status edits.
type TablesStore interface {
	ListTables(ctx context.Context) ([]store.Table, error)
	GetTable(ctx context.Context, id uuid.UUID) (store.Table, error)
	CreateTable(ctx context.Context, arg store.CreateTableParams) (store.Table, error)
	UpdateTable(ctx context.Context, arg store.UpdateTableParams) (store.Table, error)
	UpdateTableStatus(ctx context.Context, id uuid.UUID, status string) (store.Table, error)
	DeleteTable(ctx context.Context, id uuid.UUID) error
	ListOutstandingOrders(ctx context.Context, tableID uuid.UUID) ([]store.Order, error)
}

// TableHandler handles floor table CRUD and manual status edits.
type TableHandler struct {
	store  TablesStore
	events service.Publisher
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(store TablesStore, events service.Publisher) *TableHandler {
	return &TableHandler{store: store, events: events}
}

// RegisterRoutes registers table endpoints on the given Chi router.
// Expected to be mounted at /tables.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Patch("/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type createTableRequest struct {
	TableNumber string `json:"table_number"`
	Seats       int32  `json:"seats"`
}

type updateTableRequest struct {
	TableNumber string `json:"table_number"`
	Seats       int32  `json:"seats"`
	Status      string `json:"status"`
}

type updateTableStatusRequest struct {
	Status string `json:"status"`
}

// tableStatusResponse carries the updated table plus an advisory
// warning when a manual edit leaves the table out of step with its
// outstanding orders. The edit itself always goes through.
type tableStatusResponse struct {
	store.Table
	Warning string `json:"warning,omitempty"`
}

// --- Helpers ---

func isValidTableStatus(status string) bool {
	switch status {
	case enum.TableStatusEmpty, enum.TableStatusOccupied, enum.TableStatusAwaitingPayment:
		return true
	}
	return false
}

// --- Handlers ---

// List returns every table sorted by table number.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListTables(r.Context())
	if err != nil {
		log.Printf("ERROR: list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, tables)
}

// Get returns a single table by ID.
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	table, err := h.store.GetTable(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: get table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, table)
}

// Create adds a new table to the floor. New tables start EMPTY.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TableNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_number is required"})
		return
	}
	if req.Seats <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seats must be > 0"})
		return
	}

	table, err := h.store.CreateTable(r.Context(), store.CreateTableParams{
		TableNumber: req.TableNumber,
		Seats:       req.Seats,
	})
	if err != nil {
		log.Printf("ERROR: create table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, table)
}

// Update replaces a table's number, seats and status.
func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	var req updateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TableNumber == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_number is required"})
		return
	}
	if req.Seats <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seats must be > 0"})
		return
	}
	if !isValidTableStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	table, err := h.store.UpdateTable(r.Context(), store.UpdateTableParams{
		ID:          id,
		TableNumber: req.TableNumber,
		Seats:       req.Seats,
		Status:      req.Status,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: update table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if h.events != nil {
		h.events.Publish("table_updated", table)
	}

	writeJSON(w, http.StatusOK, h.withDesyncWarning(r.Context(), table))
}

// Delete removes a table from the floor. Its orders are kept as sales
// records.
func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	if err := h.store.DeleteTable(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: delete table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateStatus manually sets a table's status. This is the staff escape
// hatch for walk-outs and mistakes: it bypasses the order lifecycle, so
// the response warns when the new status disagrees with the table's
// outstanding orders.
func (h *TableHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	var req updateTableStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if !isValidTableStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	table, err := h.store.UpdateTableStatus(r.Context(), id, req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: update table status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if h.events != nil {
		h.events.Publish("table_updated", table)
	}

	writeJSON(w, http.StatusOK, h.withDesyncWarning(r.Context(), table))
}

func (h *TableHandler) withDesyncWarning(ctx context.Context, table store.Table) tableStatusResponse {
	resp := tableStatusResponse{Table: table}
	if table.Status != enum.TableStatusEmpty {
		return resp
	}

	outstanding, err := h.store.ListOutstandingOrders(ctx, table.ID)
	if err != nil {
		log.Printf("ERROR: check outstanding orders for table %s: %v", table.ID, err)
		return resp
	}
	if len(outstanding) > 0 {
		resp.Warning = "table marked EMPTY with unpaid orders outstanding"
	}
	return resp
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}
