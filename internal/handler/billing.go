package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/aroi-pos/api/internal/service"
	"github.com/aroi-pos/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// BillingHandler handles the settlement side of a table visit: the
// outstanding rounds, the merged bill, the printable receipt and the
// settle action itself.
type BillingHandler struct {
	settlement     *service.SettlementService
	restaurantName string
	loc            *time.Location
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(settlement *service.SettlementService, restaurantName string, loc *time.Location) *BillingHandler {
	return &BillingHandler{settlement: settlement, restaurantName: restaurantName, loc: loc}
}

// RegisterRoutes registers billing endpoints on the given Chi router.
// Expected to be mounted inside the /tables subrouter.
func (h *BillingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{id}/orders", h.Orders)
	r.Get("/{id}/bill", h.Bill)
	r.Get("/{id}/receipt", h.Receipt)
	r.Post("/{id}/settle", h.Settle)
}

// --- Request / Response types ---

type settleRequest struct {
	PaymentMethod string `json:"payment_method"`
}

type orderLineResponse struct {
	MenuItemID uuid.UUID `json:"menu_item_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	Quantity   int32     `json:"quantity"`
	Note       string    `json:"note,omitempty"`
}

type orderResponse struct {
	ID            uuid.UUID           `json:"id"`
	TableID       uuid.UUID           `json:"table_id"`
	TableNumber   string              `json:"table_number"`
	Lines         []orderLineResponse `json:"lines"`
	Total         string              `json:"total"`
	Status        string              `json:"status"`
	PaymentMethod string              `json:"payment_method,omitempty"`
	PaidDate      *time.Time          `json:"paid_date,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

type billResponse struct {
	TableID     uuid.UUID           `json:"table_id"`
	TableNumber string              `json:"table_number"`
	Lines       []orderLineResponse `json:"lines"`
	GrandTotal  string              `json:"grand_total"`
	Orders      []orderResponse     `json:"orders"`
}

func toOrderLineResponses(lines []store.OrderLine) []orderLineResponse {
	resp := make([]orderLineResponse, len(lines))
	for i, l := range lines {
		resp[i] = orderLineResponse{
			MenuItemID: l.MenuItemID,
			Name:       l.Name,
			Price:      l.Price.StringFixed(2),
			Quantity:   l.Quantity,
			Note:       l.Note,
		}
	}
	return resp
}

func toOrderResponse(o store.Order) orderResponse {
	return orderResponse{
		ID:            o.ID,
		TableID:       o.TableID,
		TableNumber:   o.TableNumber,
		Lines:         toOrderLineResponses(o.Lines),
		Total:         o.Total.StringFixed(2),
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		PaidDate:      o.PaidDate,
		CreatedAt:     o.CreatedAt,
	}
}

func toBillResponse(b service.Bill) billResponse {
	resp := billResponse{
		TableID:     b.TableID,
		TableNumber: b.TableNumber,
		Lines:       toOrderLineResponses(b.Lines),
		GrandTotal:  b.GrandTotal.StringFixed(2),
		Orders:      make([]orderResponse, len(b.Orders)),
	}
	for i, o := range b.Orders {
		resp.Orders[i] = toOrderResponse(o)
	}
	return resp
}

// --- Handlers ---

// Orders returns the table's outstanding rounds in creation order.
func (h *BillingHandler) Orders(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}

	orders, err := h.settlement.Outstanding(r.Context(), tableID)
	if err != nil {
		log.Printf("ERROR: list outstanding orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Bill returns the consolidated bill for the table's outstanding
// rounds: merged lines plus the per-round orders behind them.
func (h *BillingHandler) Bill(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}

	bill, err := h.settlement.ComputeBill(r.Context(), tableID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: compute bill: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toBillResponse(bill))
}

// Receipt renders the table's current bill as printable plain text.
func (h *BillingHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}

	bill, err := h.settlement.ComputeBill(r.Context(), tableID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: compute bill: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	receipt := service.FormatReceipt(h.restaurantName, bill, time.Now().In(h.loc))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(receipt)); err != nil {
		log.Printf("ERROR: write receipt: %v", err)
	}
}

// Settle marks every outstanding order PAID and frees the table.
func (h *BillingHandler) Settle(w http.ResponseWriter, r *http.Request) {
	tableID, ok := parseTableID(w, r)
	if !ok {
		return
	}

	var req settleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	table, err := h.settlement.Settle(r.Context(), tableID, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPaymentMethod):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payment_method"})
		case errors.Is(err, service.ErrNoOutstandingOrders):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "no outstanding orders for table"})
		case errors.Is(err, store.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
		default:
			log.Printf("ERROR: settle table: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, table)
}

func parseTableID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return uuid.Nil, false
	}
	return id, true
}
