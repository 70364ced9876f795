package handler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/aroi-pos/api/internal/service"
	"github.com/aroi-pos/api/internal/store"
	"github.com/go-chi/chi/v5"
)

// SalesStore defines the database methods needed by sales handlers.
// Satisfied by store.Store; narrow interface for testability.
type SalesStore interface {
	ListPaidOrders(ctx context.Context, from, to time.Time) ([]store.Order, error)
}

// SalesHandler handles the daily sales summary endpoint.
type SalesHandler struct {
	store SalesStore
	loc   *time.Location
	now   func() time.Time
}

// NewSalesHandler creates a new SalesHandler.
func NewSalesHandler(store SalesStore, loc *time.Location) *SalesHandler {
	return &SalesHandler{store: store, loc: loc, now: time.Now}
}

// SetClock overrides the "today" source. Test hook.
func (h *SalesHandler) SetClock(now func() time.Time) {
	h.now = now
}

// RegisterRoutes registers sales endpoints on the given Chi router.
// Expected to be mounted at /sales.
func (h *SalesHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.Summary)
}

// --- Response types ---

type methodStatResponse struct {
	Amount string `json:"amount"`
	Count  int    `json:"count"`
}

type paymentBreakdownResponse struct {
	Cash     methodStatResponse `json:"cash"`
	Transfer methodStatResponse `json:"transfer"`
}

type itemStatResponse struct {
	Name     string `json:"name"`
	Quantity int32  `json:"quantity"`
	Revenue  string `json:"revenue"`
}

type hourBucketResponse struct {
	Hour   int    `json:"hour"`
	Amount string `json:"amount"`
	Count  int    `json:"count"`
}

type summaryResponse struct {
	Date            string                   `json:"date"`
	TotalRevenue    string                   `json:"total_revenue"`
	OrderCount      int                      `json:"order_count"`
	ByPaymentMethod paymentBreakdownResponse `json:"by_payment_method"`
	TopItems        []itemStatResponse       `json:"top_items"`
	Hourly          []hourBucketResponse     `json:"hourly"`
}

func toSummaryResponse(s service.Summary) summaryResponse {
	resp := summaryResponse{
		Date:         s.Date,
		TotalRevenue: s.TotalRevenue.StringFixed(2),
		OrderCount:   s.OrderCount,
		ByPaymentMethod: paymentBreakdownResponse{
			Cash: methodStatResponse{
				Amount: s.ByPaymentMethod.Cash.Amount.StringFixed(2),
				Count:  s.ByPaymentMethod.Cash.Count,
			},
			Transfer: methodStatResponse{
				Amount: s.ByPaymentMethod.Transfer.Amount.StringFixed(2),
				Count:  s.ByPaymentMethod.Transfer.Count,
			},
		},
		TopItems: make([]itemStatResponse, len(s.TopItems)),
		Hourly:   make([]hourBucketResponse, len(s.Hourly)),
	}
	for i, item := range s.TopItems {
		resp.TopItems[i] = itemStatResponse{
			Name:     item.Name,
			Quantity: item.Quantity,
			Revenue:  item.Revenue.StringFixed(2),
		}
	}
	for i, hb := range s.Hourly {
		resp.Hourly[i] = hourBucketResponse{
			Hour:   hb.Hour,
			Amount: hb.Amount.StringFixed(2),
			Count:  hb.Count,
		}
	}
	return resp
}

// --- Handlers ---

// Summary returns the sales report for one calendar day in the
// restaurant's timezone: GET /sales/summary?date=2026-08-29
// Without a date parameter it reports today.
func (h *SalesHandler) Summary(w http.ResponseWriter, r *http.Request) {
	day := h.now().In(h.loc)
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateStr, h.loc)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", dateStr)})
			return
		}
		day = parsed
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, h.loc)
	end := start.AddDate(0, 0, 1)

	orders, err := h.store.ListPaidOrders(r.Context(), start, end)
	if err != nil {
		log.Printf("ERROR: list paid orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSummaryResponse(service.Summarize(orders, day, h.loc)))
}
