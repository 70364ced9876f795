package router

import (
	"net/http"

	"github.com/aroi-pos/api/internal/config"
	"github.com/aroi-pos/api/internal/handler"
	"github.com/aroi-pos/api/internal/service"
	"github.com/aroi-pos/api/internal/store"
	"github.com/aroi-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a Chi router with all application routes wired up.
func New(cfg *config.Config, st store.Store, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173", // floor app dev server
			"http://localhost:4173", // floor app preview build
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// WebSocket route for the floor screens
	r.Get("/ws/floor", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, w, r)
	})

	loc := cfg.Location()
	var events service.Publisher
	if hub != nil {
		events = hub
	}

	carts := service.NewCartRegistry()
	orderService := service.NewOrderService(st, st, events)
	settlementService := service.NewSettlementService(st, st, events)

	// Tables: CRUD, manual status edits and the billing flow
	tableHandler := handler.NewTableHandler(st, events)
	billingHandler := handler.NewBillingHandler(settlementService, cfg.RestaurantName, loc)
	r.Route("/tables", func(r chi.Router) {
		tableHandler.RegisterRoutes(r)
		billingHandler.RegisterRoutes(r)
	})

	// Menu catalog
	menuHandler := handler.NewMenuHandler(st)
	r.Route("/menu-items", menuHandler.RegisterRoutes)

	// Ordering sessions
	cartHandler := handler.NewCartHandler(st, carts, orderService)
	r.Route("/carts", cartHandler.RegisterRoutes)

	// Sales reports
	salesHandler := handler.NewSalesHandler(st, loc)
	r.Route("/sales", salesHandler.RegisterRoutes)

	return r
}
