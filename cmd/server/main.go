package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/aroi-pos/api/internal/config"
	"github.com/aroi-pos/api/internal/router"
	"github.com/aroi-pos/api/internal/store"
	"github.com/aroi-pos/api/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, store.NewPostgres(pool), hub)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
