package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/inkwell-live/inkwell/internal/api"
	"github.com/inkwell-live/inkwell/internal/config"
	"github.com/inkwell-live/inkwell/internal/relay"
)

func main() {
	cfg := config.FromEnv()

	hub := relay.NewHub(cfg)
	go hub.Run()

	apiHandler := api.New(hub)

	router := mux.NewRouter()
	router.HandleFunc("/health", apiHandler.HealthHandler)
	router.HandleFunc("/stats", apiHandler.StatsHandler)

	// Everything else is a room connection; the path segment names the room
	// and a bare path lands in the default room.
	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		relay.ServeWS(hub, w, r)
	})

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     corsMiddleware(router),
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	log.Printf("Inkwell relay starting on :%s", cfg.Port)
	log.Println("Endpoints:")
	log.Println("  - WebSocket: /{room}")
	log.Println("  - Health:    GET /health")
	log.Println("  - Stats:     GET /stats")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("ListenAndServe: ", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
