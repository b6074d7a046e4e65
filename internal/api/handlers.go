// Package api exposes the relay's informational HTTP surface: a health
// check and a small stats endpoint. Neither has side effects.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/inkwell-live/inkwell/internal/relay"
)

type API struct {
	hub *relay.Hub
}

func New(hub *relay.Hub) *API {
	return &API{hub: hub}
}

func jsonResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"connections": a.hub.ClientCount(),
	})
}

func (a *API) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		errorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"active_rooms":   a.hub.RoomCount(),
		"active_clients": a.hub.ClientCount(),
		"rooms":          a.hub.ActiveRooms(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}
