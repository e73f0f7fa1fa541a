package agent

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/model/agent"
)

// Handler exposes the responder profiles backing the sidebar panel.
type Handler struct {
	profiles agent.Store
}

// New creates the agent profile handler.
func New(profiles agent.Store) *Handler {
	return &Handler{
		profiles: profiles,
	}
}

// RegisterRoutes mounts the profile routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/agents", h.handleListAgents)
}

func (h *Handler) handleListAgents(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.profiles.List())
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
