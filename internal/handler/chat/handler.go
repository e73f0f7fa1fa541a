package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/model/chat"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/service/ai"
	chatService "github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/service/chat"
)

// TurnRunner executes one complete reasoning cycle for a user message.
// *ai.Service satisfies it; tests substitute fakes.
type TurnRunner interface {
	RunTurn(ctx context.Context, sessionID string, history []chat.Message, userMessage string) (ai.TurnResult, error)
}

// Handler serves the session and chat-turn endpoints.
type Handler struct {
	chatSvc *chatService.Service
	runner  TurnRunner
}

// New creates the chat handler. runner may be nil when the reasoning service
// is not configured; turn endpoints then answer 503.
func New(chatSvc *chatService.Service, runner TurnRunner) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		runner:  runner,
	}
}

// RegisterRoutes mounts the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}/messages", h.handleGetTranscript)
	r.Post("/chat", h.handleChatTurn)
}

// handleCreateSession provisions a session whose transcript starts with the
// fixed greeting.
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

// handleGetTranscript returns the session transcript in chronological order.
func (h *Handler) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.LoadTranscript(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

// turnResponse is the chat-turn payload. Notice carries the operator-facing
// failure detail when the turn degraded to the generic apology.
type turnResponse struct {
	Message chat.Message `json:"message"`
	Notice  string       `json:"notice,omitempty"`
}

// handleChatTurn runs one synchronous turn: append the user message, drive the
// reasoning cycle, append the assistant reply. Failures degrade that one turn
// only; the transcript records the apology and the detail goes to Notice.
func (h *Handler) handleChatTurn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Message   string `json:"message"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.SessionID == "" {
		respondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}
	if payload.Message == "" {
		respondError(w, http.StatusBadRequest, "message is required")
		return
	}

	if h.runner == nil {
		respondError(w, http.StatusServiceUnavailable, "ai service unavailable")
		return
	}

	ctx := r.Context()

	if err := h.chatSvc.BeginTurn(ctx, payload.SessionID); err != nil {
		switch {
		case errors.Is(err, chatService.ErrSessionNotFound):
			respondError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, chatService.ErrTurnInFlight):
			respondError(w, http.StatusConflict, "a turn is already in flight for this session")
		default:
			respondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	defer h.chatSvc.FinishTurn(ctx, payload.SessionID)

	assistantMsg, notice, err := RunTurn(ctx, h.chatSvc, h.runner, payload.SessionID, payload.Message)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, turnResponse{Message: assistantMsg, Notice: notice})
}

// RunTurn appends the user message, executes the reasoning cycle and appends
// the assistant reply. A failed cycle records the apology and returns the
// failure detail as notice; the returned error covers transcript faults only.
func RunTurn(ctx context.Context, chatSvc *chatService.Service, runner TurnRunner, sessionID, userMessage string) (chat.Message, string, error) {
	history, err := chatSvc.LoadTranscript(ctx, sessionID)
	if err != nil {
		return chat.Message{}, "", err
	}

	if _, err := chatSvc.SaveMessage(ctx, chat.Message{
		SessionID: sessionID,
		Sender:    chat.SenderUser,
		Content:   userMessage,
	}); err != nil {
		return chat.Message{}, "", err
	}

	var notice string
	result, err := runner.RunTurn(ctx, sessionID, history, userMessage)
	if err != nil {
		log.Printf("[chat] turn failed for session=%s: %v", sessionID, err)
		notice = fmt.Sprintf("An error occurred while running the agent: %v", err)
		result = ai.TurnResult{Content: ai.Apology}
	}

	assistantMsg, err := chatSvc.SaveMessage(ctx, chat.Message{
		SessionID: sessionID,
		Sender:    chat.SenderAssistant,
		Content:   result.Content,
		Agent:     result.Agent,
	})
	if err != nil {
		return chat.Message{}, "", err
	}

	return assistantMsg, notice, nil
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
