package stream

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/model/chat"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/service/ai"
	chatService "github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/service/chat"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/pkg/utils"
)

// TurnRunner executes one complete reasoning cycle for a user message.
type TurnRunner interface {
	RunTurn(ctx context.Context, sessionID string, history []chat.Message, userMessage string) (ai.TurnResult, error)
}

// Handler delivers one synchronous chat turn over Server-Sent Events. The
// reasoning call itself blocks; SSE is only the delivery transport.
type Handler struct {
	runner  TurnRunner
	chatSvc *chatService.Service
}

// New creates a new stream handler.
func New(runner TurnRunner, chatSvc *chatService.Service) *Handler {
	return &Handler{
		runner:  runner,
		chatSvc: chatSvc,
	}
}

// StreamResponse represents a streamed event for one chat turn.
type StreamResponse struct {
	Event     string `json:"event"`
	Content   string `json:"content,omitempty"`
	Agent     string `json:"agent,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
	Finished  bool   `json:"finished,omitempty"`
	Error     string `json:"error,omitempty"`
}

// HandleStreamRequest runs one turn and emits start/message/end events. A
// failed reasoning cycle emits an error event with the detail while the
// transcript records only the generic apology.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	if _, err := h.chatSvc.GetSession(ctx, sessionID); err != nil {
		h.sendSSEError(w, flusher, "session not found")
		return err
	}

	if err := h.chatSvc.BeginTurn(ctx, sessionID); err != nil {
		if errors.Is(err, chatService.ErrTurnInFlight) {
			h.sendSSEError(w, flusher, "a turn is already in flight for this session")
		} else {
			h.sendSSEError(w, flusher, err.Error())
		}
		return err
	}
	defer h.chatSvc.FinishTurn(ctx, sessionID)

	history, err := h.chatSvc.LoadTranscript(ctx, sessionID)
	if err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("failed to load conversation: %v", err))
		return err
	}

	if _, err := h.chatSvc.SaveMessage(ctx, chat.Message{
		SessionID: sessionID,
		Sender:    chat.SenderUser,
		Content:   userMessage,
	}); err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("failed to save user message: %v", err))
		return err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "start",
		SessionID: sessionID,
	})

	result, runErr := h.runner.RunTurn(ctx, sessionID, history, userMessage)
	if runErr != nil {
		log.Printf("[stream] turn failed for session=%s: %v", sessionID, runErr)
		h.sendSSEError(w, flusher, fmt.Sprintf("An error occurred while running the agent: %v", runErr))
		result = ai.TurnResult{Content: ai.Apology}
	}

	if _, err := h.chatSvc.SaveMessage(ctx, chat.Message{
		SessionID: sessionID,
		Sender:    chat.SenderAssistant,
		Content:   result.Content,
		Agent:     result.Agent,
	}); err != nil {
		log.Printf("[stream] failed to save assistant message: %v", err)
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   result.Content,
		Agent:     result.Agent,
	})

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Finished:  true,
	})

	log.Printf("[stream] completed turn for session=%s agent=%s", sessionID, result.Agent)
	return nil
}

// sendSSE sends a Server-Sent Event.
func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}

// sendSSEError sends an error event via Server-Sent Events.
func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, errorMsg string) {
	h.sendSSE(w, flusher, StreamResponse{
		Event: "error",
		Error: errorMsg,
	})
}
