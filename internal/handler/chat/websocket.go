package chat

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	chatService "github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/service/chat"
)

// WebSocketHandler offers the chat turn cycle over a bidirectional socket.
// Messages on one connection are handled strictly in arrival order, so the
// one-turn-in-flight rule holds per session here as well.
type WebSocketHandler struct {
	chatSvc  *chatService.Service
	runner   TurnRunner
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates the websocket chat handler.
func NewWebSocketHandler(chatSvc *chatService.Service, runner TurnRunner) *WebSocketHandler {
	return &WebSocketHandler{
		chatSvc: chatSvc,
		runner:  runner,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterWebSocketRoutes mounts the websocket chat route.
func (h *WebSocketHandler) RegisterWebSocketRoutes(r chi.Router) {
	r.Get("/chat/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// ChatMessage is the payload of an inbound "chat" frame.
type ChatMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] connection opened for session=%s", sessionID)
	h.send(conn, outgoingMessage{
		Type:      "status",
		SessionID: sessionID,
		Data:      map[string]string{"message": "connected"},
		Timestamp: time.Now().UnixMilli(),
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error for session=%s: %v", sessionID, err)
			}
			return
		}

		switch msg.Type {
		case "chat":
			h.handleChatFrame(r, conn, sessionID, msg)
		case "ping":
			h.send(conn, outgoingMessage{
				Type:      "pong",
				SessionID: sessionID,
				Timestamp: time.Now().UnixMilli(),
			})
		default:
			h.sendError(conn, sessionID, "unsupported message type: "+msg.Type)
		}
	}
}

func (h *WebSocketHandler) handleChatFrame(r *http.Request, conn *websocket.Conn, sessionID string, msg inboundMessage) {
	var payload ChatMessage
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		h.sendError(conn, sessionID, "invalid chat payload")
		return
	}
	if payload.Text == "" {
		h.sendError(conn, sessionID, "text is required")
		return
	}

	if h.runner == nil {
		h.sendError(conn, sessionID, "ai service unavailable")
		return
	}

	ctx := r.Context()

	if err := h.chatSvc.BeginTurn(ctx, sessionID); err != nil {
		if errors.Is(err, chatService.ErrTurnInFlight) {
			h.sendError(conn, sessionID, "a turn is already in flight for this session")
		} else {
			h.sendError(conn, sessionID, err.Error())
		}
		return
	}
	defer h.chatSvc.FinishTurn(ctx, sessionID)

	assistantMsg, notice, err := RunTurn(ctx, h.chatSvc, h.runner, sessionID, payload.Text)
	if err != nil {
		h.sendError(conn, sessionID, err.Error())
		return
	}

	if notice != "" {
		h.sendError(conn, sessionID, notice)
	}

	h.send(conn, outgoingMessage{
		Type:      "message",
		SessionID: sessionID,
		Data:      assistantMsg,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (h *WebSocketHandler) send(conn *websocket.Conn, msg outgoingMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}

func (h *WebSocketHandler) sendError(conn *websocket.Conn, sessionID, message string) {
	h.send(conn, outgoingMessage{
		Type:      "error",
		SessionID: sessionID,
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().UnixMilli(),
	})
}
