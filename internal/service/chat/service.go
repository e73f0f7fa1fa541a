package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/model/chat"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTurnInFlight    = errors.New("a turn is already in flight for this session")
)

// Greeting seeds every new transcript and describes the two supported use cases.
const Greeting = "Hello! How can I assist you today? I can fetch stock data " +
	"(e.g., 'What's the price of GOOGL?') or chat in Spanish (e.g., 'Hola')."

// Service encapsulates conversation state management. Transcripts are
// append-only and live for the duration of the process.
type Service struct {
	mu         sync.RWMutex
	sessions   map[string]chat.Session
	messages   map[string][]chat.Message
	processing map[string]bool
}

// NewService bootstraps the in-memory chat service.
func NewService() *Service {
	return &Service{
		sessions:   make(map[string]chat.Session),
		messages:   make(map[string][]chat.Message),
		processing: make(map[string]bool),
	}
}

// CreateSession provisions an anonymous session and seeds its transcript with
// the fixed greeting.
func (s *Service) CreateSession(_ context.Context) (chat.Session, error) {
	session := chat.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}

	greeting := chat.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Sender:    chat.SenderAssistant,
		Content:   Greeting,
		CreatedAt: session.CreatedAt,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = append(make([]chat.Message, 0, 16), greeting)
	s.mu.Unlock()

	return session, nil
}

// BeginTurn moves the session from idle to processing. It fails with
// ErrTurnInFlight while a previous turn has not finished, so at most one turn
// is in flight per session.
func (s *Service) BeginTurn(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	if s.processing[sessionID] {
		return ErrTurnInFlight
	}
	s.processing[sessionID] = true
	return nil
}

// FinishTurn returns the session to idle. Safe to call on an idle session.
func (s *Service) FinishTurn(_ context.Context, sessionID string) {
	s.mu.Lock()
	delete(s.processing, sessionID)
	s.mu.Unlock()
}

// SaveMessage appends a message to the session transcript.
func (s *Service) SaveMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	return message, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// LoadTranscript returns stored messages for the provided session in
// chronological order.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}
