package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	chatmodel "github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/model/chat"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/service/ai"
	chatservice "github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/service/chat"
)

type fakeRunner struct {
	result ai.TurnResult
	err    error
	calls  int
}

func (f *fakeRunner) RunTurn(_ context.Context, _ string, _ []chatmodel.Message, _ string) (ai.TurnResult, error) {
	f.calls++
	return f.result, f.err
}

func setupRouter(runner TurnRunner) (*chi.Mux, *chatservice.Service) {
	chatSvc := chatservice.NewService()
	handler := New(chatSvc, runner)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, chatSvc
}

func createSession(t *testing.T, r *chi.Mux) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/session", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("create session: expected 201, got %d", resp.Code)
	}

	var session chatmodel.Session
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.ID == "" {
		t.Fatal("session ID must not be empty")
	}
	return session.ID
}

func postTurn(r *chi.Mux, sessionID, message string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"sessionId": sessionID, "message": message})
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestGetTranscriptSeededGreeting(t *testing.T) {
	r, _ := setupRouter(&fakeRunner{})
	sessionID := createSession(t, r)

	req := httptest.NewRequest(http.MethodGet, "/session/"+sessionID+"/messages", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var messages []chatmodel.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &messages); err != nil {
		t.Fatalf("decode transcript: %v", err)
	}
	if len(messages) != 1 || messages[0].Content != chatservice.Greeting {
		t.Fatalf("expected seeded greeting, got %+v", messages)
	}
}

func TestGetTranscriptUnknownSession(t *testing.T) {
	r, _ := setupRouter(&fakeRunner{})

	req := httptest.NewRequest(http.MethodGet, "/session/missing/messages", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestChatTurnSuccess(t *testing.T) {
	runner := &fakeRunner{result: ai.TurnResult{Agent: "Stock Agent", Content: "Stock: Apple Inc. (AAPL), Current Price: $190.50"}}
	r, chatSvc := setupRouter(runner)
	sessionID := createSession(t, r)

	resp := postTurn(r, sessionID, "What's the price of AAPL?")

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Message chatmodel.Message `json:"message"`
		Notice  string            `json:"notice"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Message.Agent != "Stock Agent" {
		t.Fatalf("agent: got %q", payload.Message.Agent)
	}
	if payload.Notice != "" {
		t.Fatalf("unexpected notice: %q", payload.Notice)
	}
	if runner.calls != 1 {
		t.Fatalf("runner calls: got %d want 1", runner.calls)
	}

	messages, _ := chatSvc.LoadTranscript(context.Background(), sessionID)
	if len(messages) != 3 {
		t.Fatalf("transcript length: got %d want 3", len(messages))
	}
	if messages[1].Sender != chatmodel.SenderUser || messages[2].Sender != chatmodel.SenderAssistant {
		t.Fatalf("transcript order wrong: %+v", messages)
	}
}

func TestChatTurnRunnerFailureDegradesToApology(t *testing.T) {
	runner := &fakeRunner{err: errors.New("upstream timeout")}
	r, chatSvc := setupRouter(runner)
	sessionID := createSession(t, r)

	resp := postTurn(r, sessionID, "Tell me a joke")

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var payload struct {
		Message chatmodel.Message `json:"message"`
		Notice  string            `json:"notice"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Message.Content != ai.Apology {
		t.Fatalf("expected apology, got %q", payload.Message.Content)
	}
	if payload.Notice == "" {
		t.Fatal("notice must carry the failure detail")
	}

	messages, _ := chatSvc.LoadTranscript(context.Background(), sessionID)
	last := messages[len(messages)-1]
	if last.Content != ai.Apology {
		t.Fatalf("transcript must record only the apology, got %q", last.Content)
	}
}

func TestChatTurnUnknownSession(t *testing.T) {
	r, _ := setupRouter(&fakeRunner{})

	resp := postTurn(r, "missing", "hello")

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestChatTurnWithoutRunner(t *testing.T) {
	r, _ := setupRouter(nil)
	sessionID := createSession(t, r)

	resp := postTurn(r, sessionID, "hello")

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestChatTurnRejectsConcurrentTurn(t *testing.T) {
	r, chatSvc := setupRouter(&fakeRunner{})
	sessionID := createSession(t, r)

	if err := chatSvc.BeginTurn(context.Background(), sessionID); err != nil {
		t.Fatalf("BeginTurn err: %v", err)
	}

	resp := postTurn(r, sessionID, "hello")

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.Code)
	}
}

func TestChatTurnValidation(t *testing.T) {
	r, _ := setupRouter(&fakeRunner{})
	sessionID := createSession(t, r)

	cases := []struct {
		name string
		body string
	}{
		{"malformed body", "{"},
		{"missing session", `{"message":"hi"}`},
		{"missing message", `{"sessionId":"` + sessionID + `"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte(tc.body)))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, req)

			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
		})
	}
}
