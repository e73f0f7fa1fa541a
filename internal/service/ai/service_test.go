package ai

import (
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/model/agent"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/model/chat"
)

func toolCallMessage(names ...string) *schema.Message {
	msg := &schema.Message{Role: schema.Assistant}
	for _, name := range names {
		msg.ToolCalls = append(msg.ToolCalls, schema.ToolCall{
			Function: schema.FunctionCall{Name: name},
		})
	}
	return msg
}

func TestHandoffTarget(t *testing.T) {
	cases := []struct {
		name    string
		message *schema.Message
		want    string
	}{
		{"nil message", nil, ""},
		{"no tool calls", &schema.Message{Role: schema.Assistant, Content: "please clarify"}, ""},
		{"stock handoff", toolCallMessage(transferToStock), agent.StockID},
		{"spanish handoff", toolCallMessage(transferToSpanish), agent.SpanishID},
		{"unknown tool ignored", toolCallMessage("do_something_else"), ""},
		{"first recognized wins", toolCallMessage("noop", transferToSpanish, transferToStock), agent.SpanishID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := handoffTarget(tc.message); got != tc.want {
				t.Fatalf("handoffTarget: got %q want %q", got, tc.want)
			}
		})
	}
}

func TestWithSystemShape(t *testing.T) {
	history := []chat.Message{
		{Sender: chat.SenderAssistant, Content: "hello"},
		{Sender: chat.SenderUser, Content: "hi"},
	}

	msgs := withSystem("instructions", history, "what now?")

	if len(msgs) != 4 {
		t.Fatalf("message count: got %d want 4", len(msgs))
	}
	if msgs[0].Role != schema.System || msgs[0].Content != "instructions" {
		t.Fatalf("first message must be the system prompt, got %+v", msgs[0])
	}
	if last := msgs[len(msgs)-1]; last.Role != schema.User || last.Content != "what now?" {
		t.Fatalf("last message must be the user query, got %+v", last)
	}
}

func TestHistoryMessagesWindow(t *testing.T) {
	var history []chat.Message
	for i := 0; i < historyLimit+5; i++ {
		sender := chat.SenderUser
		if i%2 == 1 {
			sender = chat.SenderAssistant
		}
		history = append(history, chat.Message{Sender: sender, Content: "msg"})
	}

	got := historyMessages(history)
	if len(got) != historyLimit {
		t.Fatalf("history window: got %d want %d", len(got), historyLimit)
	}
}

func TestHistoryMessagesSkipsUnknownSenders(t *testing.T) {
	history := []chat.Message{
		{Sender: chat.SenderUser, Content: "a"},
		{Sender: "system", Content: "b"},
		{Sender: chat.SenderAssistant, Content: "c"},
	}

	got := historyMessages(history)
	if len(got) != 2 {
		t.Fatalf("expected unknown senders dropped, got %d messages", len(got))
	}
}

func TestHandoffToolDeclarations(t *testing.T) {
	tools := handoffTools()
	if len(tools) != 2 {
		t.Fatalf("tool count: got %d want 2", len(tools))
	}

	names := map[string]bool{}
	for _, info := range tools {
		names[info.Name] = true
		if info.ParamsOneOf == nil {
			t.Fatalf("tool %s must declare parameters", info.Name)
		}
	}
	if !names[transferToStock] || !names[transferToSpanish] {
		t.Fatalf("unexpected tool names: %v", names)
	}
}
