package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/config"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/model/agent"
	"github.com/ryanklapperhakkoda/ai-bootcamp-assignment-2/internal/model/chat"
)

// Handoff declarations surfaced to the triage model. The reasoning service
// decides whether to call one; this code only inspects the resulting tool call.
const (
	transferToStock   = "transfer_to_stock_agent"
	transferToSpanish = "transfer_to_spanish_agent"
)

// historyLimit caps how many transcript messages accompany each turn.
const historyLimit = 10

// Apology is the only text a failed turn leaves in the transcript; the
// failure detail travels on the operator notice channel instead.
const Apology = "Sorry, I encountered an error processing your request."

// TurnResult is the outcome of one completed reasoning cycle.
type TurnResult struct {
	Agent   string `json:"agent"`
	Content string `json:"content"`
}

// Service drives one conversational turn through the hosted reasoning
// service: the triage model owns every turn and may hand off to the stock
// agent (react loop with the market lookup tool) or the Spanish agent.
type Service struct {
	triage  model.ToolCallingChatModel
	stock   *react.Agent
	spanish compose.Runnable[map[string]any, *schema.Message]

	triageProfile  agent.Profile
	stockProfile   agent.Profile
	spanishProfile agent.Profile
}

// NewService wires the chat model, the handoff declarations, the stock react
// agent and the Spanish chain from configuration and the seeded profiles.
func NewService(ctx context.Context, cfg config.AIConfig, profiles agent.Store, lookupTool tool.InvokableTool) (*Service, error) {
	base, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	triageProfile, ok := profiles.FindByID(agent.TriageID)
	if !ok {
		return nil, fmt.Errorf("triage profile %q not seeded", agent.TriageID)
	}
	stockProfile, ok := profiles.FindByID(agent.StockID)
	if !ok {
		return nil, fmt.Errorf("stock profile %q not seeded", agent.StockID)
	}
	spanishProfile, ok := profiles.FindByID(agent.SpanishID)
	if !ok {
		return nil, fmt.Errorf("spanish profile %q not seeded", agent.SpanishID)
	}

	triageModel, err := base.WithTools(handoffTools())
	if err != nil {
		return nil, fmt.Errorf("failed to bind handoff tools: %w", err)
	}

	stockAgent, err := react.NewAgent(ctx, &react.AgentConfig{
		ToolCallingModel: base,
		ToolsConfig: compose.ToolsNodeConfig{
			Tools: []tool.BaseTool{lookupTool},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build stock agent: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(base)

	spanishChain, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile spanish chain: %w", err)
	}

	return &Service{
		triage:         triageModel,
		stock:          stockAgent,
		spanish:        spanishChain,
		triageProfile:  triageProfile,
		stockProfile:   stockProfile,
		spanishProfile: spanishProfile,
	}, nil
}

// RunTurn synchronously drives one complete reasoning cycle for the latest
// user message and returns the final text along with the responding agent's
// name. The handoff decision belongs entirely to the reasoning service.
func (s *Service) RunTurn(ctx context.Context, sessionID string, history []chat.Message, userMessage string) (TurnResult, error) {
	decision, err := s.triage.Generate(ctx, withSystem(s.triageProfile.Instructions, history, userMessage))
	if err != nil {
		return TurnResult{}, fmt.Errorf("triage failed: %w", err)
	}

	target := handoffTarget(decision)
	log.Printf("[ai] session=%s triage target=%s", sessionID, targetLabel(target))

	switch target {
	case agent.StockID:
		response, err := s.stock.Generate(ctx, withSystem(s.stockProfile.Instructions, history, userMessage))
		if err != nil {
			return TurnResult{}, fmt.Errorf("stock agent failed: %w", err)
		}
		return TurnResult{Agent: s.stockProfile.Name, Content: response.Content}, nil

	case agent.SpanishID:
		response, err := s.spanish.Invoke(ctx, map[string]any{
			"system":  s.spanishProfile.Instructions,
			"history": historyMessages(history),
			"query":   userMessage,
		})
		if err != nil {
			return TurnResult{}, fmt.Errorf("spanish agent failed: %w", err)
		}
		return TurnResult{Agent: s.spanishProfile.Name, Content: response.Content}, nil

	default:
		content := decision.Content
		if content == "" {
			// The model neither handed off nor produced text; fall back to the
			// clarification the triage instructions describe.
			content = "I'm a Triage Agent. I can route you to a Stock Agent for financial data " +
				"or a Spanish Agent for conversations in Spanish. How would you like to proceed?"
		}
		return TurnResult{Agent: s.triageProfile.Name, Content: content}, nil
	}
}

// handoffTarget maps the first recognized handoff tool call to a profile ID.
// An empty result means the triage agent kept the turn.
func handoffTarget(message *schema.Message) string {
	if message == nil {
		return ""
	}
	for _, call := range message.ToolCalls {
		switch call.Function.Name {
		case transferToStock:
			return agent.StockID
		case transferToSpanish:
			return agent.SpanishID
		}
	}
	return ""
}

func targetLabel(target string) string {
	if target == "" {
		return "self"
	}
	return target
}

func handoffTools() []*schema.ToolInfo {
	params := func() *schema.ParamsOneOf {
		return schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"reason": {
				Type: schema.String,
				Desc: "Brief reason for the handoff.",
			},
		})
	}

	return []*schema.ToolInfo{
		{
			Name:        transferToStock,
			Desc:        "Hand the conversation off to the Stock Agent for stock prices and company financial data.",
			ParamsOneOf: params(),
		},
		{
			Name:        transferToSpanish,
			Desc:        "Hand the conversation off to the Spanish Agent for conversations in Spanish.",
			ParamsOneOf: params(),
		},
	}
}

// withSystem assembles the model input: instructions, capped history, then the
// latest user message.
func withSystem(instructions string, history []chat.Message, userMessage string) []*schema.Message {
	messages := make([]*schema.Message, 0, historyLimit+2)
	messages = append(messages, schema.SystemMessage(instructions))
	messages = append(messages, historyMessages(history)...)
	return append(messages, schema.UserMessage(userMessage))
}

func historyMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	startIdx := 0
	if len(messages) > historyLimit {
		startIdx = len(messages) - historyLimit
	}

	history := make([]*schema.Message, 0, len(messages)-startIdx)
	for _, msg := range messages[startIdx:] {
		switch msg.Sender {
		case chat.SenderUser:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.SenderAssistant:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return history
}
