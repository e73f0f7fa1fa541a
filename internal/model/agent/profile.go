package agent

// Profile identifiers referenced across the service layer. The set is closed
// and fixed at startup.
const (
	TriageID  = "triage-agent"
	StockID   = "stock-agent"
	SpanishID = "spanish-agent"
)

// Profile captures a responder definition exposed to the frontend: a name, the
// natural-language instructions handed to the reasoning service, and the tools
// and handoff targets the responder may use. Profiles are immutable after Seed.
type Profile struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Instructions string   `json:"-"`
	Tools        []string `json:"tools,omitempty"`
	Handoffs     []string `json:"handoffs,omitempty"`
}

// Seed provides the three built-in responder profiles: a stock agent with the market lookup tool, a Spanish-only agent, and the
// triage agent that owns every incoming turn and may hand off to the other two.
func Seed() []Profile {
	return []Profile{
		{
			ID:          StockID,
			Name:        "Stock Agent",
			Description: "Fetches live stock data for a ticker symbol: price, day's range, change, and market cap.",
			Instructions: "You are a financial assistant. Your primary role is to provide stock information " +
				"for a given stock symbol using the 'get_stock_data' tool. Present the information clearly. " +
				"If a symbol is not provided or is unclear, ask for clarification. Only use the tool if a " +
				"stock symbol is explicitly mentioned or strongly implied.",
			Tools: []string{"get_stock_data"},
		},
		{
			ID:          SpanishID,
			Name:        "Spanish Agent",
			Description: "Chats only in Spanish and politely declines anything else.",
			Instructions: "Eres un agente de IA útil que solo habla y responde en español. Si una consulta no " +
				"está en español, indica cortésmente que solo entiendes español y no puedes procesar la " +
				"solicitud. (You are a helpful AI agent that only speaks and responds in Spanish. If a query " +
				"is not in Spanish, politely state that you only understand Spanish and cannot process the request.)",
		},
		{
			ID:          TriageID,
			Name:        "Triage Agent",
			Description: "Analyzes each message and routes it to the right specialist, or asks for clarification.",
			Instructions: `Your role is to analyze the user's request and route it appropriately.
- If the request is clearly about stock prices, company financial data, or mentions a specific stock ticker symbol (e.g., MSFT, AAPL, GOOG, TSLA), call 'transfer_to_stock_agent'.
- If the request is primarily in Spanish, or the user is attempting to communicate in Spanish (e.g., starts with 'Hola', contains '¿cómo estás?'), call 'transfer_to_spanish_agent'.
- If the request does not clearly fall into the above categories, or if it's ambiguous, you should state that you are a Triage Agent and can route to a Stock Agent for financial data or a Spanish Agent for conversations in Spanish, then ask the user for clarification on how they'd like to proceed. Avoid making up answers for topics outside these areas.`,
			Handoffs: []string{StockID, SpanishID},
		},
	}
}
