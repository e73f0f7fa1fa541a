package market

import (
	"context"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
)

// ToolName is the identifier the stock agent's instructions refer to.
const ToolName = "get_stock_data"

const toolDesc = "Fetches key stock data for a given ticker symbol: name, current price, " +
	"day's high/low, change, and market cap. Returns an error message when data is not found."

type lookupArgs struct {
	Symbol string `json:"symbol" jsonschema:"description=Ticker symbol to look up; for example AAPL or MSFT"`
}

// NewLookupTool wraps Lookup as an eino invokable tool so the reasoning
// service can call it during a turn. The tool itself never errors; lookup
// failures surface as plain text for the model to relay.
func NewLookupTool(provider Provider) (tool.InvokableTool, error) {
	return utils.InferTool(ToolName, toolDesc, func(ctx context.Context, args *lookupArgs) (string, error) {
		return Lookup(ctx, provider, args.Symbol), nil
	})
}
