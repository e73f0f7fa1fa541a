package market

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dustin/go-humanize"
)

// Summarize renders a single human-readable line for the quote, or a
// descriptive message when the document carries no usable price.
//
// Format: "Stock: {name} ({symbol}), Current Price: $x.xx, Day's Range:
// $lo.xx - $hi.xx, Change: $c.cc (p.pp%), Market Cap: $n,nnn" with the range,
// change and market-cap parts present only when the underlying fields are.
func Summarize(symbol string, quote Quote) string {
	price, ok := quote.Price()
	if !ok {
		return fmt.Sprintf("Could not find valid market data for symbol: %s.", symbol)
	}

	name := quote.DisplayName(symbol)
	parts := []string{
		fmt.Sprintf("Stock: %s (%s)", name, symbol),
		fmt.Sprintf("Current Price: $%.2f", price),
	}

	if quote.DayHigh != nil && quote.DayLow != nil {
		parts = append(parts, fmt.Sprintf("Day's Range: $%.2f - $%.2f", *quote.DayLow, *quote.DayHigh))
	}

	if quote.PreviousClose != nil {
		change := price - *quote.PreviousClose
		// A zero previous close renders as 0.00% rather than dividing by zero.
		percent := 0.0
		if *quote.PreviousClose != 0 {
			percent = change / *quote.PreviousClose * 100
		}
		parts = append(parts, fmt.Sprintf("Change: $%.2f (%.2f%%)", change, percent))
	}

	if quote.MarketCap != nil {
		parts = append(parts, fmt.Sprintf("Market Cap: $%s", humanize.Comma(*quote.MarketCap)))
	}

	return strings.Join(parts, ", ")
}

// Lookup fetches and summarizes market data for symbol. It never fails: any
// provider error is logged and collapsed into a uniform error message, so the
// caller always receives model-visible text.
func Lookup(ctx context.Context, provider Provider, symbol string) string {
	quote, err := provider.Fetch(ctx, symbol)
	if err != nil {
		log.Printf("[market] lookup failed for %s: %v", symbol, err)
		return fmt.Sprintf("Error fetching data for %s. Please ensure the symbol is correct and try again.", symbol)
	}
	return Summarize(symbol, quote)
}
