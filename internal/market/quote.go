package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Quote is the subset of the provider's quote document this service consumes.
// Every field is optional; absent fields decode as nil and the summary layer
// degrades gracefully.
type Quote struct {
	Symbol             string   `json:"symbol,omitempty"`
	LongName           *string  `json:"longName,omitempty"`
	ShortName          *string  `json:"shortName,omitempty"`
	CurrentPrice       *float64 `json:"currentPrice,omitempty"`
	RegularMarketPrice *float64 `json:"regularMarketPrice,omitempty"`
	DayHigh            *float64 `json:"dayHigh,omitempty"`
	DayLow             *float64 `json:"dayLow,omitempty"`
	PreviousClose      *float64 `json:"previousClose,omitempty"`
	MarketCap          *int64   `json:"marketCap,omitempty"`
}

// Price returns the display price, preferring the realtime field over the
// regular-market one. The second return reports whether any price exists.
func (q Quote) Price() (float64, bool) {
	if q.CurrentPrice != nil {
		return *q.CurrentPrice, true
	}
	if q.RegularMarketPrice != nil {
		return *q.RegularMarketPrice, true
	}
	return 0, false
}

// DisplayName resolves the human-readable name: long name, then short name,
// then the raw symbol.
func (q Quote) DisplayName(symbol string) string {
	if q.LongName != nil && *q.LongName != "" {
		return *q.LongName
	}
	if q.ShortName != nil && *q.ShortName != "" {
		return *q.ShortName
	}
	return symbol
}

// Provider fetches a quote document for a single ticker symbol.
type Provider interface {
	Fetch(ctx context.Context, symbol string) (Quote, error)
}

// ErrNotConfigured is returned when no provider base URL was supplied.
var ErrNotConfigured = errors.New("market data provider not configured")

// HTTPProvider queries a yfinance-style quote endpoint over HTTP:
// GET {base}/quote/{SYMBOL} returning a flat JSON info document.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProvider builds a provider against the given base URL. The timeout
// bounds the whole request; there is no retry.
func NewHTTPProvider(baseURL string, timeout time.Duration) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the quote document for symbol. Symbols are upper-cased
// before the request, matching provider expectations.
func (p *HTTPProvider) Fetch(ctx context.Context, symbol string) (Quote, error) {
	if p.baseURL == "" {
		return Quote{}, ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/quote/%s", p.baseURL, url.PathEscape(strings.ToUpper(strings.TrimSpace(symbol))))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Quote{}, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Quote{}, fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quote{}, fmt.Errorf("quote endpoint returned status %d", resp.StatusCode)
	}

	var quote Quote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return Quote{}, fmt.Errorf("decode quote document: %w", err)
	}
	return quote, nil
}
