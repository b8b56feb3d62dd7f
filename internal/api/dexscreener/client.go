package dexscreener

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/TokenScout/internal/chain"
	"github.com/Alias1177/TokenScout/internal/normalize"
	httpClient "github.com/Alias1177/TokenScout/internal/platform/http"
)

// DefaultBaseURL is the public DexScreener API
const DefaultBaseURL = "https://api.dexscreener.com"

var (
	// ErrNoPairs is returned when the query matched no trading pair
	ErrNoPairs = errors.New("dexscreener: no pairs found")
	// ErrEmptyQuery is returned for blank queries
	ErrEmptyQuery = errors.New("dexscreener: empty query")
)

// Client is the DexScreener API client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new DexScreener client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	RetryInterval   time.Duration
}

// NewClient creates a new DexScreener API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
		RetryInterval:   options.RetryInterval,
	}

	baseURL := strings.TrimRight(options.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "dexscreener_client").Logger(),
	}
}

// Lookup returns the most liquid pair for query. Addresses go through the
// tokens endpoint, anything else through search.
func (c *Client) Lookup(ctx context.Context, query string) (map[string]any, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	var endpoint string
	if chain.IsAddress(query) {
		endpoint = fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, url.PathEscape(query))
	} else {
		endpoint = fmt.Sprintf("%s/latest/dex/search?q=%s", c.baseURL, url.QueryEscape(query))
	}

	c.logger.Debug().Str("url", endpoint).Msg("Fetching pairs")

	var payload map[string]any
	if err := c.httpClient.GetJSON(ctx, endpoint, &payload); err != nil {
		return nil, fmt.Errorf("dexscreener lookup %q: %w", query, err)
	}

	var address string
	if chain.IsAddress(query) {
		address = query
	}

	pairs := pairsOf(payload)
	best := BestPair(pairs, address)
	if best == nil {
		c.logger.Debug().Str("query", query).Msg("No pairs in response")
		return nil, ErrNoPairs
	}

	c.logger.Debug().
		Int("pairs", len(pairs)).
		Str("pair", normalize.Text(best, "pairAddress")).
		Str("chain", normalize.Text(best, "chainId")).
		Msg("Selected pair")
	return best, nil
}

// BestPair picks the pair with the highest USD liquidity. When address is set,
// only pairs trading that token qualify: base-side pairs first, then quote-side
// pairs re-oriented by AsBase. Nil means no pair trades the token.
func BestPair(pairs []map[string]any, address string) map[string]any {
	if address == "" {
		return mostLiquid(pairs)
	}

	var based, quoted []map[string]any
	for _, p := range pairs {
		switch {
		case strings.EqualFold(normalize.Text(p, "baseToken", "address"), address):
			based = append(based, p)
		case strings.EqualFold(normalize.Text(p, "quoteToken", "address"), address):
			quoted = append(quoted, p)
		}
	}

	if best := mostLiquid(based); best != nil {
		return best
	}
	if best := mostLiquid(quoted); best != nil {
		return AsBase(best)
	}
	return nil
}

// AsBase returns a copy of a quote-side pair with the two tokens swapped.
// Price, market cap and FDV describe the other token and are dropped; pool
// liquidity and pair volume are kept.
func AsBase(pair map[string]any) map[string]any {
	out := make(map[string]any, len(pair))
	for k, v := range pair {
		switch k {
		case "priceUsd", "priceNative", "marketCap", "fdv":
			continue
		}
		out[k] = v
	}
	out["baseToken"], out["quoteToken"] = pair["quoteToken"], pair["baseToken"]
	out[QuoteSideKey] = true
	return out
}

// QuoteSideKey marks pairs re-oriented by AsBase
const QuoteSideKey = "quoteSide"

func mostLiquid(pairs []map[string]any) map[string]any {
	var best map[string]any
	bestLiquidity := -1.0
	for _, p := range pairs {
		liq := normalize.Float(p, "liquidity", "usd")
		if liq > bestLiquidity {
			best, bestLiquidity = p, liq
		}
	}
	return best
}

// pairsOf extracts pair objects from either {"pairs": [...]} or {"pair": {...}}
func pairsOf(payload map[string]any) []map[string]any {
	var pairs []map[string]any
	if raw, ok := normalize.Lookup(payload, "pairs"); ok {
		if list, ok := raw.([]any); ok {
			for _, item := range list {
				if p, ok := item.(map[string]any); ok {
					pairs = append(pairs, p)
				}
			}
		}
	}
	if raw, ok := normalize.Lookup(payload, "pair"); ok {
		if p, ok := raw.(map[string]any); ok {
			pairs = append(pairs, p)
		}
	}
	return pairs
}
