package dexscreener

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/TokenScout/internal/normalize"
)

const pepe = "0x6982508145454Ce325dDbE47a25d4ec3d2311933"

const tokensResponse = `{
	"schemaVersion": "1.0.0",
	"pairs": [
		{"chainId": "ethereum", "pairAddress": "0xsmall", "baseToken": {"address": "0x6982508145454ce325ddbe47a25d4ec3d2311933", "symbol": "PEPE"}, "liquidity": {"usd": 1000}},
		{"chainId": "ethereum", "pairAddress": "0xquote", "baseToken": {"address": "0x1111111111111111111111111111111111111111", "symbol": "OTHER"}, "liquidity": {"usd": 9000000}},
		{"chainId": "ethereum", "pairAddress": "0xbig", "baseToken": {"address": "0x6982508145454Ce325dDbE47a25d4ec3d2311933", "symbol": "PEPE"}, "liquidity": {"usd": 500000}},
		"garbage"
	]
}`

func newTestClient(url string) *Client {
	return NewClient(ClientOptions{
		BaseURL:        url,
		RequestTimeout: time.Second,
		RequestsPerSec: 100,
		RetryInterval:  time.Millisecond,
	})
}

func TestLookup_AddressUsesTokensEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/tokens/"+pepe, r.URL.Path)
		w.Write([]byte(tokensResponse))
	}))
	defer srv.Close()

	pair, err := newTestClient(srv.URL).Lookup(context.Background(), "  "+pepe+" ")

	require.NoError(t, err)
	assert.Equal(t, "0xbig", normalize.Text(pair, "pairAddress"))
}

func TestLookup_FreeTextUsesSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/search", r.URL.Path)
		assert.Equal(t, "pepe weth", r.URL.Query().Get("q"))
		w.Write([]byte(tokensResponse))
	}))
	defer srv.Close()

	pair, err := newTestClient(srv.URL).Lookup(context.Background(), "pepe weth")

	require.NoError(t, err)
	// no address to prefer, so liquidity alone decides
	assert.Equal(t, "0xquote", normalize.Text(pair, "pairAddress"))
}

func TestLookup_NoPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"schemaVersion": "1.0.0", "pairs": null}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Lookup(context.Background(), pepe)
	assert.True(t, errors.Is(err, ErrNoPairs))
}

func TestLookup_EmptyQuery(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1").Lookup(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestLookup_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Lookup(context.Background(), "pepe")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoPairs))
}

func TestLookup_SinglePairPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pair": {"pairAddress": "0xone", "liquidity": {"usd": "12"}}}`))
	}))
	defer srv.Close()

	pair, err := newTestClient(srv.URL).Lookup(context.Background(), "one")
	require.NoError(t, err)
	assert.Equal(t, "0xone", normalize.Text(pair, "pairAddress"))
}

func TestBestPair_MissingLiquidity(t *testing.T) {
	pairs := []map[string]any{
		{"pairAddress": "a"},
		{"pairAddress": "b", "liquidity": map[string]any{"usd": 5.0}},
	}
	assert.Equal(t, "b", BestPair(pairs, "")["pairAddress"])
	assert.Equal(t, "a", BestPair(pairs[:1], "")["pairAddress"])
	assert.Nil(t, BestPair(nil, ""))
}

func TestBestPair_AddressMatching(t *testing.T) {
	const target = "0x1111111111111111111111111111111111111111"
	baseSide := map[string]any{
		"pairAddress": "base",
		"baseToken":   map[string]any{"address": target, "name": "Target"},
		"liquidity":   map[string]any{"usd": 10.0},
	}
	quoteSide := map[string]any{
		"pairAddress": "quote",
		"priceUsd":    "3.5",
		"marketCap":   9_000_000.0,
		"fdv":         9_500_000.0,
		"baseToken":   map[string]any{"address": "0x2222222222222222222222222222222222222222", "name": "Other"},
		"quoteToken":  map[string]any{"address": target, "name": "Target"},
		"liquidity":   map[string]any{"usd": 800_000.0},
		"volume":      map[string]any{"h24": 120_000.0},
	}
	unrelated := map[string]any{
		"pairAddress": "unrelated",
		"baseToken":   map[string]any{"address": "0x3333333333333333333333333333333333333333"},
		"liquidity":   map[string]any{"usd": 5_000_000.0},
	}

	tests := []struct {
		name      string
		pairs     []map[string]any
		wantPair  string
		quoteSide bool
	}{
		{"base side wins over more liquid quote side", []map[string]any{quoteSide, baseSide, unrelated}, "base", false},
		{"quote side is re-oriented", []map[string]any{unrelated, quoteSide}, "quote", true},
		{"no side matches", []map[string]any{unrelated}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best := BestPair(tt.pairs, target)
			if tt.wantPair == "" {
				assert.Nil(t, best)
				return
			}
			require.NotNil(t, best)
			assert.Equal(t, tt.wantPair, normalize.Text(best, "pairAddress"))
			assert.Equal(t, target, normalize.Text(best, "baseToken", "address"))
			assert.Equal(t, "Target", normalize.Text(best, "baseToken", "name"))
			assert.Equal(t, tt.quoteSide, normalize.Flag(best, QuoteSideKey))
		})
	}

	flipped := AsBase(quoteSide)
	assert.Zero(t, normalize.Float(flipped, "priceUsd"))
	assert.Zero(t, normalize.Float(flipped, "marketCap"))
	assert.Zero(t, normalize.Float(flipped, "fdv"))
	assert.Equal(t, 800_000.0, normalize.Float(flipped, "liquidity", "usd"))
	assert.Equal(t, 120_000.0, normalize.Float(flipped, "volume", "h24"))
	assert.Equal(t, "Other", normalize.Text(flipped, "quoteToken", "name"))
	assert.Equal(t, "3.5", quoteSide["priceUsd"], "original pair must not be modified")
}

func TestLookup_AddressOnNeitherSide(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"pairs": [{"pairAddress": "0xp", "baseToken": {"address": "0x2222222222222222222222222222222222222222"}, "quoteToken": {"address": "0x3333333333333333333333333333333333333333"}, "liquidity": {"usd": 1000}}]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Lookup(context.Background(), pepe)
	assert.ErrorIs(t, err, ErrNoPairs)
}
