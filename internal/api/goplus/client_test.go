package goplus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pepe = "0x6982508145454Ce325dDbE47a25d4ec3d2311933"

func newTestClient(url string) *Client {
	return NewClient(ClientOptions{
		BaseURL:        url,
		RequestTimeout: time.Second,
		RequestsPerSec: 100,
		RetryInterval:  time.Millisecond,
	})
}

func TestTokenSecurity_EVM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/token_security/1", r.URL.Path)
		assert.Equal(t, pepe, r.URL.Query().Get("contract_addresses"))
		w.Write([]byte(`{"code": 1, "message": "OK", "result": {
			"0x6982508145454ce325ddbe47a25d4ec3d2311933": {"is_honeypot": "0", "buy_tax": "0", "sell_tax": "0"}
		}}`))
	}))
	defer srv.Close()

	entry, err := newTestClient(srv.URL).TokenSecurity(context.Background(), "1", pepe)

	require.NoError(t, err)
	assert.Equal(t, "0", entry["is_honeypot"])
}

func TestTokenSecurity_Solana(t *testing.T) {
	const mint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/solana/token_security", r.URL.Path)
		w.Write([]byte(`{"code": 1, "message": "OK", "result": {"` + mint + `": {"metadata": {"name": "USD Coin"}}}}`))
	}))
	defer srv.Close()

	entry, err := newTestClient(srv.URL).TokenSecurity(context.Background(), "solana", mint)

	require.NoError(t, err)
	assert.Contains(t, entry, "metadata")
}

func TestTokenSecurity_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 1, "message": "OK", "result": {}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).TokenSecurity(context.Background(), "1", pepe)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenSecurity_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 2004, "message": "contract address format error!", "result": null}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).TokenSecurity(context.Background(), "1", "0x12")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 2004, apiErr.Code)
}

func TestTokenSecurity_EmptyAddress(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1").TokenSecurity(context.Background(), "1", "")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}
