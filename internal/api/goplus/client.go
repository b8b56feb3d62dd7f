package goplus

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
	httpClient "github.com/Alias1177/TokenScout/internal/platform/http"
)

// DefaultBaseURL is the public GoPlus Security API
const DefaultBaseURL = "https://api.gopluslabs.io"

// codeOK is the GoPlus success code
const codeOK = 1

// ErrTokenNotFound is returned when GoPlus has no entry for the address
var ErrTokenNotFound = errors.New("goplus: token not found or unsupported")

// APIError is a reply with a non-success code
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("goplus API error %d: %s", e.Code, e.Message)
}

type securityResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Result  map[string]any `json:"result"`
}

// Client is the GoPlus token security client
type Client struct {
	baseURL    string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new GoPlus client
type ClientOptions struct {
	BaseURL         string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	RetryInterval   time.Duration
}

// NewClient creates a new GoPlus client
func NewClient(options ClientOptions) *Client {
	baseURL := strings.TrimRight(options.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL: baseURL,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
			RetryInterval:   options.RetryInterval,
		}),
		logger: log.With().Str("component", "goplus_client").Logger(),
	}
}

// TokenSecurity fetches the token_security entry for address on chainID
func (c *Client) TokenSecurity(ctx context.Context, chainID, address string) (map[string]any, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrTokenNotFound
	}

	var endpoint string
	if chainID == chain.SolanaGoPlusID {
		endpoint = fmt.Sprintf("%s/api/v1/solana/token_security?contract_addresses=%s",
			c.baseURL, url.QueryEscape(address))
	} else {
		endpoint = fmt.Sprintf("%s/api/v1/token_security/%s?contract_addresses=%s",
			c.baseURL, url.PathEscape(chainID), url.QueryEscape(address))
	}

	c.logger.Debug().Str("url", endpoint).Msg("Fetching token security")

	var resp securityResponse
	if err := c.httpClient.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("goplus token security %s/%s: %w", chainID, address, err)
	}

	if resp.Code != codeOK {
		c.logger.Warn().Int("code", resp.Code).Str("message", resp.Message).Msg("GoPlus API error")
		return nil, &APIError{Code: resp.Code, Message: resp.Message}
	}

	// EVM addresses come back lower-cased, Solana keys keep their case
	for _, key := range []string{address, strings.ToLower(address)} {
		if entry, ok := resp.Result[key].(map[string]any); ok {
			return entry, nil
		}
	}

	return nil, ErrTokenNotFound
}
