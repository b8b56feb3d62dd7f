package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/TokenScout/internal/api/dexscreener"
	"github.com/Alias1177/TokenScout/internal/api/goplus"
	"github.com/Alias1177/TokenScout/internal/chain"
	"github.com/Alias1177/TokenScout/internal/normalize"
	"github.com/Alias1177/TokenScout/internal/observability"
	"github.com/Alias1177/TokenScout/internal/risk"
	"github.com/Alias1177/TokenScout/models"
)

var (
	// ErrNotFound means no provider knows the token
	ErrNotFound = errors.New("token not found or unsupported")
	// ErrUnavailable means the providers failed and nothing usable came back
	ErrUnavailable = errors.New("token data unavailable")
)

// Sources records which providers contributed to a report
type Sources struct {
	Market   bool `json:"market"`
	Security bool `json:"security"`
}

// Report is the result of one analysis
type Report struct {
	Query       string                 `json:"query"`
	ChainID     string                 `json:"chain_id,omitempty"`
	DexID       string                 `json:"dex_id,omitempty"`
	Address     string                 `json:"address,omitempty"`
	PairAddress string                 `json:"pair_address,omitempty"`
	PairURL     string                 `json:"pair_url,omitempty"`
	PriceUSD    float64                `json:"price_usd"`
	QuoteSide   bool                   `json:"quote_side,omitempty"` // token found only as a pair's quote asset
	Token       models.NormalizedToken `json:"token"`
	Assessment  models.RiskAssessment  `json:"assessment"`
	Sources     Sources                `json:"sources"`
	AnalyzedAt  time.Time              `json:"analyzed_at"`
}

// Options configures a Service
type Options struct {
	// DefaultChain is the GoPlus chain id used for bare EVM addresses without a market pair
	DefaultChain string
	Metrics      *observability.Metrics
}

// Service runs token analyses. It keeps no per-request state.
type Service struct {
	lookup       models.LookupProvider
	security     models.SecurityProvider
	scorer       *risk.Scorer
	defaultChain string
	metrics      *observability.Metrics
	logger       zerolog.Logger
}

// NewService creates an analyzer. security may be nil.
func NewService(lookup models.LookupProvider, security models.SecurityProvider, scorer *risk.Scorer, opts Options) *Service {
	if scorer == nil {
		scorer = risk.NewScorer(risk.DefaultThresholds())
	}
	if opts.DefaultChain == "" {
		opts.DefaultChain = "1"
	}

	return &Service{
		lookup:       lookup,
		security:     security,
		scorer:       scorer,
		defaultChain: opts.DefaultChain,
		metrics:      opts.Metrics,
		logger:       log.With().Str("component", "analyzer").Logger(),
	}
}

// Analyze looks query up, normalizes the payloads and scores the token
func (s *Service) Analyze(ctx context.Context, query string) (*Report, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNotFound
	}

	logger := s.logger.With().Str("query", query).Logger()
	report := &Report{Query: query}
	var failures []error

	market, err := s.fetchMarket(ctx, query)
	switch {
	case err == nil:
		report.Sources.Market = true
		report.ChainID = normalize.Text(market, "chainId")
		report.DexID = normalize.Text(market, "dexId")
		report.Address = normalize.Text(market, "baseToken", "address")
		report.PairAddress = normalize.Text(market, "pairAddress")
		report.PairURL = normalize.Text(market, "url")
		report.PriceUSD = normalize.Float(market, "priceUsd")
		report.QuoteSide = normalize.Flag(market, dexscreener.QuoteSideKey)
	case errors.Is(err, dexscreener.ErrNoPairs):
		logger.Debug().Msg("No market pair")
	default:
		logger.Warn().Err(err).Msg("Market lookup failed")
		failures = append(failures, err)
	}

	securityChain, securityAddress := s.securityTarget(report, query)
	var security map[string]any
	if securityChain != "" {
		security, err = s.fetchSecurity(ctx, securityChain, securityAddress)
		switch {
		case err == nil:
			report.Sources.Security = true
			if report.Address == "" {
				report.Address = securityAddress
			}
		case errors.Is(err, goplus.ErrTokenNotFound):
			logger.Debug().Str("chain", securityChain).Msg("No security entry")
		default:
			logger.Warn().Err(err).Str("chain", securityChain).Msg("Security lookup failed")
			failures = append(failures, err)
		}
	}

	if !report.Sources.Market && !report.Sources.Security {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if len(failures) > 0 {
			s.metrics.ObserveError("unavailable")
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, errors.Join(failures...))
		}
		s.metrics.ObserveError("not_found")
		return nil, ErrNotFound
	}

	raw := models.RawLookupResult{Market: market, Security: security}
	report.Token = normalize.Normalize(raw)
	report.Assessment = s.scorer.Score(report.Token)
	report.AnalyzedAt = time.Now().UTC()

	s.metrics.ObserveAnalysis(string(report.Assessment.Tier), report.Token.IsHoneypot)
	logger.Info().
		Str("chain", report.ChainID).
		Str("address", report.Address).
		Int("score", report.Assessment.Score).
		Str("tier", string(report.Assessment.Tier)).
		Bool("honeypot", report.Token.IsHoneypot).
		Bool("security", report.Sources.Security).
		Msg("Token analyzed")

	return report, nil
}

// securityTarget picks the GoPlus chain and address. An empty chain skips the lookup.
func (s *Service) securityTarget(report *Report, query string) (string, string) {
	if s.security == nil {
		return "", ""
	}

	if report.Sources.Market {
		id, ok := chain.GoPlusChainID(report.ChainID)
		if !ok || report.Address == "" {
			return "", ""
		}
		return id, report.Address
	}

	switch {
	case chain.IsEVMAddress(query):
		return s.defaultChain, query
	case chain.IsSolanaAddress(query):
		return chain.SolanaGoPlusID, query
	default:
		return "", ""
	}
}

func (s *Service) fetchMarket(ctx context.Context, query string) (map[string]any, error) {
	if s.lookup == nil {
		return nil, dexscreener.ErrNoPairs
	}
	started := time.Now()
	market, err := s.lookup.Lookup(ctx, query)
	s.metrics.ObserveUpstream("dexscreener", started, ignoreNotFound(err))
	return market, err
}

func (s *Service) fetchSecurity(ctx context.Context, chainID, address string) (map[string]any, error) {
	started := time.Now()
	security, err := s.security.TokenSecurity(ctx, chainID, address)
	s.metrics.ObserveUpstream("goplus", started, ignoreNotFound(err))
	return security, err
}

func ignoreNotFound(err error) error {
	if errors.Is(err, dexscreener.ErrNoPairs) || errors.Is(err, goplus.ErrTokenNotFound) {
		return nil
	}
	return err
}
