// Package app wires the analysis pipeline from configuration.
package app

import (
	"github.com/Alias1177/TokenScout/internal/analyzer"
	"github.com/Alias1177/TokenScout/internal/api/dexscreener"
	"github.com/Alias1177/TokenScout/internal/api/goplus"
	"github.com/Alias1177/TokenScout/internal/config"
	"github.com/Alias1177/TokenScout/internal/observability"
	"github.com/Alias1177/TokenScout/internal/risk"
)

// NewAnalyzer builds the upstream clients, the scorer and the analyzer service
func NewAnalyzer(cfg *config.Config, metrics *observability.Metrics) *analyzer.Service {
	dex := dexscreener.NewClient(dexscreener.ClientOptions{
		BaseURL:        cfg.DexScreenerBaseURL,
		RequestTimeout: cfg.Timeout(),
		RequestsPerSec: cfg.RequestsPerSec,
		MaxRetries:     cfg.MaxRetries,
	})
	security := goplus.NewClient(goplus.ClientOptions{
		BaseURL:        cfg.GoPlusBaseURL,
		RequestTimeout: cfg.Timeout(),
		RequestsPerSec: cfg.RequestsPerSec,
		MaxRetries:     cfg.MaxRetries,
	})

	return analyzer.NewService(dex, security, risk.NewScorer(cfg.RiskThresholds()), analyzer.Options{
		DefaultChain: cfg.GoPlusDefaultChain,
		Metrics:      metrics,
	})
}
