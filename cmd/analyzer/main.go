package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/Alias1177/TokenScout/internal/analyzer"
	"github.com/Alias1177/TokenScout/internal/app"
	"github.com/Alias1177/TokenScout/internal/config"
	"github.com/Alias1177/TokenScout/internal/render"
)

func main() {
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-json] <token address or name>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// 2. Configure logging
	config.SetupLogger(cfg.LogLevel)
	printConfig(cfg)

	// 3. Run the analysis
	ctx, cancel := context.WithTimeout(ctx, 3*cfg.Timeout())
	defer cancel()

	report, err := app.NewAnalyzer(cfg, nil).Analyze(ctx, query)
	if err != nil {
		if errors.Is(err, analyzer.ErrNotFound) {
			fmt.Fprintln(os.Stderr, "Token not found or unsupported.")
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	// 4. Print the report
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode report")
		}
		return
	}
	fmt.Println(render.Report(report, render.Plain))
}

// printConfig outputs the current configuration
func printConfig(cfg *config.Config) {
	th := cfg.RiskThresholds()
	log.Debug().
		Str("DexScreener", cfg.DexScreenerBaseURL).
		Str("GoPlus", cfg.GoPlusBaseURL).
		Str("DefaultChain", cfg.GoPlusDefaultChain).
		Int("RequestTimeout", cfg.RequestTimeout).
		Int("MaxRetries", cfg.MaxRetries).
		Float64("MaxBuyTax", th.MaxBuyTaxPercent).
		Float64("MaxSellTax", th.MaxSellTaxPercent).
		Float64("MinLiquidity", th.MinLiquidityUSD).
		Float64("MinMarketCap", th.MinMarketCapUSD).
		Float64("MinVolume", th.MinVolume24hUSD).
		Msg("Configuration loaded")
}
