package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Alias1177/TokenScout/internal/analyzer"
	"github.com/Alias1177/TokenScout/internal/risk"
	"github.com/Alias1177/TokenScout/models"
)

func sampleReport() *analyzer.Report {
	tok := models.NormalizedToken{
		Name:           "Pepe_Coin",
		Symbol:         "PEPE",
		BuyTaxPercent:  0,
		SellTaxPercent: 2.5,
		LiquidityUSD:   250_000,
		MarketCapUSD:   3_400_000_000,
		Volume24hUSD:   12_000,
		IsHoneypot:     true,
	}
	return &analyzer.Report{
		Query:      "pepe",
		ChainID:    "ethereum",
		DexID:      "uniswap",
		Address:    "0x6982508145454Ce325dDbE47a25d4ec3d2311933",
		PairURL:    "https://dexscreener.com/ethereum/0xa43fe16908251ee70ef74718545e4fe6c5ccec9f",
		PriceUSD:   0.0000081234,
		Token:      tok,
		Assessment: risk.Score(tok),
		Sources:    analyzer.Sources{Market: true, Security: true},
	}
}

func TestReport_Markdown(t *testing.T) {
	out := Report(sampleReport(), Markdown)

	assert.Contains(t, out, `*Token Analysis: Pepe\_Coin (PEPE)*`)
	assert.Contains(t, out, "`0x6982508145454Ce325dDbE47a25d4ec3d2311933` on ethereum · uniswap")
	assert.Contains(t, out, "- Price: $0.000008123")
	assert.Contains(t, out, "- Liquidity: $250K")
	assert.Contains(t, out, "- Market cap: $3.4B")
	assert.Contains(t, out, "- Honeypot: 🚫 Honeypot")
	assert.Contains(t, out, "- Sell tax: 2.5%")
	assert.Contains(t, out, "🟢 *Score: 80/100* (High potential)")
	assert.Contains(t, out, "❌ 24h volume $12K (min $50K)")
	assert.Contains(t, out, "💡 Advice: "+risk.AdviceAvoid)
	assert.Contains(t, out, "[View on DexScreener](https://dexscreener.com/ethereum/")
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestReport_Plain(t *testing.T) {
	out := Report(sampleReport(), Plain)

	assert.Contains(t, out, "Token Analysis: Pepe_Coin (PEPE)")
	assert.Contains(t, out, "Score: 80/100")
	assert.Contains(t, out, "DexScreener: https://dexscreener.com/")
	assert.NotContains(t, out, "*")
	assert.NotContains(t, out, "`")
}

func TestReport_MissingSources(t *testing.T) {
	r := sampleReport()
	r.Sources = analyzer.Sources{Market: true}
	r.PairURL = ""

	out := Report(r, Plain)

	assert.Contains(t, out, "Security data unavailable")
	assert.NotContains(t, out, "Honeypot:")
	assert.NotContains(t, out, "DexScreener:")

	r.Sources = analyzer.Sources{Security: true}
	assert.Contains(t, Report(r, Plain), "Market data unavailable")
}

func TestReport_QuoteSide(t *testing.T) {
	r := sampleReport()
	assert.NotContains(t, Report(r, Plain), "quote token")

	r.QuoteSide = true
	r.PriceUSD = 0
	out := Report(r, Plain)
	assert.Contains(t, out, "- Price: n/a")
	assert.Contains(t, out, "- Only traded as the quote token: price and market cap unknown")
}

func TestReport_Nil(t *testing.T) {
	assert.Empty(t, Report(nil, Markdown))
}

func TestUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{12.346, "$12.35"},
		{999, "$999"},
		{1_500, "$1.5K"},
		{100_000, "$100K"},
		{1_000_000, "$1M"},
		{2_345_678, "$2.35M"},
		{7_000_000_000, "$7B"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, USD(tt.in))
		})
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "n/a"},
		{-1, "n/a"},
		{1834.5, "$1834.50"},
		{1, "$1.00"},
		{0.5, "$0.5"},
		{0.012346, "$0.01235"},
		{0.0000012, "$0.0000012"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Price(tt.in))
		})
	}
}

func TestTierEmoji(t *testing.T) {
	assert.Equal(t, "🟢", TierEmoji(models.TierHighPotential))
	assert.Equal(t, "🟡", TierEmoji(models.TierPossible))
	assert.Equal(t, "🔴", TierEmoji(models.TierRisky))
}
