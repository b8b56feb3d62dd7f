// Package render turns analysis reports into chat and terminal text.
package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Alias1177/TokenScout/internal/analyzer"
	"github.com/Alias1177/TokenScout/models"
)

// Style selects the output markup
type Style int

const (
	// Markdown is Telegram's legacy Markdown parse mode
	Markdown Style = iota
	// Plain has no markup, used by the CLI
	Plain
)

const (
	WelcomeText = "Welcome to TokenScout! 👋\n\n" +
		"Send me a token contract address or a name and I will check its market data and contract security.\n\n" +
		"Use the menu below or /analyze <token_address>."

	HelpText = "ℹ️ How to use TokenScout\n\n" +
		"/analyze <address> - analyze a token by contract address\n" +
		"/analyze <name> - search DexScreener by name or symbol\n" +
		"You can also paste an EVM (0x...) or Solana address directly.\n\n" +
		"The score adds 20 points for each passed check: buy tax, sell tax, liquidity, market cap and 24h volume.\n" +
		"80+ is high potential, 60+ is possible, anything lower is risky.\n" +
		"Honeypots and owner-controlled balances are always flagged as high risk.\n\n" +
		"This is not financial advice. DYOR."
)

// TierEmoji returns the traffic light for a tier
func TierEmoji(t models.Tier) string {
	switch t {
	case models.TierHighPotential:
		return "🟢"
	case models.TierPossible:
		return "🟡"
	default:
		return "🔴"
	}
}

// TierLabel returns a human readable tier name
func TierLabel(t models.Tier) string {
	switch t {
	case models.TierHighPotential:
		return "High potential"
	case models.TierPossible:
		return "Possible"
	case models.TierRisky:
		return "Risky"
	default:
		return string(t)
	}
}

// Analyzing is the placeholder shown while an analysis runs
func Analyzing(query string) string {
	return fmt.Sprintf("🔍 Analyzing token %s...", query)
}

// Report formats an analysis report
func Report(r *analyzer.Report, style Style) string {
	if r == nil {
		return ""
	}
	w := &writer{style: style}
	tok := r.Token

	w.line("🔎 %s", w.bold("Token Analysis: "+displayName(tok)))
	if r.Address != "" {
		where := w.code(r.Address)
		if r.ChainID != "" {
			where += " on " + w.text(r.ChainID)
		}
		if r.DexID != "" {
			where += " · " + w.text(r.DexID)
		}
		w.line("%s", where)
	}
	w.blank()

	if r.Sources.Market {
		w.line("📈 %s", w.bold("Market"))
		w.line("- Price: %s", Price(r.PriceUSD))
		w.line("- Liquidity: %s", USD(tok.LiquidityUSD))
		w.line("- Market cap: %s", USD(tok.MarketCapUSD))
		w.line("- 24h volume: %s", USD(tok.Volume24hUSD))
		if r.QuoteSide {
			w.line("- Only traded as the quote token: price and market cap unknown")
		}
	} else {
		w.line("📈 Market data unavailable")
	}
	w.blank()

	if r.Sources.Security {
		w.line("🛡 %s", w.bold("Security"))
		w.line("- Honeypot: %s", pick(tok.IsHoneypot, "🚫 Honeypot", "✅ Safe to trade"))
		w.line("- Owner: %s", pick(tok.OwnerCanManipulateBalance, "❌ Owner can manipulate balance", "✅ Owner renounced"))
		w.line("- Buy tax: %s", Percent(tok.BuyTaxPercent))
		w.line("- Sell tax: %s", Percent(tok.SellTaxPercent))
		w.line("- Liquidity lock: %s", pick(tok.LiquidityLocked, "✅ Liquidity locked", "❌ Liquidity NOT locked"))
	} else {
		w.line("🛡 Security data unavailable")
	}
	w.blank()

	a := r.Assessment
	w.line("%s %s (%s)", TierEmoji(a.Tier), w.bold(fmt.Sprintf("Score: %d/100", a.Score)), TierLabel(a.Tier))
	for _, f := range a.Factors {
		w.line("%s %s", pick(f.Passed, "✅", "❌"), factorLine(f))
	}
	w.blank()
	w.line("💡 Advice: %s", w.text(a.Advice))

	if r.PairURL != "" {
		if style == Markdown {
			w.line("[View on DexScreener](%s)", r.PairURL)
		} else {
			w.line("DexScreener: %s", r.PairURL)
		}
	}

	return strings.TrimRight(w.String(), "\n")
}

func displayName(t models.NormalizedToken) string {
	switch {
	case t.Name != "" && t.Symbol != "":
		return fmt.Sprintf("%s (%s)", t.Name, t.Symbol)
	case t.Name != "":
		return t.Name
	case t.Symbol != "":
		return t.Symbol
	default:
		return "Unknown token"
	}
}

func factorLine(f models.Factor) string {
	switch f.Name {
	case models.FactorBuyTax:
		return fmt.Sprintf("Buy tax %s (max %s)", Percent(f.Value), Percent(f.Threshold))
	case models.FactorSellTax:
		return fmt.Sprintf("Sell tax %s (max %s)", Percent(f.Value), Percent(f.Threshold))
	case models.FactorLiquidity:
		return fmt.Sprintf("Liquidity %s (min %s)", USD(f.Value), USD(f.Threshold))
	case models.FactorMarketCap:
		return fmt.Sprintf("Market cap %s (min %s)", USD(f.Value), USD(f.Threshold))
	case models.FactorVolume:
		return fmt.Sprintf("24h volume %s (min %s)", USD(f.Value), USD(f.Threshold))
	default:
		return fmt.Sprintf("%s %s", f.Name, trimFloat(f.Value, 2))
	}
}

// USD formats an amount with K/M/B suffixes
func USD(v float64) string {
	switch {
	case v >= 1e9:
		return "$" + trimFloat(v/1e9, 2) + "B"
	case v >= 1e6:
		return "$" + trimFloat(v/1e6, 2) + "M"
	case v >= 1e3:
		return "$" + trimFloat(v/1e3, 2) + "K"
	default:
		return "$" + trimFloat(v, 2)
	}
}

// Price formats a unit price keeping four significant digits below $1
func Price(v float64) string {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	if v >= 1 {
		return "$" + strconv.FormatFloat(v, 'f', 2, 64)
	}
	digits := 3 - int(math.Floor(math.Log10(v)))
	if digits > 18 {
		digits = 18
	}
	return "$" + trimFloat(v, digits)
}

// Percent formats a tax value already expressed in percentage points
func Percent(v float64) string {
	return trimFloat(v, 2) + "%"
}

func trimFloat(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

type writer struct {
	strings.Builder
	style Style
}

func (w *writer) line(format string, args ...any) {
	w.WriteString(fmt.Sprintf(format, args...))
	w.WriteByte('\n')
}

func (w *writer) blank() {
	w.WriteByte('\n')
}

// text escapes upstream strings for the current style
func (w *writer) text(s string) string {
	if w.style == Markdown {
		return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
	}
	return s
}

func (w *writer) bold(s string) string {
	if w.style == Markdown {
		return "*" + w.text(s) + "*"
	}
	return s
}

func (w *writer) code(s string) string {
	if w.style == Markdown {
		return "`" + strings.ReplaceAll(s, "`", "") + "`"
	}
	return s
}
