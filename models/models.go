package models

import (
	"time"
)

// Tier is the advisory bucket derived from the composite score
type Tier string

const (
	TierHighPotential Tier = "HIGH_POTENTIAL"
	TierPossible      Tier = "POSSIBLE"
	TierRisky         Tier = "RISKY"
)

// Factor names used in RiskAssessment.Factors
const (
	FactorBuyTax    = "BUY_TAX"
	FactorSellTax   = "SELL_TAX"
	FactorLiquidity = "LIQUIDITY"
	FactorMarketCap = "MARKET_CAP"
	FactorVolume    = "VOLUME"
)

// Security flags reported next to the score
const (
	FlagHoneypot           = "HONEYPOT"
	FlagOwnerChangeBalance = "OWNER_CAN_CHANGE_BALANCE"
)

// RawLookupResult holds the upstream payloads exactly as decoded.
// Market is one DexScreener pair object, Security is one GoPlus token_security entry.
// Either may be nil.
type RawLookupResult struct {
	Market   map[string]any `json:"market,omitempty"`
	Security map[string]any `json:"security,omitempty"`
}

// NormalizedToken is the defaulted view of a RawLookupResult.
// All numeric fields are finite and non-negative.
type NormalizedToken struct {
	Name                      string  `json:"name,omitempty"`
	Symbol                    string  `json:"symbol,omitempty"`
	BuyTaxPercent             float64 `json:"buy_tax_percent"`
	SellTaxPercent            float64 `json:"sell_tax_percent"`
	LiquidityUSD              float64 `json:"liquidity_usd"`
	MarketCapUSD              float64 `json:"market_cap_usd"` // FDV when market cap is absent
	Volume24hUSD              float64 `json:"volume_24h_usd"`
	IsHoneypot                bool    `json:"is_honeypot"`
	OwnerCanManipulateBalance bool    `json:"owner_can_manipulate_balance"`
	LiquidityLocked           bool    `json:"liquidity_locked"`
}

// Factor is one scored check of the risk heuristic
type Factor struct {
	Name      string  `json:"name"`
	Passed    bool    `json:"passed"`
	Value     float64 `json:"value"`
	Threshold float64 `json:"threshold"`
	Points    int     `json:"points"`
}

// RiskAssessment is the scorer output. Tier is purely numeric while Advice
// may be overridden by security flags, so the two can disagree.
type RiskAssessment struct {
	Score   int      `json:"score"`
	Tier    Tier     `json:"tier"`
	Advice  string   `json:"advice"`
	Factors []Factor `json:"factors"`
	Flags   []string `json:"flags,omitempty"`
}

// BotUser is a chat that has talked to the bot
type BotUser struct {
	UserID    int64     `json:"user_id"`
	ChatID    int64     `json:"chat_id"`
	Username  string    `json:"username,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}
