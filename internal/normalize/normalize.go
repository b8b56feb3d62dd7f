// Package normalize turns loosely-typed upstream payloads into a NormalizedToken.
// Nothing in here returns an error: absent or malformed values take the default
// from the table below.
//
//	field                      source                                  default
//	Name                       market.baseToken.name | security.token_name   ""
//	Symbol                     market.baseToken.symbol | security.token_symbol ""
//	BuyTaxPercent              security.buy_tax                        0
//	SellTaxPercent             security.sell_tax                       0
//	LiquidityUSD               market.liquidity.usd                    0
//	MarketCapUSD               market.marketCap | market.fdv           0
//	Volume24hUSD               market.volume.h24                       0
//	IsHoneypot                 security.is_honeypot == "1"             false
//	OwnerCanManipulateBalance  security.owner_change_balance == "1"    false
//	LiquidityLocked            security.is_liquidity_locked == "1"     false
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/Alias1177/TokenScout/models"
)

// flagSentinel is the value GoPlus uses for "true"
const flagSentinel = "1"

// Normalize extracts the fixed field set from raw
func Normalize(raw models.RawLookupResult) models.NormalizedToken {
	market, security := raw.Market, raw.Security

	token := models.NormalizedToken{
		Name:                      firstText(Text(market, "baseToken", "name"), Text(security, "token_name")),
		Symbol:                    firstText(Text(market, "baseToken", "symbol"), Text(security, "token_symbol")),
		BuyTaxPercent:             Float(security, "buy_tax"),
		SellTaxPercent:            Float(security, "sell_tax"),
		LiquidityUSD:              Float(market, "liquidity", "usd"),
		MarketCapUSD:              Float(market, "marketCap"),
		Volume24hUSD:              Float(market, "volume", "h24"),
		IsHoneypot:                Flag(security, "is_honeypot"),
		OwnerCanManipulateBalance: Flag(security, "owner_change_balance"),
		LiquidityLocked:           Flag(security, "is_liquidity_locked"),
	}

	if token.MarketCapUSD == 0 {
		token.MarketCapUSD = Float(market, "fdv")
	}

	return token
}

// Lookup walks nested objects along path. It reports false when any step is
// missing, not an object, or the final value is null.
func Lookup(obj map[string]any, path ...string) (any, bool) {
	var current any = obj
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok || m == nil {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, current != nil
}

// Float returns the value at path as a finite non-negative number, or 0
func Float(obj map[string]any, path ...string) float64 {
	v, ok := Lookup(obj, path...)
	if !ok {
		return 0
	}
	return ToFloat(v)
}

// Text returns the trimmed string at path, or ""
func Text(obj map[string]any, path ...string) string {
	v, ok := Lookup(obj, path...)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Flag reports whether the value at path equals the "1" sentinel
func Flag(obj map[string]any, path ...string) bool {
	v, ok := Lookup(obj, path...)
	if !ok {
		return false
	}
	return ToFlag(v)
}

// ToFloat coerces a decoded JSON value into a finite, non-negative float.
// Numeric strings are accepted, with an optional trailing percent sign.
func ToFloat(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(n), "%")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	// <= also maps negative zero to +0
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	return f
}

// ToFlag coerces a decoded JSON value into a boolean flag
func ToFlag(v any) bool {
	switch b := v.(type) {
	case string:
		return strings.TrimSpace(b) == flagSentinel
	case json.Number:
		return b.String() == flagSentinel
	case float64:
		return b == 1
	case int:
		return b == 1
	case bool:
		return b
	default:
		return false
	}
}

func firstText(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
