package chain

import (
	"regexp"
	"strings"

	"github.com/mr-tron/base58"
)

// GoPlus chain id used for Solana tokens
const SolanaGoPlusID = "solana"

var evmAddressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// DexScreener chain slug -> GoPlus chain id
var goPlusChainIDs = map[string]string{
	"ethereum":  "1",
	"bsc":       "56",
	"polygon":   "137",
	"arbitrum":  "42161",
	"base":      "8453",
	"avalanche": "43114",
	"optimism":  "10",
	"fantom":    "250",
	"cronos":    "25",
	"linea":     "59144",
	"solana":    SolanaGoPlusID,
}

// IsEVMAddress reports whether s is a 0x-prefixed 20 byte hex address
func IsEVMAddress(s string) bool {
	return evmAddressRe.MatchString(strings.TrimSpace(s))
}

// IsSolanaAddress reports whether s is a base58 string that decodes to a 32 byte key
func IsSolanaAddress(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == 32
}

// IsAddress reports whether s looks like a token address on any supported chain
func IsAddress(s string) bool {
	return IsEVMAddress(s) || IsSolanaAddress(s)
}

// GoPlusChainID maps a DexScreener chain slug to the GoPlus chain id
func GoPlusChainID(dexChainID string) (string, bool) {
	id, ok := goPlusChainIDs[strings.ToLower(strings.TrimSpace(dexChainID))]
	return id, ok
}
