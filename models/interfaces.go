package models

import "context"

// LookupProvider returns the best market pair object for a free-text query or address
type LookupProvider interface {
	Lookup(ctx context.Context, query string) (map[string]any, error)
}

// SecurityProvider returns the contract security entry for an address on a chain
type SecurityProvider interface {
	TokenSecurity(ctx context.Context, chainID, address string) (map[string]any, error)
}
