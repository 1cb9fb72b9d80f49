package coins

import (
	"sort"
	"strings"
)

// Symbol -> CoinGecko ID. Keys are lower case.
var providerIDs = map[string]string{
	"btc":  "bitcoin",
	"eth":  "ethereum",
	"sol":  "solana",
	"doge": "dogecoin",
}

// ProviderID resolves a coin symbol to the provider identifier.
// Lookup is case-insensitive.
func ProviderID(symbol string) (string, bool) {
	id, ok := providerIDs[Normalize(symbol)]
	return id, ok
}

// Normalize returns the lookup form of a symbol.
func Normalize(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol))
}

// Display returns the user-facing form of a symbol.
func Display(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Supported lists supported symbols in display form, sorted.
func Supported() []string {
	out := make([]string, 0, len(providerIDs))
	for sym := range providerIDs {
		out = append(out, Display(sym))
	}
	sort.Strings(out)
	return out
}
