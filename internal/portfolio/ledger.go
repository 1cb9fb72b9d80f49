// Package portfolio keeps simulated per-session coin holdings.
package portfolio

import "context"

// Ledger stores holdings keyed by session and upper-case symbol.
// Every stored amount is non-zero; an entry that reaches exactly zero is removed.
type Ledger interface {
	// Add increases the balance and returns the new balance.
	Add(ctx context.Context, session, symbol string, amount float64) (float64, error)
	// Remove decreases the balance when at least amount is held. It returns
	// the balance held before the call and whether the removal happened.
	Remove(ctx context.Context, session, symbol string, amount float64) (held float64, ok bool, err error)
	// Holdings returns a copy of the session's holdings.
	Holdings(ctx context.Context, session string) (map[string]float64, error)
}
