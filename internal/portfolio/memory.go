package portfolio

import (
	"context"
	"sync"
)

// MemoryLedger keeps holdings in process memory. The mutex only protects the
// maps; a view and a mutation on the same session are not isolated from each other.
type MemoryLedger struct {
	mu         sync.Mutex
	portfolios map[string]map[string]float64
}

// NewMemoryLedger creates an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{portfolios: make(map[string]map[string]float64)}
}

// portfolio finds or creates the session's holdings. Callers hold mu.
func (l *MemoryLedger) portfolio(session string) map[string]float64 {
	p, ok := l.portfolios[session]
	if !ok {
		p = make(map[string]float64)
		l.portfolios[session] = p
	}
	return p
}

func (l *MemoryLedger) Add(_ context.Context, session, symbol string, amount float64) (float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.portfolio(session)
	p[symbol] += amount
	total := p[symbol]
	if total == 0 {
		delete(p, symbol)
	}
	return total, nil
}

func (l *MemoryLedger) Remove(_ context.Context, session, symbol string, amount float64) (float64, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.portfolio(session)
	held := p[symbol]
	if held == 0 || held < amount {
		return held, false, nil
	}
	p[symbol] = held - amount
	if p[symbol] == 0 {
		delete(p, symbol)
	}
	return held, true, nil
}

func (l *MemoryLedger) Holdings(_ context.Context, session string) (map[string]float64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := l.portfolio(session)
	out := make(map[string]float64, len(p))
	for sym, amount := range p {
		out[sym] = amount
	}
	return out, nil
}

// Sessions returns the number of sessions seen so far.
func (l *MemoryLedger) Sessions() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.portfolios)
}
