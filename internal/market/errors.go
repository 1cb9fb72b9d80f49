package market

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedCoin is returned for symbols missing from the coin table.
	ErrUnsupportedCoin = errors.New("unsupported coin")
	// ErrUpstream is returned when the provider fails or answers with an unusable payload.
	ErrUpstream = errors.New("upstream error")
)

// UnsupportedCoinError reports a symbol that cannot be resolved.
type UnsupportedCoinError struct {
	Symbol string
}

func (e *UnsupportedCoinError) Error() string {
	return fmt.Sprintf("Cryptocurrency '%s' not supported.", e.Symbol)
}

func (e *UnsupportedCoinError) Is(target error) bool { return target == ErrUnsupportedCoin }

// UpstreamError reports a failed provider request.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("Failed to fetch %s. Status: %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("Failed to fetch %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("Failed to fetch %s.", e.Op)
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }
