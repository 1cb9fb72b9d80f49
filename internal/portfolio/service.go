package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/edibez/cryptochat/internal/coins"
	"go.uber.org/zap"
)

// EmptyMessage is reported for a session without holdings.
const EmptyMessage = "Your portfolio is currently empty."

// ErrInvalidAmount is returned for amounts that are not positive finite numbers.
var ErrInvalidAmount = errors.New("amount must be a positive number")

// PriceSource provides current USD prices.
type PriceSource interface {
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
}

// Valuation is one line of a portfolio report.
type Valuation struct {
	Amount float64 `json:"amount"`
	Value  float64 `json:"value"`
}

// Report is the result of viewing a portfolio.
type Report struct {
	Empty      bool
	TotalValue float64
	Holdings   map[string]Valuation
	// Symbols lists holdings in report order.
	Symbols []string
}

// MarshalJSON renders {message} for an empty report and {totalValue, holdings} otherwise.
func (r Report) MarshalJSON() ([]byte, error) {
	if r.Empty {
		return json.Marshal(struct {
			Message string `json:"message"`
		}{EmptyMessage})
	}
	return json.Marshal(struct {
		TotalValue float64              `json:"totalValue"`
		Holdings   map[string]Valuation `json:"holdings"`
	}{r.TotalValue, r.Holdings})
}

// Service implements the holding operations on top of a Ledger.
type Service struct {
	ledger   Ledger
	prices   PriceSource
	validate bool
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithAmountValidation rejects amounts that are zero, negative or not finite.
func WithAmountValidation(enabled bool) Option {
	return func(s *Service) { s.validate = enabled }
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a portfolio service. Amount validation is on by default.
func NewService(ledger Ledger, prices PriceSource, opts ...Option) *Service {
	s := &Service{
		ledger:   ledger,
		prices:   prices,
		validate: true,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddHolding adds amount of symbol to the session's portfolio.
func (s *Service) AddHolding(ctx context.Context, session, symbol string, amount float64) (string, error) {
	if err := s.checkAmount(amount); err != nil {
		return "", err
	}
	sym := coins.Display(symbol)

	total, err := s.ledger.Add(ctx, session, sym, amount)
	if err != nil {
		return "", fmt.Errorf("add holding: %w", err)
	}
	return fmt.Sprintf("Successfully added %s %s. You now hold %s %s.",
		formatAmount(amount), sym, formatAmount(total), sym), nil
}

// RemoveHolding removes amount of symbol. Holding less than amount is a normal
// outcome reported in the returned text, not an error.
func (s *Service) RemoveHolding(ctx context.Context, session, symbol string, amount float64) (string, error) {
	if err := s.checkAmount(amount); err != nil {
		return "", err
	}
	sym := coins.Display(symbol)

	held, ok, err := s.ledger.Remove(ctx, session, sym, amount)
	if err != nil {
		return "", fmt.Errorf("remove holding: %w", err)
	}
	if !ok {
		return fmt.Sprintf("Error: You don't have enough %s to remove. You only hold %s.",
			sym, formatAmount(held)), nil
	}
	return fmt.Sprintf("Successfully removed %s %s.", formatAmount(amount), sym), nil
}

// ViewPortfolio values every holding at the current price. A failed price
// lookup values that holding at zero and the rest of the report is kept.
func (s *Service) ViewPortfolio(ctx context.Context, session string) (Report, error) {
	holdings, err := s.ledger.Holdings(ctx, session)
	if err != nil {
		return Report{}, fmt.Errorf("view portfolio: %w", err)
	}
	if len(holdings) == 0 {
		return Report{Empty: true}, nil
	}

	report := Report{
		Holdings: make(map[string]Valuation, len(holdings)),
		Symbols:  make([]string, 0, len(holdings)),
	}
	for sym := range holdings {
		report.Symbols = append(report.Symbols, sym)
	}
	sort.Strings(report.Symbols)

	for _, sym := range report.Symbols {
		amount := holdings[sym]
		price, err := s.prices.GetCurrentPrice(ctx, sym)
		if err != nil {
			s.logger.Warn("could not fetch price",
				zap.String("session", session),
				zap.String("symbol", sym),
				zap.Error(err),
			)
			report.Holdings[sym] = Valuation{Amount: amount}
			continue
		}
		value := amount * price
		report.Holdings[sym] = Valuation{Amount: amount, Value: value}
		report.TotalValue += value
	}
	return report, nil
}

func (s *Service) checkAmount(amount float64) error {
	if !s.validate {
		return nil
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return fmt.Errorf("%w, got %s", ErrInvalidAmount, formatAmount(amount))
	}
	return nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
