package tools

import (
	"context"
	"fmt"

	"github.com/edibez/cryptochat/internal/market"
	"github.com/edibez/cryptochat/internal/portfolio"
	"github.com/mitchellh/mapstructure"
)

// Market is the market data surface the tools need.
type Market interface {
	GetCurrentPrice(ctx context.Context, symbol string) (float64, error)
	GetCoinStats(ctx context.Context, symbol string) (*market.CoinStats, error)
	ListTrendingCoins(ctx context.Context) ([]market.TrendingCoin, error)
	Get7DayChartData(ctx context.Context, symbol string) (market.ChartSeries, error)
}

// Portfolio is the holding surface the tools need.
type Portfolio interface {
	AddHolding(ctx context.Context, session, symbol string, amount float64) (string, error)
	RemoveHolding(ctx context.Context, session, symbol string, amount float64) (string, error)
	ViewPortfolio(ctx context.Context, session string) (portfolio.Report, error)
}

// Call is a tool invocation requested by the model.
type Call struct {
	Name string
	Args map[string]any
}

// Args are the decoded tool arguments.
type Args struct {
	CoinSymbol string   `mapstructure:"coinSymbol"`
	Amount     *float64 `mapstructure:"amount"`
}

// Handler runs one tool for a session.
type Handler func(ctx context.Context, session string, args Args) (any, error)

// Registry maps every tool ID to its handler. It is immutable once built.
type Registry struct {
	handlers map[ID]Handler
}

// NewRegistry binds every tool to the given market and portfolio.
func NewRegistry(m Market, p Portfolio) *Registry {
	r := &Registry{handlers: make(map[ID]Handler, len(names))}
	for _, id := range All() {
		r.handlers[id] = bind(id, m, p)
	}
	return r
}

func bind(id ID, m Market, p Portfolio) Handler {
	switch id {
	case GetCurrentPrice:
		return func(ctx context.Context, _ string, a Args) (any, error) {
			return m.GetCurrentPrice(ctx, a.CoinSymbol)
		}
	case GetCoinStats:
		return func(ctx context.Context, _ string, a Args) (any, error) {
			return m.GetCoinStats(ctx, a.CoinSymbol)
		}
	case ListTrendingCoins:
		return func(ctx context.Context, _ string, _ Args) (any, error) {
			return m.ListTrendingCoins(ctx)
		}
	case Get7DayChartData:
		return func(ctx context.Context, _ string, a Args) (any, error) {
			return m.Get7DayChartData(ctx, a.CoinSymbol)
		}
	case AddHolding:
		return func(ctx context.Context, session string, a Args) (any, error) {
			if a.Amount == nil {
				return nil, &MissingArgumentError{Tool: id, Argument: argAmount}
			}
			return p.AddHolding(ctx, session, a.CoinSymbol, *a.Amount)
		}
	case RemoveHolding:
		return func(ctx context.Context, session string, a Args) (any, error) {
			if a.Amount == nil {
				return nil, &MissingArgumentError{Tool: id, Argument: argAmount}
			}
			return p.RemoveHolding(ctx, session, a.CoinSymbol, *a.Amount)
		}
	case ViewPortfolio:
		return func(ctx context.Context, session string, _ Args) (any, error) {
			return p.ViewPortfolio(ctx, session)
		}
	}
	panic(fmt.Sprintf("tools: no handler for %s", id))
}

// Resolve parses and validates a call without running it.
func (r *Registry) Resolve(call Call) (ID, Args, error) {
	id, err := Parse(call.Name)
	if err != nil {
		return 0, Args{}, err
	}
	if _, ok := r.handlers[id]; !ok {
		return 0, Args{}, &NotImplementedError{Name: call.Name}
	}

	args, err := DecodeArgs(call.Args)
	if err != nil {
		return id, Args{}, fmt.Errorf("%w for function '%s': %v", ErrInvalidArgument, id, err)
	}
	for _, name := range declarations[id].Required {
		if !args.has(name) {
			return id, Args{}, &MissingArgumentError{Tool: id, Argument: name}
		}
	}
	return id, args, nil
}

// Run invokes the handler for a resolved call.
func (r *Registry) Run(ctx context.Context, id ID, session string, args Args) (any, error) {
	h, ok := r.handlers[id]
	if !ok {
		return nil, &NotImplementedError{Name: id.String()}
	}
	return h(ctx, session, args)
}

// Dispatch resolves and runs a call.
func (r *Registry) Dispatch(ctx context.Context, session string, call Call) (ID, any, error) {
	id, args, err := r.Resolve(call)
	if err != nil {
		return id, nil, err
	}
	result, err := r.Run(ctx, id, session, args)
	return id, result, err
}

// DecodeArgs converts loosely typed model arguments; numeric strings are accepted.
func DecodeArgs(raw map[string]any) (Args, error) {
	var args Args
	if len(raw) == 0 {
		return args, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           &args,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return args, err
	}
	if err := decoder.Decode(raw); err != nil {
		return args, err
	}
	return args, nil
}

func (a Args) has(name string) bool {
	switch name {
	case argCoinSymbol:
		return a.CoinSymbol != ""
	case argAmount:
		return a.Amount != nil
	}
	return false
}
