// Package tools declares the functions the model may call and dispatches them.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ID identifies one of the fixed tools.
type ID int

const (
	GetCurrentPrice ID = iota + 1
	GetCoinStats
	ListTrendingCoins
	Get7DayChartData
	AddHolding
	RemoveHolding
	ViewPortfolio
)

var names = map[ID]string{
	GetCurrentPrice:   "get_current_price",
	GetCoinStats:      "get_coin_stats",
	ListTrendingCoins: "list_trending_coins",
	Get7DayChartData:  "get_7_day_chart_data",
	AddHolding:        "add_holding",
	RemoveHolding:     "remove_holding",
	ViewPortfolio:     "view_portfolio",
}

// All returns every tool in declaration order.
func All() []ID {
	return []ID{
		GetCurrentPrice,
		ListTrendingCoins,
		GetCoinStats,
		Get7DayChartData,
		AddHolding,
		RemoveHolding,
		ViewPortfolio,
	}
}

func (id ID) String() string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("tool(%d)", int(id))
}

// Parse maps a tool name to its ID.
func Parse(name string) (ID, error) {
	for id, n := range names {
		if n == name {
			return id, nil
		}
	}
	return 0, &NotImplementedError{Name: name}
}

var (
	// ErrNotImplemented is returned for tool names outside the fixed set.
	ErrNotImplemented = errors.New("tool not implemented")
	// ErrMissingArgument is returned when a required argument is absent.
	ErrMissingArgument = errors.New("missing argument")
	// ErrInvalidArgument is returned when an argument has the wrong type.
	ErrInvalidArgument = errors.New("invalid argument")
)

// NotImplementedError reports an unknown tool name.
type NotImplementedError struct {
	Name string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("Function '%s' is not implemented.", e.Name)
}

func (e *NotImplementedError) Is(target error) bool { return target == ErrNotImplemented }

// MissingArgumentError reports a required argument the model left out.
type MissingArgumentError struct {
	Tool     ID
	Argument string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("Missing required '%s' argument for function '%s'", e.Argument, e.Tool)
}

func (e *MissingArgumentError) Is(target error) bool { return target == ErrMissingArgument }

// ParamType is a JSON schema primitive type.
type ParamType string

const (
	String ParamType = "string"
	Number ParamType = "number"
)

// Param describes one tool argument.
type Param struct {
	Name        string
	Type        ParamType
	Description string
}

// Declaration describes a tool to the model.
type Declaration struct {
	ID          ID
	Description string
	Params      []Param
	Required    []string
}

// Name returns the tool name.
func (d Declaration) Name() string { return d.ID.String() }

// MarshalJSON renders the declaration as a function-calling schema.
func (d Declaration) MarshalJSON() ([]byte, error) {
	props := make(map[string]any, len(d.Params))
	for _, p := range d.Params {
		props[p.Name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
	}
	required := d.Required
	if required == nil {
		required = []string{}
	}
	return json.Marshal(map[string]any{
		"name":        d.Name(),
		"description": d.Description,
		"parameters": map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		},
	})
}

const (
	argCoinSymbol = "coinSymbol"
	argAmount     = "amount"
)

func coinSymbolParam(example string) Param {
	return Param{
		Name:        argCoinSymbol,
		Type:        String,
		Description: "The symbol of the coin, e.g., " + example,
	}
}

var declarations = map[ID]Declaration{
	GetCurrentPrice: {
		Description: "Get the current price of a specific cryptocurrency in USD.",
		Params:      []Param{coinSymbolParam("'BTC' for Bitcoin or 'ETH' for Ethereum.")},
		Required:    []string{argCoinSymbol},
	},
	ListTrendingCoins: {
		Description: "generate a list of the top 7 trending coins on CoinGecko right now.",
	},
	GetCoinStats: {
		Description: "Get basic statistics for a specific cryptocurrency, including its market cap, 24-hour price change, and a brief description.",
		Params:      []Param{coinSymbolParam("'BTC' for Bitcoin or 'ETH' for Ethereum.")},
		Required:    []string{argCoinSymbol},
	},
	Get7DayChartData: {
		Description: "Get historical price data for a cryptocurrency over the last 7 days. Use this when a user asks for a chart, graph, or price history.",
		Params:      []Param{coinSymbolParam("'BTC' for Bitcoin.")},
		Required:    []string{argCoinSymbol},
	},
	AddHolding: {
		Description: "Add a cryptocurrency to your portfolio.",
		Params: []Param{
			coinSymbolParam("'BTC' for Bitcoin."),
			{Name: argAmount, Type: Number, Description: "The amount of the cryptocurrency to add."},
		},
		Required: []string{argCoinSymbol, argAmount},
	},
	RemoveHolding: {
		Description: "Remove a cryptocurrency from your portfolio.",
		Params: []Param{
			coinSymbolParam("'BTC' for Bitcoin."),
			{Name: argAmount, Type: Number, Description: "The amount of the cryptocurrency to remove."},
		},
		Required: []string{argCoinSymbol, argAmount},
	},
	ViewPortfolio: {
		Description: "View your current cryptocurrency portfolio with current values.",
	},
}

// Declarations returns every tool declaration in declaration order.
func Declarations() []Declaration {
	out := make([]Declaration, 0, len(declarations))
	for _, id := range All() {
		d := declarations[id]
		d.ID = id
		out = append(out, d)
	}
	return out
}
