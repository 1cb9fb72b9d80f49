package market

// CoinStats is the summary returned for a single coin.
type CoinStats struct {
	Symbol                   string  `json:"symbol"`
	MarketCap                float64 `json:"market_cap"`
	PriceChangePercentage24h float64 `json:"price_change_percentage_24h"`
	Description              string  `json:"description"`
}

// TrendingCoin is one entry of the trending search list.
type TrendingCoin struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// ChartPoint is a [timestamp ms, price] pair as returned by the provider.
type ChartPoint [2]float64

// Timestamp returns the point time in Unix milliseconds.
func (p ChartPoint) Timestamp() int64 { return int64(p[0]) }

// Price returns the point price in USD.
func (p ChartPoint) Price() float64 { return p[1] }

// ChartSeries is a price history ordered by time.
type ChartSeries []ChartPoint

// provider payloads

type coinDetail struct {
	Symbol     string `json:"symbol"`
	MarketData *struct {
		MarketCap                map[string]float64 `json:"market_cap"`
		PriceChangePercentage24h *float64           `json:"price_change_percentage_24h"`
	} `json:"market_data"`
	Description map[string]string `json:"description"`
}

type trendingResponse struct {
	Coins []struct {
		Item TrendingCoin `json:"item"`
	} `json:"coins"`
}

type marketChartResponse struct {
	Prices ChartSeries `json:"prices"`
}
