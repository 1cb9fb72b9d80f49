package market

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/edibez/cryptochat/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type provider struct {
	*httptest.Server
	hits    atomic.Int32
	lastKey atomic.Value
	lastIDs atomic.Value
}

func newProvider(t *testing.T, handler http.HandlerFunc) *provider {
	t.Helper()
	p := &provider{}
	p.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.hits.Add(1)
		p.lastKey.Store(r.Header.Get(apiKeyHeader))
		p.lastIDs.Store(r.URL.Query().Get("ids"))
		handler(w, r)
	}))
	t.Cleanup(p.Close)
	return p
}

func TestGetCurrentPrice(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		w.Write([]byte(`{"bitcoin":{"usd":65000.5}}`))
	})
	c := NewClient(p.URL, "cg-key")

	price, err := c.GetCurrentPrice(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, 65000.5, price)
	assert.Equal(t, "cg-key", p.lastKey.Load())
}

func TestGetCurrentPriceCaseInsensitive(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"bitcoin":{"usd":1}}`))
	})
	c := NewClient(p.URL, "")

	for _, sym := range []string{"btc", "BTC"} {
		_, err := c.GetCurrentPrice(context.Background(), sym)
		require.NoError(t, err)
		assert.Equal(t, "bitcoin", p.lastIDs.Load())
	}
}

func TestNoAPIKeyHeaderWhenUnset(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, present := r.Header[http.CanonicalHeaderKey(apiKeyHeader)]
		assert.False(t, present)
		w.Write([]byte(`{"coins":[]}`))
	})
	c := NewClient(p.URL, "")

	_, err := c.ListTrendingCoins(context.Background())
	require.NoError(t, err)
}

func TestUnsupportedCoinMakesNoRequest(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	c := NewClient(p.URL, "cg-key")
	ctx := context.Background()

	_, err := c.GetCurrentPrice(ctx, "XRP")
	assert.ErrorIs(t, err, ErrUnsupportedCoin)
	assert.EqualError(t, err, "Cryptocurrency 'XRP' not supported.")

	_, err = c.GetCoinStats(ctx, "XRP")
	assert.ErrorIs(t, err, ErrUnsupportedCoin)

	_, err = c.Get7DayChartData(ctx, "XRP")
	assert.ErrorIs(t, err, ErrUnsupportedCoin)

	assert.Equal(t, int32(0), p.hits.Load())
}

func TestGetCurrentPriceUpstreamFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non-success status", http.StatusTooManyRequests, `{}`},
		{"missing coin", http.StatusOK, `{}`},
		{"missing usd", http.StatusOK, `{"bitcoin":{}}`},
		{"malformed body", http.StatusOK, `not json`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			c := NewClient(p.URL, "")

			_, err := c.GetCurrentPrice(context.Background(), "btc")
			assert.ErrorIs(t, err, ErrUpstream)
			assert.False(t, errors.Is(err, ErrUnsupportedCoin))
		})
	}
}

func TestUpstreamStatusMessage(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c := NewClient(p.URL, "")

	_, err := c.GetCurrentPrice(context.Background(), "eth")
	assert.EqualError(t, err, "Failed to fetch price data. Status: 503")
}

func TestGetCoinStats(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/ethereum", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("market_data"))
		assert.Equal(t, "false", r.URL.Query().Get("tickers"))
		w.Write([]byte(`{
			"symbol": "eth",
			"market_data": {
				"market_cap": {"usd": 400000000000, "eur": 1},
				"price_change_percentage_24h": -2.5
			},
			"description": {"en": "Ethereum is a decentralized platform. It runs smart contracts. More text."}
		}`))
	})
	c := NewClient(p.URL, "")

	stats, err := c.GetCoinStats(context.Background(), "Eth")
	require.NoError(t, err)
	assert.Equal(t, &CoinStats{
		Symbol:                   "ETH",
		MarketCap:                400000000000,
		PriceChangePercentage24h: -2.5,
		Description:              "Ethereum is a decentralized platform.",
	}, stats)
}

func TestGetCoinStatsMissingMarketData(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbol":"btc","description":{"en":"x"}}`))
	})
	c := NewClient(p.URL, "")

	_, err := c.GetCoinStats(context.Background(), "btc")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestListTrendingCoinsKeepsOrder(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/trending", r.URL.Path)
		w.Write([]byte(`{"coins":[
			{"item":{"id":"pepe","name":"Pepe","symbol":"PEPE","market_cap_rank":30}},
			{"item":{"id":"solana","name":"Solana","symbol":"SOL"}}
		]}`))
	})
	c := NewClient(p.URL, "")

	coins, err := c.ListTrendingCoins(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []TrendingCoin{
		{ID: "pepe", Name: "Pepe", Symbol: "PEPE"},
		{ID: "solana", Name: "Solana", Symbol: "SOL"},
	}, coins)
}

func TestListTrendingCoinsFailure(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := NewClient(p.URL, "")

	_, err := c.ListTrendingCoins(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestGet7DayChartData(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/coins/solana/market_chart", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "7", q.Get("days"))
		assert.Equal(t, "daily", q.Get("interval"))
		assert.Equal(t, "usd", q.Get("vs_currency"))
		w.Write([]byte(`{"prices":[[1700000000000,150.1],[1700086400000,152.3]],"market_caps":[]}`))
	})
	c := NewClient(p.URL, "")

	series, err := c.Get7DayChartData(context.Background(), "sol")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, int64(1700000000000), series[0].Timestamp())
	assert.Equal(t, 152.3, series[1].Price())
}

func TestGet7DayChartDataMissingPrices(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	c := NewClient(p.URL, "")

	_, err := c.Get7DayChartData(context.Background(), "sol")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestNetworkFailureIsUpstream(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {})
	url := p.URL
	p.Close()
	c := NewClient(url, "")

	_, err := c.GetCurrentPrice(context.Background(), "doge")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestCachedResponses(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"dogecoin":{"usd":0.12}}`))
	})
	c := NewClient(p.URL, "", WithCache(cache.NewMemory(), time.Minute))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		price, err := c.GetCurrentPrice(ctx, "DOGE")
		require.NoError(t, err)
		assert.Equal(t, 0.12, price)
	}
	assert.Equal(t, int32(1), p.hits.Load())
}

func TestFailuresAreNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"bitcoin":{"usd":2}}`))
	})
	c := NewClient(p.URL, "", WithCache(cache.NewMemory(), time.Minute))
	ctx := context.Background()

	_, err := c.GetCurrentPrice(ctx, "btc")
	require.Error(t, err)

	fail.Store(false)
	price, err := c.GetCurrentPrice(ctx, "btc")
	require.NoError(t, err)
	assert.Equal(t, 2.0, price)
}

func TestFirstSentence(t *testing.T) {
	assert.Equal(t, "Bitcoin is money.", firstSentence("Bitcoin is money. It was created in 2009."))
	assert.Equal(t, "One sentence only.", firstSentence("One sentence only"))
	assert.Equal(t, "", firstSentence(""))
}
