// Package market is a client for the CoinGecko REST API.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/edibez/cryptochat/internal/cache"
	"github.com/edibez/cryptochat/internal/coins"
	"go.uber.org/zap"
)

const (
	// DefaultBaseURL is the public CoinGecko API root.
	DefaultBaseURL = "https://api.coingecko.com/api/v3"

	apiKeyHeader = "x-cg-demo-api-key"
	chartDays    = "7"
)

// Client for the market data provider
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithCache stores successful responses for ttl.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a new market data client
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		cache:  cache.Nop{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetCurrentPrice returns the USD price of a coin.
func (c *Client) GetCurrentPrice(ctx context.Context, symbol string) (float64, error) {
	id, err := resolve(symbol)
	if err != nil {
		return 0, err
	}

	query := url.Values{}
	query.Set("ids", id)
	query.Set("vs_currencies", "usd")

	var data map[string]struct {
		USD *float64 `json:"usd"`
	}
	if err := c.get(ctx, "price data", "/simple/price", query, &data); err != nil {
		return 0, err
	}

	entry, ok := data[id]
	if !ok || entry.USD == nil {
		return 0, &UpstreamError{
			Op:  "price data",
			Err: fmt.Errorf("price for '%s' not found in API response", symbol),
		}
	}
	return *entry.USD, nil
}

// GetCoinStats returns market cap, 24h change and a one-sentence description.
func (c *Client) GetCoinStats(ctx context.Context, symbol string) (*CoinStats, error) {
	id, err := resolve(symbol)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("localization", "false")
	query.Set("tickers", "false")
	query.Set("market_data", "true")
	query.Set("community_data", "false")
	query.Set("developer_data", "false")
	query.Set("sparkline", "false")

	var data coinDetail
	if err := c.get(ctx, "stats", "/coins/"+url.PathEscape(id), query, &data); err != nil {
		return nil, err
	}
	if data.MarketData == nil {
		return nil, &UpstreamError{Op: "stats", Err: fmt.Errorf("market data for '%s' missing from API response", symbol)}
	}

	stats := &CoinStats{
		Symbol:      coins.Display(data.Symbol),
		MarketCap:   data.MarketData.MarketCap["usd"],
		Description: firstSentence(data.Description["en"]),
	}
	if stats.Symbol == "" {
		stats.Symbol = coins.Display(symbol)
	}
	if data.MarketData.PriceChangePercentage24h != nil {
		stats.PriceChangePercentage24h = *data.MarketData.PriceChangePercentage24h
	}
	return stats, nil
}

// ListTrendingCoins returns the provider's trending coins in rank order.
func (c *Client) ListTrendingCoins(ctx context.Context) ([]TrendingCoin, error) {
	var data trendingResponse
	if err := c.get(ctx, "trending data", "/search/trending", nil, &data); err != nil {
		return nil, err
	}

	out := make([]TrendingCoin, 0, len(data.Coins))
	for _, coin := range data.Coins {
		out = append(out, coin.Item)
	}
	return out, nil
}

// Get7DayChartData returns daily [timestamp, price] points for the last 7 days.
func (c *Client) Get7DayChartData(ctx context.Context, symbol string) (ChartSeries, error) {
	id, err := resolve(symbol)
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("vs_currency", "usd")
	query.Set("days", chartDays)
	query.Set("interval", "daily")

	var data marketChartResponse
	if err := c.get(ctx, "chart data", "/coins/"+url.PathEscape(id)+"/market_chart", query, &data); err != nil {
		return nil, err
	}
	if data.Prices == nil {
		return nil, &UpstreamError{Op: "chart data", Err: fmt.Errorf("prices for '%s' missing from API response", symbol)}
	}
	return data.Prices, nil
}

func resolve(symbol string) (string, error) {
	id, ok := coins.ProviderID(symbol)
	if !ok {
		return "", &UnsupportedCoinError{Symbol: symbol}
	}
	return id, nil
}

// get fetches path and decodes the JSON body into out. Successful bodies
// are cached by path and query.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	key := strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
		key += "?" + query.Encode()
	}

	if body, ok := c.cached(ctx, key); ok {
		if err := json.Unmarshal(body, out); err == nil {
			return nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	c.logger.Debug("fetching", zap.String("op", op), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{Op: op, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}

	if c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, key, body, c.cacheTTL); err != nil {
			c.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cacheTTL <= 0 {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return body, ok
}

// firstSentence keeps the text up to the first ". " and ends it with a period.
func firstSentence(text string) string {
	if text == "" {
		return ""
	}
	first, _, _ := strings.Cut(text, ". ")
	return first + "."
}
