// Package pricefeed fetches spot prices and market listings from a
// CoinGecko-compatible API, with short-lived in-memory caching so bursts
// of portfolio valuations and order checks do not hammer the upstream.
package pricefeed

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/papersim/papersim/pkg/cache"
)

// ErrUnavailable marks failures of the upstream price source. Callers map
// it to a gateway error instead of blaming the request.
var ErrUnavailable = errors.New("price source unavailable")

// Market is one row of a market-cap ranked listing.
type Market struct {
	ID             string          `json:"id"`
	Symbol         string          `json:"symbol"`
	Name           string          `json:"name"`
	Image          string          `json:"image"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	MarketCap      decimal.Decimal `json:"market_cap"`
	MarketCapRank  int             `json:"market_cap_rank"`
	TotalVolume    decimal.Decimal `json:"total_volume"`
	High24h        decimal.Decimal `json:"high_24h"`
	Low24h         decimal.Decimal `json:"low_24h"`
	PriceChange24h decimal.Decimal `json:"price_change_percentage_24h"`
}

// SearchCoin is one hit of a free-text coin search.
type SearchCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank int    `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
	Large         string `json:"large"`
}

type searchResponse struct {
	Coins []SearchCoin `json:"coins"`
}

// Config controls the upstream endpoint and cache lifetimes.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	PriceCacheTTL  time.Duration
	MarketCacheTTL time.Duration
}

// Client talks to the price API. Safe for concurrent use.
type Client struct {
	http    *resty.Client
	prices  *cache.InMemoryCache[string, decimal.Decimal]
	markets *cache.InMemoryCache[string, []Market]
	search  *cache.InMemoryCache[string, []SearchCoin]
}

// NewClient builds a Client with retries and Retry-After aware backoff.
func NewClient(cfg Config) *Client {
	base := strings.TrimSuffix(cfg.BaseURL, "/")

	client := resty.New().
		SetBaseURL(base).
		SetTimeout(cfg.Timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(10 * time.Second).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			if resp.StatusCode() == 429 {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if wait, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return wait, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		})

	return &Client{
		http:    client,
		prices:  cache.NewInMemoryCache[string, decimal.Decimal](cfg.PriceCacheTTL),
		markets: cache.NewInMemoryCache[string, []Market](cfg.MarketCacheTTL),
		search:  cache.NewInMemoryCache[string, []SearchCoin](cfg.MarketCacheTTL),
	}
}

// GetPrices returns USD prices for the given coin IDs. IDs the upstream
// does not know are simply absent from the result; callers must not assume
// every requested ID is present. Cached entries are served without a
// network round trip.
func (c *Client) GetPrices(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	result := make(map[string]decimal.Decimal, len(ids))
	var missing []string
	for _, id := range ids {
		if id == "" {
			continue
		}
		if price, ok := c.prices.Get(id); ok {
			result[id] = price
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return result, nil
	}

	var body map[string]map[string]decimal.Decimal
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("ids", strings.Join(missing, ",")).
		SetQueryParam("vs_currencies", "usd").
		SetResult(&body).
		Get("/simple/price")
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	if !resp.IsSuccess() {
		return nil, errors.Wrapf(ErrUnavailable, "simple/price returned %d", resp.StatusCode())
	}

	for id, quotes := range body {
		price, ok := quotes["usd"]
		if !ok {
			continue
		}
		c.prices.Set(id, price, 0)
		result[id] = price
	}
	return result, nil
}

// TopMarkets returns the top coins by market cap.
func (c *Client) TopMarkets(ctx context.Context, limit int) ([]Market, error) {
	if limit <= 0 {
		limit = 50
	}
	key := "top:" + strconv.Itoa(limit)
	if markets, ok := c.markets.Get(key); ok {
		return markets, nil
	}

	var body []Market
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"vs_currency": "usd",
			"order":       "market_cap_desc",
			"per_page":    strconv.Itoa(limit),
			"page":        "1",
			"sparkline":   "false",
		}).
		SetResult(&body).
		Get("/coins/markets")
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	if !resp.IsSuccess() {
		return nil, errors.Wrapf(ErrUnavailable, "coins/markets returned %d", resp.StatusCode())
	}

	c.markets.Set(key, body, 0)
	return body, nil
}

// Search looks up coins by free-text query.
func (c *Client) Search(ctx context.Context, query string) ([]SearchCoin, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	key := "q:" + strings.ToLower(query)
	if coins, ok := c.search.Get(key); ok {
		return coins, nil
	}

	var body searchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		SetResult(&body).
		Get("/search")
	if err != nil {
		return nil, errors.Wrap(ErrUnavailable, err.Error())
	}
	if !resp.IsSuccess() {
		return nil, errors.Wrapf(ErrUnavailable, "search returned %d", resp.StatusCode())
	}

	c.search.Set(key, body.Coins, 0)
	return body.Coins, nil
}
