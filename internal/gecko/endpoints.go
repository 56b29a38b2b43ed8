package gecko

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/constants"
)

// OHLCVQuery carries the optional query parameters of the OHLCV endpoint.
type OHLCVQuery struct {
	Aggregate       int    // 0 means upstream default
	Limit           int    // 0 means upstream default (100)
	Currency        string // usd | token
	Token           string // base | quote
	BeforeTimestamp int64  // seconds since epoch; 0 means now
}

func (q OHLCVQuery) Validate(timeframe string) error {
	allowed, ok := constants.OHLCVAggregates[timeframe]
	if !ok {
		return fmt.Errorf("timeframe must be day, hour or minute")
	}
	if q.Aggregate != 0 && !slices.Contains(allowed, q.Aggregate) {
		return fmt.Errorf("aggregate %d is not allowed for timeframe %s", q.Aggregate, timeframe)
	}
	if q.Limit < 0 || q.Limit > constants.MaxOHLCVLimit {
		return fmt.Errorf("limit must be between 1 and %d", constants.MaxOHLCVLimit)
	}
	if q.Currency != "" && q.Currency != "usd" && q.Currency != "token" {
		return fmt.Errorf("currency must be usd or token")
	}
	if q.Token != "" && q.Token != "base" && q.Token != "quote" {
		return fmt.Errorf("token must be base or quote")
	}
	if q.BeforeTimestamp < 0 {
		return fmt.Errorf("before_timestamp must not be negative")
	}
	return nil
}

func (q OHLCVQuery) encode() string {
	v := url.Values{}
	if q.Aggregate > 0 {
		v.Set("aggregate", strconv.Itoa(q.Aggregate))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Currency != "" {
		v.Set("currency", q.Currency)
	}
	if q.Token != "" {
		v.Set("token", q.Token)
	}
	if q.BeforeTimestamp > 0 {
		v.Set("before_timestamp", strconv.FormatInt(q.BeforeTimestamp, 10))
	}
	return v.Encode()
}

func pageQuery(page int) string {
	if page < 1 {
		page = 1
	}
	return "?page=" + strconv.Itoa(page)
}

// NewPools fetches the most recently created pools across all networks.
func (c *Client) NewPools(ctx context.Context, page int) ([]byte, error) {
	return c.Get(ctx, constants.EndpointNewPools, constants.NewPoolsEndpoint+pageQuery(page))
}

// NetworkPools fetches the top pools of a single network.
func (c *Client) NetworkPools(ctx context.Context, network string, page int) ([]byte, error) {
	network = strings.TrimSpace(network)
	if network == "" {
		return nil, fmt.Errorf("network is required")
	}
	path := fmt.Sprintf(constants.NetworkPoolsEndpointFmt, url.PathEscape(network)) + pageQuery(page)
	return c.Get(ctx, constants.EndpointNetworkPools, path)
}

func (c *Client) RecentlyUpdatedTokens(ctx context.Context) ([]byte, error) {
	return c.Get(ctx, constants.EndpointRecentTokens, constants.RecentTokensEndpoint)
}

func (c *Client) Networks(ctx context.Context, page int) ([]byte, error) {
	return c.Get(ctx, constants.EndpointNetworks, constants.NetworksEndpoint+pageQuery(page))
}

// PoolOHLCV fetches the candle series of one pool.
func (c *Client) PoolOHLCV(ctx context.Context, network, pool, timeframe string, q OHLCVQuery) ([]byte, error) {
	network = strings.TrimSpace(network)
	pool = strings.TrimSpace(pool)
	if network == "" {
		return nil, fmt.Errorf("network is required")
	}
	if pool == "" {
		return nil, fmt.Errorf("pool is required")
	}
	if err := q.Validate(timeframe); err != nil {
		return nil, err
	}

	path := fmt.Sprintf(constants.PoolOHLCVEndpointFmt,
		url.PathEscape(network), url.PathEscape(pool), timeframe)
	if qs := q.encode(); qs != "" {
		path += "?" + qs
	}
	return c.Get(ctx, constants.EndpointPoolOHLCV, path)
}
