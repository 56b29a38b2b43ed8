package constants

import "time"

// GeckoTerminal endpoints
const (
	DefaultGeckoBaseURL     = "https://api.geckoterminal.com/api/v2"
	NewPoolsEndpoint        = "/networks/new_pools"
	NetworksEndpoint        = "/networks"
	RecentTokensEndpoint    = "/tokens/info_recently_updated"
	NetworkPoolsEndpointFmt = "/networks/%s/pools"
	PoolOHLCVEndpointFmt    = "/networks/%s/pools/%s/ohlcv/%s"
)

// Endpoint labels used for logging and metrics
const (
	EndpointNewPools     = "new_pools"
	EndpointNetworkPools = "network_pools"
	EndpointRecentTokens = "tokens_recently_updated"
	EndpointPoolOHLCV    = "pool_ohlcv"
	EndpointNetworks     = "networks"
)

// Redis keys
const (
	RedisKeyResponsePrefix = "gecko:resp:"
	RedisKeyResponseIndex  = "gecko:resp:index"
	RedisChannelInvalidate = "gecko:resp:invalidate"
)

// Presentation defaults
const (
	PlaceholderImageURL = "https://via.placeholder.com/200x200.png?text=Crypto+Icon"
	DefaultRankColumn   = "price_change_percentage_h1"
	DefaultTxWindow     = "h1"
	DefaultTopN         = 3
	NameColumn          = "name"
)

// Limits
const (
	MaxTopN        = 100
	MaxOHLCVLimit  = 1000
	ImageProbeWait = 3 * time.Second
)

// Allowed OHLCV aggregates per timeframe
var OHLCVAggregates = map[string][]int{
	"day":    {1},
	"hour":   {1, 4, 12},
	"minute": {1, 5, 15},
}
