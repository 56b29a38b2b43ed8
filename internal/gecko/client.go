package gecko

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/constants"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/metrics"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/storage"
	"github.com/sirupsen/logrus"
)

// ErrNetworkFailure matches every failed upstream call: transport errors and
// any status other than 200.
var ErrNetworkFailure = errors.New("network failure")

type Client struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string
	HTTP         *http.Client

	// Cache is optional; only 200 bodies are stored.
	Cache    storage.ResponseCache
	CacheTTL time.Duration

	Logger *logrus.Logger
}

// ClientConfig holds configuration for the GeckoTerminal client
type ClientConfig struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string
	HTTP         *http.Client
	Cache        storage.ResponseCache
	CacheTTL     time.Duration
	Logger       *logrus.Logger
}

func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = constants.DefaultGeckoBaseURL
	}
	header := strings.TrimSpace(cfg.APIKeyHeader)
	if header == "" {
		header = "x-cg-pro-api-key"
	}
	httpClient := cfg.HTTP
	if httpClient == nil {
		// No client timeout; callers bound each request with their context
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Client{
		BaseURL:      baseURL,
		APIKey:       strings.TrimSpace(cfg.APIKey),
		APIKeyHeader: header,
		HTTP:         httpClient,
		Cache:        cfg.Cache,
		CacheTTL:     cfg.CacheTTL,
		Logger:       cfg.Logger,
	}
}

type HTTPError struct {
	StatusCode int
	URL        string
	Body       []byte
}

// maxErrorBody caps how many bytes of an upstream body an error message quotes.
const maxErrorBody = 256

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if len(b) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(b[cut]) {
			cut--
		}
		b = b[:cut] + "..."
	}
	if b == "" {
		return fmt.Sprintf("geckoterminal http %d", e.StatusCode)
	}
	return fmt.Sprintf("geckoterminal http %d: %s", e.StatusCode, b)
}

func (e *HTTPError) Is(target error) bool {
	return target == ErrNetworkFailure
}

// Get issues a single GET for path and returns the raw body. The response
// cache, when configured, is consulted first and keyed by path.
func (c *Client) Get(ctx context.Context, endpoint, path string) ([]byte, error) {
	log := c.Logger.WithFields(logrus.Fields{"endpoint": endpoint, "path": path})

	if c.Cache != nil {
		body, ok, err := c.Cache.Get(ctx, path)
		switch {
		case err != nil:
			metrics.RecordCacheLookup("error")
			log.WithError(err).Warn("response cache lookup failed")
		case ok:
			metrics.RecordCacheLookup("hit")
			log.Debug("response cache hit")
			return body, nil
		default:
			metrics.RecordCacheLookup("miss")
		}
	}

	body, err := c.do(ctx, endpoint, http.MethodGet, c.BaseURL+path)
	if err != nil {
		log.WithError(err).Warn("geckoterminal request failed")
		return nil, err
	}

	if c.Cache != nil {
		if err := c.Cache.Set(ctx, path, body, c.CacheTTL); err != nil {
			log.WithError(err).Warn("response cache store failed")
		}
	}
	return body, nil
}

// ImageAvailable reports whether url answers a HEAD request with 200.
func (c *Client) ImageAvailable(ctx context.Context, url string) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, constants.ImageProbeWait)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.WithError(err).WithField("url", url).Debug("image probe failed")
		return false
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	return res.StatusCode == http.StatusOK
}

func (c *Client) do(ctx context.Context, endpoint, method, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set(c.APIKeyHeader, c.APIKey)
	}

	start := time.Now()
	res, err := c.HTTP.Do(req)
	if err != nil {
		metrics.RecordUpstream(endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("%w: %s %s: %v", ErrNetworkFailure, method, u, err)
	}
	defer res.Body.Close()
	metrics.RecordUpstream(endpoint, res.StatusCode, time.Since(start))

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetworkFailure, err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: res.StatusCode, URL: u, Body: body}
	}
	return body, nil
}
