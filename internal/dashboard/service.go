package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/constants"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/gecko"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/metrics"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/models"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/normalize"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/present"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/storage"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/table"
	"github.com/sirupsen/logrus"
)

// Upstream is the subset of the GeckoTerminal client the dashboard needs.
type Upstream interface {
	NewPools(ctx context.Context, page int) ([]byte, error)
	NetworkPools(ctx context.Context, network string, page int) ([]byte, error)
	RecentlyUpdatedTokens(ctx context.Context) ([]byte, error)
	Networks(ctx context.Context, page int) ([]byte, error)
	PoolOHLCV(ctx context.Context, network, pool, timeframe string, q gecko.OHLCVQuery) ([]byte, error)
	ImageAvailable(ctx context.Context, url string) bool
}

type Config struct {
	Upstream Upstream
	Cache    storage.ResponseCache // optional; used for invalidation and readiness

	Nulls      table.NullPolicy
	TopN       int
	RankColumn string
	TxWindow   string

	// ProbeImages checks token image URLs with a HEAD request before use.
	ProbeImages bool

	Logger *logrus.Logger
}

type Service struct {
	upstream    Upstream
	cache       storage.ResponseCache
	ranker      table.Ranker
	topN        int
	rankColumn  string
	txWindow    string
	probeImages bool
	logger      *logrus.Logger
}

func NewService(cfg Config) (*Service, error) {
	if cfg.Upstream == nil {
		return nil, fmt.Errorf("upstream client is nil")
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.TopN < 1 {
		cfg.TopN = constants.DefaultTopN
	}
	if cfg.RankColumn == "" {
		cfg.RankColumn = constants.DefaultRankColumn
	}
	if cfg.TxWindow == "" {
		cfg.TxWindow = constants.DefaultTxWindow
	}
	return &Service{
		upstream:    cfg.Upstream,
		cache:       cfg.Cache,
		ranker:      table.Ranker{Nulls: cfg.Nulls},
		topN:        cfg.TopN,
		rankColumn:  cfg.RankColumn,
		txWindow:    cfg.TxWindow,
		probeImages: cfg.ProbeImages,
		logger:      cfg.Logger,
	}, nil
}

// poolPage fetches one page of pools: new pools across every network when
// network is empty, otherwise the given network's pools. It returns the raw
// body along with its flattened table.
func (s *Service) poolPage(ctx context.Context, network string) ([]byte, *table.Table, error) {
	var (
		body []byte
		err  error
	)
	if strings.TrimSpace(network) == "" {
		body, err = s.upstream.NewPools(ctx, 1)
	} else {
		body, err = s.upstream.NetworkPools(ctx, network, 1)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("fetch pools: %w", err)
	}

	t, err := normalize.PoolTable(body)
	if err != nil {
		return nil, nil, fmt.Errorf("normalize pools: %w", err)
	}
	return body, t, nil
}

// RankColumn is the column rankings use when the caller names none.
func (s *Service) RankColumn() string {
	return s.rankColumn
}

// PoolOverview builds the pool overview page. A failed fetch fails the page;
// typed records, ranking and chart problems only blank their own section.
func (s *Service) PoolOverview(ctx context.Context, network string) (*PoolOverview, error) {
	log := s.logger.WithField("network", networkLabel(network))

	body, t, err := s.poolPage(ctx, network)
	if err != nil {
		s.sectionFailed(log, "overview", err)
		return nil, err
	}

	page := &PoolOverview{
		Network: network,
		Table:   t,
		Top:     TopSection{Column: s.rankColumn},
		Bars:    BarSection{},
		Pie:     PieSection{Window: s.txWindow},
	}

	if page.Pools.Records, err = normalize.ParsePools(body); err != nil {
		s.sectionFailed(log, "pools", err)
		page.Pools.Error = err.Error()
	}

	top, err := s.ranker.TopN(t, s.rankColumn, s.topN, s.projection(t, s.rankColumn)...)
	if err != nil {
		s.sectionFailed(log, "top", err)
		page.Top.Error = err.Error()
	} else {
		page.Top.Rows = top
		if page.Top.Cards, err = present.MetricCards(top, s.rankColumn, s.txWindow); err != nil {
			s.sectionFailed(log, "top", err)
			page.Top.Error = err.Error()
		}
	}

	if t.Len() == 0 || t.HasColumn(s.rankColumn) {
		if page.Bars.Chart, err = present.PriceChangeBars(t, s.rankColumn); err != nil {
			s.sectionFailed(log, "bars", err)
			page.Bars.Error = err.Error()
		}
	}

	buys, sells, err := table.AggregateBuysSells(t, s.txWindow)
	if err != nil {
		s.sectionFailed(log, "pie", err)
		page.Pie.Error = err.Error()
	} else {
		page.Pie.Chart = present.BuySellPie(buys, sells)
	}

	log.WithField("pools", t.Len()).Debug("built pool overview")
	return page, nil
}

// TopPools ranks the pool table by any column.
func (s *Service) TopPools(ctx context.Context, network, column string, n int, nulls table.NullPolicy) (*table.Table, error) {
	if column == "" {
		column = s.rankColumn
	}
	if n < 1 {
		n = s.topN
	}
	_, t, err := s.poolPage(ctx, network)
	if err != nil {
		return nil, err
	}
	return table.Ranker{Nulls: nulls}.TopN(t, column, n, s.projection(t, column)...)
}

// TokenPage lists recently updated tokens as display cards.
func (s *Service) TokenPage(ctx context.Context) (*TokenPage, error) {
	body, err := s.upstream.RecentlyUpdatedTokens(ctx)
	if err != nil {
		s.sectionFailed(s.logger.WithField("page", "tokens"), "tokens", err)
		return nil, fmt.Errorf("fetch tokens: %w", err)
	}
	tokens, err := normalize.ParseTokens(body)
	if err != nil {
		s.sectionFailed(s.logger.WithField("page", "tokens"), "tokens", err)
		return nil, fmt.Errorf("normalize tokens: %w", err)
	}

	raw, err := normalize.TokenTable(body)
	if err != nil {
		s.sectionFailed(s.logger.WithField("page", "tokens"), "tokens", err)
		return nil, fmt.Errorf("normalize tokens: %w", err)
	}

	var probe present.ImageProbe
	if s.probeImages {
		probe = s.probeAll(ctx, tokens)
	}
	return &TokenPage{Tokens: present.TokenCards(ctx, tokens, probe), Table: raw}, nil
}

// PoolOHLCV returns the candlestick view of one pool.
func (s *Service) PoolOHLCV(ctx context.Context, network, pool, timeframe string, q gecko.OHLCVQuery) (*OHLCVView, error) {
	body, err := s.upstream.PoolOHLCV(ctx, network, pool, timeframe, q)
	if err != nil {
		s.sectionFailed(s.logger.WithFields(logrus.Fields{"network": network, "pool": pool}), "ohlcv", err)
		return nil, fmt.Errorf("fetch ohlcv: %w", err)
	}
	series, err := normalize.ParseOHLCV(body)
	if err != nil {
		s.sectionFailed(s.logger.WithFields(logrus.Fields{"network": network, "pool": pool}), "ohlcv", err)
		return nil, fmt.Errorf("normalize ohlcv: %w", err)
	}
	return &OHLCVView{
		Network:   network,
		Pool:      pool,
		Timeframe: timeframe,
		Chart:     present.Candlesticks(series),
	}, nil
}

func (s *Service) Networks(ctx context.Context) ([]models.Network, error) {
	body, err := s.upstream.Networks(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("fetch networks: %w", err)
	}
	nets, err := normalize.ParseNetworks(body)
	if err != nil {
		return nil, fmt.Errorf("normalize networks: %w", err)
	}
	return nets, nil
}

// InvalidateCache drops every cached upstream response.
func (s *Service) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Purge(ctx)
}

// Ready reports whether the response cache is reachable.
func (s *Service) Ready(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Ping(ctx)
}

// projection lists the columns shown next to a ranking: name, the ranked
// column, then the sell and buy counts of the transaction window when the
// table has them.
func (s *Service) projection(t *table.Table, column string) []string {
	buys, sells := table.TxColumns(s.txWindow)
	cols := []string{}
	for _, c := range []string{constants.NameColumn, column, sells, buys} {
		if slices.Contains(cols, c) {
			continue
		}
		if c == column || t.HasColumn(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

type probeResults map[string]bool

func (p probeResults) ImageAvailable(_ context.Context, url string) bool {
	return p[url]
}

// probeAll checks every distinct image URL, a few at a time.
func (s *Service) probeAll(ctx context.Context, tokens []models.TokenRecord) probeResults {
	const workers = 8

	urls := make(map[string]struct{})
	for _, t := range tokens {
		if t.ImageURL != "" {
			urls[t.ImageURL] = struct{}{}
		}
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, workers)
		out = make(probeResults, len(urls))
	)
	for u := range urls {
		wg.Add(1)
		sem <- struct{}{}
		go func(u string) {
			defer wg.Done()
			defer func() { <-sem }()
			ok := s.upstream.ImageAvailable(ctx, u)
			mu.Lock()
			out[u] = ok
			mu.Unlock()
		}(u)
	}
	wg.Wait()
	return out
}

func (s *Service) sectionFailed(log *logrus.Entry, section string, err error) {
	kind := errorKind(err)
	metrics.RecordSectionFailure(section, kind)
	log.WithError(err).WithFields(logrus.Fields{"section": section, "kind": kind}).Warn("dashboard section failed")
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, gecko.ErrNetworkFailure):
		return "network"
	case errors.Is(err, normalize.ErrMissingField), errors.Is(err, normalize.ErrInvalidJSON):
		return "missing_field"
	case errors.Is(err, table.ErrTypeCoercion):
		return "type_coercion"
	case errors.Is(err, table.ErrUnknownColumn):
		return "unknown_column"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	}
	return "other"
}

func networkLabel(network string) string {
	if network == "" {
		return "all"
	}
	return network
}
