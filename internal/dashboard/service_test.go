package dashboard

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/cache"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/constants"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/gecko"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/normalize"
	"github.com/aman-zulfiqar/gecko-pool-dashboard/internal/table"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpstream struct {
	mu     sync.Mutex
	bodies map[string][]byte
	errs   map[string]error
	images map[string]bool
	calls  []string
}

func (f *fakeUpstream) respond(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.bodies[key], nil
}

func (f *fakeUpstream) NewPools(context.Context, int) ([]byte, error) {
	return f.respond("new_pools")
}

func (f *fakeUpstream) NetworkPools(_ context.Context, network string, _ int) ([]byte, error) {
	return f.respond("pools:" + network)
}

func (f *fakeUpstream) RecentlyUpdatedTokens(context.Context) ([]byte, error) {
	return f.respond("tokens")
}

func (f *fakeUpstream) Networks(context.Context, int) ([]byte, error) {
	return f.respond("networks")
}

func (f *fakeUpstream) PoolOHLCV(_ context.Context, network, pool, timeframe string, _ gecko.OHLCVQuery) ([]byte, error) {
	return f.respond(fmt.Sprintf("ohlcv:%s:%s:%s", network, pool, timeframe))
}

func (f *fakeUpstream) ImageAvailable(_ context.Context, url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.images[url]
}

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("..", "normalize", "testdata", name))
	require.NoError(t, err)
	return b
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestService(t *testing.T, up *fakeUpstream, cfg Config) *Service {
	t.Helper()
	cfg.Upstream = up
	cfg.Logger = quietLogger()
	svc, err := NewService(cfg)
	require.NoError(t, err)
	return svc
}

func TestNewService_RequiresUpstream(t *testing.T) {
	_, err := NewService(Config{})
	assert.Error(t, err)
}

func TestPoolOverview(t *testing.T) {
	up := &fakeUpstream{bodies: map[string][]byte{"new_pools": fixture(t, "new_pools.json")}}
	svc := newTestService(t, up, Config{})

	page, err := svc.PoolOverview(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 2, page.Table.Len())

	assert.Empty(t, page.Top.Error)
	assert.Equal(t, constants.DefaultRankColumn, page.Top.Column)
	assert.Equal(t, []string{"name", "price_change_percentage_h1", "transactions_h1_sells", "transactions_h1_buys"}, page.Top.Rows.Columns)
	require.Len(t, page.Top.Cards, 2)
	assert.Equal(t, "A / WETH", page.Top.Cards[0].Label)
	assert.Equal(t, "5.00%", page.Top.Cards[0].Value)
	assert.Equal(t, "B / WBNB", page.Top.Cards[1].Label)

	require.NotNil(t, page.Bars.Chart)
	assert.Len(t, page.Bars.Chart.Points, 2)

	require.NotNil(t, page.Pie.Chart)
	assert.Equal(t, int64(8), page.Pie.Chart.Slices[0].Value)
	assert.Equal(t, int64(1), page.Pie.Chart.Slices[1].Value)

	assert.Empty(t, page.Pools.Error)
	require.Len(t, page.Pools.Records, 2)
	assert.Equal(t, "0xa", page.Pools.Records[0].Address)
	assert.Equal(t, "150000.25", page.Pools.Records[0].FDVUSD.Decimal.String())
}

func TestPoolOverview_EmptyPage(t *testing.T) {
	up := &fakeUpstream{bodies: map[string][]byte{"new_pools": []byte(`{"data":[]}`)}}
	svc := newTestService(t, up, Config{})

	page, err := svc.PoolOverview(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, page.Table.Len())

	assert.Empty(t, page.Top.Error)
	require.NotNil(t, page.Top.Rows)
	assert.Equal(t, 0, page.Top.Rows.Len())
	assert.Empty(t, page.Top.Cards)

	assert.Empty(t, page.Bars.Error)
	require.NotNil(t, page.Bars.Chart)
	assert.Empty(t, page.Bars.Chart.Points)

	require.NotNil(t, page.Pie.Chart)
	assert.Equal(t, int64(0), page.Pie.Chart.Total)
	assert.Empty(t, page.Pools.Error)
	assert.Empty(t, page.Pools.Records)
}

func TestPoolOverview_NamelessPoolFailsPage(t *testing.T) {
	body := []byte(`{"data":[{"attributes":{"address":"0x1","price_change_percentage":{"h1":"5"},"transactions":{"h1":{"buys":1,"sells":2}}}}]}`)
	up := &fakeUpstream{bodies: map[string][]byte{"new_pools": body}}
	svc := newTestService(t, up, Config{})

	page, err := svc.PoolOverview(context.Background(), "")
	assert.Nil(t, page)
	assert.ErrorIs(t, err, normalize.ErrMissingField)

	_, err = svc.TopPools(context.Background(), "", "", 3, table.NullAsZero)
	assert.ErrorIs(t, err, normalize.ErrMissingField)
}

func TestPoolOverview_NetworkScoped(t *testing.T) {
	up := &fakeUpstream{bodies: map[string][]byte{"pools:eth": fixture(t, "new_pools.json")}}
	svc := newTestService(t, up, Config{})

	_, err := svc.PoolOverview(context.Background(), "eth")
	require.NoError(t, err)
	assert.Equal(t, []string{"pools:eth"}, up.calls)
}

func TestPoolOverview_FetchFailureFailsPage(t *testing.T) {
	up := &fakeUpstream{errs: map[string]error{
		"new_pools": &gecko.HTTPError{StatusCode: 503, URL: "x"},
	}}
	svc := newTestService(t, up, Config{})

	page, err := svc.PoolOverview(context.Background(), "")
	assert.Nil(t, page)
	assert.ErrorIs(t, err, gecko.ErrNetworkFailure)
}

func TestPoolOverview_BadColumnBlanksOnlyItsSection(t *testing.T) {
	body := []byte(`{"data":[
		{"attributes":{"address":"0x1","name":"A","price_change_percentage":{"h1":"up"},"transactions":{"h1":{"buys":2,"sells":1}}}},
		{"attributes":{"address":"0x2","name":"B","price_change_percentage":{"h1":"1.5"},"transactions":{"h1":{"buys":1,"sells":1}}}}
	]}`)
	up := &fakeUpstream{bodies: map[string][]byte{"new_pools": body}}
	svc := newTestService(t, up, Config{})

	page, err := svc.PoolOverview(context.Background(), "")
	require.NoError(t, err)

	assert.NotEmpty(t, page.Top.Error)
	assert.Nil(t, page.Top.Rows)
	assert.NotEmpty(t, page.Bars.Error)
	assert.Nil(t, page.Bars.Chart)

	assert.Empty(t, page.Pie.Error)
	assert.Equal(t, int64(5), page.Pie.Chart.Total)

	assert.NotEmpty(t, page.Pools.Error)
	assert.Nil(t, page.Pools.Records)
}

func TestTopPools(t *testing.T) {
	up := &fakeUpstream{bodies: map[string][]byte{"new_pools": fixture(t, "new_pools.json")}}
	svc := newTestService(t, up, Config{})

	top, err := svc.TopPools(context.Background(), "", "market_cap_usd", 1, table.NullAsZero)
	require.NoError(t, err)
	require.Equal(t, 1, top.Len())
	assert.Equal(t, "B / WBNB", top.Rows[0]["name"])
	assert.Equal(t, 52000.0, top.Rows[0]["market_cap_usd"])

	_, err = svc.TopPools(context.Background(), "", "nope", 3, table.NullAsZero)
	assert.ErrorIs(t, err, table.ErrUnknownColumn)
}

func TestTopPools_Defaults(t *testing.T) {
	up := &fakeUpstream{bodies: map[string][]byte{"new_pools": fixture(t, "new_pools.json")}}
	svc := newTestService(t, up, Config{TopN: 1})

	top, err := svc.TopPools(context.Background(), "", "", 0, table.NullAsZero)
	require.NoError(t, err)
	require.Equal(t, 1, top.Len())
	assert.Equal(t, "A / WETH", top.Rows[0]["name"])
}

func TestTopPools_EmptyPage(t *testing.T) {
	up := &fakeUpstream{bodies: map[string][]byte{"pools:eth": []byte(`{"data":[]}`)}}
	svc := newTestService(t, up, Config{})

	top, err := svc.TopPools(context.Background(), "eth", "", 3, table.NullAsZero)
	require.NoError(t, err)
	assert.Equal(t, 0, top.Len())
	assert.Equal(t, []string{constants.DefaultRankColumn}, top.Columns)
}

func TestTopPools_ConfiguredRankColumn(t *testing.T) {
	up := &fakeUpstream{bodies: map[string][]byte{"new_pools": fixture(t, "new_pools.json")}}
	svc := newTestService(t, up, Config{RankColumn: "market_cap_usd"})
	assert.Equal(t, "market_cap_usd", svc.RankColumn())

	top, err := svc.TopPools(context.Background(), "", "", 1, table.NullAsZero)
	require.NoError(t, err)
	require.Equal(t, 1, top.Len())
	assert.Equal(t, "B / WBNB", top.Rows[0]["name"])
}

func TestTokenPage_ProbesImages(t *testing.T) {
	up := &fakeUpstream{
		bodies: map[string][]byte{"tokens": fixture(t, "tokens.json")},
		images: map[string]bool{},
	}
	svc := newTestService(t, up, Config{ProbeImages: true})

	page, err := svc.TokenPage(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Tokens, 2)
	for _, card := range page.Tokens {
		assert.Equal(t, constants.PlaceholderImageURL, card.ImageURL)
	}
}

func TestTokenPage_WithoutProbe(t *testing.T) {
	up := &fakeUpstream{bodies: map[string][]byte{"tokens": fixture(t, "tokens.json")}}
	svc := newTestService(t, up, Config{})

	page, err := svc.TokenPage(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, constants.PlaceholderImageURL, page.Tokens[0].ImageURL)
	assert.Equal(t, constants.PlaceholderImageURL, page.Tokens[1].ImageURL)

	require.NotNil(t, page.Table)
	assert.Equal(t, 2, page.Table.Len())
	assert.True(t, page.Table.HasColumn("gt_score"))
}

func TestPoolOHLCV(t *testing.T) {
	up := &fakeUpstream{bodies: map[string][]byte{"ohlcv:eth:0xa:day": fixture(t, "ohlcv.json")}}
	svc := newTestService(t, up, Config{})

	view, err := svc.PoolOHLCV(context.Background(), "eth", "0xa", "day", gecko.OHLCVQuery{})
	require.NoError(t, err)
	assert.False(t, view.Chart.Empty)
	assert.Len(t, view.Chart.Candles, 3)
	assert.Equal(t, "day", view.Timeframe)
}

func TestPoolOHLCV_EmptySeries(t *testing.T) {
	up := &fakeUpstream{bodies: map[string][]byte{"ohlcv:eth:0xa:hour": []byte(`{"data":{}}`)}}
	svc := newTestService(t, up, Config{})

	view, err := svc.PoolOHLCV(context.Background(), "eth", "0xa", "hour", gecko.OHLCVQuery{})
	require.NoError(t, err)
	assert.True(t, view.Chart.Empty)
}

func TestNetworks(t *testing.T) {
	up := &fakeUpstream{bodies: map[string][]byte{"networks": fixture(t, "networks.json")}}
	svc := newTestService(t, up, Config{})

	nets, err := svc.Networks(context.Background())
	require.NoError(t, err)
	assert.Len(t, nets, 3)
}

func TestInvalidateCache(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(10, time.Minute)
	require.NoError(t, mem.Set(ctx, "/networks", []byte(`{}`), time.Minute))

	svc := newTestService(t, &fakeUpstream{}, Config{Cache: mem})
	require.NoError(t, svc.Ready(ctx))
	require.NoError(t, svc.InvalidateCache(ctx))
	assert.Equal(t, 0, mem.Len())

	bare := newTestService(t, &fakeUpstream{}, Config{})
	assert.NoError(t, bare.InvalidateCache(ctx))
	assert.NoError(t, bare.Ready(ctx))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "network", errorKind(fmt.Errorf("wrap: %w", gecko.ErrNetworkFailure)))
	assert.Equal(t, "type_coercion", errorKind(&table.CoercionError{Column: "x"}))
	assert.Equal(t, "timeout", errorKind(context.DeadlineExceeded))
	assert.Equal(t, "other", errorKind(fmt.Errorf("boom")))
}
