package feed_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/domain"
	"github.com/couchcryptid/sales-feed-service/internal/feed"
	"github.com/couchcryptid/sales-feed-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type recordingSink struct {
	mu    sync.Mutex
	sales []domain.Sale
	err   error
}

func (s *recordingSink) Append(_ context.Context, sale domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sales = append(s.sales, sale)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

type mockPublisher struct {
	published []domain.Sale
	err       error
}

func (p *mockPublisher) Publish(_ context.Context, sale domain.Sale) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, sale)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testStart = time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC)

func newTestGenerator(sink feed.Appender, clock clockwork.Clock, opts ...feed.Option) (*feed.Generator, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	opts = append([]feed.Option{feed.WithClock(clock), feed.WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	return feed.NewGenerator(sink, 5*time.Second, discardLogger(), metrics, opts...), metrics
}

// --- tests ---

func TestGenerator_Generate_FieldDomains(t *testing.T) {
	g, _ := newTestGenerator(&recordingSink{}, clockwork.NewFakeClockAt(testStart))

	seenCities := map[string]bool{}
	seenItems := map[string]bool{}
	seenQty := map[int]bool{}
	minPrice, maxPrice := domain.MaxPrice, domain.MinPrice

	for range 20000 {
		sale := g.Generate()
		require.NoError(t, sale.Validate())
		seenCities[sale.City] = true
		seenItems[sale.Item] = true
		seenQty[sale.Quantity] = true
		minPrice = min(minPrice, sale.Price)
		maxPrice = max(maxPrice, sale.Price)
	}

	assert.Len(t, seenCities, len(domain.Cities), "every city is drawn")
	assert.Len(t, seenItems, len(domain.Items), "every item is drawn")
	assert.Len(t, seenQty, domain.MaxQuantity-domain.MinQuantity+1, "both quantity bounds are reachable")
	assert.Equal(t, domain.MinPrice, minPrice)
	assert.Equal(t, domain.MaxPrice, maxPrice)
}

func TestGenerator_Generate_SecondResolution(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testStart.Add(750 * time.Millisecond))
	g, _ := newTestGenerator(&recordingSink{}, clock)

	assert.Equal(t, testStart, g.Generate().Timestamp)
}

func TestGenerator_Generate_Deterministic(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testStart)
	g1, _ := newTestGenerator(&recordingSink{}, clock)
	g2, _ := newTestGenerator(&recordingSink{}, clock)

	for range 10 {
		assert.Equal(t, g1.Generate(), g2.Generate())
	}
}

func TestGenerator_Step_AppendsOnceAndPublishes(t *testing.T) {
	sink := &recordingSink{}
	pub := &mockPublisher{}
	g, metrics := newTestGenerator(sink, clockwork.NewFakeClockAt(testStart), feed.WithPublisher("kafka", pub))

	require.Error(t, g.CheckReadiness(context.Background()))

	sale, err := g.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.Sale{sale}, sink.sales)
	assert.Equal(t, []domain.Sale{sale}, pub.published)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RecordsAppended))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SinkPublished.WithLabelValues("kafka", "success")))
	assert.NoError(t, g.CheckReadiness(context.Background()))
}

func TestGenerator_Step_PublisherFailureIsNotFatal(t *testing.T) {
	sink := &recordingSink{}
	pub := &mockPublisher{err: errors.New("broker down")}
	g, metrics := newTestGenerator(sink, clockwork.NewFakeClockAt(testStart), feed.WithPublisher("kafka", pub))

	_, err := g.Step(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sink.count())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SinkPublished.WithLabelValues("kafka", "error")))
}

func TestGenerator_Step_AppendFailureSkipsPublish(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	pub := &mockPublisher{}
	g, metrics := newTestGenerator(sink, clockwork.NewFakeClockAt(testStart), feed.WithPublisher("kafka", pub))

	_, err := g.Step(context.Background())
	require.Error(t, err)

	assert.Empty(t, pub.published)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.AppendErrors))
}

func TestGenerator_Run_OneAppendPerInterval(t *testing.T) {
	clock := clockwork.NewFakeClockAt(testStart)
	sink := &recordingSink{}
	g, _ := newTestGenerator(sink, clock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- g.Run(ctx) }()

	for want := 1; want <= 3; want++ {
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		assert.Equal(t, want, sink.count())
		clock.Advance(5 * time.Second)
	}

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	cancel()
	require.NoError(t, <-errCh)

	assert.Equal(t, 4, sink.count())
	sink.mu.Lock()
	defer sink.mu.Unlock()
	for i, sale := range sink.sales {
		assert.Equal(t, testStart.Add(time.Duration(i)*5*time.Second), sale.Timestamp)
	}
}

func TestGenerator_Run_AppendErrorIsFatal(t *testing.T) {
	sink := &recordingSink{err: errors.New("permission denied")}
	g, _ := newTestGenerator(sink, clockwork.NewFakeClockAt(testStart))

	err := g.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestGenerator_Run_ContextCancellation(t *testing.T) {
	sink := &recordingSink{}
	g, _ := newTestGenerator(sink, clockwork.NewFakeClockAt(testStart))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, g.Run(ctx))
	assert.Zero(t, sink.count())
}

func TestGenerator_Run_WritesFeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	sink := feed.NewFileSink(path, time.UTC)
	_, err := sink.EnsureHeader()
	require.NoError(t, err)

	clock := clockwork.NewFakeClockAt(testStart)
	g, _ := newTestGenerator(sink, clock)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- g.Run(ctx) }()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	clock.Advance(5 * time.Second)
	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	cancel()
	require.NoError(t, <-errCh)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,city,item,quantity,price", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2024-01-01 10:00:00,"))
	assert.True(t, strings.HasPrefix(lines[2], "2024-01-01 10:00:05,"))
}
