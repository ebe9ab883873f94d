package feed

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/domain"
	"github.com/couchcryptid/sales-feed-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Appender persists a single sale to the shared feed.
type Appender interface {
	Append(ctx context.Context, sale domain.Sale) error
}

// Publisher fans a generated sale out to a secondary destination.
type Publisher interface {
	Publish(ctx context.Context, sale domain.Sale) error
}

type namedPublisher struct {
	name string
	pub  Publisher
}

// Generator synthesizes random sales and appends one per interval.
// Generate and Step are not safe for concurrent use.
type Generator struct {
	sink       Appender
	publishers []namedPublisher
	interval   time.Duration
	clock      clockwork.Clock
	rng        *rand.Rand
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the real clock, e.g. with a fake in tests.
func WithClock(c clockwork.Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// WithRand replaces the randomly seeded source with a deterministic one.
func WithRand(r *rand.Rand) Option {
	return func(g *Generator) { g.rng = r }
}

// WithPublisher adds a secondary sink. Publish failures are logged and counted
// under name but never stop the generator.
func WithPublisher(name string, p Publisher) Option {
	return func(g *Generator) { g.publishers = append(g.publishers, namedPublisher{name: name, pub: p}) }
}

// NewGenerator creates a Generator that appends to sink every interval.
func NewGenerator(sink Appender, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Generator {
	g := &Generator{
		sink:     sink,
		interval: interval,
		clock:    clockwork.NewRealClock(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:   logger,
		metrics:  metrics,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate draws one sale: city and item uniformly from their fixed sets,
// quantity and price uniformly from their inclusive ranges, timestamped now
// at second resolution.
func (g *Generator) Generate() domain.Sale {
	return domain.Sale{
		Timestamp: g.clock.Now().Truncate(time.Second),
		City:      domain.Cities[g.rng.IntN(len(domain.Cities))],
		Item:      domain.Items[g.rng.IntN(len(domain.Items))],
		Quantity:  domain.MinQuantity + g.rng.IntN(domain.MaxQuantity-domain.MinQuantity+1),
		Price:     domain.MinPrice + g.rng.IntN(domain.MaxPrice-domain.MinPrice+1),
	}
}

// Step runs one cycle: generate a sale, append it, then fan it out.
// An append failure is returned as-is; it is fatal to Run.
func (g *Generator) Step(ctx context.Context) (domain.Sale, error) {
	sale := g.Generate()

	if err := g.sink.Append(ctx, sale); err != nil {
		g.metrics.AppendErrors.Inc()
		return sale, err
	}
	g.metrics.RecordsAppended.Inc()
	g.ready.Store(true)

	g.logger.Info("new sale added",
		"timestamp", sale.Timestamp.Format(domain.TimestampLayout),
		"city", sale.City,
		"item", sale.Item,
		"quantity", sale.Quantity,
		"price", sale.Price,
	)

	for _, p := range g.publishers {
		if err := p.pub.Publish(ctx, sale); err != nil {
			g.logger.Warn("publish sale failed", "sink", p.name, "error", err)
			g.metrics.SinkPublished.WithLabelValues(p.name, "error").Inc()
			continue
		}
		g.metrics.SinkPublished.WithLabelValues(p.name, "success").Inc()
	}

	return sale, nil
}

// CheckReadiness returns nil once at least one sale has been appended.
func (g *Generator) CheckReadiness(_ context.Context) error {
	if !g.ready.Load() {
		return errors.New("generator has not appended any sales yet")
	}
	return nil
}

// Run appends one sale per interval until the context is cancelled or an
// append fails. Cancellation returns nil; append errors are returned.
func (g *Generator) Run(ctx context.Context) error {
	g.logger.Info("generator started", "interval", g.interval)
	g.metrics.GeneratorRunning.Set(1)
	defer g.metrics.GeneratorRunning.Set(0)

	for {
		if ctx.Err() != nil {
			g.logger.Info("generator stopping", "reason", ctx.Err())
			return nil
		}

		if _, err := g.Step(ctx); err != nil {
			g.logger.Error("append sale failed", "error", err)
			return err
		}

		if !g.sleep(ctx) {
			g.logger.Info("generator stopping", "reason", ctx.Err())
			return nil
		}
	}
}

func (g *Generator) sleep(ctx context.Context) bool {
	if g.interval <= 0 {
		return ctx.Err() == nil
	}

	timer := g.clock.NewTimer(g.interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
