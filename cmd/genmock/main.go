// Command genmock writes a deterministic sales feed fixture. It drives the
// real generator and file sink with a seeded RNG and a fake clock, so the
// output is byte-identical for the same flags.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out testdata/sales.csv \
//	  -n 720 -seed 42 -start "2024-01-01 10:00:00" -interval 5s
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/dashboard"
	"github.com/couchcryptid/sales-feed-service/internal/domain"
	"github.com/couchcryptid/sales-feed-service/internal/feed"
	"github.com/couchcryptid/sales-feed-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the CSV fixture")
	n := flag.Int("n", 100, "number of sales to generate")
	seed := flag.Uint64("seed", 1, "random seed")
	start := flag.String("start", "2024-01-01 10:00:00", "timestamp of the first sale (UTC)")
	interval := flag.Duration("interval", 5*time.Second, "clock step between sales")
	force := flag.Bool("force", false, "overwrite an existing output file")
	flag.Parse()

	if *out == "" || *n < 1 || *interval <= 0 {
		flag.Usage()
		return errors.New("-out is required, -n and -interval must be positive")
	}

	startAt, err := time.ParseInLocation(domain.TimestampLayout, *start, time.UTC)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}

	if *force {
		if err := os.Remove(*out); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove existing fixture: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}

	sink := feed.NewFileSink(*out, time.UTC)
	created, err := sink.EnsureHeader()
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("%s already exists (use -force to overwrite)", *out)
	}

	clock := clockwork.NewFakeClockAt(startAt)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	gen := feed.NewGenerator(sink, *interval, logger, observability.NewMetrics(),
		feed.WithClock(clock),
		feed.WithRand(rand.New(rand.NewPCG(*seed, *seed))),
	)

	ctx := context.Background()
	sales := make([]domain.Sale, 0, *n)
	for range *n {
		sale, err := gen.Step(ctx)
		if err != nil {
			return err
		}
		sales = append(sales, sale)
		clock.Advance(*interval)
	}

	log.Printf("wrote %d sales to %s", len(sales), *out)
	printStats(sales)
	return nil
}

func printStats(sales []domain.Sale) {
	s := dashboard.Summarize(sales)
	first, last := dashboard.Bounds(sales)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Orders: %d\n", s.TotalOrders)
	fmt.Printf("Total sales: %d, revenue: %d\n", s.TotalSales, s.Revenue)
	fmt.Printf("Top city: %s, top item: %s\n", s.TopCity, s.TopItem)
	fmt.Printf("Span: %s .. %s\n", first.Format(domain.TimestampLayout), last.Format(domain.TimestampLayout))

	fmt.Print("Items by quantity:")
	for _, w := range dashboard.TopItemsByQuantity(sales) {
		fmt.Printf(" %s=%d", w.Item, w.Weight)
	}
	fmt.Println()
	fmt.Printf("Hourly bins: %d\n", len(dashboard.HourlyTotals(sales)))
}
