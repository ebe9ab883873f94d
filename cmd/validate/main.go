// Command validate checks the integrity of a sales feed file: header and row
// syntax, field ranges and enumerations, timestamp ordering, and whether the
// file ends in a partially written row.
//
// Usage:
//
//	go run ./cmd/validate -file sales.csv -tz Asia/Kolkata
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/dashboard"
	"github.com/couchcryptid/sales-feed-service/internal/domain"
	"github.com/couchcryptid/sales-feed-service/internal/snapshot"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	file := flag.String("file", "sales.csv", "path to the feed file")
	tz := flag.String("tz", "Local", "time zone the feed timestamps were written in")
	flag.Parse()

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load time zone: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(*file, loc))
}

func run(path string, loc *time.Location) int {
	fmt.Println("=== Sales Feed Integrity Validation ===")
	fmt.Println()

	parse := &phase{name: "Phase 1: Parse (header and row syntax)"}
	res, err := snapshot.NewFileSource(path, loc).Load(context.Background())
	if err != nil {
		parse.errorf("%v", err)
	}

	phases := []*phase{
		parse,
		validateRecords(res.Sales),
		validateOrdering(res.Sales),
		validateTail(res.TornTail),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	s := dashboard.Summarize(res.Sales)
	fmt.Printf("Records: %d, total sales: %d, top city: %s\n", s.TotalOrders, s.TotalSales, s.TopCity)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// validateRecords checks every sale against the fixed cities, items, and bounds.
func validateRecords(sales []domain.Sale) *phase {
	p := &phase{name: "Phase 2: Records (ranges and enumerations)"}
	for i, s := range sales {
		if err := s.Validate(); err != nil {
			p.errorf("record %d: %v", i+1, err)
		}
	}
	return p
}

// validateOrdering checks that rows appear in non-decreasing timestamp order.
func validateOrdering(sales []domain.Sale) *phase {
	p := &phase{name: "Phase 3: Ordering (append order = time order)"}
	for i := 1; i < len(sales); i++ {
		if sales[i].Timestamp.Before(sales[i-1].Timestamp) {
			p.errorf("record %d at %s precedes record %d at %s", i+1,
				sales[i].Timestamp.Format(domain.TimestampLayout), i,
				sales[i-1].Timestamp.Format(domain.TimestampLayout))
		}
	}
	return p
}

// validateTail flags a trailing row without a newline. On a live feed this is
// an append in flight; on an idle file it means the writer died mid-row.
func validateTail(torn bool) *phase {
	p := &phase{name: "Phase 4: Tail (complete final row)"}
	if torn {
		p.errorf("file ends with an incomplete row")
	}
	return p
}
