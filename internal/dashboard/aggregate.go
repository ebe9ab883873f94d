package dashboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/domain"
)

// Summary holds the headline metrics of the dashboard.
type Summary struct {
	TotalSales  int    `json:"total_sales"` // sum of price
	Revenue     int    `json:"revenue"`     // sum of price × quantity
	TotalOrders int    `json:"total_orders"`
	TopCity     string `json:"top_city"` // largest price total
	TopItem     string `json:"top_item"` // most orders
}

// Summarize computes the headline metrics. Ties in TopCity and TopItem go to
// whichever was encountered first.
func Summarize(sales []domain.Sale) Summary {
	s := Summary{TotalOrders: len(sales)}
	for _, sale := range sales {
		s.TotalSales += sale.Price
		s.Revenue += sale.Revenue()
	}

	s.TopCity = argmax(groupBy(sales, byCity, priceOf))
	s.TopItem = argmax(groupBy(sales, byItem, one))
	return s
}

// DateRange bounds a filter by calendar date, inclusive on both ends.
// A zero From or To leaves that side open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Bounds returns the earliest and latest timestamps in sales.
func Bounds(sales []domain.Sale) (time.Time, time.Time) {
	if len(sales) == 0 {
		return time.Time{}, time.Time{}
	}
	first, last := sales[0].Timestamp, sales[0].Timestamp
	for _, sale := range sales[1:] {
		if sale.Timestamp.Before(first) {
			first = sale.Timestamp
		}
		if sale.Timestamp.After(last) {
			last = sale.Timestamp
		}
	}
	return first, last
}

// FilterByDate returns the sales whose calendar date falls within r. The
// input slice is never modified.
func FilterByDate(sales []domain.Sale, r DateRange) []domain.Sale {
	out := make([]domain.Sale, 0, len(sales))
	for _, sale := range sales {
		d := civilDate(sale.Timestamp)
		if !r.From.IsZero() && d.Before(civilDate(r.From)) {
			continue
		}
		if !r.To.IsZero() && d.After(civilDate(r.To)) {
			continue
		}
		out = append(out, sale)
	}
	return out
}

// civilDate drops the clock and zone, keeping the calendar date as seen in t's location.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Point is one labelled value of a chart series.
type Point struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// CitySeries is a per-minute price series for one city.
type CitySeries struct {
	City   string  `json:"city"`
	Points []Point `json:"points"`
}

// MinuteLayout labels per-minute chart buckets.
const MinuteLayout = "15:04"

// MinuteSeriesByCity sums price per HH:MM bucket for each city. Cities keep
// first-encountered order; buckets are sorted by label.
func MinuteSeriesByCity(sales []domain.Sale) []CitySeries {
	cities, _ := groupBy(sales, byCity, one)
	series := make([]CitySeries, 0, len(cities))
	for _, city := range cities {
		minutes, totals := groupBy(sales, func(s domain.Sale) (string, bool) {
			return s.Timestamp.Format(MinuteLayout), s.City == city
		}, priceOf)
		slices.Sort(minutes)

		points := make([]Point, 0, len(minutes))
		for _, m := range minutes {
			points = append(points, Point{Label: m, Value: totals[m]})
		}
		series = append(series, CitySeries{City: city, Points: points})
	}
	return series
}

// ItemWeight pairs an item with a weight (order count or quantity).
type ItemWeight struct {
	Item   string `json:"item"`
	Weight int    `json:"weight"`
}

// ItemFrequencies counts orders per item, heaviest first. It feeds the word cloud.
func ItemFrequencies(sales []domain.Sale) []ItemWeight {
	return sortedWeights(groupBy(sales, byItem, one))
}

// TopItemsByQuantity sums quantity per item, heaviest first.
func TopItemsByQuantity(sales []domain.Sale) []ItemWeight {
	return sortedWeights(groupBy(sales, byItem, quantityOf))
}

// CityItemQuantity is the quantity of one item sold in one city.
type CityItemQuantity struct {
	City     string `json:"city"`
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// CityItemQuantities sums quantity per (city, item), sorted by city then item.
func CityItemQuantities(sales []domain.Sale) []CityItemQuantity {
	type key struct{ city, item string }
	totals := map[key]int{}
	for _, sale := range sales {
		totals[key{sale.City, sale.Item}] += sale.Quantity
	}

	out := make([]CityItemQuantity, 0, len(totals))
	for k, q := range totals {
		out = append(out, CityItemQuantity{City: k.city, Item: k.item, Quantity: q})
	}
	slices.SortFunc(out, func(a, b CityItemQuantity) int {
		return cmp.Or(cmp.Compare(a.City, b.City), cmp.Compare(a.Item, b.Item))
	})
	return out
}

// --- grouping helpers ---

func byCity(s domain.Sale) (string, bool) { return s.City, true }
func byItem(s domain.Sale) (string, bool) { return s.Item, true }
func priceOf(s domain.Sale) int           { return s.Price }
func quantityOf(s domain.Sale) int        { return s.Quantity }
func one(domain.Sale) int                 { return 1 }

// groupBy sums value per key, returning keys in first-encountered order.
// Sales for which key reports false are skipped.
func groupBy(sales []domain.Sale, key func(domain.Sale) (string, bool), value func(domain.Sale) int) ([]string, map[string]int) {
	var order []string
	totals := map[string]int{}
	for _, sale := range sales {
		k, ok := key(sale)
		if !ok {
			continue
		}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] += value(sale)
	}
	return order, totals
}

// argmax returns the key with the largest total; the earliest key wins ties.
func argmax(keys []string, totals map[string]int) string {
	best := ""
	for i, k := range keys {
		if i == 0 || totals[k] > totals[best] {
			best = k
		}
	}
	return best
}

func sortedWeights(keys []string, totals map[string]int) []ItemWeight {
	out := make([]ItemWeight, 0, len(keys))
	for _, k := range keys {
		out = append(out, ItemWeight{Item: k, Weight: totals[k]})
	}
	slices.SortFunc(out, func(a, b ItemWeight) int {
		return cmp.Or(cmp.Compare(b.Weight, a.Weight), cmp.Compare(a.Item, b.Item))
	})
	return out
}
