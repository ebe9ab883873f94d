package dashboard

import (
	"errors"
	"math"
	"slices"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/domain"
)

// ErrInsufficientData is returned when fewer than two hourly bins are available.
var ErrInsufficientData = errors.New("not enough data for forecasting")

// DefaultHorizon is the number of future hours forecast by default.
const DefaultHorizon = 24

// z-score of a two-sided 95% interval.
const interval95 = 1.96

// HourlyTotal is the summed price of all sales in one clock hour.
type HourlyTotal struct {
	Hour  time.Time `json:"hour"`
	Total int       `json:"total"`
}

// ForecastPoint is a fitted or predicted value for one hour. Actual is set
// only for hours that have observed sales.
type ForecastPoint struct {
	Hour      time.Time `json:"hour"`
	Actual    *int      `json:"actual,omitempty"`
	Predicted float64   `json:"predicted"`
	Lower     float64   `json:"lower"`
	Upper     float64   `json:"upper"`
}

// Forecast is a linear-trend fit over hourly totals plus a short projection.
type Forecast struct {
	Slope     float64         `json:"slope_per_hour"`
	Intercept float64         `json:"intercept"`
	Points    []ForecastPoint `json:"points"`
}

// HourlyTotals bins sales by clock hour in each sale's location, sorted by hour.
func HourlyTotals(sales []domain.Sale) []HourlyTotal {
	totals := map[time.Time]int{}
	for _, sale := range sales {
		totals[floorHour(sale.Timestamp)] += sale.Price
	}

	out := make([]HourlyTotal, 0, len(totals))
	for h, total := range totals {
		out = append(out, HourlyTotal{Hour: h, Total: total})
	}
	slices.SortFunc(out, func(a, b HourlyTotal) int { return a.Hour.Compare(b.Hour) })
	return out
}

// floorHour truncates to the start of the hour on the wall clock, which
// differs from time.Truncate in zones with a sub-hour offset.
func floorHour(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
}

// ForecastHourly fits an ordinary least-squares line through the hourly
// totals (x = hours since the first bin) and extends it horizon hours past
// the last bin. Bands are ±1.96 residual standard deviations.
func ForecastHourly(totals []HourlyTotal, horizon int) (Forecast, error) {
	n := len(totals)
	if n < 2 {
		return Forecast{}, ErrInsufficientData
	}

	origin := totals[0].Hour
	xs := make([]float64, n)
	ys := make([]float64, n)
	var meanX, meanY float64
	for i, t := range totals {
		xs[i] = t.Hour.Sub(origin).Hours()
		ys[i] = float64(t.Total)
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var sxy, sxx float64
	for i := range xs {
		sxy += (xs[i] - meanX) * (ys[i] - meanY)
		sxx += (xs[i] - meanX) * (xs[i] - meanX)
	}
	if sxx == 0 {
		return Forecast{}, ErrInsufficientData
	}
	slope := sxy / sxx
	intercept := meanY - slope*meanX

	var sse float64
	for i := range xs {
		r := ys[i] - (intercept + slope*xs[i])
		sse += r * r
	}
	var sigma float64
	if n > 2 {
		sigma = math.Sqrt(sse / float64(n-2))
	}
	band := interval95 * sigma

	predict := func(h time.Time) ForecastPoint {
		yhat := intercept + slope*h.Sub(origin).Hours()
		return ForecastPoint{Hour: h, Predicted: yhat, Lower: yhat - band, Upper: yhat + band}
	}

	points := make([]ForecastPoint, 0, n+horizon)
	for _, t := range totals {
		p := predict(t.Hour)
		actual := t.Total
		p.Actual = &actual
		points = append(points, p)
	}
	last := totals[n-1].Hour
	for i := 1; i <= horizon; i++ {
		points = append(points, predict(last.Add(time.Duration(i)*time.Hour)))
	}

	return Forecast{Slope: slope, Intercept: intercept, Points: points}, nil
}
