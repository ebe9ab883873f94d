package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/domain"
	"github.com/couchcryptid/sales-feed-service/internal/observability"
)

// DateLayout is the format of date range bounds.
const DateLayout = "2006-01-02"

// View is everything the dashboard renders for one refresh.
type View struct {
	From          string             `json:"from,omitempty"`
	To            string             `json:"to,omitempty"`
	Summary       Summary            `json:"summary"`
	CitySeries    []CitySeries       `json:"city_series"`
	ItemCloud     []ItemWeight       `json:"item_cloud"`
	Forecast      *Forecast          `json:"forecast,omitempty"`
	ForecastError string             `json:"forecast_error,omitempty"`
	Markers       []CityMarker       `json:"markers"`
	TopItems      []ItemWeight       `json:"top_items"`
	CityItems     []CityItemQuantity `json:"city_items"`
}

// Builder derives views from a snapshot. It holds no state between builds.
type Builder struct {
	geocoder domain.Geocoder
	horizon  int
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewBuilder creates a Builder. Pass a nil geocoder to place unmapped cities
// on the default coordinate without a lookup.
func NewBuilder(geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) *Builder {
	return &Builder{
		geocoder: geocoder,
		horizon:  DefaultHorizon,
		logger:   logger,
		metrics:  metrics,
	}
}

// Build filters sales to r and derives every view from scratch. An open side
// of r defaults to the earliest or latest sale date.
func (b *Builder) Build(ctx context.Context, sales []domain.Sale, r DateRange) View {
	first, last := Bounds(sales)
	if r.From.IsZero() {
		r.From = first
	}
	if r.To.IsZero() {
		r.To = last
	}

	filtered := FilterByDate(sales, r)
	v := View{
		From:       formatDate(r.From),
		To:         formatDate(r.To),
		Summary:    Summarize(filtered),
		CitySeries: MinuteSeriesByCity(filtered),
		ItemCloud:  ItemFrequencies(filtered),
		Markers:    CityMarkers(ctx, filtered, b.geocoder, b.logger, b.metrics),
		TopItems:   TopItemsByQuantity(filtered),
		CityItems:  CityItemQuantities(filtered),
	}

	forecast, err := ForecastHourly(HourlyTotals(filtered), b.horizon)
	switch {
	case errors.Is(err, ErrInsufficientData):
		v.ForecastError = "not enough data for forecasting, try selecting a larger date range"
	case err != nil:
		v.ForecastError = err.Error()
	default:
		v.Forecast = &forecast
	}

	return v
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
