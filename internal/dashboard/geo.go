package dashboard

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/sales-feed-service/internal/domain"
	"github.com/couchcryptid/sales-feed-service/internal/observability"
)

// CityMarker is one point on the sales map.
type CityMarker struct {
	City       string                  `json:"city"`
	Sales      int                     `json:"sales"`
	Coordinate domain.Coordinate       `json:"coordinate"`
	Source     domain.CoordinateSource `json:"source"`
	Fallback   bool                    `json:"fallback"`
}

// CityMarkers sums price per city and places each city on the map. Cities
// that end up on the default coordinate are flagged, logged, and counted so
// mis-plotted revenue is visible.
func CityMarkers(ctx context.Context, sales []domain.Sale, geocoder domain.Geocoder, logger *slog.Logger, metrics *observability.Metrics) []CityMarker {
	cities, totals := groupBy(sales, byCity, priceOf)

	markers := make([]CityMarker, 0, len(cities))
	for _, city := range cities {
		coord, source := domain.ResolveCoordinate(ctx, city, geocoder, logger)
		fallback := source == domain.SourceFallback
		if fallback {
			logger.Warn("city has no known coordinate, using default", "city", city, "sales", totals[city])
			metrics.MapFallbacks.WithLabelValues(city).Inc()
		}
		markers = append(markers, CityMarker{
			City:       city,
			Sales:      totals[city],
			Coordinate: coord,
			Source:     source,
			Fallback:   fallback,
		})
	}
	return markers
}
