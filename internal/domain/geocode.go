package domain

import (
	"context"
	"log/slog"
)

// CoordinateSource records how a city's coordinate was obtained.
type CoordinateSource string

const (
	SourceStatic   CoordinateSource = "static"
	SourceGeocoded CoordinateSource = "geocoded"
	SourceFallback CoordinateSource = "fallback"
)

// ResolveCoordinate places a city on the map. The static table wins; a nil
// geocoder or a failed or empty lookup degrades to DefaultCoordinate with
// SourceFallback so callers can surface the mis-placement.
func ResolveCoordinate(ctx context.Context, city string, geocoder Geocoder, logger *slog.Logger) (Coordinate, CoordinateSource) {
	if c, ok := LookupCoordinate(city); ok {
		return c, SourceStatic
	}
	if geocoder == nil || city == "" {
		return DefaultCoordinate, SourceFallback
	}

	result, err := geocoder.ForwardGeocode(ctx, city, CountryCode)
	if err != nil {
		logger.Warn("forward geocoding failed", "city", city, "error", err)
		return DefaultCoordinate, SourceFallback
	}
	if result.Lat == 0 && result.Lon == 0 {
		return DefaultCoordinate, SourceFallback
	}
	return Coordinate{Lat: result.Lat, Lon: result.Lon}, SourceGeocoded
}
