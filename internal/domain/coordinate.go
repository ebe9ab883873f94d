package domain

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DefaultCoordinate is the geographic centre of India, used for cities that
// cannot be placed any other way.
var DefaultCoordinate = Coordinate{Lat: 20.5937, Lon: 78.9629}

// CountryCode restricts geocoding lookups to India.
const CountryCode = "in"

var cityCoordinates = map[string]Coordinate{
	"Mumbai":    {Lat: 19.0760, Lon: 72.8777},
	"Delhi":     {Lat: 28.7041, Lon: 77.1025},
	"Bangalore": {Lat: 12.9716, Lon: 77.5946},
	"Hyderabad": {Lat: 17.3850, Lon: 78.4867},
	"Chennai":   {Lat: 13.0827, Lon: 80.2707},
}

// LookupCoordinate returns the static coordinate for a city.
func LookupCoordinate(city string) (Coordinate, bool) {
	c, ok := cityCoordinates[city]
	return c, ok
}
