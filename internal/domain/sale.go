package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// TimestampLayout is the on-disk timestamp format of the feed file.
const TimestampLayout = "2006-01-02 15:04:05"

// Inclusive bounds for generated quantities and prices.
const (
	MinQuantity = 1
	MaxQuantity = 5
	MinPrice    = 100
	MaxPrice    = 500
)

var (
	// ErrUnknownCity is returned when a sale names a city outside Cities.
	ErrUnknownCity = errors.New("unknown city")
	// ErrUnknownItem is returned when a sale names an item outside Items.
	ErrUnknownItem = errors.New("unknown item")
	// ErrOutOfRange is returned when quantity or price fall outside their bounds.
	ErrOutOfRange = errors.New("value out of range")
)

// Header names the five columns of the feed file, in order.
var Header = []string{"timestamp", "city", "item", "quantity", "price"}

// Cities is the fixed set of locations a sale can be attributed to.
var Cities = []string{"Delhi", "Mumbai", "Bangalore", "Hyderabad", "Chennai"}

// Items is the fixed set of products on the menu.
var Items = []string{"Pizza", "Burger", "Biryani", "Pasta", "Sandwich"}

// Sale is a single immutable record of the feed.
type Sale struct {
	Timestamp time.Time `json:"timestamp"`
	City      string    `json:"city"`
	Item      string    `json:"item"`
	Quantity  int       `json:"quantity"`
	Price     int       `json:"price"`
}

// Revenue is price multiplied by quantity.
func (s Sale) Revenue() int {
	return s.Price * s.Quantity
}

// Validate checks the sale against the fixed enumerations and bounds.
func (s Sale) Validate() error {
	if !slices.Contains(Cities, s.City) {
		return fmt.Errorf("%w: %q", ErrUnknownCity, s.City)
	}
	if !slices.Contains(Items, s.Item) {
		return fmt.Errorf("%w: %q", ErrUnknownItem, s.Item)
	}
	if s.Quantity < MinQuantity || s.Quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity %d", ErrOutOfRange, s.Quantity)
	}
	if s.Price < MinPrice || s.Price > MaxPrice {
		return fmt.Errorf("%w: price %d", ErrOutOfRange, s.Price)
	}
	if s.Timestamp.IsZero() {
		return fmt.Errorf("%w: zero timestamp", ErrOutOfRange)
	}
	return nil
}
