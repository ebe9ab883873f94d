// Package domain models the simulated live sales feed.
//
// # Sale Records
//
// Each sale is one row of the shared feed file, written by the simulator and
// read back by the dashboard:
//
//	timestamp,city,item,quantity,price
//	2024-01-01 10:00:00,Delhi,Biryani,2,300
//
// Timestamps use the layout "2006-01-02 15:04:05" with second resolution and
// no zone suffix. Both processes interpret them in the same configured
// location (TIMEZONE, default Local).
//
// Field domains:
//
//	city:     Delhi, Mumbai, Bangalore, Hyderabad, Chennai
//	item:     Pizza, Burger, Biryani, Pasta, Sandwich
//	quantity: integer in [1, 5]
//	price:    integer in [100, 500]
//
// Decoding a row checks types only. Enumeration and range checks live in
// [Sale.Validate] so that a hand-edited feed with an unknown city still loads
// and surfaces on the map as an explicit fallback.
//
// # Totals
//
// "Total sales" is the sum of price alone; quantity is not multiplied in.
// [Sale.Revenue] exposes price × quantity for views that want it.
//
// # Coordinates
//
// Cities are placed on the map through a static lookup ([LookupCoordinate]).
// Unmapped cities may be resolved by a [Geocoder]; anything left over lands on
// [DefaultCoordinate] and is marked with [SourceFallback].
package domain
