package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedRow is returned when a feed row cannot be decoded into a Sale.
var ErrMalformedRow = errors.New("malformed row")

// EncodeRow renders a sale as CSV fields in Header order. The timestamp is
// formatted in loc; a nil loc keeps the timestamp's own location.
func EncodeRow(s Sale, loc *time.Location) []string {
	ts := s.Timestamp
	if loc != nil {
		ts = ts.In(loc)
	}
	return []string{
		ts.Format(TimestampLayout),
		s.City,
		s.Item,
		strconv.Itoa(s.Quantity),
		strconv.Itoa(s.Price),
	}
}

// DecodeRow parses CSV fields in Header order. Timestamps carry no zone, so
// they are interpreted in loc (UTC when nil).
func DecodeRow(fields []string, loc *time.Location) (Sale, error) {
	if len(fields) != len(Header) {
		return Sale{}, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRow, len(Header), len(fields))
	}
	if loc == nil {
		loc = time.UTC
	}

	ts, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(fields[0]), loc)
	if err != nil {
		return Sale{}, fmt.Errorf("%w: timestamp %q", ErrMalformedRow, fields[0])
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return Sale{}, fmt.Errorf("%w: quantity %q", ErrMalformedRow, fields[3])
	}
	price, err := strconv.Atoi(strings.TrimSpace(fields[4]))
	if err != nil {
		return Sale{}, fmt.Errorf("%w: price %q", ErrMalformedRow, fields[4])
	}

	return Sale{
		Timestamp: ts,
		City:      strings.TrimSpace(fields[1]),
		Item:      strings.TrimSpace(fields[2]),
		Quantity:  quantity,
		Price:     price,
	}, nil
}

// IsHeader reports whether fields match Header exactly.
func IsHeader(fields []string) bool {
	if len(fields) != len(Header) {
		return false
	}
	for i, h := range Header {
		if strings.TrimSpace(fields[i]) != h {
			return false
		}
	}
	return true
}
