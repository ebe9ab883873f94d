package snapshot

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/domain"
)

// ErrBadHeader is returned when the first row of the feed is not the expected header.
var ErrBadHeader = errors.New("unexpected feed header")

// splitComplete returns data up to and including its last newline, and
// whether any bytes followed it.
func splitComplete(data []byte) ([]byte, bool) {
	i := bytes.LastIndexByte(data, '\n')
	if i < 0 {
		return nil, len(data) > 0
	}
	return data[:i+1], i+1 < len(data)
}

// decoder turns complete feed lines into sales, carrying header state and
// line numbering across chunks.
type decoder struct {
	loc        *time.Location
	headerSeen bool
	line       int
}

func (d *decoder) decode(data []byte) ([]domain.Sale, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	var sales []domain.Sale
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: after line %d: %w", domain.ErrMalformedRow, d.line, err)
		}
		line, _ := r.FieldPos(0)

		if !d.headerSeen {
			if !domain.IsHeader(fields) {
				return nil, fmt.Errorf("%w: %q", ErrBadHeader, fields)
			}
			d.headerSeen = true
			continue
		}

		sale, err := domain.DecodeRow(fields, d.loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", d.line+line, err)
		}
		sales = append(sales, sale)
	}

	d.line += bytes.Count(data, []byte{'\n'})
	return sales, nil
}
