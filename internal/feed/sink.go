package feed

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/domain"
)

// FileSink appends sale rows to the shared CSV feed file.
// It implements Appender.
type FileSink struct {
	path string
	loc  *time.Location
}

// NewFileSink creates a sink for path. Timestamps are written in loc.
func NewFileSink(path string, loc *time.Location) *FileSink {
	return &FileSink{path: path, loc: loc}
}

// Path returns the feed file location.
func (s *FileSink) Path() string {
	return s.path
}

// EnsureHeader creates the feed file with a header row if it does not exist.
// It reports whether the file was created.
func (s *FileSink) EnsureHeader() (bool, error) {
	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create feed file: %w", err)
	}

	line, err := encodeLine(domain.Header)
	if err != nil {
		_ = f.Close()
		return false, err
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return false, fmt.Errorf("write feed header: %w", err)
	}
	if err := f.Close(); err != nil {
		return false, fmt.Errorf("close feed file: %w", err)
	}
	return true, nil
}

// Append writes one sale as a single row. The row is encoded up front and
// handed to the kernel in one O_APPEND write so a concurrent reader sees either
// nothing, a prefix, or the whole line. The file must already exist.
func (s *FileSink) Append(_ context.Context, sale domain.Sale) error {
	line, err := encodeLine(domain.EncodeRow(sale, s.loc))
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("open feed file: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append sale: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close feed file: %w", err)
	}
	return nil
}

func encodeLine(fields []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(fields); err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	return buf.Bytes(), nil
}
