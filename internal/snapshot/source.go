package snapshot

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/couchcryptid/sales-feed-service/internal/domain"
)

// LoadResult is what a Source hands back to the cache.
type LoadResult struct {
	Sales    []domain.Sale
	TornTail bool // an incomplete trailing row was skipped
}

// Source loads the current contents of the feed.
type Source interface {
	Load(ctx context.Context) (LoadResult, error)
}

// FileSource parses the entire feed file on every load.
type FileSource struct {
	path string
	loc  *time.Location
}

// NewFileSource creates a full-reload source. Timestamps are read in loc.
func NewFileSource(path string, loc *time.Location) *FileSource {
	return &FileSource{path: path, loc: loc}
}

func (s *FileSource) Load(ctx context.Context) (LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return LoadResult{}, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("read feed file: %w", err)
	}

	complete, torn := splitComplete(data)
	d := decoder{loc: s.loc}
	sales, err := d.decode(complete)
	if err != nil {
		return LoadResult{}, fmt.Errorf("parse feed file: %w", err)
	}
	if sales == nil {
		sales = []domain.Sale{}
	}
	return LoadResult{Sales: sales, TornTail: torn}, nil
}

// TailSource remembers how far it has read and only parses bytes appended
// since the previous load. If the file shrinks it starts over from the top.
type TailSource struct {
	path string
	loc  *time.Location

	mu     sync.Mutex
	offset int64
	dec    decoder
	sales  []domain.Sale
}

// NewTailSource creates an incremental source. Timestamps are read in loc.
func NewTailSource(path string, loc *time.Location) *TailSource {
	return &TailSource{path: path, loc: loc, dec: decoder{loc: loc}}
}

func (s *TailSource) Load(ctx context.Context) (LoadResult, error) {
	if err := ctx.Err(); err != nil {
		return LoadResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("read feed file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return LoadResult{}, fmt.Errorf("stat feed file: %w", err)
	}
	if info.Size() < s.offset {
		s.reset()
	}

	if _, err := f.Seek(s.offset, io.SeekStart); err != nil {
		return LoadResult{}, fmt.Errorf("seek feed file: %w", err)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return LoadResult{}, fmt.Errorf("read feed file: %w", err)
	}

	complete, torn := splitComplete(data)
	if len(complete) > 0 {
		// Decode into a copy so a bad row leaves the cursor where it was.
		dec := s.dec
		sales, err := dec.decode(complete)
		if err != nil {
			return LoadResult{}, fmt.Errorf("parse feed file: %w", err)
		}
		s.dec = dec
		s.sales = append(s.sales, sales...)
		s.offset += int64(len(complete))
	}

	sales := slices.Clone(s.sales)
	if sales == nil {
		sales = []domain.Sale{}
	}
	return LoadResult{Sales: sales, TornTail: torn}, nil
}

func (s *TailSource) reset() {
	s.offset = 0
	s.dec = decoder{loc: s.loc}
	s.sales = nil
}
