// Package alloc hands out pixel buffers against a fixed memory budget.
package alloc

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dustin/go-humanize"
)

// ErrExhausted is returned when a request does not fit in the budget.
var ErrExhausted = errors.New("allocator exhausted")

const bytesPerPixel = 4

// Allocator provides pixel storage.
type Allocator interface {
	// Allocate returns a zeroed buffer of n pixels.
	Allocate(n int) ([]uint32, error)
	// Free returns a buffer obtained from Allocate.
	Free(buf []uint32)
}

// Budget is an Allocator that fails once the bytes outstanding would exceed
// its limit. A zero limit means unlimited.
type Budget struct {
	mu     sync.Mutex
	limit  uint64
	used   uint64
	peak   uint64
	logger *slog.Logger
}

var _ Allocator = (*Budget)(nil)

// NewBudget creates an allocator limited to limitBytes.
func NewBudget(limitBytes uint64, logger *slog.Logger) *Budget {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Budget{limit: limitBytes, logger: logger}
}

// Allocate reserves n pixels.
func (b *Budget) Allocate(n int) ([]uint32, error) {
	if n < 0 {
		return nil, fmt.Errorf("allocate %d pixels: negative size", n)
	}
	size := uint64(n) * bytesPerPixel

	b.mu.Lock()
	if b.limit > 0 && b.used+size > b.limit {
		used := b.used
		b.mu.Unlock()
		b.logger.Warn("pixel allocation refused",
			"requested", humanize.IBytes(size),
			"in_use", humanize.IBytes(used),
			"limit", humanize.IBytes(b.limit))
		return nil, fmt.Errorf("allocate %s: %w", humanize.IBytes(size), ErrExhausted)
	}
	b.used += size
	if b.used > b.peak {
		b.peak = b.used
	}
	b.mu.Unlock()

	b.logger.Debug("pixel buffer allocated", "size", humanize.IBytes(size))
	return make([]uint32, n), nil
}

// Free releases the budget held by buf.
func (b *Budget) Free(buf []uint32) {
	if buf == nil {
		return
	}
	size := uint64(cap(buf)) * bytesPerPixel
	b.mu.Lock()
	if size > b.used {
		size = b.used
	}
	b.used -= size
	b.mu.Unlock()
}

// InUse returns the bytes currently allocated.
func (b *Budget) InUse() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.used
}

// Peak returns the high-water mark in bytes.
func (b *Budget) Peak() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.peak
}

// String summarizes usage for logs.
func (b *Budget) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.limit == 0 {
		return fmt.Sprintf("%s in use (unlimited)", humanize.IBytes(b.used))
	}
	return fmt.Sprintf("%s of %s in use", humanize.IBytes(b.used), humanize.IBytes(b.limit))
}
