package daemon

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/1broseidon/framewm/internal/platform"
)

// WindowLister returns a snapshot of the compositor's windows.
type WindowLister func() []platform.Window

// WatchdogConfig holds configuration for the watchdog.
type WatchdogConfig struct {
	Interval    time.Duration
	MemoryLimit uint64
	Logger      *slog.Logger
}

// Watchdog periodically reports windows that stopped responding and pixel
// memory running low. It only logs; the compositor itself decides what a
// hung window may receive.
type Watchdog struct {
	interval    time.Duration
	limit       uint64
	listWindows WindowLister
	memoryInUse func() uint64
	logger      *slog.Logger

	hung    map[platform.WindowID]string
	memHigh bool
}

// memoryHighPercent is the share of the budget that triggers a warning.
const memoryHighPercent = 90

// NewWatchdog creates a watchdog. memoryInUse may be nil when no budget is
// enforced.
func NewWatchdog(cfg WatchdogConfig, listWindows WindowLister, memoryInUse func() uint64) *Watchdog {
	interval := cfg.Interval
	if interval <= 0 {
		interval = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watchdog{
		interval:    interval,
		limit:       cfg.MemoryLimit,
		listWindows: listWindows,
		memoryInUse: memoryInUse,
		logger:      logger,
		hung:        make(map[platform.WindowID]string),
	}
}

// Run starts the check loop. Blocks until ctx is cancelled.
func (w *Watchdog) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Debug("watchdog started", "interval", w.interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("watchdog stopped")
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// CheckNow runs one pass immediately.
func (w *Watchdog) CheckNow() {
	w.check()
}

func (w *Watchdog) check() {
	defer func() {
		if err := recover(); err != nil {
			w.logger.Error("watchdog panic recovered", "error", err)
		}
	}()

	w.checkWindows()
	w.checkMemory()
}

func (w *Watchdog) checkWindows() {
	seen := make(map[platform.WindowID]bool)
	for _, win := range w.listWindows() {
		seen[win.ID] = true
		_, wasHung := w.hung[win.ID]
		switch {
		case win.Hung && !wasHung:
			w.hung[win.ID] = win.Title
			w.logger.Warn("window not responding", "window", win.ID.String(), "title", win.Title)
		case !win.Hung && wasHung:
			delete(w.hung, win.ID)
			w.logger.Info("window responding again", "window", win.ID.String(), "title", win.Title)
		}
	}
	for id, title := range w.hung {
		if !seen[id] {
			delete(w.hung, id)
			w.logger.Info("hung window went away", "window", id.String(), "title", title)
		}
	}
}

func (w *Watchdog) checkMemory() {
	if w.limit == 0 || w.memoryInUse == nil {
		return
	}
	used := w.memoryInUse()
	high := used*100 >= w.limit*memoryHighPercent
	switch {
	case high && !w.memHigh:
		w.logger.Warn("pixel memory nearly exhausted",
			"in_use", humanize.IBytes(used),
			"limit", humanize.IBytes(w.limit))
	case !high && w.memHigh:
		w.logger.Info("pixel memory usage back to normal", "in_use", humanize.IBytes(used))
	}
	w.memHigh = high
}
