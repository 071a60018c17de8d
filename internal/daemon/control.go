package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/framewm/internal/alloc"
	"github.com/1broseidon/framewm/internal/compositor"
	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/hotkeys"
	"github.com/1broseidon/framewm/internal/ipc"
	"github.com/1broseidon/framewm/internal/platform"
)

// errNoConfigFile is returned by Reload when the daemon runs on defaults.
var errNoConfigFile = errors.New("daemon was started without a config file")

// controller adapts the compositor to the control socket.
type controller struct {
	comp       *compositor.Compositor
	budget     *alloc.Budget
	configPath string
	started    time.Time
	cancel     context.CancelFunc
	override   func(*config.Config)
	logger     *slog.Logger

	mu  sync.Mutex
	cfg *config.Config
}

var _ ipc.Controller = (*controller)(nil)

func (c *controller) config() *config.Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

func (c *controller) Status() ipc.StatusData {
	cfg := c.config()
	windows := c.comp.Windows()
	hung := 0
	for _, w := range windows {
		if w.Hung {
			hung++
		}
	}
	bounds := c.comp.Bounds()
	return ipc.StatusData{
		Backend:       string(cfg.Backend),
		ScreenWidth:   bounds.Width,
		ScreenHeight:  bounds.Height,
		Windows:       len(windows),
		Hung:          hung,
		Selected:      uint32(c.comp.Selected()),
		MemoryInUse:   c.budget.InUse(),
		MemoryPeak:    c.budget.Peak(),
		MemoryLimit:   cfg.MemoryLimit(),
		UptimeSeconds: int64(time.Since(c.started).Seconds()),
	}
}

func (c *controller) Windows() []platform.Window {
	return c.comp.Windows()
}

func (c *controller) Focus(ctx context.Context, id platform.WindowID) error {
	return c.comp.Select(ctx, id)
}

func (c *controller) Exec(ctx context.Context, id platform.WindowID, cmd hotkeys.Command) error {
	return c.comp.Exec(ctx, id, cmd)
}

// Reload re-reads the config file and applies it.
func (c *controller) Reload() error {
	if c.configPath == "" {
		return errNoConfigFile
	}
	res, err := config.LoadFromPath(c.configPath)
	if err != nil {
		return fmt.Errorf("reload %s: %w", c.configPath, err)
	}
	c.apply(res.Config)
	return nil
}

func (c *controller) Shutdown() {
	c.logger.Info("shutdown requested")
	c.cancel()
}

// apply swaps in cfg. The backend, screen size and memory budget are fixed
// for the life of the daemon.
func (c *controller) apply(cfg *config.Config) {
	if c.override != nil {
		c.override(cfg)
	}
	c.mu.Lock()
	old := c.cfg
	c.cfg = cfg
	c.mu.Unlock()

	if old != nil && (cfg.Backend != old.Backend || cfg.Screen != old.Screen || cfg.MemoryLimitMB != old.MemoryLimitMB) {
		c.logger.Warn("config change ignored until restart", "keys", "backend/screen/memory_limit_mb")
	}
	c.comp.Reconfigure(cfg)
}
