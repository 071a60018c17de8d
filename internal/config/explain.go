package config

import (
	"fmt"
	"sort"
)

var lookups = map[string]func(*Config) any{
	"backend":                 func(c *Config) any { return c.Backend },
	"screen.width":            func(c *Config) any { return c.Screen.Width },
	"screen.height":           func(c *Config) any { return c.Screen.Height },
	"screen.fullscreen":       func(c *Config) any { return c.Screen.Fullscreen },
	"tick_ms":                 func(c *Config) any { return c.TickMS },
	"hang_timeout_ms":         func(c *Config) any { return c.HangTimeoutMS },
	"shutdown_timeout_ms":     func(c *Config) any { return c.ShutdownTimeoutMS },
	"max_windows":             func(c *Config) any { return c.MaxWindows },
	"memory_limit_mb":         func(c *Config) any { return c.MemoryLimitMB },
	"queues.event_ring":       func(c *Config) any { return c.Queues.EventRing },
	"queues.private_ring":     func(c *Config) any { return c.Queues.PrivateRing },
	"queues.key_ring":         func(c *Config) any { return c.Queues.KeyRing },
	"queues.actions":          func(c *Config) any { return c.Queues.Actions },
	"queues.clicks":           func(c *Config) any { return c.Queues.Clicks },
	"damage.cap":              func(c *Config) any { return c.Damage.Cap },
	"damage.margin":           func(c *Config) any { return c.Damage.Margin },
	"placement.cascade_step":  func(c *Config) any { return c.Placement.CascadeStep },
	"placement.cascade_reset": func(c *Config) any { return c.Placement.CascadeReset },
	"placement.min_width":     func(c *Config) any { return c.Placement.MinWidth },
	"placement.min_height":    func(c *Config) any { return c.Placement.MinHeight },
	"placement.snap_gap":      func(c *Config) any { return c.Placement.SnapGap },
	"tile.mode":               func(c *Config) any { return c.Tile.Mode },
	"tile.rows":               func(c *Config) any { return c.Tile.Rows },
	"tile.cols":               func(c *Config) any { return c.Tile.Cols },
	"tile.master_percent":     func(c *Config) any { return c.Tile.MasterPercent },
	"tile.flexible_last_row":  func(c *Config) any { return c.Tile.FlexibleLastRow },
	"theme.background":        func(c *Config) any { return c.Theme.Background },
	"theme.title_active":      func(c *Config) any { return c.Theme.TitleActive },
	"theme.title_inactive":    func(c *Config) any { return c.Theme.TitleInactive },
	"theme.title_hung":        func(c *Config) any { return c.Theme.TitleHung },
	"theme.border":            func(c *Config) any { return c.Theme.Border },
	"theme.window":            func(c *Config) any { return c.Theme.Window },
	"logging.level":           func(c *Config) any { return c.Logging.Level },
	"logging.file":            func(c *Config) any { return c.Logging.File },
	"control.socket":          func(c *Config) any { return c.Control.Socket },
	"bindings":                func(c *Config) any { return c.Bindings },
	"demo.windows":            func(c *Config) any { return c.Demo.Windows },
}

// Explain returns the effective value at the given YAML path (for example
// "placement.min_width") and where it came from.
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	lookup, ok := lookups[path]
	if !ok {
		return nil, Source{}, fmt.Errorf("unknown path: %s", path)
	}
	value := lookup(res.Config)

	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	return value, Source{Kind: SourceDefault}, nil
}

// Paths lists every path Explain understands, sorted.
func Paths() []string {
	out := make([]string, 0, len(lookups))
	for p := range lookups {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
