package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/framewm/internal/hotkeys"
)

// Backend names where the composited screen is presented.
type Backend string

const (
	BackendHeadless Backend = "headless"
	BackendX11      Backend = "x11"
	BackendTTY      Backend = "tty"
)

// Color is a 0x00RRGGBB pixel value. In YAML it may be written as an integer
// (0x007F7F) or a string ("#007F7F").
type Color uint32

func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a scalar")
	}
	s := strings.TrimSpace(value.Value)
	base := 0
	switch {
	case strings.HasPrefix(s, "#"):
		s, base = s[1:], 16
	case strings.HasPrefix(strings.ToLower(s), "0x"):
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return fmt.Errorf("invalid color %q", value.Value)
	}
	if v > 0xFFFFFF {
		return fmt.Errorf("color %q out of range", value.Value)
	}
	*c = Color(v)
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

func (c Color) String() string {
	return fmt.Sprintf("#%06X", uint32(c))
}

// Screen is the size of the composited screen. Zero picks the backend's
// natural size. Fullscreen only applies to the x11 backend.
type Screen struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
}

// Queues sizes the bounded structures.
type Queues struct {
	EventRing   int `yaml:"event_ring"`
	PrivateRing int `yaml:"private_ring"`
	KeyRing     int `yaml:"key_ring"`
	Actions     int `yaml:"actions"`
	Clicks      int `yaml:"clicks"`
}

// Damage configures per-window dirty tracking.
type Damage struct {
	Cap    int `yaml:"cap"`
	Margin int `yaml:"margin"`
}

// Placement configures where new windows go and how small they may get.
type Placement struct {
	CascadeStep  int `yaml:"cascade_step"`
	CascadeReset int `yaml:"cascade_reset"`
	MinWidth     int `yaml:"min_width"`
	MinHeight    int `yaml:"min_height"`
	SnapGap      int `yaml:"snap_gap"`
}

// LayoutMode defines how Tile arranges windows.
type LayoutMode string

const (
	LayoutModeAuto        LayoutMode = "auto"         // Dynamic grid based on count.
	LayoutModeFixed       LayoutMode = "fixed"        // Specific rows × cols.
	LayoutModeVertical    LayoutMode = "vertical"     // Single column stack.
	LayoutModeHorizontal  LayoutMode = "horizontal"   // Single row side-by-side.
	LayoutModeMasterStack LayoutMode = "master-stack" // Master pane left, stack grid right.
)

// Tile configures the Tile command.
type Tile struct {
	Mode            LayoutMode `yaml:"mode"`
	Rows            int        `yaml:"rows"`
	Cols            int        `yaml:"cols"`
	MasterPercent   int        `yaml:"master_percent"`
	FlexibleLastRow bool       `yaml:"flexible_last_row"`
}

// Theme holds the decoration colours.
type Theme struct {
	Background    Color `yaml:"background"`
	TitleActive   Color `yaml:"title_active"`
	TitleInactive Color `yaml:"title_inactive"`
	TitleHung     Color `yaml:"title_hung"`
	Border        Color `yaml:"border"`
	Window        Color `yaml:"window"`
}

// Logging configures the daemon logger.
type Logging struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Control configures the control socket. An empty Socket uses the runtime
// directory.
type Control struct {
	Socket string `yaml:"socket"`
}

// Demo lists the demo applications started with the daemon.
type Demo struct {
	Windows []string `yaml:"windows"`
}

// Config is the effective configuration.
type Config struct {
	Backend           Backend           `yaml:"backend"`
	Screen            Screen            `yaml:"screen"`
	TickMS            int               `yaml:"tick_ms"`
	HangTimeoutMS     int               `yaml:"hang_timeout_ms"`
	ShutdownTimeoutMS int               `yaml:"shutdown_timeout_ms"`
	MaxWindows        int               `yaml:"max_windows"`
	MemoryLimitMB     int               `yaml:"memory_limit_mb"`
	Queues            Queues            `yaml:"queues"`
	Damage            Damage            `yaml:"damage"`
	Placement         Placement         `yaml:"placement"`
	Tile              Tile              `yaml:"tile"`
	Theme             Theme             `yaml:"theme"`
	Logging           Logging           `yaml:"logging"`
	Control           Control           `yaml:"control"`
	Bindings          map[string]string `yaml:"bindings"`
	Demo              Demo              `yaml:"demo"`
}

// DemoKinds are the demo application names accepted in demo.windows.
var DemoKinds = []string{"pattern", "scribble", "clock", "stall"}

// DefaultBindings are the key bindings used when the config sets none.
func DefaultBindings() map[string]string {
	return map[string]string{
		"Mod1-t":     "tile",
		"Mod1-Left":  "snap left-half",
		"Mod1-Right": "snap right-half",
		"Mod1-Up":    "maximize",
		"Mod1-Down":  "restore",
		"Mod1-m":     "minimize",
		"Mod1-F4":    "close",
	}
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:           BackendHeadless,
		Screen:            Screen{Width: 640, Height: 480},
		TickMS:            16,
		HangTimeoutMS:     5000,
		ShutdownTimeoutMS: 10000,
		MaxWindows:        64,
		MemoryLimitMB:     64,
		Queues: Queues{
			EventRing:   8192,
			PrivateRing: 256,
			KeyRing:     512,
			Actions:     4096,
			Clicks:      256,
		},
		Damage: Damage{Cap: 100, Margin: 2},
		Placement: Placement{
			CascadeStep:  22,
			CascadeReset: 10,
			MinWidth:     32,
			MinHeight:    14,
		},
		Tile: Tile{
			Mode:            LayoutModeAuto,
			MasterPercent:   60,
			FlexibleLastRow: true,
		},
		Theme: Theme{
			Background:    0x007F7F,
			TitleActive:   0x00007F,
			TitleInactive: 0x7F7F7F,
			TitleHung:     0x404040,
			Border:        0x000000,
			Window:        0xC0C0C0,
		},
		Logging:  Logging{Level: "info"},
		Bindings: DefaultBindings(),
		Demo:     Demo{Windows: []string{"pattern", "scribble", "clock"}},
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Demo.Windows = append([]string(nil), c.Demo.Windows...)
	out.Bindings = make(map[string]string, len(c.Bindings))
	for k, v := range c.Bindings {
		out.Bindings[k] = v
	}
	return &out
}

// Tick returns the frame budget.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}

// HangTimeout returns how long a window may leave events pending.
func (c *Config) HangTimeout() time.Duration {
	return time.Duration(c.HangTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns how long shutdown waits for windows to close.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// MemoryLimit returns the pixel budget in bytes.
func (c *Config) MemoryLimit() uint64 {
	return uint64(c.MemoryLimitMB) << 20
}

// Validate checks every value and returns a *ValidationError naming the
// first offending key.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendHeadless, BackendX11, BackendTTY:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: headless, x11, tty")}
	}
	if c.Screen.Width < 0 || c.Screen.Height < 0 {
		return &ValidationError{Path: "screen", Err: fmt.Errorf("screen size must be >= 0")}
	}
	if c.Backend == BackendHeadless && (c.Screen.Width == 0 || c.Screen.Height == 0) {
		return &ValidationError{Path: "screen", Err: fmt.Errorf("headless backend needs an explicit screen size")}
	}
	if c.TickMS < 1 || c.TickMS > 1000 {
		return &ValidationError{Path: "tick_ms", Err: fmt.Errorf("tick_ms must be between 1 and 1000")}
	}
	if c.HangTimeoutMS < c.TickMS {
		return &ValidationError{Path: "hang_timeout_ms", Err: fmt.Errorf("hang_timeout_ms must be >= tick_ms")}
	}
	if c.ShutdownTimeoutMS < 0 {
		return &ValidationError{Path: "shutdown_timeout_ms", Err: fmt.Errorf("shutdown_timeout_ms must be >= 0")}
	}
	if c.MaxWindows < 1 || c.MaxWindows > 0xFFFF {
		return &ValidationError{Path: "max_windows", Err: fmt.Errorf("max_windows must be between 1 and 65535")}
	}
	if c.MemoryLimitMB < 0 {
		return &ValidationError{Path: "memory_limit_mb", Err: fmt.Errorf("memory_limit_mb must be >= 0 (0 = unlimited)")}
	}

	queues := []struct {
		path string
		v    int
	}{
		{"queues.event_ring", c.Queues.EventRing},
		{"queues.private_ring", c.Queues.PrivateRing},
		{"queues.key_ring", c.Queues.KeyRing},
		{"queues.actions", c.Queues.Actions},
		{"queues.clicks", c.Queues.Clicks},
	}
	for _, q := range queues {
		if q.v < 1 {
			return &ValidationError{Path: q.path, Err: fmt.Errorf("queue size must be >= 1")}
		}
	}

	if c.Damage.Cap < 1 {
		return &ValidationError{Path: "damage.cap", Err: fmt.Errorf("damage.cap must be >= 1")}
	}
	if c.Damage.Margin < 0 {
		return &ValidationError{Path: "damage.margin", Err: fmt.Errorf("damage.margin must be >= 0")}
	}

	if c.Placement.CascadeStep < 0 || c.Placement.CascadeReset < 0 {
		return &ValidationError{Path: "placement", Err: fmt.Errorf("cascade values must be >= 0")}
	}
	if c.Placement.MinWidth < 1 || c.Placement.MinHeight < 1 {
		return &ValidationError{Path: "placement", Err: fmt.Errorf("minimum window size must be >= 1")}
	}
	if c.Placement.SnapGap < 0 {
		return &ValidationError{Path: "placement.snap_gap", Err: fmt.Errorf("snap_gap must be >= 0")}
	}

	switch c.Tile.Mode {
	case LayoutModeAuto, LayoutModeVertical, LayoutModeHorizontal:
	case LayoutModeFixed:
		if c.Tile.Rows < 1 || c.Tile.Cols < 1 {
			return &ValidationError{Path: "tile", Err: fmt.Errorf("fixed mode requires rows >= 1 and cols >= 1")}
		}
	case LayoutModeMasterStack:
		if c.Tile.MasterPercent < 10 || c.Tile.MasterPercent > 90 {
			return &ValidationError{Path: "tile.master_percent", Err: fmt.Errorf("master_percent must be between 10 and 90")}
		}
	default:
		return &ValidationError{Path: "tile.mode", Err: fmt.Errorf("mode must be one of: auto, fixed, vertical, horizontal, master-stack")}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return &ValidationError{Path: "logging.level", Err: fmt.Errorf("level must be one of: debug, info, warn, error")}
	}

	if _, err := hotkeys.NewTable(c.Bindings); err != nil {
		return &ValidationError{Path: "bindings", Err: err}
	}

	for i, name := range c.Demo.Windows {
		known := false
		for _, k := range DemoKinds {
			if name == k {
				known = true
				break
			}
		}
		if !known {
			return &ValidationError{
				Path: "demo.windows",
				Err:  fmt.Errorf("entry %d: unknown demo %q (want one of: %s)", i, name, strings.Join(DemoKinds, ", ")),
			}
		}
	}

	return nil
}
