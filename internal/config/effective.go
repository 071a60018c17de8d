package config

import "fmt"

// ValidationError names the configuration key that failed and, when the
// key came from a file, where it was written.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// BuildEffectiveConfig applies raw on top of DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	set(&cfg.Backend, raw.Backend)
	set(&cfg.Screen.Width, raw.Screen.Width)
	set(&cfg.Screen.Height, raw.Screen.Height)
	set(&cfg.Screen.Fullscreen, raw.Screen.Fullscreen)
	set(&cfg.TickMS, raw.TickMS)
	set(&cfg.HangTimeoutMS, raw.HangTimeoutMS)
	set(&cfg.ShutdownTimeoutMS, raw.ShutdownTimeoutMS)
	set(&cfg.MaxWindows, raw.MaxWindows)
	set(&cfg.MemoryLimitMB, raw.MemoryLimitMB)

	set(&cfg.Queues.EventRing, raw.Queues.EventRing)
	set(&cfg.Queues.PrivateRing, raw.Queues.PrivateRing)
	set(&cfg.Queues.KeyRing, raw.Queues.KeyRing)
	set(&cfg.Queues.Actions, raw.Queues.Actions)
	set(&cfg.Queues.Clicks, raw.Queues.Clicks)

	set(&cfg.Damage.Cap, raw.Damage.Cap)
	set(&cfg.Damage.Margin, raw.Damage.Margin)

	set(&cfg.Placement.CascadeStep, raw.Placement.CascadeStep)
	set(&cfg.Placement.CascadeReset, raw.Placement.CascadeReset)
	set(&cfg.Placement.MinWidth, raw.Placement.MinWidth)
	set(&cfg.Placement.MinHeight, raw.Placement.MinHeight)
	set(&cfg.Placement.SnapGap, raw.Placement.SnapGap)

	set(&cfg.Tile.Mode, raw.Tile.Mode)
	set(&cfg.Tile.Rows, raw.Tile.Rows)
	set(&cfg.Tile.Cols, raw.Tile.Cols)
	set(&cfg.Tile.MasterPercent, raw.Tile.MasterPercent)
	set(&cfg.Tile.FlexibleLastRow, raw.Tile.FlexibleLastRow)

	set(&cfg.Theme.Background, raw.Theme.Background)
	set(&cfg.Theme.TitleActive, raw.Theme.TitleActive)
	set(&cfg.Theme.TitleInactive, raw.Theme.TitleInactive)
	set(&cfg.Theme.TitleHung, raw.Theme.TitleHung)
	set(&cfg.Theme.Border, raw.Theme.Border)
	set(&cfg.Theme.Window, raw.Theme.Window)

	set(&cfg.Logging.Level, raw.Logging.Level)
	set(&cfg.Logging.File, raw.Logging.File)
	set(&cfg.Control.Socket, raw.Control.Socket)

	for k, v := range raw.Bindings {
		if v == "" {
			delete(cfg.Bindings, k)
			continue
		}
		cfg.Bindings[k] = v
	}

	if raw.Demo.Windows != nil {
		cfg.Demo.Windows = append([]string(nil), (*raw.Demo.Windows)...)
	}

	return cfg
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
