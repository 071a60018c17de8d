package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawScreen struct {
	Width      *int  `yaml:"width"`
	Height     *int  `yaml:"height"`
	Fullscreen *bool `yaml:"fullscreen"`
}

type RawQueues struct {
	EventRing   *int `yaml:"event_ring"`
	PrivateRing *int `yaml:"private_ring"`
	KeyRing     *int `yaml:"key_ring"`
	Actions     *int `yaml:"actions"`
	Clicks      *int `yaml:"clicks"`
}

type RawDamage struct {
	Cap    *int `yaml:"cap"`
	Margin *int `yaml:"margin"`
}

type RawPlacement struct {
	CascadeStep  *int `yaml:"cascade_step"`
	CascadeReset *int `yaml:"cascade_reset"`
	MinWidth     *int `yaml:"min_width"`
	MinHeight    *int `yaml:"min_height"`
	SnapGap      *int `yaml:"snap_gap"`
}

type RawTile struct {
	Mode            *LayoutMode `yaml:"mode"`
	Rows            *int        `yaml:"rows"`
	Cols            *int        `yaml:"cols"`
	MasterPercent   *int        `yaml:"master_percent"`
	FlexibleLastRow *bool       `yaml:"flexible_last_row"`
}

type RawTheme struct {
	Background    *Color `yaml:"background"`
	TitleActive   *Color `yaml:"title_active"`
	TitleInactive *Color `yaml:"title_inactive"`
	TitleHung     *Color `yaml:"title_hung"`
	Border        *Color `yaml:"border"`
	Window        *Color `yaml:"window"`
}

type RawLogging struct {
	Level *string `yaml:"level"`
	File  *string `yaml:"file"`
}

type RawControl struct {
	Socket *string `yaml:"socket"`
}

type RawDemo struct {
	Windows *[]string `yaml:"windows"`
}

// RawConfig is one file's contents. Nil fields were not set and leave the
// value from defaults or earlier files alone.
type RawConfig struct {
	Include IncludeList `yaml:"include"`

	Backend           *Backend     `yaml:"backend"`
	Screen            RawScreen    `yaml:"screen"`
	TickMS            *int         `yaml:"tick_ms"`
	HangTimeoutMS     *int         `yaml:"hang_timeout_ms"`
	ShutdownTimeoutMS *int         `yaml:"shutdown_timeout_ms"`
	MaxWindows        *int         `yaml:"max_windows"`
	MemoryLimitMB     *int         `yaml:"memory_limit_mb"`
	Queues            RawQueues    `yaml:"queues"`
	Damage            RawDamage    `yaml:"damage"`
	Placement         RawPlacement `yaml:"placement"`
	Tile              RawTile      `yaml:"tile"`
	Theme             RawTheme     `yaml:"theme"`
	Logging           RawLogging   `yaml:"logging"`
	Control           RawControl   `yaml:"control"`
	Demo              RawDemo      `yaml:"demo"`

	// Bindings merge key by key; an empty command unbinds a default.
	Bindings map[string]string `yaml:"bindings"`
}

func pick[T any](base, overlay *T) *T {
	if overlay != nil {
		return overlay
	}
	return base
}

// merge returns c with every field set in overlay replaced.
func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c
	out.Include = nil

	out.Backend = pick(c.Backend, overlay.Backend)
	out.Screen.Width = pick(c.Screen.Width, overlay.Screen.Width)
	out.Screen.Height = pick(c.Screen.Height, overlay.Screen.Height)
	out.Screen.Fullscreen = pick(c.Screen.Fullscreen, overlay.Screen.Fullscreen)
	out.TickMS = pick(c.TickMS, overlay.TickMS)
	out.HangTimeoutMS = pick(c.HangTimeoutMS, overlay.HangTimeoutMS)
	out.ShutdownTimeoutMS = pick(c.ShutdownTimeoutMS, overlay.ShutdownTimeoutMS)
	out.MaxWindows = pick(c.MaxWindows, overlay.MaxWindows)
	out.MemoryLimitMB = pick(c.MemoryLimitMB, overlay.MemoryLimitMB)

	out.Queues = RawQueues{
		EventRing:   pick(c.Queues.EventRing, overlay.Queues.EventRing),
		PrivateRing: pick(c.Queues.PrivateRing, overlay.Queues.PrivateRing),
		KeyRing:     pick(c.Queues.KeyRing, overlay.Queues.KeyRing),
		Actions:     pick(c.Queues.Actions, overlay.Queues.Actions),
		Clicks:      pick(c.Queues.Clicks, overlay.Queues.Clicks),
	}
	out.Damage = RawDamage{
		Cap:    pick(c.Damage.Cap, overlay.Damage.Cap),
		Margin: pick(c.Damage.Margin, overlay.Damage.Margin),
	}
	out.Placement = RawPlacement{
		CascadeStep:  pick(c.Placement.CascadeStep, overlay.Placement.CascadeStep),
		CascadeReset: pick(c.Placement.CascadeReset, overlay.Placement.CascadeReset),
		MinWidth:     pick(c.Placement.MinWidth, overlay.Placement.MinWidth),
		MinHeight:    pick(c.Placement.MinHeight, overlay.Placement.MinHeight),
		SnapGap:      pick(c.Placement.SnapGap, overlay.Placement.SnapGap),
	}
	out.Tile = RawTile{
		Mode:            pick(c.Tile.Mode, overlay.Tile.Mode),
		Rows:            pick(c.Tile.Rows, overlay.Tile.Rows),
		Cols:            pick(c.Tile.Cols, overlay.Tile.Cols),
		MasterPercent:   pick(c.Tile.MasterPercent, overlay.Tile.MasterPercent),
		FlexibleLastRow: pick(c.Tile.FlexibleLastRow, overlay.Tile.FlexibleLastRow),
	}
	out.Theme = RawTheme{
		Background:    pick(c.Theme.Background, overlay.Theme.Background),
		TitleActive:   pick(c.Theme.TitleActive, overlay.Theme.TitleActive),
		TitleInactive: pick(c.Theme.TitleInactive, overlay.Theme.TitleInactive),
		TitleHung:     pick(c.Theme.TitleHung, overlay.Theme.TitleHung),
		Border:        pick(c.Theme.Border, overlay.Theme.Border),
		Window:        pick(c.Theme.Window, overlay.Theme.Window),
	}
	out.Logging = RawLogging{
		Level: pick(c.Logging.Level, overlay.Logging.Level),
		File:  pick(c.Logging.File, overlay.Logging.File),
	}
	out.Control.Socket = pick(c.Control.Socket, overlay.Control.Socket)
	out.Demo.Windows = pick(c.Demo.Windows, overlay.Demo.Windows)

	if c.Bindings != nil || overlay.Bindings != nil {
		out.Bindings = make(map[string]string, len(c.Bindings)+len(overlay.Bindings))
		for k, v := range c.Bindings {
			out.Bindings[k] = v
		}
		for k, v := range overlay.Bindings {
			out.Bindings[k] = v
		}
	}

	return out
}
