package main

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/ipc"
	"github.com/1broseidon/framewm/internal/platform"
)

func TestParseWindowID(t *testing.T) {
	want := uint32(platform.NewWindowID(3, 2))
	for _, in := range []string{"3.2", "131075"} {
		got, err := parseWindowID(in)
		if err != nil {
			t.Fatalf("parseWindowID(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("parseWindowID(%q) = %d, want %d", in, got, want)
		}
	}
	for _, in := range []string{"", "x", "3.0", "3.x", "7", "70000.1"} {
		if _, err := parseWindowID(in); err == nil {
			t.Fatalf("parseWindowID(%q) succeeded", in)
		}
	}
}

func TestSplitList(t *testing.T) {
	if got := splitList(" pattern, clock ,"); !reflect.DeepEqual(got, []string{"pattern", "clock"}) {
		t.Fatalf("splitList = %v", got)
	}
	if got := splitList("none"); got == nil || len(got) != 0 {
		t.Fatalf("splitList(none) = %#v, want empty non-nil", got)
	}
}

func TestRunFlagsOverrideConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	runFlags{}.apply(cfg)
	if !reflect.DeepEqual(cfg, config.DefaultConfig()) {
		t.Fatalf("empty flags changed the config")
	}

	runFlags{backend: "tty", width: 320, demo: "stall", verbose: true, socket: "/tmp/x.sock"}.apply(cfg)
	if cfg.Backend != config.BackendTTY {
		t.Fatalf("backend = %s", cfg.Backend)
	}
	if cfg.Screen.Width != 320 || cfg.Screen.Height != 480 {
		t.Fatalf("screen = %+v", cfg.Screen)
	}
	if !reflect.DeepEqual(cfg.Demo.Windows, []string{"stall"}) {
		t.Fatalf("demo = %v", cfg.Demo.Windows)
	}
	if cfg.Logging.Level != "debug" || cfg.Control.Socket != "/tmp/x.sock" {
		t.Fatalf("logging/control = %+v %+v", cfg.Logging, cfg.Control)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestFormatWindow(t *testing.T) {
	line := formatWindow(ipc.WindowInfo{
		ID:       uint32(platform.NewWindowID(1, 1)),
		Title:    "Clock",
		X:        10,
		Y:        20,
		Width:    200,
		Height:   60,
		Selected: true,
		Hung:     true,
	})
	for _, want := range []string{"1.1", "200x60", `"Clock"`, "[selected,hung]"} {
		if !strings.Contains(line, want) {
			t.Fatalf("formatWindow = %q, missing %q", line, want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("warn").String() != "WARN" {
		t.Fatalf("warn not parsed")
	}
	if parseLevel("bogus").String() != "INFO" {
		t.Fatalf("bad level should fall back to info")
	}
}

func TestRunConfigValidate(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.yaml")
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(good, []byte("tick_ms: 20\nbindings:\n  Mod1-x: close\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bad, []byte("bindings:\n  Mod1-x: explode\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if rc := runConfig([]string{"validate", "--path", good}); rc != 0 {
		t.Fatalf("validate good rc=%d, want 0", rc)
	}
	if rc := runConfig([]string{"validate", "--path", bad}); rc != 1 {
		t.Fatalf("validate bad rc=%d, want 1", rc)
	}
	if rc := runConfig([]string{"explain", "--path", good, "tick_ms"}); rc != 0 {
		t.Fatalf("explain rc=%d, want 0", rc)
	}
	if rc := runConfig([]string{"frobnicate"}); rc != 2 {
		t.Fatalf("unknown subcommand rc=%d, want 2", rc)
	}
}
