package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/1broseidon/framewm/internal/config"
	"github.com/1broseidon/framewm/internal/ipc"
	"github.com/1broseidon/framewm/internal/platform"
	"github.com/1broseidon/framewm/internal/runtimepath"
)

// windowCommands take an optional --id and act on the selected window
// without one.
var windowCommands = map[string]ipc.CommandType{
	"snap":     ipc.CommandSnap,
	"close":    ipc.CommandClose,
	"minimize": ipc.CommandMinimize,
	"maximize": ipc.CommandMaximize,
	"restore":  ipc.CommandRestore,
}

func printCtlUsage() {
	fmt.Fprintln(os.Stderr, "Usage: framewm ctl [--socket PATH] [--json] <command> [args]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  status | list | tile | cycle | reload | shutdown")
	fmt.Fprintln(os.Stderr, "  focus ID")
	fmt.Fprintln(os.Stderr, "  snap [--id ID] REGION")
	fmt.Fprintln(os.Stderr, "  close | minimize | maximize | restore [--id ID]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "IDs are printed by 'list' as SLOT.GEN.")
}

func newClient(socket string) *ipc.Client {
	return ipc.NewClient(socket)
}

func runCtl(args []string) int {
	fs := flag.NewFlagSet("ctl", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	socketFlag := fs.String("socket", "", "Control socket path")
	asJSON := fs.Bool("json", false, "Print status and list as JSON")
	fs.Usage = printCtlUsage
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		printCtlUsage()
		return 2
	}

	socket, err := ctlSocket(*socketFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	client := newClient(socket)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "status":
		status, err := client.Status()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *asJSON {
			return printJSON(status)
		}
		printStatus(status)
		return 0

	case "list":
		windows, err := client.List()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if *asJSON {
			return printJSON(windows)
		}
		for _, w := range windows {
			fmt.Println(formatWindow(w))
		}
		return 0

	case "focus":
		if len(rest) != 1 {
			fmt.Fprintln(os.Stderr, "focus requires a window ID")
			return 2
		}
		id, err := parseWindowID(rest[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		return report(client.Window(ipc.CommandFocus, id, ""))

	case "tile":
		return report(client.Window(ipc.CommandTile, 0, ""))
	case "cycle":
		return report(client.Window(ipc.CommandCycle, 0, ""))
	case "reload":
		return report(client.Reload())
	case "shutdown":
		return report(client.Shutdown())
	}

	ipcCmd, ok := windowCommands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown ctl command: %s\n\n", cmd)
		printCtlUsage()
		return 2
	}
	wfs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	wfs.SetOutput(os.Stderr)
	idFlag := wfs.String("id", "", "Window ID (default: selected window)")
	if err := wfs.Parse(rest); err != nil {
		return 2
	}
	var id uint32
	if *idFlag != "" {
		if id, err = parseWindowID(*idFlag); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}
	region := ""
	if ipcCmd == ipc.CommandSnap {
		if wfs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "snap requires a region, e.g. left-half or top-right")
			return 2
		}
		region = wfs.Arg(0)
	} else if wfs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", cmd)
		return 2
	}
	return report(client.Window(ipcCmd, id, region))
}

// ctlSocket finds the socket the same way the daemon does: flag, then
// control.socket from the config file, then the runtime directory.
func ctlSocket(flagValue string) (string, error) {
	if flagValue != "" {
		return runtimepath.SocketPath(flagValue)
	}
	configured := ""
	if res, err := config.Load(); err == nil {
		configured = res.Config.Control.Socket
	}
	return runtimepath.SocketPath(configured)
}

// parseWindowID accepts the SLOT.GEN form printed by list or a raw number.
func parseWindowID(s string) (uint32, error) {
	if slot, gen, ok := strings.Cut(s, "."); ok {
		sv, err1 := strconv.ParseUint(slot, 10, 16)
		gv, err2 := strconv.ParseUint(gen, 10, 16)
		if err1 != nil || err2 != nil || gv == 0 {
			return 0, fmt.Errorf("invalid window ID %q", s)
		}
		return uint32(platform.NewWindowID(int(sv), uint16(gv))), nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || !platform.WindowID(v).Valid() {
		return 0, fmt.Errorf("invalid window ID %q", s)
	}
	return uint32(v), nil
}

func formatWindow(w ipc.WindowInfo) string {
	var flags []string
	for _, f := range []struct {
		on   bool
		name string
	}{
		{w.Selected, "selected"},
		{w.Hidden, "hidden"},
		{w.Minimized, "minimized"},
		{w.Maximized, "maximized"},
		{w.Hung, "hung"},
	} {
		if f.on {
			flags = append(flags, f.name)
		}
	}
	line := fmt.Sprintf("%-7s %4d,%-4d %4dx%-4d %q",
		platform.WindowID(w.ID).String(), w.X, w.Y, w.Width, w.Height, w.Title)
	if len(flags) > 0 {
		line += " [" + strings.Join(flags, ",") + "]"
	}
	return line
}

func printStatus(s *ipc.StatusData) {
	fmt.Printf("backend:  %s\n", s.Backend)
	fmt.Printf("screen:   %dx%d\n", s.ScreenWidth, s.ScreenHeight)
	fmt.Printf("windows:  %d (%d hung)\n", s.Windows, s.Hung)
	fmt.Printf("selected: %s\n", platform.WindowID(s.Selected))
	if s.MemoryLimit > 0 {
		fmt.Printf("memory:   %s of %s (peak %s)\n",
			humanize.IBytes(s.MemoryInUse), humanize.IBytes(s.MemoryLimit), humanize.IBytes(s.MemoryPeak))
	} else {
		fmt.Printf("memory:   %s (peak %s)\n", humanize.IBytes(s.MemoryInUse), humanize.IBytes(s.MemoryPeak))
	}
	fmt.Printf("uptime:   %s\n", time.Duration(s.UptimeSeconds)*time.Second)
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func report(err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
