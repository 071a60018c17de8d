package main

import (
	"fmt"
	"io"
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runDaemon(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "ctl":
		os.Exit(runCtl(os.Args[2:]))
	case "version":
		fmt.Println("framewm", version)
		os.Exit(0)
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: framewm <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Start the compositor (foreground)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  ctl status          Show compositor status")
	fmt.Fprintln(w, "  ctl list            List windows")
	fmt.Fprintln(w, "  ctl focus ID        Select a window")
	fmt.Fprintln(w, "  ctl tile            Tile all visible windows")
	fmt.Fprintln(w, "  ctl snap REGION     Snap a window to a screen region")
	fmt.Fprintln(w, "  ctl close           Ask a window to close")
	fmt.Fprintln(w, "  ctl minimize        Minimize a window")
	fmt.Fprintln(w, "  ctl maximize        Maximize a window")
	fmt.Fprintln(w, "  ctl restore         Restore a window")
	fmt.Fprintln(w, "  ctl cycle           Select the next window")
	fmt.Fprintln(w, "  ctl reload          Reload the config file")
	fmt.Fprintln(w, "  ctl shutdown        Shut the compositor down")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config path         Print the config file location")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  version             Print the version")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'framewm <command> --help' for command-specific options.")
}
