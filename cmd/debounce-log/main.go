// Command debounce-log views and analyzes debounce capture files.
//
// Capture files are written by debounce-sim with the -event-log flag.
//
// Usage:
//
//	debounce-log <command> [flags] <file.dlog>
//
// Commands:
//
//	view     View capture file in human-readable format
//	stats    Show statistics per unit
//	export   Export events as JSON lines
//
// Examples:
//
//	# View only cooked matrix changes
//	debounce-log view -category scan run.dlog
//
//	# Statistics for the secondary half
//	debounce-log stats -role secondary run.dlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/keyscan/debounce-go/cmd/debounce-log/commands"
	"github.com/keyscan/debounce-go/pkg/log"
)

const usage = `debounce-log - Debounce Capture Analyzer

Usage:
  debounce-log <command> [flags] <file.dlog>

Commands:
  view     View capture file in human-readable format
  stats    Show statistics per unit
  export   Export events as JSON lines

Use "debounce-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		run(cmd, "View capture file in human-readable format", args, func(path string, filter log.Filter, _ string) error {
			return commands.RunView(path, filter, os.Stdout)
		})
	case "stats":
		run(cmd, "Show statistics per unit", args, func(path string, filter log.Filter, _ string) error {
			return commands.RunStats(path, filter, os.Stdout)
		})
	case "export":
		run(cmd, "Export events as JSON lines", args, commands.RunExport)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// run parses the flags shared by every command and calls fn.
func run(name, summary string, args []string, fn func(path string, filter log.Filter, output string) error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `debounce-log %s - %s

Usage:
  debounce-log %s [flags] <file.dlog>

Flags:
`, name, summary, name)
		fs.PrintDefaults()
	}

	category := fs.String("category", "", "Filter by category (config, scan, sync, frame, error)")
	role := fs.String("role", "", "Filter by role (standalone, primary, secondary)")
	unit := fs.String("unit", "", "Filter by unit ID")
	output := fs.String("o", "", "Output file for export (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		fs.Usage()
		os.Exit(1)
	}

	filter := log.Filter{UnitID: *unit}

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Category = &c
	}

	if *role != "" {
		r, err := commands.ParseRoleFlag(*role)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		filter.Role = &r
	}

	if err := fn(fs.Arg(0), filter, *output); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
