package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/jonboulle/clockwork"

	"github.com/keyscan/debounce-go/pkg/debounce"
)

const shellHelp = `Commands:
  algo <name|n>           Select algorithm
  time <ms>               Set debounce time
  set <name|n> <ms>       Set algorithm and time at once
  cycle [rev]             Next (or previous) algorithm
  up [coarse]             Debounce time +1 (or +10)
  down [coarse]           Debounce time -1 (or -10)
  press <row> <col>       Close a switch
  release <row> <col>     Open a switch
  chatter <row> <col> <n> Toggle a switch n times, one scan apart
  tick [ms]               Advance time, scanning every millisecond
  show                    Print raw and cooked matrices
  status                  Print settings and counters
  help                    Show this help
  quit                    Exit
`

// shell drives one half by hand. Time only moves on tick.
type shell struct {
	out   io.Writer
	clock *clockwork.FakeClock
	local *half
	pair  *pair
}

// exec runs one command line and reports whether the shell should exit.
func (s *shell) exec(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	e := s.local.engine

	var err error
	switch cmd {
	case "help", "?":
		fmt.Fprint(s.out, shellHelp)
	case "quit", "exit", "q":
		return true
	case "algo", "a":
		var a debounce.Algorithm
		if a, err = parseAlgorithmArg(args, 0); err == nil {
			e.SetAlgorithm(a)
			s.printSettings()
		}
	case "time", "t":
		var ms uint8
		if ms, err = parseTimeArg(args, 0); err == nil {
			e.SetTime(ms)
			s.printSettings()
		}
	case "set":
		var a debounce.Algorithm
		var ms uint8
		if a, err = parseAlgorithmArg(args, 0); err == nil {
			if ms, err = parseTimeArg(args, 1); err == nil {
				e.SetAlgorithmAndTime(a, ms)
				s.printSettings()
			}
		}
	case "cycle", "c":
		e.CycleAlgorithm(hasFlag(args, "rev"))
		s.printSettings()
	case "up", "down":
		e.StepTime(cmd == "up", hasFlag(args, "coarse"))
		s.printSettings()
	case "press", "p", "release", "r":
		var row, col int
		if row, col, err = s.parseKey(args); err == nil {
			s.local.switches.set(row, col, cmd == "press" || cmd == "p")
			s.scan()
		}
	case "chatter":
		err = s.chatter(args)
	case "tick":
		err = s.tick(args)
	case "show":
		fmt.Fprintf(s.out, "raw:\n%s\ncooked:\n%s\n", s.local.driver.Raw(), s.local.driver.Cooked())
	case "status":
		s.printStatus()
	default:
		err = fmt.Errorf("unknown command %q (try help)", cmd)
	}

	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
	}
	s.sync()
	return false
}

func (s *shell) scan() {
	s.local.driver.Scan()
}

func (s *shell) tick(args []string) error {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			return fmt.Errorf("invalid tick count %q", args[0])
		}
		n = v
	}
	for range n {
		s.clock.Advance(time.Millisecond)
		s.scan()
	}
	return nil
}

func (s *shell) chatter(args []string) error {
	row, col, err := s.parseKey(args)
	if err != nil {
		return err
	}
	if len(args) < 3 {
		return errors.New("usage: chatter <row> <col> <n>")
	}
	n, err := strconv.Atoi(args[2])
	if err != nil || n < 1 {
		return fmt.Errorf("invalid toggle count %q", args[2])
	}
	for range n {
		s.local.switches.toggle(row, col)
		s.scan()
		s.clock.Advance(time.Millisecond)
	}
	return nil
}

func (s *shell) parseKey(args []string) (int, int, error) {
	if len(args) < 2 {
		return 0, 0, errors.New("row and column required")
	}
	row, err := strconv.Atoi(args[0])
	if err != nil || row < 0 || row >= s.local.engine.Rows() {
		return 0, 0, fmt.Errorf("invalid row %q", args[0])
	}
	col, err := strconv.Atoi(args[1])
	if err != nil || col < 0 || col >= s.local.engine.Cols() {
		return 0, 0, fmt.Errorf("invalid column %q", args[1])
	}
	return row, col, nil
}

// sync pushes settings changes to the secondary half.
func (s *shell) sync() {
	if s.pair == nil {
		return
	}
	if sent, err := s.pair.syncNow(time.Second); err != nil {
		fmt.Fprintf(s.out, "Sync failed: %v\n", err)
	} else if sent {
		a, ms := s.pair.secondary.engine.Settings()
		fmt.Fprintf(s.out, "Secondary synced: %s/%dms\n", a, ms)
	}
}

func (s *shell) printSettings() {
	a, ms := s.local.engine.Settings()
	fmt.Fprintf(s.out, "Algorithm: %s (%d)  Time: %dms\n", a, a, ms)
}

func (s *shell) printStatus() {
	s.printSettings()
	fmt.Fprintf(s.out, "Cycles: %d  Pressed: %d\n", s.local.driver.Cycles(), s.local.driver.Cooked().Pressed())
	if s.pair != nil {
		a, ms := s.pair.secondary.engine.Settings()
		last := s.pair.syncer.LastSynced()
		fmt.Fprintf(s.out, "Secondary: %s/%dms  Last synced: %s\n", a, ms, last)
	}
}

func parseAlgorithmArg(args []string, i int) (debounce.Algorithm, error) {
	if len(args) <= i {
		return 0, errors.New("algorithm required")
	}
	return debounce.ParseAlgorithm(args[i])
}

func parseTimeArg(args []string, i int) (uint8, error) {
	if len(args) <= i {
		return 0, errors.New("time required")
	}
	v, err := strconv.ParseUint(args[i], 10, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q (0-255)", args[i])
	}
	return uint8(v), nil
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if strings.EqualFold(a, flag) {
			return true
		}
	}
	return false
}

// runShell reads commands until quit, EOF or ctx is done.
func runShell(ctx context.Context, s *shell) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "debounce> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	s.out = rl.Stdout()
	fmt.Fprint(s.out, shellHelp)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return nil
		}
		if s.exec(line) {
			return nil
		}
	}
}
