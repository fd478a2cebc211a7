package scan

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/keyscan/debounce-go/pkg/debounce"
	"github.com/keyscan/debounce-go/pkg/log"
	"github.com/keyscan/debounce-go/pkg/matrix"
	"github.com/keyscan/debounce-go/pkg/timer"
)

// Settle is how long the bench keeps scanning after the last stroke, enough
// for the longest debounce time to expire.
const Settle = 2 * time.Duration(debounce.MaxTime) * time.Millisecond

// ErrStrokeOutOfRange is returned for a stroke outside the scenario matrix
// or with a release before its press.
var ErrStrokeOutOfRange = errors.New("scan: stroke out of range")

// Stroke is one scripted keystroke. For Bounce after each edge the contact
// chatters randomly before it settles.
type Stroke struct {
	Row       int
	Col       int
	PressAt   time.Duration
	ReleaseAt time.Duration
	Bounce    time.Duration
}

// Scenario is a scripted typing session on a bench.
type Scenario struct {
	Rows    int
	Cols    int
	Strokes []Stroke

	// Seed makes the contact bounce reproducible.
	Seed uint64
}

// Validate checks the dimensions and every stroke.
func (s Scenario) Validate() error {
	if _, err := matrix.New(s.Rows, s.Cols); err != nil {
		return err
	}
	for i, st := range s.Strokes {
		if st.Row < 0 || st.Row >= s.Rows || st.Col < 0 || st.Col >= s.Cols {
			return fmt.Errorf("%w: stroke %d at (%d,%d)", ErrStrokeOutOfRange, i, st.Row, st.Col)
		}
		if st.PressAt < 0 || st.ReleaseAt <= st.PressAt || st.Bounce < 0 {
			return fmt.Errorf("%w: stroke %d timing", ErrStrokeOutOfRange, i)
		}
	}
	return nil
}

// Duration returns when the bench stops scanning.
func (s Scenario) Duration() time.Duration {
	var end time.Duration
	for _, st := range s.Strokes {
		end = max(end, st.ReleaseAt+st.Bounce)
	}
	return end + Settle
}

// Report summarizes one algorithm's run of a scenario.
type Report struct {
	Algorithm debounce.Algorithm
	TimeMS    uint8

	Strokes  int
	Events   int
	Presses  int
	Releases int

	// Chatter counts reported transitions beyond one press and one release
	// per stroke.
	Chatter int

	// Missed counts strokes the host never saw pressed.
	Missed int

	MeanPressLatency   time.Duration
	MaxPressLatency    time.Duration
	MeanReleaseLatency time.Duration
	MaxReleaseLatency  time.Duration
}

// String renders the report as one table line.
func (r Report) String() string {
	return fmt.Sprintf("%-20s %3dms events=%-4d chatter=%-3d missed=%-3d press=%v/%v release=%v/%v",
		r.Algorithm, r.TimeMS, r.Events, r.Chatter, r.Missed,
		r.MeanPressLatency, r.MaxPressLatency, r.MeanReleaseLatency, r.MaxReleaseLatency)
}

// BenchConfig configures Simulate.
type BenchConfig struct {
	// EventLog receives the engine and driver events of the run.
	EventLog log.Logger

	// UnitID labels captured events.
	UnitID string

	// Metrics counts scan cycles. Optional.
	Metrics Metrics
}

type stampedEvent struct {
	at time.Duration
	KeyEvent
}

// Simulate runs the scenario once through a fresh engine with the given
// settings, scanning every millisecond on a fake clock.
func Simulate(s Scenario, algorithm debounce.Algorithm, ms uint8, cfg BenchConfig) (Report, error) {
	if err := s.Validate(); err != nil {
		return Report{}, err
	}

	clock := clockwork.NewFakeClock()
	start := clock.Now()
	engine, err := debounce.NewEngine(debounce.Config{
		Rows:      s.Rows,
		Cols:      s.Cols,
		Algorithm: algorithm,
		Time:      ms,
		Clock:     clock,
		Source:    timer.NewClockSource(clock),
		EventLog:  cfg.EventLog,
		UnitID:    cfg.UnitID,
	})
	if err != nil {
		return Report{}, err
	}

	timeline := newTimeline(s)
	var events []stampedEvent
	driver, err := NewDriver(DriverConfig{
		Engine: engine,
		Reader: ReaderFunc(func(dst *matrix.Matrix) {
			timeline.sample(clock.Since(start), dst)
		}),
		Clock:    clock,
		EventLog: cfg.EventLog,
		Metrics:  cfg.Metrics,
		UnitID:   cfg.UnitID,
		OnKeyEvent: func(k KeyEvent) {
			events = append(events, stampedEvent{at: clock.Since(start), KeyEvent: k})
		},
	})
	if err != nil {
		return Report{}, err
	}

	for end := s.Duration(); clock.Since(start) <= end; clock.Advance(time.Millisecond) {
		driver.Scan()
	}

	a, t := engine.Settings()
	return summarize(s, a, t, events), nil
}

// Compare runs the scenario once per algorithm with the same debounce time.
func Compare(s Scenario, ms uint8, cfg BenchConfig) ([]Report, error) {
	reports := make([]Report, 0, debounce.AlgorithmCount)
	for _, a := range debounce.Algorithms() {
		r, err := Simulate(s, a, ms, cfg)
		if err != nil {
			return nil, fmt.Errorf("simulate %s: %w", a, err)
		}
		reports = append(reports, r)
	}
	return reports, nil
}

func summarize(s Scenario, a debounce.Algorithm, ms uint8, events []stampedEvent) Report {
	r := Report{Algorithm: a, TimeMS: ms, Strokes: len(s.Strokes), Events: len(events)}

	for _, e := range events {
		if e.Pressed {
			r.Presses++
		} else {
			r.Releases++
		}
	}

	var pressSum, releaseSum time.Duration
	var pressN, releaseN int
	attributed := 0
	for _, w := range strokeWindows(s) {
		count := 0
		var pressed, released bool
		for _, e := range events {
			if e.Row != w.Row || e.Col != w.Col || e.at < w.PressAt || e.at >= w.until {
				continue
			}
			count++
			switch {
			case e.Pressed && !pressed:
				pressed = true
				lat := e.at - w.PressAt
				pressSum += lat
				pressN++
				r.MaxPressLatency = max(r.MaxPressLatency, lat)
			case !e.Pressed && !released && e.at >= w.ReleaseAt:
				released = true
				lat := e.at - w.ReleaseAt
				releaseSum += lat
				releaseN++
				r.MaxReleaseLatency = max(r.MaxReleaseLatency, lat)
			}
		}
		attributed += count
		r.Chatter += max(count-2, 0)
		if !pressed {
			r.Missed++
		}
	}
	r.Chatter += len(events) - attributed

	if pressN > 0 {
		r.MeanPressLatency = pressSum / time.Duration(pressN)
	}
	if releaseN > 0 {
		r.MeanReleaseLatency = releaseSum / time.Duration(releaseN)
	}
	return r
}

type strokeWindow struct {
	Stroke
	until time.Duration
}

// strokeWindows assigns each stroke the time up to the next stroke on the
// same key.
func strokeWindows(s Scenario) []strokeWindow {
	windows := make([]strokeWindow, len(s.Strokes))
	for i, st := range s.Strokes {
		windows[i] = strokeWindow{Stroke: st, until: s.Duration() + time.Millisecond}
	}
	sort.SliceStable(windows, func(i, j int) bool { return windows[i].PressAt < windows[j].PressAt })
	for i := range windows {
		for j := i + 1; j < len(windows); j++ {
			if windows[j].Row == windows[i].Row && windows[j].Col == windows[i].Col {
				windows[i].until = windows[j].PressAt
				break
			}
		}
	}
	return windows
}

// timeline precomputes the contact state of every bouncing edge.
type timeline struct {
	strokes []Stroke
	bounce  [][]bool
}

func newTimeline(s Scenario) *timeline {
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))
	t := &timeline{strokes: s.Strokes, bounce: make([][]bool, len(s.Strokes))}
	for i, st := range s.Strokes {
		n := int(st.Bounce / time.Millisecond)
		pattern := make([]bool, 2*n)
		for j := range pattern {
			pattern[j] = rng.IntN(2) == 1
		}
		t.bounce[i] = pattern
	}
	return t
}

// sample writes the contact states at elapsed time now into dst. The first
// millisecond of every edge already shows the new state.
func (t *timeline) sample(now time.Duration, dst *matrix.Matrix) {
	dst.Clear()
	for i, st := range t.strokes {
		if now < st.PressAt {
			continue
		}
		n := len(t.bounce[i]) / 2
		closed := false
		switch press, release := now-st.PressAt, now-st.ReleaseAt; {
		case release >= 0:
			k := int(release / time.Millisecond)
			closed = k > 0 && k < n && t.bounce[i][n+k]
		default:
			k := int(press / time.Millisecond)
			closed = k == 0 || k >= n || t.bounce[i][k]
		}
		if closed {
			dst.Set(st.Row, st.Col, true)
		}
	}
}
