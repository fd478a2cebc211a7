package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/keyscan/debounce-go/pkg/debounce"
)

// Label values.
const (
	KindAlgorithm = "algorithm"
	KindTime      = "time"

	DirectionOut = "out"
	DirectionIn  = "in"

	StatusOK        = "ok"
	StatusApplied   = "applied"
	StatusUnchanged = "unchanged"
	StatusError     = "error"
)

// Recorder holds the engine and split sync metrics of one unit.
type Recorder struct {
	ScanCycles    prometheus.Counter
	CookedChanges *prometheus.CounterVec
	ConfigChanges *prometheus.CounterVec
	Algorithm     prometheus.Gauge
	TimeMS        prometheus.Gauge
	SplitSync     *prometheus.CounterVec
}

// NewRecorder creates and registers the metrics on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		ScanCycles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scan_cycles_total",
			Help:      "Total number of debounced scan cycles.",
		}),
		CookedChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cooked_changes_total",
			Help:      "Scan cycles that changed the cooked matrix, by active algorithm.",
		}, []string{"algorithm"}),
		ConfigChanges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_changes_total",
			Help:      "Engine reconfigurations, by changed setting.",
		}, []string{"kind"}),
		Algorithm: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "algorithm",
			Help:      "Wire value of the active debounce algorithm.",
		}),
		TimeMS: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "time_ms",
			Help:      "Active debounce time in milliseconds.",
		}),
		SplitSync: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "split_sync_total",
			Help:      "Split configuration messages, by direction and outcome.",
		}, []string{"direction", "status"}),
	}
}

// Observe sets the settings gauges, e.g. right after the engine is created.
func (r *Recorder) Observe(a debounce.Algorithm, ms uint8) {
	r.Algorithm.Set(float64(a))
	r.TimeMS.Set(float64(ms))
}

// Hooks returns engine hooks that keep the gauges current and count changes.
func (r *Recorder) Hooks() debounce.Hooks {
	return debounce.Hooks{
		OnAlgorithmChange: func(a debounce.Algorithm) {
			r.ConfigChanges.WithLabelValues(KindAlgorithm).Inc()
			r.Algorithm.Set(float64(a))
		},
		OnTimeChange: func(ms uint8) {
			r.ConfigChanges.WithLabelValues(KindTime).Inc()
			r.TimeMS.Set(float64(ms))
		},
	}
}

// ScanCycle counts one Debounce call. changed is its result.
func (r *Recorder) ScanCycle(a debounce.Algorithm, changed bool) {
	r.ScanCycles.Inc()
	if changed {
		r.CookedChanges.WithLabelValues(a.String()).Inc()
	}
}

// SyncSent counts a send attempt of the primary half.
func (r *Recorder) SyncSent(err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	r.SplitSync.WithLabelValues(DirectionOut, status).Inc()
}

// SyncReceived counts a message handled by the secondary half.
func (r *Recorder) SyncReceived(applied bool, err error) {
	status := StatusUnchanged
	switch {
	case err != nil:
		status = StatusError
	case applied:
		status = StatusApplied
	}
	r.SplitSync.WithLabelValues(DirectionIn, status).Inc()
}
