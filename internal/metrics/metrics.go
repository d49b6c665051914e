// Package metrics records run outcomes in node_exporter textfile format so
// a host's Prometheus can alert on failed or stale provisioning runs.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/lempress/internal/provisioning"
)

// Recorder holds the metrics of one run on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	stepTotal    *prometheus.CounterVec
	stepDuration *prometheus.GaugeVec
	runSuccess   *prometheus.GaugeVec
	runDuration  *prometheus.GaugeVec
	lastRun      *prometheus.GaugeVec

	now func() time.Time
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stepTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lempress",
				Subsystem: "step",
				Name:      "total",
				Help:      "Steps of the last run by status",
			},
			[]string{"step", "status"},
		),
		stepDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "lempress",
				Subsystem: "step",
				Name:      "duration_seconds",
				Help:      "Duration of each step of the last run",
			},
			[]string{"step"},
		),
		runSuccess: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "lempress",
				Subsystem: "run",
				Name:      "success",
				Help:      "1 if the last run succeeded, 0 otherwise",
			},
			[]string{"variant", "domain"},
		),
		runDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "lempress",
				Subsystem: "run",
				Name:      "duration_seconds",
				Help:      "Wall time of the last run",
			},
			[]string{"variant", "domain"},
		),
		lastRun: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "lempress",
				Subsystem: "run",
				Name:      "last_timestamp_seconds",
				Help:      "Unix time the last run finished",
			},
			[]string{"variant", "domain"},
		),
		now: time.Now,
	}
	r.registry.MustRegister(r.stepTotal, r.stepDuration, r.runSuccess, r.runDuration, r.lastRun)
	return r
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Record stores the outcome of a run. A nil result marks a run that failed
// before the pipeline started.
func (r *Recorder) Record(req provisioning.Request, result *provisioning.Result, runErr error) {
	labels := prometheus.Labels{"variant": string(req.Variant), "domain": req.Domain.ASCII}

	success := 0.0
	if runErr == nil && result != nil && result.Succeeded() {
		success = 1
	}
	r.runSuccess.With(labels).Set(success)
	r.lastRun.With(labels).Set(float64(r.now().Unix()))

	if result == nil {
		return
	}
	r.runDuration.With(labels).Set(result.Duration.Seconds())
	for _, o := range result.Outcomes {
		r.stepTotal.WithLabelValues(o.Step, string(o.Status)).Inc()
		if o.Status != provisioning.StatusNotRun {
			r.stepDuration.WithLabelValues(o.Step).Set(o.Duration.Seconds())
		}
	}
}

// WriteTextfile writes the metrics atomically to path. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
