// Package benchmarks provides timing estimates for provisioning steps.
package benchmarks

import "time"

// DefaultTimings are median step durations on a fresh 2 vCPU host (seconds).
var DefaultTimings = map[string]int{
	"reset.wipe":          5,
	"site.reserve":        1,
	"packages.refresh":    20,
	"packages.install":    180,
	"database.provision":  2,
	"webserver.vhost":     2,
	"cms.deploy":          20,
	"firewall.configure":  5,
	"intrusion.configure": 5,
	"antivirus.configure": 120,
	"dns.record":          3,
	"tls.issue":           30,
	"tls.renewal":         1,
	"services.verify":     5,
	"site.register":       1,
	"runlog.archive":      2,
}

// Expected returns the benchmark duration of a step, or zero if unknown.
func Expected(step string) time.Duration {
	return time.Duration(DefaultTimings[step]) * time.Second
}

// EstimateRemaining calculates the estimated time left in a run: what is
// left of the current step plus every later step, stretched by scale.
func EstimateRemaining(steps []string, current int, stepElapsed time.Duration, scale float64) time.Duration {
	if current < 0 || current >= len(steps) {
		return 0
	}
	var remaining time.Duration

	// For the current step: max(0, expected - elapsed)
	expected := time.Duration(float64(Expected(steps[current])) * scale)
	if expected > stepElapsed {
		remaining += expected - stepElapsed
	}

	for _, step := range steps[current+1:] {
		remaining += time.Duration(float64(Expected(step)) * scale)
	}
	return remaining
}

// PerformanceScale derives a speed multiplier from observed-vs-expected durations.
// Example: expected 3m, observed 4m30s => scale=1.5 (future ETAs are stretched by 50%).
func PerformanceScale(completed map[string]time.Duration, current string, stepElapsed time.Duration) float64 {
	var expectedTotal time.Duration
	var actualTotal time.Duration

	for step, actual := range completed {
		expected := Expected(step)
		if expected == 0 {
			continue
		}
		expectedTotal += expected
		actualTotal += actual
	}

	// If the current step is overrunning, fold it in immediately so ETA adapts quickly.
	if expectedCurrent := Expected(current); expectedCurrent > 0 && stepElapsed > expectedCurrent {
		expectedTotal += expectedCurrent
		actualTotal += stepElapsed
	}

	if expectedTotal == 0 || actualTotal == 0 {
		return 1.0
	}

	scale := float64(actualTotal) / float64(expectedTotal)
	if scale < 0.6 {
		return 0.6
	}
	if scale > 3.0 {
		return 3.0
	}
	return scale
}

// TotalEstimate returns the estimated duration of a step list.
func TotalEstimate(steps []string) time.Duration {
	var total time.Duration
	for _, step := range steps {
		total += Expected(step)
	}
	return total
}
