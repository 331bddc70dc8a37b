// Package metric exposes Prometheus instruments for story runs. The
// orchestrator takes a Recorder as an option and skips recording when nil.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the run-level instruments.
type Recorder struct {
	actions    *prometheus.CounterVec
	assertions *prometheus.CounterVec
	stories    *prometheus.CounterVec
	duration   prometheus.Histogram
}

// NewRecorder registers the instruments on reg; a nil reg uses the default
// registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scenario_actions_total",
			Help: "Actions executed, by kind and outcome.",
		}, []string{"kind", "status"}),
		assertions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scenario_assertions_total",
			Help: "Assertions evaluated, by outcome.",
		}, []string{"outcome"}),
		stories: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "scenario_stories_total",
			Help: "Stories completed, by result.",
		}, []string{"result"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "scenario_story_duration_seconds",
			Help:    "Wall-clock duration of completed story runs.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
	}
}

// ObserveAction counts one executed action.
func (r *Recorder) ObserveAction(kind string, success bool) {
	r.actions.WithLabelValues(kind, statusLabel(success)).Inc()
}

// ObserveAssertion counts one evaluated assertion.
func (r *Recorder) ObserveAssertion(passed bool) {
	outcome := "failed"
	if passed {
		outcome = "passed"
	}
	r.assertions.WithLabelValues(outcome).Inc()
}

// ObserveStory counts one completed run and its duration.
func (r *Recorder) ObserveStory(success bool, elapsed time.Duration) {
	r.stories.WithLabelValues(statusLabel(success)).Inc()
	r.duration.Observe(elapsed.Seconds())
}

func statusLabel(success bool) string {
	if success {
		return "ok"
	}
	return "failed"
}
