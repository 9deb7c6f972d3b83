// Package metrics records scoring outcomes in a Prometheus registry. The CLI
// is short-lived, so the registry is dumped in the node_exporter textfile
// format instead of being served.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "candidate_ranker"

type Recorder struct {
	registry *prometheus.Registry

	scores      *prometheus.CounterVec
	batchTime   prometheus.Histogram
	batchSize   prometheus.Gauge
	cacheLookup *prometheus.CounterVec
	fitScores   prometheus.Histogram
}

func New() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		scores: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_calls_total",
			Help:      "Fit scoring calls by scorer and outcome.",
		}, []string{"scorer", "outcome"}),
		batchTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Time to score and rank a candidate pool.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		batchSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_candidates",
			Help:      "Candidates in the last evaluated batch.",
		}),
		cacheLookup: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fit_cache_lookups_total",
			Help:      "Fit cache lookups by result.",
		}, []string{"result"}),
		fitScores: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_score",
			Help:      "Distribution of final fit scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
	}
}

func (r *Recorder) ObserveScore(scorer, outcome string) {
	r.scores.WithLabelValues(scorer, outcome).Inc()
}

func (r *Recorder) ObserveBatch(size int, duration time.Duration) {
	r.batchSize.Set(float64(size))
	r.batchTime.Observe(duration.Seconds())
}

func (r *Recorder) ObserveCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookup.WithLabelValues(result).Inc()
}

func (r *Recorder) ObserveFitScore(score int) {
	r.fitScores.Observe(float64(score))
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
