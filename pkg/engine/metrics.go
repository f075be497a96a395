package engine

import "github.com/prometheus/client_golang/prometheus"

type metrics struct {
	objectsLive   prometheus.Gauge
	constructs    *prometheus.CounterVec
	jobsSubmitted prometheus.Counter
	jobsCompleted prometheus.Counter
	jobSeconds    prometheus.Histogram
}

// newMetrics builds the engine's collectors and registers them when a
// registerer is supplied; with a nil registerer the collectors still count,
// they just aren't scraped anywhere.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		objectsLive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "slcore", Subsystem: "engine",
			Name: "objects_live",
			Help: "Number of live object instances.",
		}),
		constructs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "slcore", Subsystem: "engine",
			Name: "constructs_total",
			Help: "Object constructions by class.",
		}, []string{"class"}),
		jobsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slcore", Subsystem: "engine",
			Name: "work_jobs_submitted_total",
			Help: "Jobs accepted by the work queue.",
		}),
		jobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "slcore", Subsystem: "engine",
			Name: "work_jobs_completed_total",
			Help: "Jobs the work queue finished executing.",
		}),
		jobSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "slcore", Subsystem: "engine",
			Name:    "work_job_duration_seconds",
			Help:    "Wall time spent executing one deferred job.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.objectsLive, m.constructs, m.jobsSubmitted, m.jobsCompleted, m.jobSeconds)
	}
	return m
}
