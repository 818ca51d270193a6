package core

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/moses-ayandau/image-sharing-microservice-sub000/pkg/notify"
)

const (
	outcomeSucceeded    = "succeeded"
	outcomeStale        = "stale"
	outcomeMalformed    = "malformed"
	outcomeRequeued     = "requeued"
	outcomeDeadLettered = "dead_lettered"
	outcomeError        = "error"

	resultOK     = "ok"
	resultFailed = "failed"
)

// Metrics are the pipeline's prometheus collectors.
type Metrics struct {
	Jobs          *prometheus.CounterVec
	JobDuration   prometheus.Histogram
	Notifications *prometheus.CounterVec
	Redriven      *prometheus.CounterVec
	QueueDepth    *prometheus.GaugeVec
}

// NewMetrics creates & registers collectors with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "jobs_total",
			Help:      "Messages handled by workers, by outcome.",
		}, []string{"outcome"}),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pipeline",
			Name:      "job_duration_seconds",
			Help:      "Time taken to handle a single message.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "notifications_total",
			Help:      "Lifecycle emails, by kind & whether they were sent.",
		}, []string{"kind", "result"}),
		Redriven: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pipeline",
			Name:      "redrive_messages_total",
			Help:      "Messages moved off the dead letter queue, by result.",
		}, []string{"result"}),
		QueueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "pipeline",
			Name:      "queue_depth",
			Help:      "Last observed approximate queue depth.",
		}, []string{"queue"}),
	}
	if reg != nil {
		reg.MustRegister(m.Jobs, m.JobDuration, m.Notifications, m.Redriven, m.QueueDepth)
	}
	return m
}

func (m *Metrics) job(outcome string) {
	m.Jobs.WithLabelValues(outcome).Inc()
}

func (m *Metrics) notification(kind notify.Kind, sent bool) {
	result := resultOK
	if !sent {
		result = resultFailed
	}
	m.Notifications.WithLabelValues(string(kind), result).Inc()
}

func (m *Metrics) redriven(ok bool) {
	result := resultOK
	if !ok {
		result = resultFailed
	}
	m.Redriven.WithLabelValues(result).Inc()
}

func (m *Metrics) depth(queue string, n int64) {
	m.QueueDepth.WithLabelValues(queue).Set(float64(n))
}
