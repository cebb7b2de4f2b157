package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	commentMutations *prometheus.CounterVec
	listDuration     *prometheus.HistogramVec
}

func NewMetrics(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		commentMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "backoffice",
				Name:      "comment_mutations_total",
				Help:      "Comment mutations by thread, operation and result.",
			},
			[]string{"thread", "operation", "result"},
		),
		listDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "backoffice",
				Name:      "list_duration_seconds",
				Help:      "Latency of keyset-paginated list queries.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"entity"},
		),
	}

	for _, collector := range []prometheus.Collector{m.commentMutations, m.listDuration} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) CommentMutation(thread string, operation string, result string) {
	if m == nil {
		return
	}
	m.commentMutations.WithLabelValues(thread, operation, result).Inc()
}

func (m *Metrics) ObserveList(entity string, start time.Time) {
	if m == nil {
		return
	}
	m.listDuration.WithLabelValues(entity).Observe(time.Since(start).Seconds())
}
