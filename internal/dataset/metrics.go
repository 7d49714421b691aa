package dataset

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"cafedash/internal/normalize"
)

// Metrics records dataset load outcomes. A nil *Metrics records nothing.
type Metrics struct {
	loads    *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	records  *prometheus.GaugeVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the dataset collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cafedash_dataset_loads_total",
			Help: "Dataset loads by dataset and result.",
		}, []string{"dataset", "result"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cafedash_dataset_rows_skipped_total",
			Help: "Rows dropped during normalization, by dataset.",
		}, []string{"dataset"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cafedash_dataset_records",
			Help: "Records produced by the most recent successful load.",
		}, []string{"dataset"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cafedash_dataset_load_duration_seconds",
			Help:    "Time spent fetching and normalizing a dataset.",
			Buckets: prometheus.DefBuckets,
		}, []string{"dataset"}),
	}
	if reg != nil {
		reg.MustRegister(m.loads, m.skipped, m.records, m.duration)
	}
	return m
}

func (m *Metrics) observe(kind Kind, start time.Time, stats normalize.Stats, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		m.loads.WithLabelValues(string(kind), "error").Inc()
		return
	}
	m.loads.WithLabelValues(string(kind), "ok").Inc()
	m.skipped.WithLabelValues(string(kind)).Add(float64(stats.Skipped))
	m.records.WithLabelValues(string(kind)).Set(float64(stats.Kept))
}
