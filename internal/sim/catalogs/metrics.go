package catalogs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records load outcomes. A nil *Metrics records nothing.
type Metrics struct {
	Entries     *prometheus.GaugeVec
	Duplicates  *prometheus.CounterVec
	Dangling    *prometheus.CounterVec
	LoadSeconds prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "manifest_entries",
			Help: "Entries with data in the last loaded manifest, by category.",
		}, []string{"category"}),
		Duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "manifest_duplicates_total",
			Help: "Names authored more than once in one source, by category.",
		}, []string{"category"}),
		Dangling: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "manifest_dangling_total",
			Help: "References to names with no entry, by referenced category.",
		}, []string{"category"}),
		LoadSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "manifest_load_seconds",
			Help:    "Wall time of a full manifest load.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
	}
	for _, c := range []prometheus.Collector{m.Entries, m.Duplicates, m.Dangling, m.LoadSeconds} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(c *Catalogs, took time.Duration) {
	if m == nil {
		return
	}
	item, recipe := Item{}.CategoryName(), Recipe{}.CategoryName()
	m.Entries.WithLabelValues(item).Set(float64(c.Items.Len()))
	m.Entries.WithLabelValues(recipe).Set(float64(c.Recipes.Len()))
	for _, d := range c.Report.Duplicates {
		m.Duplicates.WithLabelValues(d.Category).Inc()
	}
	if n := len(c.Report.Dangling); n > 0 {
		m.Dangling.WithLabelValues(item).Add(float64(n))
	}
	m.LoadSeconds.Observe(took.Seconds())
}
