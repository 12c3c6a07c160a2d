package catalog

import "github.com/prometheus/client_golang/prometheus"

const (
	saveResultOK    = "ok"
	saveResultError = "error"
)

type Metrics struct {
	Saves *prometheus.CounterVec
}

// NewMetrics registers catalog metrics on reg. The product gauge reads the
// store on every scrape.
func NewMetrics(reg prometheus.Registerer, st *Store) *Metrics {
	m := &Metrics{
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_saves_total",
				Help: "Persistence saves by result",
			},
			[]string{"result"},
		),
	}

	products := prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "catalog_products",
			Help: "Products currently in the store",
		},
		func() float64 { return float64(st.Len()) },
	)

	reg.MustRegister(m.Saves, products)
	return m
}

func (m *Metrics) observeSave(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Saves.WithLabelValues(saveResultError).Inc()
		return
	}
	m.Saves.WithLabelValues(saveResultOK).Inc()
}
