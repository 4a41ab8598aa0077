package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DataSource records call counts and latencies of mainchain data source
// methods, labelled by method name.
type DataSource struct {
	timeElapsed *prometheus.HistogramVec
	callCount   *prometheus.CounterVec
}

// NewDataSource creates the data source metrics and registers them with reg.
func NewDataSource(reg prometheus.Registerer) (*DataSource, error) {
	m := &DataSource{
		timeElapsed: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "partner_chains_data_source_method_time_elapsed",
			Help: "Time spent in a method call",
		}, []string{"method_name"}),
		callCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "partner_chains_data_source_method_call_count",
			Help: "Total number of data source method calls",
		}, []string{"method_name"}),
	}
	for _, c := range []prometheus.Collector{m.timeElapsed, m.callCount} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Start counts a call to method and returns a function recording its
// duration. A nil receiver records nothing.
func (m *DataSource) Start(method string) func() {
	if m == nil {
		return func() {}
	}
	m.callCount.WithLabelValues(method).Inc()
	start := time.Now()
	return func() {
		m.timeElapsed.WithLabelValues(method).Observe(time.Since(start).Seconds())
	}
}
