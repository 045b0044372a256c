package row

import (
	"github.com/prometheus/client_golang/prometheus"
)

type exportMode string

const (
	exportBorrow     exportMode = "borrow"
	exportArray      exportMode = "array"
	exportBinaryView exportMode = "binary_view"
)

// Metrics instruments row buffers built by a [Builder] and their exports.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	rowsBuilt    prometheus.Counter
	bytesBuilt   prometheus.Counter
	buffersBuilt prometheus.Counter

	exportsTotal *prometheus.CounterVec
	exportedRows *prometheus.CounterVec
}

// NewMetrics creates a new set of row buffer metrics. Metrics must be
// registered with [Metrics.Register] before they are reported.
func NewMetrics() *Metrics {
	return &Metrics{
		rowsBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rows_built_total",
			Help: "Total number of rows flushed into row buffers",
		}),
		bytesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rows_built_bytes_total",
			Help: "Total number of encoded row bytes flushed into row buffers",
		}),
		buffersBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rows_buffers_built_total",
			Help: "Total number of row buffers flushed",
		}),

		exportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rows_exports_total",
			Help: "Total number of row buffer exports to Arrow arrays by mode",
		}, []string{"mode"}),
		exportedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rows_exported_rows_total",
			Help: "Total number of rows exported to Arrow arrays by mode",
		}, []string{"mode"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rowsBuilt,
		m.bytesBuilt,
		m.buffersBuilt,
		m.exportsTotal,
		m.exportedRows,
	}
}

// Register registers metrics to report to reg. Metrics already registered
// with reg are ignored.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, collector := range m.collectors() {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

// Unregister unregisters metrics from reg.
func (m *Metrics) Unregister(reg prometheus.Registerer) {
	for _, collector := range m.collectors() {
		reg.Unregister(collector)
	}
}

func (m *Metrics) observeBuild(rows, bytes int) {
	if m == nil {
		return
	}
	m.buffersBuilt.Inc()
	m.rowsBuilt.Add(float64(rows))
	m.bytesBuilt.Add(float64(bytes))
}

func (m *Metrics) observeExport(mode exportMode, rows int) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(string(mode)).Inc()
	m.exportedRows.WithLabelValues(string(mode)).Add(float64(rows))
}
