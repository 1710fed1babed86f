package presenter

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	recomputeTimeHist prometheus.Histogram
	inputsCnt         *prometheus.CounterVec
	loadErrCnt        prometheus.Counter
	visibleRowsGauge  prometheus.Gauge
}

func newMetrics() *metrics {
	const ss = "presenter"
	return &metrics{
		recomputeTimeHist: prometheus.NewHistogram(*prometheus_helpers.NewHistOpts(
			"recompute_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Visible rows recompute time distribution"),
		)),
		inputsCnt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "inputs_cnt",
			Subsystem: ss,
			Help:      "Count of user inputs by kind",
		}, []string{"input"}),
		loadErrCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "load_err_cnt",
			Subsystem: ss,
			Help:      "Count of failed repository loads",
		}),
		visibleRowsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      "visible_rows_gauge",
			Subsystem: ss,
			Help:      "Count of rows passing current filters",
		}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.recomputeTimeHist,
		m.inputsCnt,
		m.loadErrCnt,
		m.visibleRowsGauge,
	}
}
