package inventory

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	persistTimeHist prometheus.Histogram
	writesCnt       prometheus.Counter
	errWritesCnt    prometheus.Counter
	loadFallbackCnt prometheus.Counter
	entriesGauge    prometheus.Gauge
	subscribers     prometheus.Gauge
}

func newMetrics() *metrics {
	const ss = "inventory"
	return &metrics{
		persistTimeHist: prometheus.NewHistogram(*prometheus_helpers.NewHistOpts(
			"persist_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Full inventory persist time distribution"),
		)),
		writesCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "writes_cnt",
			Subsystem: ss,
			Help:      "Count of applied inventory writes",
		}),
		errWritesCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "err_writes_cnt",
			Subsystem: ss,
			Help:      "Count of inventory writes rolled back on error",
		}),
		loadFallbackCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "load_fallback_cnt",
			Subsystem: ss,
			Help:      "Count of loads that fell back to empty inventory",
		}),
		entriesGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      "entries_gauge",
			Subsystem: ss,
			Help:      "Count of cards with non-zero counters",
		}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      "subscribers_gauge",
			Subsystem: ss,
			Help:      "Count of active snapshot subscribers",
		}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.persistTimeHist,
		m.writesCnt,
		m.errWritesCnt,
		m.loadFallbackCnt,
		m.entriesGauge,
		m.subscribers,
	}
}
