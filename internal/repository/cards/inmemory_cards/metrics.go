package inmemory_cards

import (
	"time"

	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	handleTimeHist    prometheus.Histogram
	requestsCnt       prometheus.Counter
	successProcessCnt prometheus.Counter
	errProcessCnt     prometheus.Counter
	loadsCnt          prometheus.Counter
	cardsGauge        prometheus.Gauge
	seriesGauge       prometheus.Gauge
}

func newMetrics() *metrics {
	const ss = "inmemory_cards"
	return &metrics{
		handleTimeHist: prometheus.NewHistogram(*prometheus_helpers.NewHistOpts(
			"handle_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Handle time distribution"),
		)),
		requestsCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "requests_cnt",
			Subsystem: ss,
			Help:      "Count of incoming requests",
		}),
		successProcessCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "success_responses_cnt",
			Subsystem: ss,
			Help:      "Count of successfully finished processes",
		}),
		errProcessCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "err_processes_cnt",
			Subsystem: ss,
			Help:      "Count of processes finished with non-nil error",
		}),
		loadsCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "dataset_loads_cnt",
			Subsystem: ss,
			Help:      "Count of successful dataset loads",
		}),
		cardsGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      "cards_gauge",
			Subsystem: ss,
			Help:      "Count of cards in loaded dataset",
		}),
		seriesGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:      "series_gauge",
			Subsystem: ss,
			Help:      "Count of series in loaded dataset",
		}),
	}
}

func (m *metrics) observe(ts time.Time, err error) {
	m.requestsCnt.Inc()
	m.handleTimeHist.Observe(float64(time.Since(ts)))
	switch err {
	case nil:
		m.successProcessCnt.Inc()
	default:
		m.errProcessCnt.Inc()
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.handleTimeHist,
		m.requestsCnt,
		m.successProcessCnt,
		m.errProcessCnt,
		m.loadsCnt,
		m.cardsGauge,
		m.seriesGauge,
	}
}
