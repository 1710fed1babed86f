package importer

import (
	"github.com/horockey/go-toolbox/prometheus_helpers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	handleTimeHist     prometheus.Histogram
	requestsCnt        prometheus.Counter
	successProcessCnt  prometheus.Counter
	errProcessCnt      prometheus.Counter
	offlineFallbackCnt prometheus.Counter
}

func newMetrics() *metrics {
	const ss = "official_client"
	return &metrics{
		handleTimeHist: prometheus.NewHistogram(*prometheus_helpers.NewHistOpts(
			"handle_time_hist",
			prometheus_helpers.HistOptsWithSubsystem(ss),
			prometheus_helpers.HistOptsWithHelp("Set download time distribution"),
		)),
		requestsCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "requests_cnt",
			Subsystem: ss,
			Help:      "Count of set download attempts",
		}),
		successProcessCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "success_requests_cnt",
			Subsystem: ss,
			Help:      "Count of successfully parsed downloads",
		}),
		errProcessCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "err_requests_cnt",
			Subsystem: ss,
			Help:      "Count of failed downloads",
		}),
		offlineFallbackCnt: prometheus.NewCounter(prometheus.CounterOpts{
			Name:      "offline_fallback_cnt",
			Subsystem: ss,
			Help:      "Count of sets served from offline copies",
		}),
	}
}

func (m *metrics) list() []prometheus.Collector {
	return []prometheus.Collector{
		m.handleTimeHist,
		m.requestsCnt,
		m.successProcessCnt,
		m.errProcessCnt,
		m.offlineFallbackCnt,
	}
}
