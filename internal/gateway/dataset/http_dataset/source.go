package http_dataset

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/horockey/cardshelf/internal/gateway/dataset"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

var _ dataset.Source = &httpDataset{}

type httpDataset struct {
	url     string
	cl      *resty.Client
	metrics *metrics
	logger  zerolog.Logger
}

func New(
	url string,
	timeout time.Duration,
	logger zerolog.Logger,
) *httpDataset {
	return &httpDataset{
		url:     url,
		metrics: newMetrics(),
		logger:  logger,
		cl: resty.New().
			SetTimeout(timeout).
			SetHeader("Accept", "application/json").
			SetRetryCount(0),
	}
}

func (src *httpDataset) Metrics() []prometheus.Collector {
	return src.metrics.list()
}

func (src *httpDataset) Name() string {
	return "http:" + src.url
}

func (src *httpDataset) Load(ctx context.Context) (res model.Bundle, resErr error) {
	src.logger.Debug().Str("url", src.url).Msg("fetching dataset")
	defer func(ts time.Time) {
		src.metrics.requestsCnt.Inc()
		src.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

		switch resErr {
		case nil:
			src.metrics.successProcessCnt.Inc()
		default:
			src.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	resp, err := src.cl.R().
		SetContext(ctx).
		Get(src.url)
	if err != nil {
		return model.Bundle{}, fmt.Errorf("executing request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return model.Bundle{}, fmt.Errorf("got non-ok response (%s): %s", resp.Status(), resp.String())
	}

	bundle, err := dataset.Decode(resp.Body())
	if err != nil {
		return model.Bundle{}, fmt.Errorf("decoding response: %w", err)
	}

	return bundle, nil
}
