package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	DefaultExportTemplate = CardlistBaseURL + "db/export/pack/{setCode}.json"
	userAgent             = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// OfficialClient downloads per-set exports of the official card list.
type OfficialClient struct {
	template   string
	offlineDir string
	cl         *resty.Client
	metrics    *metrics
	logger     zerolog.Logger
}

// NewOfficialClient creates client for export url template containing {setCode}.
// Blank template means the official one.
func NewOfficialClient(
	template string,
	offlineDir string,
	timeout time.Duration,
	logger zerolog.Logger,
) *OfficialClient {
	if template == "" {
		template = DefaultExportTemplate
	}
	return &OfficialClient{
		template:   template,
		offlineDir: offlineDir,
		metrics:    newMetrics(),
		logger:     logger,
		cl: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent).
			SetHeader("Accept", "application/json").
			SetRetryCount(0),
	}
}

func (cl *OfficialClient) Metrics() []prometheus.Collector {
	return cl.metrics.list()
}

func (cl *OfficialClient) FetchSet(ctx context.Context, setCode string) (res model.Bundle, resErr error) {
	cl.logger.Debug().Str("set", setCode).Msg("fetching official set")
	defer func(ts time.Time) {
		cl.metrics.requestsCnt.Inc()
		cl.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

		switch resErr {
		case nil:
			cl.metrics.successProcessCnt.Inc()
		default:
			cl.metrics.errProcessCnt.Inc()
		}
	}(time.Now())

	setCode = strings.TrimSpace(setCode)
	if setCode == "" {
		return model.Bundle{}, errors.New("empty set code")
	}

	resp, err := cl.cl.R().
		SetContext(ctx).
		SetPathParam("setCode", setCode).
		Get(cl.template)
	if err != nil {
		return model.Bundle{}, fmt.Errorf("executing request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return model.Bundle{}, fmt.Errorf("got non-ok response (%s)", resp.Status())
	}

	bundle, err := ParseOfficialPayload(resp.Body(), setCode)
	if err != nil {
		return model.Bundle{}, fmt.Errorf("parsing payload: %w", err)
	}

	return bundle, nil
}

// LoadSet fetches set and falls back to offline copy when download fails.
func (cl *OfficialClient) LoadSet(ctx context.Context, setCode string) (model.Bundle, error) {
	bundle, fetchErr := cl.FetchSet(ctx, setCode)
	if fetchErr == nil {
		return bundle, nil
	}

	cl.metrics.offlineFallbackCnt.Inc()
	cl.logger.
		Warn().
		Err(fetchErr).
		Str("set", setCode).
		Msg("could not download set, using offline fallback")

	bundle, err := LoadOffline(cl.offlineDir, setCode)
	if err != nil {
		return model.Bundle{}, errors.Join(fetchErr, err)
	}
	return bundle, nil
}

// LoadSets loads every set and merges results.
func (cl *OfficialClient) LoadSets(ctx context.Context, setCodes ...string) (model.Bundle, error) {
	bundles := make([]model.Bundle, 0, len(setCodes))
	for _, code := range setCodes {
		b, err := cl.LoadSet(ctx, code)
		if err != nil {
			return model.Bundle{}, fmt.Errorf("loading set %s: %w", code, err)
		}
		bundles = append(bundles, b)
	}
	return MergeBundles(bundles...), nil
}
