package http_controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/horockey/cardshelf/internal/controller/http_controller/dto"
	"github.com/horockey/cardshelf/internal/inventory"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/presenter"
	"github.com/horockey/cardshelf/internal/repository/cards"
	"github.com/horockey/go-toolbox/http_helpers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const catalogueMaxPageSize = 100

type Inventory interface {
	Snapshot() inventory.Snapshot
	Get(cardID string) model.InventoryEntry
	Entries() []model.InventoryEntry
	Increment(cardID string, c model.Counter) (model.InventoryEntry, error)
	Decrement(cardID string, c model.Counter) (model.InventoryEntry, error)
	Set(cardID string, c model.Counter, value int) (model.InventoryEntry, error)
}

type HttpController struct {
	serv     *http.Server
	apiKey   string
	repo     cards.Repository
	inv      Inventory
	pageSize int
	logger   zerolog.Logger
	metrics  *metrics
}

func New(
	addr string,
	apiKey string,
	repo cards.Repository,
	inv Inventory,
	pageSize int,
	gatherer prometheus.Gatherer,
	logger zerolog.Logger,
) *HttpController {
	ctrl := HttpController{
		serv: &http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
		},
		apiKey:   apiKey,
		repo:     repo,
		inv:      inv,
		pageSize: pageSize,
		logger:   logger,
		metrics:  newMetrics(),
	}

	router := mux.NewRouter()
	router.Use(ctrl.metricsMW)

	router.HandleFunc("/series", ctrl.getSeriesHandler).Methods(http.MethodGet)
	router.HandleFunc("/series/{id}/cards", ctrl.getSeriesCardsHandler).Methods(http.MethodGet)
	router.HandleFunc("/cards/search", ctrl.searchCardsHandler).Methods(http.MethodGet)
	router.HandleFunc("/cards/{id}", ctrl.getCardHandler).Methods(http.MethodGet)
	router.HandleFunc("/catalogue", ctrl.getCatalogueHandler).Methods(http.MethodGet)
	router.HandleFunc("/inventory", ctrl.getInventoryHandler).Methods(http.MethodGet)
	router.HandleFunc("/inventory/{cardId}", ctrl.getInventoryEntryHandler).Methods(http.MethodGet)

	mutating := router.NewRoute().Subrouter()
	mutating.Use(ctrl.authMW)
	mutating.HandleFunc("/inventory/{cardId}/{counter}/increment", ctrl.incrementHandler).Methods(http.MethodPost)
	mutating.HandleFunc("/inventory/{cardId}/{counter}/decrement", ctrl.decrementHandler).Methods(http.MethodPost)
	mutating.HandleFunc("/inventory/{cardId}/{counter}", ctrl.setHandler).Methods(http.MethodPut)

	if gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	ctrl.serv.Handler = router

	return &ctrl
}

func (ctrl *HttpController) Metrics() []prometheus.Collector {
	return ctrl.metrics.list()
}

func (ctrl *HttpController) Handler() http.Handler {
	return ctrl.serv.Handler
}

func (ctrl *HttpController) Start(ctx context.Context) (resErr error) {
	var wg sync.WaitGroup
	defer wg.Wait()

	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()
		ctrl.logger.Info().Str("addr", ctrl.serv.Addr).Msg("serving http api")
		if err := ctrl.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		if ctx.Err() != nil && !errors.Is(ctx.Err(), context.Canceled) {
			resErr = errors.Join(resErr, fmt.Errorf("running context: %w", ctx.Err()))
		}

		sdCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := ctrl.serv.Shutdown(sdCtx); err != nil {
			resErr = errors.Join(resErr, fmt.Errorf("shutting down server: %w", err))
		}
		return resErr

	case err := <-errCh:
		return fmt.Errorf("running server: %w", err)
	}
}

// authMW is a no-op when no api key is configured.
func (ctrl *HttpController) authMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if ctrl.apiKey != "" && req.Header.Get("X-Api-Key") != ctrl.apiKey {
			ctrl.metrics.forbiddenCnt.Inc()
			_ = http_helpers.RespondWithErr(w, http.StatusForbidden, errors.New("invalid api key"))
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (ctrl *HttpController) metricsMW(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func(ts time.Time) {
			ctrl.metrics.requestsCnt.Inc()
			ctrl.metrics.handleTimeHist.Observe(float64(time.Since(ts)))

			switch {
			case rec.status < 300:
				ctrl.metrics.successProcessCnt.Inc()
			default:
				ctrl.metrics.errProcessCnt.Inc()
			}
		}(time.Now())

		next.ServeHTTP(rec, req)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (ctrl *HttpController) getSeriesHandler(w http.ResponseWriter, req *http.Request) {
	series, err := ctrl.repo.ListSeries(req.Context())
	if err != nil {
		ctrl.respondErr(w, fmt.Errorf("listing series: %w", err))
		return
	}

	res := make([]dto.Series, 0, len(series))
	for _, s := range series {
		page, err := ctrl.repo.CardsBySeries(req.Context(), s.ID, 0)
		if err != nil {
			ctrl.respondErr(w, fmt.Errorf("counting cards of series %s: %w", s.ID, err))
			return
		}
		res = append(res, dto.Series{Series: s, CardsCount: page.Total})
	}

	_ = http_helpers.RespondOK(w, res)
}

func (ctrl *HttpController) getSeriesCardsHandler(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	page, err := pageParam(req)
	if err != nil {
		ctrl.respondErr(w, err)
		return
	}

	res, err := ctrl.repo.CardsBySeries(req.Context(), id, page)
	if err != nil {
		ctrl.respondErr(w, fmt.Errorf("getting cards of series %s: %w", id, err))
		return
	}

	_ = http_helpers.RespondOK(w, res)
}

func (ctrl *HttpController) searchCardsHandler(w http.ResponseWriter, req *http.Request) {
	page, err := pageParam(req)
	if err != nil {
		ctrl.respondErr(w, err)
		return
	}

	res, err := ctrl.repo.Search(req.Context(), req.URL.Query().Get("q"), page)
	if err != nil {
		ctrl.respondErr(w, fmt.Errorf("searching cards: %w", err))
		return
	}

	_ = http_helpers.RespondOK(w, res)
}

func (ctrl *HttpController) getCardHandler(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	card, err := ctrl.repo.Card(req.Context(), id)
	if err != nil {
		ctrl.respondErr(w, fmt.Errorf("getting card %s: %w", id, err))
		return
	}

	_ = http_helpers.RespondOK(w, presenter.Row{
		Card:  card,
		Entry: ctrl.inv.Get(card.ID),
	})
}

func (ctrl *HttpController) getCatalogueHandler(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()

	page, err := pageParam(req)
	if err != nil {
		ctrl.respondErr(w, err)
		return
	}

	size := ctrl.pageSize
	if v := query.Get("size"); v != "" {
		size, err = strconv.Atoi(v)
		if err != nil || size <= 0 || size > catalogueMaxPageSize {
			ctrl.respondErr(w, model.InvalidPageError{Index: page, Size: size})
			return
		}
	}

	ownership, err := presenter.ParseOwnership(query.Get("ownership"))
	if err != nil {
		ctrl.logger.Error().Err(err).Send()
		_ = http_helpers.RespondWithErr(w, http.StatusBadRequest, err)
		return
	}

	colors := []string{}
	for _, v := range query["color"] {
		colors = append(colors, strings.Split(v, ",")...)
	}

	res, err := presenter.Evaluate(
		req.Context(),
		ctrl.repo,
		ctrl.inv.Snapshot(),
		query.Get("series"),
		presenter.Filters{
			SearchText: query.Get("q"),
			Rarity:     strings.ToUpper(strings.TrimSpace(query.Get("rarity"))),
			Colors:     colors,
			Ownership:  ownership,
		},
		page,
		size,
	)
	if err != nil {
		ctrl.respondErr(w, fmt.Errorf("evaluating catalogue: %w", err))
		return
	}

	_ = http_helpers.RespondOK(w, res)
}

func (ctrl *HttpController) getInventoryHandler(w http.ResponseWriter, _ *http.Request) {
	_ = http_helpers.RespondOK(w, ctrl.inv.Entries())
}

func (ctrl *HttpController) getInventoryEntryHandler(w http.ResponseWriter, req *http.Request) {
	_ = http_helpers.RespondOK(w, ctrl.inv.Get(mux.Vars(req)["cardId"]))
}

func (ctrl *HttpController) incrementHandler(w http.ResponseWriter, req *http.Request) {
	ctrl.counterCmd(w, req, ctrl.inv.Increment)
}

func (ctrl *HttpController) decrementHandler(w http.ResponseWriter, req *http.Request) {
	ctrl.counterCmd(w, req, ctrl.inv.Decrement)
}

func (ctrl *HttpController) setHandler(w http.ResponseWriter, req *http.Request) {
	body := dto.SetCounter{}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		err = fmt.Errorf("decoding body dto: %w", err)
		ctrl.logger.Error().Err(err).Send()
		_ = http_helpers.RespondWithErr(w, http.StatusBadRequest, err)
		return
	}
	if body.Value == nil {
		err := errors.New("missing value")
		ctrl.logger.Error().Err(err).Send()
		_ = http_helpers.RespondWithErr(w, http.StatusBadRequest, err)
		return
	}

	ctrl.counterCmd(w, req, func(cardID string, c model.Counter) (model.InventoryEntry, error) {
		return ctrl.inv.Set(cardID, c, *body.Value)
	})
}

func (ctrl *HttpController) counterCmd(
	w http.ResponseWriter,
	req *http.Request,
	cmd func(cardID string, c model.Counter) (model.InventoryEntry, error),
) {
	vars := mux.Vars(req)

	counter, err := model.ParseCounter(vars["counter"])
	if err != nil {
		ctrl.logger.Error().Err(err).Send()
		_ = http_helpers.RespondWithErr(w, http.StatusBadRequest, err)
		return
	}

	// Counters of unknown cards are not accepted.
	card, err := ctrl.repo.Card(req.Context(), vars["cardId"])
	if err != nil {
		ctrl.respondErr(w, fmt.Errorf("getting card: %w", err))
		return
	}

	entry, err := cmd(card.ID, counter)
	if err != nil {
		ctrl.respondErr(w, fmt.Errorf("updating %s of %s: %w", counter, card.ID, err))
		return
	}

	_ = http_helpers.RespondOK(w, dto.NewCounter(entry, counter))
}

func (ctrl *HttpController) respondErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &model.SeriesNotFoundError{}),
		errors.As(err, &model.CardNotFoundError{}):
		code = http.StatusNotFound
	case errors.As(err, &model.InvalidPageError{}),
		errors.As(err, &model.InvalidCountError{}):
		code = http.StatusBadRequest
	}

	ctrl.logger.Error().Err(err).Int("code", code).Send()

	if code == http.StatusInternalServerError {
		_ = http_helpers.RespondWithErr(w, code, nil)
		return
	}
	_ = http_helpers.RespondWithErr(w, code, err)
}

func pageParam(req *http.Request) (int, error) {
	v := req.URL.Query().Get("page")
	if v == "" {
		return 0, nil
	}
	page, err := strconv.Atoi(v)
	if err != nil {
		return 0, model.InvalidPageError{Index: -1}
	}
	return page, nil
}
