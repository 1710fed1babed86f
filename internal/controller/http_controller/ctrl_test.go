package http_controller_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/horockey/cardshelf/internal/controller/http_controller"
	"github.com/horockey/cardshelf/internal/controller/http_controller/dto"
	"github.com/horockey/cardshelf/internal/gateway/dataset/embedded_dataset"
	"github.com/horockey/cardshelf/internal/inventory"
	"github.com/horockey/cardshelf/internal/model"
	"github.com/horockey/cardshelf/internal/presenter"
	"github.com/horockey/cardshelf/internal/repository/blobs/inmemory_blobs"
	"github.com/horockey/cardshelf/internal/repository/cards/inmemory_cards"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiKey = "secret"

func newServer(t *testing.T) (*httptest.Server, *inventory.Store) {
	t.Helper()

	repo := inmemory_cards.New(embedded_dataset.New(), 5, zerolog.Nop())
	inv := inventory.New(inmemory_blobs.New(), zerolog.Nop())
	require.NoError(t, inv.Load(context.Background()))

	reg := prometheus.NewRegistry()
	ctrl := http_controller.New("", apiKey, repo, inv, 10, reg, zerolog.Nop())
	reg.MustRegister(ctrl.Metrics()...)

	srv := httptest.NewServer(ctrl.Handler())
	t.Cleanup(srv.Close)

	return srv, inv
}

func do(t *testing.T, method, url, body string, withKey bool) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if withKey {
		req.Header.Set("X-Api-Key", apiKey)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()

	var res T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	return res
}

func Test_Series(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/series", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	series := decode[[]dto.Series](t, resp)
	require.Len(t, series, 2)
	assert.Equal(t, "ddd-s97", series[0].ID)
	assert.Equal(t, 12, series[0].CardsCount)
}

func Test_SeriesCards(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/series/sfn-s108/cards?page=2", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decode[model.Page[model.Card]](t, resp)
	assert.Equal(t, 2, page.Index)
	assert.Equal(t, 12, page.Total)
	assert.Len(t, page.Items, 2)
	assert.False(t, page.HasMore)

	resp = do(t, http.MethodGet, srv.URL+"/series/nope/cards", "", false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/series/sfn-s108/cards?page=-1", "", false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/series/sfn-s108/cards?page=x", "", false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	for _, huge := range []string{"461168601842738791", "4611686018427387904"} {
		resp = do(t, http.MethodGet, srv.URL+"/series/sfn-s108/cards?page="+huge, "", false)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		page = decode[model.Page[model.Card]](t, resp)
		assert.Empty(t, page.Items)
		assert.False(t, page.HasMore)
	}
}

func Test_Search(t *testing.T) {
	srv, _ := newServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/cards/search?q=FERN", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decode[model.Page[model.Card]](t, resp)
	assert.Equal(t, 6, page.Total)
	assert.Len(t, page.Items, 5)
	assert.True(t, page.HasMore)
}

func Test_Card(t *testing.T) {
	srv, inv := newServer(t)

	_, err := inv.Set("ddd-s97-003", model.CounterWishlist, 2)
	require.NoError(t, err)

	resp := do(t, http.MethodGet, srv.URL+"/cards/ddd-s97-003", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	row := decode[presenter.Row](t, resp)
	assert.Equal(t, "DDD/S97-003", row.Card.CardCode)
	assert.Equal(t, 2, row.Entry.Wishlist)

	resp = do(t, http.MethodGet, srv.URL+"/cards/nope", "", false)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func Test_Catalogue(t *testing.T) {
	srv, inv := newServer(t)

	_, err := inv.Increment("sfn-s108-008", model.CounterOwned)
	require.NoError(t, err)

	resp := do(t, http.MethodGet, srv.URL+"/catalogue?series=sfn-s108&q=fern&color=green", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decode[model.Page[presenter.Row]](t, resp)
	assert.Equal(t, 3, page.Total)

	resp = do(t, http.MethodGet, srv.URL+"/catalogue?ownership=owned", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page = decode[model.Page[presenter.Row]](t, resp)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "sfn-s108-008", page.Items[0].Card.ID)

	resp = do(t, http.MethodGet, srv.URL+"/catalogue?rarity=sr&size=3&page=1", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page = decode[model.Page[presenter.Row]](t, resp)
	assert.Equal(t, 8, page.Total)
	assert.Len(t, page.Items, 3)

	resp = do(t, http.MethodGet, srv.URL+"/catalogue?q=latent", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page = decode[model.Page[presenter.Row]](t, resp)
	assert.Equal(t, 1, page.Total)

	resp = do(t, http.MethodGet, srv.URL+"/catalogue?page=461168601842738791", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[model.Page[presenter.Row]](t, resp).Items)

	resp = do(t, http.MethodGet, srv.URL+"/catalogue?ownership=stolen", "", false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/catalogue?size=0", "", false)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func Test_InventoryCommands(t *testing.T) {
	srv, inv := newServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/inventory/ddd-s97-001/owned/increment", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.Counter{CardID: "ddd-s97-001", Counter: "owned", Value: 1}, decode[dto.Counter](t, resp))

	resp = do(t, http.MethodPut, srv.URL+"/inventory/ddd-s97-001/wishlist", `{"value":5}`, true)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/inventory/ddd-s97-001/wishlist/decrement", "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, decode[dto.Counter](t, resp).Value)

	assert.Equal(t, model.InventoryEntry{CardID: "ddd-s97-001", Owned: 1, Wishlist: 4}, inv.Get("ddd-s97-001"))

	resp = do(t, http.MethodGet, srv.URL+"/inventory/ddd-s97-001", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, decode[model.InventoryEntry](t, resp).Wishlist)

	resp = do(t, http.MethodGet, srv.URL+"/inventory", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]model.InventoryEntry](t, resp), 1)
}

func Test_InventoryCommands_Errors(t *testing.T) {
	srv, inv := newServer(t)

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		key    bool
		code   int
	}{
		{"no key", http.MethodPost, "/inventory/ddd-s97-001/owned/increment", "", false, http.StatusForbidden},
		{"unknown card", http.MethodPost, "/inventory/nope/owned/increment", "", true, http.StatusNotFound},
		{"unknown counter", http.MethodPost, "/inventory/ddd-s97-001/stolen/increment", "", true, http.StatusBadRequest},
		{"negative value", http.MethodPut, "/inventory/ddd-s97-001/owned", `{"value":-1}`, true, http.StatusBadRequest},
		{"missing value", http.MethodPut, "/inventory/ddd-s97-001/owned", `{}`, true, http.StatusBadRequest},
		{"broken body", http.MethodPut, "/inventory/ddd-s97-001/owned", `{`, true, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp := do(t, tc.method, srv.URL+tc.path, tc.body, tc.key)
			assert.Equal(t, tc.code, resp.StatusCode)
		})
	}

	assert.Empty(t, inv.Entries())
}

func Test_Metrics(t *testing.T) {
	srv, _ := newServer(t)

	_ = do(t, http.MethodGet, srv.URL+"/series", "", false)

	resp := do(t, http.MethodGet, srv.URL+"/metrics", "", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_controller_requests_cnt")
}
