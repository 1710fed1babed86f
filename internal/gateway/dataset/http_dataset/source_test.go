package http_dataset_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/horockey/cardshelf/internal/gateway/dataset/embedded_dataset"
	"github.com/horockey/cardshelf/internal/gateway/dataset/http_dataset"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Load(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(embedded_dataset.Raw())
	}))
	defer srv.Close()

	src := http_dataset.New(srv.URL+"/cards.json", time.Second, zerolog.Nop())

	bundle, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, bundle.Cards, 24)
	assert.NotEmpty(t, src.Metrics())
}

func Test_Load_NonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := http_dataset.New(srv.URL, time.Second, zerolog.Nop()).Load(context.Background())
	assert.ErrorContains(t, err, "non-ok")
}

func Test_Load_BadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	_, err := http_dataset.New(srv.URL, time.Second, zerolog.Nop()).Load(context.Background())
	assert.Error(t, err)
}
