package importer_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/horockey/cardshelf/internal/importer"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOfficialServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.URL.Path {
		case "/export/SFN.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"info": {"setCode": "SFN/S108", "date": "2024-05-01"},
				"cards": [{"card_no": "SFN/S108-002", "card_name": "B"}, {"card_no": "SFN/S108-001", "card_name": "A"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	return srv
}

func Test_OfficialClient_FetchSet(t *testing.T) {
	srv := newOfficialServer(t)
	cl := importer.NewOfficialClient(srv.URL+"/export/{setCode}.json", "", time.Second, zerolog.Nop())

	b, err := cl.FetchSet(context.Background(), "SFN")
	require.NoError(t, err)
	assert.Equal(t, "sfn-s108", b.Series[0].ID)
	assert.Equal(t, 2024, b.Series[0].ReleaseYear)
	assert.Len(t, b.Cards, 2)

	_, err = cl.FetchSet(context.Background(), "DDD")
	assert.Error(t, err)

	_, err = cl.FetchSet(context.Background(), " ")
	assert.Error(t, err)
}

func Test_OfficialClient_LoadSets(t *testing.T) {
	srv := newOfficialServer(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ddd.json"), []byte(`{
		"series": {"id": "ddd-s97", "name": "DDD", "setCode": "DDD/S97", "releaseYear": 2024},
		"cards": [{"id": "ddd-s97-001", "seriesId": "ddd-s97", "cardCode": "DDD/S97-001", "title": "T", "rarity": "C"}]
	}`), 0o644))

	cl := importer.NewOfficialClient(srv.URL+"/export/{setCode}.json", dir, time.Second, zerolog.Nop())

	b, err := cl.LoadSets(context.Background(), "SFN", "DDD")
	require.NoError(t, err)
	require.Len(t, b.Series, 2)
	require.Len(t, b.Cards, 3)
	assert.Equal(t, "ddd-s97-001", b.Cards[0].ID)
	assert.Equal(t, "sfn-s108-001", b.Cards[1].ID)

	_, err = cl.LoadSets(context.Background(), "XYZ")
	assert.Error(t, err)
}
