package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/horockey/cardshelf/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cardshelf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func Test_Load_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func Test_Load_FileAndEnv(t *testing.T) {
	path := writeFile(t, `
log_level: debug
page_size: 50
dataset:
  path: /tmp/cards.json
  watch: true
  timeout: 3s
inventory:
  backend: sqlite
http:
  addr: ":9000"
`)
	t.Setenv("CARDSHELF_HTTP_ADDR", ":9100")
	t.Setenv("CARDSHELF_HTTP_API_KEY", "secret")
	t.Setenv("CARDSHELF_DATASET_URL", "https://example.com/cards.json")

	cfg, err := config.Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 50, cfg.PageSize)
	assert.Equal(t, "/tmp/cards.json", cfg.Dataset.Path)
	assert.True(t, cfg.Dataset.Watch)
	assert.Equal(t, 3*time.Second, cfg.Dataset.Timeout)
	assert.Equal(t, "sqlite", cfg.Inventory.Backend)
	assert.Equal(t, ":9100", cfg.HTTP.Addr)
	assert.Equal(t, "secret", cfg.HTTP.APIKey)
	assert.Equal(t, "https://example.com/cards.json", cfg.Dataset.URL)
	assert.Equal(t, "data", cfg.DataDir)
}

func Test_Load_Errors(t *testing.T) {
	t.Run("explicit missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
		assert.Error(t, err)
	})

	t.Run("broken yaml", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "page_size: [1"), true)
		assert.Error(t, err)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.Load(writeFile(t, "inventory:\n  backend: redis\n"), true)
		assert.Error(t, err)
	})

	t.Run("bad env", func(t *testing.T) {
		t.Setenv("CARDSHELF_PAGE_SIZE", "many")
		_, err := config.Load("", false)
		assert.Error(t, err)
	})

	t.Run("zero page size", func(t *testing.T) {
		t.Setenv("CARDSHELF_PAGE_SIZE", "0")
		_, err := config.Load("", false)
		assert.Error(t, err)
	})
}
