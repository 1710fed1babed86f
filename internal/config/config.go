package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "CARDSHELF_"

type Config struct {
	LogLevel  string          `yaml:"log_level"  env:"LOG_LEVEL"  validate:"oneof=trace debug info warn error"`
	DataDir   string          `yaml:"data_dir"   env:"DATA_DIR"   validate:"required"`
	PageSize  int             `yaml:"page_size"  env:"PAGE_SIZE"  validate:"gt=0,lte=500"`
	Dataset   DatasetConfig   `yaml:"dataset"    envPrefix:"DATASET_"`
	Inventory InventoryConfig `yaml:"inventory"  envPrefix:"INVENTORY_"`
	HTTP      HTTPConfig      `yaml:"http"       envPrefix:"HTTP_"`
	Importer  ImporterConfig  `yaml:"importer"   envPrefix:"IMPORTER_"`
}

type DatasetConfig struct {
	Path    string        `yaml:"path"    env:"PATH"`
	URL     string        `yaml:"url"     env:"URL"     validate:"omitempty,url"`
	Watch   bool          `yaml:"watch"   env:"WATCH"`
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT" validate:"gt=0"`
}

type InventoryConfig struct {
	Backend string `yaml:"backend" env:"BACKEND" validate:"oneof=badger sqlite memory"`
}

type HTTPConfig struct {
	Addr   string `yaml:"addr"    env:"ADDR"`
	APIKey string `yaml:"api_key" env:"API_KEY"`
}

type ImporterConfig struct {
	ExportTemplate string        `yaml:"export_template" env:"EXPORT_TEMPLATE"`
	OfflineDir     string        `yaml:"offline_dir"     env:"OFFLINE_DIR"`
	Timeout        time.Duration `yaml:"timeout"         env:"TIMEOUT"         validate:"gt=0"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		DataDir:  "data",
		PageSize: 20,
		Dataset: DatasetConfig{
			Timeout: 10 * time.Second,
		},
		Inventory: InventoryConfig{
			Backend: "badger",
		},
		HTTP: HTTPConfig{
			Addr: "127.0.0.1:7420",
		},
		Importer: ImporterConfig{
			OfflineDir: "offline",
			Timeout:    30 * time.Second,
		},
	}
}

// Load applies yaml file (when path is not blank) and CARDSHELF_* env vars over defaults.
// Missing file is fine unless it was requested explicitly.
func Load(path string, explicit bool) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist) && !explicit:
		case err != nil:
			return Config{}, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("decoding config file: %w", err)
			}
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parsing env: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}
