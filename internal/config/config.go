// Package config loads the citybus client configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// CITYBUS_* environment variables. The result is validated once and treated
// as read-only for the life of the process.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"

	"github.com/rsclarke/citybus/internal/auth"
)

const envPrefix = "CITYBUS_"

type Config struct {
	AppVersion  int    `koanf:"app_version" validate:"required,gt=0"`
	AppID       string `koanf:"app_id" validate:"required"`
	Salt        string `koanf:"salt" validate:"required"`
	DBBaseURL   string `koanf:"db_base_url" validate:"required,url"`
	LiveBaseURL string `koanf:"live_base_url" validate:"required,url"`
	Extractor   string `koanf:"extractor" validate:"required"`
	OutputDir   string `koanf:"output_dir" validate:"required"`
	LedgerPath  string `koanf:"ledger_path"`
}

func Default() Config {
	return Config{
		AppVersion:  3700,
		AppID:       auth.DefaultAppID,
		Salt:        auth.DefaultSalt,
		DBBaseURL:   "http://citybus.in.ua/api/v1/",
		LiveBaseURL: "http://city-bus-lviv.herokuapp.com/api/v1/",
		Extractor:   "7z",
		OutputDir:   ".",
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	d := Default()
	defaults := map[string]interface{}{
		"app_version":   d.AppVersion,
		"app_id":        d.AppID,
		"salt":          d.Salt,
		"db_base_url":   d.DBBaseURL,
		"live_base_url": d.LiveBaseURL,
		"extractor":     d.Extractor,
		"output_dir":    d.OutputDir,
		"ledger_path":   d.LedgerPath,
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every required value is present and well formed.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
