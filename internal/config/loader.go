package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables consulted by Load.
const (
	EnvPrefix     = "MVPSHARE_"
	EnvConfigFile = EnvPrefix + "CONFIG"
	EnvDotenvFile = EnvPrefix + "DOTENV"

	defaultDotenv = ".env"
)

// Load builds a Config by layering defaults, dotenv, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. dotenv file (MVPSHARE_DOTENV, default ".env"; missing file ignored)
//  3. file (YAML) if MVPSHARE_CONFIG is set
//  4. env (prefix MVPSHARE_)
func Load(ctx context.Context) (*Config, error) {
	return LoadFile(ctx, os.Getenv(EnvConfigFile))
}

// LoadFile is Load with an explicit YAML path; an empty path skips the file layer.
func LoadFile(_ context.Context, path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if err := loadDotenv(k); err != nil {
		return nil, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// MVPSHARE_WORKER_COUNT -> worker_count. Underscores are kept to match koanf tags.
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadDotenv reads KEY=VALUE pairs without touching the process environment so a
// YAML file can still override them.
func loadDotenv(k *koanf.Koanf) error {
	path := os.Getenv(EnvDotenvFile)
	if path == "" {
		path = defaultDotenv
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, path, err)
	}

	for key, raw := range values {
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		name, value := envValue(key, raw)
		if name == "" {
			continue
		}
		if err := k.Set(name, value); err != nil {
			return fmt.Errorf("%w: dotenv %s: %w", ErrLoadConfig, key, err)
		}
	}
	return nil
}

// envValue maps MVPSHARE_FOO_BAR to foo_bar and splits list values on commas.
func envValue(key, value string) (string, any) {
	name := strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	switch name {
	case "config", "dotenv":
		return "", nil
	case "predictors", "metrics_latency_buckets", "metrics_row_buckets":
		return name, splitList(value)
	case "metrics_labels":
		return name, splitLabels(value)
	}
	return name, value
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitLabels parses "env=prod,team=a" into a label map; pairs without "=" are dropped.
func splitLabels(value string) map[string]any {
	out := make(map[string]any)
	for _, pair := range splitList(value) {
		k, v, ok := strings.Cut(pair, "=")
		if k = strings.TrimSpace(k); ok && k != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}
