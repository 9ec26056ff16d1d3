package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr        string        `yaml:"http_addr"`
	WebAddr         string        `yaml:"web_addr"`
	DatabaseURL     string        `yaml:"database_url"`
	APIBaseURL      string        `yaml:"api_base_url"`
	APIToken        string        `yaml:"api_token"`
	CORSAllowOrigin string        `yaml:"cors_allow_origin"`
	TemplateDir     string        `yaml:"template_dir"`
	DocDir          string        `yaml:"doc_dir"`
	FontDir         string        `yaml:"font_dir"`
	RedisAddr       string        `yaml:"redis_addr"`
	DocTTL          time.Duration `yaml:"doc_ttl"`
}

func defaults() Config {
	return Config{
		HTTPAddr:        ":8080",
		WebAddr:         ":3000",
		DatabaseURL:     "devis.db",
		APIBaseURL:      "http://localhost:8080",
		CORSAllowOrigin: "*",
		TemplateDir:     "template_docx",
		DocDir:          "documents",
		DocTTL:          7 * 24 * time.Hour,
	}
}

// Load builds the configuration from the defaults, then the YAML file at
// path when given, then the environment.
func Load(path string) (Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return Config{}, fmt.Errorf("config file %s not found", path)
		case err != nil:
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.HTTPAddr = env("HTTP_ADDR", cfg.HTTPAddr)
	cfg.WebAddr = env("WEB_ADDR", cfg.WebAddr)
	cfg.DatabaseURL = env("DATABASE_URL", cfg.DatabaseURL)
	cfg.APIBaseURL = strings.TrimRight(env("API_BASE_URL", cfg.APIBaseURL), "/")
	cfg.APIToken = env("API_TOKEN", cfg.APIToken)
	cfg.CORSAllowOrigin = env("CORS_ALLOW_ORIGIN", cfg.CORSAllowOrigin)
	cfg.TemplateDir = env("TEMPLATE_DIR", cfg.TemplateDir)
	cfg.DocDir = env("DOC_DIR", cfg.DocDir)
	cfg.FontDir = env("FONT_DIR", cfg.FontDir)
	cfg.RedisAddr = env("REDIS_ADDR", cfg.RedisAddr)
	if v := env("DOC_TTL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("DOC_TTL: %w", err)
		}
		cfg.DocTTL = d
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("missing DATABASE_URL")
	}
	return cfg, nil
}

// Postgres reports whether DatabaseURL points at a PostgreSQL server rather
// than a SQLite file.
func (c Config) Postgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
