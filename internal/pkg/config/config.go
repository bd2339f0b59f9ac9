// internal/pkg/config/config.go

package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config carries everything a service binary needs at startup. Values are
// resolved in three layers: built-in defaults, an optional YAML file pointed
// at by CONFIG_FILE, then environment variable overrides.
type Config struct {
	Service struct {
		Name string `yaml:"name"`
		Port int    `yaml:"port"`
	} `yaml:"service"`

	Jaeger struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"jaeger"`

	Downstream struct {
		RecordsURL     string `yaml:"records_url"`
		RentalsURL     string `yaml:"rentals_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"downstream"`

	Data struct {
		Records   string `yaml:"records"`
		Customers string `yaml:"customers"`
		Rentals   string `yaml:"rentals"`
	} `yaml:"data"`
}

// Timeout is the bounded per-request timeout for downstream calls.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Downstream.TimeoutSeconds) * time.Second
}

// Load resolves the configuration for the named service.
func Load(serviceName string, defaultPort int) (Config, error) {
	var cfg Config
	cfg.Service.Name = serviceName
	cfg.Service.Port = defaultPort
	cfg.Jaeger.Endpoint = "http://localhost:14268/api/traces"
	cfg.Downstream.RecordsURL = "http://localhost:8081"
	cfg.Downstream.RentalsURL = "http://localhost:8082"
	cfg.Downstream.TimeoutSeconds = 5
	cfg.Data.Records = "data/records.json"
	cfg.Data.Customers = "data/customers.json"
	cfg.Data.Rentals = "data/rentals.json"

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config file %s", path)
		}
	}

	cfg.Service.Port = getEnvInt("SERVICE_PORT", cfg.Service.Port)
	cfg.Jaeger.Endpoint = getEnv("JAEGER_ENDPOINT", cfg.Jaeger.Endpoint)
	cfg.Downstream.RecordsURL = getEnv("RECORDS_SERVICE_URL", cfg.Downstream.RecordsURL)
	cfg.Downstream.RentalsURL = getEnv("RENTALS_SERVICE_URL", cfg.Downstream.RentalsURL)
	cfg.Downstream.TimeoutSeconds = getEnvInt("DOWNSTREAM_TIMEOUT", cfg.Downstream.TimeoutSeconds)
	cfg.Data.Records = getEnv("RECORDS_DATA", cfg.Data.Records)
	cfg.Data.Customers = getEnv("CUSTOMERS_DATA", cfg.Data.Customers)
	cfg.Data.Rentals = getEnv("RENTALS_DATA", cfg.Data.Rentals)

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
