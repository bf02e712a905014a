// Package config loads the application configuration from an optional YAML
// or JSON file and EVRANGE_ environment variables.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/infra/history"
	"github.com/kilianp07/evrange/infra/logger"
	"github.com/kilianp07/evrange/infra/monitoring"
	"github.com/kilianp07/evrange/infra/mqtt"
	"github.com/kilianp07/evrange/infra/nominatim"
	"github.com/kilianp07/evrange/infra/osrm"
)

// EnvPrefix prefixes environment overrides; "__" separates nested keys, e.g.
// EVRANGE_GEOCODER__USER_AGENT.
const EnvPrefix = "EVRANGE_"

type Config struct {
	Geocoder nominatim.Config  `json:"geocoder"`
	Router   osrm.Config       `json:"router"`
	API      APIConfig         `json:"api"`
	Metrics  metrics.Config    `json:"metrics"`
	Logging  logger.Config     `json:"logging"`
	MQTT     mqtt.Config       `json:"mqtt"`
	Sentry   monitoring.Config `json:"sentry"`
	History  history.Config    `json:"history"`
}

// APIConfig defines the HTTP API listener.
type APIConfig struct {
	Address string `json:"address" validate:"required,hostname_port"`
}

// DefaultAPIAddress is used when api.address is unset.
const DefaultAPIAddress = ":8080"

// DefaultPrometheusAddress serves /metrics when a prometheus sink is configured.
const DefaultPrometheusAddress = ":9100"

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Geocoder.SetDefaults()
	c.Router.SetDefaults()
	if c.API.Address == "" {
		c.API.Address = DefaultAPIAddress
	}
	if c.Metrics.PrometheusAddr == "" && c.Metrics.HasSink("prometheus") {
		c.Metrics.PrometheusAddr = DefaultPrometheusAddress
	}
	if c.MQTT.Enabled() {
		c.MQTT.SetDefaults()
	}
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var c Config
	c.SetDefaults()
	return &c
}

// Load reads the file at path, when not empty, then applies environment
// overrides, defaults and validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
