// Package config loads the server configuration: a JSON file, optionally a
// .env file, then GAMECMD_* environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jarvisgally/gamecmd/command"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Duration reads "10s" style values from JSON and the environment.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

type API struct {
	// Listen address of the control API, empty disables it
	Listen string `json:"listen" env:"GAMECMD_API_LISTEN"`
	// Peers outside these networks are rejected
	AllowedNetworks []string `json:"allowed_networks" env:"GAMECMD_API_ALLOWED_NETWORKS" envSeparator:","`
	// bcrypt hash of the operator token, empty disables token checks
	TokenHash string `json:"token_hash" env:"GAMECMD_API_TOKEN_HASH"`
}

type Printer struct {
	// How often printers are advanced
	Interval Duration `json:"interval" env:"GAMECMD_PRINTER_INTERVAL"`
	Capacity int64    `json:"capacity" env:"GAMECMD_PRINTER_CAPACITY"`
	// Overrides of the built-in tiers, keyed by tier name
	Tiers map[string]PrinterTier `json:"tiers"`
}

type PrinterTier struct {
	Price    int64    `json:"price"`
	Rate     int64    `json:"rate"`
	Interval Duration `json:"interval"`
}

type PlayerSeed struct {
	Name    string        `json:"name"`
	Level   command.Level `json:"level"`
	Balance int64         `json:"balance"`
}

type DoorSeed struct {
	ID    string `json:"id"`
	Price int64  `json:"price"`
}

type PrinterSeed struct {
	ID    string `json:"id"`
	Owner string `json:"owner"`
	// Empty means bronze
	Tier string `json:"tier"`
}

type Config struct {
	Prefix       string  `json:"prefix" env:"GAMECMD_PREFIX"`
	CommandRate  float64 `json:"command_rate" env:"GAMECMD_COMMAND_RATE"`
	CommandBurst int     `json:"command_burst" env:"GAMECMD_COMMAND_BURST"`
	LogLevel     string  `json:"log_level" env:"GAMECMD_LOG_LEVEL"`

	API     API     `json:"api"`
	Printer Printer `json:"printer"`

	Players  []PlayerSeed  `json:"players"`
	Doors    []DoorSeed    `json:"doors"`
	Printers []PrinterSeed `json:"printers"`
}

func Default() *Config {
	return &Config{
		Prefix:       "/",
		CommandRate:  2,
		CommandBurst: 5,
		LogLevel:     "info",
		API: API{
			AllowedNetworks: []string{"127.0.0.0/8", "::1/128"},
		},
		Printer: Printer{
			Interval: Duration(time.Second),
			Capacity: 8000,
		},
	}
}

// Load reads path (skipped when empty) over the defaults and applies
// environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using system environment variables")
	}
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("can not load config file %v: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("can not parse config file %v: %w", path, err)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("can not parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Prefix == "" {
		return errors.New("prefix must not be empty")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for _, network := range c.API.AllowedNetworks {
		if _, _, err := net.ParseCIDR(network); err != nil {
			return fmt.Errorf("invalid allowed network %q: %w", network, err)
		}
	}
	if c.Printer.Interval <= 0 {
		return errors.New("printer interval must be positive")
	}
	if c.Printer.Capacity < 0 {
		return errors.New("printer capacity must not be negative")
	}
	for name, tier := range c.Printer.Tiers {
		if tier.Price < 0 || tier.Rate < 0 {
			return fmt.Errorf("printer tier %q: price and rate must not be negative", name)
		}
		if tier.Interval <= 0 {
			return fmt.Errorf("printer tier %q: interval must be positive", name)
		}
	}
	for _, p := range c.Players {
		if p.Name == "" {
			return errors.New("player without name")
		}
	}
	return nil
}
