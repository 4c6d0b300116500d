package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPath names the environment variable holding the config file path.
const EnvPath = "WOGRALD_CONFIG"

// DefaultPath is used when EnvPath is unset.
const DefaultPath = "config/server.toml"

type Config struct {
	Server  ServerConfig  `toml:"server"`
	World   WorldConfig   `toml:"world"`
	Data    DataConfig    `toml:"data"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Name      string        `toml:"name"`
	TickRate  time.Duration `toml:"tick_rate"`
	// InputRate is how often queued moves drain between full ticks.
	InputRate time.Duration `toml:"input_rate"`
	StartTime int64         // set at boot, not from config
}

type WorldConfig struct {
	PoolBatch        int    `toml:"pool_batch"`
	Seed             int64  `toml:"seed"` // 0 keeps the engine default
	AbortOnInvariant bool   `toml:"abort_on_invariant"`
	MaxFallDepth     int    `toml:"max_fall_depth"`
	StartMap         string `toml:"start_map"`
	StartX           int    `toml:"start_x"`
	StartY           int    `toml:"start_y"`
}

type DataConfig struct {
	Archetypes string `toml:"archetypes"`
	MapDir     string `toml:"map_dir"`
	ScriptsDir string `toml:"scripts_dir"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Path returns the config file to load.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.TickRate <= 0 {
		return fmt.Errorf("server.tick_rate must be positive, got %s", c.Server.TickRate)
	}
	if c.Server.InputRate <= 0 || c.Server.InputRate > c.Server.TickRate {
		return fmt.Errorf("server.input_rate must be positive and at most tick_rate, got %s", c.Server.InputRate)
	}
	if c.World.PoolBatch <= 0 {
		return fmt.Errorf("world.pool_batch must be positive, got %d", c.World.PoolBatch)
	}
	if c.World.MaxFallDepth < 0 {
		return fmt.Errorf("world.max_fall_depth must not be negative, got %d", c.World.MaxFallDepth)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:      "Wograld",
			TickRate:  120 * time.Millisecond,
			InputRate: 30 * time.Millisecond,
		},
		World: WorldConfig{
			PoolBatch:    1000,
			MaxFallDepth: 8,
			StartMap:     "town",
		},
		Data: DataConfig{
			Archetypes: "data/archetypes.yaml",
			MapDir:     "data/maps",
			ScriptsDir: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
