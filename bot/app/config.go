package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/m5frls/gedanbot/core/cmd"
	coreconfig "github.com/m5frls/gedanbot/core/config"
	coredatabase "github.com/m5frls/gedanbot/core/database"
)

// Config is the full application configuration: the shared core
// sections plus the database connection settings.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
}

// CoreConfig implements cmd.ConfigCarrier.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

// LoadConfig reads the YAML config file and overlays environment
// variables on top of it.
func LoadConfig(path string) (cmd.ConfigCarrier, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	normalizeDatabase(&cfg.Database)
	return &cfg, nil
}

func normalizeDatabase(db *coredatabase.Config) {
	if db.Host == "" {
		db.Host = "localhost"
	}
	if db.Port == "" {
		db.Port = "5432"
	}
	if db.SSLMode == "" {
		db.SSLMode = "disable"
	}
	if db.MaxConnections <= 0 {
		db.MaxConnections = 10
	}
}
