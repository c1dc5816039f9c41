package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig selects the persistence backend. "sqlite" (default) keeps a
// single database file under Path; "postgres" connects to Database.
type StorageConfig struct {
	Backend  string         `yaml:"backend"`
	Path     string         `yaml:"path"`
	Database DatabaseConfig `yaml:"database"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix IRONLOG_ and underscore-separated
// paths:
//
//	IRONLOG_SERVER_HOST, IRONLOG_SERVER_PORT,
//	IRONLOG_STORAGE_BACKEND, IRONLOG_STORAGE_PATH,
//	IRONLOG_DB_HOST, IRONLOG_DB_PORT, IRONLOG_DB_NAME,
//	IRONLOG_DB_USER, IRONLOG_DB_PASSWORD, IRONLOG_DB_SSLMODE,
//	IRONLOG_AUTH_API_KEY
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "sqlite"
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "data"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IRONLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("IRONLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("IRONLOG_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("IRONLOG_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("IRONLOG_DB_HOST"); v != "" {
		cfg.Storage.Database.Host = v
	}
	if v := os.Getenv("IRONLOG_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Database.Port = port
		}
	}
	if v := os.Getenv("IRONLOG_DB_NAME"); v != "" {
		cfg.Storage.Database.Name = v
	}
	if v := os.Getenv("IRONLOG_DB_USER"); v != "" {
		cfg.Storage.Database.User = v
	}
	if v := os.Getenv("IRONLOG_DB_PASSWORD"); v != "" {
		cfg.Storage.Database.Password = v
	}
	if v := os.Getenv("IRONLOG_DB_SSLMODE"); v != "" {
		cfg.Storage.Database.SSLMode = v
	}
	if v := os.Getenv("IRONLOG_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	switch c.Storage.Backend {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the sqlite backend")
		}
	case "postgres":
		if c.Storage.Database.Host == "" {
			return fmt.Errorf("storage.database.host is required for the postgres backend")
		}
		if c.Storage.Database.Port == 0 {
			return fmt.Errorf("storage.database.port is required for the postgres backend")
		}
		if c.Storage.Database.Name == "" {
			return fmt.Errorf("storage.database.name is required for the postgres backend")
		}
		if c.Storage.Database.User == "" {
			return fmt.Errorf("storage.database.user is required for the postgres backend")
		}
	default:
		return fmt.Errorf("storage.backend must be sqlite or postgres, got %q", c.Storage.Backend)
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
