package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Janitor    JanitorConfig    `yaml:"janitor"`
	Auth       AuthConfig       `yaml:"auth"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Seed       SeedConfig       `yaml:"seed"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "sqlite" (kiosk default) or "postgres"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// JanitorConfig holds the configuration for the background reconcile loop.
type JanitorConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// AuthConfig holds the admin authentication settings.
type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	AdminPasswordHash string `yaml:"admin_password_hash"` // bcrypt hash
	TokenTTLMinutes   int    `yaml:"token_ttl_minutes"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// SeedConfig describes the fixed console list and the scan-number whitelist
// installed on first run against an empty database.
type SeedConfig struct {
	Consoles           []SeedConsole `yaml:"consoles"`
	AllowedScanNumbers []string      `yaml:"allowed_scan_numbers"`
}

// SeedConsole is one console of the seed list.
type SeedConsole struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	Type             string `yaml:"type"`
	AllowedDurations []int  `yaml:"allowed_durations"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyDefaults fills every unset field with a workable default.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "consoles.db"
	}

	if cfg.Janitor.IntervalSeconds <= 0 {
		cfg.Janitor.IntervalSeconds = 30
	}
	cfg.Janitor.Interval = time.Duration(cfg.Janitor.IntervalSeconds) * time.Second

	if cfg.Auth.TokenTTLMinutes <= 0 {
		cfg.Auth.TokenTTLMinutes = 60
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if len(cfg.Seed.Consoles) == 0 {
		cfg.Seed.Consoles = []SeedConsole{
			{ID: "1", Name: "Manette Switch 1", Type: "Manette Switch"},
			{ID: "2", Name: "Manette Switch 2", Type: "Manette Switch"},
			{ID: "3", Name: "Casque VR", Type: "Casque VR"},
			{ID: "4", Name: "Borne d'arcade", Type: "Borne d'arcade"},
		}
	}
	for i := range cfg.Seed.Consoles {
		if len(cfg.Seed.Consoles[i].AllowedDurations) == 0 {
			cfg.Seed.Consoles[i].AllowedDurations = []int{10, 30, 60}
		}
	}
	if len(cfg.Seed.AllowedScanNumbers) == 0 {
		cfg.Seed.AllowedScanNumbers = []string{"8012908"}
	}
}
