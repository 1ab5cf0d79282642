package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers for secrets and sequence counters.
const (
	StoreDriverUpstash  = "upstash"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Config holds all service configuration.
type Config struct {
	// Environment
	Environment EnvironmentConfig

	// Server
	HTTPServer HTTPServerConfig
	Logger     LoggerConfig

	// Upstream task tracker
	Asana AsanaConfig

	// Secret and counter storage
	Store    StoreConfig
	Upstash  UpstashConfig
	Postgres PostgresConfig
	SQLite   SQLiteConfig

	// Event processing
	Ticket TicketConfig

	// Webhooks
	Webhook WebhookConfig
}

type EnvironmentConfig struct {
	Name string
}

type HTTPServerConfig struct {
	Port int
	Mode string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type AsanaConfig struct {
	BaseURL             string
	PersonalAccessToken string
	WorkspaceID         string // default workspace of the admin CLI
	Timeout             time.Duration
}

type StoreConfig struct {
	Driver string
}

// UpstashConfig points at an Upstash Redis REST endpoint.
type UpstashConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

type PostgresConfig struct {
	DSN      string
	MaxConns int32
}

type SQLiteConfig struct {
	Path string
}

type TicketConfig struct {
	Workers     int
	CallTimeout time.Duration
}

type WebhookConfig struct {
	AllowedIPs      []string
	RateLimitPerMin int
	MaxBodySize     int64
}

// Load loads configuration using Viper.
// Config file name: config.yaml, searched in ./config, ., /etc/app/
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/app/")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}

	// Environment & Server
	cfg.Environment.Name = viper.GetString("environment.name")
	cfg.HTTPServer.Port = viper.GetInt("http_server.port")
	cfg.HTTPServer.Mode = viper.GetString("http_server.mode")
	cfg.Logger.Level = viper.GetString("logger.level")
	cfg.Logger.Mode = viper.GetString("logger.mode")
	cfg.Logger.Encoding = viper.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = viper.GetBool("logger.color_enabled")

	// Asana
	cfg.Asana.BaseURL = viper.GetString("asana.base_url")
	cfg.Asana.PersonalAccessToken = viper.GetString("asana.personal_access_token")
	cfg.Asana.WorkspaceID = viper.GetString("asana.workspace_id")
	cfg.Asana.Timeout = viper.GetDuration("asana.timeout")
	if token := viper.GetString("asana_personal_key"); token != "" {
		cfg.Asana.PersonalAccessToken = token
	}
	if workspace := viper.GetString("asana_workspace_id"); workspace != "" {
		cfg.Asana.WorkspaceID = workspace
	}

	// Store
	cfg.Store.Driver = strings.ToLower(viper.GetString("store.driver"))

	cfg.Upstash.URL = viper.GetString("upstash.url")
	cfg.Upstash.Token = viper.GetString("upstash.token")
	cfg.Upstash.Timeout = viper.GetDuration("upstash.timeout")
	if url := viper.GetString("upstash_redis_rest_url"); url != "" {
		cfg.Upstash.URL = url
	}
	if token := viper.GetString("upstash_redis_rest_token"); token != "" {
		cfg.Upstash.Token = token
	}

	cfg.Postgres.DSN = viper.GetString("postgres.dsn")
	cfg.Postgres.MaxConns = viper.GetInt32("postgres.max_conns")
	if dsn := viper.GetString("database_url"); dsn != "" {
		cfg.Postgres.DSN = dsn
	}

	cfg.SQLite.Path = viper.GetString("sqlite.path")

	// Ticket processing
	cfg.Ticket.Workers = viper.GetInt("ticket.workers")
	cfg.Ticket.CallTimeout = viper.GetDuration("ticket.call_timeout")

	// Webhooks
	cfg.Webhook.RateLimitPerMin = viper.GetInt("webhook.rate_limit_per_min")
	cfg.Webhook.MaxBodySize = viper.GetInt64("webhook.max_body_size")
	cfg.Webhook.AllowedIPs = splitList(viper.GetString("webhook.allowed_ips"))
	if len(cfg.Webhook.AllowedIPs) == 0 {
		cfg.Webhook.AllowedIPs = viper.GetStringSlice("webhook.allowed_ips")
	}

	return cfg, nil
}

// Validate checks the settings the webhook server cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPServer.Port <= 0 {
		errs = append(errs, errors.New("http_server.port must be positive"))
	}
	if c.Asana.PersonalAccessToken == "" {
		errs = append(errs, errors.New("asana.personal_access_token (ASANA_PERSONAL_KEY) is required"))
	}

	switch c.Store.Driver {
	case StoreDriverUpstash:
		if c.Upstash.URL == "" || c.Upstash.Token == "" {
			errs = append(errs, errors.New("upstash.url and upstash.token (UPSTASH_REDIS_REST_URL, UPSTASH_REDIS_REST_TOKEN) are required"))
		}
	case StoreDriverPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("postgres.dsn is required"))
		}
	case StoreDriverSQLite:
		if c.SQLite.Path == "" {
			errs = append(errs, errors.New("sqlite.path is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}

	if c.Ticket.Workers < 1 {
		errs = append(errs, errors.New("ticket.workers must be at least 1"))
	}
	if c.Webhook.RateLimitPerMin < 0 {
		errs = append(errs, errors.New("webhook.rate_limit_per_min must not be negative"))
	}

	return errors.Join(errs...)
}

func setDefaults() {
	viper.SetDefault("environment.name", "development")
	viper.SetDefault("http_server.port", 8080)
	viper.SetDefault("http_server.mode", "debug")
	viper.SetDefault("logger.level", "debug")
	viper.SetDefault("logger.mode", "debug")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("logger.color_enabled", true)

	viper.SetDefault("asana.base_url", "https://app.asana.com/api/1.0")
	viper.SetDefault("asana.timeout", "10s")

	viper.SetDefault("store.driver", StoreDriverUpstash)
	viper.SetDefault("upstash.timeout", "5s")
	viper.SetDefault("postgres.max_conns", 4)
	viper.SetDefault("sqlite.path", "ticket-numbering.db")

	viper.SetDefault("ticket.workers", 1)
	viper.SetDefault("ticket.call_timeout", "10s")

	viper.SetDefault("webhook.rate_limit_per_min", 600)
	viper.SetDefault("webhook.max_body_size", 1<<20)
}

// splitList parses comma separated values, as env vars cannot carry arrays.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
