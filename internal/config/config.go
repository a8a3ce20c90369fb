// Package config loads the inbox client configuration from defaults, the
// config file, INBOX_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const (
	DefaultPeersInterval    = 5 * time.Second
	DefaultMessagesInterval = 3 * time.Second
	DefaultCountsInterval   = 30 * time.Second
	DefaultReconcileDelay   = 500 * time.Millisecond
	DefaultRequestTimeout   = 15 * time.Second

	SecretsBackendAuto = "auto"
	SecretsBackendPass = "pass"
	SecretsBackendFile = "file"

	minPollInterval   = time.Second
	minCountsInterval = 5 * time.Second
)

type Config struct {
	Profile string        `yaml:"profile" mapstructure:"profile"`
	API     APIConfig     `yaml:"api" mapstructure:"api"`
	Polling PollingConfig `yaml:"polling" mapstructure:"polling"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Publish PublishConfig `yaml:"publish" mapstructure:"publish"`
}

type APIConfig struct {
	// BaseURL overrides the profile base URL when set.
	BaseURL        string        `yaml:"base_url" mapstructure:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

type PollingConfig struct {
	PeersInterval    time.Duration `yaml:"peers_interval" mapstructure:"peers_interval"`
	MessagesInterval time.Duration `yaml:"messages_interval" mapstructure:"messages_interval"`
	CountsInterval   time.Duration `yaml:"counts_interval" mapstructure:"counts_interval"`
	// ReconcileDelay is the pause between a successful send and the follow-up conversation fetch.
	ReconcileDelay time.Duration `yaml:"reconcile_delay" mapstructure:"reconcile_delay"`
}

type StorageConfig struct {
	ProfilesPath string `yaml:"profiles_path" mapstructure:"profiles_path"`
	SecretsDir   string `yaml:"secrets_dir" mapstructure:"secrets_dir"`
	// SecretsBackend is auto (pass, then files), pass or file.
	SecretsBackend string `yaml:"secrets_backend" mapstructure:"secrets_backend"`
	// PassDir overrides PASSWORD_STORE_DIR for the pass backend. Empty uses pass's default store.
	PassDir string `yaml:"pass_dir,omitempty" mapstructure:"pass_dir"`
}

type LoggingConfig struct {
	Level        string `yaml:"level" mapstructure:"level"`
	Format       string `yaml:"format" mapstructure:"format"`
	File         string `yaml:"file" mapstructure:"file"`
	EnableCaller bool   `yaml:"enable_caller" mapstructure:"enable_caller"`
}

type PublishConfig struct {
	NATS  NATSConfig  `yaml:"nats" mapstructure:"nats"`
	AMQP  AMQPConfig  `yaml:"amqp" mapstructure:"amqp"`
	Redis RedisConfig `yaml:"redis" mapstructure:"redis"`
}

type NATSConfig struct {
	URL     string `yaml:"url" mapstructure:"url"`
	Subject string `yaml:"subject" mapstructure:"subject"`
}

type AMQPConfig struct {
	URL        string `yaml:"url" mapstructure:"url"`
	Exchange   string `yaml:"exchange" mapstructure:"exchange"`
	RoutingKey string `yaml:"routing_key" mapstructure:"routing_key"`
}

type RedisConfig struct {
	Addr     string        `yaml:"addr" mapstructure:"addr"`
	Password string        `yaml:"password" mapstructure:"password"`
	DB       int           `yaml:"db" mapstructure:"db"`
	Key      string        `yaml:"key" mapstructure:"key"`
	Channel  string        `yaml:"channel" mapstructure:"channel"`
	TTL      time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

func DefaultConfig() *Config {
	configDir := defaultConfigDir()

	return &Config{
		Profile: "default",
		API: APIConfig{
			RequestTimeout: DefaultRequestTimeout,
		},
		Polling: PollingConfig{
			PeersInterval:    DefaultPeersInterval,
			MessagesInterval: DefaultMessagesInterval,
			CountsInterval:   DefaultCountsInterval,
			ReconcileDelay:   DefaultReconcileDelay,
		},
		Storage: StorageConfig{
			ProfilesPath:   filepath.Join(configDir, "profiles.toml"),
			SecretsDir:     filepath.Join(configDir, "secrets"),
			SecretsBackend: SecretsBackendAuto,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Publish: PublishConfig{
			NATS:  NATSConfig{Subject: "inbox.unread"},
			AMQP:  AMQPConfig{Exchange: "inbox.events", RoutingKey: "unread.changed"},
			Redis: RedisConfig{Key: "inbox:unread", Channel: "inbox.unread", TTL: 10 * time.Minute},
		},
	}
}

func (c *Config) Validate() error {
	var errs []error

	if c.Profile == "" {
		errs = append(errs, errors.New("profile must not be empty"))
	}
	if c.API.BaseURL != "" {
		if parsed, err := url.Parse(c.API.BaseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL))
		}
	}
	if c.API.RequestTimeout <= 0 {
		errs = append(errs, errors.New("api.request_timeout must be positive"))
	}
	if c.Polling.PeersInterval < minPollInterval {
		errs = append(errs, fmt.Errorf("polling.peers_interval must be at least %s", minPollInterval))
	}
	if c.Polling.MessagesInterval < minPollInterval {
		errs = append(errs, fmt.Errorf("polling.messages_interval must be at least %s", minPollInterval))
	}
	if c.Polling.CountsInterval < minCountsInterval {
		errs = append(errs, fmt.Errorf("polling.counts_interval must be at least %s", minCountsInterval))
	}
	if c.Polling.ReconcileDelay < 0 || c.Polling.ReconcileDelay >= c.Polling.MessagesInterval {
		errs = append(errs, errors.New("polling.reconcile_delay must be non-negative and shorter than polling.messages_interval"))
	}
	switch c.Storage.SecretsBackend {
	case SecretsBackendAuto, SecretsBackendPass, SecretsBackendFile:
	default:
		errs = append(errs, fmt.Errorf("storage.secrets_backend %q must be auto, pass or file", c.Storage.SecretsBackend))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be console or json", c.Logging.Format))
	}

	return errors.Join(errs...)
}

func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "inbox")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".", ".inbox")
	}
	return filepath.Join(home, ".config", "inbox")
}
