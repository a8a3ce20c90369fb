package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "INBOX"

// Loader resolves configuration with precedence defaults < config file < env < flags.
type Loader struct {
	v          *viper.Viper
	configFile string
}

func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// Viper exposes the underlying instance so flags can be bound and adapters can read their keys.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()
	l.setup(cfg)

	if err := l.readConfigFile(); err != nil {
		return nil, fmt.Errorf("load config file: %w", err)
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Storage.ProfilesPath = expandTilde(cfg.Storage.ProfilesPath)
	cfg.Storage.SecretsDir = expandTilde(cfg.Storage.SecretsDir)
	cfg.Storage.PassDir = expandTilde(cfg.Storage.PassDir)
	cfg.Logging.File = expandTilde(cfg.Logging.File)
	// Adapters reading keys straight from viper see the expanded paths.
	l.v.Set("storage.profiles_path", cfg.Storage.ProfilesPath)
	l.v.Set("storage.secrets_dir", cfg.Storage.SecretsDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func (l *Loader) setup(cfg *Config) {
	v := l.v

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		v.AddConfigPath(filepath.Join(xdg, "inbox"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		v.AddConfigPath(filepath.Join(home, ".config", "inbox"))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("profile", cfg.Profile)
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.request_timeout", cfg.API.RequestTimeout)
	v.SetDefault("polling.peers_interval", cfg.Polling.PeersInterval)
	v.SetDefault("polling.messages_interval", cfg.Polling.MessagesInterval)
	v.SetDefault("polling.counts_interval", cfg.Polling.CountsInterval)
	v.SetDefault("polling.reconcile_delay", cfg.Polling.ReconcileDelay)
	v.SetDefault("storage.profiles_path", cfg.Storage.ProfilesPath)
	v.SetDefault("storage.secrets_dir", cfg.Storage.SecretsDir)
	v.SetDefault("storage.secrets_backend", cfg.Storage.SecretsBackend)
	v.SetDefault("storage.pass_dir", cfg.Storage.PassDir)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.enable_caller", cfg.Logging.EnableCaller)
	v.SetDefault("publish.nats.url", cfg.Publish.NATS.URL)
	v.SetDefault("publish.nats.subject", cfg.Publish.NATS.Subject)
	v.SetDefault("publish.amqp.url", cfg.Publish.AMQP.URL)
	v.SetDefault("publish.amqp.exchange", cfg.Publish.AMQP.Exchange)
	v.SetDefault("publish.amqp.routing_key", cfg.Publish.AMQP.RoutingKey)
	v.SetDefault("publish.redis.addr", cfg.Publish.Redis.Addr)
	v.SetDefault("publish.redis.password", cfg.Publish.Redis.Password)
	v.SetDefault("publish.redis.db", cfg.Publish.Redis.DB)
	v.SetDefault("publish.redis.key", cfg.Publish.Redis.Key)
	v.SetDefault("publish.redis.channel", cfg.Publish.Redis.Channel)
	v.SetDefault("publish.redis.ttl", cfg.Publish.Redis.TTL)

	bindEnvVars(v)
}

func (l *Loader) readConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	}

	err := l.v.ReadInConfig()
	if err == nil {
		return nil
	}

	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) && l.configFile == "" {
		return nil
	}
	return err
}

// bindEnvVars binds every key explicitly; Unmarshal ignores AutomaticEnv for nested keys.
func bindEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		envVar := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, envVar)
	}
	// Shorthand kept for scripts that only export a token and a server.
	_ = v.BindEnv("api.base_url", "INBOX_API_BASE_URL", "INBOX_BASE_URL")
}

func expandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
