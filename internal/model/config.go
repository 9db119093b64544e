package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// AgentConfig holds the rule engine and scheduler settings.
type AgentConfig struct {
	// MaintenanceCheckDays is the look-ahead window for upcoming maintenance.
	// Zero covers tasks due today only.
	MaintenanceCheckDays int `mapstructure:"maintenance_check_days" yaml:"maintenance_check_days"`

	// RunIntervalHours is how often the scheduler runs all rules.
	RunIntervalHours int `mapstructure:"run_interval_hours" yaml:"run_interval_hours"`

	// RuleTimeoutSec bounds the storage work of a single rule.
	RuleTimeoutSec int `mapstructure:"rule_timeout_sec" yaml:"rule_timeout_sec"`
}

// RunInterval returns RunIntervalHours as a duration.
func (c AgentConfig) RunInterval() time.Duration {
	return time.Duration(c.RunIntervalHours) * time.Hour
}

// RuleTimeout returns RuleTimeoutSec as a duration.
func (c AgentConfig) RuleTimeout() time.Duration {
	return time.Duration(c.RuleTimeoutSec) * time.Second
}

// DatabaseConfig selects and locates the record store.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`

	// KeyringKey, when set, names the keyring entry holding the DSN.
	KeyringKey string `mapstructure:"keyring_key" yaml:"keyring_key"`
}

// HTTPConfig holds the API listener settings.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// KafkaConfig enables publishing of created notifications. Publishing is
// off when Brokers is empty.
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers" yaml:"brokers"`
	Topic   string `mapstructure:"topic" yaml:"topic"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Agent    AgentConfig    `mapstructure:"agent" yaml:"agent"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	HTTP     HTTPConfig     `mapstructure:"http" yaml:"http"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Kafka    KafkaConfig    `mapstructure:"kafka" yaml:"kafka"`
}

// Validate rejects configurations the engine cannot run with.
func (c *AppConfig) Validate() error {
	if c.Agent.MaintenanceCheckDays < 0 {
		return fmt.Errorf("agent.maintenance_check_days must not be negative, got %d", c.Agent.MaintenanceCheckDays)
	}
	if c.Agent.RunIntervalHours <= 0 {
		return fmt.Errorf("agent.run_interval_hours must be positive, got %d", c.Agent.RunIntervalHours)
	}
	if c.Agent.RuleTimeoutSec <= 0 {
		return fmt.Errorf("agent.rule_timeout_sec must be positive, got %d", c.Agent.RuleTimeoutSec)
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver)
	}
	return nil
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/equipment-alerts/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "equipment-alerts", "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file is present.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Agent: AgentConfig{
			MaintenanceCheckDays: 7,
			RunIntervalHours:     24,
			RuleTimeoutSec:       30,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "equipment.db",
		},
		HTTP: HTTPConfig{Addr: ":8005"},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Kafka: KafkaConfig{Topic: "equipment.notifications"},
	}
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"agent.maintenance_check_days": "AGENT_MAINTENANCE_CHECK_DAYS",
	"agent.run_interval_hours":     "AGENT_RUN_INTERVAL_HOURS",
	"agent.rule_timeout_sec":       "AGENT_RULE_TIMEOUT_SEC",
	"database.driver":              "DATABASE_DRIVER",
	"database.dsn":                 "DATABASE_DSN",
	"database.keyring_key":         "DATABASE_KEYRING_KEY",
	"http.addr":                    "HTTP_ADDR",
	"log.level":                    "LOG_LEVEL",
	"log.format":                   "LOG_FORMAT",
	"kafka.brokers":                "KAFKA_BROKERS",
	"kafka.topic":                  "KAFKA_TOPIC",
}

// LoadConfig reads configuration from the given YAML file path using Viper,
// then applies environment overrides. A missing file is not an error; the
// defaults plus environment are used instead.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	def := DefaultAppConfig()
	v.SetDefault("agent.maintenance_check_days", def.Agent.MaintenanceCheckDays)
	v.SetDefault("agent.run_interval_hours", def.Agent.RunIntervalHours)
	v.SetDefault("agent.rule_timeout_sec", def.Agent.RuleTimeoutSec)
	v.SetDefault("database.driver", def.Database.Driver)
	v.SetDefault("database.dsn", def.Database.DSN)
	v.SetDefault("database.keyring_key", "")
	v.SetDefault("http.addr", def.HTTP.Addr)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", def.Kafka.Topic)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s to %s: %w", key, env, err)
		}
	}

	if path != "" {
		var (
			pathErr  *os.PathError
			notFound viper.ConfigFileNotFoundError
		)
		err := v.ReadInConfig()
		if err != nil && !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("agent", cfg.Agent)
	v.Set("database", cfg.Database)
	v.Set("http", cfg.HTTP)
	v.Set("log", cfg.Log)
	v.Set("kafka", cfg.Kafka)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
