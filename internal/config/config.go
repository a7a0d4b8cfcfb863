package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all oneMonitor configuration.
type Config struct {
	Server  ServerConfig          `mapstructure:"server"`
	Worker  WorkerConfig          `mapstructure:"worker"`
	Campus  CampusConfig          `mapstructure:"campus"`
	Push    map[string]PushConfig `mapstructure:"push"`
	Logging LoggingConfig         `mapstructure:"logging"`
}

// ServerConfig defines ingest API settings.
type ServerConfig struct {
	Listen  string        `mapstructure:"listen"`
	AuthKey string        `mapstructure:"auth_key"`
	Storage StorageConfig `mapstructure:"storage"`
}

// StorageConfig defines database settings.
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// WorkerConfig defines poll loop and reconciliation settings.
type WorkerConfig struct {
	Interval    int     `mapstructure:"interval"`     // seconds between cycles
	RoomDelay   int     `mapstructure:"room_delay"`   // seconds between rooms within a cycle
	APIEndpoint string  `mapstructure:"api_endpoint"` // ingest API base URL
	APIKey      string  `mapstructure:"api_key"`
	AlarmLine   float64 `mapstructure:"alarm_line"`
	WarningLine float64 `mapstructure:"warning_line"`
	Prune       bool    `mapstructure:"prune"`
	RoomsFile   string  `mapstructure:"rooms_file"`
}

// CampusConfig defines measurement source credentials.
type CampusConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	Usercode string `mapstructure:"usercode"`
	Password string `mapstructure:"password"`
}

// PushConfig defines one named push target. Provider selects the notifier
// implementation; the remaining fields are provider-specific.
type PushConfig struct {
	Provider   string `mapstructure:"provider"` // "slack" or "webhook"
	Enabled    bool   `mapstructure:"enabled"`
	WebhookURL string `mapstructure:"webhook_url"` // slack
	Channel    string `mapstructure:"channel"`     // slack
	URL        string `mapstructure:"url"`         // webhook
	Secret     string `mapstructure:"secret"`      // webhook
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("find home directory: %w", err)
		}

		v.AddConfigPath(filepath.Join(home, ".onemonitor"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Defaults
	home, _ := os.UserHomeDir()
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.storage.path", filepath.Join(home, ".onemonitor", "electricity.db"))
	v.SetDefault("worker.interval", 600)
	v.SetDefault("worker.room_delay", 3)
	v.SetDefault("worker.alarm_line", 10.0)
	v.SetDefault("worker.warning_line", 20.0)
	v.SetDefault("worker.prune", false)
	v.SetDefault("worker.rooms_file", "rooms.yaml")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Environment variables
	v.SetEnvPrefix("ONEMONITOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// ValidateWorker checks the settings the worker and sync commands depend on.
func (c *Config) ValidateWorker() error {
	if c.Worker.APIEndpoint == "" {
		return fmt.Errorf("worker.api_endpoint is required")
	}
	if c.Worker.Interval <= 0 {
		return fmt.Errorf("worker.interval must be positive, got %d", c.Worker.Interval)
	}
	if c.Worker.RoomDelay < 0 {
		return fmt.Errorf("worker.room_delay must be non-negative, got %d", c.Worker.RoomDelay)
	}
	if c.Worker.AlarmLine >= c.Worker.WarningLine {
		return fmt.Errorf("worker.alarm_line (%v) must be below worker.warning_line (%v)",
			c.Worker.AlarmLine, c.Worker.WarningLine)
	}
	for name, push := range c.Push {
		switch push.Provider {
		case "slack", "webhook":
		default:
			return fmt.Errorf("push %q: unknown provider %q", name, push.Provider)
		}
	}
	return nil
}
