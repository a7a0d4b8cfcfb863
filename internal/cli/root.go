package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Illustar0/oneMonitor/internal/config"
	"github.com/Illustar0/oneMonitor/pkg/alerts"
	"github.com/Illustar0/oneMonitor/pkg/apiclient"
	"github.com/Illustar0/oneMonitor/pkg/model"
	"github.com/Illustar0/oneMonitor/pkg/storage"
)

// Version is set at build time via ldflags.
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "onemonitor",
	Short: "oneMonitor - Campus prepaid electricity monitoring",
	Long: `oneMonitor tracks prepaid electricity balances for a set of rooms.
It polls the campus account service, stores historical readings behind a
small authenticated API, and pushes low-balance alerts.`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.onemonitor/config.yaml)")
}

// loadConfig loads the configuration.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newLogger creates a structured logger from config.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	return slog.New(handler)
}

// initStorage creates a storage backend from config.
func initStorage(cfg *config.Config) (storage.Store, error) {
	return storage.NewSQLite(cfg.Server.Storage.Path)
}

// initNotifiers builds the named push targets from config. Disabled
// targets are skipped.
func initNotifiers(cfg *config.Config) map[string]alerts.Notifier {
	notifiers := make(map[string]alerts.Notifier)
	for name, push := range cfg.Push {
		if !push.Enabled {
			continue
		}
		switch push.Provider {
		case "slack":
			notifiers[name] = alerts.NewSlackNotifier(push.WebhookURL, push.Channel)
		case "webhook":
			notifiers[name] = alerts.NewWebhookNotifier(push.URL, push.Secret)
		}
	}
	return notifiers
}

// initAPIClient creates the ingest API client from worker config.
func initAPIClient(cfg *config.Config) *apiclient.Client {
	return apiclient.New(cfg.Worker.APIEndpoint, cfg.Worker.APIKey)
}

// loadRooms loads and validates the room declaration file.
func loadRooms(cfg *config.Config) ([]model.Room, error) {
	return config.LoadRooms(cfg.Worker.RoomsFile, cfg.Push)
}
