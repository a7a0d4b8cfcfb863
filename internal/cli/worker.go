package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Illustar0/oneMonitor/pkg/campus"
	"github.com/Illustar0/oneMonitor/pkg/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the measurement worker",
	Long: `Reconcile the local room list with the remote registry once, then
poll the campus account service forever, ingesting one balance reading per
room per cycle and pushing low-balance alerts.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

// campusSource adapts the campus client to the worker's Source interface.
type campusSource struct {
	client *campus.Client
}

func (s campusSource) Login(ctx context.Context) (worker.BalanceReader, error) {
	return s.client.Login(ctx)
}

func runWorker(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateWorker(); err != nil {
		return err
	}

	logger := newLogger(cfg)

	rooms, err := loadRooms(cfg)
	if err != nil {
		return err
	}

	registry := initAPIClient(cfg)
	notifiers := initNotifiers(cfg)
	source := campusSource{client: campus.NewClient(
		cfg.Campus.BaseURL, cfg.Campus.Usercode, cfg.Campus.Password)}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reconciliation failure here means no consistent view of the remote
	// registry; polling on top of that is unsafe.
	reconciler := worker.NewReconciler(registry, rooms, logger)
	if err := reconciler.Run(ctx, cfg.Worker.Prune); err != nil {
		return fmt.Errorf("reconcile rooms: %w", err)
	}

	poller := worker.NewPoller(source, registry, notifiers, worker.PollerConfig{
		Rooms:       rooms,
		Interval:    time.Duration(cfg.Worker.Interval) * time.Second,
		RoomDelay:   time.Duration(cfg.Worker.RoomDelay) * time.Second,
		AlarmLine:   cfg.Worker.AlarmLine,
		WarningLine: cfg.Worker.WarningLine,
	}, logger)

	logger.Info("worker started",
		"rooms", len(rooms),
		"interval_s", cfg.Worker.Interval,
		"alarm_line", cfg.Worker.AlarmLine,
		"warning_line", cfg.Worker.WarningLine,
	)

	if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("worker stopped")
	return nil
}
