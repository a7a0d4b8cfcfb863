package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Illustar0/oneMonitor/pkg/worker"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the local room list with the remote registry once",
	RunE:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().Bool("prune", false, "Delete remote rooms absent from the local declaration (destructive)")
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateWorker(); err != nil {
		return err
	}

	prune, _ := cmd.Flags().GetBool("prune")
	if cmd.Flags().Changed("prune") {
		cfg.Worker.Prune = prune
	}

	logger := newLogger(cfg)

	rooms, err := loadRooms(cfg)
	if err != nil {
		return err
	}

	reconciler := worker.NewReconciler(initAPIClient(cfg), rooms, logger)
	if err := reconciler.Run(cmd.Context(), cfg.Worker.Prune); err != nil {
		return fmt.Errorf("reconcile rooms: %w", err)
	}
	return nil
}
