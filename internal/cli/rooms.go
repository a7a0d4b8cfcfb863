package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "Inspect the remote room registry",
}

var roomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered rooms",
	RunE:  runRoomsList,
}

var roomsHistoryCmd = &cobra.Command{
	Use:   "history <room-id>",
	Short: "Dump a room's reading history",
	Args:  cobra.ExactArgs(1),
	RunE:  runRoomsHistory,
}

func init() {
	rootCmd.AddCommand(roomsCmd)
	roomsCmd.AddCommand(roomsListCmd)
	roomsCmd.AddCommand(roomsHistoryCmd)

	roomsHistoryCmd.Flags().IntP("tail", "n", 0, "Show only the last N readings")
}

func runRoomsList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rooms, err := initAPIClient(cfg).ListRooms(cmd.Context())
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tNAME\tGROUP\tTABLE\n")
	for _, room := range rooms {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", room.ID, room.Name, room.Group, room.TableName)
	}
	return w.Flush()
}

func runRoomsHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	readings, err := initAPIClient(cfg).ListReadings(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("list readings: %w", err)
	}

	tail, _ := cmd.Flags().GetInt("tail")
	if tail > 0 && len(readings) > tail {
		readings = readings[len(readings)-tail:]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TIME\tBALANCE\n")
	for _, r := range readings {
		fmt.Fprintf(w, "%s\t%.2f\n",
			time.Unix(r.Timestamp, 0).Format("2006-01-02 15:04:05"), r.Electricity)
	}
	return w.Flush()
}
