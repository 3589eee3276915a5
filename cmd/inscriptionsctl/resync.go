package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"membershipevents/internal/bootstrap"
)

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Rebuild derived inscription views and repair seat ledgers",
	Long: `Recounts confirmed seats for every event and, for the badger backend, rebuilds
every per-event and per-user list from the canonical inscription records.

Safe to run repeatedly. The report is printed as JSON.

Examples:
  # Resync the configured backend
  inscriptionsctl resync

  # Resync a badger store at a specific path
  STORAGE_BACKEND=badger BADGER_PATH=/var/lib/inscriptions inscriptionsctl resync`,
	RunE: func(cmd *cobra.Command, args []string) error {
		storage, err := bootstrap.OpenStorage(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer storage.Close()

		report, err := storage.Inscriptions.Resync(cmd.Context())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	rootCmd.AddCommand(resyncCmd)
}
