package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/0xKimutai/IDSnap/internal/common"
	"github.com/0xKimutai/IDSnap/internal/export"
	"github.com/0xKimutai/IDSnap/internal/history"
)

var exportCmd = &cobra.Command{
	Use:   "export <output.xlsx>",
	Short: "Export scan history to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := common.LoadConfig(viper.GetViper())
		logger := slog.Default()

		store, err := history.Open(cfg.History.DBPath, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		recs, err := store.List(cmd.Context(), 0)
		if err != nil {
			return err
		}

		data, err := export.NewService(logger).ExportScansXLSX(recs)
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		fmt.Printf("Wrote %d scans to %s\n", len(recs), args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
