package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/0xKimutai/IDSnap/constants"
	"github.com/0xKimutai/IDSnap/internal/common"
	"github.com/0xKimutai/IDSnap/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past scans, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := common.LoadConfig(viper.GetViper())
		store, err := history.Open(cfg.History.DBPath, slog.Default())
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		recs, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Println("No scans recorded yet.")
			return nil
		}
		for _, rec := range recs {
			fmt.Printf("%s  %s  %-11s  %-9s  %s\n",
				rec.ID,
				rec.CreatedAt.Format("2006-01-02 15:04"),
				rec.Format,
				rec.Level,
				rec.Fields[constants.FieldName],
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of scans to list (0 for all)")
	rootCmd.AddCommand(historyCmd)
}
