package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/0xKimutai/IDSnap/internal/common"
	"github.com/0xKimutai/IDSnap/internal/history"
	"github.com/0xKimutai/IDSnap/internal/ocr"
	"github.com/0xKimutai/IDSnap/internal/pipeline"
	"github.com/0xKimutai/IDSnap/internal/preprocess"
	"github.com/0xKimutai/IDSnap/internal/registry"
)

var scanCmd = &cobra.Command{
	Use:   "scan <image>",
	Short: "Recognize an identity document image and extract its fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := common.LoadConfig(viper.GetViper())
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger := slog.Default()

		reg := registry.Default()
		if cfg.Pipeline.RegistryOverlay != "" {
			var err error
			if reg, err = registry.LoadOverlay(cfg.Pipeline.RegistryOverlay); err != nil {
				return err
			}
			logger.Info("registry overlay loaded", "path", cfg.Pipeline.RegistryOverlay)
		}

		prep := preprocess.New(preprocess.Config{}, logger)
		engine := ocr.NewTesseractEngine(cfg.OCR.Language, cfg.OCR.PSM)
		p := pipeline.New(pipeline.Config{
			EngineTimeout:   cfg.Pipeline.EngineTimeout,
			MaxRetries:      cfg.Pipeline.MaxRetries,
			RetryDelay:      cfg.Pipeline.RetryDelay,
			MinImageQuality: cfg.Pipeline.MinImageQuality,
		}, engine, prep, prep, reg, logger)

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()

		res, err := p.Process(ctx, args[0], func(ev pipeline.Event) {
			fmt.Fprintf(os.Stderr, "  [%3.0f%%] %s\n", ev.Progress*100, ev.Stage)
		})
		if err != nil {
			return err
		}

		printResult(res)

		noSave, _ := cmd.Flags().GetBool("no-save")
		if noSave {
			return nil
		}
		store, err := history.Open(cfg.History.DBPath, logger)
		if err != nil {
			return err
		}
		defer store.Close()
		rec, err := store.Save(ctx, history.Record{
			ImageRef: args[0],
			Format:   string(res.Format),
			Fields:   res.Fields,
			RawText:  res.RawText,
			Score:    res.Quality.Score,
			Level:    string(res.Quality.Level),
		})
		if err != nil {
			return err
		}
		fmt.Printf("\nSaved as %s\n", rec.ID)
		return nil
	},
}

func printResult(res *pipeline.Result) {
	fmt.Printf("Format:  %s\n", res.Format)
	fmt.Printf("Quality: %s (%.2f)\n", res.Quality.Level, res.Quality.Score)
	fmt.Printf("Time:    %dms\n\n", res.ProcessingTimeMs)

	keys := make([]string, 0, len(res.Fields))
	for k := range res.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-18s %-30s (%.2f)\n", k, res.Fields[k], res.Confidence[k])
	}

	for _, e := range res.Validation.Errors {
		fmt.Printf("\n  ERROR:   %s", e)
	}
	for _, w := range res.Validation.Warnings {
		fmt.Printf("\n  WARNING: %s", w)
	}
	fmt.Println()
	for _, r := range res.Quality.Recommendations {
		fmt.Printf("  > %s\n", r)
	}
}

func init() {
	scanCmd.Flags().Bool("no-save", false, "print the result without writing it to history")
	rootCmd.AddCommand(scanCmd)
}
