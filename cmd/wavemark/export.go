package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-wavemark/internal/export"
	"github.com/hazadus/go-wavemark/internal/timestamp"
)

// createExportCommand создает команду export с привязкой к экземпляру приложения
func (app *Application) createExportCommand(ctx context.Context) *cobra.Command {
	var song string

	cmd := &cobra.Command{
		Use:   "export --song NAME [seconds...]",
		Short: "Export timestamps as <song>.json without opening the TUI",
		Long: `Build a timestamp list from the arguments (in the given order, duplicates rejected)
and write {"song": NAME, "timestamps": [...]} to <NAME>.json in the export directory.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return app.exportTimestamps(ctx, song, args)
		},
	}
	cmd.Flags().StringVar(&song, "song", "", "song name used as the label and file name")
	_ = cmd.MarkFlagRequired("song")

	return cmd
}

func (app *Application) exportTimestamps(ctx context.Context, song string, args []string) error {
	store := timestamp.NewStore()
	for _, arg := range args {
		value, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("неверная отметка времени: %s", arg)
		}
		if err := store.Add(timestamp.Round(value)); err != nil {
			return err
		}
	}

	exporter, err := app.newExporter()
	if err != nil {
		return err
	}

	result, err := exporter.Export(ctx, song, store.List())
	if errors.Is(err, export.ErrEmptyExport) {
		fmt.Println("⚠️  Нечего экспортировать: укажите название песни и хотя бы одну отметку")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("💾 Экспортировано отметок: %d\n", len(result.Document.Timestamps))
	for _, location := range result.Locations {
		fmt.Printf("   %s\n", location)
	}
	return nil
}
