package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-wavemark/internal/config"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wavemark [audio file]",
		Short: "Mark timestamps on an audio waveform and export them as JSON",
		Long: `A terminal tool to view the waveform of a local mp3/wav file, play and scrub it,
mark the playhead position as timestamps and export them as <song>.json.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return app.loadConfig(cmd)
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return app.launchTUI(ctx, args)
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", defaultConfigPath, "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&app.exportDir, "export-dir", "", "directory for exported JSON files (default from config, ~/Downloads)")
	rootCmd.Flags().IntVar(&app.stretch, "stretch", config.DefaultStretch, "waveform render width in columns")
	rootCmd.Flags().Float64Var(&app.tempo, "tempo", config.DefaultTempo, "playback rate multiplier")

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createInfoCommand())
	rootCmd.AddCommand(app.createExportCommand(ctx))

	return rootCmd
}

// loadConfig загружает конфигурацию и применяет флаги командной строки
func (app *Application) loadConfig(cmd *cobra.Command) error {
	if app.Config == nil {
		cfg, err := config.LoadConfig(app.configPath)
		if err != nil {
			return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
		}
		app.Config = cfg
	}

	if flag := cmd.Flags().Lookup("stretch"); flag != nil && flag.Changed {
		app.Config.Stretch = app.stretch
	}
	if flag := cmd.Flags().Lookup("tempo"); flag != nil && flag.Changed {
		app.Config.Tempo = app.tempo
	}
	if app.exportDir != "" {
		dir, err := config.ExpandHome(app.exportDir)
		if err != nil {
			return err
		}
		app.Config.ExportDir = dir
	}

	return app.Config.Validate()
}
