package main

import (
	"context"
	"fmt"

	"github.com/hazadus/go-wavemark/internal/audio"
	"github.com/hazadus/go-wavemark/internal/tui"
	tuiapp "github.com/hazadus/go-wavemark/internal/tui/app"
)

func (app *Application) launchTUI(ctx context.Context, args []string) error {
	options := app.tuiOptions()
	if len(args) > 0 {
		if !audio.IsSupported(args[0]) {
			return fmt.Errorf("%w: %s", audio.ErrUnsupportedFormat, args[0])
		}
		options.File = args[0]
	}

	exporter, err := app.newExporter()
	if err != nil {
		return err
	}

	// Создаем экземпляр TUI приложения
	tuiApp := tui.NewApp(options, exporter, app.Config.LogFile)

	// Запускаем TUI
	if err := tuiApp.Run(ctx); err != nil {
		return fmt.Errorf("ошибка TUI: %w", err)
	}
	return nil
}

func (app *Application) tuiOptions() tuiapp.Options {
	return tuiapp.Options{
		Stretch: app.Config.Stretch,
		Tempo:   app.Config.Tempo,
	}
}
