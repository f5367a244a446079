// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-wavemark/internal/export"
	"github.com/hazadus/go-wavemark/internal/tui/app"
)

// App представляет основное TUI приложение
type App struct {
	options  app.Options
	exporter *export.Service
	logFile  string
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(options app.Options, exporter *export.Service, logFile string) *App {
	return &App{
		options:  options,
		exporter: exporter,
		logFile:  logFile,
	}
}

// Run запускает TUI приложение
func (tuiApp *App) Run(ctx context.Context) error {
	// Журнал не должен портить альтернативный экран
	if tuiApp.logFile != "" {
		f, err := tea.LogToFile(tuiApp.logFile, "wavemark")
		if err != nil {
			return fmt.Errorf("ошибка открытия журнала: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}
	defer log.SetOutput(os.Stderr)

	// Создаем модель для Bubble Tea
	model := app.NewMainModel(ctx, tuiApp.options, tuiApp.exporter)

	// Создаем программу Bubble Tea
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	// Запускаем программу
	_, err := p.Run()

	// Закрываем трек после завершения программы
	model.Close()

	if ctx.Err() != nil {
		return nil
	}
	return err
}
