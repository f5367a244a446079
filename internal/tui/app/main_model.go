// Package app содержит основную логику TUI приложения
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-wavemark/internal/export"
	"github.com/hazadus/go-wavemark/internal/metadata"
	"github.com/hazadus/go-wavemark/internal/player"
	"github.com/hazadus/go-wavemark/internal/session"
	"github.com/hazadus/go-wavemark/internal/tui/marker"
	"github.com/hazadus/go-wavemark/internal/tui/picker"
	"github.com/hazadus/go-wavemark/internal/tui/prompt"
	"github.com/hazadus/go-wavemark/internal/waveform"
)

const exportTimeout = 30 * time.Second

// ScreenType определяет тип текущего экрана
type ScreenType int

// Константы для типов экранов
const (
	// MarkerScreen - экран волновой формы и отметок
	MarkerScreen ScreenType = iota
	// PickerScreen - экран выбора файла
	PickerScreen
	// PromptScreen - экран ввода названия песни
	PromptScreen
)

// Options настройки TUI
type Options struct {
	Stretch  int     // Ширина волновой формы в колонках
	Tempo    float64 // Множитель скорости воспроизведения
	StartDir string  // Начальный каталог выбора файла
	File     string  // Файл, который нужно открыть сразу
}

// Playback - загруженный трек: управление и события воспроизведения
type Playback interface {
	session.Waveform
	marker.Events
}

// LoadedMsg отправляется после успешной загрузки файла
type LoadedMsg struct {
	Token    session.Token
	Playback Playback
	Track    metadata.TrackMetadata
	Peaks    waveform.Peaks
	Duration time.Duration
}

// LoadFailedMsg отправляется при ошибке загрузки файла
type LoadFailedMsg struct {
	Token session.Token
	Err   error
}

// ExportDoneMsg содержит результат экспорта
type ExportDoneMsg struct {
	Result *export.Result
	Err    error
}

// MainModel представляет главную модель TUI
type MainModel struct {
	ctx           context.Context
	options       Options
	controller    *session.Controller
	globalPlayer  *player.Player
	extractor     *metadata.Extractor
	exporter      *export.Service
	currentScreen ScreenType
	markerModel   *marker.Model
	pickerModel   *picker.Model
	promptModel   *prompt.Model
	load          func(token session.Token, path string) tea.Msg
}

// NewMainModel создает новую главную модель
func NewMainModel(ctx context.Context, options Options, exporter *export.Service) *MainModel {
	if options.Stretch <= 0 {
		options.Stretch = waveform.DefaultStretch
	}
	if options.Tempo <= 0 {
		options.Tempo = player.DefaultTempo
	}

	controller := session.NewController()
	m := &MainModel{
		ctx:           ctx,
		options:       options,
		controller:    controller,
		globalPlayer:  player.NewPlayer(),
		extractor:     metadata.NewExtractor(),
		exporter:      exporter,
		currentScreen: PickerScreen,
		markerModel:   marker.NewModel(controller),
		pickerModel:   picker.NewModel(options.StartDir),
	}
	m.load = m.loadTrack
	return m
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	if m.options.File != "" {
		return m.startLoad(m.options.File)
	}
	return m.pickerModel.Init()
}

// Controller возвращает контроллер сессии
func (m *MainModel) Controller() *session.Controller {
	return m.controller
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Глобальные горячие клавиши
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		// Передаем размеры окна всем экранам
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.markerModel, cmd = m.markerModel.Update(msg)
		cmds = append(cmds, cmd)
		m.pickerModel, cmd = m.pickerModel.Update(msg)
		cmds = append(cmds, cmd)
		if m.promptModel != nil {
			m.promptModel, cmd = m.promptModel.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case picker.FileSelectedMsg:
		return m, m.startLoad(msg.Path)

	case picker.CancelMsg:
		m.currentScreen = MarkerScreen
		return m, nil

	case marker.OpenFileMsg:
		m.currentScreen = PickerScreen
		// Перечитываем каталог: файлы могли измениться
		return m, m.pickerModel.Init()

	case marker.ProgressMsg, marker.FinishedMsg:
		// События воспроизведения нужны экрану отметок на любом экране
		var cmd tea.Cmd
		m.markerModel, cmd = m.markerModel.Update(msg)
		return m, cmd

	case LoadedMsg:
		return m, m.handleLoaded(msg)

	case LoadFailedMsg:
		err := m.controller.Fail(msg.Token, msg.Err)
		if errors.Is(err, session.ErrStaleLoad) {
			log.Printf("пропущена ошибка устаревшей загрузки: %v", msg.Err)
			return m, nil
		}
		m.markerModel.SetError(err)
		return m, nil

	case marker.ExportRequestMsg:
		stamps := m.controller.Timestamps()
		if len(stamps) == 0 {
			return m, nil
		}
		m.promptModel = prompt.NewModel(m.markerModel.Track().SongLabel(), len(stamps))
		m.currentScreen = PromptScreen
		return m, m.promptModel.Init()

	case prompt.CancelMsg:
		m.currentScreen = MarkerScreen
		m.promptModel = nil
		return m, nil

	case prompt.SubmitMsg:
		m.currentScreen = MarkerScreen
		m.promptModel = nil
		return m, m.exportCmd(msg.Label, m.controller.Timestamps())

	case ExportDoneMsg:
		m.handleExportDone(msg)
		return m, nil
	}

	// Передаем сообщение активной модели
	var cmd tea.Cmd
	switch m.currentScreen {
	case MarkerScreen:
		m.markerModel, cmd = m.markerModel.Update(msg)
	case PickerScreen:
		m.pickerModel, cmd = m.pickerModel.Update(msg)
	case PromptScreen:
		if m.promptModel != nil {
			m.promptModel, cmd = m.promptModel.Update(msg)
		}
	}

	return m, cmd
}

// View отображает интерфейс
func (m *MainModel) View() string {
	switch m.currentScreen {
	case MarkerScreen:
		return m.markerModel.View()

	case PickerScreen:
		return m.pickerModel.View()

	case PromptScreen:
		if m.promptModel != nil {
			return m.promptModel.View()
		}
		return "Ошибка: модель ввода не инициализирована"

	default:
		return "Неизвестный экран"
	}
}

// Close закрывает ресурсы главной модели
func (m *MainModel) Close() {
	if err := m.controller.Close(); err != nil {
		log.Printf("ошибка закрытия трека: %v", err)
	}
}

// startLoad сбрасывает сессию и запускает асинхронную загрузку файла
func (m *MainModel) startLoad(path string) tea.Cmd {
	token := m.controller.BeginLoad(path)
	m.markerModel.StartLoading(token, metadata.TrackMetadata{Title: filepath.Base(path)})
	m.currentScreen = MarkerScreen

	load := m.load
	return func() tea.Msg {
		return load(token, path)
	}
}

// loadTrack декодирует файл, строит волновую форму и читает метаданные
func (m *MainModel) loadTrack(token session.Token, path string) tea.Msg {
	playback, err := m.globalPlayer.Load(path, player.Options{Tempo: m.options.Tempo})
	if err != nil {
		return LoadFailedMsg{Token: token, Err: err}
	}

	peaks, err := waveform.FromFile(path, m.options.Stretch)
	if err != nil {
		_ = playback.Close()
		return LoadFailedMsg{Token: token, Err: err}
	}

	duration := playback.Duration()
	if decoded, err := m.extractor.GetDuration(path); err == nil {
		duration = decoded
	}

	return LoadedMsg{
		Token:    token,
		Playback: playback,
		Track:    m.extractor.ExtractFromFile(path),
		Peaks:    peaks,
		Duration: duration,
	}
}

func (m *MainModel) handleLoaded(msg LoadedMsg) tea.Cmd {
	if err := m.controller.Attach(msg.Token, msg.Playback, msg.Duration); err != nil {
		log.Printf("пропущена загрузка: %v", err)
		return nil
	}
	return m.markerModel.Attach(msg.Token, msg.Playback, msg.Track, msg.Peaks)
}

func (m *MainModel) exportCmd(label string, stamps []float64) tea.Cmd {
	exporter := m.exporter
	parent := m.ctx
	return func() tea.Msg {
		if exporter == nil {
			return ExportDoneMsg{Err: errors.New("экспорт не настроен")}
		}
		ctx, cancel := context.WithTimeout(parent, exportTimeout)
		defer cancel()

		result, err := exporter.Export(ctx, label, stamps)
		return ExportDoneMsg{Result: result, Err: err}
	}
}

func (m *MainModel) handleExportDone(msg ExportDoneMsg) {
	switch {
	case errors.Is(msg.Err, export.ErrEmptyExport):
		return
	case msg.Err != nil:
		log.Printf("ошибка экспорта: %v", msg.Err)
		m.markerModel.SetStatus(fmt.Sprintf("❌ Ошибка экспорта: %v", msg.Err))
	default:
		m.markerModel.SetStatus("✅ Сохранено: " + strings.Join(msg.Result.Locations, ", "))
	}
}
