package marker

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-wavemark/internal/metadata"
	"github.com/hazadus/go-wavemark/internal/player"
	"github.com/hazadus/go-wavemark/internal/session"
	"github.com/hazadus/go-wavemark/internal/waveform"
)

// mockWaveform мок экземпляра воспроизведения
type mockWaveform struct {
	playing  bool
	seekedTo []float64
	closed   bool
}

func (m *mockWaveform) Play() error                 { m.playing = true; return nil }
func (m *mockWaveform) Pause()                      { m.playing = false }
func (m *mockWaveform) Seek(fraction float64) error { m.seekedTo = append(m.seekedTo, fraction); return nil }
func (m *mockWaveform) Close() error                { m.closed = true; return nil }

// fakeEvents источник событий с управляемыми каналами
type fakeEvents struct {
	progress chan player.Status
	done     chan struct{}
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{
		progress: make(chan player.Status, 1),
		done:     make(chan struct{}, 1),
	}
}

func (f *fakeEvents) Progress() <-chan player.Status { return f.progress }
func (f *fakeEvents) Done() <-chan struct{}          { return f.done }

// loadedModel возвращает модель с загруженным треком длительностью 10 секунд
func loadedModel(t *testing.T) (*Model, *session.Controller, *mockWaveform, *fakeEvents) {
	t.Helper()

	controller := session.NewController()
	token := controller.BeginLoad("song.wav")
	wave := &mockWaveform{}
	if err := controller.Attach(token, wave, 10*time.Second); err != nil {
		t.Fatalf("Неожиданная ошибка Attach: %v", err)
	}

	model := NewModel(controller)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 30})

	events := newFakeEvents()
	peaks := make(waveform.Peaks, 80)
	for i := range peaks {
		peaks[i] = 0.5
	}
	track := metadata.TrackMetadata{Artist: "Artist", Title: "Title"}
	if cmd := model.Attach(token, events, track, peaks); cmd == nil {
		t.Fatal("Attach должен вернуть команду прослушивания событий")
	}
	return model, controller, wave, events
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "shift+right":
		return tea.KeyMsg{Type: tea.KeyShiftRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "delete":
		return tea.KeyMsg{Type: tea.KeyDelete}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestSeekKeys(t *testing.T) {
	model, controller, _, _ := loadedModel(t)

	model, _ = model.Update(key("right"))
	if controller.PreviewTime() != 1 {
		t.Errorf("Ожидалось время 1, получено %v", controller.PreviewTime())
	}

	model, _ = model.Update(key("shift+right"))
	if controller.PreviewTime() != 6 {
		t.Errorf("Ожидалось время 6, получено %v", controller.PreviewTime())
	}

	model.Update(key("left"))
	if controller.PreviewTime() != 5 {
		t.Errorf("Ожидалось время 5, получено %v", controller.PreviewTime())
	}
}

func TestAddTimestampAndDuplicateNotice(t *testing.T) {
	model, controller, _, _ := loadedModel(t)

	// Позиция 0.4 при длительности 10 секунд
	model.Update(ProgressMsg{Token: controller.Token(), Status: player.Status{Current: 4 * time.Second}})
	model.Update(key("a"))

	if got := controller.Timestamps(); len(got) != 1 || got[0] != 4 {
		t.Fatalf("Ожидались отметки [4], получено %v", got)
	}
	if len(model.list.Items()) != 1 {
		t.Errorf("Ожидался 1 элемент в списке, получено %d", len(model.list.Items()))
	}

	model.Update(key("enter"))
	if model.Notice() == "" {
		t.Fatal("Ожидалось уведомление о дубликате")
	}
	if len(controller.Timestamps()) != 1 {
		t.Error("Дубликат не должен изменять список отметок")
	}
	if !strings.Contains(model.View(), "уже добавлена") {
		t.Error("Представление должно показывать уведомление")
	}

	// Уведомление блокирует остальные действия
	model.Update(key("right"))
	if model.Notice() != "" {
		t.Error("Уведомление должно закрываться нажатием клавиши")
	}
	if controller.PreviewTime() != 4 {
		t.Error("Клавиша, закрывшая уведомление, не должна перематывать трек")
	}
}

func TestTogglePlay(t *testing.T) {
	model, controller, wave, _ := loadedModel(t)

	model.Update(key(" "))
	if controller.State() != session.Playing || !wave.playing {
		t.Errorf("Ожидалось воспроизведение, состояние %v", controller.State())
	}

	model.Update(key(" "))
	if controller.State() != session.Ready || wave.playing {
		t.Errorf("Ожидалась пауза, состояние %v", controller.State())
	}
}

func TestStaleProgressIgnored(t *testing.T) {
	model, controller, _, _ := loadedModel(t)

	_, cmd := model.Update(ProgressMsg{Token: controller.Token() + 1, Status: player.Status{Current: 7 * time.Second}})
	if cmd != nil {
		t.Error("Устаревшее событие не должно продолжать прослушивание")
	}
	if controller.PreviewTime() != 0 {
		t.Errorf("Устаревшее событие не должно менять позицию, получено %v", controller.PreviewTime())
	}
}

func TestListen(t *testing.T) {
	model, controller, _, events := loadedModel(t)

	events.progress <- player.Status{Current: 2500 * time.Millisecond, IsPlaying: true}
	msg, ok := model.listen()().(ProgressMsg)
	if !ok {
		t.Fatal("Ожидалось сообщение ProgressMsg")
	}
	if msg.Token != controller.Token() {
		t.Errorf("Ожидался токен %d, получено %d", controller.Token(), msg.Token)
	}

	events.done <- struct{}{}
	if _, ok := model.listen()().(FinishedMsg); !ok {
		t.Error("Ожидалось сообщение FinishedMsg")
	}

	close(events.progress)
	if msg := model.listen()(); msg != nil {
		t.Errorf("После закрытия канала ожидался nil, получено %v", msg)
	}
}

func TestFinished(t *testing.T) {
	model, controller, _, _ := loadedModel(t)

	model.Update(key(" "))
	model.Update(FinishedMsg{Token: controller.Token()})
	if controller.State() != session.Ready {
		t.Errorf("Ожидалось состояние Ready, получено %v", controller.State())
	}
}

func TestMouseClickSeeks(t *testing.T) {
	model, controller, wave, _ := loadedModel(t)

	model.Update(tea.MouseMsg{X: 40, Y: waveRow, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if len(wave.seekedTo) != 1 || wave.seekedTo[0] != 0.5 {
		t.Fatalf("Ожидалась перемотка на 0.5, получено %v", wave.seekedTo)
	}
	if controller.PreviewTime() != 5 {
		t.Errorf("Ожидалось время 5, получено %v", controller.PreviewTime())
	}

	// Клик вне волновой формы игнорируется
	model.Update(tea.MouseMsg{X: 10, Y: waveRow + 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if len(wave.seekedTo) != 1 {
		t.Error("Клик вне волновой формы не должен перематывать")
	}
}

func TestRemoveFromList(t *testing.T) {
	model, controller, _, _ := loadedModel(t)

	model.Update(key("a"))
	model.Update(key("right"))
	model.Update(key("a"))
	if len(controller.Timestamps()) != 2 {
		t.Fatalf("Ожидалось 2 отметки, получено %v", controller.Timestamps())
	}

	model.Update(key("tab"))
	if model.focus != listFocus {
		t.Fatal("Tab должен переводить фокус на список")
	}

	// Выбрана последняя добавленная отметка
	model.Update(key("x"))
	if got := controller.Timestamps(); len(got) != 1 || got[0] != 0 {
		t.Errorf("Ожидались отметки [0], получено %v", got)
	}

	model.Update(key("delete"))
	if len(controller.Timestamps()) != 0 {
		t.Errorf("Ожидался пустой список, получено %v", controller.Timestamps())
	}
	if model.focus != waveFocus {
		t.Error("При пустом списке фокус должен вернуться на волновую форму")
	}
}

func TestExportRequest(t *testing.T) {
	model, _, _, _ := loadedModel(t)

	// Без отметок экспорт не запрашивается
	if _, cmd := model.Update(key("s")); cmd != nil {
		t.Error("Экспорт без отметок не должен ничего делать")
	}

	model.Update(key("a"))
	_, cmd := model.Update(key("s"))
	if cmd == nil {
		t.Fatal("Ожидалась команда экспорта")
	}
	if _, ok := cmd().(ExportRequestMsg); !ok {
		t.Error("Ожидалось сообщение ExportRequestMsg")
	}
}

func TestOpenAndQuit(t *testing.T) {
	model, _, _, _ := loadedModel(t)

	_, cmd := model.Update(key("o"))
	if cmd == nil {
		t.Fatal("Ожидалась команда открытия файла")
	}
	if _, ok := cmd().(OpenFileMsg); !ok {
		t.Error("Ожидалось сообщение OpenFileMsg")
	}

	_, cmd = model.Update(key("q"))
	if cmd == nil {
		t.Fatal("Ожидалась команда выхода")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Ожидалось сообщение tea.QuitMsg")
	}
}

func TestViewStates(t *testing.T) {
	controller := session.NewController()
	model := NewModel(controller)

	if !strings.Contains(model.View(), "открыть аудиофайл") {
		t.Error("Пустое состояние должно предлагать открыть файл")
	}

	token := controller.BeginLoad("song.wav")
	model.StartLoading(token, metadata.TrackMetadata{Title: "song"})
	if !strings.Contains(model.View(), "Загрузка") {
		t.Error("Ожидалось сообщение о загрузке")
	}

	loaded, _, _, _ := loadedModel(t)
	view := loaded.View()
	if !strings.Contains(view, "Artist - Title") {
		t.Error("Представление должно содержать название трека")
	}
	if lines := strings.Split(view, "\n"); len(lines) <= waveRow || !strings.Contains(lines[waveRow], "▄") {
		t.Errorf("Волновая форма должна быть в строке %d", waveRow)
	}
}
