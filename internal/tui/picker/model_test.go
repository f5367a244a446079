package picker

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestNewModel(t *testing.T) {
	dir := t.TempDir()
	model := NewModel(dir)

	if model.picker.CurrentDirectory != dir {
		t.Errorf("Ожидался каталог %s, получено %s", dir, model.picker.CurrentDirectory)
	}

	allowed := model.picker.AllowedTypes
	if len(allowed) != 2 || allowed[0] != ".mp3" || allowed[1] != ".wav" {
		t.Errorf("Неожиданные допустимые типы: %v", allowed)
	}
}

func TestNewModelDefaultsToWorkingDirectory(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Skip("рабочий каталог недоступен")
	}

	model := NewModel("")
	if model.picker.CurrentDirectory != wd {
		t.Errorf("Ожидался каталог %s, получено %s", wd, model.picker.CurrentDirectory)
	}
}

func TestCancel(t *testing.T) {
	model := NewModel(t.TempDir())

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("Ожидалась команда после q")
	}
	if _, ok := cmd().(CancelMsg); !ok {
		t.Error("Ожидалось сообщение CancelMsg")
	}
}

func TestSelectFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.wav")
	if err := os.WriteFile(path, []byte("RIFF"), 0644); err != nil {
		t.Fatalf("Ошибка создания файла: %v", err)
	}

	model := NewModel(dir)
	model, _ = model.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	// Читаем каталог синхронно
	readDir := model.Init()
	if readDir == nil {
		t.Fatal("Ожидалась команда чтения каталога")
	}
	model, _ = model.Update(readDir())

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Ожидалась команда после выбора файла")
	}

	msg, ok := cmd().(FileSelectedMsg)
	if !ok {
		t.Fatal("Ожидалось сообщение FileSelectedMsg")
	}
	if msg.Path != path {
		t.Errorf("Ожидался путь %s, получено %s", path, msg.Path)
	}
}

func TestView(t *testing.T) {
	model := NewModel(t.TempDir())
	if model.View() == "" {
		t.Error("Представление не должно быть пустым")
	}
}
