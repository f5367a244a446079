// Package picker содержит модель выбора аудиофайла для TUI
package picker

import (
	"fmt"
	"os"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-wavemark/internal/audio"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// FileSelectedMsg отправляется при выборе аудиофайла
type FileSelectedMsg struct {
	Path string
}

// CancelMsg отправляется при выходе из выбора файла
type CancelMsg struct{}

// Model представляет модель выбора файла
type Model struct {
	picker filepicker.Model
	notice string
}

// NewModel создает модель выбора файла, начиная с каталога dir
func NewModel(dir string) *Model {
	fp := filepicker.New()
	fp.AllowedTypes = audio.Extensions()
	fp.ShowSize = true
	fp.ShowPermissions = false
	fp.AutoHeight = true

	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			dir = wd
		}
	}
	fp.CurrentDirectory = dir

	return &Model{picker: fp}
}

// Init читает начальный каталог
func (m *Model) Init() tea.Cmd {
	return m.picker.Init()
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q":
			return m, func() tea.Msg { return CancelMsg{} }
		}
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.notice = ""
		return m, func() tea.Msg { return FileSelectedMsg{Path: path} }
	}

	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.notice = fmt.Sprintf("Формат не поддерживается: %s", path)
	}

	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	view := titleStyle.Render("🎧 Выберите аудиофайл") + "\n" + m.picker.View()
	if m.notice != "" {
		view += "\n" + errorStyle.Render(m.notice)
	}
	return view + "\n" + helpStyle.Render("Enter: открыть • ←/→: каталоги • q: назад")
}
