// Package prompt содержит модель запроса названия песни перед экспортом
package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	inputStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)

// SubmitMsg отправляется, когда пользователь ввел название песни
type SubmitMsg struct {
	Label string
}

// CancelMsg отправляется при отмене ввода или пустом названии
type CancelMsg struct{}

// Model представляет модель запроса названия
type Model struct {
	input textinput.Model
	count int
}

// NewModel создает модель запроса с предложенным названием
func NewModel(suggested string, count int) *Model {
	input := textinput.New()
	input.Placeholder = "Название песни"
	input.CharLimit = 256
	input.Width = 50
	input.SetValue(suggested)
	input.PromptStyle = inputStyle
	input.TextStyle = inputStyle
	input.Focus()

	return &Model{
		input: input,
		count: count,
	}
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Value возвращает введенное название
func (m *Model) Value() string {
	return m.input.Value()
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return CancelMsg{} }

		case "enter":
			label := strings.TrimSpace(m.input.Value())
			if label == "" {
				return m, func() tea.Msg { return CancelMsg{} }
			}
			return m, func() tea.Msg { return SubmitMsg{Label: label} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	return fmt.Sprintf(
		"%s\n%s\n%s",
		titleStyle.Render(fmt.Sprintf("💾 Экспорт отметок (%d)", m.count)),
		m.input.View(),
		hintStyle.Render("Enter: сохранить • Esc: отмена"),
	)
}
