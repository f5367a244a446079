// Package marker содержит основной экран: волновая форма, воспроизведение и отметки времени
package marker

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-wavemark/internal/metadata"
	"github.com/hazadus/go-wavemark/internal/player"
	"github.com/hazadus/go-wavemark/internal/session"
	"github.com/hazadus/go-wavemark/internal/timestamp"
	"github.com/hazadus/go-wavemark/internal/utils"
	"github.com/hazadus/go-wavemark/internal/waveform"
)

// Строка экрана, в которой выводится волновая форма (для кликов мышью)
const waveRow = 2

const (
	defaultWidth = 80
	listHeight   = 10
	smallStep    = 1.0
	largeStep    = 5.0
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0000ff"))

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	timeStyle = lipgloss.NewStyle().
			Bold(true)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#ff0000")).
			Padding(0, 2)

	statusStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aa00"))
	listTitleStyle    = lipgloss.NewStyle().Bold(true)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
)

// Events - источник событий воспроизведения
type Events interface {
	Progress() <-chan player.Status
	Done() <-chan struct{}
}

// ProgressMsg содержит позицию воспроизведения для загрузки с токеном Token
type ProgressMsg struct {
	Token  session.Token
	Status player.Status
}

// FinishedMsg отправляется при окончании трека
type FinishedMsg struct {
	Token session.Token
}

// OpenFileMsg запрашивает выбор другого файла
type OpenFileMsg struct{}

// ExportRequestMsg запрашивает экспорт отметок
type ExportRequestMsg struct{}

type focusArea int

const (
	waveFocus focusArea = iota
	listFocus
)

// stampItem реализует интерфейс list.Item для отметки
type stampItem float64

func (i stampItem) FilterValue() string {
	return timestamp.Format(float64(i))
}

// stampItemDelegate отображает отметки по одной в строке
type stampItemDelegate struct {
	focused *bool
}

func (d stampItemDelegate) Height() int                             { return 1 }
func (d stampItemDelegate) Spacing() int                            { return 0 }
func (d stampItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d stampItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(stampItem)
	if !ok {
		return
	}

	str := fmt.Sprintf("%3d. %s  (%s)", index+1, utils.FormatSeconds(float64(i)), timestamp.Format(float64(i)))

	fn := itemStyle.Render
	if *d.focused && index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет модель экрана отметок
type Model struct {
	controller  *session.Controller
	token       session.Token
	events      Events
	track       metadata.TrackMetadata
	peaks       waveform.Peaks
	style       waveform.Style
	progressBar progress.Model
	list        list.Model
	focus       focusArea
	listFocused bool
	notice      string // Блокирующее уведомление
	status      string
	err         error
	width       int
}

// NewModel создает модель экрана для контроллера сессии
func NewModel(controller *session.Controller) *Model {
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = defaultWidth

	m := &Model{
		controller:  controller,
		style:       waveform.DefaultStyle(),
		progressBar: prog,
		width:       defaultWidth,
	}

	l := list.New(nil, stampItemDelegate{focused: &m.listFocused}, defaultWidth, listHeight)
	l.Title = "Отметки"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = listTitleStyle
	m.list = l

	return m
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// StartLoading очищает экран перед загрузкой нового файла
func (m *Model) StartLoading(token session.Token, track metadata.TrackMetadata) {
	m.token = token
	m.track = track
	m.events = nil
	m.peaks = nil
	m.notice = ""
	m.status = ""
	m.err = nil
	m.setFocus(waveFocus)
	m.refreshList()
}

// Attach показывает загруженный трек и начинает слушать события воспроизведения
func (m *Model) Attach(token session.Token, events Events, track metadata.TrackMetadata, peaks waveform.Peaks) tea.Cmd {
	m.token = token
	m.events = events
	m.track = track
	m.peaks = peaks
	m.err = nil
	m.refreshList()
	return m.listen()
}

// SetError показывает ошибку загрузки
func (m *Model) SetError(err error) {
	m.err = err
	m.events = nil
	m.peaks = nil
	m.refreshList()
}

// SetStatus показывает сообщение в строке состояния
func (m *Model) SetStatus(status string) {
	m.status = status
}

// Track возвращает метаданные текущего трека
func (m *Model) Track() metadata.TrackMetadata {
	return m.track
}

// Notice возвращает текущее блокирующее уведомление
func (m *Model) Notice() string {
	return m.notice
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressBar.Width = msg.Width
		height := msg.Height - 10
		if height < 3 {
			height = 3
		}
		m.list.SetSize(msg.Width, height)
		return m, nil

	case ProgressMsg:
		if msg.Token != m.token {
			return m, nil
		}
		m.controller.UpdatePosition(msg.Token, msg.Status.Current)
		return m, m.listen()

	case FinishedMsg:
		if msg.Token != m.token {
			return m, nil
		}
		m.controller.Finished(msg.Token)
		return m, m.listen()

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	// Уведомление блокирует экран до нажатия любой клавиши
	if m.notice != "" {
		m.notice = ""
		return nil
	}

	switch msg.String() {
	case "q":
		return tea.Quit
	case "o":
		return func() tea.Msg { return OpenFileMsg{} }
	case "s":
		if len(m.controller.Timestamps()) == 0 {
			return nil
		}
		return func() tea.Msg { return ExportRequestMsg{} }
	case "tab":
		if m.focus == waveFocus && len(m.list.Items()) > 0 {
			m.setFocus(listFocus)
		} else {
			m.setFocus(waveFocus)
		}
		return nil
	}

	if m.focus == listFocus {
		return m.handleListKey(msg)
	}

	switch msg.String() {
	case " ":
		m.togglePlay()
	case "left":
		m.seekBy(-smallStep)
	case "right":
		m.seekBy(smallStep)
	case "shift+left":
		m.seekBy(-largeStep)
	case "shift+right":
		m.seekBy(largeStep)
	case "a", "enter":
		m.addTimestamp()
	}
	return nil
}

func (m *Model) handleListKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.setFocus(waveFocus)
		return nil
	case "x", "delete", "backspace":
		m.removeSelected()
		return nil
	case "up", "down", "k", "j", "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if msg.Y != waveRow || len(m.peaks) == 0 || m.notice != "" {
		return nil
	}

	cursor := waveform.Column(len(m.peaks), m.fraction())
	offset := waveform.Offset(len(m.peaks), cursor, m.width)
	m.seekTo(waveform.FractionAt(len(m.peaks), offset, msg.X))
	return nil
}

func (m *Model) togglePlay() {
	if _, err := m.controller.TogglePlay(); err != nil {
		m.err = err
	}
}

func (m *Model) seekBy(delta float64) {
	duration := m.controller.Duration().Seconds()
	if duration <= 0 {
		return
	}
	m.seekTo((m.controller.PreviewTime() + delta) / duration)
}

func (m *Model) seekTo(fraction float64) {
	_, err := m.controller.Seek(fraction)
	if err != nil && !errors.Is(err, session.ErrNotLoaded) {
		m.err = err
	}
}

func (m *Model) addTimestamp() {
	value, err := m.controller.AddTimestamp()
	switch {
	case errors.Is(err, timestamp.ErrDuplicateTimestamp):
		m.notice = fmt.Sprintf("Отметка %s уже добавлена", timestamp.Format(value))
		return
	case err != nil:
		return
	}

	m.status = ""
	m.refreshList()
	m.list.Select(len(m.list.Items()) - 1)
}

func (m *Model) removeSelected() {
	item, ok := m.list.SelectedItem().(stampItem)
	if !ok {
		return
	}
	index := m.list.Index()
	m.controller.RemoveTimestamp(float64(item))
	m.refreshList()

	count := len(m.list.Items())
	switch {
	case count == 0:
		m.setFocus(waveFocus)
	case index >= count:
		m.list.Select(count - 1)
	default:
		m.list.Select(index)
	}
}

func (m *Model) refreshList() {
	stamps := m.controller.Timestamps()
	items := make([]list.Item, len(stamps))
	for i, value := range stamps {
		items[i] = stampItem(value)
	}
	m.list.SetItems(items)
}

func (m *Model) setFocus(focus focusArea) {
	m.focus = focus
	m.listFocused = focus == listFocus
}

// fraction возвращает позицию предпросмотра как долю трека
func (m *Model) fraction() float64 {
	duration := m.controller.Duration().Seconds()
	if duration <= 0 {
		return 0
	}
	fraction := m.controller.PreviewTime() / duration
	if fraction > 1 {
		return 1
	}
	return fraction
}

// listen ждет следующее событие воспроизведения текущего трека
func (m *Model) listen() tea.Cmd {
	events := m.events
	token := m.token
	if events == nil {
		return nil
	}

	return func() tea.Msg {
		select {
		case status, ok := <-events.Progress():
			if !ok {
				return nil
			}
			return ProgressMsg{Token: token, Status: status}
		case <-events.Done():
			return FinishedMsg{Token: token}
		}
	}
}

// View отображает модель
func (m *Model) View() string {
	if m.notice != "" {
		return fmt.Sprintf(
			"%s\n\n%s",
			noticeStyle.Render("⚠️  "+m.notice),
			controlsStyle.Render("Нажмите любую клавишу, чтобы продолжить"),
		)
	}

	state := m.controller.State()
	lines := []string{
		titleStyle.Render("🎵 wavemark"),
		trackInfoStyle.Render(m.trackLine(state)),
	}

	switch state {
	case session.Empty:
		if m.err != nil {
			lines = append(lines, errorStyle.Render("❌ "+m.err.Error()))
		} else {
			lines = append(lines, trackInfoStyle.Render("Нажмите 'o', чтобы открыть аудиофайл"))
		}
	case session.Loading:
		lines = append(lines, trackInfoStyle.Render("⏳ Загрузка..."))
	default:
		fraction := m.fraction()
		lines = append(lines,
			waveform.Render(m.peaks, fraction, m.width, m.style),
			m.progressBar.ViewAs(fraction),
			timeStyle.Render(fmt.Sprintf(
				"%s %s / %s",
				stateIcon(state),
				utils.FormatSeconds(m.controller.PreviewTime()),
				utils.FormatDuration(m.controller.Duration()),
			)),
		)
		if m.err != nil {
			lines = append(lines, errorStyle.Render(m.err.Error()))
		}
		lines = append(lines, "", m.list.View())
	}

	if m.status != "" {
		lines = append(lines, statusStyle.Render(m.status))
	}

	lines = append(lines, controlsStyle.Render(
		"Пробел: пауза/воспроизведение • ←/→: ±1с • Shift+←/→: ±5с • a: отметка • Tab: список • x: удалить • s: экспорт • o: открыть • q: выход",
	))

	return strings.Join(lines, "\n")
}

func (m *Model) trackLine(state session.State) string {
	label := m.track.SongLabel()
	if label == "" {
		return state.String()
	}
	maxLen := m.width - 12
	if maxLen < 10 {
		maxLen = 10
	}
	return fmt.Sprintf("%s • %s", utils.TruncateString(label, maxLen), state)
}

func stateIcon(state session.State) string {
	if state == session.Playing {
		return "▶️"
	}
	return "⏸️"
}
