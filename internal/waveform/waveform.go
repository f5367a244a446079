// Package waveform строит и отображает волновую форму трека в терминале
package waveform

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gopxl/beep"

	"github.com/hazadus/go-wavemark/internal/audio"
)

// DefaultStretch ширина волновой формы в колонках по умолчанию
const DefaultStretch = 2000

const chunkSize = 4096

var bars = []rune(" ▁▂▃▄▅▆▇█")

// Style задает цвета волновой формы
type Style struct {
	Wave     lipgloss.Style
	Progress lipgloss.Style
	Cursor   lipgloss.Style
}

// DefaultStyle возвращает цвета по умолчанию: белая волна, красный прогресс, зеленый курсор
func DefaultStyle() Style {
	return Style{
		Wave:     lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")),
		Progress: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")),
		Cursor:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00")).Bold(true),
	}
}

// Peaks - нормализованные пики (0..1), по одному на колонку
type Peaks []float64

// FromFile декодирует файл и строит пики заданной ширины
func FromFile(path string, width int) (Peaks, error) {
	stream, err := audio.Open(path)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	return FromStream(stream.Streamer, width)
}

// FromStream читает поток до конца и строит пики заданной ширины
func FromStream(streamer beep.StreamSeeker, width int) (Peaks, error) {
	if width <= 0 {
		return nil, fmt.Errorf("ширина волновой формы должна быть положительной: %d", width)
	}

	total := streamer.Len()
	peaks := make(Peaks, width)
	if total <= 0 {
		return peaks, nil
	}

	buf := make([][2]float64, chunkSize)
	position := 0
	for {
		n, ok := streamer.Stream(buf)
		for i := 0; i < n; i++ {
			column := int(int64(position+i) * int64(width) / int64(total))
			if column >= width {
				column = width - 1
			}
			amplitude := math.Max(math.Abs(buf[i][0]), math.Abs(buf[i][1]))
			if amplitude > peaks[column] {
				peaks[column] = amplitude
			}
		}
		position += n
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения аудиопотока: %w", err)
	}

	peaks.normalize()
	return peaks, nil
}

func (p Peaks) normalize() {
	maxPeak := 0.0
	for _, v := range p {
		maxPeak = math.Max(maxPeak, v)
	}
	if maxPeak == 0 {
		return
	}
	for i := range p {
		p[i] /= maxPeak
	}
}

// Offset возвращает первую видимую колонку окна шириной viewWidth,
// при которой курсор остается в поле зрения
func Offset(total, cursor, viewWidth int) int {
	if viewWidth <= 0 || total <= viewWidth {
		return 0
	}
	offset := cursor - viewWidth/2
	if offset < 0 {
		offset = 0
	}
	if offset > total-viewWidth {
		offset = total - viewWidth
	}
	return offset
}

// Column переводит долю трека в номер колонки
func Column(total int, fraction float64) int {
	if total <= 0 {
		return 0
	}
	column := int(fraction * float64(total))
	switch {
	case column < 0:
		return 0
	case column >= total:
		return total - 1
	default:
		return column
	}
}

// FractionAt переводит колонку окна (например, клик мышью) в долю трека
func FractionAt(total, offset, x int) float64 {
	if total <= 0 {
		return 0
	}
	column := offset + x
	if column < 0 {
		column = 0
	}
	if column >= total {
		column = total - 1
	}
	return float64(column) / float64(total)
}

// Render отображает окно волновой формы шириной viewWidth с курсором на доле fraction
func Render(peaks Peaks, fraction float64, viewWidth int, style Style) string {
	if len(peaks) == 0 || viewWidth <= 0 {
		return ""
	}

	cursor := Column(len(peaks), fraction)
	offset := Offset(len(peaks), cursor, viewWidth)
	end := offset + viewWidth
	if end > len(peaks) {
		end = len(peaks)
	}

	var played, rest strings.Builder
	var cursorBar string
	for i := offset; i < end; i++ {
		glyph := string(bar(peaks[i]))
		switch {
		case i < cursor:
			played.WriteString(glyph)
		case i == cursor:
			cursorBar = glyph
			if peaks[i] == 0 {
				cursorBar = "│"
			}
		default:
			rest.WriteString(glyph)
		}
	}

	return style.Progress.Render(played.String()) +
		style.Cursor.Render(cursorBar) +
		style.Wave.Render(rest.String())
}

func bar(peak float64) rune {
	index := int(math.Round(peak * float64(len(bars)-1)))
	if index < 0 {
		index = 0
	}
	if index >= len(bars) {
		index = len(bars) - 1
	}
	return bars[index]
}
