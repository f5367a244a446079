// Package audio декодирует локальные аудиофайлы в потоки beep
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// ErrUnsupportedFormat возвращается для файлов с неизвестным расширением
var ErrUnsupportedFormat = errors.New("неподдерживаемый формат аудио")

// Stream содержит декодированный поток и его формат
type Stream struct {
	Streamer beep.StreamSeekCloser
	Format   beep.Format
}

// Duration возвращает продолжительность потока
func (s *Stream) Duration() time.Duration {
	return s.Format.SampleRate.D(s.Streamer.Len())
}

// Close закрывает поток вместе с файлом
func (s *Stream) Close() error {
	return s.Streamer.Close()
}

// Extensions возвращает список поддерживаемых расширений
func Extensions() []string {
	return []string{".mp3", ".wav"}
}

// IsSupported проверяет, поддерживается ли файл по расширению
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// Open открывает и декодирует аудиофайл
func Open(path string) (*Stream, error) {
	if !IsSupported(path) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(file)
	case ".wav":
		streamer, format, err = wav.Decode(file)
	}
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("ошибка декодирования %s: %w", filepath.Base(path), err)
	}

	return &Stream{Streamer: streamer, Format: format}, nil
}
