// Package export сериализует отметки времени в JSON документ и сохраняет его
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazadus/go-wavemark/internal/s3"
)

// ContentType тип содержимого экспортируемого документа
const ContentType = "application/json"

// ErrEmptyExport возвращается, если нет отметок или не указано название песни
var ErrEmptyExport = errors.New("нечего экспортировать")

// Document - экспортируемый JSON документ
type Document struct {
	Song       string    `json:"song"`
	Timestamps []float64 `json:"timestamps"`
}

// Marshal сериализует название песни и отметки в JSON
func Marshal(label string, timestamps []float64) ([]byte, error) {
	if strings.TrimSpace(label) == "" || len(timestamps) == 0 {
		return nil, ErrEmptyExport
	}

	doc := Document{
		Song:       label,
		Timestamps: timestamps,
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(doc); err != nil {
		return nil, fmt.Errorf("ошибка сериализации: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// FileName возвращает имя файла для песни: <label>.json
func FileName(label string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(label)
	return name + ".json"
}

// Sink принимает готовый документ и сохраняет его
type Sink interface {
	Save(ctx context.Context, name string, payload []byte) (string, error)
}

// Result описывает результат экспорта
type Result struct {
	Document Document
	Payload  []byte
	// Locations - путь или URL для каждого приемника
	Locations []string
}

// Service экспортирует отметки во все настроенные приемники
type Service struct {
	sinks []Sink
}

// NewService создает сервис экспорта
func NewService(sinks ...Sink) *Service {
	return &Service{sinks: sinks}
}

// Export сериализует отметки и передает документ приемникам.
// ErrEmptyExport означает, что экспорт не нужен.
func (s *Service) Export(ctx context.Context, label string, timestamps []float64) (*Result, error) {
	payload, err := Marshal(label, timestamps)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Document: Document{Song: label, Timestamps: timestamps},
		Payload:  payload,
	}

	name := FileName(label)
	for _, sink := range s.sinks {
		location, err := sink.Save(ctx, name, payload)
		if err != nil {
			return result, err
		}
		result.Locations = append(result.Locations, location)
	}
	return result, nil
}

// FileSink сохраняет документ в каталог
type FileSink struct {
	Dir string
}

// Save записывает документ в файл и возвращает путь
func (f FileSink) Save(_ context.Context, name string, payload []byte) (string, error) {
	if err := os.MkdirAll(f.Dir, 0755); err != nil {
		return "", fmt.Errorf("ошибка создания каталога %s: %w", f.Dir, err)
	}

	path := filepath.Join(f.Dir, name)
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return "", fmt.Errorf("ошибка записи файла: %w", err)
	}
	return path, nil
}

// objectUploader часть s3.Uploader, нужная приемнику
type objectUploader interface {
	UploadFile(ctx context.Context, reader io.Reader, key, contentType string) (string, error)
}

var _ objectUploader = (*s3.Uploader)(nil)

// S3Sink публикует документ в бакет S3
type S3Sink struct {
	uploader objectUploader
	prefix   string
}

// NewS3Sink создает приемник для S3. Ключ объекта - prefix + имя файла.
func NewS3Sink(uploader *s3.Uploader, prefix string) *S3Sink {
	return &S3Sink{uploader: uploader, prefix: prefix}
}

// Save загружает документ в S3 и возвращает URL
func (s *S3Sink) Save(ctx context.Context, name string, payload []byte) (string, error) {
	url, err := s.uploader.UploadFile(ctx, bytes.NewReader(payload), s.prefix+name, ContentType)
	if err != nil {
		return "", fmt.Errorf("ошибка публикации в S3: %w", err)
	}
	return url, nil
}
