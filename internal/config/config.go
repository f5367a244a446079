// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Значения по умолчанию
const (
	DefaultStretch   = 2000
	DefaultTempo     = 0.8
	DefaultExportDir = "~/Downloads"
)

// Config структура для хранения конфигурации приложения
type Config struct {
	Stretch       int     `yaml:"stretch"`    // Ширина волновой формы в колонках
	Tempo         float64 `yaml:"tempo"`      // Множитель скорости воспроизведения
	ExportDir     string  `yaml:"export_dir"` // Каталог для JSON файлов
	LogFile       string  `yaml:"log_file"`   // Файл журнала TUI (пусто - журнал отключен)
	AwsBucketName string  `yaml:"aws_bucket_name"`
	AwsAccessKey  string  `yaml:"aws_access_key"`
	AwsSecretKey  string  `yaml:"aws_secret_key"`
	AwsRegion     string  `yaml:"aws_region"`
	AwsEndpoint   string  `yaml:"aws_endpoint"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	config := &Config{}
	config.applyDefaults()
	return config
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Если файла нет, возвращается конфигурация по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	path, err := ExpandHome(filePath)
	if err != nil {
		return nil, err
	}

	config := &Config{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
		}
	}

	config.applyDefaults()

	// Раскрываем тильду в путях
	if config.ExportDir, err = ExpandHome(config.ExportDir); err != nil {
		return nil, err
	}
	if config.LogFile, err = ExpandHome(config.LogFile); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate проверяет значения конфигурации
func (c *Config) Validate() error {
	if c.Stretch <= 0 {
		return fmt.Errorf("stretch должен быть положительным, получено %d", c.Stretch)
	}
	if c.Tempo <= 0 {
		return fmt.Errorf("tempo должен быть положительным, получено %v", c.Tempo)
	}
	if c.ExportDir == "" {
		return fmt.Errorf("не задан каталог для экспорта")
	}
	return nil
}

// S3Enabled сообщает, настроена ли публикация в S3
func (c *Config) S3Enabled() bool {
	return c.AwsBucketName != ""
}

func (c *Config) applyDefaults() {
	if c.Stretch == 0 {
		c.Stretch = DefaultStretch
	}
	if c.Tempo == 0 {
		c.Tempo = DefaultTempo
	}
	if c.ExportDir == "" {
		c.ExportDir = DefaultExportDir
	}
}

// ExpandHome заменяет ведущую тильду на домашний каталог
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return strings.Replace(path, "~", home, 1), nil
}
