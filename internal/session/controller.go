// Package session управляет жизненным циклом одного загруженного аудиофайла:
// загрузкой, позицией воспроизведения и отметками времени.
package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/hazadus/go-wavemark/internal/timestamp"
)

// State описывает состояние сессии
type State int

// Состояния сессии
const (
	// Empty - аудио не загружено
	Empty State = iota
	// Loading - файл читается и декодируется
	Loading
	// Ready - аудио загружено, воспроизведение остановлено
	Ready
	// Playing - идет воспроизведение
	Playing
)

// String возвращает название состояния
func (s State) String() string {
	switch s {
	case Empty:
		return "empty"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrStaleLoad возвращается для завершений загрузки, вытесненных более новой загрузкой
	ErrStaleLoad = errors.New("загрузка устарела")
	// ErrNotLoaded возвращается, если действие требует загруженного аудио
	ErrNotLoaded = errors.New("аудио не загружено")
)

// LoadError описывает ошибку чтения выбранного файла
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("не удалось прочитать файл %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Token идентифицирует конкретную загрузку
type Token uint64

// Waveform - управляемый экземпляр волновой формы и воспроизведения
type Waveform interface {
	Play() error
	Pause()
	Seek(fraction float64) error
	Close() error
}

// Controller владеет состоянием сессии. В каждый момент существует не больше
// одного экземпляра Waveform, и он закрывается при каждой новой загрузке.
type Controller struct {
	mutex       sync.Mutex
	state       State
	token       Token
	source      string
	handle      Waveform
	duration    time.Duration
	previewTime float64
	store       *timestamp.Store
}

// NewController создает контроллер в состоянии Empty
func NewController() *Controller {
	return &Controller{
		state: Empty,
		store: timestamp.NewStore(),
	}
}

// BeginLoad сбрасывает сессию и начинает новую загрузку
func (c *Controller) BeginLoad(source string) Token {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.resetInternal()
	c.token++
	c.source = source
	c.state = Loading
	return c.token
}

// Attach завершает загрузку: Loading → Ready
func (c *Controller) Attach(token Token, handle Waveform, duration time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if token != c.token || c.state != Loading {
		if handle != nil {
			_ = handle.Close()
		}
		return fmt.Errorf("%w: токен %d, текущий %d", ErrStaleLoad, token, c.token)
	}

	c.handle = handle
	if duration > 0 {
		c.duration = duration
	}
	c.state = Ready
	return nil
}

// Fail прерывает загрузку: Loading → Empty
func (c *Controller) Fail(token Token, err error) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if token != c.token || c.state != Loading {
		return fmt.Errorf("%w: токен %d, текущий %d", ErrStaleLoad, token, c.token)
	}

	loadErr := &LoadError{Source: c.source, Err: err}
	log.Printf("ошибка загрузки: %v", loadErr)

	c.resetInternal()
	c.source = ""
	return loadErr
}

// SetDuration сохраняет декодированную длительность (справочное значение)
func (c *Controller) SetDuration(token Token, duration time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if token == c.token && duration > 0 {
		c.duration = duration
	}
}

// TogglePlay переключает Ready ⇄ Playing. Без загруженного аудио ничего не делает.
func (c *Controller) TogglePlay() (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	switch c.state {
	case Ready:
		if err := c.handle.Play(); err != nil {
			return false, fmt.Errorf("ошибка запуска воспроизведения: %w", err)
		}
		c.state = Playing
		return true, nil
	case Playing:
		c.handle.Pause()
		c.state = Ready
		return false, nil
	default:
		return false, nil
	}
}

// Seek переводит позицию в долю трека и обновляет время предпросмотра
func (c *Controller) Seek(fraction float64) (float64, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.loaded() {
		return 0, ErrNotLoaded
	}

	fraction = clamp(fraction)
	if err := c.handle.Seek(fraction); err != nil {
		return c.previewTime, fmt.Errorf("ошибка перемотки: %w", err)
	}
	c.previewTime = timestamp.Round(fraction * c.duration.Seconds())
	return c.previewTime, nil
}

// UpdatePosition обрабатывает событие позиции воспроизведения
func (c *Controller) UpdatePosition(token Token, elapsed time.Duration) (float64, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if token != c.token || !c.loaded() {
		return c.previewTime, false
	}
	c.previewTime = timestamp.Round(elapsed.Seconds())
	return c.previewTime, true
}

// Finished отмечает окончание трека: Playing → Ready
func (c *Controller) Finished(token Token) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if token == c.token && c.state == Playing {
		c.state = Ready
	}
}

// AddTimestamp добавляет текущее время предпросмотра в список отметок
func (c *Controller) AddTimestamp() (float64, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if !c.loaded() {
		return 0, ErrNotLoaded
	}
	value := c.previewTime
	if err := c.store.Add(value); err != nil {
		return value, err
	}
	return value, nil
}

// RemoveTimestamp удаляет отметку; отсутствующее значение игнорируется
func (c *Controller) RemoveTimestamp(value float64) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.store.Remove(value)
}

// Timestamps возвращает отметки в порядке добавления
func (c *Controller) Timestamps() []float64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.store.List()
}

// PreviewTime возвращает последнюю известную позицию в секундах
func (c *Controller) PreviewTime() float64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.previewTime
}

// State возвращает текущее состояние
func (c *Controller) State() State {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.state
}

// Duration возвращает длительность загруженного трека
func (c *Controller) Duration() time.Duration {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.duration
}

// Source возвращает путь загруженного или загружаемого файла
func (c *Controller) Source() string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.source
}

// Token возвращает токен текущей загрузки
func (c *Controller) Token() Token {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.token
}

// Close освобождает текущий экземпляр Waveform
func (c *Controller) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var err error
	if c.handle != nil {
		err = c.handle.Close()
		c.handle = nil
	}
	c.resetInternal()
	c.source = ""
	return err
}

// resetInternal сбрасывает состояние сессии (должен вызываться под мьютексом)
func (c *Controller) resetInternal() {
	if c.handle != nil {
		if c.state == Playing {
			c.handle.Pause()
		}
		if err := c.handle.Close(); err != nil {
			log.Printf("ошибка закрытия предыдущего трека: %v", err)
		}
		c.handle = nil
	}
	c.store.Clear()
	c.previewTime = 0
	c.duration = 0
	c.state = Empty
}

func (c *Controller) loaded() bool {
	return c.handle != nil && (c.state == Ready || c.state == Playing)
}

func clamp(fraction float64) float64 {
	switch {
	case fraction < 0 || fraction != fraction:
		return 0
	case fraction > 1:
		return 1
	default:
		return fraction
	}
}
