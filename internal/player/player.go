// Package player содержит компоненты для управления воспроизведением аудио
package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/hazadus/go-wavemark/internal/audio"
)

const (
	// SpeakerSampleRate частота, на которой работает динамик
	SpeakerSampleRate beep.SampleRate = 44100
	// DefaultTempo множитель скорости воспроизведения по умолчанию
	DefaultTempo = 0.8

	resampleQuality  = 4
	progressInterval = 100 * time.Millisecond
)

// Status представляет текущий статус воспроизведения
type Status struct {
	Current   time.Duration // Текущая позиция
	Total     time.Duration // Общая продолжительность
	IsPlaying bool          // Воспроизводится ли трек
}

// Options настройки загрузки трека
type Options struct {
	Tempo float64 // Множитель скорости воспроизведения
}

// Player владеет динамиком и создает экземпляры воспроизведения
type Player struct {
	mutex         sync.Mutex
	isInitialized bool
	initSpeaker   func() error
}

// NewPlayer создает новый экземпляр плеера
func NewPlayer() *Player {
	return &Player{
		initSpeaker: func() error {
			return speaker.Init(SpeakerSampleRate, SpeakerSampleRate.N(time.Second/10))
		},
	}
}

// Load декодирует файл и готовит его к воспроизведению
func (p *Player) Load(path string, opts Options) (*Playback, error) {
	stream, err := audio.Open(path)
	if err != nil {
		return nil, err
	}

	tempo := opts.Tempo
	if tempo <= 0 {
		tempo = DefaultTempo
	}

	ctrl := &beep.Ctrl{Streamer: stream.Streamer, Paused: true}
	ratio := tempo * float64(stream.Format.SampleRate) / float64(SpeakerSampleRate)

	ctx, cancel := context.WithCancel(context.Background())
	pb := &Playback{
		player:       p,
		stream:       stream,
		ctrl:         ctrl,
		resampler:    beep.ResampleRatio(resampleQuality, ratio, ctrl),
		tempo:        tempo,
		progressChan: make(chan Status, 1),
		doneChan:     make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
	}
	return pb, nil
}

// ensureSpeaker инициализирует динамик один раз
func (p *Player) ensureSpeaker() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.isInitialized {
		return nil
	}
	if err := p.initSpeaker(); err != nil {
		return fmt.Errorf("ошибка инициализации динамиков: %w", err)
	}
	p.isInitialized = true
	return nil
}

// Playback - воспроизведение одного загруженного трека
type Playback struct {
	player    *Player
	stream    *audio.Stream
	ctrl      *beep.Ctrl
	resampler *beep.Resampler
	tempo     float64

	progressChan chan Status
	doneChan     chan struct{}

	ctx       context.Context
	cancel    context.CancelFunc
	mutex     sync.RWMutex
	started   bool // Запущен мониторинг прогресса
	attached  bool // Поток подключен к динамику
	isPlaying bool
	closed    bool
}

// Progress возвращает канал обновлений позиции. Канал закрывается при Close.
func (pb *Playback) Progress() <-chan Status {
	return pb.progressChan
}

// Done возвращает канал, в который приходит сигнал при каждом завершении трека
func (pb *Playback) Done() <-chan struct{} {
	return pb.doneChan
}

// Play запускает или возобновляет воспроизведение
func (pb *Playback) Play() error {
	pb.mutex.Lock()
	defer pb.mutex.Unlock()

	if pb.closed {
		return fmt.Errorf("трек уже закрыт")
	}

	if err := pb.player.ensureSpeaker(); err != nil {
		return err
	}
	if !pb.started {
		pb.started = true
		go pb.monitorProgress()
	}

	speaker.Lock()
	// После окончания трека воспроизведение начинается сначала
	if pb.stream.Streamer.Position() >= pb.stream.Streamer.Len() {
		if err := pb.stream.Streamer.Seek(0); err != nil {
			speaker.Unlock()
			return fmt.Errorf("ошибка перемотки: %w", err)
		}
	}
	pb.ctrl.Paused = false
	speaker.Unlock()

	if !pb.attached {
		speaker.Play(beep.Seq(pb.resampler, beep.Callback(pb.finish)))
		pb.attached = true
	}

	pb.isPlaying = true
	return nil
}

// Pause приостанавливает воспроизведение
func (pb *Playback) Pause() {
	pb.mutex.Lock()
	defer pb.mutex.Unlock()

	if !pb.isPlaying {
		return
	}
	speaker.Lock()
	pb.ctrl.Paused = true
	speaker.Unlock()
	pb.isPlaying = false
}

// Seek перематывает на долю трека от 0 до 1
func (pb *Playback) Seek(fraction float64) error {
	pb.mutex.Lock()
	defer pb.mutex.Unlock()

	if pb.closed {
		return fmt.Errorf("трек уже закрыт")
	}

	length := pb.stream.Streamer.Len()
	position := int(fraction * float64(length))
	if position < 0 {
		position = 0
	}
	if position >= length && length > 0 {
		position = length - 1
	}

	if pb.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	if err := pb.stream.Streamer.Seek(position); err != nil {
		return fmt.Errorf("ошибка перемотки: %w", err)
	}
	return nil
}

// Position возвращает текущую позицию в треке
func (pb *Playback) Position() time.Duration {
	pb.mutex.RLock()
	defer pb.mutex.RUnlock()

	if pb.started {
		speaker.Lock()
		defer speaker.Unlock()
	}
	return pb.stream.Format.SampleRate.D(pb.stream.Streamer.Position())
}

// Duration возвращает продолжительность трека
func (pb *Playback) Duration() time.Duration {
	return pb.stream.Duration()
}

// Tempo возвращает множитель скорости воспроизведения
func (pb *Playback) Tempo() float64 {
	return pb.tempo
}

// IsPlaying возвращает true, если трек воспроизводится
func (pb *Playback) IsPlaying() bool {
	pb.mutex.RLock()
	defer pb.mutex.RUnlock()
	return pb.isPlaying
}

// Close останавливает воспроизведение и освобождает ресурсы
func (pb *Playback) Close() error {
	pb.mutex.Lock()
	defer pb.mutex.Unlock()

	if pb.closed {
		return nil
	}
	pb.closed = true
	pb.isPlaying = false
	pb.cancel()

	if pb.attached {
		// Отключаем поток от динамика
		speaker.Lock()
		pb.ctrl.Paused = true
		pb.ctrl.Streamer = nil
		speaker.Unlock()
	}
	if !pb.started {
		close(pb.progressChan)
	}

	return pb.stream.Close()
}

// finish вызывается динамиком по окончании трека
func (pb *Playback) finish() {
	// Колбэк выполняется под блокировкой динамика, поэтому мьютекс берем в горутине
	go func() {
		pb.mutex.Lock()
		pb.isPlaying = false
		pb.attached = false
		pb.mutex.Unlock()

		select {
		case pb.doneChan <- struct{}{}:
		default:
		}
	}()
}

// monitorProgress отправляет позицию, пока трек воспроизводится
func (pb *Playback) monitorProgress() {
	defer close(pb.progressChan)

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pb.ctx.Done():
			return
		case <-ticker.C:
			pb.mutex.RLock()
			if pb.closed {
				pb.mutex.RUnlock()
				return
			}
			playing := pb.isPlaying
			speaker.Lock()
			current := pb.stream.Format.SampleRate.D(pb.stream.Streamer.Position())
			speaker.Unlock()
			pb.mutex.RUnlock()

			if !playing {
				continue
			}

			status := Status{
				Current:   current,
				Total:     pb.stream.Duration(),
				IsPlaying: playing,
			}

			select {
			case pb.progressChan <- status:
			default:
				// Если канал заблокирован, пропускаем обновление
			}
		}
	}
}
