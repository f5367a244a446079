// Package timestamp содержит хранилище отметок времени для одной сессии
package timestamp

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// ErrDuplicateTimestamp возвращается при попытке добавить уже существующую отметку
var ErrDuplicateTimestamp = errors.New("такая отметка времени уже существует")

// Round округляет значение в секундах до трех знаков после запятой.
// Отрицательные значения приводятся к нулю.
func Round(seconds float64) float64 {
	if seconds <= 0 || math.IsNaN(seconds) {
		return 0
	}
	if math.IsInf(seconds, 1) {
		return math.MaxFloat64
	}
	if tie, ok := roundTieUp(seconds); ok {
		return tie
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(seconds, 'f', 3, 64), 64)
	if err != nil {
		return math.Round(seconds*1000) / 1000
	}
	return rounded
}

// roundTieUp обрабатывает точную середину между миллисекундами (0.0625 → 0.063).
// FormatFloat в этом случае округляет к четной цифре.
func roundTieUp(seconds float64) (float64, bool) {
	scaled := new(big.Float).SetPrec(128).SetFloat64(seconds)
	scaled.Mul(scaled, big.NewFloat(1000))

	whole, _ := scaled.Int(nil)
	frac := new(big.Float).SetPrec(128).Sub(scaled, new(big.Float).SetInt(whole))
	if frac.Cmp(big.NewFloat(0.5)) != 0 {
		return 0, false
	}

	whole.Add(whole, big.NewInt(1))
	value, _ := new(big.Float).SetInt(whole).Float64()
	return value / 1000, true
}

// Format возвращает кратчайшее текстовое представление отметки (4 → "4", 1.5 → "1.5")
func Format(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

// Store хранит уникальные отметки времени в порядке добавления
type Store struct {
	values []float64
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{values: make([]float64, 0)}
}

// Add добавляет округленное значение в конец списка
func (s *Store) Add(value float64) error {
	value = Round(value)
	if s.Contains(value) {
		return fmt.Errorf("%w: %s", ErrDuplicateTimestamp, Format(value))
	}
	s.values = append(s.values, value)
	return nil
}

// Remove удаляет отметку с указанным значением. Отсутствующее значение игнорируется.
func (s *Store) Remove(value float64) bool {
	value = Round(value)
	for i, v := range s.values {
		if v == value {
			s.values = append(s.values[:i], s.values[i+1:]...)
			return true
		}
	}
	return false
}

// Contains проверяет наличие отметки (линейный поиск, отметок немного)
func (s *Store) Contains(value float64) bool {
	value = Round(value)
	for _, v := range s.values {
		if v == value {
			return true
		}
	}
	return false
}

// Clear удаляет все отметки
func (s *Store) Clear() {
	s.values = s.values[:0]
}

// List возвращает копию отметок в порядке добавления
func (s *Store) List() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Len возвращает количество отметок
func (s *Store) Len() int {
	return len(s.values)
}
