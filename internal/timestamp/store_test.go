package timestamp

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0, 0},
		{-1.5, 0},
		{4, 4},
		{1.2344, 1.234},
		{1.2346, 1.235},
		{0.4 * 10, 4},
		{12.3456789, 12.346},
		{59.9999, 60},
		{0.0625, 0.063},
		{1.0625, 1.063},
		{2.5625, 2.563},
		{1.0005, 1},
	}

	for _, test := range tests {
		result := Round(test.input)
		if result != test.expected {
			t.Errorf("Round(%v) = %v; expected %v", test.input, result, test.expected)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{4, "4"},
		{1.5, "1.5"},
		{1.234, "1.234"},
		{0, "0"},
	}

	for _, test := range tests {
		result := Format(test.input)
		if result != test.expected {
			t.Errorf("Format(%v) = %s; expected %s", test.input, result, test.expected)
		}
	}
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	store := NewStore()

	for _, v := range []float64{5, 1.234, 3.5} {
		if err := store.Add(v); err != nil {
			t.Fatalf("Неожиданная ошибка при добавлении %v: %v", v, err)
		}
	}

	expected := []float64{5, 1.234, 3.5}
	if !reflect.DeepEqual(store.List(), expected) {
		t.Errorf("Ожидалось %v, получено %v", expected, store.List())
	}
}

func TestAddDuplicateIsRejected(t *testing.T) {
	store := NewStore()
	if err := store.Add(4.0); err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	err := store.Add(4.0)
	if !errors.Is(err, ErrDuplicateTimestamp) {
		t.Fatalf("Ожидалась ErrDuplicateTimestamp, получено: %v", err)
	}

	// Значение, совпадающее после округления, тоже дубликат
	err = store.Add(4.0004)
	if !errors.Is(err, ErrDuplicateTimestamp) {
		t.Fatalf("Ожидалась ErrDuplicateTimestamp для 4.0004, получено: %v", err)
	}

	if !reflect.DeepEqual(store.List(), []float64{4}) {
		t.Errorf("Хранилище не должно измениться, получено %v", store.List())
	}
}

func TestRemove(t *testing.T) {
	store := NewStore()
	_ = store.Add(1)
	_ = store.Add(2)
	_ = store.Add(3)

	if !store.Remove(2) {
		t.Error("Ожидалось удаление существующей отметки")
	}
	if store.Remove(42) {
		t.Error("Удаление отсутствующей отметки должно быть no-op")
	}

	expected := []float64{1, 3}
	if !reflect.DeepEqual(store.List(), expected) {
		t.Errorf("Ожидалось %v, получено %v", expected, store.List())
	}
}

func TestClear(t *testing.T) {
	store := NewStore()
	_ = store.Add(1)
	_ = store.Add(2)

	store.Clear()

	if store.Len() != 0 {
		t.Errorf("Ожидалось пустое хранилище, получено %d элементов", store.Len())
	}
	if err := store.Add(1); err != nil {
		t.Errorf("После очистки значение должно добавляться снова: %v", err)
	}
}

func TestListReturnsCopy(t *testing.T) {
	store := NewStore()
	_ = store.Add(1)

	list := store.List()
	list[0] = 100

	if store.List()[0] != 1 {
		t.Error("List должен возвращать копию")
	}
}

func TestNoDuplicatesUnderRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	store := NewStore()

	for i := 0; i < 5000; i++ {
		value := float64(rng.Intn(50)) / 10
		if rng.Intn(3) == 0 {
			store.Remove(value)
		} else {
			_ = store.Add(value)
		}

		seen := make(map[float64]bool)
		for _, v := range store.List() {
			if seen[v] {
				t.Fatalf("Обнаружен дубликат %v после операции %d", v, i)
			}
			seen[v] = true
		}
	}
}
