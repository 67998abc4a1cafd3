package luckywheel

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// DrawSource выдаёт равномерные значения из [0,1).
// Каждый спин забирает ровно одно значение.
type DrawSource interface {
	Next() float64
}

// DrawFunc позволяет передать обычную функцию как DrawSource.
type DrawFunc func() float64

func (f DrawFunc) Next() float64 { return f() }

type cryptoDraws struct{}

// CryptoDraws — источник по умолчанию (crypto/rand, 53 бита).
// Безопасен для одновременного использования из нескольких сессий.
func CryptoDraws() DrawSource { return cryptoDraws{} }

func (cryptoDraws) Next() float64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

type seededDraws struct {
	mu sync.Mutex
	r  *rand.Rand
}

// SeededDraws — воспроизводимый источник (PCG) для симуляций и отладки.
func SeededDraws(seed uint64) DrawSource {
	return &seededDraws{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *seededDraws) Next() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

type sequenceDraws struct {
	mu     sync.Mutex
	values []float64
	pos    int
}

// SequenceDraws возвращает заданные значения по порядку,
// после конца последовательности повторяет последнее.
func SequenceDraws(values ...float64) DrawSource {
	cp := make([]float64, len(values))
	copy(cp, values)
	return &sequenceDraws{values: cp}
}

func (s *sequenceDraws) Next() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.values) == 0 {
		return 0
	}
	if s.pos >= len(s.values) {
		return s.values[len(s.values)-1]
	}
	v := s.values[s.pos]
	s.pos++
	return v
}
