package luckywheel

import (
	"math"
	"time"
)

// RotationTween плавно ведёт отображаемый угол от старого значения
// к запланированному за фиксированное время (ease-out).
type RotationTween struct {
	from, to float64
	elapsed  time.Duration
	duration time.Duration
	active   bool
}

// Start начинает новую анимацию поворота.
func (t *RotationTween) Start(from, to float64, d time.Duration) {
	t.from, t.to = from, to
	t.elapsed = 0
	t.duration = d
	t.active = d > 0 && to != from
}

// Step продвигает анимацию на dt и возвращает текущий угол.
func (t *RotationTween) Step(dt time.Duration) float64 {
	if !t.active {
		return t.Value()
	}
	if dt > 0 {
		t.elapsed += dt
	}
	if t.elapsed >= t.duration {
		t.Finish()
	}
	return t.Value()
}

// Value — текущий отображаемый угол.
func (t *RotationTween) Value() float64 {
	if !t.active {
		return t.to
	}
	p := float64(t.elapsed) / float64(t.duration)
	return t.from + (t.to-t.from)*easeOutCubic(p)
}

func (t *RotationTween) Active() bool { return t.active }

// Finish мгновенно ставит колесо в конечное положение.
func (t *RotationTween) Finish() {
	t.active = false
	t.elapsed = t.duration
}

func easeOutCubic(p float64) float64 {
	p = math.Max(0, math.Min(1, p))
	return 1 - math.Pow(1-p, 3)
}
