package luckywheel

import "time"

// TickFunc вызывается на каждом кадре с прошедшим временем.
// Возвращает true, пока есть работа (крутится колесо или живы частицы).
type TickFunc func(dt time.Duration) bool

// AnimationScheduler гоняет кадры, пока есть что анимировать,
// и сам останавливается, когда работа закончилась.
type AnimationScheduler struct {
	clock    Clock
	interval time.Duration

	ticker Timer
	onTick TickFunc
	last   time.Time
	frames uint64
}

// NewAnimationScheduler создаёт планировщик кадров с заданным шагом.
func NewAnimationScheduler(clock Clock, interval time.Duration) *AnimationScheduler {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	return &AnimationScheduler{clock: clock, interval: interval}
}

// Start запускает кадры. Если планировщик уже работает,
// заменяется только колбэк, второй таймер не создаётся.
func (a *AnimationScheduler) Start(onTick TickFunc) {
	a.onTick = onTick
	if a.ticker != nil {
		return
	}
	a.last = a.clock.Now()
	a.ticker = a.clock.Every(a.interval, a.frame)
}

// Stop останавливает кадры. Повторный вызов безопасен.
func (a *AnimationScheduler) Stop() {
	if a.ticker != nil {
		a.ticker.Stop()
		a.ticker = nil
	}
	a.onTick = nil
}

func (a *AnimationScheduler) Running() bool { return a.ticker != nil }

// Frames — сколько кадров отработано за всё время.
func (a *AnimationScheduler) Frames() uint64 { return a.frames }

func (a *AnimationScheduler) Interval() time.Duration { return a.interval }

func (a *AnimationScheduler) frame(now time.Time) {
	if a.ticker == nil || a.onTick == nil {
		return
	}
	dt := now.Sub(a.last)
	if dt < 0 {
		dt = 0
	}
	a.last = now
	a.frames++

	if !a.onTick(dt) {
		a.Stop()
	}
}
