package luckywheel

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer — отменяемый таймер. Stop возвращает true, если таймер ещё не сработал
// (для периодических — если был активен).
type Timer interface {
	Stop() bool
}

// Clock — источник времени и таймеров для сессии.
// Колбэки таймеров выполняются там, где их выполняет конкретная реализация:
// системные часы отдают их в цикл сессии, ManualClock вызывает прямо из Advance.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
	Every(d time.Duration, f func(now time.Time)) Timer
}

// ClockFactory создаёт часы, которые доставляют колбэки через dispatch.
type ClockFactory func(dispatch func(func())) Clock

type systemClock struct {
	dispatch func(func())
}

// NewSystemClock возвращает часы на основе time. Колбэки передаются в dispatch
// (обычно это очередь цикла сессии); nil — вызывать в горутине таймера.
func NewSystemClock(dispatch func(func())) Clock {
	if dispatch == nil {
		dispatch = func(f func()) { f() }
	}
	return &systemClock{dispatch: dispatch}
}

func (c *systemClock) Now() time.Time { return time.Now() }

type systemTimer struct {
	t       *time.Timer
	stopped atomic.Bool
}

func (t *systemTimer) Stop() bool {
	if t.stopped.Swap(true) {
		return false
	}
	return t.t.Stop()
}

func (c *systemClock) AfterFunc(d time.Duration, f func()) Timer {
	st := &systemTimer{}
	st.t = time.AfterFunc(d, func() {
		c.dispatch(func() {
			// Таймер могли остановить, пока колбэк стоял в очереди.
			if st.stopped.Swap(true) {
				return
			}
			f()
		})
	})
	return st
}

type systemTicker struct {
	stopOnce sync.Once
	stopCh   chan struct{}
	stopped  atomic.Bool
	pending  atomic.Bool
}

func (t *systemTicker) Stop() bool {
	wasActive := !t.stopped.Swap(true)
	t.stopOnce.Do(func() { close(t.stopCh) })
	return wasActive
}

func (c *systemClock) Every(d time.Duration, f func(now time.Time)) Timer {
	st := &systemTicker{stopCh: make(chan struct{})}
	ticker := time.NewTicker(d)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-st.stopCh:
				return
			case now := <-ticker.C:
				// Если цикл не успел обработать прошлый кадр, этот пропускаем.
				if !st.pending.CompareAndSwap(false, true) {
					continue
				}
				c.dispatch(func() {
					st.pending.Store(false)
					if st.stopped.Load() {
						return
					}
					f(now)
				})
			}
		}
	}()
	return st
}

// ManualClock — управляемые вручную часы для тестов и симуляций.
// Время идёт только при вызове Advance; сработавшие колбэки вызываются
// в горутине, вызвавшей Advance, в порядке дедлайнов.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	id       uint64
	deadline time.Time
	period   time.Duration
	once     func()
	tick     func(time.Time)
	active   bool
}

// NewManualClock создаёт часы, стоящие на start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	return c.add(&manualTimer{once: f}, d, 0)
}

func (c *ManualClock) Every(d time.Duration, f func(time.Time)) Timer {
	if d <= 0 {
		d = time.Millisecond
	}
	return c.add(&manualTimer{tick: f}, d, d)
}

func (c *ManualClock) add(t *manualTimer, d, period time.Duration) *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t.clock = c
	t.id = c.seq
	t.deadline = c.now.Add(d)
	t.period = period
	t.active = true
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	if !t.active {
		return false
	}
	t.active = false
	c.removeLocked(t)
	return true
}

func (c *ManualClock) removeLocked(t *manualTimer) {
	for i, x := range c.timers {
		if x == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}

// Advance сдвигает время на d и по очереди вызывает всё, что успело сработать.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		next := c.nextDueLocked(target)
		if next == nil {
			break
		}
		c.now = next.deadline
		now := c.now
		if next.period > 0 {
			next.deadline = next.deadline.Add(next.period)
		} else {
			next.active = false
			c.removeLocked(next)
		}
		c.mu.Unlock()
		if next.once != nil {
			next.once()
		} else {
			next.tick(now)
		}
		c.mu.Lock()
	}
	if target.After(c.now) {
		c.now = target
	}
	c.mu.Unlock()
}

func (c *ManualClock) nextDueLocked(target time.Time) *manualTimer {
	var best *manualTimer
	for _, t := range c.timers {
		if !t.active || t.deadline.After(target) {
			continue
		}
		if best == nil || t.deadline.Before(best.deadline) ||
			(t.deadline.Equal(best.deadline) && t.id < best.id) {
			best = t
		}
	}
	return best
}

// Pending — число активных таймеров (включая периодические).
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
