package luckywheel

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func TestManualClockAfterFunc(t *testing.T) {
	c := NewManualClock(epoch)
	fired := 0
	c.AfterFunc(100*time.Millisecond, func() { fired++ })

	c.Advance(99 * time.Millisecond)
	if fired != 0 {
		t.Fatalf("timer fired too early")
	}
	c.Advance(time.Millisecond)
	if fired != 1 {
		t.Fatalf("Expected timer to fire once, got %d", fired)
	}
	c.Advance(time.Second)
	if fired != 1 {
		t.Errorf("one-shot timer fired again")
	}
	if c.Pending() != 0 {
		t.Errorf("Expected no pending timers, got %d", c.Pending())
	}
}

func TestManualClockStop(t *testing.T) {
	c := NewManualClock(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("Stop on an active timer must return true")
	}
	if timer.Stop() {
		t.Error("second Stop must return false")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Error("stopped timer fired")
	}
}

func TestManualClockEveryOrdering(t *testing.T) {
	c := NewManualClock(epoch)
	var order []string

	tick := c.Every(10*time.Millisecond, func(now time.Time) {
		order = append(order, "tick")
	})
	c.AfterFunc(25*time.Millisecond, func() {
		order = append(order, "once")
	})

	c.Advance(40 * time.Millisecond)
	tick.Stop()

	want := []string{"tick", "tick", "once", "tick", "tick"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, order)
		}
	}
	if !c.Now().Equal(epoch.Add(40 * time.Millisecond)) {
		t.Errorf("unexpected clock time %v", c.Now())
	}
}

func TestManualClockStopInsideCallback(t *testing.T) {
	c := NewManualClock(epoch)
	var timer Timer
	ticks := 0
	timer = c.Every(time.Millisecond, func(time.Time) {
		ticks++
		if ticks == 3 {
			timer.Stop()
		}
	})
	c.Advance(time.Second)
	if ticks != 3 {
		t.Errorf("Expected 3 ticks before stop, got %d", ticks)
	}
}

func TestSystemClockStoppedTimerDoesNotRun(t *testing.T) {
	queue := make(chan func(), 4)
	c := NewSystemClock(func(f func()) { queue <- f })

	fired := false
	timer := c.AfterFunc(time.Millisecond, func() { fired = true })

	// Колбэк уже в очереди, но таймер остановлен раньше, чем очередь его выполнила.
	task := <-queue
	timer.Stop()
	task()

	if fired {
		t.Error("callback of a stopped timer must not run")
	}
}

func TestSystemClockEveryDelivers(t *testing.T) {
	queue := make(chan func(), 1)
	c := NewSystemClock(func(f func()) { queue <- f })

	got := make(chan struct{}, 8)
	ticker := c.Every(time.Millisecond, func(time.Time) { got <- struct{}{} })
	defer ticker.Stop()

	select {
	case task := <-queue:
		task()
	case <-time.After(time.Second):
		t.Fatal("ticker did not deliver a frame")
	}
	select {
	case <-got:
	default:
		t.Error("frame callback was not invoked")
	}
}
