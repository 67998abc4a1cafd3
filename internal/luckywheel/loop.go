package luckywheel

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Loop владеет одной Session и выполняет всё в своей горутине:
// вызовы извне, таймер показа приза и кадры анимации.
type Loop struct {
	tasks chan func()
	done  chan struct{}

	stopOnce sync.Once
	wg       sync.WaitGroup

	session *Session
}

// NewLoop создаёт цикл. newClock получает функцию постановки в очередь цикла,
// build строит сессию поверх этих часов.
func NewLoop(newClock ClockFactory, build func(Clock) (*Session, error)) (*Loop, error) {
	if newClock == nil {
		newClock = NewSystemClock
	}

	l := &Loop{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}

	session, err := build(newClock(l.post))
	if err != nil {
		return nil, err
	}
	l.session = session

	l.wg.Add(1)
	go l.run()
	return l, nil
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			return
		case task := <-l.tasks:
			l.safeRun(task)
		}
	}
}

func (l *Loop) safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", fmt.Sprintf("%v", r)).Error("колесо: паника в цикле сессии")
		}
	}()
	task()
}

// post ставит задачу в очередь; после остановки цикла задача отбрасывается.
func (l *Loop) post(task func()) {
	select {
	case l.tasks <- task:
	case <-l.done:
	}
}

// Do выполняет fn в горутине цикла и ждёт завершения.
// ctx ограничивает только постановку в очередь: принятая задача всегда
// доводится до конца, и Do возвращает nil, если fn успела выполниться.
func (l *Loop) Do(ctx context.Context, fn func(*Session)) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn(l.session)
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		// Задача могла выполниться перед остановкой цикла
		l.wg.Wait()
		select {
		case <-finished:
			return nil
		default:
			return ErrLoopClosed
		}
	}
}

// RequestSpin — см. Session.RequestSpin.
func (l *Loop) RequestSpin(ctx context.Context) (SpinOutcome, error) {
	outcome := SpinIgnored
	err := l.Do(ctx, func(s *Session) { outcome = s.RequestSpin() })
	return outcome, err
}

// Dismiss — см. Session.Dismiss.
func (l *Loop) Dismiss(ctx context.Context) (bool, error) {
	var ok bool
	err := l.Do(ctx, func(s *Session) { ok = s.Dismiss() })
	return ok, err
}

// Snapshot — см. Session.Snapshot.
func (l *Loop) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := l.Do(ctx, func(s *Session) { snap = s.Snapshot() })
	return snap, err
}

// SetQuota — см. Session.SetQuota.
func (l *Loop) SetQuota(ctx context.Context, n int) error {
	return l.Do(ctx, func(s *Session) { s.SetQuota(n) })
}

// Close закрывает сессию в её горутине и останавливает цикл.
// Повторные вызовы ничего не делают.
func (l *Loop) Close() {
	l.stopOnce.Do(func() {
		finished := make(chan struct{})
		l.tasks <- func() {
			defer close(finished)
			l.session.Close()
		}
		<-finished
		close(l.done)
		l.wg.Wait()
	})
}

// Closed сообщает, остановлен ли цикл.
func (l *Loop) Closed() bool {
	select {
	case <-l.done:
		return true
	default:
		return false
	}
}
