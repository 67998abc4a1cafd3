package luckywheel

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoopWithManualClock(t *testing.T) {
	clock := NewManualClock(epoch)
	table := demoTable(t)
	loop, err := NewLoop(
		func(func(func())) Clock { return clock },
		func(c Clock) (*Session, error) {
			return NewSession(table, SequenceDraws(0.05), c, DefaultSessionConfig())
		},
	)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	ctx := context.Background()

	outcome, err := loop.RequestSpin(ctx)
	if err != nil || outcome != SpinAccepted {
		t.Fatalf("Expected accepted, got %s (%v)", outcome, err)
	}

	// Время двигаем внутри цикла: колбэки часов выполняются там же.
	if err := loop.Do(ctx, func(*Session) { clock.Advance(4 * time.Second) }); err != nil {
		t.Fatalf("Do: %v", err)
	}

	snap, err := loop.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.State != StateResolved || snap.Selected == nil || snap.Selected.Name != "A" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	if ok, err := loop.Dismiss(ctx); !ok || err != nil {
		t.Fatalf("Dismiss: ok=%v err=%v", ok, err)
	}
	if err := loop.SetQuota(ctx, 0); err != nil {
		t.Fatalf("SetQuota: %v", err)
	}
	if outcome, _ := loop.RequestSpin(ctx); outcome != SpinQuotaExhausted {
		t.Errorf("Expected quota exhausted, got %s", outcome)
	}

	loop.Close()
	loop.Close()

	if !loop.Closed() {
		t.Error("loop must report closed")
	}
	if _, err := loop.Snapshot(ctx); !errors.Is(err, ErrLoopClosed) {
		t.Errorf("Expected ErrLoopClosed, got %v", err)
	}
}

func TestLoopWithSystemClock(t *testing.T) {
	cfg := DefaultSessionConfig()
	cfg.SpinDuration = 30 * time.Millisecond
	cfg.RevealSlack = 10 * time.Millisecond
	cfg.FrameInterval = 5 * time.Millisecond
	table := demoTable(t)

	loop, err := NewLoop(NewSystemClock, func(c Clock) (*Session, error) {
		return NewSession(table, SequenceDraws(0.99), c, cfg)
	})
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	defer loop.Close()
	ctx := context.Background()

	if outcome, _ := loop.RequestSpin(ctx); outcome != SpinAccepted {
		t.Fatalf("Expected accepted, got %s", outcome)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		snap, err := loop.Snapshot(ctx)
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		if snap.State == StateResolved {
			if snap.Selected == nil || snap.Selected.Name != "F" {
				t.Fatalf("Expected F, got %+v", snap.Selected)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("spin did not resolve in time, state=%s", snap.State)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestLoopCloseDuringSpin(t *testing.T) {
	var got []Result
	table := demoTable(t)
	loop, err := NewLoop(NewSystemClock, func(c Clock) (*Session, error) {
		return NewSession(table, SequenceDraws(0.5), c, DefaultSessionConfig(),
			WithOnResolved(func(r Result) { got = append(got, r) }))
	})
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}

	loop.RequestSpin(context.Background())
	loop.Close()

	// После Close горутина цикла завершена, читать got безопасно.
	if len(got) != 1 || !got[0].Interrupted {
		t.Errorf("Expected one interrupted result, got %+v", got)
	}
}

func TestLoopBuildError(t *testing.T) {
	_, err := NewLoop(nil, func(c Clock) (*Session, error) {
		return NewSession(nil, nil, c, DefaultSessionConfig())
	})
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("Expected ErrConfiguration, got %v", err)
	}
}

func TestDrawSources(t *testing.T) {
	seq := SequenceDraws(0.1, 0.2)
	if seq.Next() != 0.1 || seq.Next() != 0.2 || seq.Next() != 0.2 {
		t.Error("sequence must repeat its last value")
	}

	a, b := SeededDraws(5), SeededDraws(5)
	for i := 0; i < 100; i++ {
		if a.Next() != b.Next() {
			t.Fatal("seeded sources with the same seed must agree")
		}
	}

	c := CryptoDraws()
	for i := 0; i < 1000; i++ {
		if v := c.Next(); v < 0 || v >= 1 {
			t.Fatalf("draw out of [0,1): %v", v)
		}
	}

	f := DrawFunc(func() float64 { return 0.42 })
	if f.Next() != 0.42 {
		t.Error("DrawFunc must return its value")
	}
}

func TestLoopDoFinishesQueuedTask(t *testing.T) {
	clock := NewManualClock(epoch)
	table := demoTable(t)
	loop, err := NewLoop(
		func(func(func())) Clock { return clock },
		func(c Clock) (*Session, error) {
			return NewSession(table, SequenceDraws(0.05), c, DefaultSessionConfig())
		},
	)
	if err != nil {
		t.Fatalf("NewLoop: %v", err)
	}
	defer loop.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	go loop.Do(context.Background(), func(*Session) {
		close(started)
		<-release
	})
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	outcome := SpinIgnored
	errc := make(chan error, 1)
	go func() {
		errc <- loop.Do(ctx, func(s *Session) { outcome = s.RequestSpin() })
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)

	if err := <-errc; err != nil {
		t.Fatalf("queued task must finish, got %v", err)
	}
	if outcome != SpinAccepted {
		t.Errorf("Expected accepted, got %s", outcome)
	}
}
