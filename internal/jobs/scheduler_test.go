package jobs

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeWheel struct {
	resets  int
	evicted int
	err     error
}

func (f *fakeWheel) DailyReset(context.Context) error {
	f.resets++
	return f.err
}

func (f *fakeWheel) EvictIdle(context.Context) int {
	f.evicted++
	return 2
}

func TestSchedulerRegistersJobs(t *testing.T) {
	w := &fakeWheel{}
	s := NewScheduler(w, time.UTC)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	if got := len(s.cron.Entries()); got != 2 {
		t.Errorf("Expected 2 jobs, got %d", got)
	}
}

func TestSchedulerJobsCallWheel(t *testing.T) {
	w := &fakeWheel{err: errors.New("db down")}
	s := NewScheduler(w, nil)
	ctx := context.Background()

	s.dailyReset(ctx)
	s.evictIdle(ctx)
	if w.resets != 1 || w.evicted != 1 {
		t.Errorf("unexpected calls: resets=%d evicted=%d", w.resets, w.evicted)
	}
}

func TestNextResetIsLocalMidnight(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	s := NewScheduler(&fakeWheel{}, msk)

	// 22:30 UTC = 01:30 MSK следующего дня
	now := time.Date(2024, 6, 1, 22, 30, 0, 0, time.UTC)
	want := time.Date(2024, 6, 3, 0, 0, 0, 0, msk)
	if got := s.NextReset(now); !got.Equal(want) {
		t.Errorf("NextReset = %v, want %v", got, want)
	}
}
