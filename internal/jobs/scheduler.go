// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежедневный сброс спинов колеса
// и ежеминутное закрытие простаивающих колёс.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// WheelJobs — фоновые операции колеса.
type WheelJobs interface {
	DailyReset(ctx context.Context) error
	EvictIdle(ctx context.Context) int
}

// Расписания задач
const (
	dailyResetSpec = "0 0 * * *"
	evictIdleSpec  = "@every 1m"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron  *cron.Cron
	wheel WheelJobs
	loc   *time.Location
}

// NewScheduler создаёт планировщик в часовом поясе чата.
func NewScheduler(wheel WheelJobs, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:  cron.New(cron.WithLocation(loc)),
		wheel: wheel,
		loc:   loc,
	}
}

// Start регистрирует и запускает задачи.
func (s *Scheduler) Start(ctx context.Context) error {
	// Ежедневный сброс в 00:00 по времени чата
	if _, err := s.cron.AddFunc(dailyResetSpec, func() { s.dailyReset(ctx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(evictIdleSpec, func() { s.evictIdle(ctx) }); err != nil {
		return err
	}

	s.cron.Start()
	log.WithField("tz", s.loc.String()).Info("Планировщик задач запущен")
	return nil
}

func (s *Scheduler) dailyReset(ctx context.Context) {
	log.Info("[CRON] Ежедневный сброс спинов")
	if err := s.wheel.DailyReset(ctx); err != nil {
		log.WithError(err).Error("[CRON] Ошибка сброса спинов")
	}
}

func (s *Scheduler) evictIdle(ctx context.Context) {
	if n := s.wheel.EvictIdle(ctx); n > 0 {
		log.WithField("count", n).Debug("[CRON] Закрыты простаивающие колёса")
	}
}

// NextReset — когда сработает ближайший дневной сброс.
func (s *Scheduler) NextReset(now time.Time) time.Time {
	sched, err := cron.ParseStandard(dailyResetSpec)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(now.In(s.loc))
}

// Stop останавливает планировщик, дожидаясь запущенных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
