// Package wheel — service.go держит по одной сессии колеса на пользователя
// и синхронизирует квоту сессии с БД.
package wheel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wallet-bot/internal/common"
	"serotonyl.ru/wallet-bot/internal/config"
	"serotonyl.ru/wallet-bot/internal/luckywheel"
)

// storeTimeout ограничивает запись квоты, начатую внутри цикла сессии.
const storeTimeout = 5 * time.Second

// Settings — параметры фичи.
type Settings struct {
	DailySpins int
	SessionTTL time.Duration
	Location   *time.Location
	Session    luckywheel.SessionConfig
}

// SettingsFromConfig собирает настройки колеса из конфига приложения.
func SettingsFromConfig(cfg *config.Config) Settings {
	sc := luckywheel.DefaultSessionConfig()
	sc.Quota = cfg.WheelDailySpins
	sc.ExtraTurns = cfg.WheelExtraTurns
	sc.SpinDuration = cfg.WheelSpinDuration
	sc.RevealSlack = cfg.WheelRevealSlack
	sc.FrameInterval = cfg.WheelFrameInterval
	sc.BurstOrigin = luckywheel.Vec2{X: cfg.WheelCenterX, Y: cfg.WheelCenterY}
	sc.BurstCount = cfg.ParticlesBurst
	sc.Particles.MaxParticles = cfg.ParticlesMax

	return Settings{
		DailySpins: cfg.WheelDailySpins,
		SessionTTL: cfg.WheelSessionTTL,
		Location:   cfg.Location(),
		Session:    sc,
	}
}

// ResultFunc получает итог каждого спина. Вызывается в отдельной горутине.
type ResultFunc func(userID int64, res luckywheel.Result)

// ServiceOption настраивает Service.
type ServiceOption func(*Service)

// WithClockFactory подменяет часы сессий (в тестах — ManualClock).
func WithClockFactory(f luckywheel.ClockFactory) ServiceOption {
	return func(s *Service) { s.newClock = f }
}

// WithDraws подменяет источник случайности.
func WithDraws(d luckywheel.DrawSource) ServiceOption {
	return func(s *Service) { s.draws = d }
}

// WithNow подменяет текущее время (дневной сброс, простой сессий).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

type entry struct {
	loop     *luckywheel.Loop
	lastUsed time.Time
}

// Service управляет сессиями колеса.
type Service struct {
	store    QuotaStore
	catalog  *Catalog
	settings Settings
	draws    luckywheel.DrawSource
	newClock luckywheel.ClockFactory
	now      func() time.Time

	mu       sync.Mutex
	sessions map[int64]*entry
	onResult []ResultFunc
	closed   bool
}

// NewService создаёт сервис колеса.
func NewService(store QuotaStore, catalog *Catalog, settings Settings, opts ...ServiceOption) *Service {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	s := &Service{
		store:    store,
		catalog:  catalog,
		settings: settings,
		draws:    luckywheel.CryptoDraws(),
		newClock: luckywheel.NewSystemClock,
		now:      time.Now,
		sessions: make(map[int64]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog возвращает таблицу призов.
func (s *Service) Catalog() *Catalog { return s.catalog }

// OnResult подписывает на итоги спинов.
func (s *Service) OnResult(fn ResultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onResult = append(s.onResult, fn)
}

func (s *Service) today() time.Time {
	return common.DateIn(s.now(), s.settings.Location)
}

// EnsureQuota создаёт квоту пользователю (хук для новых участников).
func (s *Service) EnsureQuota(ctx context.Context, userID int64) error {
	_, err := s.store.Ensure(ctx, userID, s.settings.DailySpins, s.today())
	return err
}

// Open возвращает сессию пользователя, создавая её при необходимости.
// Квота новой сессии берётся из БД.
func (s *Service) Open(ctx context.Context, userID int64) (*luckywheel.Loop, error) {
	if loop := s.lookup(userID); loop != nil {
		return loop, nil
	}
	if s.isClosed() {
		return nil, luckywheel.ErrLoopClosed
	}

	left, err := s.store.Ensure(ctx, userID, s.settings.DailySpins, s.today())
	if err != nil {
		return nil, err
	}

	cfg := s.settings.Session
	cfg.Quota = left
	logger := log.WithFields(log.Fields{"component": "wheel", "user_id": userID})

	loop, err := luckywheel.NewLoop(s.newClock, func(clock luckywheel.Clock) (*luckywheel.Session, error) {
		return luckywheel.NewSession(s.catalog.Table, s.draws, clock, cfg,
			luckywheel.WithLogger(logger),
			luckywheel.WithOnResolved(func(res luckywheel.Result) { s.publish(userID, res) }),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть колесо: %w", err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		loop.Close()
		return nil, luckywheel.ErrLoopClosed
	}
	if e, ok := s.sessions[userID]; ok && !e.loop.Closed() {
		// Параллельный запрос успел раньше — оставляем его сессию
		e.lastUsed = s.now()
		s.mu.Unlock()
		loop.Close()
		return e.loop, nil
	}
	s.sessions[userID] = &entry{loop: loop, lastUsed: s.now()}
	s.mu.Unlock()

	logger.WithField("quota", left).Debug("Сессия колеса открыта")
	return loop, nil
}

func (s *Service) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Service) lookup(userID int64) *luckywheel.Loop {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[userID]
	if !ok || e.loop.Closed() {
		return nil
	}
	e.lastUsed = s.now()
	return e.loop
}

func (s *Service) publish(userID int64, res luckywheel.Result) {
	s.mu.Lock()
	subs := append([]ResultFunc(nil), s.onResult...)
	s.mu.Unlock()

	for _, fn := range subs {
		go fn(userID, res)
	}
}

// withSession выполняет fn в цикле сессии пользователя. Если сессию
// успели выселить между Open и Do, открывает новую и пробует ещё раз.
func (s *Service) withSession(ctx context.Context, userID int64, fn func(*luckywheel.Session)) error {
	for attempt := 0; ; attempt++ {
		loop, err := s.Open(ctx, userID)
		if err != nil {
			return err
		}
		err = loop.Do(ctx, fn)
		if errors.Is(err, luckywheel.ErrLoopClosed) && attempt == 0 && !s.isClosed() {
			continue
		}
		return err
	}
}

// storeContext отвязывает запись в БД от отмены запроса: изменение,
// уже применённое к сессии, должно дойти до БД.
func storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), storeTimeout)
}

// Spin крутит колесо пользователя. Принятый спин списывается в БД в том же
// шаге цикла, поэтому квота сессии и БД не расходятся.
func (s *Service) Spin(ctx context.Context, userID int64) (luckywheel.SpinOutcome, luckywheel.Snapshot, error) {
	outcome := luckywheel.SpinIgnored
	var snap luckywheel.Snapshot

	err := s.withSession(ctx, userID, func(sess *luckywheel.Session) {
		outcome = sess.RequestSpin()
		if outcome == luckywheel.SpinAccepted {
			sctx, cancel := storeContext(ctx)
			defer cancel()
			left, err := s.store.Consume(sctx, userID)
			if err != nil {
				// Спин уже идёт: ошибку БД только логируем, квота в сессии уже уменьшена
				log.WithError(err).WithField("user_id", userID).Error("Не удалось списать спин в БД")
			} else {
				sess.SetQuota(left)
			}
		}
		snap = sess.Snapshot()
	})
	if err != nil {
		return luckywheel.SpinIgnored, luckywheel.Snapshot{}, err
	}
	return outcome, snap, nil
}

// Dismiss закрывает показанный приз.
func (s *Service) Dismiss(ctx context.Context, userID int64) (bool, luckywheel.Snapshot, error) {
	var ok bool
	var snap luckywheel.Snapshot
	err := s.withSession(ctx, userID, func(sess *luckywheel.Session) {
		ok = sess.Dismiss()
		snap = sess.Snapshot()
	})
	if err != nil {
		return false, luckywheel.Snapshot{}, err
	}
	return ok, snap, nil
}

// Snapshot возвращает текущее состояние колеса пользователя.
func (s *Service) Snapshot(ctx context.Context, userID int64) (luckywheel.Snapshot, error) {
	var snap luckywheel.Snapshot
	err := s.withSession(ctx, userID, func(sess *luckywheel.Session) { snap = sess.Snapshot() })
	return snap, err
}

// Grant выдаёт пользователю n дополнительных спинов. Запись в БД идёт
// внутри цикла сессии, в очереди с её спинами.
func (s *Service) Grant(ctx context.Context, userID int64, n int) (int, error) {
	if n <= 0 {
		return 0, common.ErrInvalidAmount
	}

	var left int
	var grantErr error
	err := s.withSession(ctx, userID, func(sess *luckywheel.Session) {
		sctx, cancel := storeContext(ctx)
		defer cancel()
		left, grantErr = s.store.Grant(sctx, userID, n)
		if grantErr == nil {
			sess.SetQuota(left)
		}
	})
	if err == nil {
		err = grantErr
	}
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{"user_id": userID, "granted": n, "left": left}).Info("Спины выданы")
	return left, nil
}

// DailyReset восстанавливает дневную квоту тем, у кого сегодня сброса
// ещё не было (ночной cron).
func (s *Service) DailyReset(ctx context.Context) error {
	return s.reset(ctx, false)
}

// ResetNow выставляет дневную квоту всем сразу (ручной сброс админом).
func (s *Service) ResetNow(ctx context.Context) error {
	return s.reset(ctx, true)
}

func (s *Service) reset(ctx context.Context, force bool) error {
	affected, err := s.store.ResetAll(ctx, s.settings.DailySpins, s.today(), force)
	if err != nil {
		return err
	}

	for userID, loop := range s.liveLoops() {
		if err := s.resync(ctx, userID, loop); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("Не удалось обновить квоту сессии")
		}
	}

	log.WithFields(log.Fields{"rows": affected, "force": force}).Info("Спины колеса сброшены")
	return nil
}

// resync перечитывает квоту из БД внутри цикла сессии.
func (s *Service) resync(ctx context.Context, userID int64, loop *luckywheel.Loop) error {
	var storeErr error
	err := loop.Do(ctx, func(sess *luckywheel.Session) {
		sctx, cancel := storeContext(ctx)
		defer cancel()
		var left int
		left, storeErr = s.store.Ensure(sctx, userID, s.settings.DailySpins, s.today())
		if storeErr == nil {
			sess.SetQuota(left)
		}
	})
	if err != nil {
		return err
	}
	return storeErr
}

func (s *Service) liveLoops() map[int64]*luckywheel.Loop {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int64]*luckywheel.Loop, len(s.sessions))
	for id, e := range s.sessions {
		if !e.loop.Closed() {
			out[id] = e.loop
		}
	}
	return out
}

// EvictIdle закрывает сессии, которые простаивают дольше SessionTTL.
// Крутящееся колесо и догорающее конфетти не трогаем.
func (s *Service) EvictIdle(ctx context.Context) int {
	cutoff := s.now().Add(-s.settings.SessionTTL)

	s.mu.Lock()
	candidates := make(map[int64]*entry)
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) || e.loop.Closed() {
			candidates[id] = e
		}
	}
	s.mu.Unlock()

	evicted := 0
	for id, e := range candidates {
		if !e.loop.Closed() {
			snap, err := e.loop.Snapshot(ctx)
			if err == nil && (snap.State == luckywheel.StateSpinning || snap.Animating) {
				continue
			}
			e.loop.Close()
		}

		s.mu.Lock()
		if cur, ok := s.sessions[id]; ok && cur == e {
			delete(s.sessions, id)
			evicted++
		}
		s.mu.Unlock()
	}

	if evicted > 0 {
		log.WithField("count", evicted).Debug("Простаивающие колёса закрыты")
	}
	return evicted
}

// ActiveSessions — сколько колёс сейчас открыто.
func (s *Service) ActiveSessions() int {
	return len(s.liveLoops())
}

// Close закрывает все сессии (на shutdown).
func (s *Service) Close() {
	s.mu.Lock()
	s.closed = true
	loops := make([]*luckywheel.Loop, 0, len(s.sessions))
	for id, e := range s.sessions {
		loops = append(loops, e.loop)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, l := range loops {
		l.Close()
	}
	log.WithField("count", len(loops)).Info("Сессии колеса закрыты")
}
