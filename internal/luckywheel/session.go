package luckywheel

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	log "github.com/sirupsen/logrus"
)

// State — состояние сессии колеса.
type State string

const (
	StateIdle      State = "idle"      // Ждём нажатия
	StateSpinning  State = "spinning"  // Колесо крутится, приз уже выбран
	StateRevealing State = "revealing" // Колесо остановилось, запускаем конфетти
	StateResolved  State = "resolved"  // Приз показан, ждём закрытия
)

const (
	eventSpin    = "spin"
	eventReveal  = "reveal"
	eventResolve = "resolve"
	eventDismiss = "dismiss"
)

// SpinOutcome — чем закончился запрос спина.
type SpinOutcome int

const (
	// SpinAccepted — спин начат, квота уменьшена.
	SpinAccepted SpinOutcome = iota
	// SpinIgnored — колесо не в покое (или сессия закрыта), ничего не изменилось.
	SpinIgnored
	// SpinQuotaExhausted — спины на сегодня закончились. Это не ошибка.
	SpinQuotaExhausted
)

func (o SpinOutcome) String() string {
	switch o {
	case SpinAccepted:
		return "accepted"
	case SpinIgnored:
		return "ignored"
	case SpinQuotaExhausted:
		return "quota_exhausted"
	}
	return fmt.Sprintf("SpinOutcome(%d)", int(o))
}

// SessionConfig — параметры одной сессии колеса.
type SessionConfig struct {
	Quota         int           // Спинов на старте
	ExtraTurns    int           // Полных оборотов сверх минимального поворота
	SpinDuration  time.Duration // Длительность анимации поворота
	RevealDelay   time.Duration // Задержка до показа приза; 0 — SpinDuration + RevealSlack
	RevealSlack   time.Duration
	FrameInterval time.Duration // Шаг планировщика кадров
	TickDuration  time.Duration // Длина одного тика частиц; 0 — 1/60 секунды
	BurstOrigin   Vec2          // Центр колеса в экранных координатах
	BurstCount    int           // Частиц во вспышке
	Particles     ParticleConfig
}

// DefaultSessionConfig — 3 спина в день, 5 лишних оборотов, 3 секунды на поворот.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Quota:         3,
		ExtraTurns:    5,
		SpinDuration:  3 * time.Second,
		RevealSlack:   200 * time.Millisecond,
		FrameInterval: 16 * time.Millisecond,
		TickDuration:  time.Second / 60,
		BurstOrigin:   Vec2{X: 144, Y: 144},
		BurstCount:    120,
		Particles:     DefaultParticleConfig(),
	}
}

// EffectiveRevealDelay — через сколько после старта спина показывается приз.
// Задержка выводится из длительности поворота, чтобы приз не появлялся
// раньше, чем колесо остановится.
func (c SessionConfig) EffectiveRevealDelay() time.Duration {
	if c.RevealDelay > 0 {
		return c.RevealDelay
	}
	return c.SpinDuration + c.RevealSlack
}

// Validate проверяет параметры сессии.
func (c SessionConfig) Validate() error {
	switch {
	case c.Quota < 0:
		return fmt.Errorf("%w: квота %d < 0", ErrConfiguration, c.Quota)
	case c.ExtraTurns < 0:
		return fmt.Errorf("%w: лишних оборотов %d < 0", ErrConfiguration, c.ExtraTurns)
	case c.SpinDuration <= 0:
		return fmt.Errorf("%w: длительность спина должна быть > 0", ErrConfiguration)
	case c.RevealDelay == 0 && c.RevealSlack <= 0:
		return fmt.Errorf("%w: запас перед показом приза должен быть > 0", ErrConfiguration)
	case c.RevealDelay < 0:
		return fmt.Errorf("%w: задержка показа приза < 0", ErrConfiguration)
	case c.RevealDelay > 0 && c.RevealDelay <= c.SpinDuration:
		return fmt.Errorf("%w: приз показывается не позже остановки колеса (%s <= %s)",
			ErrConfiguration, c.RevealDelay, c.SpinDuration)
	case c.FrameInterval <= 0:
		return fmt.Errorf("%w: шаг кадров должен быть > 0", ErrConfiguration)
	case c.TickDuration < 0:
		return fmt.Errorf("%w: длина тика < 0", ErrConfiguration)
	case c.BurstCount < 0:
		return fmt.Errorf("%w: частиц во вспышке %d < 0", ErrConfiguration, c.BurstCount)
	}
	return nil
}

// Result — итог одного спина. Начисление приза делает вызывающая сторона.
type Result struct {
	SpinID         uuid.UUID
	Index          int
	Prize          Prize
	From           float64 // Накопленный угол до спина
	To             float64 // Накопленный угол после спина
	Turns          int
	QuotaRemaining int
	Interrupted    bool // Спин завершён закрытием сессии, без анимации
	ResolvedAt     time.Time
}

// Snapshot — состояние сессии для отрисовки.
type Snapshot struct {
	State              State
	QuotaRemaining     int
	Selected           *Prize
	SelectedIndex      int
	SpinID             uuid.UUID
	CumulativeRotation float64
	Rotation           float64
	Particles          []Particle
	Animating          bool
	Closed             bool
}

// Option настраивает сессию.
type Option func(*Session)

// WithLogger задаёт логгер сессии (обычно с полем user_id).
func WithLogger(l *log.Entry) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithOnResolved подписывает на показ приза.
func WithOnResolved(fn func(Result)) Option {
	return func(s *Session) { s.onResolved = fn }
}

// WithOnBurst подписывает на запуск конфетти.
func WithOnBurst(fn func(origin Vec2)) Option {
	return func(s *Session) { s.onBurst = fn }
}

// WithSpinIDs подменяет генератор ID спинов.
func WithSpinIDs(fn func() uuid.UUID) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// Session — одна открытая страница колеса: квота, состояние, поворот и частицы.
//
// Session не потокобезопасна. Все методы и все колбэки часов должны
// выполняться в одной горутине (см. Loop).
type Session struct {
	cfg     SessionConfig
	table   *PrizeTable
	draws   DrawSource
	clock   Clock
	machine *fsm.FSM

	quota      int
	cumulative float64
	from       float64
	tween      RotationTween
	sim        *ParticleSimulator
	anim       *AnimationScheduler
	reveal     Timer
	tick       time.Duration
	tickDebt   time.Duration

	pendingIndex int
	selected     *Prize
	spinID       uuid.UUID
	closed       bool

	log        *log.Entry
	newID      func() uuid.UUID
	onResolved func(Result)
	onBurst    func(Vec2)
}

// NewSession создаёт сессию в состоянии idle.
func NewSession(table *PrizeTable, draws DrawSource, clock Clock, cfg SessionConfig, opts ...Option) (*Session, error) {
	if table == nil {
		return nil, fmt.Errorf("%w: таблица призов не задана", ErrConfiguration)
	}
	if clock == nil {
		return nil, fmt.Errorf("%w: часы не заданы", ErrConfiguration)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if draws == nil {
		draws = CryptoDraws()
	}

	s := &Session{
		cfg:          cfg,
		table:        table,
		draws:        draws,
		clock:        clock,
		quota:        cfg.Quota,
		sim:          NewParticleSimulator(cfg.Particles),
		anim:         NewAnimationScheduler(clock, cfg.FrameInterval),
		tick:         cfg.TickDuration,
		pendingIndex: -1,
		log:          log.WithField("component", "luckywheel"),
		newID:        uuid.New,
	}
	if s.tick <= 0 {
		s.tick = time.Second / 60
	}

	s.machine = fsm.NewFSM(
		string(StateIdle),
		fsm.Events{
			{Name: eventSpin, Src: []string{string(StateIdle)}, Dst: string(StateSpinning)},
			{Name: eventReveal, Src: []string{string(StateSpinning)}, Dst: string(StateRevealing)},
			{Name: eventResolve, Src: []string{string(StateRevealing)}, Dst: string(StateResolved)},
			{Name: eventDismiss, Src: []string{string(StateResolved)}, Dst: string(StateIdle)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				s.log.WithFields(log.Fields{"from": e.Src, "to": e.Dst}).Debug("колесо: смена состояния")
			},
		},
	)

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RequestSpin — нажатие «крутить».
//
// Спин принимается только в idle и при квоте > 0: тогда берётся ровно одно
// значение из DrawSource, квота уменьшается на 1, планируется поворот,
// запускаются кадры и таймер показа приза.
func (s *Session) RequestSpin() SpinOutcome {
	if s.closed || s.State() != StateIdle {
		s.log.WithField("state", s.State()).Debug("колесо: спин проигнорирован")
		return SpinIgnored
	}
	if s.quota <= 0 {
		s.log.Debug("колесо: спины закончились")
		return SpinQuotaExhausted
	}

	draw := s.draws.Next()
	idx, prize := s.table.Pick(draw)

	s.from = s.cumulative
	s.cumulative = Plan(s.from, idx, s.table.SectorAngle(), s.cfg.ExtraTurns)
	s.quota--
	s.pendingIndex = idx
	s.spinID = s.newID()
	s.fire(eventSpin)

	s.tween.Start(s.from, s.cumulative, s.cfg.SpinDuration)
	s.anim.Start(s.onFrame)
	s.reveal = s.clock.AfterFunc(s.cfg.EffectiveRevealDelay(), s.onReveal)

	s.log.WithFields(log.Fields{
		"spin_id":  s.spinID.String(),
		"draw":     draw,
		"prize_id": prize.ID,
		"target":   s.cumulative,
		"quota":    s.quota,
	}).Debug("колесо: спин начат")

	return SpinAccepted
}

// onReveal срабатывает по таймеру: колесо остановилось, показываем приз.
func (s *Session) onReveal() {
	s.reveal = nil
	if s.State() != StateSpinning {
		return
	}

	s.tween.Finish()
	s.fire(eventReveal)

	s.sim.Activate(s.cfg.BurstOrigin, s.cfg.BurstCount, binary.BigEndian.Uint64(s.spinID[:8]))
	if s.onBurst != nil {
		s.onBurst(s.cfg.BurstOrigin)
	}
	if !s.sim.IsEmpty() {
		s.anim.Start(s.onFrame)
	}

	s.fire(eventResolve)
	s.finish(false)
}

// finish публикует выбранный приз.
func (s *Session) finish(interrupted bool) {
	prize := s.table.At(s.pendingIndex)
	s.selected = &prize

	res := Result{
		SpinID:         s.spinID,
		Index:          s.pendingIndex,
		Prize:          prize,
		From:           s.from,
		To:             s.cumulative,
		Turns:          FullTurns(s.from, s.cumulative),
		QuotaRemaining: s.quota,
		Interrupted:    interrupted,
		ResolvedAt:     s.clock.Now(),
	}

	s.log.WithFields(log.Fields{
		"spin_id":     s.spinID.String(),
		"prize_id":    prize.ID,
		"prize":       prize.Name,
		"value":       prize.Value.String(),
		"interrupted": interrupted,
	}).Info("колесо: приз выпал")

	if s.onResolved != nil {
		s.onResolved(res)
	}
}

func (s *Session) onFrame(dt time.Duration) bool {
	if s.tween.Active() {
		s.tween.Step(dt)
	}

	if s.sim.IsEmpty() {
		s.tickDebt = 0
	} else {
		s.tickDebt += dt
		if n := int(s.tickDebt / s.tick); n > 0 {
			s.tickDebt -= time.Duration(n) * s.tick
			s.sim.Step(n)
		}
	}

	return s.tween.Active() || !s.sim.IsEmpty()
}

// Dismiss закрывает окно с призом и возвращает колесо в idle.
// Квота не меняется. Вне состояния resolved ничего не делает.
func (s *Session) Dismiss() bool {
	if s.State() != StateResolved {
		return false
	}
	s.fire(eventDismiss)
	s.selected = nil
	s.pendingIndex = -1
	return true
}

// SetQuota задаёт остаток спинов (ежедневный сброс, выдача админом).
func (s *Session) SetQuota(n int) {
	if n < 0 {
		n = 0
	}
	s.quota = n
}

// Close снимает таймер показа и останавливает кадры одним действием.
// Если колесо ещё крутится, спин сразу доводится до resolved без конфетти:
// квота за него уже списана, и приз должен дойти до получателя.
// После Close все запросы спина игнорируются.
func (s *Session) Close() {
	if s.closed {
		return
	}
	if s.reveal != nil {
		s.reveal.Stop()
		s.reveal = nil
	}
	s.anim.Stop()

	if s.State() == StateSpinning {
		s.tween.Finish()
		s.fire(eventReveal)
		s.fire(eventResolve)
		s.finish(true)
	}

	s.sim.Reset()
	s.tickDebt = 0
	s.closed = true
}

func (s *Session) fire(event string) {
	if err := s.machine.Event(context.Background(), event); err != nil {
		s.log.WithError(err).WithField("event", event).Warn("колесо: недопустимый переход")
	}
}

// --- Наблюдатели ---

func (s *Session) State() State { return State(s.machine.Current()) }

func (s *Session) QuotaRemaining() int { return s.quota }

// SelectedPrize — выпавший приз; есть только в состоянии resolved.
func (s *Session) SelectedPrize() (Prize, bool) {
	if s.selected == nil {
		return Prize{}, false
	}
	return *s.selected, true
}

// CumulativeRotation — угол, на котором колесо остановится (или стоит).
func (s *Session) CumulativeRotation() float64 { return s.cumulative }

// Rotation — угол, который сейчас нужно рисовать.
func (s *Session) Rotation() float64 {
	if !s.tween.Active() {
		return s.cumulative
	}
	return s.tween.Value()
}

func (s *Session) Particles() []Particle { return s.sim.Particles() }

func (s *Session) LiveParticles() int { return s.sim.Len() }

// Animating — работает ли планировщик кадров.
func (s *Session) Animating() bool { return s.anim.Running() }

func (s *Session) Closed() bool { return s.closed }

func (s *Session) Table() *PrizeTable { return s.table }

func (s *Session) Config() SessionConfig { return s.cfg }

// Snapshot собирает всё наблюдаемое состояние в одну структуру.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		State:              s.State(),
		QuotaRemaining:     s.quota,
		SelectedIndex:      -1,
		CumulativeRotation: s.cumulative,
		Rotation:           s.Rotation(),
		Particles:          s.sim.Particles(),
		Animating:          s.anim.Running(),
		Closed:             s.closed,
	}
	if s.State() != StateIdle {
		snap.SpinID = s.spinID
	}
	if s.selected != nil {
		p := *s.selected
		snap.Selected = &p
		snap.SelectedIndex = s.pendingIndex
	}
	return snap
}
