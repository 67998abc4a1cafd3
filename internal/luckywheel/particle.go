package luckywheel

import (
	"math"
	"math/rand/v2"
)

// Vec2 — точка или скорость в экранных координатах (ось Y направлена вниз).
type Vec2 struct {
	X, Y float64
}

// ColorTag — цвет конфетти.
type ColorTag uint8

const (
	ColorAmber ColorTag = iota
	ColorPink
	ColorViolet
	ColorEmerald
)

var colorHex = [...]string{"#fbbf24", "#f472b6", "#8b5cf6", "#10b981"}

// Hex возвращает цвет в формате #rrggbb.
func (c ColorTag) Hex() string {
	if int(c) < len(colorHex) {
		return colorHex[c]
	}
	return colorHex[0]
}

// Particle — одна частица конфетти.
type Particle struct {
	Position      Vec2
	Velocity      Vec2
	Rotation      float64
	RotationSpeed float64
	Scale         float64
	Opacity       float64
	Age           int
	MaxAge        int
	Color         ColorTag

	baseScale float64
}

// ParticleConfig — параметры вспышки. Время меряется в тиках.
type ParticleConfig struct {
	MaxParticles   int     // Жёсткий предел живых частиц
	MinLife        int     // Минимальное время жизни, тиков
	MaxLife        int     // Максимальное время жизни, тиков
	Gravity        float64 // Прибавка к скорости по Y за тик
	MinSpeed       float64
	MaxSpeed       float64
	Spread         float64 // Ширина конуса вылета, градусы
	SpinRange      float64 // Максимальная скорость вращения, градусы за тик
	MinScale       float64
	MaxScale       float64
	PulseAmplitude float64 // Амплитуда пульсации размера (доля от базового)
	PulsePeriod    float64 // Период пульсации, тиков
}

// DefaultParticleConfig — около 1.5 секунды конфетти при 60 тиках в секунду.
func DefaultParticleConfig() ParticleConfig {
	return ParticleConfig{
		MaxParticles:   400,
		MinLife:        40,
		MaxLife:        90,
		Gravity:        0.25,
		MinSpeed:       4,
		MaxSpeed:       11,
		Spread:         110,
		SpinRange:      12,
		MinScale:       0.6,
		MaxScale:       1.2,
		PulseAmplitude: 0.15,
		PulsePeriod:    24,
	}
}

// ParticleSimulator ведёт набор короткоживущих частиц.
// Не потокобезопасен: им владеет одна сессия.
type ParticleSimulator struct {
	cfg       ParticleConfig
	particles []Particle
}

// NewParticleSimulator создаёт пустой симулятор. Некорректные поля
// конфигурации заменяются значениями по умолчанию.
func NewParticleSimulator(cfg ParticleConfig) *ParticleSimulator {
	def := DefaultParticleConfig()
	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = def.MaxParticles
	}
	if cfg.MinLife <= 0 {
		cfg.MinLife = def.MinLife
	}
	if cfg.MaxLife < cfg.MinLife {
		cfg.MaxLife = cfg.MinLife
	}
	if cfg.MaxSpeed < cfg.MinSpeed {
		cfg.MaxSpeed = cfg.MinSpeed
	}
	if cfg.MinScale <= 0 {
		cfg.MinScale = def.MinScale
	}
	if cfg.MaxScale < cfg.MinScale {
		cfg.MaxScale = cfg.MinScale
	}
	if cfg.PulsePeriod <= 0 {
		cfg.PulsePeriod = def.PulsePeriod
	}
	return &ParticleSimulator{cfg: cfg}
}

// Config возвращает действующую конфигурацию.
func (s *ParticleSimulator) Config() ParticleConfig { return s.cfg }

// Activate выпускает count частиц из origin веером вверх.
// Вспышки складываются; при превышении предела первыми уходят самые старые.
// count <= 0 ничего не делает.
func (s *ParticleSimulator) Activate(origin Vec2, count int, seed uint64) {
	if count <= 0 {
		return
	}
	if count > s.cfg.MaxParticles {
		count = s.cfg.MaxParticles
	}

	rng := rand.New(rand.NewPCG(seed, seed^0xda942042e4dd58b5))
	for i := 0; i < count; i++ {
		s.particles = append(s.particles, s.spawn(rng, origin))
	}

	if excess := len(s.particles) - s.cfg.MaxParticles; excess > 0 {
		n := copy(s.particles, s.particles[excess:])
		clear(s.particles[n:])
		s.particles = s.particles[:n]
	}
}

func (s *ParticleSimulator) spawn(rng *rand.Rand, origin Vec2) Particle {
	cfg := s.cfg
	angle := (-90 + (rng.Float64()-0.5)*cfg.Spread) * math.Pi / 180
	speed := cfg.MinSpeed + rng.Float64()*(cfg.MaxSpeed-cfg.MinSpeed)
	life := cfg.MinLife
	if cfg.MaxLife > cfg.MinLife {
		life += rng.IntN(cfg.MaxLife - cfg.MinLife + 1)
	}
	scale := cfg.MinScale + rng.Float64()*(cfg.MaxScale-cfg.MinScale)

	return Particle{
		Position:      origin,
		Velocity:      Vec2{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed},
		Rotation:      rng.Float64() * 360,
		RotationSpeed: (rng.Float64()*2 - 1) * cfg.SpinRange,
		Scale:         scale,
		Opacity:       1,
		MaxAge:        life,
		Color:         ColorTag(rng.IntN(len(colorHex))),
		baseScale:     scale,
	}
}

// Step продвигает симуляцию на dtTicks тиков и убирает умершие частицы.
func (s *ParticleSimulator) Step(dtTicks int) {
	for ; dtTicks > 0 && len(s.particles) > 0; dtTicks-- {
		s.tick()
	}
}

func (s *ParticleSimulator) tick() {
	alive := s.particles[:0]
	for _, p := range s.particles {
		p.Position.X += p.Velocity.X
		p.Position.Y += p.Velocity.Y
		p.Velocity.Y += s.cfg.Gravity
		p.Rotation += p.RotationSpeed
		p.Age++
		p.Opacity = math.Max(0, 1-float64(p.Age)/float64(p.MaxAge))
		p.Scale = p.baseScale * (1 + s.cfg.PulseAmplitude*math.Sin(2*math.Pi*float64(p.Age)/s.cfg.PulsePeriod))

		if p.Age >= p.MaxAge || p.Opacity <= 0 {
			continue
		}
		alive = append(alive, p)
	}
	clear(s.particles[len(alive):])
	s.particles = alive
}

func (s *ParticleSimulator) IsEmpty() bool { return len(s.particles) == 0 }

func (s *ParticleSimulator) Len() int { return len(s.particles) }

// Particles возвращает копию живых частиц (кадр для отрисовки).
func (s *ParticleSimulator) Particles() []Particle {
	out := make([]Particle, len(s.particles))
	copy(out, s.particles)
	return out
}

// Reset убирает все частицы.
func (s *ParticleSimulator) Reset() {
	clear(s.particles)
	s.particles = s.particles[:0]
}
