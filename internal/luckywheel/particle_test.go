package luckywheel

import (
	"math"
	"testing"
)

func smallConfig() ParticleConfig {
	cfg := DefaultParticleConfig()
	cfg.MaxParticles = 10
	cfg.MinLife = 5
	cfg.MaxLife = 8
	return cfg
}

func TestActivateZeroIsNoop(t *testing.T) {
	sim := NewParticleSimulator(smallConfig())
	sim.Activate(Vec2{}, 0, 1)
	sim.Activate(Vec2{}, -4, 1)
	if !sim.IsEmpty() {
		t.Errorf("Expected empty simulator, got %d particles", sim.Len())
	}
}

func TestActivateIsAdditiveAndCapped(t *testing.T) {
	sim := NewParticleSimulator(smallConfig())
	first := Vec2{X: 1, Y: 1}
	second := Vec2{X: 100, Y: 100}

	sim.Activate(first, 4, 1)
	sim.Activate(first, 2, 2)
	if sim.Len() != 6 {
		t.Fatalf("Expected 6 particles after two bursts, got %d", sim.Len())
	}

	sim.Activate(second, 6, 3)
	if sim.Len() != 10 {
		t.Fatalf("Expected cap of 10 particles, got %d", sim.Len())
	}

	// Самые старые ушли первыми: 4 из первой пачки и все 6 новых.
	ps := sim.Particles()
	for i, p := range ps {
		wantSecond := i >= 4
		if (p.Position == second) != wantSecond {
			t.Errorf("particle %d: unexpected origin %+v", i, p.Position)
		}
	}

	sim.Activate(second, 50, 4)
	if sim.Len() != 10 {
		t.Errorf("oversized burst must be cut to the cap, got %d", sim.Len())
	}
}

func TestStepKinematics(t *testing.T) {
	cfg := smallConfig()
	cfg.MinLife, cfg.MaxLife = 20, 20
	sim := NewParticleSimulator(cfg)
	sim.Activate(Vec2{X: 50, Y: 50}, 1, 42)

	before := sim.Particles()[0]
	if before.Opacity != 1 || before.Age != 0 {
		t.Fatalf("fresh particle must be opaque with age 0, got %+v", before)
	}
	if before.Velocity.Y >= 0 {
		t.Errorf("burst must go upwards, got vy=%v", before.Velocity.Y)
	}

	sim.Step(1)
	after := sim.Particles()[0]

	if after.Position.X != before.Position.X+before.Velocity.X ||
		after.Position.Y != before.Position.Y+before.Velocity.Y {
		t.Errorf("position must move by velocity: before %+v after %+v", before.Position, after.Position)
	}
	if math.Abs(after.Velocity.Y-(before.Velocity.Y+cfg.Gravity)) > 1e-12 {
		t.Errorf("gravity not applied: %v -> %v", before.Velocity.Y, after.Velocity.Y)
	}
	if after.Rotation != before.Rotation+before.RotationSpeed {
		t.Errorf("rotation not advanced")
	}
	if after.Age != 1 {
		t.Errorf("Expected age 1, got %d", after.Age)
	}
	if want := 1 - 1.0/20; math.Abs(after.Opacity-want) > 1e-12 {
		t.Errorf("Expected opacity %v, got %v", want, after.Opacity)
	}
	maxScale := before.Scale * (1 + cfg.PulseAmplitude)
	minScale := before.Scale * (1 - cfg.PulseAmplitude)
	if after.Scale > maxScale+1e-12 || after.Scale < minScale-1e-12 {
		t.Errorf("scale %v out of pulse bounds [%v, %v]", after.Scale, minScale, maxScale)
	}
}

func TestParticlesDieWithinMaxLife(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxParticles = 500
	sim := NewParticleSimulator(cfg)
	sim.Activate(Vec2{X: 144, Y: 144}, 300, 7)

	ticks := 0
	for !sim.IsEmpty() {
		prev := sim.Len()
		sim.Step(1)
		ticks++
		if sim.Len() > prev {
			t.Fatalf("particle count grew without activation: %d -> %d", prev, sim.Len())
		}
		for _, p := range sim.Particles() {
			if p.Opacity < 0 || p.Opacity > 1 {
				t.Fatalf("opacity out of range: %v", p.Opacity)
			}
		}
		if ticks > cfg.MaxLife {
			t.Fatalf("particles still alive after %d ticks", ticks)
		}
	}
}

func TestStepNonPositiveIsNoop(t *testing.T) {
	sim := NewParticleSimulator(smallConfig())
	sim.Activate(Vec2{}, 3, 1)
	before := sim.Particles()
	sim.Step(0)
	sim.Step(-2)
	after := sim.Particles()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("particle %d changed on empty step", i)
		}
	}
}

func TestActivateIsDeterministicPerSeed(t *testing.T) {
	a := NewParticleSimulator(smallConfig())
	b := NewParticleSimulator(smallConfig())
	a.Activate(Vec2{X: 3}, 5, 11)
	b.Activate(Vec2{X: 3}, 5, 11)
	pa, pb := a.Particles(), b.Particles()
	for i := range pa {
		if pa[i] != pb[i] {
			t.Fatalf("same seed must give the same burst, particle %d differs", i)
		}
	}
}

func TestReset(t *testing.T) {
	sim := NewParticleSimulator(smallConfig())
	sim.Activate(Vec2{}, 5, 1)
	sim.Reset()
	if !sim.IsEmpty() {
		t.Errorf("Expected empty after Reset, got %d", sim.Len())
	}
}

func TestColorHex(t *testing.T) {
	if ColorViolet.Hex() != "#8b5cf6" {
		t.Errorf("unexpected violet: %s", ColorViolet.Hex())
	}
	if ColorTag(200).Hex() != "#fbbf24" {
		t.Errorf("unknown colour must fall back to amber")
	}
}
