package luckywheel

import (
	"math"
	"testing"
)

func congruent(a, b float64) bool {
	d := math.Abs(normalizeAngle(a) - normalizeAngle(b))
	return d < 1e-6 || math.Abs(d-360) < 1e-6
}

func TestPlanExamples(t *testing.T) {
	tests := []struct {
		name       string
		prev       float64
		index      int
		sector     float64
		extraTurns int
		want       float64
	}{
		{"first spin to sector 0", 0, 0, 60, 5, 1800},
		{"first spin to sector 2", 0, 2, 60, 5, 1800 + 240},
		{"second spin continues forward", 2040, 5, 60, 5, 2040 + 180 + 1800},
		{"same sector without extra turns gets a full turn", 720, 0, 60, 0, 1080},
		{"negative extra turns count as zero", 0, 1, 60, -3, 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.prev, tt.index, tt.sector, tt.extraTurns)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

// Для любых входов: конечный угол указывает на выбранный сектор,
// колесо крутится вперёд и делает не меньше extraTurns оборотов.
func TestPlanProperties(t *testing.T) {
	draws := SeededDraws(99)

	for _, count := range []int{1, 2, 3, 6, 7, 12, 37} {
		sector := 360 / float64(count)
		prev := 0.0
		for i := 0; i < 500; i++ {
			idx := int(draws.Next() * float64(count))
			extra := int(draws.Next() * 8)

			next := Plan(prev, idx, sector, extra)

			if next <= prev {
				t.Fatalf("count=%d: rotation must grow, prev=%v next=%v", count, prev, next)
			}
			if !congruent(next, 360-float64(idx)*sector) {
				t.Fatalf("count=%d idx=%d: %v is not congruent to target", count, idx, next)
			}
			if next-prev < float64(extra)*360 {
				t.Fatalf("count=%d: expected at least %d turns, got delta %v", count, extra, next-prev)
			}
			if next-prev > float64(extra+1)*360+1e-6 {
				t.Fatalf("count=%d: delta %v is more than the minimal forward move", count, next-prev)
			}
			if got := SectorUnderPointer(next, count); got != idx {
				t.Fatalf("count=%d: pointer shows sector %d, expected %d", count, got, idx)
			}
			prev = next
		}
	}
}

func TestSectorUnderPointer(t *testing.T) {
	tests := []struct {
		rotation float64
		count    int
		want     int
	}{
		{0, 6, 0},
		{360, 6, 0},
		{300, 6, 1},
		{1800 + 240, 6, 2},
		{-60, 6, 1},
		{10, 6, 5},
		{0, 0, -1},
	}
	for _, tt := range tests {
		if got := SectorUnderPointer(tt.rotation, tt.count); got != tt.want {
			t.Errorf("SectorUnderPointer(%v, %d): expected %d, got %d", tt.rotation, tt.count, tt.want, got)
		}
	}
}

func TestFullTurns(t *testing.T) {
	if got := FullTurns(0, 2040); got != 5 {
		t.Errorf("Expected 5 turns, got %d", got)
	}
	if got := FullTurns(100, 100); got != 0 {
		t.Errorf("Expected 0 turns, got %d", got)
	}
}

func TestRotationTween(t *testing.T) {
	var tw RotationTween
	tw.Start(0, 1800, 3000)

	if !tw.Active() {
		t.Fatal("tween must be active after Start")
	}
	mid := tw.Step(1500)
	if mid <= 900 || mid >= 1800 {
		t.Errorf("ease-out must be past the halfway angle at half time, got %v", mid)
	}
	last := tw.Step(2000)
	if last != 1800 || tw.Active() {
		t.Errorf("Expected tween to finish at 1800, got %v (active=%v)", last, tw.Active())
	}

	tw.Start(10, 10, 3000)
	if tw.Active() {
		t.Error("zero-length rotation must not animate")
	}
}
