package luckywheel

import (
	"fmt"
	"math"
)

// Select выбирает индекс приза пропорционально весам.
//
// Алгоритм: r = draw * W, затем из r по очереди вычитаются веса;
// первый приз, на котором r <= 0, выигрывает. Если из-за погрешности
// float r так и не опустился до нуля, выигрывает последний приз.
//
// draw вне [0,1) прижимается к границам.
func Select(prizes []Prize, draw float64) (int, error) {
	if len(prizes) == 0 {
		return 0, fmt.Errorf("%w: таблица призов пуста", ErrConfiguration)
	}
	var total float64
	for _, p := range prizes {
		total += p.Weight
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: суммарный вес %v", ErrConfiguration, total)
	}
	return walk(prizes, total, draw), nil
}

func walk(prizes []Prize, total, draw float64) int {
	r := clampDraw(draw) * total
	for i, p := range prizes {
		r -= p.Weight
		if r <= 0 {
			return i
		}
	}
	return len(prizes) - 1
}

func clampDraw(d float64) float64 {
	switch {
	case math.IsNaN(d), d < 0:
		return 0
	case d >= 1:
		return math.Nextafter(1, 0)
	}
	return d
}
