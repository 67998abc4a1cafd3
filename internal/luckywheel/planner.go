package luckywheel

import "math"

// planEpsilon — допуск при сравнении углов.
const planEpsilon = 1e-9

// Plan считает новый накопленный угол поворота колеса.
//
// Сектор index начинается с угла index*sectorAngle, указатель неподвижен на 0°,
// значит колесо должно остановиться на (360 - index*sectorAngle) mod 360.
// К минимальному прямому смещению от текущего положения добавляется
// extraFullTurns полных оборотов. Колесо крутится только вперёд:
// результат всегда строго больше previousCumulative.
func Plan(previousCumulative float64, selectedIndex int, sectorAngle float64, extraFullTurns int) float64 {
	target := normalizeAngle(360 - float64(selectedIndex)*sectorAngle)
	current := normalizeAngle(previousCumulative)

	delta := normalizeAngle(target - current)
	if delta > 360-planEpsilon {
		delta = 0
	}

	if extraFullTurns < 0 {
		extraFullTurns = 0
	}
	next := previousCumulative + delta + float64(extraFullTurns)*360
	if next <= previousCumulative {
		next += 360
	}
	return next
}

// SectorUnderPointer возвращает индекс сектора под указателем
// при данном повороте колеса из count секторов.
func SectorUnderPointer(rotation float64, count int) int {
	if count <= 0 {
		return -1
	}
	sector := 360 / float64(count)
	offset := normalizeAngle(360 - normalizeAngle(rotation))
	if offset > 360-planEpsilon {
		offset = 0
	}
	i := int(math.Floor(offset/sector + planEpsilon))
	return i % count
}

// FullTurns — сколько полных оборотов между двумя углами.
func FullTurns(from, to float64) int {
	if to <= from {
		return 0
	}
	return int(math.Floor((to - from) / 360))
}

// normalizeAngle приводит угол к [0, 360).
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}
