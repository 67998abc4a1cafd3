package luckywheel

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// VisualTag — вид награды, от него зависит оформление сектора.
type VisualTag string

const (
	TagEnergy     VisualTag = "energy"
	TagLuck       VisualTag = "luck"
	TagExperience VisualTag = "experience"
)

// Valid сообщает, известен ли тег.
func (t VisualTag) Valid() bool {
	switch t {
	case TagEnergy, TagLuck, TagExperience:
		return true
	}
	return false
}

// Prize — один сектор колеса.
type Prize struct {
	ID     int             // Уникальный ID приза в таблице
	Name   string          // Отображаемое название ("Энергия")
	Value  decimal.Decimal // Размер награды
	Weight float64         // Относительный вес, > 0
	Tag    VisualTag       // Вид награды
}

// PrizeTable — проверенная упорядоченная таблица призов.
// Порядок задаёт порядок секторов: сектор i начинается с угла i*SectorAngle.
// После создания таблица не меняется.
type PrizeTable struct {
	prizes []Prize
	total  float64
}

// NewPrizeTable проверяет призы и строит таблицу.
// Пустая таблица, неположительный или бесконечный вес, повтор ID
// и неизвестный тег — ошибка конфигурации.
func NewPrizeTable(prizes []Prize) (*PrizeTable, error) {
	if len(prizes) == 0 {
		return nil, fmt.Errorf("%w: таблица призов пуста", ErrConfiguration)
	}

	seen := make(map[int]struct{}, len(prizes))
	var total float64
	for i, p := range prizes {
		if math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) || p.Weight <= 0 {
			return nil, fmt.Errorf("%w: приз #%d (id=%d) имеет вес %v", ErrConfiguration, i, p.ID, p.Weight)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: повторяется id=%d", ErrConfiguration, p.ID)
		}
		if !p.Tag.Valid() {
			return nil, fmt.Errorf("%w: приз id=%d имеет неизвестный тег %q", ErrConfiguration, p.ID, p.Tag)
		}
		seen[p.ID] = struct{}{}
		total += p.Weight
	}
	if total <= 0 || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: суммарный вес %v", ErrConfiguration, total)
	}

	cp := make([]Prize, len(prizes))
	copy(cp, prizes)
	return &PrizeTable{prizes: cp, total: total}, nil
}

func (t *PrizeTable) Len() int { return len(t.prizes) }

// At возвращает приз по индексу сектора.
func (t *PrizeTable) At(i int) Prize { return t.prizes[i] }

// Prizes возвращает копию списка призов.
func (t *PrizeTable) Prizes() []Prize {
	out := make([]Prize, len(t.prizes))
	copy(out, t.prizes)
	return out
}

func (t *PrizeTable) TotalWeight() float64 { return t.total }

// SectorAngle — угол одного сектора в градусах.
func (t *PrizeTable) SectorAngle() float64 { return 360 / float64(len(t.prizes)) }

// IndexOf возвращает индекс приза по ID или -1.
func (t *PrizeTable) IndexOf(id int) int {
	for i, p := range t.prizes {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Probability — теоретическая вероятность выпадения сектора i.
func (t *PrizeTable) Probability(i int) float64 {
	return t.prizes[i].Weight / t.total
}

// Pick выбирает приз по значению draw из [0,1).
// Таблица уже проверена, поэтому ошибки здесь быть не может.
func (t *PrizeTable) Pick(draw float64) (int, Prize) {
	i := walk(t.prizes, t.total, draw)
	return i, t.prizes[i]
}
