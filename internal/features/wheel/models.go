// Package wheel — колесо удачи внутри чата: каталог призов, дневная квота спинов,
// сессии колеса по пользователям и кнопки в Telegram.
// models.go описывает структуры данных фичи.
package wheel

import (
	"time"

	"serotonyl.ru/wallet-bot/internal/luckywheel"
)

// Quota — строка таблицы spin_quotas.
type Quota struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`    // Владелец (members.user_id)
	SpinsLeft int       `db:"spins_left"` // Остаток спинов, >= 0
	ResetOn   time.Time `db:"reset_on"`   // День последнего сброса
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Decoration — оформление сектора. В выборе приза не участвует.
type Decoration struct {
	Emoji string
	Color string // #rrggbb для мини-приложения
}

// Catalog — проверенная таблица призов плюс оформление по ID приза.
type Catalog struct {
	Table *luckywheel.PrizeTable
	Decor map[int]Decoration
}

// DecorationFor возвращает оформление приза; если не задано — по тегу.
func (c *Catalog) DecorationFor(p luckywheel.Prize) Decoration {
	d, ok := c.Decor[p.ID]
	def := tagDecoration(p.Tag)
	if !ok {
		return def
	}
	if d.Emoji == "" {
		d.Emoji = def.Emoji
	}
	if d.Color == "" {
		d.Color = def.Color
	}
	return d
}

func tagDecoration(tag luckywheel.VisualTag) Decoration {
	switch tag {
	case luckywheel.TagLuck:
		return Decoration{Emoji: "✨", Color: "#a855f7"}
	case luckywheel.TagExperience:
		return Decoration{Emoji: "📈", Color: "#06b6d4"}
	default:
		return Decoration{Emoji: "⚡", Color: "#facc15"}
	}
}

// Действия inline-кнопок
const (
	ActionSpin    = "spin"
	ActionDismiss = "dismiss"
	ActionRefresh = "refresh"
)

// callbackPayload — данные inline-кнопки (лимит Telegram — 64 байта).
type callbackPayload struct {
	Action string `json:"a"`
	Owner  int64  `json:"u"`
}
