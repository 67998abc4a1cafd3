// Package wheel — render.go рисует колесо текстом для сообщения в чате.
package wheel

import (
	"fmt"
	"strings"

	"serotonyl.ru/wallet-bot/internal/common"
	"serotonyl.ru/wallet-bot/internal/luckywheel"
)

// stripRadius — сколько секторов показываем по бокам от указателя.
const stripRadius = 2

// Render формирует текст сообщения колеса.
//
// Формат:
//
//	🎡 КОЛЕСО УДАЧИ 🎡
//
//	📈50 ⚡100 [⚡50] ⚡30 ✨20
//	             ▲
//
//	🎉 Поздравляем!
//	⚡ Энергия: 50
//	Осталось 2 спина
func Render(snap luckywheel.Snapshot, cat *Catalog) string {
	var sb strings.Builder
	sb.WriteString("🎡 КОЛЕСО УДАЧИ 🎡\n\n")

	strip, pointerAt := renderStrip(snap.Rotation, cat)
	sb.WriteString(strip)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", pointerAt))
	sb.WriteString("▲\n\n")

	switch snap.State {
	case luckywheel.StateSpinning, luckywheel.StateRevealing:
		sb.WriteString("🌀 Колесо крутится...\n")
	case luckywheel.StateResolved:
		sb.WriteString("🎉 Поздравляем!\n")
		if snap.Selected != nil {
			sb.WriteString(PrizeCard(*snap.Selected, cat))
			sb.WriteString("\n")
		}
		if sparks := Sparkles(len(snap.Particles)); sparks != "" {
			sb.WriteString(sparks)
			sb.WriteString("\n")
		}
	default:
		if snap.QuotaRemaining > 0 {
			sb.WriteString("Нажми «Крутить»!\n")
		} else {
			sb.WriteString("Спины на сегодня закончились. Приходи завтра!\n")
		}
	}

	sb.WriteString(capitalize(common.FormatSpinsLeft(snap.QuotaRemaining)))
	return sb.String()
}

// PrizeCard — строка с призом: "⚡ Энергия: 50".
func PrizeCard(p luckywheel.Prize, cat *Catalog) string {
	d := cat.DecorationFor(p)
	return fmt.Sprintf("%s %s: %s", d.Emoji, p.Name, common.FormatDecimal(p.Value))
}

// Sparkles — конфетти текстом: одна искра на каждые 10 частиц, не больше 10.
func Sparkles(n int) string {
	if n <= 0 {
		return ""
	}
	k := (n + 9) / 10
	if k > 10 {
		k = 10
	}
	return strings.Repeat("✨", k)
}

// renderStrip рисует сектора вокруг указателя. Возвращает строку и
// позицию (в рунах) начала центрального сектора.
func renderStrip(rotation float64, cat *Catalog) (string, int) {
	n := cat.Table.Len()
	center := luckywheel.SectorUnderPointer(rotation, n)

	radius := stripRadius
	if 2*radius+1 > n {
		radius = (n - 1) / 2
	}

	var sb strings.Builder
	pointerAt := 0
	for off := -radius; off <= radius; off++ {
		i := ((center+off)%n + n) % n
		p := cat.Table.At(i)
		label := cat.DecorationFor(p).Emoji + common.FormatDecimal(p.Value)

		if off > -radius {
			sb.WriteString(" ")
		}
		if off == 0 {
			pointerAt = len([]rune(sb.String())) + 1
			sb.WriteString("[" + label + "]")
			continue
		}
		sb.WriteString(label)
	}
	return sb.String(), pointerAt
}

func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
