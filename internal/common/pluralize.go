// Package common — pluralize.go содержит форматирование количеств
// для сообщений бота. Основная логика плюрализации реализована в helpers.go.
package common

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// FormatSpinsLeft создаёт строку вида "осталось 2 спина".
//
// Примеры:
//
//	FormatSpinsLeft(0) → "спинов не осталось"
//	FormatSpinsLeft(1) → "остался 1 спин"
//	FormatSpinsLeft(3) → "осталось 3 спина"
func FormatSpinsLeft(n int) string {
	switch {
	case n <= 0:
		return "спинов не осталось"
	case PluralizeSpins(n) == "спин":
		return fmt.Sprintf("остался %d %s", n, PluralizeSpins(n))
	}
	return fmt.Sprintf("осталось %d %s", n, PluralizeSpins(n))
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(2350) → "2 350"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	// Рекурсивно добавляем разделители
	rest := n / 1000
	last := n % 1000
	return fmt.Sprintf("%s %03d", FormatNumber(rest), last)
}

// FormatDecimal форматирует размер награды: целая часть с разделителями,
// дробная — только если она есть.
// Пример: FormatDecimal(1250.5) → "1 250.5"
func FormatDecimal(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	out := sign + FormatNumber(whole.IntPart())
	if frac := d.Sub(whole); !frac.IsZero() {
		// "0.5" → ".5"
		out += frac.String()[1:]
	}
	return out
}
