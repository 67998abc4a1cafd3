// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел, работа с временем.
package common

import (
	"time"
)

// pluralForm выбирает форму слова для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → one (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → few (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → many (0, 5-20, 25-30, 100, ...)
func pluralForm(n int64, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	lastDigit := n % 10
	lastTwoDigits := n % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return one
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return few
	}
	return many
}

// PluralizeSpins возвращает правильную форму слова «спин» для числа n.
//
// Примеры:
//
//	PluralizeSpins(1)  → "спин"
//	PluralizeSpins(3)  → "спина"
//	PluralizeSpins(5)  → "спинов"
//	PluralizeSpins(11) → "спинов"
//	PluralizeSpins(21) → "спин"
func PluralizeSpins(n int) string {
	return pluralForm(int64(n), "спин", "спина", "спинов")
}

// PluralizeTurns возвращает правильную форму слова «оборот».
func PluralizeTurns(n int) string {
	return pluralForm(int64(n), "оборот", "оборота", "оборотов")
}

// PluralizeWheels возвращает правильную форму слова «колесо» (для статистики админки).
func PluralizeWheels(n int) string {
	return pluralForm(int64(n), "колесо", "колеса", "колёс")
}

// DateIn возвращает полночь дня t в часовом поясе loc.
// Используется для ежедневного сброса спинов.
func DateIn(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" (день.месяц.год часы:минуты).
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02.01.2006 15:04")
}

// UntilNextDay — сколько осталось до следующей полуночи в loc.
func UntilNextDay(now time.Time, loc *time.Location) time.Duration {
	return DateIn(now, loc).AddDate(0, 0, 1).Sub(now)
}
