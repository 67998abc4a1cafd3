// Package luckywheel — ядро колеса удачи: выбор приза по весам, расчёт поворота,
// частицы празднования, планировщик кадров и машина состояний сессии.
//
// Пакет не знает ни о Telegram, ни о БД: всё внешнее (источник случайности,
// часы, хранение квоты) передаётся снаружи.
package luckywheel

import "errors"

var (
	// ErrConfiguration — некорректная таблица призов или параметры сессии.
	// Возвращается при загрузке, а не во время спина.
	ErrConfiguration = errors.New("некорректная конфигурация колеса")

	// ErrLoopClosed — цикл сессии уже остановлен.
	ErrLoopClosed = errors.New("сессия колеса закрыта")
)
