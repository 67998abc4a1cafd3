// Package admin — админ-панель в личке: вход по паролю (Argon2id) и
// управление спинами колеса.
// models.go описывает сессии, попытки входа и состояние диалога.
package admin

import "time"

// AdminSession — активная сессия администратора.
type AdminSession struct {
	ID              int64     `db:"id"`
	UserID          int64     `db:"user_id"`
	SessionToken    string    `db:"session_token"`
	AuthenticatedAt time.Time `db:"authenticated_at"`
	ExpiresAt       time.Time `db:"expires_at"`
	LastActivity    time.Time `db:"last_activity"`
	IsActive        bool      `db:"is_active"`
}

// DialogState — шаг пошагового диалога с админом.
type DialogState struct {
	State     string
	TargetID  int64  // Кому выдаём спины
	Target    string // Как показывать получателя
	ExpiresAt time.Time
}

// Шаги диалога
const (
	StateNone             = ""
	StateAwaitingPassword = "awaiting_password"
	StateGrantUsername    = "grant_username" // Ждём @username получателя
	StateGrantAmount      = "grant_amount"   // Ждём количество спинов
)

// Кнопки клавиатуры админ-панели
const (
	ButtonGrantSpins   = "Выдать спины"
	ButtonResetSpins   = "Сбросить спины"
	ButtonActiveWheels = "Активные колёса"
	ButtonCancel       = "Отмена"
)

const (
	maxFailedAttempts = 3
	lockoutPeriod     = time.Hour
	sessionTTL        = 24 * time.Hour
	dialogTTL         = 5 * time.Minute
	maxGrant          = 100
)
