// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки участников
var (
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrInvalidAmount — некорректное количество (ноль или отрицательное)
	ErrInvalidAmount = errors.New("количество должно быть положительным")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)

// Ошибки колеса
var (
	// ErrWheelDisabled — колесо отключено в настройках
	ErrWheelDisabled = errors.New("колесо удачи временно отключено")
	// ErrNotWheelOwner — нажали чужую кнопку
	ErrNotWheelOwner = errors.New("это не твоё колесо")
	// ErrUnauthorized — нет или неверный токен мини-приложения
	ErrUnauthorized = errors.New("требуется авторизация")
)
