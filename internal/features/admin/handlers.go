// Package admin — handlers.go обрабатывает сообщения админа в личке.
// Панель работает через Reply Keyboard.
// Поток: пароль → клавиатура → действие → пошаговый диалог.
package admin

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wallet-bot/internal/common"
)

// Handler обрабатывает админ-команды.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик админ-панели.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleAdminMessage обрабатывает сообщение в личке.
// Возвращает false, если сообщение не для админ-панели.
func (h *Handler) HandleAdminMessage(ctx context.Context, chatID, userID int64, text string) bool {
	if !h.service.IsAdmin(ctx, userID) {
		return false
	}

	state := h.service.GetState(userID)
	if state != nil && state.State == StateAwaitingPassword {
		h.handlePassword(ctx, chatID, userID, text)
		return true
	}

	if !h.service.HasActiveSession(ctx, userID) {
		if text != "/login" && !isPanelCall(text) {
			return false
		}
		h.sendMessage(chatID, "🔐 Введите пароль для доступа к админ-панели:")
		h.service.SetState(userID, DialogState{State: StateAwaitingPassword})
		return true
	}

	if text == ButtonCancel {
		h.service.ClearState(userID)
		h.showKeyboard(chatID, "Действие отменено")
		return true
	}

	if state != nil {
		switch state.State {
		case StateGrantUsername:
			h.handleGrantUsername(ctx, chatID, userID, text)
			return true
		case StateGrantAmount:
			h.handleGrantAmount(ctx, chatID, userID, state, text)
			return true
		}
	}

	switch text {
	case ButtonGrantSpins:
		h.sendMessage(chatID, "Кому выдать спины? Отправьте @username:")
		h.service.SetState(userID, DialogState{State: StateGrantUsername})
		return true
	case ButtonResetSpins:
		if err := h.service.ResetSpins(ctx, userID); err != nil {
			log.WithError(err).Error("Ошибка ручного сброса спинов")
			h.sendMessage(chatID, "❌ Не удалось сбросить спины")
			return true
		}
		h.sendMessage(chatID, "✅ Спины всех участников сброшены")
		return true
	case ButtonActiveWheels:
		n := h.service.ActiveWheels()
		h.sendMessage(chatID, fmt.Sprintf("🎡 Сейчас открыто: %d %s", n, common.PluralizeWheels(n)))
		return true
	}
	if isPanelCall(text) || text == "/login" {
		h.showKeyboard(chatID, "✅ Админ-панель открыта")
		return true
	}

	return false
}

func isPanelCall(text string) bool {
	switch text {
	case "Админ", "Панель", "админ", "панель":
		return true
	}
	return false
}

func (h *Handler) handlePassword(ctx context.Context, chatID, userID int64, password string) {
	h.service.ClearState(userID)

	if err := h.service.Login(ctx, userID, password); err != nil {
		if errors.Is(err, common.ErrWrongPassword) || errors.Is(err, common.ErrTooManyAttempts) {
			h.sendMessage(chatID, "❌ "+err.Error())
			return
		}
		log.WithError(err).WithField("user_id", userID).Error("Ошибка входа в админ-панель")
		h.sendMessage(chatID, "❌ Ошибка входа")
		return
	}

	h.showKeyboard(chatID, "✅ Аутентификация успешна!")
}

func (h *Handler) handleGrantUsername(ctx context.Context, chatID, userID int64, text string) {
	m, err := h.service.FindRecipient(ctx, text)
	if err != nil {
		if errors.Is(err, common.ErrUserNotFound) {
			h.sendMessage(chatID, "❌ Участник не найден. Отправьте @username ещё раз или нажмите «Отмена».")
			return
		}
		log.WithError(err).Error("Ошибка поиска участника")
		h.sendMessage(chatID, "❌ Ошибка поиска участника")
		h.service.ClearState(userID)
		return
	}

	h.service.SetState(userID, DialogState{
		State:    StateGrantAmount,
		TargetID: m.UserID,
		Target:   m.DisplayName(),
	})
	h.sendMessage(chatID, fmt.Sprintf("Сколько спинов выдать %s? (1–%d)", m.DisplayName(), maxGrant))
}

func (h *Handler) handleGrantAmount(ctx context.Context, chatID, userID int64, state *DialogState, text string) {
	n, err := ParseAmount(text)
	if err != nil {
		h.sendMessage(chatID, "❌ "+err.Error())
		return
	}

	left, err := h.service.GrantSpins(ctx, userID, state.TargetID, n)
	h.service.ClearState(userID)
	if err != nil {
		log.WithError(err).Error("Ошибка выдачи спинов")
		h.sendMessage(chatID, "❌ Не удалось выдать спины")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ %s: +%d %s, теперь %s",
		state.Target, n, common.PluralizeSpins(n), common.FormatSpinsLeft(left)))
}

func (h *Handler) showKeyboard(chatID int64, text string) {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonGrantSpins),
			tgbotapi.NewKeyboardButton(ButtonResetSpins),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonActiveWheels),
			tgbotapi.NewKeyboardButton(ButtonCancel),
		),
	)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки клавиатуры")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
