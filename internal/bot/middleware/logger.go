// Package middleware содержит промежуточные обработчики апдейтов:
// логирование, восстановление после паники и rate-limiting.
package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const maxLoggedText = 50

// LogMessage логирует входящее сообщение (текст — первые 50 символов).
func LogMessage(message *tgbotapi.Message) {
	if message == nil || message.From == nil || message.Chat == nil {
		return
	}

	log.WithFields(log.Fields{
		"user_id":  message.From.ID,
		"chat_id":  message.Chat.ID,
		"username": message.From.UserName,
		"text":     truncate(message.Text),
	}).Debug("Входящее сообщение")
}

// LogCallback логирует нажатие inline-кнопки.
func LogCallback(cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.From == nil {
		return
	}

	fields := log.Fields{
		"user_id": cq.From.ID,
		"data":    truncate(cq.Data),
	}
	if cq.Message != nil && cq.Message.Chat != nil {
		fields["chat_id"] = cq.Message.Chat.ID
		fields["message_id"] = cq.Message.MessageID
	}
	log.WithFields(fields).Debug("Нажатие кнопки")
}

func truncate(text string) string {
	r := []rune(text)
	if len(r) > maxLoggedText {
		return string(r[:maxLoggedText]) + "..."
	}
	return text
}
