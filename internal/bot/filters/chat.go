// Package filters решает, кому бот отвечает: основной чат и личка участников.
package filters

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// MemberChecker — реестр участников.
type MemberChecker interface {
	IsMember(ctx context.Context, userID int64) (bool, error)
	EnsureMember(ctx context.Context, userID int64, username, firstName, lastName string) error
}

// ChatFilter пропускает сообщения из FLOOD_CHAT_ID и из лички участников чата.
type ChatFilter struct {
	floodChatID int64
	members     MemberChecker

	// статус пользователя в основном чате по данным Telegram
	chatStatus func(chatID, userID int64) (string, error)
	notify     func(chatID int64, text string)
}

// NewChatFilter создаёт фильтр.
func NewChatFilter(floodChatID int64, members MemberChecker, bot *tgbotapi.BotAPI) *ChatFilter {
	f := &ChatFilter{floodChatID: floodChatID, members: members}
	if bot != nil {
		f.chatStatus = func(chatID, userID int64) (string, error) {
			cm, err := bot.GetChatMember(tgbotapi.GetChatMemberConfig{
				ChatConfigWithUser: tgbotapi.ChatConfigWithUser{ChatID: chatID, UserID: userID},
			})
			return cm.Status, err
		}
		f.notify = func(chatID int64, text string) {
			if _, err := bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
				log.WithError(err).Warn("failed to send deny message")
			}
		}
	}
	return f
}

// CheckAccess — можно ли отвечать на это сообщение.
func (f *ChatFilter) CheckAccess(ctx context.Context, message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil || message.From == nil {
		log.WithField("component", "ChatFilter").Debug("nil message/chat/from")
		return false
	}
	if f.floodChatID == 0 {
		log.WithField("component", "ChatFilter").Error("floodChatID is 0 (config bug)")
		return false
	}

	chatID := message.Chat.ID
	userID := message.From.ID
	logger := log.WithFields(log.Fields{
		"component": "ChatFilter",
		"chat_id":   chatID,
		"user_id":   userID,
	})

	// 1) Основной чат
	if chatID == f.floodChatID {
		return true
	}

	// 2) Остальные группы игнорируем
	if !message.Chat.IsPrivate() {
		logger.Debug("deny: not flood chat and not private")
		return false
	}

	// 3) Личка: сначала по БД
	isMember, err := f.members.IsMember(ctx, userID)
	if err != nil {
		logger.WithError(err).Error("member check failed (db)")
		return false
	}
	if isMember {
		return true
	}

	// 3.1) БД не знает пользователя — спрашиваем Telegram
	if f.chatStatus == nil {
		return false
	}
	status, err := f.chatStatus(f.floodChatID, userID)
	if err != nil {
		logger.WithError(err).Error("member check failed (telegram GetChatMember)")
		return false
	}

	switch status {
	case "creator", "administrator", "member", "restricted":
		if err := f.members.EnsureMember(ctx, userID,
			message.From.UserName, message.From.FirstName, message.From.LastName,
		); err != nil {
			logger.WithError(err).Warn("failed to backfill member to DB (allowing anyway)")
		}
		logger.WithField("tg_status", status).Info("allow: private (telegram member, backfilled)")
		return true
	default:
		logger.WithField("tg_status", status).Info("deny: private (not a chat member)")
		if f.notify != nil {
			f.notify(chatID, "❌ Колесо доступно только участникам основного чата")
		}
		return false
	}
}
