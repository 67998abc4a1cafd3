// Package bot содержит главный модуль бота — приём апдейтов и маршрутизацию.
// bot.go принимает апдейты long polling'ом и раздаёт их обработчикам.
package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wallet-bot/internal/bot/filters"
	"serotonyl.ru/wallet-bot/internal/bot/middleware"
	"serotonyl.ru/wallet-bot/internal/config"
	"serotonyl.ru/wallet-bot/internal/features/admin"
	"serotonyl.ru/wallet-bot/internal/features/members"
	"serotonyl.ru/wallet-bot/internal/features/wheel"
)

const helpText = "🎡 Колесо удачи\n\n" +
	"!колесо — открыть колесо\n" +
	"!спины — сколько спинов осталось\n\n" +
	"Каждый день — новые спины."

// Deps — обработчики и сервисы, нужные боту.
type Deps struct {
	Members       *members.Service
	MemberHandler *members.Handler
	WheelHandler  *wheel.Handler
	AdminHandler  *admin.Handler
	ChatFilter    *filters.ChatFilter
}

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api  *tgbotapi.BotAPI
	cfg  *config.Config
	deps Deps

	rateLimiter *middleware.RateLimiter
	parser      *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт бота.
func New(api *tgbotapi.BotAPI, cfg *config.Config, deps Deps) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:         api,
		cfg:         cfg,
		deps:        deps,
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		parser:      NewCommandParser(api.Self.UserName),
		inflight:    make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram. Блокирует до отмены ctx.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": cap(b.inflight),
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic(update.UpdateID)

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	message := update.Message
	if message == nil {
		return
	}

	// Вступление новых участников в основной чат
	if message.NewChatMembers != nil {
		if message.Chat != nil && message.Chat.ID == b.cfg.FloodChatID {
			b.deps.MemberHandler.HandleNewChatMembers(ctx, message.NewChatMembers)
		}
		return
	}

	if message.Text == "" {
		return
	}
	middleware.LogMessage(message)

	if !b.deps.ChatFilter.CheckAccess(ctx, message) {
		return
	}

	userID := message.From.ID
	if !b.rateLimiter.Allow(userID) {
		log.WithField("user_id", userID).Debug("rate limited")
		return
	}

	if err := b.deps.Members.EnsureMember(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureMember failed")
	}

	chatID := message.Chat.ID
	if message.Chat.IsPrivate() {
		if b.deps.AdminHandler.HandleAdminMessage(ctx, chatID, userID, strings.TrimSpace(message.Text)) {
			return
		}
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}
	log.WithFields(log.Fields{"cmd": cmd, "args": args}).Debug("routing command")
	b.routeCommand(ctx, chatID, userID, cmd)
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, cmd string) {
	switch cmd {
	case "start", "help", "помощь":
		b.sendMessage(chatID, helpText)

	case "колесо", "wheel", "крутить":
		if !b.cfg.FeatureWheelEnabled {
			b.sendMessage(chatID, "🎡 Колесо временно отключено")
			return
		}
		b.deps.WheelHandler.HandleWheel(ctx, chatID, userID)

	case "спины", "spins":
		if b.cfg.FeatureWheelEnabled {
			b.deps.WheelHandler.HandleSpins(ctx, chatID, userID)
		}
	}
}

// handleCallback обрабатывает нажатия inline-кнопок.
func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	middleware.LogCallback(cq)
	if cq.From == nil {
		return
	}

	if !b.rateLimiter.Allow(cq.From.ID) {
		b.answerCallback(cq.ID, "Слишком часто, подожди немного")
		return
	}

	switch {
	case wheel.IsWheelCallback(cq.Data):
		if !b.cfg.FeatureWheelEnabled {
			b.answerCallback(cq.ID, "🎡 Колесо временно отключено")
			return
		}
		b.deps.WheelHandler.HandleCallback(ctx, cq)
	default:
		b.answerCallback(cq.ID, "")
	}
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		log.WithError(err).Debug("Ошибка ответа на callback")
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
