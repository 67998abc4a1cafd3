// Package wheel — handlers.go обрабатывает команды !колесо, !спины и
// нажатия inline-кнопок колеса.
package wheel

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wallet-bot/internal/common"
	"serotonyl.ru/wallet-bot/internal/luckywheel"
)

const callbackPrefix = "w:"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TokenIssuer выдаёт токен для мини-приложения колеса.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// Handler обрабатывает команды и кнопки колеса.
type Handler struct {
	service     *Service
	bot         *tgbotapi.BotAPI
	renderEvery time.Duration

	tokens     TokenIssuer
	miniAppURL string

	mu         sync.Mutex
	projecting map[int64]bool
}

// NewHandler создаёт обработчик колеса.
func NewHandler(service *Service, bot *tgbotapi.BotAPI, renderEvery time.Duration) *Handler {
	if renderEvery <= 0 {
		renderEvery = time.Second
	}
	return &Handler{
		service:     service,
		bot:         bot,
		renderEvery: renderEvery,
		projecting:  make(map[int64]bool),
	}
}

// WithMiniApp добавляет под колесом кнопку мини-приложения.
func (h *Handler) WithMiniApp(baseURL string, tokens TokenIssuer) *Handler {
	h.miniAppURL = baseURL
	h.tokens = tokens
	return h
}

// IsWheelCallback — относится ли callback к колесу.
func IsWheelCallback(data string) bool {
	return strings.HasPrefix(data, callbackPrefix)
}

func encodeCallback(action string, owner int64) string {
	raw, err := json.Marshal(callbackPayload{Action: action, Owner: owner})
	if err != nil {
		// Структура из двух полей не может не сериализоваться
		panic(err)
	}
	return callbackPrefix + string(raw)
}

func decodeCallback(data string) (callbackPayload, error) {
	var p callbackPayload
	if !IsWheelCallback(data) {
		return p, fmt.Errorf("не колесо: %q", data)
	}
	if err := json.Unmarshal([]byte(strings.TrimPrefix(data, callbackPrefix)), &p); err != nil {
		return p, fmt.Errorf("битые данные кнопки: %w", err)
	}
	switch p.Action {
	case ActionSpin, ActionDismiss, ActionRefresh:
	default:
		return p, fmt.Errorf("неизвестное действие %q", p.Action)
	}
	return p, nil
}

// HandleWheel обрабатывает команду !колесо — присылает колесо с кнопками.
func (h *Handler) HandleWheel(ctx context.Context, chatID, userID int64) {
	snap, err := h.service.Snapshot(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Не удалось открыть колесо")
		h.sendMessage(chatID, "❌ Колесо сейчас недоступно")
		return
	}

	msg := tgbotapi.NewMessage(chatID, Render(snap, h.service.Catalog()))
	msg.ReplyMarkup = h.keyboard(snap, userID)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки колеса")
	}
}

// HandleSpins обрабатывает команду !спины — сколько спинов осталось.
func (h *Handler) HandleSpins(ctx context.Context, chatID, userID int64) {
	snap, err := h.service.Snapshot(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Не удалось получить квоту")
		h.sendMessage(chatID, "❌ Не удалось узнать количество спинов")
		return
	}

	text := "🎡 " + capitalize(common.FormatSpinsLeft(snap.QuotaRemaining))
	if snap.QuotaRemaining == 0 {
		loc := h.service.settings.Location
		wait := common.UntilNextDay(time.Now(), loc).Round(time.Minute)
		text += fmt.Sprintf("\nНовые спины через %s", formatWait(wait))
	}
	h.sendMessage(chatID, text)
}

// HandleCallback обрабатывает нажатие кнопки под колесом.
func (h *Handler) HandleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	payload, err := decodeCallback(cq.Data)
	if err != nil {
		log.WithError(err).WithField("data", cq.Data).Debug("Некорректный callback колеса")
		h.answer(cq.ID, "")
		return
	}

	userID := cq.From.ID
	if payload.Owner != userID {
		h.answer(cq.ID, "Это не твоё колесо 🙂")
		return
	}
	if cq.Message == nil {
		h.answer(cq.ID, "")
		return
	}
	chatID := cq.Message.Chat.ID
	messageID := cq.Message.MessageID

	switch payload.Action {
	case ActionSpin:
		h.handleSpin(ctx, cq.ID, chatID, messageID, userID)
	case ActionDismiss:
		_, snap, err := h.service.Dismiss(ctx, userID)
		if err != nil {
			h.fail(cq.ID, userID, err)
			return
		}
		h.answer(cq.ID, "")
		h.edit(chatID, messageID, snap, userID)
	case ActionRefresh:
		snap, err := h.service.Snapshot(ctx, userID)
		if err != nil {
			h.fail(cq.ID, userID, err)
			return
		}
		h.answer(cq.ID, "")
		h.edit(chatID, messageID, snap, userID)
	}
}

func (h *Handler) handleSpin(ctx context.Context, callbackID string, chatID int64, messageID int, userID int64) {
	outcome, snap, err := h.service.Spin(ctx, userID)
	if err != nil {
		h.fail(callbackID, userID, err)
		return
	}

	switch outcome {
	case luckywheel.SpinAccepted:
		h.answer(callbackID, "🎡 Крутим!")
		h.edit(chatID, messageID, snap, userID)
		h.startProjector(ctx, chatID, messageID, userID)
	case luckywheel.SpinIgnored:
		h.answer(callbackID, "Колесо уже крутится")
	case luckywheel.SpinQuotaExhausted:
		h.answer(callbackID, "Спины на сегодня закончились")
	}
}

// startProjector перерисовывает сообщение, пока колесо не покажет приз.
func (h *Handler) startProjector(ctx context.Context, chatID int64, messageID int, userID int64) {
	h.mu.Lock()
	if h.projecting[userID] {
		h.mu.Unlock()
		return
	}
	h.projecting[userID] = true
	h.mu.Unlock()

	limit := h.service.settings.Session.EffectiveRevealDelay() + 5*time.Second

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.projecting, userID)
			h.mu.Unlock()
		}()

		pctx, cancel := context.WithTimeout(ctx, limit)
		defer cancel()

		ticker := time.NewTicker(h.renderEvery)
		defer ticker.Stop()

		for {
			select {
			case <-pctx.Done():
				log.WithField("user_id", userID).Debug("Проектор колеса остановлен по таймауту")
				return
			case <-ticker.C:
			}

			snap, err := h.service.Snapshot(pctx, userID)
			if err != nil {
				return
			}
			h.edit(chatID, messageID, snap, userID)
			if snap.State == luckywheel.StateResolved || snap.State == luckywheel.StateIdle || snap.Closed {
				return
			}
		}
	}()
}

// AnnounceResult сообщает итог спина в личку, если сообщение с колесом
// сейчас не обновляется (спин из мини-приложения).
func (h *Handler) AnnounceResult(userID int64, res luckywheel.Result) {
	if res.Interrupted {
		return
	}

	h.mu.Lock()
	busy := h.projecting[userID]
	h.mu.Unlock()
	if busy {
		return
	}

	text := fmt.Sprintf("🎡 Колесо остановилось!\n%s\n%s",
		PrizeCard(res.Prize, h.service.Catalog()),
		capitalize(common.FormatSpinsLeft(res.QuotaRemaining)))

	msg := tgbotapi.NewMessage(userID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).WithField("user_id", userID).Debug("Не удалось отправить итог спина")
	}
}

func (h *Handler) keyboard(snap luckywheel.Snapshot, userID int64) tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	switch snap.State {
	case luckywheel.StateResolved:
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✅ Забрать", encodeCallback(ActionDismiss, userID)))
	case luckywheel.StateIdle:
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("🎡 Крутить", encodeCallback(ActionSpin, userID)))
	}
	row = append(row, tgbotapi.NewInlineKeyboardButtonData("🔄", encodeCallback(ActionRefresh, userID)))

	rows := [][]tgbotapi.InlineKeyboardButton{row}
	if link := h.miniAppLink(userID); link != "" {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("🎨 Открыть колесо", link),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (h *Handler) miniAppLink(userID int64) string {
	if h.miniAppURL == "" || h.tokens == nil {
		return ""
	}
	token, err := h.tokens.Issue(userID)
	if err != nil {
		log.WithError(err).Warn("Не удалось выпустить токен мини-приложения")
		return ""
	}
	u, err := url.Parse(h.miniAppURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func (h *Handler) edit(chatID int64, messageID int, snap luckywheel.Snapshot, userID int64) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
		Render(snap, h.service.Catalog()), h.keyboard(snap, userID))
	if _, err := h.bot.Request(edit); err != nil && !isNotModified(err) {
		log.WithError(err).WithField("chat_id", chatID).Warn("Ошибка обновления колеса")
	}
}

func (h *Handler) answer(callbackID, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.WithError(err).Debug("Ошибка ответа на callback")
	}
}

func (h *Handler) fail(callbackID string, userID int64, err error) {
	log.WithError(err).WithField("user_id", userID).Error("Ошибка колеса")
	if errors.Is(err, common.ErrUserNotFound) {
		h.answer(callbackID, "Сначала вступи в чат")
		return
	}
	h.answer(callbackID, "❌ Ошибка колеса")
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}

// isNotModified — Telegram отвечает ошибкой, если текст не изменился.
func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}

func formatWait(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%d мин", m)
	}
	return fmt.Sprintf("%d ч %d мин", h, m)
}
