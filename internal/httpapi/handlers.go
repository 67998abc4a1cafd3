package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wallet-bot/internal/common"
	"serotonyl.ru/wallet-bot/internal/luckywheel"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type handlers struct {
	svc        WheelService
	frameEvery time.Duration
}

// getWheel — текущее состояние колеса и раскладка секторов.
func (h *handlers) getWheel(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context(), userIDFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	cat := h.svc.Catalog()
	view := newWheelView(snap, cat)
	view.Sectors = sectorsOf(cat)
	c.JSON(http.StatusOK, view)
}

// spin — запрос спина. Отказ (колесо занято, квота кончилась) — это не ошибка,
// поэтому всегда 200 с исходом в теле.
func (h *handlers) spin(c *gin.Context) {
	outcome, snap, err := h.svc.Spin(c.Request.Context(), userIDFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, spinResponse{
		Outcome: outcome.String(),
		Wheel:   newWheelView(snap, h.svc.Catalog()),
	})
}

func (h *handlers) dismiss(c *gin.Context) {
	ok, snap, err := h.svc.Dismiss(c.Request.Context(), userIDFrom(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dismissResponse{
		Dismissed: ok,
		Wheel:     newWheelView(snap, h.svc.Catalog()),
	})
}

// stream отдаёт кадры анимации (угол и конфетти) как SSE-события "frame",
// пока колесо крутится или догорает конфетти. Последний кадр — итоговый.
func (h *handlers) stream(c *gin.Context) {
	ctx := c.Request.Context()
	userID := userIDFrom(c)
	cat := h.svc.Catalog()

	ticker := time.NewTicker(h.frameEvery)
	defer ticker.Stop()

	first := true
	c.Stream(func(w io.Writer) bool {
		if !first {
			select {
			case <-ctx.Done():
				return false
			case <-ticker.C:
			}
		}
		first = false

		snap, err := h.svc.Snapshot(ctx, userID)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Debug("Поток колеса прерван")
			return false
		}

		view := newWheelView(snap, cat)
		view.Particles = particlesOf(snap.Particles)
		frame, err := json.Marshal(view)
		if err != nil {
			log.WithError(err).Error("Ошибка сериализации кадра")
			return false
		}
		c.SSEvent("frame", string(frame))

		return snap.Animating || snap.State == luckywheel.StateSpinning || snap.State == luckywheel.StateRevealing
	})
}

func (h *handlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
	case errors.Is(err, luckywheel.ErrLoopClosed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "wheel is shutting down"})
	default:
		log.WithError(err).WithField("path", c.FullPath()).Error("Ошибка API колеса")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
