package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wallet-bot/internal/features/wheel"
	"serotonyl.ru/wallet-bot/internal/luckywheel"
)

// WheelService — то, что API нужно от сервиса колеса.
type WheelService interface {
	Spin(ctx context.Context, userID int64) (luckywheel.SpinOutcome, luckywheel.Snapshot, error)
	Dismiss(ctx context.Context, userID int64) (bool, luckywheel.Snapshot, error)
	Snapshot(ctx context.Context, userID int64) (luckywheel.Snapshot, error)
	Catalog() *wheel.Catalog
}

// NewRouter собирает gin-роутер API.
func NewRouter(svc WheelService, issuer *TokenIssuer, frameEvery time.Duration) *gin.Engine {
	if frameEvery <= 0 {
		frameEvery = 50 * time.Millisecond
	}
	h := &handlers{svc: svc, frameEvery: frameEvery}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/wheel", AuthMiddleware(issuer))
	api.GET("", h.getWheel)
	api.POST("/spin", h.spin)
	api.POST("/dismiss", h.dismiss)
	api.GET("/stream", h.stream)

	return r
}

// requestLogger пишет запросы в logrus.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"component": "httpapi",
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"duration":  time.Since(start).String(),
			"user_id":   userIDFrom(c),
		}).Debug("HTTP запрос")
	}
}
