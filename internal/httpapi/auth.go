// Package httpapi — HTTP API мини-приложения колеса: состояние, спин,
// закрытие приза и поток кадров анимации (SSE).
// auth.go выпускает и проверяет JWT участника.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	log "github.com/sirupsen/logrus"
)

const (
	tokenIssuer   = "wallet-bot"
	bearerSchema  = "Bearer "
	ctxUserIDKey  = "userID"
	tokenQueryKey = "token"
)

// TokenIssuer выпускает HS256-токены, где sub — Telegram ID участника.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer создаёт выпускатель токенов.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue выпускает токен участнику.
func (i *TokenIssuer) Issue(userID int64) (string, error) {
	now := i.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("ошибка подписи токена: %w", err)
	}
	return signed, nil
}

// Parse проверяет токен и возвращает ID участника.
func (i *TokenIssuer) Parse(token string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: некорректный sub", jwt.ErrTokenInvalidClaims)
	}
	return userID, nil
}

// AuthMiddleware пускает только запросы с валидным токеном.
// Токен берётся из заголовка Authorization, а для EventSource — из ?token=.
func AuthMiddleware(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query(tokenQueryKey)
		if header := c.GetHeader("Authorization"); header != "" {
			if !strings.HasPrefix(header, bearerSchema) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
				return
			}
			raw = strings.TrimPrefix(header, bearerSchema)
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token is required"})
			return
		}

		userID, err := issuer.Parse(raw)
		if err != nil {
			log.WithError(err).WithField("path", c.FullPath()).Debug("Отклонён токен мини-приложения")
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ctxUserIDKey, userID)
		c.Next()
	}
}

func userIDFrom(c *gin.Context) int64 {
	return c.GetInt64(ctxUserIDKey)
}
