// Package admin — service.go: вход по паролю, сессии и шаги диалога.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wallet-bot/internal/common"
	"serotonyl.ru/wallet-bot/internal/features/members"
)

// MemberLookup — поиск участников.
type MemberLookup interface {
	GetByUserID(ctx context.Context, userID int64) (*members.Member, error)
	GetByUsername(ctx context.Context, username string) (*members.Member, error)
}

// WheelAdmin — операции колеса, доступные админу.
type WheelAdmin interface {
	Grant(ctx context.Context, userID int64, n int) (int, error)
	ResetNow(ctx context.Context) error
	ActiveSessions() int
}

// Service управляет админ-панелью.
type Service struct {
	repo         SessionStore
	members      MemberLookup
	wheel        WheelAdmin
	passwordHash string
	now          func() time.Time

	mu     sync.Mutex
	states map[int64]*DialogState
}

// NewService создаёт сервис админ-панели.
func NewService(repo SessionStore, memberLookup MemberLookup, wheel WheelAdmin, passwordHash string) *Service {
	return &Service{
		repo:         repo,
		members:      memberLookup,
		wheel:        wheel,
		passwordHash: passwordHash,
		now:          time.Now,
		states:       make(map[int64]*DialogState),
	}
}

// IsAdmin — есть ли у участника флаг администратора.
func (s *Service) IsAdmin(ctx context.Context, userID int64) bool {
	m, err := s.members.GetByUserID(ctx, userID)
	return err == nil && m.IsAdmin
}

// Login проверяет пароль и открывает сессию на сутки.
// После трёх неудачных попыток за час вход блокируется.
func (s *Service) Login(ctx context.Context, userID int64, password string) error {
	failed, err := s.repo.FailedAttemptsSince(ctx, userID, s.now().Add(-lockoutPeriod))
	if err != nil {
		return err
	}
	if failed >= maxFailedAttempts {
		return common.ErrTooManyAttempts
	}

	match := VerifyPassword(password, s.passwordHash)
	if err := s.repo.LogAttempt(ctx, userID, match); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Не удалось записать попытку входа")
	}
	if !match {
		return common.ErrWrongPassword
	}

	return s.repo.CreateSession(ctx, &AdminSession{
		UserID:       userID,
		SessionToken: generateSecureToken(),
		ExpiresAt:    s.now().Add(sessionTTL),
	})
}

// HasActiveSession проверяет сессию и продлевает активность.
func (s *Service) HasActiveSession(ctx context.Context, userID int64) bool {
	if _, err := s.repo.GetActiveSession(ctx, userID); err != nil {
		if !errors.Is(err, common.ErrSessionExpired) {
			log.WithError(err).WithField("user_id", userID).Warn("Ошибка проверки сессии")
		}
		return false
	}
	if err := s.repo.Touch(ctx, userID); err != nil {
		log.WithError(err).Debug("Не удалось обновить активность сессии")
	}
	return true
}

// GetState возвращает шаг диалога (nil, если нет или истёк).
func (s *Service) GetState(userID int64) *DialogState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[userID]
	if !ok {
		return nil
	}
	if s.now().After(st.ExpiresAt) {
		delete(s.states, userID)
		return nil
	}
	return st
}

// SetState запоминает шаг диалога на 5 минут.
func (s *Service) SetState(userID int64, st DialogState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st.ExpiresAt = s.now().Add(dialogTTL)
	s.states[userID] = &st
}

func (s *Service) ClearState(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}

// FindRecipient ищет участника по @username.
func (s *Service) FindRecipient(ctx context.Context, text string) (*members.Member, error) {
	name := strings.TrimSpace(text)
	if name == "" {
		return nil, common.ErrUserNotFound
	}
	return s.members.GetByUsername(ctx, name)
}

// ParseAmount разбирает количество спинов: от 1 до 100.
func ParseAmount(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 || n > maxGrant {
		return 0, fmt.Errorf("%w: от 1 до %d", common.ErrInvalidAmount, maxGrant)
	}
	return n, nil
}

// GrantSpins выдаёт спины участнику.
func (s *Service) GrantSpins(ctx context.Context, adminID, targetID int64, n int) (int, error) {
	left, err := s.wheel.Grant(ctx, targetID, n)
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{
		"admin_id":  adminID,
		"target_id": targetID,
		"spins":     n,
	}).Info("Админ выдал спины")
	return left, nil
}

// ResetSpins сразу выставляет всем дневную квоту, даже если сегодня
// сброс уже был.
func (s *Service) ResetSpins(ctx context.Context, adminID int64) error {
	log.WithField("admin_id", adminID).Info("Ручной сброс спинов")
	return s.wheel.ResetNow(ctx)
}

// ActiveWheels — сколько колёс сейчас открыто.
func (s *Service) ActiveWheels() int {
	return s.wheel.ActiveSessions()
}
