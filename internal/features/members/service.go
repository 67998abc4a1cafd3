// Package members — service.go содержит бизнес-логику управления участниками.
// Сервис координирует регистрацию новых участников, проверку членства
// и обновление информации.
package members

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/wallet-bot/internal/common"
)

// Store — то, что сервису нужно от хранилища. Реализуется Repository.
type Store interface {
	Create(ctx context.Context, m *Member) error
	GetByUserID(ctx context.Context, userID int64) (*Member, error)
	GetByUsername(ctx context.Context, username string) (*Member, error)
	Exists(ctx context.Context, userID int64) (bool, error)
	UpdateInfo(ctx context.Context, userID int64, info UpdateInfo) error
	SetAdmin(ctx context.Context, userID int64, isAdmin bool) error
}

// JoinHook вызывается после регистрации нового участника
// (например, чтобы выдать ему дневные спины).
type JoinHook func(ctx context.Context, userID int64) error

// Service управляет участниками чата.
type Service struct {
	repo     Store
	isAdmin  func(userID int64) bool
	joinHook []JoinHook
}

// NewService создаёт сервис участников. isAdmin — проверка по ADMIN_IDS.
func NewService(repo Store, isAdmin func(userID int64) bool) *Service {
	if isAdmin == nil {
		isAdmin = func(int64) bool { return false }
	}
	return &Service{repo: repo, isAdmin: isAdmin}
}

// OnJoin регистрирует действие для новых участников.
func (s *Service) OnJoin(hook JoinHook) {
	s.joinHook = append(s.joinHook, hook)
}

// HandleNewMember обрабатывает вступление пользователя в чат.
// Если пользователь уже есть в базе (перезашёл) — обновляет его данные.
// Если пользователь новый — создаёт запись и вызывает JoinHook'и.
func (s *Service) HandleNewMember(ctx context.Context, userID int64, username, firstName, lastName string) error {
	existing, err := s.repo.GetByUserID(ctx, userID)
	if err != nil && !errors.Is(err, common.ErrUserNotFound) {
		return err
	}
	if existing != nil {
		log.WithField("user_id", userID).Info("Участник перезашёл в чат, обновляем данные")
		return s.repo.UpdateInfo(ctx, userID, UpdateInfo{
			Username:  username,
			FirstName: firstName,
			LastName:  lastName,
		})
	}

	member := &Member{
		UserID:    userID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		IsAdmin:   s.isAdmin(userID),
	}
	if err := s.repo.Create(ctx, member); err != nil {
		return fmt.Errorf("ошибка регистрации нового участника: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"username": username,
	}).Info("Новый участник зарегистрирован")

	for _, hook := range s.joinHook {
		if err := hook(ctx, userID); err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("JoinHook failed")
		}
	}
	return nil
}

// IsMember проверяет, является ли пользователь участником чата (и не забанен).
func (s *Service) IsMember(ctx context.Context, userID int64) (bool, error) {
	return s.repo.Exists(ctx, userID)
}

// GetByUserID возвращает участника по его Telegram user ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// GetByUsername возвращает участника по @username (с @ или без).
func (s *Service) GetByUsername(ctx context.Context, username string) (*Member, error) {
	if len(username) > 0 && username[0] == '@' {
		username = username[1:]
	}
	return s.repo.GetByUsername(ctx, username)
}

// EnsureMember гарантирует, что пользователь есть в базе, и синхронизирует
// флаг администратора с ADMIN_IDS.
func (s *Service) EnsureMember(ctx context.Context, userID int64, username, firstName, lastName string) error {
	m, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, common.ErrUserNotFound) {
		return s.HandleNewMember(ctx, userID, username, firstName, lastName)
	}
	if err != nil {
		return err
	}
	if want := s.isAdmin(userID); m.IsAdmin != want {
		return s.repo.SetAdmin(ctx, userID, want)
	}
	return nil
}
