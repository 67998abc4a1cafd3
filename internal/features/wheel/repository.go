// Package wheel — repository.go работает с таблицей spin_quotas.
// Хранится только остаток спинов; история спинов не ведётся.
package wheel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuotaStore — хранилище дневной квоты. Реализуется Repository.
type QuotaStore interface {
	// Ensure создаёт строку квоты и применяет пропущенный дневной сброс.
	Ensure(ctx context.Context, userID int64, daily int, today time.Time) (int, error)
	// Consume списывает один спин (не ниже нуля) и возвращает остаток.
	Consume(ctx context.Context, userID int64) (int, error)
	// Grant добавляет n спинов и возвращает остаток.
	Grant(ctx context.Context, userID int64, n int) (int, error)
	// ResetAll выставляет daily спинов тем, у кого сегодня сброса ещё не было;
	// с force — всем.
	ResetAll(ctx context.Context, daily int, today time.Time, force bool) (int64, error)
}

// Repository — pgx-реализация QuotaStore.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий квот.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Ensure(ctx context.Context, userID int64, daily int, today time.Time) (int, error) {
	query := `
		INSERT INTO spin_quotas (user_id, spins_left, reset_on)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET spins_left = CASE
		        WHEN spin_quotas.reset_on < EXCLUDED.reset_on THEN EXCLUDED.spins_left
		        ELSE spin_quotas.spins_left
		    END,
		    reset_on = GREATEST(spin_quotas.reset_on, EXCLUDED.reset_on),
		    updated_at = NOW()
		RETURNING spins_left
	`
	var left int
	if err := r.db.QueryRow(ctx, query, userID, daily, today).Scan(&left); err != nil {
		return 0, fmt.Errorf("ошибка чтения квоты (user_id=%d): %w", userID, err)
	}
	return left, nil
}

func (r *Repository) Consume(ctx context.Context, userID int64) (int, error) {
	query := `
		UPDATE spin_quotas
		SET spins_left = spins_left - 1, updated_at = NOW()
		WHERE user_id = $1 AND spins_left > 0
		RETURNING spins_left
	`
	var left int
	err := r.db.QueryRow(ctx, query, userID).Scan(&left)
	if errors.Is(err, pgx.ErrNoRows) {
		// Квота уже нулевая или строки нет — списывать нечего
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка списания спина (user_id=%d): %w", userID, err)
	}
	return left, nil
}

func (r *Repository) Grant(ctx context.Context, userID int64, n int) (int, error) {
	query := `
		INSERT INTO spin_quotas (user_id, spins_left, reset_on)
		VALUES ($1, $2, CURRENT_DATE)
		ON CONFLICT (user_id) DO UPDATE
		SET spins_left = spin_quotas.spins_left + EXCLUDED.spins_left,
		    updated_at = NOW()
		RETURNING spins_left
	`
	var left int
	if err := r.db.QueryRow(ctx, query, userID, n).Scan(&left); err != nil {
		return 0, fmt.Errorf("ошибка выдачи спинов (user_id=%d): %w", userID, err)
	}
	return left, nil
}

func (r *Repository) ResetAll(ctx context.Context, daily int, today time.Time, force bool) (int64, error) {
	query := `
		UPDATE spin_quotas
		SET spins_left = $1, reset_on = GREATEST(reset_on, $2), updated_at = NOW()
		WHERE $3 OR reset_on < $2
	`
	tag, err := r.db.Exec(ctx, query, daily, today, force)
	if err != nil {
		return 0, fmt.Errorf("ошибка ежедневного сброса спинов: %w", err)
	}
	return tag.RowsAffected(), nil
}
