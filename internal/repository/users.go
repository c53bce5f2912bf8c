package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fall-line/lifelens/internal/domain"
)

// Users persists bot user accounts.
type Users struct {
	pool *pgxpool.Pool
}

func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

const userColumns = `id, telegram_id, first_name, username, gateway_user_id,
	display_name, assistant_name, is_admin, last_interaction, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.TelegramID, &u.FirstName, &u.Username, &u.GatewayID,
		&u.DisplayName, &u.AssistantName, &u.IsAdmin,
		&u.LastInteraction, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByTelegramID returns the user or domain.ErrUserNotFound.
func (r *Users) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE telegram_id = $1`, telegramID)

	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// FindOrCreate returns the existing user, or registers a new one with a
// fresh gateway id. The bool reports whether the user was just created.
func (r *Users) FindOrCreate(ctx context.Context, telegramID int64, firstName, username, assistantName string) (*domain.User, bool, error) {
	u, err := r.GetByTelegramID(ctx, telegramID)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, false, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (telegram_id, first_name, username, gateway_user_id, assistant_name)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO UPDATE SET first_name = EXCLUDED.first_name
		RETURNING `+userColumns,
		telegramID, firstName, username, uuid.NewString(), assistantName)

	u, err = scanUser(row)
	if err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return u, true, nil
}

// UpdateInfo refreshes the telegram profile fields when they drift.
func (r *Users) UpdateInfo(ctx context.Context, id int64, firstName, username string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET first_name = $2, username = $3, updated_at = now()
		WHERE id = $1`, id, firstName, username)
	if err != nil {
		return fmt.Errorf("update user info: %w", err)
	}
	return nil
}

// SetNames stores the display name and assistant name used in welcome text.
func (r *Users) SetNames(ctx context.Context, id int64, displayName, assistantName string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET display_name = $2, assistant_name = $3, updated_at = now()
		WHERE id = $1`, id, displayName, assistantName)
	if err != nil {
		return fmt.Errorf("set user names: %w", err)
	}
	return nil
}

// TouchLastInteraction bumps the activity timestamp.
func (r *Users) TouchLastInteraction(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET last_interaction = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("touch last interaction: %w", err)
	}
	return nil
}
