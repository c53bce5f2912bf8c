package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fall-line/lifelens/internal/domain"
)

// Prefs persists per-user speech settings. Rate and pitch are stored as
// NUMERIC and crossed over the wire as decimals so 0.75 stays 0.75.
type Prefs struct {
	pool *pgxpool.Pool
}

func NewPrefs(pool *pgxpool.Pool) *Prefs {
	return &Prefs{pool: pool}
}

// Get returns the stored settings, or defaults when the user has none yet.
func (r *Prefs) Get(ctx context.Context, userID int64) (domain.SpeechSettings, error) {
	var (
		s           domain.SpeechSettings
		rate, pitch string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT language, voice, rate::text, pitch::text, theme
		FROM speech_settings WHERE user_id = $1`, userID).
		Scan(&s.Language, &s.Voice, &rate, &pitch, &s.Theme)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.DefaultSpeechSettings(), nil
	}
	if err != nil {
		return domain.SpeechSettings{}, fmt.Errorf("get speech settings: %w", err)
	}

	s.Rate, err = parseLevel(rate)
	if err != nil {
		return domain.SpeechSettings{}, err
	}
	s.Pitch, err = parseLevel(pitch)
	if err != nil {
		return domain.SpeechSettings{}, err
	}
	return s, nil
}

// Upsert writes the full settings row.
func (r *Prefs) Upsert(ctx context.Context, userID int64, s domain.SpeechSettings) error {
	rate := decimal.NewFromFloat(s.Rate)
	pitch := decimal.NewFromFloat(s.Pitch)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO speech_settings (user_id, language, voice, rate, pitch, theme, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, now())
		ON CONFLICT (user_id) DO UPDATE SET
			language = EXCLUDED.language,
			voice = EXCLUDED.voice,
			rate = EXCLUDED.rate,
			pitch = EXCLUDED.pitch,
			theme = EXCLUDED.theme,
			updated_at = now()`,
		userID, s.Language, s.Voice, rate.String(), pitch.String(), s.Theme)
	if err != nil {
		return fmt.Errorf("upsert speech settings: %w", err)
	}
	return nil
}

func parseLevel(raw string) (float64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("parse speech level %q: %w", raw, err)
	}
	return d.InexactFloat64(), nil
}
