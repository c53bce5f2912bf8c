package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/fall-line/lifelens/internal/domain"
)

// PrefsRepo is the persistence behind the preference store.
type PrefsRepo interface {
	Get(ctx context.Context, userID int64) (domain.SpeechSettings, error)
	Upsert(ctx context.Context, userID int64, s domain.SpeechSettings) error
}

// PrefsListener receives every committed settings change.
type PrefsListener func(userID int64, s domain.SpeechSettings)

// PrefsService is the speech/theme preference store. Reads go through a
// small cache; every successful update is broadcast to subscribers so
// other components (the speaker, settings views) react immediately.
type PrefsService struct {
	repo PrefsRepo

	mu        sync.RWMutex
	cache     map[int64]domain.SpeechSettings
	listeners []PrefsListener
}

func NewPrefsService(repo PrefsRepo) *PrefsService {
	return &PrefsService{
		repo:  repo,
		cache: make(map[int64]domain.SpeechSettings),
	}
}

// Subscribe registers a listener for settings changes. Listeners run
// synchronously on the updating goroutine and must not block.
func (p *PrefsService) Subscribe(fn PrefsListener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Get returns the user's settings, falling back to defaults when the
// store is unreachable.
func (p *PrefsService) Get(ctx context.Context, userID int64) domain.SpeechSettings {
	p.mu.RLock()
	s, ok := p.cache[userID]
	p.mu.RUnlock()
	if ok {
		return s
	}

	s, err := p.repo.Get(ctx, userID)
	if err != nil {
		slog.Warn("load speech settings, using defaults", "user_id", userID, "error", err)
		return domain.DefaultSpeechSettings()
	}

	p.mu.Lock()
	p.cache[userID] = s
	p.mu.Unlock()
	return s
}

// Update applies mutate to the current settings, persists the result, and
// notifies subscribers. The returned settings are the committed state.
func (p *PrefsService) Update(ctx context.Context, userID int64, mutate func(*domain.SpeechSettings)) (domain.SpeechSettings, error) {
	s := p.Get(ctx, userID)
	mutate(&s)

	if err := p.repo.Upsert(ctx, userID, s); err != nil {
		return domain.SpeechSettings{}, fmt.Errorf("update settings: %w", err)
	}

	p.mu.Lock()
	p.cache[userID] = s
	listeners := make([]PrefsListener, len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(userID, s)
	}
	return s, nil
}
