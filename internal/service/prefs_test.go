package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fall-line/lifelens/internal/domain"
)

type stubPrefsRepo struct {
	mu       sync.Mutex
	stored   map[int64]domain.SpeechSettings
	getErr   error
	getCalls int
	saveErr  error
}

func newStubPrefsRepo() *stubPrefsRepo {
	return &stubPrefsRepo{stored: make(map[int64]domain.SpeechSettings)}
}

func (r *stubPrefsRepo) Get(ctx context.Context, userID int64) (domain.SpeechSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getCalls++
	if r.getErr != nil {
		return domain.SpeechSettings{}, r.getErr
	}
	if s, ok := r.stored[userID]; ok {
		return s, nil
	}
	return domain.DefaultSpeechSettings(), nil
}

func (r *stubPrefsRepo) Upsert(ctx context.Context, userID int64, s domain.SpeechSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.stored[userID] = s
	return nil
}

func TestPrefsGetFallsBackToDefaults(t *testing.T) {
	repo := newStubPrefsRepo()
	repo.getErr = errors.New("db down")
	p := NewPrefsService(repo)

	s := p.Get(context.Background(), 7)
	if s != domain.DefaultSpeechSettings() {
		t.Errorf("settings = %+v, want defaults", s)
	}
}

func TestPrefsUpdatePersistsAndCaches(t *testing.T) {
	repo := newStubPrefsRepo()
	p := NewPrefsService(repo)

	updated, err := p.Update(context.Background(), 7, func(s *domain.SpeechSettings) {
		s.Language = "ta-IN"
		s.Rate = 1.25
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Language != "ta-IN" || updated.Rate != 1.25 {
		t.Errorf("updated = %+v", updated)
	}

	if got := repo.stored[7]; got.Language != "ta-IN" {
		t.Errorf("stored = %+v", got)
	}

	// Subsequent reads come from the cache.
	before := repo.getCalls
	if s := p.Get(context.Background(), 7); s.Language != "ta-IN" {
		t.Errorf("cached read = %+v", s)
	}
	if repo.getCalls != before {
		t.Errorf("cache miss: get calls went %d -> %d", before, repo.getCalls)
	}
}

func TestPrefsUpdateFailureDoesNotCommit(t *testing.T) {
	repo := newStubPrefsRepo()
	repo.saveErr = errors.New("db down")
	p := NewPrefsService(repo)

	if _, err := p.Update(context.Background(), 7, func(s *domain.SpeechSettings) {
		s.Theme = domain.ThemeDark
	}); err == nil {
		t.Fatal("expected error when upsert fails")
	}

	if s := p.Get(context.Background(), 7); s.Theme != domain.ThemeLight {
		t.Errorf("theme = %q, failed update should not stick", s.Theme)
	}
}

func TestPrefsSubscribeReceivesCommittedChanges(t *testing.T) {
	repo := newStubPrefsRepo()
	p := NewPrefsService(repo)

	var (
		mu     sync.Mutex
		events []domain.SpeechSettings
	)
	p.Subscribe(func(userID int64, s domain.SpeechSettings) {
		mu.Lock()
		defer mu.Unlock()
		if userID != 7 {
			t.Errorf("listener got user %d", userID)
		}
		events = append(events, s)
	})

	_, err := p.Update(context.Background(), 7, func(s *domain.SpeechSettings) {
		s.Language = "hi-IN"
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 || events[0].Language != "hi-IN" {
		t.Errorf("events = %+v", events)
	}
}

func TestPrefsSubscribeNotNotifiedOnFailure(t *testing.T) {
	repo := newStubPrefsRepo()
	repo.saveErr = errors.New("db down")
	p := NewPrefsService(repo)

	called := false
	p.Subscribe(func(int64, domain.SpeechSettings) { called = true })

	p.Update(context.Background(), 7, func(s *domain.SpeechSettings) {
		s.Rate = 2.0
	})

	if called {
		t.Error("listener fired for a failed update")
	}
}
