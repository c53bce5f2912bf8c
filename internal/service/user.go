package service

import (
	"context"
	"fmt"

	"github.com/fall-line/lifelens/internal/config"
	"github.com/fall-line/lifelens/internal/domain"
	"github.com/fall-line/lifelens/internal/repository"
)

// UserService manages bot user accounts.
type UserService struct {
	users *repository.Users
}

func NewUserService(users *repository.Users) *UserService {
	return &UserService{users: users}
}

// FindOrCreate resolves the telegram sender to an account, registering a
// new one on first contact. The bool reports a fresh registration.
func (s *UserService) FindOrCreate(ctx context.Context, telegramID int64, firstName, username string) (*domain.User, bool, error) {
	user, created, err := s.users.FindOrCreate(ctx, telegramID, firstName, username, config.DefaultAssistantName)
	if err != nil {
		return nil, false, fmt.Errorf("find or create user: %w", err)
	}

	if !created && (user.FirstName != firstName || user.Username != username) {
		if err := s.users.UpdateInfo(ctx, user.ID, firstName, username); err == nil {
			user.FirstName = firstName
			user.Username = username
		}
	}
	return user, created, nil
}

// SetNames updates how the assistant addresses the user and itself.
func (s *UserService) SetNames(ctx context.Context, user *domain.User, displayName, assistantName string) error {
	if assistantName == "" {
		assistantName = config.DefaultAssistantName
	}
	if err := s.users.SetNames(ctx, user.ID, displayName, assistantName); err != nil {
		return err
	}
	user.DisplayName = displayName
	user.AssistantName = assistantName
	return nil
}

// Touch records user activity. Errors are the caller's to ignore.
func (s *UserService) Touch(ctx context.Context, userID int64) error {
	return s.users.TouchLastInteraction(ctx, userID)
}
