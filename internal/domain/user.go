package domain

import "time"

// User is a registered bot user. GatewayID is the stable identifier under
// which the chat gateway partitions this user's sessions and stats.
type User struct {
	ID              int64
	TelegramID      int64
	FirstName       string
	Username        string
	GatewayID       string
	DisplayName     string
	AssistantName   string
	IsAdmin         bool
	LastInteraction time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Name returns the name the assistant should address the user by.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.FirstName
}
