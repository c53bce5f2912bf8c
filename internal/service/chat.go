package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fall-line/lifelens/internal/config"
	"github.com/fall-line/lifelens/internal/domain"
)

// NotFoundReply is sent when a memory search matches nothing at all.
const NotFoundReply = "I couldn't find any memories matching your query. " +
	"Try asking about a specific time and date, like 'what did I do today morning?' " +
	"or 'what happened yesterday at 2 PM?'"

// ConnectionErrorReply is appended as a bot message when the gateway is
// unreachable during a search.
const ConnectionErrorReply = "I'm having trouble connecting to the server. " +
	"Please check your connection and try again."

// ChatStore is the subset of the gateway the session manager needs.
type ChatStore interface {
	ListSessions(ctx context.Context, userID string) ([]domain.ChatSession, error)
	CreateSession(ctx context.Context, userID string, s domain.ChatSession) error
	AppendMessage(ctx context.Context, userID, sessionID string, m domain.Message) error
	RenameSession(ctx context.Context, userID, sessionID, title string) error
	DeleteSession(ctx context.Context, userID, sessionID string) error
	DeleteAllSessions(ctx context.Context, userID string) error
}

// ChatManager keeps each user's sessions in memory and mirrors every
// mutation to the ChatStore. Writes are optimistic: the local copy is
// applied first and kept even when the store rejects the change; such
// failures surface as errors wrapping domain.ErrPersistence so callers can
// log them and carry on.
type ChatManager struct {
	store ChatStore

	mu    sync.Mutex
	users map[string]*userChats
}

type userChats struct {
	sessions []*domain.ChatSession
	activeID string
	hydrated bool
}

func NewChatManager(store ChatStore) *ChatManager {
	return &ChatManager{
		store: store,
		users: make(map[string]*userChats),
	}
}

func (m *ChatManager) user(userID string) *userChats {
	u, ok := m.users[userID]
	if !ok {
		u = &userChats{}
		m.users[userID] = u
	}
	return u
}

// Hydrate loads the user's sessions from the store. An empty account gets
// one synthesized session holding a welcome message, persisted immediately.
// Safe to call on every update: after the first success it is a no-op.
func (m *ChatManager) Hydrate(ctx context.Context, userID, userName, assistantName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.user(userID)
	if u.hydrated {
		return nil
	}

	remote, err := m.store.ListSessions(ctx, userID)
	if err != nil {
		return fmt.Errorf("hydrate: %w: %s", domain.ErrPersistence, err)
	}

	if len(remote) == 0 {
		u.hydrated = true
		_, err := m.newSessionLocked(ctx, u, userID, welcomeMessage(userName, assistantName))
		return err
	}

	u.sessions = u.sessions[:0]
	for i := range remote {
		s := remote[i]
		u.sessions = append(u.sessions, &s)
	}
	u.activeID = mostRecent(u.sessions).ID
	u.hydrated = true
	return nil
}

// CreateNewChat opens a fresh empty session and makes it active.
func (m *ChatManager) CreateNewChat(ctx context.Context, userID string) (domain.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.newSessionLocked(ctx, m.user(userID), userID, nil)
	return cloneSession(s), err
}

// newSessionLocked appends a new session locally, marks it active, and
// persists it (plus the optional seed message). Persistence failures keep
// the local session and return a wrapped domain.ErrPersistence.
func (m *ChatManager) newSessionLocked(ctx context.Context, u *userChats, userID string, seed *domain.Message) (*domain.ChatSession, error) {
	s := &domain.ChatSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     config.NewChatTitle,
		CreatedAt: time.Now(),
	}
	if seed != nil {
		s.Messages = append(s.Messages, *seed)
	}
	u.sessions = append(u.sessions, s)
	u.activeID = s.ID

	if err := m.store.CreateSession(ctx, userID, *s); err != nil {
		return s, fmt.Errorf("create session: %w: %s", domain.ErrPersistence, err)
	}
	return s, nil
}

// AddMessage appends to the given session. The append always lands locally;
// a store failure is reported as a wrapped domain.ErrPersistence.
func (m *ChatManager) AddMessage(ctx context.Context, userID, sessionID string, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.user(userID)
	s := findSession(u.sessions, sessionID)
	if s == nil {
		return domain.ErrSessionNotFound
	}
	s.Messages = append(s.Messages, msg)

	if err := m.store.AppendMessage(ctx, userID, sessionID, msg); err != nil {
		return fmt.Errorf("add message: %w: %s", domain.ErrPersistence, err)
	}
	return nil
}

// DeleteChat removes a session. Deleting the active one promotes the most
// recently created survivor; deleting the last one opens a fresh empty
// session so the user is never left with zero.
func (m *ChatManager) DeleteChat(ctx context.Context, userID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.user(userID)
	s := findSession(u.sessions, sessionID)
	if s == nil {
		return domain.ErrSessionNotFound
	}

	kept := u.sessions[:0]
	for _, cur := range u.sessions {
		if cur.ID != sessionID {
			kept = append(kept, cur)
		}
	}
	u.sessions = kept

	var createErr error
	if len(u.sessions) == 0 {
		_, createErr = m.newSessionLocked(ctx, u, userID, nil)
	} else if u.activeID == sessionID {
		u.activeID = mostRecent(u.sessions).ID
	}

	if err := m.store.DeleteSession(ctx, userID, sessionID); err != nil {
		return fmt.Errorf("delete session: %w: %s", domain.ErrPersistence, err)
	}
	return createErr
}

// ClearAll wipes every session and opens exactly one fresh one.
func (m *ChatManager) ClearAll(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.user(userID)
	u.sessions = nil
	u.activeID = ""

	deleteErr := m.store.DeleteAllSessions(ctx, userID)

	if _, err := m.newSessionLocked(ctx, u, userID, nil); err != nil {
		return err
	}
	if deleteErr != nil {
		return fmt.Errorf("clear all: %w: %s", domain.ErrPersistence, deleteErr)
	}
	return nil
}

// RenameChat sets a new title. A title that trims to empty is a silent
// no-op; nothing is persisted and no error is returned.
func (m *ChatManager) RenameChat(ctx context.Context, userID, sessionID, title string) error {
	if strings.TrimSpace(title) == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.user(userID)
	s := findSession(u.sessions, sessionID)
	if s == nil {
		return domain.ErrSessionNotFound
	}
	s.Title = title

	if err := m.store.RenameSession(ctx, userID, sessionID, title); err != nil {
		return fmt.Errorf("rename session: %w: %s", domain.ErrPersistence, err)
	}
	return nil
}

// SetActive switches the active session. Local only, nothing to persist.
func (m *ChatManager) SetActive(userID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.user(userID)
	if findSession(u.sessions, sessionID) == nil {
		return domain.ErrSessionNotFound
	}
	u.activeID = sessionID
	return nil
}

// Sessions returns copies of the user's sessions in creation order.
func (m *ChatManager) Sessions(userID string) []domain.ChatSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.user(userID)
	out := make([]domain.ChatSession, 0, len(u.sessions))
	for _, s := range u.sessions {
		out = append(out, cloneSession(s))
	}
	return out
}

// ActiveSession returns a copy of the active session, if any.
func (m *ChatManager) ActiveSession(userID string) (domain.ChatSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.user(userID)
	s := findSession(u.sessions, u.activeID)
	if s == nil {
		return domain.ChatSession{}, false
	}
	return cloneSession(s), true
}

// FindMessage looks a message up by id across all of the user's sessions.
func (m *ChatManager) FindMessage(userID, messageID string) (domain.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.user(userID).sessions {
		for _, msg := range s.Messages {
			if msg.ID == messageID {
				return msg, true
			}
		}
	}
	return domain.Message{}, false
}

func findSession(sessions []*domain.ChatSession, id string) *domain.ChatSession {
	if id == "" {
		return nil
	}
	for _, s := range sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// mostRecent picks the newest session by CreatedAt; on a tie the later
// element wins so the choice is deterministic.
func mostRecent(sessions []*domain.ChatSession) *domain.ChatSession {
	best := sessions[0]
	for _, s := range sessions[1:] {
		if !s.CreatedAt.Before(best.CreatedAt) {
			best = s
		}
	}
	return best
}

func cloneSession(s *domain.ChatSession) domain.ChatSession {
	out := *s
	out.Messages = make([]domain.Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}

// NewUserMessage builds a user-sent chat message.
func NewUserMessage(content string) domain.Message {
	return domain.Message{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    domain.SenderUser,
		Timestamp: time.Now(),
	}
}

// NewBotMessage builds an assistant reply tied to the query it answers.
func NewBotMessage(content, userQuery string) domain.Message {
	return domain.Message{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    domain.SenderBot,
		Timestamp: time.Now(),
		UserQuery: userQuery,
	}
}

func welcomeMessage(userName, assistantName string) *domain.Message {
	if assistantName == "" {
		assistantName = config.DefaultAssistantName
	}
	text := fmt.Sprintf(
		"👋 Hi %s! I'm %s, your LifeLens assistant. "+
			"Ask me about anything your camera has seen, like "+
			"\"what did I do this morning?\" or \"where was I yesterday at 2 PM?\"",
		userName, assistantName,
	)
	msg := NewBotMessage(text, "")
	return &msg
}

// SearchReply renders the search union into the assistant's reply text.
// Branch precedence: error > results > message > not-found fallback.
func SearchReply(resp *domain.SearchResponse) string {
	switch {
	case resp.Error:
		return resp.Message
	case len(resp.Results) > 0:
		r := resp.Results[0]
		return fmt.Sprintf("On %s at %s, %s", r.Date, r.Time, r.Feedback)
	case resp.Message != "":
		return resp.Message
	default:
		return NotFoundReply
	}
}
