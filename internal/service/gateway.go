package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/fall-line/lifelens/internal/config"
	"github.com/fall-line/lifelens/internal/domain"
)

// Gateway is the HTTP client for the camera companion backend. It owns
// session persistence, memory search, capture stats and face registration.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
}

func NewGateway(baseURL string) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
	}
}

// doJSON performs one request and decodes the response body into out
// (skipped when out is nil).
func (g *Gateway) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway status %d: %s", resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// --- Per-session chat CRUD ---

func (g *Gateway) ListSessions(ctx context.Context, userID string) ([]domain.ChatSession, error) {
	var sessions []domain.ChatSession
	err := g.doJSON(ctx, http.MethodGet, "/chats/"+url.PathEscape(userID), nil, &sessions)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (g *Gateway) CreateSession(ctx context.Context, userID string, s domain.ChatSession) error {
	err := g.doJSON(ctx, http.MethodPost, "/chats/"+url.PathEscape(userID), s, nil)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (g *Gateway) AppendMessage(ctx context.Context, userID, sessionID string, m domain.Message) error {
	path := "/chats/" + url.PathEscape(userID) + "/" + url.PathEscape(sessionID)
	if err := g.doJSON(ctx, http.MethodPost, path, m, nil); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

func (g *Gateway) RenameSession(ctx context.Context, userID, sessionID, title string) error {
	path := "/chats/" + url.PathEscape(userID) + "/" + url.PathEscape(sessionID)
	body := map[string]string{"title": title}
	if err := g.doJSON(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("rename session: %w", err)
	}
	return nil
}

func (g *Gateway) DeleteSession(ctx context.Context, userID, sessionID string) error {
	path := "/chats/" + url.PathEscape(userID) + "/" + url.PathEscape(sessionID)
	if err := g.doJSON(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (g *Gateway) DeleteAllSessions(ctx context.Context, userID string) error {
	if err := g.doJSON(ctx, http.MethodDelete, "/chats/"+url.PathEscape(userID), nil, nil); err != nil {
		return fmt.Errorf("delete all sessions: %w", err)
	}
	return nil
}

// --- Global chat (group surface) ---

func (g *Gateway) GlobalMessages(ctx context.Context, userID string) ([]domain.Message, error) {
	var msgs []domain.Message
	err := g.doJSON(ctx, http.MethodGet, "/global-chat/"+url.PathEscape(userID), nil, &msgs)
	if err != nil {
		return nil, fmt.Errorf("global messages: %w", err)
	}
	return msgs, nil
}

func (g *Gateway) AppendGlobalMessage(ctx context.Context, userID string, m domain.Message) error {
	err := g.doJSON(ctx, http.MethodPost, "/global-chat/"+url.PathEscape(userID), m, nil)
	if err != nil {
		return fmt.Errorf("append global message: %w", err)
	}
	return nil
}

func (g *Gateway) ClearGlobalChat(ctx context.Context, userID string) error {
	err := g.doJSON(ctx, http.MethodDelete, "/global-chat/"+url.PathEscape(userID), nil, nil)
	if err != nil {
		return fmt.Errorf("clear global chat: %w", err)
	}
	return nil
}

// --- Memory search ---

// Search runs a natural-language memory query. The response is a tagged
// union; see SearchReply for the branch precedence.
func (g *Gateway) Search(ctx context.Context, query string) (*domain.SearchResponse, error) {
	var resp domain.SearchResponse
	body := map[string]string{"query": query}
	if err := g.doJSON(ctx, http.MethodPost, "/search", body, &resp); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return &resp, nil
}

// LogQuery records the raw user query for analytics. Best effort.
func (g *Gateway) LogQuery(ctx context.Context, userID, query, sessionID string) error {
	body := map[string]string{
		"userId": userID,
		"query":  query,
		"chatId": sessionID,
	}
	if err := g.doJSON(ctx, http.MethodPost, "/user-queries", body, nil); err != nil {
		return fmt.Errorf("log query: %w", err)
	}
	return nil
}

// --- Capture stats / timeline ---

func (g *Gateway) OverallStats(ctx context.Context) (*domain.OverallStats, error) {
	var resp struct {
		Data domain.OverallStats `json:"data"`
	}
	if err := g.doJSON(ctx, http.MethodGet, "/stats/overall", nil, &resp); err != nil {
		return nil, fmt.Errorf("overall stats: %w", err)
	}
	return &resp.Data, nil
}

func (g *Gateway) ObjectStats(ctx context.Context) ([]domain.ObjectStat, error) {
	var resp struct {
		Data []domain.ObjectStat `json:"data"`
	}
	if err := g.doJSON(ctx, http.MethodGet, "/stats/objects", nil, &resp); err != nil {
		return nil, fmt.Errorf("object stats: %w", err)
	}
	return resp.Data, nil
}

func (g *Gateway) FaceStats(ctx context.Context) ([]domain.FaceRecord, error) {
	var resp struct {
		Data struct {
			FaceRecords []domain.FaceRecord `json:"faceRecords"`
		} `json:"data"`
	}
	if err := g.doJSON(ctx, http.MethodGet, "/stats/faces", nil, &resp); err != nil {
		return nil, fmt.Errorf("face stats: %w", err)
	}
	return resp.Data.FaceRecords, nil
}

func (g *Gateway) Locations(ctx context.Context) ([]domain.LocationEntry, error) {
	var entries []domain.LocationEntry
	if err := g.doJSON(ctx, http.MethodGet, "/feedback/locations", nil, &entries); err != nil {
		return nil, fmt.Errorf("locations: %w", err)
	}
	return entries, nil
}

// UpdateWiFi pushes new camera WiFi credentials through the backend.
func (g *Gateway) UpdateWiFi(ctx context.Context, ssid, password string) error {
	body := map[string]string{"ssid": ssid, "password": password}
	if err := g.doJSON(ctx, http.MethodPost, "/stats/update-wifi", body, nil); err != nil {
		return fmt.Errorf("update wifi: %w", err)
	}
	return nil
}

// RegisterFace uploads a labeled face image for the camera to recognize.
func (g *Gateway) RegisterFace(ctx context.Context, name, filename string, image []byte) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("name", name); err != nil {
		return fmt.Errorf("write name field: %w", err)
	}
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		return fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/face-register", &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gateway status %d: %s", resp.StatusCode, raw)
	}
	return nil
}
