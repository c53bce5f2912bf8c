package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fall-line/lifelens/internal/domain"
)

func TestGatewayListSessions(t *testing.T) {
	created := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/chats/u1" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode([]domain.ChatSession{
			{ID: "s1", UserID: "u1", Title: "Walk", CreatedAt: created,
				Messages: []domain.Message{{ID: "m1", Content: "hi", Sender: domain.SenderUser}}},
		})
	}))
	defer srv.Close()

	g := NewGateway(srv.URL)
	sessions, err := g.ListSessions(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "s1" {
		t.Fatalf("sessions = %+v", sessions)
	}
	if len(sessions[0].Messages) != 1 || sessions[0].Messages[0].Content != "hi" {
		t.Errorf("messages = %+v", sessions[0].Messages)
	}
}

func TestGatewayAppendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chats/u1/s1" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var m domain.Message
		if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if m.Content != "hello" || m.Sender != domain.SenderUser {
			t.Errorf("message = %+v", m)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL)
	err := g.AppendMessage(context.Background(), "u1", "s1", NewUserMessage("hello"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
}

func TestGatewayRenameAndDelete(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
	}))
	defer srv.Close()
	g := NewGateway(srv.URL)

	if err := g.RenameSession(context.Background(), "u1", "s1", "Trip"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/chats/u1/s1" {
		t.Errorf("rename sent %s %s", gotMethod, gotPath)
	}

	if err := g.DeleteSession(context.Background(), "u1", "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/chats/u1/s1" {
		t.Errorf("delete sent %s %s", gotMethod, gotPath)
	}

	if err := g.DeleteAllSessions(context.Background(), "u1"); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/chats/u1" {
		t.Errorf("delete all sent %s %s", gotMethod, gotPath)
	}
}

func TestGatewaySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/search" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["query"] != "where was I" {
			t.Errorf("query = %q", body["query"])
		}
		w.Write([]byte(`{"results":[{"Date":"2026-08-01","Time":"09:15","Feedback":"you were at the park"}]}`))
	}))
	defer srv.Close()

	g := NewGateway(srv.URL)
	resp, err := g.Search(context.Background(), "where was I")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if got := SearchReply(resp); got != "On 2026-08-01 at 09:15, you were at the park" {
		t.Errorf("reply = %q", got)
	}
}

func TestGatewayStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGateway(srv.URL)
	if _, err := g.ListSessions(context.Background(), "u1"); err == nil {
		t.Error("expected error on 500")
	}
	if err := g.CreateSession(context.Background(), "u1", domain.ChatSession{ID: "s1"}); err == nil {
		t.Error("expected error on 500")
	}
}

func TestGatewayStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/stats/overall":
			w.Write([]byte(`{"data":{"totalCaptures":120,"totalDays":14,"lastCapture":"2026-08-30"}}`))
		case "/stats/faces":
			w.Write([]byte(`{"data":{"faceRecords":[{"name":"Asha","seenCount":9,"lastSeen":"2026-08-29"}]}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()
	g := NewGateway(srv.URL)

	overall, err := g.OverallStats(context.Background())
	if err != nil {
		t.Fatalf("overall: %v", err)
	}
	if overall.TotalCaptures != 120 || overall.TotalDays != 14 {
		t.Errorf("overall = %+v", overall)
	}

	faces, err := g.FaceStats(context.Background())
	if err != nil {
		t.Fatalf("faces: %v", err)
	}
	if len(faces) != 1 || faces[0].Name != "Asha" || faces[0].SeenCount != 9 {
		t.Errorf("faces = %+v", faces)
	}
}

func TestGatewayRegisterFace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/face-register" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("name"); got != "Asha" {
			t.Errorf("name = %q", got)
		}
		file, header, err := r.FormFile("image")
		if err != nil {
			t.Fatalf("image part: %v", err)
		}
		defer file.Close()
		if header.Filename != "face.jpg" {
			t.Errorf("filename = %q", header.Filename)
		}
	}))
	defer srv.Close()

	g := NewGateway(srv.URL)
	err := g.RegisterFace(context.Background(), "Asha", "face.jpg", []byte{0xff, 0xd8})
	if err != nil {
		t.Fatalf("register face: %v", err)
	}
}
