package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fall-line/lifelens/internal/domain"
)

func TestTranslateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "Hello there." {
			t.Errorf("q = %q", q.Get("q"))
		}
		if q.Get("langpair") != "en|hi-IN" {
			t.Errorf("langpair = %q", q.Get("langpair"))
		}
		if q.Get("key") != "secret" {
			t.Errorf("key = %q", q.Get("key"))
		}
		w.Write([]byte(`{"responseData":{"translatedText":"नमस्ते।"}}`))
	}))
	defer srv.Close()

	tr := NewTranslator(srv.URL, "secret")
	got, err := tr.Translate(context.Background(), "Hello there.", "en", "hi-IN")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "नमस्ते।" {
		t.Errorf("translated = %q", got)
	}
}

func TestTranslateQuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tr := NewTranslator(srv.URL, "")
	_, err := tr.Translate(context.Background(), "Hello.", "en", "ta-IN")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestTranslateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	tr := NewTranslator(srv.URL, "")
	if _, err := tr.Translate(context.Background(), "Hello.", "en", "ta-IN"); err == nil {
		t.Error("expected error on 502")
	}
}

func TestTranslateEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responseData":{"translatedText":""}}`))
	}))
	defer srv.Close()

	tr := NewTranslator(srv.URL, "")
	if _, err := tr.Translate(context.Background(), "Hello.", "en", "ta-IN"); err == nil {
		t.Error("expected error on empty translation")
	}
}

func TestTranslateOmitsMissingKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("key") {
			t.Error("key parameter sent without an api key")
		}
		w.Write([]byte(`{"responseData":{"translatedText":"ok"}}`))
	}))
	defer srv.Close()

	tr := NewTranslator(srv.URL, "")
	if _, err := tr.Translate(context.Background(), "Hello.", "en", "ta-IN"); err != nil {
		t.Fatalf("translate: %v", err)
	}
}
