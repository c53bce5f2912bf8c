package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fall-line/lifelens/internal/domain"
)

// ---------------------------------------------------------------------------
// Chunking
// ---------------------------------------------------------------------------

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		maxLen int
		want   []string
	}{
		{
			name:   "empty",
			text:   "   ",
			maxLen: 10,
			want:   nil,
		},
		{
			name:   "fits in one chunk",
			text:   "Short and sweet.",
			maxLen: 50,
			want:   []string{"Short and sweet."},
		},
		{
			name:   "splits at sentence boundary",
			text:   "First sentence here. Second sentence follows. Third one ends it.",
			maxLen: 25,
			want:   []string{"First sentence here.", "Second sentence follows.", "Third one ends it."},
		},
		{
			name:   "packs short sentences together",
			text:   "One. Two. Three. Four.",
			maxLen: 12,
			want:   []string{"One. Two.", "Three. Four."},
		},
		{
			name:   "question and exclamation terminators",
			text:   "Really? Yes! Good.",
			maxLen: 8,
			want:   []string{"Really?", "Yes!", "Good."},
		},
		{
			name:   "ellipsis stays with its sentence",
			text:   "Wait... okay. Done.",
			maxLen: 13,
			want:   []string{"Wait... okay.", "Done."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitChunks(tt.text, tt.maxLen)
			if len(got) != len(tt.want) {
				t.Fatalf("chunks = %q, want %q", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitChunksHardSplitsLongSentence(t *testing.T) {
	text := strings.Repeat("a", 45) // no terminator at all
	chunks := SplitChunks(text, 20)

	if len(chunks) != 3 {
		t.Fatalf("chunks = %d, want 3", len(chunks))
	}
	for i, c := range chunks {
		if utf8.RuneCountInString(c) > 20 {
			t.Errorf("chunk %d length %d exceeds max", i, utf8.RuneCountInString(c))
		}
	}
	if strings.Join(chunks, "") != text {
		t.Error("hard split lost content")
	}
}

func TestSplitChunksRespectsMaxLen(t *testing.T) {
	text := "This is a somewhat longer sentence. And here is another one to pack. Plus a third for good measure."
	for _, maxLen := range []int{15, 30, 60} {
		for i, c := range SplitChunks(text, maxLen) {
			if utf8.RuneCountInString(c) > maxLen {
				t.Errorf("maxLen %d: chunk %d length %d", maxLen, i, utf8.RuneCountInString(c))
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Voice selection
// ---------------------------------------------------------------------------

func TestBestVoice(t *testing.T) {
	voices := []Voice{
		{Name: "Samantha", Lang: "en-US"},
		{Name: "Lekha", Lang: "hi-IN"},
		{Name: "Vani", Lang: "ta-IN"},
	}

	tests := []struct {
		name     string
		language string
		saved    string
		want     string
	}{
		{"saved voice still offered", "hi-IN", "Vani", "Vani"},
		{"saved voice gone falls back to language", "hi-IN", "Ghost", "Lekha"},
		{"language match", "ta-IN", "", "Vani"},
		{"language prefix match", "en-GB", "", "Samantha"},
		{"no match", "fr-FR", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BestVoice(voices, tt.language, tt.saved); got != tt.want {
				t.Errorf("BestVoice = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Speaker
// ---------------------------------------------------------------------------

// recordingEngine completes each utterance immediately.
type recordingEngine struct {
	mu     sync.Mutex
	spoken []Utterance
}

func (e *recordingEngine) Voices() []Voice {
	return []Voice{{Name: "Samantha", Lang: "en-US"}, {Name: "Lekha", Lang: "hi-IN"}}
}

func (e *recordingEngine) Speak(ctx context.Context, u Utterance) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spoken = append(e.spoken, u)
	return nil
}

func (e *recordingEngine) utterances() []Utterance {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Utterance, len(e.spoken))
	copy(out, e.spoken)
	return out
}

// blockingEngine parks inside Speak until the playback context dies.
type blockingEngine struct {
	recordingEngine
	started chan Utterance
}

func (e *blockingEngine) Speak(ctx context.Context, u Utterance) error {
	e.recordingEngine.Speak(ctx, u)
	e.started <- u
	<-ctx.Done()
	return ctx.Err()
}

type stubTranslator struct {
	mu    sync.Mutex
	calls int
	// failCalls holds 1-based call numbers that should error.
	failCalls map[int]bool
}

func (tr *stubTranslator) Translate(ctx context.Context, text, src, dst string) (string, error) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.calls++
	if tr.failCalls[tr.calls] {
		return "", domain.ErrRateLimited
	}
	return "[" + dst + "] " + text, nil
}

func (tr *stubTranslator) callCount() int {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return tr.calls
}

func waitIdle(t *testing.T, s *Speaker) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if _, speaking := s.Speaking(); !speaking {
			return
		}
		select {
		case <-deadline:
			t.Fatal("speaker never went idle")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func englishSettings() domain.SpeechSettings {
	s := domain.DefaultSpeechSettings()
	return s
}

func hindiSettings() domain.SpeechSettings {
	s := domain.DefaultSpeechSettings()
	s.Language = "hi-IN"
	return s
}

func TestSpeakerSpeaksChunksInOrder(t *testing.T) {
	engine := &recordingEngine{}
	s := NewSpeaker(engine, nil, 25)

	started := s.Toggle(SpeakRequest{
		MessageID: "m1",
		Text:      "First sentence here. Second sentence follows. Third one ends it.",
		Settings:  englishSettings(),
	})
	if !started {
		t.Fatal("Toggle should start playback")
	}
	waitIdle(t, s)

	spoken := engine.utterances()
	if len(spoken) != 3 {
		t.Fatalf("utterances = %d, want 3", len(spoken))
	}
	for i, u := range spoken {
		if u.Index != i {
			t.Errorf("utterance %d has index %d", i, u.Index)
		}
		if u.MessageID != "m1" {
			t.Errorf("utterance %d message id = %q", i, u.MessageID)
		}
	}
	if spoken[0].Voice != "Samantha" {
		t.Errorf("voice = %q, want Samantha", spoken[0].Voice)
	}
}

func TestSpeakerTranslatesNonEnglish(t *testing.T) {
	engine := &recordingEngine{}
	tr := &stubTranslator{}
	s := NewSpeaker(engine, tr, 25)

	s.Toggle(SpeakRequest{
		MessageID: "m1",
		Text:      "First sentence here. Second sentence follows.",
		Settings:  hindiSettings(),
	})
	waitIdle(t, s)

	spoken := engine.utterances()
	if len(spoken) != 2 {
		t.Fatalf("utterances = %d, want 2", len(spoken))
	}
	for i, u := range spoken {
		if !strings.HasPrefix(u.Text, "[hi-IN] ") {
			t.Errorf("utterance %d not translated: %q", i, u.Text)
		}
	}
}

func TestSpeakerTranslationFailureFallsBackPerChunk(t *testing.T) {
	engine := &recordingEngine{}
	tr := &stubTranslator{failCalls: map[int]bool{1: true}}
	s := NewSpeaker(engine, tr, 25)

	s.Toggle(SpeakRequest{
		MessageID: "m1",
		Text:      "First sentence here. Second sentence follows.",
		Settings:  hindiSettings(),
	})
	waitIdle(t, s)

	spoken := engine.utterances()
	if len(spoken) != 2 {
		t.Fatalf("utterances = %d, want 2", len(spoken))
	}
	// First chunk hit the quota error and is spoken untranslated; the
	// second still goes through translation.
	if spoken[0].Text != "First sentence here." {
		t.Errorf("chunk 0 = %q, want untranslated original", spoken[0].Text)
	}
	if spoken[1].Text != "[hi-IN] Second sentence follows." {
		t.Errorf("chunk 1 = %q, want translated", spoken[1].Text)
	}
}

func TestSpeakerEnglishSkipsTranslation(t *testing.T) {
	engine := &recordingEngine{}
	tr := &stubTranslator{}
	s := NewSpeaker(engine, tr, 50)

	s.Toggle(SpeakRequest{MessageID: "m1", Text: "Hello there.", Settings: englishSettings()})
	waitIdle(t, s)

	if tr.callCount() != 0 {
		t.Errorf("translator called %d times for English", tr.callCount())
	}
}

func TestSpeakerToggleSameMessageStops(t *testing.T) {
	engine := &blockingEngine{started: make(chan Utterance, 1)}
	s := NewSpeaker(engine, nil, 50)

	if !s.Toggle(SpeakRequest{MessageID: "m1", Text: "Hello there.", Settings: englishSettings()}) {
		t.Fatal("first toggle should start")
	}
	<-engine.started

	if id, speaking := s.Speaking(); !speaking || id != "m1" {
		t.Fatalf("Speaking = %q, %v", id, speaking)
	}

	if s.Toggle(SpeakRequest{MessageID: "m1", Text: "Hello there.", Settings: englishSettings()}) {
		t.Fatal("second toggle of the same message should stop, not restart")
	}
	if _, speaking := s.Speaking(); speaking {
		t.Error("speaker still speaking after stop")
	}
}

func TestSpeakerToggleDifferentMessageReplaces(t *testing.T) {
	engine := &blockingEngine{started: make(chan Utterance, 2)}
	s := NewSpeaker(engine, nil, 50)

	s.Toggle(SpeakRequest{MessageID: "m1", Text: "First message.", Settings: englishSettings()})
	<-engine.started

	if !s.Toggle(SpeakRequest{MessageID: "m2", Text: "Second message.", Settings: englishSettings()}) {
		t.Fatal("switching to another message should start playback")
	}
	<-engine.started

	if id, speaking := s.Speaking(); !speaking || id != "m2" {
		t.Errorf("Speaking = %q, %v; want m2", id, speaking)
	}
	s.Stop()
}

func TestSpeakerStop(t *testing.T) {
	engine := &blockingEngine{started: make(chan Utterance, 1)}
	s := NewSpeaker(engine, nil, 50)

	s.Toggle(SpeakRequest{MessageID: "m1", Text: "Hello there.", Settings: englishSettings()})
	<-engine.started

	s.Stop()
	if _, speaking := s.Speaking(); speaking {
		t.Error("still speaking after Stop")
	}

	// Stop when idle is a no-op.
	s.Stop()
}

func TestIsEnglish(t *testing.T) {
	if !isEnglish("en-US") || !isEnglish("en-GB") || !isEnglish("") {
		t.Error("english tags misclassified")
	}
	if isEnglish("hi-IN") {
		t.Error("hi-IN classified as english")
	}
}
