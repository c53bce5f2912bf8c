package service

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fall-line/lifelens/internal/domain"
)

// Voice is one synthesis voice an Engine offers.
type Voice struct {
	Name string
	Lang string
}

// Utterance is a single chunk handed to the engine, already translated.
type Utterance struct {
	MessageID string
	ChatID    int64
	Index     int
	Text      string
	Language  string
	Voice     string
	Rate      float64
	Pitch     float64
}

// Engine is the synthesis capability the Speaker drives. Speak blocks
// until the utterance finishes or ctx is cancelled.
type Engine interface {
	Voices() []Voice
	Speak(ctx context.Context, u Utterance) error
}

type chunkTranslator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// SpeakRequest asks the Speaker to read one chat message aloud.
type SpeakRequest struct {
	MessageID string
	ChatID    int64
	Text      string
	Settings  domain.SpeechSettings
}

// Speaker reads messages aloud, one chunk at a time. It is either idle or
// speaking exactly one message; toggling the same message stops it, and
// starting a different one replaces the current playback. Chunks run
// strictly sequentially: each starts only after the previous one finished
// or errored, and a failed chunk never stalls the rest.
type Speaker struct {
	engine     Engine
	translator chunkTranslator
	maxChunk   int

	mu      sync.Mutex
	current *playback
}

type playback struct {
	messageID string
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewSpeaker(engine Engine, translator chunkTranslator, maxChunk int) *Speaker {
	return &Speaker{
		engine:     engine,
		translator: translator,
		maxChunk:   maxChunk,
	}
}

// Toggle starts reading the message, or stops it when it is the one
// currently playing. Returns true when playback started.
func (s *Speaker) Toggle(req SpeakRequest) bool {
	s.mu.Lock()
	for s.current != nil {
		cur := s.current
		s.current = nil
		s.mu.Unlock()

		cur.cancel()
		<-cur.done

		if cur.messageID == req.MessageID {
			return false
		}
		s.mu.Lock()
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &playback{
		messageID: req.MessageID,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	s.current = p
	s.mu.Unlock()

	go s.run(ctx, p, req)
	return true
}

// Stop cancels whatever is playing. Used when speech settings change.
func (s *Speaker) Stop() {
	s.mu.Lock()
	cur := s.current
	s.current = nil
	s.mu.Unlock()

	if cur != nil {
		cur.cancel()
		<-cur.done
	}
}

// Speaking reports the message currently being read, if any.
func (s *Speaker) Speaking() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", false
	}
	return s.current.messageID, true
}

func (s *Speaker) run(ctx context.Context, p *playback, req SpeakRequest) {
	defer func() {
		s.mu.Lock()
		if s.current == p {
			s.current = nil
		}
		s.mu.Unlock()
		close(p.done)
	}()

	voice := BestVoice(s.engine.Voices(), req.Settings.Language, req.Settings.Voice)
	chunks := SplitChunks(req.Text, s.maxChunk)

	for i, chunk := range chunks {
		if ctx.Err() != nil {
			return
		}

		text := chunk
		if s.translator != nil && !isEnglish(req.Settings.Language) {
			translated, err := s.translator.Translate(ctx, chunk, "en", req.Settings.Language)
			if err == nil {
				text = translated
			}
			// On error the chunk is spoken untranslated.
		}

		if ctx.Err() != nil {
			return
		}

		// A failed chunk is skipped; playback continues with the next one.
		_ = s.engine.Speak(ctx, Utterance{
			MessageID: req.MessageID,
			ChatID:    req.ChatID,
			Index:     i,
			Text:      text,
			Language:  req.Settings.Language,
			Voice:     voice,
			Rate:      req.Settings.Rate,
			Pitch:     req.Settings.Pitch,
		})
	}
}

// SplitChunks breaks text into pieces of at most maxLen runes, cutting at
// sentence boundaries (. ! ?) where possible. Adjacent short sentences are
// packed into one chunk; only a single sentence longer than maxLen gets
// hard-split.
func SplitChunks(text string, maxLen int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxLen <= 0 || utf8.RuneCountInString(text) <= maxLen {
		return []string{text}
	}

	var (
		chunks []string
		cur    string
	)
	flush := func() {
		if cur != "" {
			chunks = append(chunks, cur)
			cur = ""
		}
	}

	for _, sentence := range splitSentences(text) {
		if utf8.RuneCountInString(sentence) > maxLen {
			flush()
			chunks = append(chunks, hardSplit(sentence, maxLen)...)
			continue
		}
		if cur == "" {
			cur = sentence
			continue
		}
		if utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(sentence) > maxLen {
			flush()
			cur = sentence
			continue
		}
		cur += " " + sentence
	}
	flush()
	return chunks
}

// splitSentences cuts text after terminal punctuation, keeping the
// punctuation with its sentence.
func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)
	runes := []rune(text)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Treat runs like "?!" or "..." as one terminator.
		if i+1 < len(runes) {
			next := runes[i+1]
			if next == '.' || next == '!' || next == '?' {
				continue
			}
		}
		s := strings.TrimSpace(string(runes[start : i+1]))
		if s != "" {
			sentences = append(sentences, s)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func hardSplit(s string, maxLen int) []string {
	var out []string
	runes := []rune(s)
	for len(runes) > maxLen {
		out = append(out, strings.TrimSpace(string(runes[:maxLen])))
		runes = runes[maxLen:]
	}
	if rest := strings.TrimSpace(string(runes)); rest != "" {
		out = append(out, rest)
	}
	return out
}

// BestVoice picks the saved voice if the engine still offers it, otherwise
// the first voice whose language matches, otherwise none.
func BestVoice(voices []Voice, language, saved string) string {
	if saved != "" {
		for _, v := range voices {
			if v.Name == saved {
				return saved
			}
		}
	}
	prefix := language
	if i := strings.Index(language, "-"); i > 0 {
		prefix = language[:i]
	}
	for _, v := range voices {
		if v.Lang == language || strings.HasPrefix(v.Lang, prefix) {
			return v.Name
		}
	}
	return ""
}

func isEnglish(lang string) bool {
	return lang == "" || strings.HasPrefix(lang, "en")
}

// TestPhrase returns a short localized sample spoken after a language
// change so the user hears the new voice immediately.
func TestPhrase(lang string) string {
	switch lang {
	case "ta-IN":
		return "வணக்கம், இது ஒரு சோதனை செய்தி."
	case "hi-IN":
		return "नमस्ते, यह एक परीक्षण संदेश है।"
	case "te-IN":
		return "హలో, ఇది ఒక పరీక్ష సందేశం."
	case "kn-IN":
		return "ನಮಸ್ಕಾರ, ಇದು ಒಂದು ಪರೀಕ್ಷಾ ಸಂದೇಶ."
	case "ml-IN":
		return "നമസ്കാരം, ഇതൊരു പരീക്ഷണ സന്ദേശമാണ്."
	case "mr-IN":
		return "नमस्कार, हा एक चाचणी संदेश आहे."
	case "gu-IN":
		return "નમસ્તે, આ એક પરીક્ષણ સંદેશ છે."
	case "bn-IN":
		return "নমস্কার, এটি একটি পরীক্ষামূলক বার্তা।"
	case "pa-IN":
		return "ਸਤ ਸ੍ਰੀ ਅਕਾਲ, ਇਹ ਇੱਕ ਟੈਸਟ ਸੁਨੇਹਾ ਹੈ।"
	default:
		return "Hello, this is a test message."
	}
}
