package handler

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"

	"github.com/fall-line/lifelens/internal/service"
)

// voiceCatalog is the set of synthesis voices the bot offers, at least one
// per supported language.
var voiceCatalog = []service.Voice{
	{Name: "Samantha", Lang: "en-US"},
	{Name: "Daniel", Lang: "en-US"},
	{Name: "Lekha", Lang: "hi-IN"},
	{Name: "Vani", Lang: "ta-IN"},
	{Name: "Chitra", Lang: "te-IN"},
	{Name: "Soumya", Lang: "kn-IN"},
	{Name: "Veena", Lang: "ml-IN"},
	{Name: "Asha", Lang: "mr-IN"},
	{Name: "Heena", Lang: "gu-IN"},
	{Name: "Tara", Lang: "bn-IN"},
	{Name: "Simran", Lang: "pa-IN"},
}

// botEngine delivers utterances as paced voice-caption messages. Each
// chunk stays on screen roughly as long as it would take to say it, so
// cancelling mid-message actually interrupts playback.
type botEngine struct {
	b *bot.Bot
}

// NewEngine builds the bot-backed synthesis engine.
func NewEngine(b *bot.Bot) service.Engine {
	return &botEngine{b: b}
}

func (e *botEngine) Voices() []service.Voice {
	return voiceCatalog
}

func (e *botEngine) Speak(ctx context.Context, u service.Utterance) error {
	_, err := e.b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: u.ChatID,
		Text:   "🔊 " + u.Text,
	})
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(utteranceDuration(u.Text, u.Rate)):
		return nil
	}
}

// utteranceDuration estimates speaking time at ~150 words per minute,
// scaled by the rate setting.
func utteranceDuration(text string, rate float64) time.Duration {
	if rate <= 0 {
		rate = 1
	}
	words := len(strings.Fields(text))
	if words == 0 {
		words = 1
	}
	d := time.Duration(float64(words) / (150.0 / 60.0) / rate * float64(time.Second))
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}
