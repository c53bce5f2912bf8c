package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fall-line/lifelens/internal/config"
	"github.com/fall-line/lifelens/internal/domain"
	"github.com/fall-line/lifelens/internal/middleware"
	"github.com/fall-line/lifelens/internal/service"
	"github.com/fall-line/lifelens/internal/telegram"
)

func (h *Handler) handleSettings(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil || update.Message == nil {
		return
	}

	s := h.prefs.Get(ctx, user.ID)
	text, markup := settingsView(s)
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        text,
		ReplyMarkup: markup,
	})
}

func settingsView(s domain.SpeechSettings) (string, *models.InlineKeyboardMarkup) {
	voice := s.Voice
	if voice == "" {
		voice = "auto"
	}
	text := fmt.Sprintf(
		"⚙️ Settings\n\n"+
			"🗣 Language: %s\n"+
			"🎙 Voice: %s\n"+
			"⏩ Speed: %gx\n"+
			"🎵 Pitch: %g\n"+
			"🎨 Theme: %s",
		config.LanguageName(s.Language), voice, s.Rate, s.Pitch, s.Theme,
	)

	var rows [][]models.InlineKeyboardButton

	// Languages, two per row.
	var row []models.InlineKeyboardButton
	for _, l := range config.Languages {
		label := l.Name
		if l.Code == s.Language {
			label = "✅ " + label
		}
		row = append(row, telegram.InlineButton(label, "set_lang_"+l.Code))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	rows = append(rows,
		telegram.ButtonRow(telegram.InlineButton("🎙 Voice", "set_voices")),
		speechLevelRow("set_rate_", s.Rate),
		speechLevelRow("set_pitch_", s.Pitch),
		telegram.ButtonRow(telegram.InlineButton("🎨 Toggle theme", "set_theme")),
	)

	return text, telegram.InlineKeyboard(rows...)
}

func speechLevelRow(prefix string, current float64) []models.InlineKeyboardButton {
	var row []models.InlineKeyboardButton
	for _, v := range config.SpeechLevels {
		label := strconv.FormatFloat(v, 'f', -1, 64)
		if v == current {
			label = "✅ " + label
		}
		row = append(row, telegram.InlineButton(label, prefix+strconv.FormatFloat(v, 'f', -1, 64)))
	}
	return row
}

// handleSettingsCallback handles set_lang_, set_voices, set_voice_,
// set_rate_, set_pitch_, set_theme.
func (h *Handler) handleSettingsCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	user := middleware.GetUser(ctx)
	if user == nil {
		return
	}
	data := update.CallbackQuery.Data
	chatID := callbackChatID(update)

	var (
		updated domain.SpeechSettings
		err     error
		note    string
	)

	switch {
	case strings.HasPrefix(data, "set_lang_"):
		code := strings.TrimPrefix(data, "set_lang_")
		updated, err = h.prefs.Update(ctx, user.ID, func(s *domain.SpeechSettings) {
			s.Language = code
			s.Voice = service.BestVoice(voiceCatalog, code, "")
		})
		if err == nil {
			// Speak a localized sample so the change is audible right away.
			h.speaker.Toggle(service.SpeakRequest{
				MessageID: "lang_test_" + strconv.FormatInt(user.ID, 10),
				ChatID:    chatID,
				Text:      service.TestPhrase(code),
				Settings:  updated,
			})
			note = "🗣 " + config.LanguageName(code)
		}

	case data == "set_voices":
		s := h.prefs.Get(ctx, user.ID)
		answerCallback(ctx, b, update, "")
		h.showVoiceMenu(ctx, b, update, s)
		return

	case strings.HasPrefix(data, "set_voice_"):
		name := strings.TrimPrefix(data, "set_voice_")
		updated, err = h.prefs.Update(ctx, user.ID, func(s *domain.SpeechSettings) {
			s.Voice = name
		})
		note = "🎙 " + name

	case strings.HasPrefix(data, "set_rate_"):
		updated, err = h.updateLevel(ctx, user.ID, strings.TrimPrefix(data, "set_rate_"), func(s *domain.SpeechSettings, v float64) {
			s.Rate = v
		})
		note = "⏩ Speed updated"

	case strings.HasPrefix(data, "set_pitch_"):
		updated, err = h.updateLevel(ctx, user.ID, strings.TrimPrefix(data, "set_pitch_"), func(s *domain.SpeechSettings, v float64) {
			s.Pitch = v
		})
		note = "🎵 Pitch updated"

	case data == "set_theme":
		updated, err = h.prefs.Update(ctx, user.ID, func(s *domain.SpeechSettings) {
			if s.Theme == domain.ThemeLight {
				s.Theme = domain.ThemeDark
			} else {
				s.Theme = domain.ThemeLight
			}
		})
		note = "🎨 Theme toggled"

	default:
		return
	}

	if err != nil {
		slog.Error("update settings", "user_id", user.ID, "error", err)
		answerCallback(ctx, b, update, "Couldn't save settings")
		return
	}
	answerCallback(ctx, b, update, note)

	text, markup := settingsView(updated)
	_, editErr := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   update.CallbackQuery.Message.Message.ID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if editErr != nil {
		slog.Debug("refresh settings view", "error", editErr)
	}
}

func (h *Handler) updateLevel(ctx context.Context, userID int64, raw string, apply func(*domain.SpeechSettings, float64)) (domain.SpeechSettings, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.SpeechSettings{}, fmt.Errorf("parse level %q: %w", raw, err)
	}
	return h.prefs.Update(ctx, userID, func(s *domain.SpeechSettings) {
		apply(s, v)
	})
}

func (h *Handler) showVoiceMenu(ctx context.Context, b *bot.Bot, update *models.Update, s domain.SpeechSettings) {
	var rows [][]models.InlineKeyboardButton
	for _, v := range voiceCatalog {
		if v.Lang != s.Language {
			continue
		}
		label := v.Name
		if v.Name == s.Voice {
			label = "✅ " + label
		}
		rows = append(rows, telegram.ButtonRow(telegram.InlineButton(label, "set_voice_"+v.Name)))
	}

	text := "🎙 Voices for " + config.LanguageName(s.Language)
	if len(rows) == 0 {
		text = "No dedicated voices for this language; the default voice will be used."
	}

	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      callbackChatID(update),
		MessageID:   update.CallbackQuery.Message.Message.ID,
		Text:        text,
		ReplyMarkup: telegram.InlineKeyboard(rows...),
	})
	if err != nil {
		slog.Debug("show voice menu", "error", err)
	}
}
