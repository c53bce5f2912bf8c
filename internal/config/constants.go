package config

import "time"

const (
	// Gateway / translation HTTP budgets.
	RequestTimeout   = 30 * time.Second
	TranslateTimeout = 15 * time.Second

	// Speech playback.
	MaxChunkLen = 180

	// Session list pagination.
	SessionsPerPage = 5

	// Per-chat messages per minute before the bot asks to slow down.
	RateLimitPerMinute = 6

	// Stale in-flight request cleanup.
	ActiveRequestMaxAge     = 3 * time.Minute
	ActiveRequestCleanupInt = 60 * time.Second

	DefaultAssistantName = "Iris"
	NewChatTitle         = "New Chat"
)

// Language is one selectable speech language.
type Language struct {
	Code string
	Name string
}

// Languages the settings keyboard offers, camera firmware order.
var Languages = []Language{
	{Code: "en-US", Name: "English"},
	{Code: "hi-IN", Name: "हिन्दी"},
	{Code: "ta-IN", Name: "தமிழ்"},
	{Code: "te-IN", Name: "తెలుగు"},
	{Code: "kn-IN", Name: "ಕನ್ನಡ"},
	{Code: "ml-IN", Name: "മലയാളം"},
	{Code: "mr-IN", Name: "मराठी"},
	{Code: "gu-IN", Name: "ગુજરાતી"},
	{Code: "bn-IN", Name: "বাংলা"},
	{Code: "pa-IN", Name: "ਪੰਜਾਬੀ"},
}

// LanguageName resolves a code to its display name.
func LanguageName(code string) string {
	for _, l := range Languages {
		if l.Code == code {
			return l.Name
		}
	}
	return code
}

// Rate/pitch steps offered in /settings.
var SpeechLevels = []float64{0.5, 0.75, 1.0, 1.25, 1.5, 2.0}
