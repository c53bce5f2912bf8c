package domain

// SpeechSettings holds a user's read-aloud and appearance preferences.
type SpeechSettings struct {
	Language string
	Voice    string
	Rate     float64
	Pitch    float64
	Theme    string
}

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// DefaultSpeechSettings are applied for users who never opened /settings.
func DefaultSpeechSettings() SpeechSettings {
	return SpeechSettings{
		Language: "en-US",
		Rate:     1.0,
		Pitch:    1.0,
		Theme:    ThemeLight,
	}
}
