package model

import (
	"fmt"
	"slices"
)

// Setting keys as persisted in the settings store.
const (
	SettingAPIURL        = "api_url"
	SettingTheme         = "theme"
	SettingLanguage      = "language"
	SettingToastPosition = "toast_position"
)

// Themes are the accepted console color schemes. "plain" disables ANSI colors.
var Themes = []string{"light", "dark", "plain"}

// ToastPositions are the accepted notice positions.
var ToastPositions = []string{
	"top-start", "top-center", "top-end",
	"bottom-start", "bottom-center", "bottom-end",
}

// Languages are the supported UI languages.
var Languages = []string{"en", "zh-TW"}

// Settings are client-local preferences.
type Settings struct {
	APIURL        string `json:"api_url"`
	Theme         string `json:"theme"`
	Language      string `json:"language"`
	ToastPosition string `json:"toast_position"`
}

// DefaultSettings returns the settings used before anything is saved.
// APIURL stays empty so callers can apply their own default.
func DefaultSettings() Settings {
	return Settings{
		Theme:         "light",
		Language:      "en",
		ToastPosition: "top-end",
	}
}

// SettingKeys lists every settings key in display order.
func SettingKeys() []string {
	return []string{SettingAPIURL, SettingTheme, SettingLanguage, SettingToastPosition}
}

// Pairs returns the settings keyed by their store keys.
func (s Settings) Pairs() map[string]string {
	return map[string]string{
		SettingAPIURL:        s.APIURL,
		SettingTheme:         s.Theme,
		SettingLanguage:      s.Language,
		SettingToastPosition: s.ToastPosition,
	}
}

// Get returns the value for key.
func (s Settings) Get(key string) (string, error) {
	v, ok := s.Pairs()[key]
	if !ok {
		return "", fmt.Errorf("unknown setting %q", key)
	}
	return v, nil
}

// Set validates and assigns one setting.
func (s *Settings) Set(key, value string) error {
	switch key {
	case SettingAPIURL:
		s.APIURL = value
	case SettingTheme:
		if !slices.Contains(Themes, value) {
			return fmt.Errorf("unknown theme %q, want one of %v", value, Themes)
		}
		s.Theme = value
	case SettingLanguage:
		if !slices.Contains(Languages, value) {
			return fmt.Errorf("unsupported language %q, want one of %v", value, Languages)
		}
		s.Language = value
	case SettingToastPosition:
		if !slices.Contains(ToastPositions, value) {
			return fmt.Errorf("unknown toast position %q, want one of %v", value, ToastPositions)
		}
		s.ToastPosition = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}
