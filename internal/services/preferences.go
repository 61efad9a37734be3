package services

import (
	"strconv"

	"github.com/mrlokans/medcompanion/internal/entities"
)

// DefaultLanguage is the interface language of a new account.
const DefaultLanguage = "tr"

// Preferences is the typed view of an account's stored preferences.
type Preferences struct {
	DarkMode            bool   `json:"dark_mode"`
	MedicineReminders   bool   `json:"medicine_reminders"`
	HealthNews          bool   `json:"health_news"`
	SystemNotifications bool   `json:"system_notifications"`
	Language            string `json:"language"`
}

// DefaultPreferences returns the preferences of an account that never
// changed any: dark mode off, every notification on, Turkish.
func DefaultPreferences() Preferences {
	return Preferences{
		DarkMode:            false,
		MedicineReminders:   true,
		HealthNews:          true,
		SystemNotifications: true,
		Language:            DefaultLanguage,
	}
}

// preferencesFromValues overlays stored values on the defaults. Values that
// do not parse keep their default.
func preferencesFromValues(values map[string]string) Preferences {
	prefs := DefaultPreferences()
	readBool(values, entities.PreferenceKeyDarkMode, &prefs.DarkMode)
	readBool(values, entities.PreferenceKeyMedicineReminders, &prefs.MedicineReminders)
	readBool(values, entities.PreferenceKeyHealthNews, &prefs.HealthNews)
	readBool(values, entities.PreferenceKeySystemNotifications, &prefs.SystemNotifications)
	if lang := values[entities.PreferenceKeyLanguage]; lang != "" {
		prefs.Language = lang
	}
	return prefs
}

func (p Preferences) values() map[string]string {
	lang := p.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	return map[string]string{
		entities.PreferenceKeyDarkMode:            strconv.FormatBool(p.DarkMode),
		entities.PreferenceKeyMedicineReminders:   strconv.FormatBool(p.MedicineReminders),
		entities.PreferenceKeyHealthNews:          strconv.FormatBool(p.HealthNews),
		entities.PreferenceKeySystemNotifications: strconv.FormatBool(p.SystemNotifications),
		entities.PreferenceKeyLanguage:            lang,
	}
}

func readBool(values map[string]string, key string, dst *bool) {
	raw, ok := values[key]
	if !ok {
		return
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		*dst = v
	}
}
