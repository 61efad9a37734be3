package entities

import "time"

// Preference is a per-user profile setting stored as a key/value pair.
type Preference struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_preference" json:"user_id"`
	Key       string    `gorm:"size:100;not null;uniqueIndex:idx_user_preference" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Preference) TableName() string {
	return "preferences"
}

// Known preference keys
const (
	PreferenceKeyDarkMode            = "dark_mode"
	PreferenceKeyMedicineReminders   = "notify_medicine_reminders"
	PreferenceKeyHealthNews          = "notify_health_news"
	PreferenceKeySystemNotifications = "notify_system"
	PreferenceKeyLanguage            = "language"
)
