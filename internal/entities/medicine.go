package entities

import "time"

// Medicine is one scheduled medication owned by a single user. UserID is a
// logical reference; no foreign-key constraint is declared. Time is the
// free-text time-of-day label, e.g. "Morning-Evening".
type Medicine struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:255" json:"name"`
	Dosage    string    `gorm:"size:100" json:"dosage"`
	Frequency string    `gorm:"size:100" json:"frequency"`
	Time      string    `gorm:"column:time_label;size:100" json:"time"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Medicine) TableName() string {
	return "medicines"
}

// SameContent reports whether two entries carry the same user-visible fields.
func (m Medicine) SameContent(other Medicine) bool {
	return m.UserID == other.UserID &&
		m.Name == other.Name &&
		m.Dosage == other.Dosage &&
		m.Frequency == other.Frequency &&
		m.Time == other.Time
}
