package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/medcompanion/internal/entities"
)

func TestParseTimeLabel(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  []Slot
	}{
		{"single named slot", "Morning", []Slot{{Hour: 8}}},
		{"named slots joined by dashes", "Morning-Evening", []Slot{{Hour: 8}, {Hour: 20}}},
		{"turkish names", "Sabah-Öğle-Akşam", []Slot{{Hour: 8}, {Hour: 12}, {Hour: 20}}},
		{"clock time", "08:30", []Slot{{Hour: 8, Minute: 30}}},
		{"mixed separators", "gece, 07:15 / noon", []Slot{{Hour: 7, Minute: 15}, {Hour: 12}, {Hour: 22}}},
		{"duplicates collapse", "morning-sabah-08:00", []Slot{{Hour: 8}}},
		{"case insensitive", "EVENING", []Slot{{Hour: 20}}},
		{"unknown tokens are ignored", "after meals", []Slot{}},
		{"invalid clock times are ignored", "25:00-12:7-ab:cd", []Slot{}},
		{"empty label", "", []Slot{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTimeLabel(tt.label))
		})
	}
}

func TestSlot(t *testing.T) {
	s := Slot{Hour: 8, Minute: 5}
	assert.Equal(t, "08:05", s.String())
	assert.Equal(t, "5 8 * * *", s.CronSpec())

	day := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 10, 8, 5, 0, 0, time.UTC), s.On(day))
}

func TestDosesToday(t *testing.T) {
	meds := []entities.Medicine{
		{Name: "Aspirin", Time: "Morning-Evening"},
		{Name: "Vitamin D", Time: "12:00"},
		{Name: "As needed", Time: "when required"},
	}

	t.Run("before the first dose", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 7, 0, 0, 0, time.UTC)
		summary := DosesToday(meds, now)
		assert.Equal(t, DaySummary{Total: 3, Remaining: 3}, summary)
		assert.Equal(t, 0, summary.Taken())
	})

	t.Run("in the afternoon", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 13, 0, 0, 0, time.UTC)
		summary := DosesToday(meds, now)
		assert.Equal(t, DaySummary{Total: 3, Remaining: 1}, summary)
		assert.Equal(t, 2, summary.Taken())
	})

	t.Run("slot at exactly now is remaining", func(t *testing.T) {
		now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, 2, DosesToday(meds, now).Remaining)
	})

	t.Run("no medicines", func(t *testing.T) {
		assert.Equal(t, DaySummary{}, DosesToday(nil, time.Now()))
	})
}
