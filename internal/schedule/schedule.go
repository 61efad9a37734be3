// Package schedule turns the free-text time label of a medicine into daily
// dose slots.
//
// A label is split on '-', ',', '/' and whitespace. Each token is either a
// named part of the day (English or Turkish) or a clock time in HH:MM form.
// Unrecognised tokens are ignored, so a label such as "after meals" yields no
// slots at all.
package schedule

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/medcompanion/internal/entities"
)

// Slot is a time of day at which a dose is due.
type Slot struct {
	Hour   int
	Minute int
}

func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// CronSpec returns the five-field cron expression firing daily at the slot.
func (s Slot) CronSpec() string {
	return fmt.Sprintf("%d %d * * *", s.Minute, s.Hour)
}

// On returns the slot's instant on the day of t, in t's location.
func (s Slot) On(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, s.Hour, s.Minute, 0, 0, t.Location())
}

var namedSlots = map[string]Slot{
	"morning": {Hour: 8},
	"sabah":   {Hour: 8},
	"noon":    {Hour: 12},
	"öğle":    {Hour: 12},
	"öğlen":   {Hour: 12},
	"evening": {Hour: 20},
	"akşam":   {Hour: 20},
	"night":   {Hour: 22},
	"gece":    {Hour: 22},
}

// ParseTimeLabel returns the distinct slots named by label in time order.
func ParseTimeLabel(label string) []Slot {
	tokens := strings.FieldsFunc(label, func(r rune) bool {
		switch r {
		case '-', ',', '/', ' ', '\t':
			return true
		}
		return false
	})

	seen := make(map[Slot]bool)
	slots := make([]Slot, 0, len(tokens))
	for _, token := range tokens {
		slot, ok := parseToken(token)
		if !ok || seen[slot] {
			continue
		}
		seen[slot] = true
		slots = append(slots, slot)
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Hour != slots[j].Hour {
			return slots[i].Hour < slots[j].Hour
		}
		return slots[i].Minute < slots[j].Minute
	})
	return slots
}

func parseToken(token string) (Slot, bool) {
	if slot, ok := namedSlots[strings.ToLower(token)]; ok {
		return slot, true
	}

	hh, mm, found := strings.Cut(token, ":")
	if !found {
		return Slot{}, false
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return Slot{}, false
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 || minute < 0 || minute > 59 {
		return Slot{}, false
	}
	return Slot{Hour: hour, Minute: minute}, true
}

// DaySummary counts the doses of a day.
type DaySummary struct {
	Total     int `json:"total"`
	Remaining int `json:"remaining"`
}

// Taken returns the number of doses whose slot has already passed.
func (d DaySummary) Taken() int {
	return d.Total - d.Remaining
}

// DosesToday summarises the slots of every medicine on the day of now. A
// slot at exactly now counts as remaining.
func DosesToday(medicines []entities.Medicine, now time.Time) DaySummary {
	var summary DaySummary
	for _, m := range medicines {
		for _, slot := range ParseTimeLabel(m.Time) {
			summary.Total++
			if !slot.On(now).Before(now) {
				summary.Remaining++
			}
		}
	}
	return summary
}
