// Package catalog holds the static content shown alongside the user's data:
// emergency numbers, health news, the daily tip and the time-of-day greeting.
package catalog

import "time"

type EmergencyContact struct {
	Name        string `json:"name"`
	Number      string `json:"number"`
	Description string `json:"description"`
}

// DialURI returns the tel: URI that starts a call to the contact.
func (c EmergencyContact) DialURI() string {
	return "tel:" + c.Number
}

type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

var emergencyContacts = []EmergencyContact{
	{Name: "Acil Çağrı Merkezi", Number: "112", Description: "Ambulans, İtfaiye, Polis"},
	{Name: "Polis İmdat", Number: "155", Description: "Güvenlik durumları için"},
	{Name: "Jandarma İmdat", Number: "156", Description: "Kırsal bölgeler için"},
	{Name: "AFAD", Number: "122", Description: "Afet ve Acil Durum"},
	{Name: "Alo Sağlık", Number: "184", Description: "Sağlık Danışma Hattı"},
}

var news = []NewsItem{
	{
		Title:       "Mevsimsel grip aşısı dönemi başladı",
		Description: "Risk grubundaki bireylerin aşılarını sonbahar aylarında yaptırmaları öneriliyor.",
		ImageURL:    "https://images.example.org/news/flu.jpg",
		Category:    "Aşı",
		Date:        "2024-10-01",
	},
	{
		Title:       "Düzenli yürüyüşün kalp sağlığına etkisi",
		Description: "Günde 30 dakikalık tempolu yürüyüş kalp-damar hastalıkları riskini azaltıyor.",
		ImageURL:    "https://images.example.org/news/walking.jpg",
		Category:    "Egzersiz",
		Date:        "2024-09-18",
	},
	{
		Title:       "İlaçlarınızı doğru saklayın",
		Description: "Çoğu ilaç serin, kuru ve güneş görmeyen bir yerde saklanmalıdır.",
		ImageURL:    "https://images.example.org/news/storage.jpg",
		Category:    "İlaç",
		Date:        "2024-09-02",
	},
	{
		Title:       "Uyku düzeni ve bağışıklık",
		Description: "Yetişkinler için önerilen günlük uyku süresi 7 ile 9 saat arasında.",
		ImageURL:    "https://images.example.org/news/sleep.jpg",
		Category:    "Yaşam",
		Date:        "2024-08-21",
	},
}

const dailyTip = "Günde en az 8 bardak su içmeyi unutmayın. Yeterli su tüketimi, vücudunuzun sağlıklı çalışması için çok önemlidir."

// EmergencyContacts returns the emergency numbers in display order.
func EmergencyContacts() []EmergencyContact {
	return append([]EmergencyContact(nil), emergencyContacts...)
}

// FindEmergencyContact looks a contact up by its number.
func FindEmergencyContact(number string) (EmergencyContact, bool) {
	for _, c := range emergencyContacts {
		if c.Number == number {
			return c, true
		}
	}
	return EmergencyContact{}, false
}

// News returns the health news items, newest first.
func News() []NewsItem {
	return append([]NewsItem(nil), news...)
}

// NewsByCategory returns the items of one category.
func NewsByCategory(category string) []NewsItem {
	out := []NewsItem{}
	for _, n := range news {
		if n.Category == category {
			out = append(out, n)
		}
	}
	return out
}

func DailyTip() string {
	return dailyTip
}

// Greeting returns the salutation for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 6 && h <= 11:
		return "Günaydın"
	case h >= 12 && h <= 17:
		return "İyi Günler"
	case h >= 18 && h <= 22:
		return "İyi Akşamlar"
	default:
		return "İyi Geceler"
	}
}
