package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/medcompanion/internal/services"
)

// UsernameRequest is the body of PUT /api/profile/username.
type UsernameRequest struct {
	Username string `json:"username" binding:"required,notblank"`
}

// PreferencesRequest is the body of PUT /api/preferences. Omitted fields keep
// their stored value.
type PreferencesRequest struct {
	DarkMode            *bool   `json:"dark_mode"`
	MedicineReminders   *bool   `json:"medicine_reminders"`
	HealthNews          *bool   `json:"health_news"`
	SystemNotifications *bool   `json:"system_notifications"`
	Language            *string `json:"language" binding:"omitempty,oneof=tr en"`
}

type ProfileController struct {
	session SessionState
}

func NewProfileController(s SessionState) *ProfileController {
	return &ProfileController{session: s}
}

// Profile returns the logged-in account.
// GET /api/profile
func (pc *ProfileController) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, currentAccount(c))
}

// UpdateUsername renames the logged-in account.
// PUT /api/profile/username
func (pc *ProfileController) UpdateUsername(c *gin.Context) {
	var req UsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := pc.session.UpdateUsername(c.Request.Context(), req.Username)
	if err != nil {
		respondDomainError(c, err, "update username")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Preferences returns the preferences of the logged-in account.
// GET /api/preferences
func (pc *ProfileController) Preferences(c *gin.Context) {
	prefs, err := pc.session.Preferences(c.Request.Context())
	if err != nil {
		respondDomainError(c, err, "get preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// SavePreferences merges the given fields into the stored preferences.
// PUT /api/preferences
func (pc *ProfileController) SavePreferences(c *gin.Context) {
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	prefs, err := pc.session.Preferences(c.Request.Context())
	if err != nil {
		respondDomainError(c, err, "get preferences")
		return
	}
	req.apply(&prefs)

	if err := pc.session.SavePreferences(c.Request.Context(), prefs); err != nil {
		respondDomainError(c, err, "save preferences")
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (r PreferencesRequest) apply(p *services.Preferences) {
	if r.DarkMode != nil {
		p.DarkMode = *r.DarkMode
	}
	if r.MedicineReminders != nil {
		p.MedicineReminders = *r.MedicineReminders
	}
	if r.HealthNews != nil {
		p.HealthNews = *r.HealthNews
	}
	if r.SystemNotifications != nil {
		p.SystemNotifications = *r.SystemNotifications
	}
	if r.Language != nil {
		p.Language = *r.Language
	}
}
