package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/medcompanion/internal/entities"
)

type AuditController struct {
	auditor AuditReader
	session SessionState
}

func NewAuditController(auditor AuditReader, s SessionState) *AuditController {
	return &AuditController{auditor: auditor, session: s}
}

// GetAuditEvents returns paginated audit events of the logged-in account,
// optionally filtered by ?type=.
// GET /api/audit
func (ac *AuditController) GetAuditEvents(c *gin.Context) {
	user := currentAccount(c)
	page, limit := parsePage(c, 25, 100)
	offset := (page - 1) * limit

	var events []entities.AuditEvent
	var total int64
	var err error

	if eventType := c.Query("type"); eventType != "" {
		if !isEventType(eventType) {
			respondBadRequest(c, "unknown event type: "+eventType)
			return
		}
		events, total, err = ac.auditor.GetEventsByType(c.Request.Context(), entities.AuditEventType(eventType), user.ID, limit, offset)
	} else {
		events, total, err = ac.auditor.GetEvents(c.Request.Context(), user.ID, limit, offset)
	}
	if err != nil {
		respondInternalError(c, err, "get audit events")
		return
	}

	totalPages := (int(total) + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       events,
		Total:      total,
		Limit:      limit,
		Offset:     offset,
		HasMore:    int64(offset+len(events)) < total,
		TotalPages: totalPages,
	})
}

// GetSessionEvents returns the events recorded under the current login.
// GET /api/audit/session
func (ac *AuditController) GetSessionEvents(c *gin.Context) {
	sessionID := ac.session.SessionID()
	events, err := ac.auditor.GetEventsBySession(c.Request.Context(), sessionID)
	if err != nil {
		respondInternalError(c, err, "get session events")
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "events": events})
}

func getEventTypes() []string {
	return []string{
		string(entities.AuditEventAuth),
		string(entities.AuditEventMedicine),
		string(entities.AuditEventProfile),
		string(entities.AuditEventSettings),
		string(entities.AuditEventReminder),
	}
}

func isEventType(s string) bool {
	for _, t := range getEventTypes() {
		if t == s {
			return true
		}
	}
	return false
}
