package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/medcompanion/internal/catalog"
	"github.com/mrlokans/medcompanion/internal/schedule"
)

// EmergencyContactResponse is an emergency contact with its dial URI.
type EmergencyContactResponse struct {
	catalog.EmergencyContact
	DialURI string `json:"dial_uri"`
}

// HomeResponse is the summary shown on the home screen.
type HomeResponse struct {
	Greeting      string              `json:"greeting"`
	Username      string              `json:"username"`
	Tip           string              `json:"tip"`
	MedicineCount int                 `json:"medicine_count"`
	DosesToday    schedule.DaySummary `json:"doses_today"`
}

type CatalogController struct {
	reader MedicineReader
	now    func() time.Time
}

func NewCatalogController(reader MedicineReader, now func() time.Time) *CatalogController {
	if now == nil {
		now = time.Now
	}
	return &CatalogController{reader: reader, now: now}
}

// Emergency lists the emergency numbers.
// GET /api/emergency
func (cc *CatalogController) Emergency(c *gin.Context) {
	contacts := catalog.EmergencyContacts()
	out := make([]EmergencyContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, EmergencyContactResponse{EmergencyContact: contact, DialURI: contact.DialURI()})
	}
	c.JSON(http.StatusOK, out)
}

// Dial returns the dial URI of one emergency number.
// GET /api/emergency/:number
func (cc *CatalogController) Dial(c *gin.Context) {
	contact, ok := catalog.FindEmergencyContact(c.Param("number"))
	if !ok {
		respondNotFound(c, "emergency number")
		return
	}
	c.JSON(http.StatusOK, EmergencyContactResponse{EmergencyContact: contact, DialURI: contact.DialURI()})
}

// News lists health news, optionally filtered by ?category=.
// GET /api/news
func (cc *CatalogController) News(c *gin.Context) {
	if category := c.Query("category"); category != "" {
		c.JSON(http.StatusOK, catalog.NewsByCategory(category))
		return
	}
	c.JSON(http.StatusOK, catalog.News())
}

// Home returns the greeting, tip and today's dose summary.
// GET /api/home
func (cc *CatalogController) Home(c *gin.Context) {
	user := currentAccount(c)
	list, err := cc.reader.Medicines(c.Request.Context(), user.ID)
	if err != nil {
		respondDomainError(c, err, "home")
		return
	}

	now := cc.now()
	c.JSON(http.StatusOK, HomeResponse{
		Greeting:      catalog.Greeting(now),
		Username:      user.Username,
		Tip:           catalog.DailyTip(),
		MedicineCount: len(list),
		DosesToday:    schedule.DosesToday(list, now),
	})
}
