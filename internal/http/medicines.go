package http

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/medcompanion/internal/entities"
)

// MedicineRequest is the body of POST and PUT /api/medicines.
type MedicineRequest struct {
	Name      string `json:"name" binding:"required,notblank"`
	Dosage    string `json:"dosage" binding:"required,notblank"`
	Frequency string `json:"frequency" binding:"required,notblank"`
	Time      string `json:"time" binding:"required,notblank"`
}

type MedicinesController struct {
	session SessionState
	reader  MedicineReader
}

func NewMedicinesController(s SessionState, reader MedicineReader) *MedicinesController {
	return &MedicinesController{session: s, reader: reader}
}

// List returns the committed medicines of the logged-in account.
// GET /api/medicines
func (mc *MedicinesController) List(c *gin.Context) {
	user := currentAccount(c)
	list, err := mc.reader.Medicines(c.Request.Context(), user.ID)
	if err != nil {
		respondDomainError(c, err, "list medicines")
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get returns one medicine of the logged-in account.
// GET /api/medicines/:id
func (mc *MedicinesController) Get(c *gin.Context) {
	medicine, ok := mc.owned(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, medicine)
}

// Create adds a medicine for the logged-in account.
// POST /api/medicines
func (mc *MedicinesController) Create(c *gin.Context) {
	var req MedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	medicine, err := mc.session.AddMedicine(c.Request.Context(), req.Name, req.Dosage, req.Frequency, req.Time)
	if err != nil {
		respondDomainError(c, err, "add medicine")
		return
	}
	respondCreated(c, medicine)
}

// Update replaces the fields of a medicine owned by the logged-in account.
// PUT /api/medicines/:id
func (mc *MedicinesController) Update(c *gin.Context) {
	medicine, ok := mc.owned(c)
	if !ok {
		return
	}

	var req MedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	medicine.Name = req.Name
	medicine.Dosage = req.Dosage
	medicine.Frequency = req.Frequency
	medicine.Time = req.Time

	if err := mc.session.UpdateMedicine(c.Request.Context(), &medicine); err != nil {
		respondDomainError(c, err, "update medicine")
		return
	}
	c.JSON(http.StatusOK, medicine)
}

// Delete removes a medicine owned by the logged-in account.
// DELETE /api/medicines/:id
func (mc *MedicinesController) Delete(c *gin.Context) {
	medicine, ok := mc.owned(c)
	if !ok {
		return
	}

	if err := mc.session.DeleteMedicine(c.Request.Context(), medicine); err != nil {
		respondDomainError(c, err, "delete medicine")
		return
	}
	respondSuccess(c, "medicine deleted")
}

// Stream pushes the live medicine list as server-sent events. The current
// list is sent first, then the list after every change, until the client
// disconnects or the session logs out.
// GET /api/medicines/stream
func (mc *MedicinesController) Stream(c *gin.Context) {
	user := currentAccount(c)

	lists, cancelLists := mc.session.Medicines().Subscribe()
	defer cancelLists()
	accounts, cancelAccounts := mc.session.Account().Subscribe()
	defer cancelAccounts()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case list, ok := <-lists:
			if !ok {
				return false
			}
			c.SSEvent("medicines", ownedBy(list, user.ID))
			return true
		case account, ok := <-accounts:
			if !ok || account == nil || account.ID != user.ID {
				c.SSEvent("logout", gin.H{"state": "logged_out"})
				return false
			}
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// owned looks the :id medicine up among the logged-in account's entries.
// Entries of other accounts are reported as not found.
func (mc *MedicinesController) owned(c *gin.Context) (entities.Medicine, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return entities.Medicine{}, false
	}

	user := currentAccount(c)
	list, err := mc.reader.Medicines(c.Request.Context(), user.ID)
	if err != nil {
		respondDomainError(c, err, "find medicine")
		return entities.Medicine{}, false
	}
	for _, m := range list {
		if m.ID == id {
			return m, true
		}
	}
	respondNotFound(c, "medicine")
	return entities.Medicine{}, false
}

// ownedBy keeps the entries of userID. The stream may start while the
// session is switching accounts.
func ownedBy(list []entities.Medicine, userID uint) []entities.Medicine {
	out := make([]entities.Medicine, 0, len(list))
	for _, m := range list {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out
}
