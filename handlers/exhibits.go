package handlers

import (
	"kiosk/core"
	"kiosk/models"
	"kiosk/service"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListExhibits returns every exhibit in id order.
func (h *Handlers) ListExhibits(c *gin.Context) {
	store := h.svc.Exhibits
	if !store.Usable() {
		respondError(c, service.ErrStoreUnavailable)
		return
	}

	total := store.Count()
	if total < 0 {
		respondError(c, service.ErrStoreUnavailable)
		return
	}
	if total == 0 {
		c.JSON(http.StatusOK, gin.H{"total": 0, "items": []models.ExhibitRead{}})
		return
	}
	ids, err := store.FirstN(total)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(ids), "items": h.readAll(ids)})
}

// ExhibitRange returns the exhibits at 1-based positions from..to.
func (h *Handlers) ExhibitRange(c *gin.Context) {
	from, errFrom := strconv.Atoi(c.Query("from"))
	to, errTo := strconv.Atoi(c.Query("to"))
	if errFrom != nil || errTo != nil {
		respondError(c, core.NewInvalidRequestError("from and to must be integers"))
		return
	}

	ids, err := h.svc.Exhibits.IDsInRange(from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "ids": ids, "items": h.readAll(ids)})
}

// GetExhibit returns the dialog content and transforms of one exhibit.
func (h *Handlers) GetExhibit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.svc.Exhibits.Exhibit(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.app.ExhibitInfo(id))
}

func (h *Handlers) readAll(ids []int) []models.ExhibitRead {
	items := make([]models.ExhibitRead, 0, len(ids))
	for _, id := range ids {
		items = append(items, h.app.ExhibitInfo(id))
	}
	return items
}
