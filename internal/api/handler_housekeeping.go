package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/mw"
	"hostel-backend/internal/records"
)

func (h *Handler) ScheduleCleaning(c *gin.Context) {
	var req records.CleaningInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Housekeeping.Schedule(c.Request.Context(), mw.MustAccount(c), req)
	if err != nil {
		respondError(c, err, "Failed to create housekeeping log")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// CleaningLogs lists rounds newest first, filtered by ?status= and ?roomNumber=.
func (h *Handler) CleaningLogs(c *gin.Context) {
	room, ok := queryInt(c, "roomNumber")
	if !ok {
		return
	}
	status := c.Query("status")
	list, err := h.records.Housekeeping.Logs.List(c.Request.Context(),
		records.WhereIf(status != "", "status = ?", status),
		records.WhereIf(room != 0, "room_number = ?", room),
		records.Newest,
	)
	if err != nil {
		respondError(c, err, "Failed to fetch housekeeping logs")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ScheduleInspection(c *gin.Context) {
	var req records.InspectionInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Housekeeping.Inspect(c.Request.Context(), mw.MustAccount(c), req)
	if err != nil {
		respondError(c, err, "Failed to create inspection")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) RaiseDamage(c *gin.Context) {
	var req records.DamageInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Housekeeping.Charge(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create damage charge")
		return
	}
	c.JSON(http.StatusCreated, rec)
}
