package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/booking"
	"hostel-backend/internal/model"
	"hostel-backend/internal/mw"
)

type rejectRequest struct {
	Remarks string `json:"remarks"`
}

// SubmitBooking queues a room request for the signed-in student.
func (h *Handler) SubmitBooking(c *gin.Context) {
	var req booking.SubmitInput
	if !bindJSON(c, &req) {
		return
	}
	created, err := h.bookings.Submit(c.Request.Context(), mw.MustAccount(c), req)
	if err != nil {
		respondError(c, err, "Failed to submit booking")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) MyBookings(c *gin.Context) {
	list, err := h.bookings.ListMine(c.Request.Context(), mw.MustAccount(c))
	if err != nil {
		respondError(c, err, "Failed to fetch bookings")
		return
	}
	c.JSON(http.StatusOK, list)
}

// AllBookings lists every request, optionally filtered by ?status=.
func (h *Handler) AllBookings(c *gin.Context) {
	status := model.BookingStatus(c.Query("status"))
	if status != "" && status != model.BookingPending && !status.Terminal() {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid status"})
		return
	}
	list, err := h.bookings.ListAll(c.Request.Context(), status)
	if err != nil {
		respondError(c, err, "Failed to fetch bookings")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) ApproveBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	approval, err := h.bookings.Approve(c.Request.Context(), id, mw.MustAccount(c))
	if err != nil {
		respondError(c, err, "Failed to approve booking")
		return
	}
	c.JSON(http.StatusOK, approval)
}

func (h *Handler) RejectBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req rejectRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	rejected, err := h.bookings.Reject(c.Request.Context(), id, mw.MustAccount(c), req.Remarks)
	if err != nil {
		respondError(c, err, "Failed to reject booking")
		return
	}
	c.JSON(http.StatusOK, rejected)
}

func (h *Handler) WaitlistBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	waitlisted, err := h.bookings.Waitlist(c.Request.Context(), id, mw.MustAccount(c))
	if err != nil {
		respondError(c, err, "Failed to waitlist booking")
		return
	}
	c.JSON(http.StatusOK, waitlisted)
}
