package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/rooms"
	"hostel-backend/internal/store"
)

// ListRooms returns every room with its occupants.
func (h *Handler) ListRooms(c *gin.Context) {
	list, err := h.store.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch rooms")
		return
	}
	c.JSON(http.StatusOK, list)
}

// RoomSummary returns the display grid, padded to the configured total.
func (h *Handler) RoomSummary(c *gin.Context) {
	list, err := h.store.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch room summary")
		return
	}
	c.JSON(http.StatusOK, rooms.Summary(list, h.cfg.Rooms.TotalTarget, h.cfg.Rooms.HostelName))
}

// RoomStats returns occupancy counters.
func (h *Handler) RoomStats(c *gin.Context) {
	list, err := h.store.ListRooms(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch room stats")
		return
	}
	c.JSON(http.StatusOK, rooms.ComputeStats(list, h.cfg.Rooms.TotalTarget))
}

// SeedRooms creates the default rooms when fewer than the threshold exist.
func (h *Handler) SeedRooms(c *gin.Context) {
	ctx := c.Request.Context()
	rc := h.cfg.Rooms
	created, err := h.store.SeedRooms(ctx, store.SeedPlan{
		Threshold:  rc.SeedThreshold,
		Floors:     rc.SeedFloors,
		PerFloor:   rc.SeedPerFloor,
		Capacity:   rc.SeedCapacity,
		HostelName: rc.HostelName,
	})
	if err != nil {
		respondError(c, err, "Failed to seed rooms")
		return
	}
	total, err := h.store.CountRooms(ctx)
	if err != nil {
		respondError(c, err, "Failed to seed rooms")
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created, "total": total})
}
