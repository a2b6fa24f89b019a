package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Push notifications are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.webpush.VAPIDPublicKey})
}

// Healthz reports liveness after pinging the database.
func (h *Handler) Healthz(c *gin.Context) {
	sqlDB, err := h.store.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		respondError(c, err, "Database unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
