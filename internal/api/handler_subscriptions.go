package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/model"
	"hostel-backend/internal/mw"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription creates or replaces the caller's browser push subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	sub := model.PushSubscription{
		Endpoint:  req.Endpoint,
		AccountID: mw.MustAccount(c).ID,
		P256DH:    req.P256DH,
		Auth:      req.Auth,
	}
	if err := h.subs.Save(c.Request.Context(), &sub); err != nil {
		respondError(c, err, "Failed to save subscription")
		return
	}
	c.Status(http.StatusCreated)
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the caller's subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.subs.Delete(c.Request.Context(), mw.MustAccount(c).ID, req.Endpoint); err != nil {
		respondError(c, err, "Failed to delete subscription")
		return
	}
	c.Status(http.StatusNoContent)
}

// rawQueryParam reads key from the raw query. Push endpoints are themselves
// URLs and are compared as the browser sent them, so a value that fails to
// unescape is used as is.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if v, ok := strings.CutPrefix(kv, key+"="); ok {
			if unescaped, err := url.QueryUnescape(v); err == nil {
				return unescaped, true
			}
			return v, true
		}
	}
	return "", false
}

// GetSubscription reports whether the endpoint is registered to the caller.
func (h *Handler) GetSubscription(c *gin.Context) {
	endpoint, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "endpoint required"})
		return
	}
	exists, err := h.subs.Exists(c.Request.Context(), mw.MustAccount(c).ID, endpoint)
	if err != nil {
		respondError(c, err, "Failed to fetch subscription")
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"message": "Subscription not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"endpoint": endpoint})
}
