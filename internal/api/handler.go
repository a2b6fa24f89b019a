// Package api exposes the hostel backend over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"hostel-backend/config"
	"hostel-backend/internal/auth"
	"hostel-backend/internal/booking"
	"hostel-backend/internal/mw"
	"hostel-backend/internal/notification"
	"hostel-backend/internal/realtime"
	"hostel-backend/internal/records"
	"hostel-backend/internal/store"
)

// Deps are the services the API is built on.
type Deps struct {
	Config   *config.Config
	Store    store.Store
	Tokens   *auth.Tokens
	Auth     mw.Authenticator
	Bookings *booking.Service
	Records  *records.Records
	Chats    *realtime.ChatLog
	Hub      *realtime.Hub
	// Realtime serves the websocket endpoint.
	Realtime http.Handler
	// WebPush is nil when push is not configured.
	WebPush *webpush.Options
	// Limiter is built from Config.Server when nil.
	Limiter *mw.IPRateLimiter
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	cfg      *config.Config
	store    store.Store
	tokens   *auth.Tokens
	bookings *booking.Service
	records  *records.Records
	chats    *realtime.ChatLog
	subs     *notification.Subscriptions
	webpush  *webpush.Options
	loc      *time.Location
	now      func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		cfg:      d.Config,
		store:    d.Store,
		tokens:   d.Tokens,
		bookings: d.Bookings,
		records:  d.Records,
		chats:    d.Chats,
		subs:     notification.NewSubscriptions(d.Store.DB()),
		webpush:  d.WebPush,
		loc:      d.Records.Location(),
		now:      time.Now,
	}
}
