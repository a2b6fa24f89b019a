package internal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-backend/config"
	"hostel-backend/internal/api"
	"hostel-backend/internal/auth"
	"hostel-backend/internal/booking"
	"hostel-backend/internal/db"
	"hostel-backend/internal/model"
	"hostel-backend/internal/parse"
	"hostel-backend/internal/realtime"
	"hostel-backend/internal/records"
	"hostel-backend/internal/store"
)

type server struct {
	t    *testing.T
	url  string
	http *http.Client
	hub  *realtime.Hub
}

func startServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Auth.AllowAdminSignup = true

	gormDB, err := db.Init(&config.DatabaseConfig{DSN: db.MemoryDSN(t.Name())})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})

	s := store.NewGormStore(gormDB)
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authn := auth.NewAuthenticator(tokens, s)
	hub := realtime.NewHub()
	chats := realtime.NewChatLog(gormDB)

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		Store:    s,
		Tokens:   tokens,
		Auth:     authn,
		Bookings: booking.NewService(s, hub, nil, cfg.Booking),
		Records:  records.New(gormDB, hub, records.Options{Location: time.UTC}),
		Chats:    chats,
		Hub:      hub,
		Realtime: realtime.NewServer(hub, authn, chats, cfg.Server.AllowedOrigins, cfg.Realtime.OutboxSize),
	})
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return &server{t: t, url: ts.URL, http: ts.Client(), hub: hub}
}

func (s *server) call(method, path, token string, body any, out any) int {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.url+path, &buf)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.http.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type session struct {
	Token string        `json:"token"`
	User  model.Account `json:"user"`
}

func (s *server) register(name, roll, role string) session {
	s.t.Helper()
	var sess session
	code := s.call(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": name + "@hostel.test", "password": "secret123", "rollNumber": roll, "role": role,
	}, &sess)
	require.Equal(s.t, http.StatusCreated, code)
	return sess
}

func (s *server) dial(token string) *websocket.Conn {
	s.t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(s.url, "http")+"/ws?token="+token, nil)
	require.NoError(s.t, err)
	s.t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event string, data any) {
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(realtime.Frame{Event: event, Data: raw}))
}

// next reads frames until one named event arrives.
func next(t *testing.T, conn *websocket.Conn, event string) map[string]any {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var f realtime.Frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Event != event {
			continue
		}
		var data map[string]any
		if len(f.Data) > 0 {
			require.NoError(t, json.Unmarshal(f.Data, &data))
		}
		return data
	}
}

// TestAllocationLifecycle drives a booking from seeding to approval over
// HTTP and checks that connected clients see the room change.
func TestAllocationLifecycle(t *testing.T) {
	s := startServer(t)

	student := s.register("asha", "CS01", "")
	roommate := s.register("bala", "CS02", "")
	admin := s.register("warden", "", "admin")

	var seeded map[string]int
	require.Equal(t, http.StatusOK, s.call(http.MethodPost, "/api/rooms/seed", admin.Token, nil, &seeded))
	require.Positive(t, seeded["created"])

	// A completed join proves the hub has registered the client.
	watcher := s.dial(roommate.Token)
	send(t, watcher, "chat:join", map[string]string{"room": "general"})
	next(t, watcher, realtime.EventChatSystem)

	var req model.BookingRequest
	code := s.call(http.MethodPost, "/api/booking", student.Token, map[string]any{
		"desiredRoomNumber": 101, "roommatesRollNumbers": []string{"CS02"},
	}, &req)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, model.BookingPending, req.Status)

	approve := "/api/booking/" + strconv.FormatUint(uint64(req.ID), 10) + "/approve"
	assert.Equal(t, http.StatusForbidden, s.call(http.MethodPost, approve, student.Token, nil, nil))

	var approval store.Approval
	require.Equal(t, http.StatusOK, s.call(http.MethodPost, approve, admin.Token, nil, &approval))
	assert.Len(t, approval.Admitted, 2)

	change := next(t, watcher, realtime.EventRoomsUpdate)
	assert.EqualValues(t, 101, change["roomNumber"])
	assert.EqualValues(t, 2, change["occupantsCount"])

	var stats struct {
		BookedRooms      int `json:"bookedRooms"`
		FullyBookedRooms int `json:"fullyBookedRooms"`
	}
	require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/rooms/stats", "", nil, &stats))
	assert.Equal(t, 1, stats.BookedRooms)
	assert.Equal(t, 1, stats.FullyBookedRooms)

	assert.Equal(t, http.StatusConflict, s.call(http.MethodPost, approve, admin.Token, nil, nil))

	t.Run("roommates chat in a private room", func(t *testing.T) {
		room := parse.DirectRoom(student.User.ID, roommate.User.ID)
		conn := s.dial(student.Token)
		send(t, conn, "chat:join", map[string]string{"room": room})
		next(t, conn, realtime.EventChatSystem)
		send(t, conn, "chat:send", map[string]string{"room": room, "text": "room 101!"})
		msg := next(t, conn, realtime.EventChatMessage)
		assert.Equal(t, "room 101!", msg["text"])

		var history struct {
			Items []model.ChatMessage `json:"items"`
		}
		require.Equal(t, http.StatusOK, s.call(http.MethodGet, "/api/chat/history?room="+room, roommate.Token, nil, &history))
		require.Len(t, history.Items, 1)
		assert.Equal(t, "room 101!", history.Items[0].Text)

		assert.Equal(t, http.StatusForbidden, s.call(http.MethodGet, "/api/chat/history?room="+room, admin.Token, nil, nil))
	})
}

func TestHubCloseDisconnectsSockets(t *testing.T) {
	s := startServer(t)
	student := s.register("asha", "CS01", "")

	conn := s.dial(student.Token)
	send(t, conn, "chat:join", map[string]string{"room": "general"})
	next(t, conn, realtime.EventChatSystem)

	assert.Equal(t, 1, s.hub.Close())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var err error
	for err == nil {
		_, _, err = conn.ReadMessage()
	}
	var closeErr *websocket.CloseError
	assert.ErrorAs(t, err, &closeErr)
	assert.Zero(t, s.hub.Clients())
}
