package realtime

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/fasthttp/websocket"

	"hostel-backend/internal/model"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
)

// Authenticator resolves a bearer token to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Account, error)
}

// Server upgrades HTTP requests to websocket connections attached to a Hub.
type Server struct {
	hub      *Hub
	auth     Authenticator
	chats    ChatStore
	outbox   int
	upgrader websocket.Upgrader
	logger   *log.Logger
	now      func() time.Time
}

// NewServer creates a websocket endpoint. Browser connections are accepted
// only from allowedOrigins; requests without an Origin header are accepted.
func NewServer(hub *Hub, auth Authenticator, chats ChatStore, allowedOrigins []string, outbox int) *Server {
	return &Server{
		hub:    hub,
		auth:   auth,
		chats:  chats,
		outbox: outbox,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
		logger: log.New(os.Stdout, "realtime ", log.LstdFlags),
		now:    time.Now,
	}
}

func bearer(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	account, err := s.auth.Authenticate(r.Context(), bearer(r))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Unauthorized"}`))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("upgrade failed: %v", err)
		return
	}

	client := NewClient(*account, s.outbox)
	s.hub.Register(client)
	s.logger.Printf("client %s connected (account %d)", client.ID, account.ID)

	go s.writePump(conn, client)
	s.readPump(conn, client)
}

func (s *Server) readPump(conn *websocket.Conn, c *Client) {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		s.hub.Unregister(c)
		conn.Close()
		s.logger.Printf("client %s disconnected", c.ID)
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Printf("client %s read error: %v", c.ID, err)
			}
			return
		}
		var f Frame
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		s.handleFrame(ctx, c, f)
	}
}

func (s *Server) writePump(conn *websocket.Conn, c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
