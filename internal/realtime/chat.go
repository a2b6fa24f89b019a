package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"hostel-backend/internal/model"
	"hostel-backend/internal/parse"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
	maxChatText         = 2000
)

// CanAccess reports whether an account may join or read room. Direct-message
// rooms are restricted to their two participants; other rooms are open.
func CanAccess(accountID uint, room string) bool {
	if !parse.IsDirectRoom(room) {
		return true
	}
	a, b, err := parse.ParseDirectRoom(room)
	if err != nil {
		return false
	}
	return accountID == a || accountID == b
}

// ChatLog persists chat messages.
type ChatLog struct {
	db *gorm.DB
}

func NewChatLog(db *gorm.DB) *ChatLog {
	return &ChatLog{db: db}
}

func (l *ChatLog) Save(ctx context.Context, msg *model.ChatMessage) error {
	if err := l.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	return nil
}

// History returns up to limit messages of room created before the given
// time, oldest first. hasMore is set when the page is full.
func (l *ChatLog) History(ctx context.Context, room string, limit int, before *time.Time) (items []model.ChatMessage, hasMore bool, err error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	q := l.db.WithContext(ctx).Where("room = ?", room)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&items).Error; err != nil {
		return nil, false, fmt.Errorf("failed to load chat history: %w", err)
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items, len(items) == limit, nil
}

// ChatStore is the persistence used by the websocket chat.
type ChatStore interface {
	Save(ctx context.Context, msg *model.ChatMessage) error
}

type roomPayload struct {
	Room string `json:"room"`
	Text string `json:"text"`
}

type chatMessage struct {
	ID     uint   `json:"id"`
	Room   string `json:"room"`
	Text   string `json:"text"`
	From   string `json:"from"`
	UserID uint   `json:"userId"`
	TS     int64  `json:"ts"`
}

type chatNotice struct {
	Room string `json:"room"`
	Text string `json:"text,omitempty"`
	From string `json:"from,omitempty"`
	TS   int64  `json:"ts"`
}

// decodeRoom accepts either a bare room name or an object with a room field.
func decodeRoom(data json.RawMessage) (roomPayload, error) {
	var p roomPayload
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		p.Room = name
	} else if err := json.Unmarshal(data, &p); err != nil {
		return p, err
	}
	p.Room = strings.TrimSpace(p.Room)
	return p, nil
}

// handleFrame applies one inbound frame from c.
func (s *Server) handleFrame(ctx context.Context, c *Client, f Frame) {
	switch f.Event {
	case "join", "chat:join":
		p, err := decodeRoom(f.Data)
		if err != nil || p.Room == "" {
			return
		}
		if !CanAccess(c.Account.ID, p.Room) {
			s.hub.Send(c, EventChatError, map[string]string{"message": "forbidden", "room": p.Room})
			return
		}
		s.hub.Join(c, p.Room)
		if f.Event == "chat:join" {
			s.hub.Send(c, EventChatSystem, chatNotice{Room: p.Room, Text: "Joined room", TS: s.now().UnixMilli()})
		}

	case "leave":
		if p, err := decodeRoom(f.Data); err == nil && p.Room != "" {
			s.hub.Leave(c, p.Room)
		}

	case "chat:send":
		p, err := decodeRoom(f.Data)
		text := strings.TrimSpace(p.Text)
		if err != nil || p.Room == "" || text == "" {
			return
		}
		if !CanAccess(c.Account.ID, p.Room) || len(text) > maxChatText {
			s.hub.Send(c, EventChatError, map[string]string{"message": "Failed to send message"})
			return
		}
		accountID := c.Account.ID
		msg := model.ChatMessage{Room: p.Room, Text: text, From: c.Account.Name, AccountID: &accountID}
		if err := s.chats.Save(ctx, &msg); err != nil {
			s.logger.Printf("chat: %v", err)
			s.hub.Send(c, EventChatError, map[string]string{"message": "Failed to send message"})
			return
		}
		s.hub.Emit(p.Room, EventChatMessage, chatMessage{
			ID:     msg.ID,
			Room:   msg.Room,
			Text:   msg.Text,
			From:   msg.From,
			UserID: accountID,
			TS:     msg.CreatedAt.UnixMilli(),
		})

	case "chat:typing":
		p, err := decodeRoom(f.Data)
		if err != nil || p.Room == "" || !CanAccess(c.Account.ID, p.Room) {
			return
		}
		s.hub.EmitOthers(c, p.Room, EventChatTyping, chatNotice{Room: p.Room, From: c.Account.Name, TS: s.now().UnixMilli()})
	}
}
