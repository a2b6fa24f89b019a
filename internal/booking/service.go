// Package booking runs the booking request queue and the allocation workflow.
package booking

import (
	"context"
	"fmt"
	"log"
	"strings"

	"hostel-backend/config"
	"hostel-backend/internal/apperr"
	"hostel-backend/internal/model"
	"hostel-backend/internal/realtime"
	"hostel-backend/internal/store"
)

const maxRoommates = 8

// Notifier delivers a push message to an account's devices.
type Notifier interface {
	Notify(accountID uint, title, body string)
}

// SubmitInput is what a student sends when requesting a room.
type SubmitInput struct {
	DesiredRoomNumber   int                      `json:"desiredRoomNumber"`
	RoommateRollNumbers []string                 `json:"roommatesRollNumbers"`
	Preferences         model.BookingPreferences `json:"preferences"`
}

// Service coordinates the store with realtime and push notifications.
// Notifications are sent only after the database change has committed.
type Service struct {
	store  store.Store
	pub    realtime.Publisher
	push   Notifier
	strict bool
}

// NewService creates a booking service. push may be nil.
func NewService(s store.Store, pub realtime.Publisher, push Notifier, cfg config.BookingConfig) *Service {
	return &Service{store: s, pub: pub, push: push, strict: cfg.StrictRoommates}
}

// Submit queues a pending request. Room existence and capacity are checked
// at approval time.
func (s *Service) Submit(ctx context.Context, student model.Account, in SubmitInput) (*model.BookingRequest, error) {
	if in.DesiredRoomNumber <= 0 {
		return nil, apperr.Validation("desiredRoomNumber required")
	}
	roommates := cleanRollNumbers(in.RoommateRollNumbers)
	if len(roommates) > maxRoommates {
		return nil, apperr.Validation("at most %d roommates allowed", maxRoommates)
	}

	req := &model.BookingRequest{
		StudentID:           student.ID,
		DesiredRoomNumber:   in.DesiredRoomNumber,
		RoommateRollNumbers: roommates,
		Preferences:         in.Preferences,
	}
	if err := s.store.CreateBooking(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// ListMine returns the account's requests, newest first.
func (s *Service) ListMine(ctx context.Context, account model.Account) ([]model.BookingRequest, error) {
	return s.store.ListBookings(ctx, store.BookingFilter{StudentID: account.ID})
}

// ListAll returns every request with its requester, newest first.
func (s *Service) ListAll(ctx context.Context, status model.BookingStatus) ([]model.BookingRequest, error) {
	return s.store.ListBookings(ctx, store.BookingFilter{Status: status})
}

// Approve admits the requester and roommates into the desired room.
func (s *Service) Approve(ctx context.Context, id uint, admin model.Account) (*store.Approval, error) {
	approval, err := s.store.ApproveBooking(ctx, id, admin.ID, s.strict)
	if err != nil {
		return nil, err
	}
	if len(approval.Unresolved) > 0 {
		log.Printf("booking %d approved without unknown roommates %v", id, approval.Unresolved)
	}

	room := approval.Room
	s.pub.Broadcast(realtime.EventRoomsUpdate, roomChange(room))
	s.notify(approval.Request.StudentID, "Room booking approved",
		fmt.Sprintf("You have been allotted room %d.", room.Number))
	return approval, nil
}

// Reject closes a pending request with remarks.
func (s *Service) Reject(ctx context.Context, id uint, admin model.Account, remarks string) (*model.BookingRequest, error) {
	req, err := s.store.RejectBooking(ctx, id, admin.ID, strings.TrimSpace(remarks))
	if err != nil {
		return nil, err
	}
	s.pub.Broadcast(realtime.EventBookingUpdate, map[string]any{"id": req.ID, "status": req.Status})

	body := fmt.Sprintf("Your request for room %d was rejected.", req.DesiredRoomNumber)
	if req.Remarks != "" {
		body += " " + req.Remarks
	}
	s.notify(req.StudentID, "Room booking rejected", body)
	return req, nil
}

// Waitlist parks a pending request. Waitlisted requests are never promoted
// automatically and no event is emitted.
func (s *Service) Waitlist(ctx context.Context, id uint, admin model.Account) (*model.BookingRequest, error) {
	return s.store.WaitlistBooking(ctx, id, admin.ID)
}

func (s *Service) notify(accountID uint, title, body string) {
	if s.push != nil {
		s.push.Notify(accountID, title, body)
	}
}

func roomChange(room model.Room) map[string]any {
	return map[string]any{
		"roomNumber":     room.Number,
		"capacity":       room.Capacity,
		"occupantsCount": len(room.Occupants),
	}
}

func cleanRollNumbers(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}
