package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/model"
)

// ProfileInput replaces a resident's health profile.
type ProfileInput struct {
	BloodGroup        string                   `json:"bloodGroup"`
	Allergies         []string                 `json:"allergies"`
	Conditions        []string                 `json:"conditions"`
	EmergencyContacts []model.EmergencyContact `json:"emergencyContacts"`
}

// SickLeaveInput is a leave request.
type SickLeaveInput struct {
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Reason string    `json:"reason"`
}

// EmergencyInput logs a drill or incident.
type EmergencyInput struct {
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
}

// IsolationInput sets the state of an isolation room.
type IsolationInput struct {
	RoomNumber   string     `json:"roomNumber"`
	OccupiedByID *uint      `json:"occupiedBy"`
	From         *time.Time `json:"from"`
	To           *time.Time `json:"to"`
	Notes        string     `json:"notes"`
}

type Health struct {
	Profiles    *Settings[model.HealthProfile]
	SickLeaves  *Lifecycle[model.SickLeave, *model.SickLeave]
	Emergencies *Repo[model.EmergencyEvent]
	Isolation   *Settings[model.IsolationRoom]
	now         func() time.Time
}

func newHealth(db *gorm.DB) *Health {
	leaveActions := map[string]Action[model.SickLeave]{
		"approve": {From: []string{model.SickLeavePending}, To: model.SickLeaveApproved},
		"reject":  {From: []string{model.SickLeavePending}, To: model.SickLeaveRejected},
	}
	return &Health{
		Profiles: NewSettings[model.HealthProfile](db, "Health profile", []string{"account_id"},
			"blood_group", "allergies", "conditions", "emergency_contacts"),
		SickLeaves: NewLifecycle[model.SickLeave](NewRepo[model.SickLeave](db, "Sick leave"),
			model.SickLeavePending, leaveActions, nil),
		Emergencies: NewRepo[model.EmergencyEvent](db, "Emergency event"),
		Isolation: NewSettings[model.IsolationRoom](db, "Isolation room", []string{"room_number"},
			"occupied_by_id", "from", "to", "notes"),
		now: time.Now,
	}
}

// Profile returns account's profile, empty when none was saved.
func (h *Health) Profile(ctx context.Context, account model.Account) (*model.HealthProfile, error) {
	rec, err := h.Profiles.Get(ctx, map[string]any{"account_id": account.ID})
	if errors.Is(err, apperr.ErrNotFound) {
		return &model.HealthProfile{
			AccountID:         account.ID,
			Allergies:         []string{},
			Conditions:        []string{},
			EmergencyContacts: []model.EmergencyContact{},
		}, nil
	}
	return rec, err
}

func (h *Health) SaveProfile(ctx context.Context, account model.Account, in ProfileInput) (*model.HealthProfile, error) {
	rec := &model.HealthProfile{
		AccountID:         account.ID,
		BloodGroup:        strings.ToUpper(strings.TrimSpace(in.BloodGroup)),
		Allergies:         nonNil(in.Allergies),
		Conditions:        nonNil(in.Conditions),
		EmergencyContacts: nonNil(in.EmergencyContacts),
	}
	return h.Profiles.Set(ctx, rec, map[string]any{"account_id": account.ID})
}

func (h *Health) RequestSickLeave(ctx context.Context, account model.Account, in SickLeaveInput) (*model.SickLeave, error) {
	if in.From.IsZero() || in.To.IsZero() {
		return nil, apperr.Validation("from and to required")
	}
	if in.To.Before(in.From) {
		return nil, apperr.Validation("to must not be before from")
	}
	rec := &model.SickLeave{AccountID: account.ID, From: in.From, To: in.To, Reason: strings.TrimSpace(in.Reason)}
	if err := h.SickLeaves.Submit(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (h *Health) LogEmergency(ctx context.Context, in EmergencyInput) (*model.EmergencyEvent, error) {
	kind := strings.TrimSpace(in.Type)
	if kind == "" {
		return nil, apperr.Validation("type required")
	}
	date := h.now()
	if in.Date != nil {
		date = *in.Date
	}
	rec := &model.EmergencyEvent{Type: kind, Description: in.Description, Date: date}
	if err := h.Emergencies.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// EmergencyLog lists events, most recent first.
func (h *Health) EmergencyLog(ctx context.Context) ([]model.EmergencyEvent, error) {
	return h.Emergencies.List(ctx, OrderBy("date DESC"), OrderBy("id DESC"))
}

func (h *Health) SetIsolation(ctx context.Context, in IsolationInput) (*model.IsolationRoom, error) {
	room := strings.TrimSpace(in.RoomNumber)
	if room == "" {
		return nil, apperr.Validation("roomNumber required")
	}
	rec := &model.IsolationRoom{
		RoomNumber:   room,
		OccupiedByID: in.OccupiedByID,
		From:         in.From,
		To:           in.To,
		Notes:        in.Notes,
	}
	return h.Isolation.Set(ctx, rec, map[string]any{"room_number": room})
}

func (h *Health) IsolationRooms(ctx context.Context) ([]model.IsolationRoom, error) {
	return h.Isolation.List(ctx, OrderBy("room_number"))
}

func nonNil[S ~[]E, E any](s S) S {
	if s == nil {
		return S{}
	}
	return s
}
