package records

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/model"
	"hostel-backend/internal/realtime"
)

// VisitorInput is a resident's visit request.
type VisitorInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email" binding:"omitempty,email"`
	Purpose string `json:"purpose"`
	Notes   string `json:"notes"`
}

type Visitors struct {
	*Lifecycle[model.Visitor, *model.Visitor]
}

func newVisitors(db *gorm.DB) *Visitors {
	decide := func(v *model.Visitor, in ActionInput) error {
		id := in.Actor.ID
		v.PreApprovedByID = &id
		return nil
	}
	actions := map[string]Action[model.Visitor]{
		"approve": {From: []string{model.VisitorRequested}, To: model.VisitorApproved, Apply: decide},
		"deny":    {From: []string{model.VisitorRequested}, To: model.VisitorDenied, Apply: decide},
		"checkin": {
			From: []string{model.VisitorApproved}, To: model.VisitorCheckedIn,
			Apply: func(v *model.Visitor, in ActionInput) error {
				now := in.Now
				v.CheckInAt = &now
				return nil
			},
		},
		"checkout": {
			From: []string{model.VisitorCheckedIn}, To: model.VisitorCheckedOut,
			Apply: func(v *model.Visitor, in ActionInput) error {
				now := in.Now
				v.CheckOutAt = &now
				return nil
			},
		},
	}
	repo := NewRepo[model.Visitor](db, "Visitor")
	return &Visitors{NewLifecycle[model.Visitor](repo, model.VisitorRequested, actions, nil)}
}

// Register files a visit for resident.
func (v *Visitors) Register(ctx context.Context, resident model.Account, in VisitorInput) (*model.Visitor, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("name required")
	}
	purpose := strings.TrimSpace(in.Purpose)
	if purpose == "" {
		purpose = "other"
	}
	if !slices.Contains(model.VisitorPurposes, purpose) {
		return nil, apperr.Validation("invalid purpose %q", in.Purpose)
	}
	rec := &model.Visitor{
		Name:       name,
		Phone:      strings.TrimSpace(in.Phone),
		Email:      strings.TrimSpace(in.Email),
		Purpose:    purpose,
		ResidentID: resident.ID,
		Notes:      in.Notes,
	}
	if err := v.Submit(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// PackageInput is a parcel logged at the front desk.
type PackageInput struct {
	RecipientID uint   `json:"recipient"`
	Carrier     string `json:"carrier"`
	TrackingID  string `json:"trackingId"`
	Notes       string `json:"notes"`
}

type Packages struct {
	*Lifecycle[model.Package, *model.Package]
	push Notifier
}

func newPackages(db *gorm.DB, push Notifier) *Packages {
	actions := map[string]Action[model.Package]{
		"notify": {From: []string{model.PackageLogged}, To: model.PackageNotified},
		"pick": {
			From: []string{model.PackageLogged, model.PackageNotified}, To: model.PackagePicked,
			Apply: func(p *model.Package, in ActionInput) error {
				now := in.Now
				p.PickedUpAt = &now
				p.PickedBy = strings.TrimSpace(in.Note)
				if p.PickedBy == "" {
					p.PickedBy = in.Actor.Name
				}
				return nil
			},
		},
	}
	repo := NewRepo[model.Package](db, "Package")
	return &Packages{
		Lifecycle: NewLifecycle[model.Package](repo, model.PackageLogged, actions, nil),
		push:      push,
	}
}

// Log records a parcel and, when push is configured, tells the recipient.
func (p *Packages) Log(ctx context.Context, in PackageInput) (*model.Package, error) {
	if in.RecipientID == 0 {
		return nil, apperr.Validation("recipient required")
	}
	var recipient model.Account
	if err := p.db.WithContext(ctx).First(&recipient, in.RecipientID).Error; err != nil {
		return nil, apperr.FromDB(err, "Recipient")
	}

	rec := &model.Package{
		RecipientID: recipient.ID,
		Carrier:     strings.TrimSpace(in.Carrier),
		TrackingID:  strings.TrimSpace(in.TrackingID),
		LoggedAt:    p.now(),
		Notes:       in.Notes,
	}
	if err := p.Submit(ctx, rec); err != nil {
		return nil, err
	}
	if p.push == nil {
		return rec, nil
	}

	body := "A package is waiting at the front desk."
	if rec.Carrier != "" {
		body = fmt.Sprintf("A %s package is waiting at the front desk.", rec.Carrier)
	}
	p.push.Notify(recipient.ID, "Package arrived", body)
	return p.Act(ctx, rec.ID, "notify", ActionInput{})
}

// ContactInput is a message from the public contact form.
type ContactInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

type contactNotice struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

type Contacts struct {
	*Lifecycle[model.ContactMessage, *model.ContactMessage]
	pub realtime.Publisher
}

func newContacts(db *gorm.DB, pub realtime.Publisher) *Contacts {
	actions := map[string]Action[model.ContactMessage]{
		"read": {From: []string{model.ContactUnread}, To: model.ContactRead},
	}
	repo := NewRepo[model.ContactMessage](db, "Message")
	return &Contacts{
		Lifecycle: NewLifecycle[model.ContactMessage](repo, model.ContactUnread, actions, nil),
		pub:       pub,
	}
}

// Send stores a contact message. sender is nil for anonymous visitors.
// The broadcast carries only who wrote, not what.
func (c *Contacts) Send(ctx context.Context, in ContactInput, sender *model.Account) (*model.ContactMessage, error) {
	rec := &model.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.ToLower(strings.TrimSpace(in.Email)),
		Message: strings.TrimSpace(in.Message),
	}
	if rec.Name == "" || rec.Email == "" || rec.Message == "" {
		return nil, apperr.Validation("name, email and message required")
	}
	if sender != nil {
		id := sender.ID
		rec.AccountID = &id
	}
	if err := c.Submit(ctx, rec); err != nil {
		return nil, err
	}
	if c.pub != nil {
		c.pub.Broadcast(EventContactNew, contactNotice{
			ID: rec.ID, Name: rec.Name, Email: rec.Email, CreatedAt: rec.CreatedAt,
		})
	}
	return rec, nil
}

// Inbox pages through messages, newest first.
func (c *Contacts) Inbox(ctx context.Context, page, limit int, unreadOnly bool) (*Page[model.ContactMessage], error) {
	return c.Paginate(ctx, page, limit,
		WhereIf(unreadOnly, "status = ?", model.ContactUnread),
		Newest,
	)
}
