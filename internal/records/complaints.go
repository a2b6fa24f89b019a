package records

import (
	"context"
	"slices"
	"strings"

	"gorm.io/gorm"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/model"
	"hostel-backend/internal/realtime"
)

// ComplaintInput is a resident's complaint.
type ComplaintInput struct {
	Category    string   `json:"category"`
	Description string   `json:"description" binding:"required"`
	RoomNumber  *int     `json:"roomNumber"`
	Attachments []string `json:"attachments"`
}

type Complaints struct {
	*Lifecycle[model.Complaint, *model.Complaint]
}

type complaintPatch struct {
	Assignee *string
}

func newComplaints(db *gorm.DB, pub realtime.Publisher) *Complaints {
	assign := func(c *model.Complaint, in ActionInput) error {
		if in.Assignee != nil {
			c.Assignee = strings.TrimSpace(*in.Assignee)
		}
		return nil
	}
	actions := map[string]Action[model.Complaint]{
		"start": {
			From: []string{model.ComplaintOpen}, To: model.ComplaintInProgress,
			Apply: assign, Event: EventComplaintStatus,
		},
		"resolve": {
			From: []string{model.ComplaintOpen, model.ComplaintInProgress}, To: model.ComplaintResolved,
			Apply: assign, Event: EventComplaintStatus,
		},
		"reopen": {
			From: []string{model.ComplaintResolved}, To: model.ComplaintOpen,
			Apply: assign, Event: EventComplaintStatus,
		},
	}
	repo := NewRepo[model.Complaint](db, "Complaint")
	return &Complaints{NewLifecycle[model.Complaint](repo, model.ComplaintOpen, actions, pub)}
}

// File records a new open complaint.
func (c *Complaints) File(ctx context.Context, student model.Account, in ComplaintInput) (*model.Complaint, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, apperr.Validation("description required")
	}
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if category == "" {
		category = "other"
	}
	if !slices.Contains(model.ComplaintCategories, category) {
		return nil, apperr.Validation("invalid category %q", in.Category)
	}
	attachments := in.Attachments
	if attachments == nil {
		attachments = []string{}
	}

	rec := &model.Complaint{
		StudentID:   student.ID,
		Category:    category,
		Description: desc,
		RoomNumber:  in.RoomNumber,
		Attachments: attachments,
	}
	if err := c.Submit(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Update moves a complaint to status and/or reassigns it. Setting the
// current status again only changes the assignee.
func (c *Complaints) Update(ctx context.Context, id uint, status string, assignee *string, actor model.Account) (*model.Complaint, error) {
	if status == "" {
		if assignee == nil {
			return nil, apperr.Validation("status or assignee required")
		}
		return c.Patch(ctx, id, complaintPatch{Assignee: assignee})
	}

	action, ok := c.ActionTo(status)
	if !ok {
		return nil, apperr.Validation("invalid status %q", status)
	}
	current, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == status {
		if assignee == nil {
			return current, nil
		}
		return c.Patch(ctx, id, complaintPatch{Assignee: assignee})
	}
	return c.Act(ctx, id, action, ActionInput{Actor: actor, Assignee: assignee})
}
