package records

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/model"
	"hostel-backend/internal/parse"
)

// CleaningInput schedules a cleaning round.
type CleaningInput struct {
	RoomNumber int                   `json:"roomNumber"`
	Checklist  []model.ChecklistItem `json:"checklist"`
	StaffName  string                `json:"staffName"`
	Remarks    string                `json:"remarks"`
}

// InspectionInput schedules a room inspection.
type InspectionInput struct {
	RoomNumber string                 `json:"roomNumber"`
	Date       string                 `json:"date"`
	Checklist  []model.InspectionItem `json:"checklist"`
	Remarks    string                 `json:"remarks"`
}

// DamageInput raises a damage charge.
type DamageInput struct {
	RoomNumber  string   `json:"roomNumber"`
	UserID      *uint    `json:"userId"`
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
	Notes       string   `json:"notes"`
}

// Housekeeping keeps cleaning rounds, inspections and the damage charges
// raised from them.
type Housekeeping struct {
	Logs        *Lifecycle[model.HousekeepingLog, *model.HousekeepingLog]
	Inspections *Lifecycle[model.InspectionLog, *model.InspectionLog]
	Damages     *Lifecycle[model.DamageCharge, *model.DamageCharge]
	db          *gorm.DB
	loc         *time.Location
	now         func() time.Time
}

func newHousekeeping(db *gorm.DB, loc *time.Location) *Housekeeping {
	logActions := map[string]Action[model.HousekeepingLog]{
		"start": {
			From: []string{model.HousekeepingScheduled}, To: model.HousekeepingInProgress,
			Apply: func(l *model.HousekeepingLog, in ActionInput) error {
				stampCleaning(l, in, false)
				return nil
			},
		},
		"complete": {
			From: []string{model.HousekeepingScheduled, model.HousekeepingInProgress}, To: model.HousekeepingCompleted,
			Apply: func(l *model.HousekeepingLog, in ActionInput) error {
				stampCleaning(l, in, true)
				return nil
			},
		},
		"miss": {
			From: []string{model.HousekeepingScheduled, model.HousekeepingInProgress}, To: model.HousekeepingMissed,
			Apply: func(l *model.HousekeepingLog, in ActionInput) error {
				stampCleaning(l, in, false)
				return nil
			},
		},
	}
	inspectionActions := map[string]Action[model.InspectionLog]{
		"done": {
			From: []string{model.InspectionScheduled, model.InspectionFollowUp}, To: model.InspectionDone,
			Apply: stampInspection,
		},
		"followup": {
			From: []string{model.InspectionScheduled}, To: model.InspectionFollowUp,
			Apply: stampInspection,
		},
	}
	settle := func(d *model.DamageCharge, in ActionInput) error {
		now := in.Now
		d.SettledAt = &now
		if in.Note != "" {
			d.Notes = in.Note
		}
		return nil
	}
	damageActions := map[string]Action[model.DamageCharge]{
		"bill":  {From: []string{model.DamagePending}, To: model.DamageBilled},
		"pay":   {From: []string{model.DamagePending, model.DamageBilled}, To: model.DamagePaid, Apply: settle},
		"waive": {From: []string{model.DamagePending, model.DamageBilled}, To: model.DamageWaived, Apply: settle},
	}
	return &Housekeeping{
		Logs: NewLifecycle[model.HousekeepingLog](NewRepo[model.HousekeepingLog](db, "Housekeeping log"),
			model.HousekeepingScheduled, logActions, nil),
		Inspections: NewLifecycle[model.InspectionLog](NewRepo[model.InspectionLog](db, "Inspection"),
			model.InspectionScheduled, inspectionActions, nil),
		Damages: NewLifecycle[model.DamageCharge](NewRepo[model.DamageCharge](db, "Damage charge"),
			model.DamagePending, damageActions, nil),
		db:  db,
		loc: loc,
		now: time.Now,
	}
}

// stampCleaning records who acted on a round. performedAt is set once the
// round is finished.
func stampCleaning(l *model.HousekeepingLog, in ActionInput, finished bool) {
	if in.Actor.Name != "" {
		l.StaffName = in.Actor.Name
	}
	if in.Note != "" {
		l.Remarks = in.Note
	}
	if finished {
		now := in.Now
		l.PerformedAt = &now
	}
}

func stampInspection(i *model.InspectionLog, in ActionInput) error {
	if in.Actor.Name != "" {
		i.Inspector = in.Actor.Name
	}
	if in.Note != "" {
		i.Remarks = in.Note
	}
	return nil
}

// Schedule books a cleaning round. The staff name defaults to the caller.
func (h *Housekeeping) Schedule(ctx context.Context, actor model.Account, in CleaningInput) (*model.HousekeepingLog, error) {
	if in.RoomNumber <= 0 {
		return nil, apperr.Validation("roomNumber required")
	}
	staff := strings.TrimSpace(in.StaffName)
	if staff == "" {
		staff = actor.Name
	}
	rec := &model.HousekeepingLog{
		RoomNumber: in.RoomNumber,
		Checklist:  nonNil(in.Checklist),
		StaffName:  staff,
		Remarks:    in.Remarks,
	}
	if err := h.Logs.Submit(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Inspect schedules an inspection with the caller as inspector.
func (h *Housekeeping) Inspect(ctx context.Context, actor model.Account, in InspectionInput) (*model.InspectionLog, error) {
	room := strings.TrimSpace(in.RoomNumber)
	if room == "" || strings.TrimSpace(in.Date) == "" {
		return nil, apperr.Validation("roomNumber and date required")
	}
	day, err := parse.Day(in.Date, h.now(), h.loc)
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	rec := &model.InspectionLog{
		RoomNumber: room,
		Date:       day,
		Checklist:  nonNil(in.Checklist),
		Inspector:  actor.Name,
		Remarks:    in.Remarks,
	}
	if err := h.Inspections.Submit(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Charge raises a pending damage charge, optionally against a resident.
func (h *Housekeeping) Charge(ctx context.Context, in DamageInput) (*model.DamageCharge, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" || in.Amount == nil {
		return nil, apperr.Validation("description and amount required")
	}
	if *in.Amount <= 0 {
		return nil, apperr.Validation("amount must be positive")
	}
	if in.UserID != nil {
		var acc model.Account
		if err := h.db.WithContext(ctx).Select("id").First(&acc, *in.UserID).Error; err != nil {
			return nil, apperr.FromDB(err, "User")
		}
	}
	rec := &model.DamageCharge{
		RoomNumber:  strings.TrimSpace(in.RoomNumber),
		AccountID:   in.UserID,
		Description: desc,
		Amount:      *in.Amount,
		Notes:       in.Notes,
	}
	if err := h.Damages.Submit(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// CleaningToday counts rounds completed and still scheduled that were
// touched on the day containing now.
func (h *Housekeeping) CleaningToday(ctx context.Context, now time.Time) (completed, scheduled int64, err error) {
	y, m, d := now.In(h.loc).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, h.loc)
	end := start.AddDate(0, 0, 1)
	// Compare in the zone gorm stamps updated_at with.
	today := Where("updated_at >= ? AND updated_at < ?", start.Local(), end.Local())

	if completed, err = h.Logs.Count(ctx, today, Where("status = ?", model.HousekeepingCompleted)); err != nil {
		return 0, 0, err
	}
	if scheduled, err = h.Logs.Count(ctx, today, Where("status = ?", model.HousekeepingScheduled)); err != nil {
		return 0, 0, err
	}
	return completed, scheduled, nil
}
