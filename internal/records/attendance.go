package records

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/model"
	"hostel-backend/internal/parse"
)

// AttendanceFilter narrows the admin listing. From and To are inclusive
// day keys.
type AttendanceFilter struct {
	AccountID uint
	From      string
	To        string
}

type Attendance struct {
	logs   *Settings[model.AttendanceLog]
	repo   *Repo[model.AttendanceLog]
	loc    *time.Location
	curfew int // minutes after midnight
	now    func() time.Time
}

func newAttendance(db *gorm.DB, loc *time.Location, curfew int) *Attendance {
	return &Attendance{
		logs:   NewSettings[model.AttendanceLog](db, "Attendance", []string{"account_id", "date"}, "check_in_at"),
		repo:   NewRepo[model.AttendanceLog](db, "Attendance"),
		loc:    loc,
		curfew: curfew,
		now:    time.Now,
	}
}

func (a *Attendance) key(account model.Account, day string) map[string]any {
	return map[string]any{"account_id": account.ID, "date": day}
}

// Today returns account's log for the current day, empty when none exists.
func (a *Attendance) Today(ctx context.Context, account model.Account) (*model.AttendanceLog, error) {
	day := a.now().In(a.loc).Format(parse.DayLayout)
	rec, err := a.logs.Get(ctx, a.key(account, day))
	if errors.Is(err, apperr.ErrNotFound) {
		return &model.AttendanceLog{AccountID: account.ID, Date: day}, nil
	}
	return rec, err
}

// CheckIn stamps today's check-in, flagging it when at or after curfew.
// Repeating it moves the stamp.
func (a *Attendance) CheckIn(ctx context.Context, account model.Account) (*model.AttendanceLog, error) {
	now := a.now()
	local := now.In(a.loc)
	rec := &model.AttendanceLog{
		AccountID:      account.ID,
		Date:           local.Format(parse.DayLayout),
		CheckInAt:      &now,
		CurfewBreached: local.Hour()*60+local.Minute() >= a.curfew,
	}
	return a.logs.Set(ctx, rec, a.key(account, rec.Date), "check_in_at", "curfew_breached")
}

// CheckOut stamps today's check-out.
func (a *Attendance) CheckOut(ctx context.Context, account model.Account) (*model.AttendanceLog, error) {
	now := a.now()
	rec := &model.AttendanceLog{
		AccountID:  account.ID,
		Date:       now.In(a.loc).Format(parse.DayLayout),
		CheckOutAt: &now,
	}
	return a.logs.Set(ctx, rec, a.key(account, rec.Date), "check_out_at")
}

// List returns logs newest day first.
func (a *Attendance) List(ctx context.Context, f AttendanceFilter) ([]model.AttendanceLog, error) {
	return a.repo.List(ctx,
		WhereIf(f.AccountID != 0, "account_id = ?", f.AccountID),
		WhereIf(f.From != "", "date >= ?", f.From),
		WhereIf(f.To != "", "date <= ?", f.To),
		OrderBy("date DESC"),
		OrderBy("id DESC"),
	)
}
