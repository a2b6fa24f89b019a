package records

import (
	"context"
	"fmt"
	"math"

	"hostel-backend/internal/model"
	"hostel-backend/internal/parse"
)

// Occupancy is seats held against total capacity.
type Occupancy struct {
	TotalCapacity int64   `json:"totalCapacity"`
	TotalOccupied int64   `json:"totalOccupied"`
	Rate          float64 `json:"rate"`
}

// Report is the admin dashboard summary.
type Report struct {
	Occupancy  Occupancy `json:"occupancy"`
	Complaints struct {
		Unresolved int64 `json:"unresolved"`
	} `json:"complaints"`
	Mess struct {
		Today model.Headcount `json:"today"`
	} `json:"mess"`
	Housekeeping struct {
		CompletedToday int64 `json:"completedToday"`
		ScheduledToday int64 `json:"scheduledToday"`
	} `json:"housekeeping"`
}

// Analytics summarises occupancy, open complaints, today's mess headcount
// and today's cleaning rounds.
func (r *Records) Analytics(ctx context.Context) (*Report, error) {
	var rep Report
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Room{}).Select("COALESCE(SUM(capacity), 0)").Scan(&rep.Occupancy.TotalCapacity).Error; err != nil {
		return nil, fmt.Errorf("failed to sum capacity: %w", err)
	}
	if err := db.Model(&model.RoomOccupant{}).Count(&rep.Occupancy.TotalOccupied).Error; err != nil {
		return nil, fmt.Errorf("failed to count occupants: %w", err)
	}
	if rep.Occupancy.TotalCapacity > 0 {
		rate := float64(rep.Occupancy.TotalOccupied) / float64(rep.Occupancy.TotalCapacity) * 100
		rep.Occupancy.Rate = math.Round(rate*100) / 100
	}

	unresolved, err := r.Complaints.Count(ctx, Where("status <> ?", model.ComplaintResolved))
	if err != nil {
		return nil, err
	}
	rep.Complaints.Unresolved = unresolved

	today := r.now().In(r.loc).Format(parse.DayLayout)
	if rep.Mess.Today, err = r.Mess.Headcount(ctx, today); err != nil {
		return nil, err
	}
	hk := &rep.Housekeeping
	if hk.CompletedToday, hk.ScheduledToday, err = r.Housekeeping.CleaningToday(ctx, r.now()); err != nil {
		return nil, err
	}
	return &rep, nil
}
