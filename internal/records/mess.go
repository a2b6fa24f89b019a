package records

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/model"
)

// PlanInput sets the menu for a day.
type PlanInput struct {
	Meals   model.Meals    `json:"meals"`
	Coupons []model.Coupon `json:"coupons"`
}

// RSVPInput is a resident's meal intent; unset meals default to attending
// and rebate defaults to false.
type RSVPInput struct {
	Breakfast *bool `json:"breakfast"`
	Lunch     *bool `json:"lunch"`
	Dinner    *bool `json:"dinner"`
	Rebate    *bool `json:"rebate"`
}

type Mess struct {
	Plans *Settings[model.MealPlan]
	RSVPs *Settings[model.MealRSVP]
	db    *gorm.DB
}

func newMess(db *gorm.DB) *Mess {
	return &Mess{
		Plans: NewSettings[model.MealPlan](db, "Meal plan", []string{"date"},
			"meal_breakfast", "meal_lunch", "meal_dinner", "coupons"),
		RSVPs: NewSettings[model.MealRSVP](db, "RSVP", []string{"account_id", "date"},
			"breakfast", "lunch", "dinner", "rebate"),
		db: db,
	}
}

// Plan returns the menu for day, empty when none was set.
func (m *Mess) Plan(ctx context.Context, day string) (*model.MealPlan, error) {
	rec, err := m.Plans.Get(ctx, map[string]any{"date": day})
	if errors.Is(err, apperr.ErrNotFound) {
		return &model.MealPlan{Date: day, Coupons: []model.Coupon{}}, nil
	}
	return rec, err
}

func (m *Mess) SetPlan(ctx context.Context, day string, in PlanInput) (*model.MealPlan, error) {
	rec := &model.MealPlan{Date: day, Meals: in.Meals, Coupons: nonNil(in.Coupons)}
	return m.Plans.Set(ctx, rec, map[string]any{"date": day})
}

// MyRSVP returns account's RSVP for day, attending every meal when none was set.
func (m *Mess) MyRSVP(ctx context.Context, account model.Account, day string) (*model.MealRSVP, error) {
	rec, err := m.RSVPs.Get(ctx, map[string]any{"account_id": account.ID, "date": day})
	if errors.Is(err, apperr.ErrNotFound) {
		return &model.MealRSVP{AccountID: account.ID, Date: day, Breakfast: true, Lunch: true, Dinner: true}, nil
	}
	return rec, err
}

func (m *Mess) SetRSVP(ctx context.Context, account model.Account, day string, in RSVPInput) (*model.MealRSVP, error) {
	rec := &model.MealRSVP{
		AccountID: account.ID,
		Date:      day,
		Breakfast: boolOr(in.Breakfast, true),
		Lunch:     boolOr(in.Lunch, true),
		Dinner:    boolOr(in.Dinner, true),
		Rebate:    boolOr(in.Rebate, false),
	}
	return m.RSVPs.Set(ctx, rec, map[string]any{"account_id": account.ID, "date": day})
}

// Headcount counts RSVPs per meal for day.
func (m *Mess) Headcount(ctx context.Context, day string) (model.Headcount, error) {
	var hc model.Headcount
	for column, dst := range map[string]*int64{
		"breakfast": &hc.Breakfast,
		"lunch":     &hc.Lunch,
		"dinner":    &hc.Dinner,
	} {
		err := m.db.WithContext(ctx).Model(&model.MealRSVP{}).
			Where("date = ?", day).
			Where(column+" = ?", true).
			Count(dst).Error
		if err != nil {
			return model.Headcount{}, fmt.Errorf("failed to count %s: %w", column, err)
		}
	}
	return hc, nil
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
