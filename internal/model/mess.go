package model

import "time"

// Meals is the menu for one day.
type Meals struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Dinner    string `json:"dinner"`
}

// Coupon is a mess discount valid until a date.
type Coupon struct {
	Code            string     `json:"code"`
	DiscountPercent float64    `json:"discountPercent"`
	ValidUntil      *time.Time `json:"validUntil,omitempty"`
}

// MealPlan is the menu for a day, keyed by the day.
type MealPlan struct {
	Base
	Date    string   `gorm:"uniqueIndex;size:10;not null" json:"date"`
	Meals   Meals    `gorm:"embedded;embeddedPrefix:meal_" json:"meals"`
	Coupons []Coupon `gorm:"serializer:json" json:"coupons"`
}

// MealRSVP is one resident's attendance intent for a day's meals.
type MealRSVP struct {
	Base
	AccountID uint   `gorm:"uniqueIndex:idx_rsvp_account_date;not null" json:"userId"`
	Date      string `gorm:"uniqueIndex:idx_rsvp_account_date;size:10;not null;index" json:"date"`
	Breakfast bool   `gorm:"not null" json:"breakfast"`
	Lunch     bool   `gorm:"not null" json:"lunch"`
	Dinner    bool   `gorm:"not null" json:"dinner"`
	Rebate    bool   `gorm:"not null" json:"rebate"`
}

// TableName keeps the acronym readable.
func (MealRSVP) TableName() string { return "meal_rsvps" }

// Headcount is the number of RSVPs per meal for a day.
type Headcount struct {
	Breakfast int64 `json:"breakfast"`
	Lunch     int64 `json:"lunch"`
	Dinner    int64 `json:"dinner"`
}
