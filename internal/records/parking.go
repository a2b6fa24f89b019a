package records

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"gorm.io/gorm"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/model"
)

// VehicleInput registers a resident's vehicle.
type VehicleInput struct {
	Plate string `json:"plate"`
	Model string `json:"model"`
	Color string `json:"color"`
	Type  string `json:"type"`
}

// SlotInput creates a parking slot. Active defaults to true.
type SlotInput struct {
	Slot          string `json:"slot"`
	AllocatedToID *uint  `json:"allocatedTo"`
	VehiclePlate  string `json:"vehiclePlate"`
	Active        *bool  `json:"active"`
}

// SlotPatch changes the fields that are set.
type SlotPatch struct {
	AllocatedToID *uint   `json:"allocatedTo"`
	VehiclePlate  *string `json:"vehiclePlate"`
	Active        *bool   `json:"active"`
}

// BadgeInput issues an access badge. Active defaults to true.
type BadgeInput struct {
	AccountID uint   `json:"userId"`
	BadgeID   string `json:"badgeId"`
	Active    *bool  `json:"active"`
}

// BadgePatch changes the fields that are set.
type BadgePatch struct {
	BadgeID *string `json:"badgeId"`
	Active  *bool   `json:"active"`
}

type Parking struct {
	Vehicles *Repo[model.Vehicle]
	Slots    *Repo[model.ParkingSlot]
	Badges   *Repo[model.AccessBadge]
}

func newParking(db *gorm.DB) *Parking {
	return &Parking{
		Vehicles: NewRepo[model.Vehicle](db, "Vehicle"),
		Slots:    NewRepo[model.ParkingSlot](db, "Slot"),
		Badges:   NewRepo[model.AccessBadge](db, "Badge"),
	}
}

// NormalizePlate upper-cases a plate and strips its spacing.
func NormalizePlate(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

func (p *Parking) RegisterVehicle(ctx context.Context, owner model.Account, in VehicleInput) (*model.Vehicle, error) {
	plate := NormalizePlate(in.Plate)
	if plate == "" {
		return nil, apperr.Validation("plate required")
	}
	kind := in.Type
	if kind == "" {
		kind = "two_wheeler"
	}
	if !slices.Contains(model.VehicleTypes, kind) {
		return nil, apperr.Validation("invalid type %q", in.Type)
	}
	rec := &model.Vehicle{
		AccountID: owner.ID,
		Plate:     plate,
		Model:     strings.TrimSpace(in.Model),
		Color:     strings.TrimSpace(in.Color),
		Type:      kind,
	}
	if err := p.Vehicles.CreateUnique(ctx, rec, "plate", plate); err != nil {
		return nil, err
	}
	return rec, nil
}

func (p *Parking) CreateSlot(ctx context.Context, in SlotInput) (*model.ParkingSlot, error) {
	slot := strings.TrimSpace(in.Slot)
	if slot == "" {
		return nil, apperr.Validation("slot required")
	}
	rec := &model.ParkingSlot{
		Slot:          slot,
		AllocatedToID: in.AllocatedToID,
		VehiclePlate:  NormalizePlate(in.VehiclePlate),
		Active:        boolOr(in.Active, true),
	}
	if err := p.Slots.CreateUnique(ctx, rec, "slot", slot); err != nil {
		return nil, err
	}
	return rec, nil
}

func (p *Parking) UpdateSlot(ctx context.Context, id uint, patch SlotPatch) (*model.ParkingSlot, error) {
	if patch.VehiclePlate != nil {
		plate := NormalizePlate(*patch.VehiclePlate)
		patch.VehiclePlate = &plate
	}
	return p.Slots.Patch(ctx, id, patch)
}

func (p *Parking) IssueBadge(ctx context.Context, in BadgeInput) (*model.AccessBadge, error) {
	badgeID := strings.TrimSpace(in.BadgeID)
	if in.AccountID == 0 || badgeID == "" {
		return nil, apperr.Validation("userId and badgeId required")
	}
	n, err := p.Badges.Count(ctx, Where("account_id = ?", in.AccountID))
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, apperr.Conflict("Account already has a badge")
	}
	rec := &model.AccessBadge{AccountID: in.AccountID, BadgeID: badgeID, Active: boolOr(in.Active, true)}
	if err := p.Badges.CreateUnique(ctx, rec, "badge_id", badgeID); err != nil {
		return nil, err
	}
	return rec, nil
}

func (p *Parking) UpdateBadge(ctx context.Context, id uint, patch BadgePatch) (*model.AccessBadge, error) {
	if patch.BadgeID != nil {
		badgeID := strings.TrimSpace(*patch.BadgeID)
		if badgeID == "" {
			return nil, apperr.Validation("badgeId must not be empty")
		}
		n, err := p.Badges.Count(ctx, Where("badge_id = ? AND id <> ?", badgeID, id))
		if err != nil {
			return nil, fmt.Errorf("failed to check badge: %w", err)
		}
		if n > 0 {
			return nil, apperr.Conflict("Badge already exists")
		}
		patch.BadgeID = &badgeID
	}
	return p.Badges.Patch(ctx, id, patch)
}
