package records

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/model"
)

// AssetInput is a new tagged asset.
type AssetInput struct {
	Tag              string     `json:"tag"`
	Name             string     `json:"name"`
	Category         string     `json:"category"`
	Location         string     `json:"location"`
	Status           string     `json:"status"`
	PurchaseDate     *time.Time `json:"purchaseDate"`
	WarrantyUntil    *time.Time `json:"warrantyUntil"`
	AssignedToRoom   string     `json:"assignedToRoom"`
	AssignedToUserID *uint      `json:"assignedToUser"`
}

// AssetPatch changes the fields that are set.
type AssetPatch struct {
	Name             *string    `json:"name"`
	Category         *string    `json:"category"`
	Location         *string    `json:"location"`
	Status           *string    `json:"status"`
	PurchaseDate     *time.Time `json:"purchaseDate"`
	WarrantyUntil    *time.Time `json:"warrantyUntil"`
	AssignedToRoom   *string    `json:"assignedToRoom"`
	AssignedToUserID *uint      `json:"assignedToUser"`
}

type Assets struct {
	*Repo[model.Asset]
}

func newAssets(db *gorm.DB) *Assets {
	return &Assets{NewRepo[model.Asset](db, "Asset")}
}

func (a *Assets) Add(ctx context.Context, in AssetInput) (*model.Asset, error) {
	tag, name := strings.TrimSpace(in.Tag), strings.TrimSpace(in.Name)
	if tag == "" || name == "" {
		return nil, apperr.Validation("tag and name required")
	}
	status := in.Status
	if status == "" {
		status = "in_store"
	}
	if !slices.Contains(model.AssetStatuses, status) {
		return nil, apperr.Validation("invalid status %q", in.Status)
	}
	rec := &model.Asset{
		Tag:              tag,
		Name:             name,
		Category:         in.Category,
		Location:         in.Location,
		PurchaseDate:     in.PurchaseDate,
		WarrantyUntil:    in.WarrantyUntil,
		AssignedToRoom:   in.AssignedToRoom,
		AssignedToUserID: in.AssignedToUserID,
	}
	rec.Status = status
	if err := a.CreateUnique(ctx, rec, "tag", tag); err != nil {
		return nil, err
	}
	return rec, nil
}

func (a *Assets) Update(ctx context.Context, id uint, patch AssetPatch) (*model.Asset, error) {
	if patch.Status != nil && !slices.Contains(model.AssetStatuses, *patch.Status) {
		return nil, apperr.Validation("invalid status %q", *patch.Status)
	}
	return a.Patch(ctx, id, patch)
}

// ConsumableInput is a new stocked item.
type ConsumableInput struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	Unit         string `json:"unit"`
	ReorderLevel int    `json:"reorderLevel"`
}

// IssueInput hands out qty units of a consumable.
type IssueInput struct {
	Qty      int    `json:"qty"`
	IssuedTo string `json:"issuedTo"`
	Purpose  string `json:"purpose"`
}

// Issued is the result of an issue: the ledger row and the item after it.
type Issued struct {
	Issue      model.ConsumableIssue `json:"issue"`
	Consumable model.Consumable      `json:"consumable"`
}

type Inventory struct {
	Consumables *Repo[model.Consumable]
	Issues      *Repo[model.ConsumableIssue]
	db          *gorm.DB
	now         func() time.Time
}

func newInventory(db *gorm.DB) *Inventory {
	return &Inventory{
		Consumables: NewRepo[model.Consumable](db, "Consumable"),
		Issues:      NewRepo[model.ConsumableIssue](db, "Issue"),
		db:          db,
		now:         time.Now,
	}
}

func (inv *Inventory) AddConsumable(ctx context.Context, in ConsumableInput) (*model.Consumable, error) {
	sku, name := strings.TrimSpace(in.SKU), strings.TrimSpace(in.Name)
	if sku == "" || name == "" {
		return nil, apperr.Validation("sku and name required")
	}
	if in.Stock < 0 || in.ReorderLevel < 0 {
		return nil, apperr.Validation("stock and reorderLevel must not be negative")
	}
	unit := in.Unit
	if unit == "" {
		unit = "pcs"
	}
	rec := &model.Consumable{SKU: sku, Name: name, Stock: in.Stock, Unit: unit, ReorderLevel: in.ReorderLevel}
	if err := inv.Consumables.CreateUnique(ctx, rec, "sku", sku); err != nil {
		return nil, err
	}
	return rec, nil
}

// Stock lists consumables by name.
func (inv *Inventory) Stock(ctx context.Context) ([]model.Consumable, error) {
	return inv.Consumables.List(ctx, OrderBy("name"))
}

// Issue decrements stock and records the issue in one transaction.
// Stock never goes negative.
func (inv *Inventory) Issue(ctx context.Context, id uint, in IssueInput) (*Issued, error) {
	issuedTo := strings.TrimSpace(in.IssuedTo)
	if in.Qty <= 0 || issuedTo == "" {
		return nil, apperr.Validation("qty and issuedTo required")
	}

	var out Issued
	err := inv.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := &out.Consumable
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(item, id).Error; err != nil {
			return apperr.FromDB(err, "Consumable")
		}
		if item.Stock < in.Qty {
			return apperr.Conflict("insufficient stock")
		}
		res := tx.Model(&model.Consumable{}).
			Where("id = ? AND stock >= ?", id, in.Qty).
			Update("stock", gorm.Expr("stock - ?", in.Qty))
		if res.Error != nil {
			return fmt.Errorf("failed to decrement stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("insufficient stock")
		}
		item.Stock -= in.Qty

		out.Issue = model.ConsumableIssue{
			ConsumableID: id,
			Qty:          in.Qty,
			IssuedTo:     issuedTo,
			Purpose:      in.Purpose,
			Date:         inv.now(),
		}
		return tx.Create(&out.Issue).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
