package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/model"
)

// GatePassInput is a resident's request to leave.
type GatePassInput struct {
	Reason string    `json:"reason"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Notes  string    `json:"notes"`
}

type GatePasses struct {
	*Lifecycle[model.GatePass, *model.GatePass]
}

func newGatePasses(db *gorm.DB) *GatePasses {
	actions := map[string]Action[model.GatePass]{
		"approve": {
			From: []string{model.GatePassRequested}, To: model.GatePassApproved,
			Apply: func(g *model.GatePass, _ ActionInput) error {
				g.Code = uuid.NewString()
				return nil
			},
		},
		"deny": {From: []string{model.GatePassRequested}, To: model.GatePassDenied},
		"verify": {
			From: []string{model.GatePassApproved}, To: model.GatePassUsed,
			Apply: verifyGatePass,
		},
	}
	repo := NewRepo[model.GatePass](db, "Gate pass")
	return &GatePasses{NewLifecycle[model.GatePass](repo, model.GatePassRequested, actions, nil)}
}

func verifyGatePass(g *model.GatePass, in ActionInput) error {
	if in.Code != "" && in.Code != g.Code {
		return apperr.Validation("Invalid gate pass code")
	}
	if in.Now.After(g.To) {
		return apperr.Conflict("Gate pass expired")
	}
	now := in.Now
	g.VerifiedAt = &now
	return nil
}

// Request files a gate pass for account.
func (g *GatePasses) Request(ctx context.Context, account model.Account, in GatePassInput) (*model.GatePass, error) {
	reason := strings.TrimSpace(in.Reason)
	if reason == "" || in.From.IsZero() || in.To.IsZero() {
		return nil, apperr.Validation("reason, from and to required")
	}
	if !in.To.After(in.From) {
		return nil, apperr.Validation("to must be after from")
	}
	rec := &model.GatePass{
		AccountID: account.ID,
		Reason:    reason,
		From:      in.From,
		To:        in.To,
		Notes:     in.Notes,
	}
	if err := g.Submit(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// QRPayload is the text encoded in a gate pass QR code.
func QRPayload(g *model.GatePass) string {
	return fmt.Sprintf("gatepass:%d:%s", g.ID, g.Code)
}

// QR renders the approved pass as a PNG for its holder or an admin.
func (g *GatePasses) QR(ctx context.Context, id uint, viewer model.Account) ([]byte, error) {
	pass, err := g.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if viewer.Role != model.RoleAdmin && pass.AccountID != viewer.ID {
		return nil, apperr.Forbidden("Forbidden")
	}
	if pass.Status != model.GatePassApproved || pass.Code == "" {
		return nil, apperr.Conflict("Gate pass is not approved")
	}
	png, err := qrcode.Encode(QRPayload(pass), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to render gate pass qr: %w", err)
	}
	return png, nil
}

// ExpireOverdue marks requested or approved passes whose window ended
// before now as expired and returns how many changed.
func (g *GatePasses) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := g.db.WithContext(ctx).Model(&model.GatePass{}).
		Where("status IN ?", []string{model.GatePassRequested, model.GatePassApproved}).
		Where(clause.Lt{Column: "to", Value: now}).
		Updates(map[string]any{"status": model.GatePassExpired, "updated_at": now})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to expire gate passes: %w", res.Error)
	}
	return res.RowsAffected, nil
}
