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

// NoticeInput is a new notice.
type NoticeInput struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Audience string `json:"audience"`
	Pinned   bool   `json:"pinned"`
}

// NoticePatch changes the fields that are set.
type NoticePatch struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Audience *string `json:"audience"`
	Pinned   *bool   `json:"pinned"`
}

type Notices struct {
	*Repo[model.Notice]
	pub realtime.Publisher
}

func newNotices(db *gorm.DB, pub realtime.Publisher) *Notices {
	return &Notices{Repo: NewRepo[model.Notice](db, "Notice"), pub: pub}
}

// Post publishes a notice.
func (n *Notices) Post(ctx context.Context, author model.Account, in NoticeInput) (*model.Notice, error) {
	title, content := strings.TrimSpace(in.Title), strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, apperr.Validation("title and content required")
	}
	audience := in.Audience
	if audience == "" {
		audience = "all"
	}
	if !slices.Contains(model.NoticeAudiences, audience) {
		return nil, apperr.Validation("invalid audience %q", in.Audience)
	}

	id := author.ID
	rec := &model.Notice{Title: title, Content: content, Audience: audience, Pinned: in.Pinned, CreatedByID: &id}
	if err := n.Create(ctx, rec); err != nil {
		return nil, err
	}
	n.emit(EventNoticeNew, rec)
	return rec, nil
}

// Board lists notices pinned first, then newest. Students never see
// admin-only notices.
func (n *Notices) Board(ctx context.Context, viewer model.Account, audience string) ([]model.Notice, error) {
	return n.List(ctx,
		WhereIf(audience != "", "audience = ?", audience),
		WhereIf(viewer.Role != model.RoleAdmin, "audience IN ?", []string{"all", "students"}),
		OrderBy("pinned DESC"),
		Newest,
	)
}

func (n *Notices) Update(ctx context.Context, id uint, patch NoticePatch) (*model.Notice, error) {
	if patch.Audience != nil && !slices.Contains(model.NoticeAudiences, *patch.Audience) {
		return nil, apperr.Validation("invalid audience %q", *patch.Audience)
	}
	rec, err := n.Patch(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	n.emit(EventNoticeUpdated, rec)
	return rec, nil
}

func (n *Notices) Remove(ctx context.Context, id uint) error {
	if err := n.Delete(ctx, id); err != nil {
		return err
	}
	n.emit(EventNoticeDeleted, map[string]uint{"id": id})
	return nil
}

func (n *Notices) emit(event string, payload any) {
	if n.pub != nil {
		n.pub.Broadcast(event, payload)
	}
}
