package records

import (
	"context"
	"slices"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/model"
	"hostel-backend/internal/realtime"
)

// stateful is satisfied by pointers to models embedding model.Base and
// model.Tracked.
type stateful[T any] interface {
	*T
	GetID() uint
	GetStatus() string
	SetStatus(string)
}

// ActionInput carries the caller's context into a transition.
type ActionInput struct {
	Actor    model.Account
	Now      time.Time
	Note     string
	Code     string
	Assignee *string
}

// Action is a named transition from any of From to To. Apply may stamp
// fields or refuse the transition; Event, when set, is broadcast with the
// updated record after commit.
type Action[T any] struct {
	From  []string
	To    string
	Apply func(rec *T, in ActionInput) error
	Event string
}

// Lifecycle is a Repo whose records move through statuses by named actions.
type Lifecycle[T any, P stateful[T]] struct {
	*Repo[T]
	initial string
	actions map[string]Action[T]
	pub     realtime.Publisher
	now     func() time.Time
}

// NewLifecycle creates a lifecycle whose records start in initial.
// pub may be nil.
func NewLifecycle[T any, P stateful[T]](repo *Repo[T], initial string, actions map[string]Action[T], pub realtime.Publisher) *Lifecycle[T, P] {
	return &Lifecycle[T, P]{
		Repo:    repo,
		initial: initial,
		actions: actions,
		pub:     pub,
		now:     time.Now,
	}
}

// Submit stores rec in the initial status.
func (l *Lifecycle[T, P]) Submit(ctx context.Context, rec *T) error {
	P(rec).SetStatus(l.initial)
	return l.Create(ctx, rec)
}

// Act applies a named action to the record with the given id.
func (l *Lifecycle[T, P]) Act(ctx context.Context, id uint, name string, in ActionInput) (*T, error) {
	action, ok := l.actions[name]
	if !ok {
		return nil, apperr.Validation("unknown action %q", name)
	}
	if in.Now.IsZero() {
		in.Now = l.now()
	}

	var rec T
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, id).Error; err != nil {
			return apperr.FromDB(err, l.name)
		}
		p := P(&rec)
		if current := p.GetStatus(); !slices.Contains(action.From, current) {
			return &apperr.Error{
				Kind:    apperr.KindConflict,
				Message: l.name + " is already " + current,
			}
		}
		if action.Apply != nil {
			if err := action.Apply(&rec, in); err != nil {
				return err
			}
		}
		p.SetStatus(action.To)
		return apperr.FromDB(tx.Omit(clause.Associations).Save(&rec).Error, l.name)
	})
	if err != nil {
		return nil, err
	}
	l.emit(action.Event, &rec)
	return &rec, nil
}

// ActionTo returns the action that leads to status.
func (l *Lifecycle[T, P]) ActionTo(status string) (string, bool) {
	for _, name := range l.Actions() {
		if l.actions[name].To == status {
			return name, true
		}
	}
	return "", false
}

// Actions returns the action names in a stable order.
func (l *Lifecycle[T, P]) Actions() []string {
	names := make([]string, 0, len(l.actions))
	for name := range l.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (l *Lifecycle[T, P]) emit(event string, rec *T) {
	if event != "" && l.pub != nil {
		l.pub.Broadcast(event, rec)
	}
}
