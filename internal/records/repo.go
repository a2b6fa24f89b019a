// Package records implements the hostel's record keepers on three generic
// shapes: plain CRUD, status lifecycles driven by named actions, and
// settings upserted by a natural key.
package records

import (
	"context"
	"fmt"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-backend/internal/apperr"
)

// Scope narrows or orders a query.
type Scope = func(*gorm.DB) *gorm.DB

// Where filters with a SQL condition.
func Where(query string, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

// WhereIf applies Where only when ok is true.
func WhereIf(ok bool, query string, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if !ok {
			return db
		}
		return db.Where(query, args...)
	}
}

// OrderBy orders by a column expression.
func OrderBy(expr string) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Order(expr) }
}

// Newest orders by creation, newest first.
func Newest(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// Preload loads an association.
func Preload(name string) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Preload(name) }
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Repo is CRUD over one model.
type Repo[T any] struct {
	db   *gorm.DB
	name string
}

// NewRepo creates a repo; name is used in error messages ("Notice not found").
func NewRepo[T any](db *gorm.DB, name string) *Repo[T] {
	return &Repo[T]{db: db, name: name}
}

func (r *Repo[T]) Name() string { return r.name }

func (r *Repo[T]) Create(ctx context.Context, rec *T) error {
	return apperr.FromDB(r.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error, r.name)
}

// CreateUnique creates rec unless a row already has value in column.
func (r *Repo[T]) CreateUnique(ctx context.Context, rec *T, column string, value any) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(new(T)).Where(clause.Eq{Column: column, Value: value}).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check %s: %w", column, err)
		}
		if n > 0 {
			return apperr.Conflict("%s already exists", r.name)
		}
		return apperr.FromDB(tx.Omit(clause.Associations).Create(rec).Error, r.name)
	})
}

func (r *Repo[T]) Get(ctx context.Context, id uint, scopes ...Scope) (*T, error) {
	var rec T
	if err := r.db.WithContext(ctx).Scopes(scopes...).First(&rec, id).Error; err != nil {
		return nil, apperr.FromDB(err, r.name)
	}
	return &rec, nil
}

// First returns the first record matching scopes.
func (r *Repo[T]) First(ctx context.Context, scopes ...Scope) (*T, error) {
	var rec T
	if err := r.db.WithContext(ctx).Scopes(scopes...).First(&rec).Error; err != nil {
		return nil, apperr.FromDB(err, r.name)
	}
	return &rec, nil
}

func (r *Repo[T]) List(ctx context.Context, scopes ...Scope) ([]T, error) {
	items := []T{}
	if err := r.db.WithContext(ctx).Scopes(scopes...).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.name, err)
	}
	return items, nil
}

func (r *Repo[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(new(T)).Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.name, err)
	}
	return n, nil
}

// Paginate lists one page. page starts at 1; limit is capped at 100.
func (r *Repo[T]) Paginate(ctx context.Context, page, limit int, scopes ...Scope) (*Page[T], error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	limit = min(limit, maxPageLimit)

	total, err := r.Count(ctx, scopes...)
	if err != nil {
		return nil, err
	}
	items, err := r.List(ctx, append(scopes, func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	})...)
	if err != nil {
		return nil, err
	}
	return &Page[T]{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// Patch copies the non-empty fields of patch onto the record and saves it.
// patch fields are matched by name; use pointers to allow zero values.
func (r *Repo[T]) Patch(ctx context.Context, id uint, patch any) (*T, error) {
	var rec T
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, id).Error; err != nil {
			return apperr.FromDB(err, r.name)
		}
		if err := copier.CopyWithOption(&rec, patch, copier.Option{IgnoreEmpty: true}); err != nil {
			return fmt.Errorf("failed to apply %s patch: %w", r.name, err)
		}
		return apperr.FromDB(tx.Omit(clause.Associations).Save(&rec).Error, r.name)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *Repo[T]) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(new(T), id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete %s: %w", r.name, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound(r.name)
	}
	return nil
}
