package store

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-backend/internal/apperr"
	"hostel-backend/internal/model"
)

// Store defines the interface for the account, room and booking operations.
type Store interface {
	DB() *gorm.DB

	CreateAccount(ctx context.Context, account *model.Account) error
	AccountByEmail(ctx context.Context, email string) (*model.Account, error)
	AccountByID(ctx context.Context, id uint) (*model.Account, error)
	ListAccounts(ctx context.Context, filter AccountFilter) ([]model.Account, error)

	ListRooms(ctx context.Context) ([]model.Room, error)
	CountRooms(ctx context.Context) (int64, error)
	SeedRooms(ctx context.Context, plan SeedPlan) (int, error)

	CreateBooking(ctx context.Context, req *model.BookingRequest) error
	ListBookings(ctx context.Context, filter BookingFilter) ([]model.BookingRequest, error)
	ApproveBooking(ctx context.Context, id, decidedBy uint, strictRoommates bool) (*Approval, error)
	RejectBooking(ctx context.Context, id, decidedBy uint, remarks string) (*model.BookingRequest, error)
	WaitlistBooking(ctx context.Context, id, decidedBy uint) (*model.BookingRequest, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db, now: time.Now}
}

func (s *gormStore) DB() *gorm.DB { return s.db }

// --- Accounts ---

func (s *gormStore) CreateAccount(ctx context.Context, account *model.Account) error {
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Account{}).Where("email = ?", account.Email).Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check email: %w", err)
		}
		if n > 0 {
			return apperr.Conflict("Email already registered")
		}
		return apperr.FromDB(tx.Create(account).Error, "Account")
	})
}

func (s *gormStore) AccountByEmail(ctx context.Context, email string) (*model.Account, error) {
	var account model.Account
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&account).Error
	if err != nil {
		return nil, apperr.FromDB(err, "Account")
	}
	return &account, nil
}

func (s *gormStore) AccountByID(ctx context.Context, id uint) (*model.Account, error) {
	var account model.Account
	if err := s.db.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, apperr.FromDB(err, "Account")
	}
	return &account, nil
}

func (s *gormStore) ListAccounts(ctx context.Context, filter AccountFilter) ([]model.Account, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultAccountLimit
	}
	limit = min(limit, maxAccountLimit)

	q := s.db.WithContext(ctx).Model(&model.Account{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if term := strings.TrimSpace(filter.Query); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(roll_number) LIKE ?", like, like, like)
	}

	var accounts []model.Account
	if err := q.Order("name").Limit(limit).Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// --- Rooms ---

func preloadOccupants(db *gorm.DB) *gorm.DB {
	return db.Order("room_occupants.id")
}

func (s *gormStore) ListRooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	err := s.db.WithContext(ctx).
		Preload("Occupants", preloadOccupants).
		Order("number").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *gormStore) CountRooms(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Room{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return n, nil
}

// SeedRooms creates the default rooms floor by floor (x01, x02, ...) until
// plan.Threshold rooms exist. It is a no-op at or above the threshold and
// skips numbers that are already taken.
func (s *gormStore) SeedRooms(ctx context.Context, plan SeedPlan) (int, error) {
	created := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []int
		if err := tx.Model(&model.Room{}).Pluck("number", &existing).Error; err != nil {
			return fmt.Errorf("failed to load room numbers: %w", err)
		}
		if len(existing) >= plan.Threshold {
			return nil
		}
		taken := make(map[int]bool, len(existing))
		for _, n := range existing {
			taken[n] = true
		}

		var rooms []model.Room
		for floor := 1; floor <= plan.Floors; floor++ {
			for i := 1; i <= plan.PerFloor && len(existing)+len(rooms) < plan.Threshold; i++ {
				number := floor*100 + i
				if taken[number] {
					continue
				}
				rooms = append(rooms, model.Room{
					Number:     number,
					Floor:      floor,
					HostelName: plan.HostelName,
					Capacity:   plan.Capacity,
					Status:     model.RoomAvailable,
				})
			}
		}
		if len(rooms) == 0 {
			return nil
		}

		log.Printf("Seeding %d rooms...", len(rooms))
		if err := tx.CreateInBatches(&rooms, 100).Error; err != nil {
			return fmt.Errorf("failed to seed rooms: %w", err)
		}
		created = len(rooms)
		return nil
	})
	return created, err
}

// --- Bookings ---

func (s *gormStore) CreateBooking(ctx context.Context, req *model.BookingRequest) error {
	req.Status = model.BookingPending
	if err := s.db.WithContext(ctx).Create(req).Error; err != nil {
		return fmt.Errorf("failed to create booking request: %w", err)
	}
	return nil
}

func (s *gormStore) ListBookings(ctx context.Context, filter BookingFilter) ([]model.BookingRequest, error) {
	q := s.db.WithContext(ctx).Model(&model.BookingRequest{})
	if filter.StudentID != 0 {
		q = q.Where("student_id = ?", filter.StudentID)
	} else {
		q = q.Preload("Student")
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var requests []model.BookingRequest
	if err := q.Order("created_at DESC").Order("id DESC").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to list booking requests: %w", err)
	}
	return requests, nil
}

// ApproveBooking admits the requester and the resolved roommates into the
// desired room. The occupancy insert, the room version bump and the request
// status change commit together or not at all.
func (s *gormStore) ApproveBooking(ctx context.Context, id, decidedBy uint, strictRoommates bool) (*Approval, error) {
	var result Approval
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := lockPendingRequest(tx, id)
		if err != nil {
			return err
		}

		var room model.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("number = ?", req.DesiredRoomNumber).
			First(&room).Error; err != nil {
			return apperr.FromDB(err, "Room")
		}
		if err := tx.Where("room_id = ?", room.ID).Order("id").Find(&room.Occupants).Error; err != nil {
			return fmt.Errorf("failed to load occupants of room %d: %w", room.Number, err)
		}
		if room.Status == model.RoomMaintenance {
			return apperr.Conflict("Room %d is under maintenance", room.Number)
		}

		admitted, unresolved, err := resolveOccupants(tx, req)
		if err != nil {
			return err
		}
		if len(unresolved) > 0 && strictRoommates {
			return apperr.Validation("Unknown roommate roll numbers: %s", strings.Join(unresolved, ", "))
		}

		if len(room.Occupants)+len(admitted) > room.Capacity {
			return apperr.CapacityExceeded("Room capacity exceeded")
		}

		ids := make([]uint, len(admitted))
		for i, a := range admitted {
			ids[i] = a.ID
		}
		var housed int64
		if err := tx.Model(&model.RoomOccupant{}).Where("account_id IN ?", ids).Count(&housed).Error; err != nil {
			return fmt.Errorf("failed to check existing occupancy: %w", err)
		}
		if housed > 0 {
			return apperr.Conflict("A student in this request already occupies a room")
		}

		now := s.now()
		bump := tx.Model(&model.Room{}).
			Where("id = ? AND version = ?", room.ID, room.Version).
			Updates(map[string]any{"version": gorm.Expr("version + 1"), "updated_at": now})
		if bump.Error != nil {
			return fmt.Errorf("failed to update room %d: %w", room.Number, bump.Error)
		}
		if bump.RowsAffected == 0 {
			return apperr.Conflict("Room %d changed concurrently, retry", room.Number)
		}

		seats := make([]model.RoomOccupant, len(ids))
		for i, accountID := range ids {
			seats[i] = model.RoomOccupant{RoomID: room.ID, AccountID: accountID}
		}
		if err := tx.Create(&seats).Error; err != nil {
			return apperr.FromDB(err, "Occupant")
		}

		if err := markDecided(tx, req, model.BookingApproved, decidedBy, now, nil); err != nil {
			return err
		}

		room.Version++
		room.Occupants = append(room.Occupants, seats...)
		result.Request = *req
		result.Room = room
		result.Unresolved = unresolved
		for _, a := range admitted {
			result.Admitted = append(result.Admitted, a.Ref())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *gormStore) RejectBooking(ctx context.Context, id, decidedBy uint, remarks string) (*model.BookingRequest, error) {
	return s.decide(ctx, id, model.BookingRejected, decidedBy, &remarks)
}

func (s *gormStore) WaitlistBooking(ctx context.Context, id, decidedBy uint) (*model.BookingRequest, error) {
	return s.decide(ctx, id, model.BookingWaitlisted, decidedBy, nil)
}

func (s *gormStore) decide(ctx context.Context, id uint, to model.BookingStatus, decidedBy uint, remarks *string) (*model.BookingRequest, error) {
	var decided *model.BookingRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := lockPendingRequest(tx, id)
		if err != nil {
			return err
		}
		if err := markDecided(tx, req, to, decidedBy, s.now(), remarks); err != nil {
			return err
		}
		decided = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decided, nil
}

func lockPendingRequest(tx *gorm.DB, id uint) (*model.BookingRequest, error) {
	var req model.BookingRequest
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, id).Error; err != nil {
		return nil, apperr.FromDB(err, "Request")
	}
	if req.Status != model.BookingPending {
		return nil, apperr.ErrAlreadyProcessed
	}
	return &req, nil
}

// markDecided moves req out of pending. The status guard in the WHERE clause
// makes a second decision on the same request affect no rows.
func markDecided(tx *gorm.DB, req *model.BookingRequest, to model.BookingStatus, decidedBy uint, now time.Time, remarks *string) error {
	updates := map[string]any{
		"status":        to,
		"decided_by_id": decidedBy,
		"decided_at":    now,
		"updated_at":    now,
	}
	if remarks != nil {
		updates["remarks"] = *remarks
	}
	res := tx.Model(&model.BookingRequest{}).
		Where("id = ? AND status = ?", req.ID, model.BookingPending).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update request %d: %w", req.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrAlreadyProcessed
	}

	req.Status = to
	req.DecidedByID = &decidedBy
	req.DecidedAt = &now
	req.UpdatedAt = now
	if remarks != nil {
		req.Remarks = *remarks
	}
	return nil
}

// resolveOccupants returns the requester followed by the roommates found by
// roll number, plus the roll numbers that matched nobody.
func resolveOccupants(tx *gorm.DB, req *model.BookingRequest) ([]model.Account, []string, error) {
	var student model.Account
	if err := tx.First(&student, req.StudentID).Error; err != nil {
		return nil, nil, apperr.FromDB(err, "Student")
	}

	var rolls []string
	seen := map[string]bool{}
	for _, r := range req.RoommateRollNumbers {
		r = strings.TrimSpace(r)
		if r == "" || seen[r] {
			continue
		}
		seen[r] = true
		rolls = append(rolls, r)
	}

	admitted := []model.Account{student}
	if len(rolls) == 0 {
		return admitted, nil, nil
	}

	var mates []model.Account
	if err := tx.Where("roll_number IN ?", rolls).Order("id").Find(&mates).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to resolve roommates: %w", err)
	}

	found := map[string]bool{}
	included := map[uint]bool{student.ID: true}
	for _, m := range mates {
		found[m.RollNumber] = true
		if included[m.ID] {
			continue
		}
		included[m.ID] = true
		admitted = append(admitted, m)
	}

	var unresolved []string
	for _, r := range rolls {
		if !found[r] {
			unresolved = append(unresolved, r)
		}
	}
	return admitted, unresolved, nil
}
