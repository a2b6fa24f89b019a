package booking

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hostel-backend/config"
	"hostel-backend/internal/apperr"
	"hostel-backend/internal/db"
	"hostel-backend/internal/model"
	"hostel-backend/internal/realtime"
	"hostel-backend/internal/store"
)

type event struct {
	Name    string
	Payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event
}

func (p *recordingPublisher) Broadcast(name string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event{name, payload})
}

func (p *recordingPublisher) Emit(_, name string, payload any) { p.Broadcast(name, payload) }

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

type push struct {
	to    uint
	title string
	body  string
}

type recordingNotifier struct{ sent []push }

func (n *recordingNotifier) Notify(accountID uint, title, body string) {
	n.sent = append(n.sent, push{accountID, title, body})
}

type env struct {
	svc   *Service
	db    *gorm.DB
	pub   *recordingPublisher
	push  *recordingNotifier
	admin model.Account
}

func newEnv(t *testing.T, cfg config.BookingConfig) *env {
	gormDB, err := db.Init(&config.DatabaseConfig{DSN: db.MemoryDSN(t.Name())})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})

	e := &env{db: gormDB, pub: &recordingPublisher{}, push: &recordingNotifier{}}
	e.svc = NewService(store.NewGormStore(gormDB), e.pub, e.push, cfg)
	e.admin = e.account("warden", "", model.RoleAdmin)
	return e
}

func (e *env) account(name, roll string, role model.Role) model.Account {
	a := model.Account{Name: name, Email: name + "@hostel.test", PasswordHash: "x", Role: role, RollNumber: roll}
	if err := e.db.Create(&a).Error; err != nil {
		panic(err)
	}
	return a
}

func (e *env) room(number, capacity int) {
	if err := e.db.Create(&model.Room{Number: number, Floor: number / 100, HostelName: "Ponnar", Capacity: capacity, Status: model.RoomAvailable}).Error; err != nil {
		panic(err)
	}
}

func TestSubmit(t *testing.T) {
	e := newEnv(t, config.BookingConfig{})
	ctx := context.Background()
	student := e.account("asha", "CS01", model.RoleStudent)

	_, err := e.svc.Submit(ctx, student, SubmitInput{})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	req, err := e.svc.Submit(ctx, student, SubmitInput{
		DesiredRoomNumber:   999,
		RoommateRollNumbers: []string{" CS02 ", "", "CS02", "CS03"},
		Preferences:         model.BookingPreferences{QuietHours: true},
	})
	require.NoError(t, err, "room existence is checked at approval time")
	assert.Equal(t, model.BookingPending, req.Status)
	assert.Equal(t, []string{"CS02", "CS03"}, req.RoommateRollNumbers)

	mine, err := e.svc.ListMine(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, mine[0].Preferences.QuietHours)
	assert.Equal(t, []string{"CS02", "CS03"}, mine[0].RoommateRollNumbers)

	assert.Empty(t, e.pub.names(), "submitting emits nothing")
}

func TestApprove_EmitsAfterCommit(t *testing.T) {
	e := newEnv(t, config.BookingConfig{})
	ctx := context.Background()
	asha := e.account("asha", "CS01", model.RoleStudent)
	e.account("bala", "CS02", model.RoleStudent)
	e.room(101, 2)

	req, err := e.svc.Submit(ctx, asha, SubmitInput{DesiredRoomNumber: 101, RoommateRollNumbers: []string{"CS02"}})
	require.NoError(t, err)

	approval, err := e.svc.Approve(ctx, req.ID, e.admin)
	require.NoError(t, err)
	assert.Len(t, approval.Room.Occupants, 2)

	require.Equal(t, []string{realtime.EventRoomsUpdate}, e.pub.names())
	assert.Equal(t, 2, e.pub.events[0].Payload.(map[string]any)["occupantsCount"])
	require.Len(t, e.push.sent, 1)
	assert.Equal(t, asha.ID, e.push.sent[0].to)

	_, err = e.svc.Approve(ctx, req.ID, e.admin)
	assert.ErrorIs(t, err, apperr.ErrAlreadyProcessed)
	assert.Len(t, e.pub.names(), 1, "failed approval emits nothing")
}

func TestApprove_StrictRoommates(t *testing.T) {
	e := newEnv(t, config.BookingConfig{StrictRoommates: true})
	ctx := context.Background()
	asha := e.account("asha", "CS01", model.RoleStudent)
	e.room(101, 2)

	req, err := e.svc.Submit(ctx, asha, SubmitInput{DesiredRoomNumber: 101, RoommateRollNumbers: []string{"NOPE"}})
	require.NoError(t, err)

	_, err = e.svc.Approve(ctx, req.ID, e.admin)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, e.pub.names())
	assert.Empty(t, e.push.sent)
}

func TestRejectAndWaitlist(t *testing.T) {
	e := newEnv(t, config.BookingConfig{})
	ctx := context.Background()
	asha := e.account("asha", "CS01", model.RoleStudent)

	first, err := e.svc.Submit(ctx, asha, SubmitInput{DesiredRoomNumber: 101})
	require.NoError(t, err)
	second, err := e.svc.Submit(ctx, asha, SubmitInput{DesiredRoomNumber: 102})
	require.NoError(t, err)

	rejected, err := e.svc.Reject(ctx, first.ID, e.admin, "  no space ")
	require.NoError(t, err)
	assert.Equal(t, "no space", rejected.Remarks)
	assert.Equal(t, []string{realtime.EventBookingUpdate}, e.pub.names())
	require.Len(t, e.push.sent, 1)
	assert.Contains(t, e.push.sent[0].body, "no space")

	waitlisted, err := e.svc.Waitlist(ctx, second.ID, e.admin)
	require.NoError(t, err)
	assert.Equal(t, model.BookingWaitlisted, waitlisted.Status)
	assert.Len(t, e.pub.names(), 1, "waitlisting emits nothing")

	all, err := e.svc.ListAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Student)
	assert.Equal(t, "asha", all[0].Student.Name)

	pending, err := e.svc.ListAll(ctx, model.BookingPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestService_NilNotifier(t *testing.T) {
	e := newEnv(t, config.BookingConfig{})
	e.svc = NewService(store.NewGormStore(e.db), e.pub, nil, config.BookingConfig{})
	asha := e.account("asha", "CS01", model.RoleStudent)

	req, err := e.svc.Submit(context.Background(), asha, SubmitInput{DesiredRoomNumber: 101})
	require.NoError(t, err)
	_, err = e.svc.Reject(context.Background(), req.ID, e.admin, "")
	assert.NoError(t, err)
}
