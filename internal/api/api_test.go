package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"hostel-backend/config"
	"hostel-backend/internal/auth"
	"hostel-backend/internal/booking"
	"hostel-backend/internal/db"
	"hostel-backend/internal/model"
	"hostel-backend/internal/parse"
	"hostel-backend/internal/realtime"
	"hostel-backend/internal/records"
	"hostel-backend/internal/store"
)

type testAPI struct {
	t      *testing.T
	cfg    *config.Config
	db     *gorm.DB
	router *gin.Engine
	tokens *auth.Tokens
}

func newTestAPI(t *testing.T, opts ...func(*config.Config, *Deps)) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	cfg.Server.Timezone = "UTC"

	gormDB, err := db.Init(&config.DatabaseConfig{DSN: db.MemoryDSN(t.Name())})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	})

	s := store.NewGormStore(gormDB)
	tokens := auth.NewTokens("test-secret", time.Hour)
	authn := auth.NewAuthenticator(tokens, s)
	hub := realtime.NewHub()
	d := Deps{
		Config:   cfg,
		Store:    s,
		Tokens:   tokens,
		Auth:     authn,
		Bookings: booking.NewService(s, hub, nil, cfg.Booking),
		Records:  records.New(gormDB, hub, records.Options{Location: time.UTC, Curfew: cfg.Attendance.Curfew}),
		Chats:    realtime.NewChatLog(gormDB),
		Hub:      hub,
	}
	for _, opt := range opts {
		opt(cfg, &d)
	}
	return &testAPI{t: t, cfg: cfg, db: gormDB, router: NewRouter(d), tokens: tokens}
}

// account inserts an account and returns it with a bearer token.
func (a *testAPI) account(name string, role model.Role, roll string) (model.Account, string) {
	a.t.Helper()
	hash, err := auth.HashPassword("secret123")
	require.NoError(a.t, err)
	acc := model.Account{Name: name, Email: name + "@hostel.test", PasswordHash: hash, Role: role, RollNumber: roll}
	require.NoError(a.t, a.db.Create(&acc).Error)
	token, err := a.tokens.Issue(acc)
	require.NoError(a.t, err)
	return acc, token
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[map[string]any](t, w)["message"].(string)
}

func TestAuth(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Asha", "email": "Asha@Hostel.test", "password": "secret123", "rollNumber": "CS01",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sess := decode[session](t, w)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "asha@hostel.test", sess.User.Email)
	assert.Equal(t, model.RoleStudent, sess.User.Role)

	testCases := []struct {
		name     string
		body     gin.H
		expected int
		message  string
	}{
		{"duplicate email", gin.H{"name": "A", "email": "asha@hostel.test", "password": "secret123"}, http.StatusConflict, "Email already registered"},
		{"admin signup disabled", gin.H{"name": "W", "email": "w@hostel.test", "password": "secret123", "role": "admin"}, http.StatusForbidden, "Admin signup is disabled"},
		{"missing name", gin.H{"email": "x@hostel.test", "password": "secret123"}, http.StatusBadRequest, "name required"},
		{"short password", gin.H{"name": "X", "email": "x@hostel.test", "password": "abc"}, http.StatusBadRequest, "password must be at least 6 characters"},
		{"unknown role", gin.H{"name": "X", "email": "x@hostel.test", "password": "secret123", "role": "warden"}, http.StatusBadRequest, "role must be one of student admin"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := a.do(http.MethodPost, "/api/auth/register", "", tc.body)
			assert.Equal(t, tc.expected, w.Code)
			assert.Equal(t, tc.message, message(t, w))
		})
	}

	w = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@hostel.test", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", message(t, w))

	w = a.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "asha@hostel.test", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[session](t, w).Token

	w = a.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Asha", decode[model.Account](t, w).Name)

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/auth/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/auth/me", "garbage", nil).Code)
}

func TestAuth_AdminSignupWhenAllowed(t *testing.T) {
	a := newTestAPI(t, func(cfg *config.Config, _ *Deps) { cfg.Auth.AllowAdminSignup = true })

	w := a.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Warden", "email": "warden@hostel.test", "password": "secret123", "role": "admin",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, model.RoleAdmin, decode[session](t, w).User.Role)
}

func TestBookingRoutes(t *testing.T) {
	a := newTestAPI(t)
	student, studentToken := a.account("asha", model.RoleStudent, "CS01")
	a.account("bala", model.RoleStudent, "CS02")
	_, adminToken := a.account("warden", model.RoleAdmin, "")
	require.NoError(t, a.db.Create(&model.Room{Number: 101, Floor: 1, HostelName: "Ponnar", Capacity: 2, Status: model.RoomAvailable}).Error)

	w := a.do(http.MethodPost, "/api/booking", adminToken, gin.H{"desiredRoomNumber": 101})
	assert.Equal(t, http.StatusForbidden, w.Code, "admins cannot submit")

	w = a.do(http.MethodPost, "/api/booking", studentToken, gin.H{
		"desiredRoomNumber": 101, "roommatesRollNumbers": []string{"CS02", "ZZ99"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	req := decode[model.BookingRequest](t, w)
	assert.Equal(t, student.ID, req.StudentID)
	assert.Equal(t, model.BookingPending, req.Status)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/booking", studentToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/booking?status=bogus", adminToken, nil).Code)

	w = a.do(http.MethodGet, "/api/booking?status=pending", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.BookingRequest](t, w), 1)

	path := "/api/booking/" + itoa(req.ID) + "/approve"
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, path, studentToken, nil).Code)

	w = a.do(http.MethodPost, path, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	approval := decode[store.Approval](t, w)
	assert.Equal(t, model.BookingApproved, approval.Request.Status)
	assert.Len(t, approval.Room.Occupants, 2)
	assert.Equal(t, []string{"ZZ99"}, approval.Unresolved)

	w = a.do(http.MethodPost, path, adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(http.MethodGet, "/api/booking/mine", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]model.BookingRequest](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, model.BookingApproved, mine[0].Status)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/booking/abc/reject", adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/api/booking/999/reject", adminToken, nil).Code)
}

func TestRoomRoutes_CacheFlushedOnAllocation(t *testing.T) {
	a := newTestAPI(t)
	_, studentToken := a.account("asha", model.RoleStudent, "CS01")
	_, adminToken := a.account("warden", model.RoleAdmin, "")
	require.NoError(t, a.db.Create(&model.Room{Number: 101, Floor: 1, HostelName: "Ponnar", Capacity: 2, Status: model.RoomAvailable}).Error)

	w := a.do(http.MethodGet, "/api/rooms/stats", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	w = a.do(http.MethodGet, "/api/rooms/stats", "", nil)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	w = a.do(http.MethodPost, "/api/booking", studentToken, gin.H{"desiredRoomNumber": 101})
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[model.BookingRequest](t, w).ID
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/booking/"+itoa(id)+"/approve", adminToken, nil).Code)

	w = a.do(http.MethodGet, "/api/rooms/stats", "", nil)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/rooms", "", nil).Code)
	w = a.do(http.MethodGet, "/api/rooms", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rooms := decode[[]model.Room](t, w)
	require.Len(t, rooms, 1)
	assert.Len(t, rooms[0].Occupants, 1)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/rooms/seed", studentToken, nil).Code)
	w = a.do(http.MethodPost, "/api/rooms/seed", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	seeded := decode[map[string]int](t, w)
	assert.Positive(t, seeded["created"])
	assert.Equal(t, seeded["created"]+1, seeded["total"])
}

func TestComplaintRoutes(t *testing.T) {
	a := newTestAPI(t)
	_, studentToken := a.account("asha", model.RoleStudent, "CS01")
	_, adminToken := a.account("warden", model.RoleAdmin, "")

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/complaints", studentToken, gin.H{}).Code)

	w := a.do(http.MethodPost, "/api/complaints", studentToken, gin.H{"category": "Plumbing", "description": "Leaking tap"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	complaint := decode[model.Complaint](t, w)
	assert.Equal(t, model.ComplaintOpen, complaint.Status)

	path := "/api/complaints/" + itoa(complaint.ID)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPatch, path, studentToken, gin.H{"status": "resolved"}).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPatch, path, adminToken, gin.H{"status": "closed"}).Code)

	w = a.do(http.MethodPatch, path, adminToken, gin.H{"status": "resolved", "assignee": "Ravi"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.ComplaintResolved, decode[model.Complaint](t, w).Status)

	w = a.do(http.MethodGet, "/api/complaints/mine", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Complaint](t, w), 1)

	w = a.do(http.MethodGet, "/api/complaints?status=open", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]model.Complaint](t, w))
}

func TestGatePassAndVisitorRoutes(t *testing.T) {
	a := newTestAPI(t)
	_, studentToken := a.account("asha", model.RoleStudent, "CS01")
	_, otherToken := a.account("bala", model.RoleStudent, "CS02")
	_, adminToken := a.account("warden", model.RoleAdmin, "")

	from := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
	to := time.Now().UTC().Add(26 * time.Hour).Format(time.RFC3339)
	w := a.do(http.MethodPost, "/api/gatepass", studentToken, gin.H{"reason": "Home", "from": from, "to": "tomorrow"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPost, "/api/gatepass", studentToken, gin.H{"reason": "Home", "from": from, "to": to})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	pass := decode[model.GatePass](t, w)

	qr := "/api/gatepass/" + itoa(pass.ID) + "/qr"
	assert.Equal(t, http.StatusConflict, a.do(http.MethodGet, qr, studentToken, nil).Code, "not approved yet")

	w = a.do(http.MethodPost, "/api/gatepass/"+itoa(pass.ID)+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode[model.GatePass](t, w).Code)

	w = a.do(http.MethodGet, qr, studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG"), w.Body.Bytes()[:4])
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, qr, otherToken, nil).Code)

	w = a.do(http.MethodPost, "/api/gatepass/"+itoa(pass.ID)+"/verify", adminToken, gin.H{"code": "wrong"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid gate pass code", message(t, w))

	w = a.do(http.MethodPost, "/api/visitors", studentToken, gin.H{"name": "Mum", "purpose": "personal"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	visitor := decode[model.Visitor](t, w)

	base := "/api/visitors/" + itoa(visitor.ID)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, base+"/teleport", adminToken, nil).Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, base+"/approve", adminToken, nil).Code)
	w = a.do(http.MethodPost, base+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, base+"/checkin", adminToken, nil).Code)

	w = a.do(http.MethodGet, "/api/visitors?status=checked_in", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Visitor](t, w), 1)
}

func TestInventoryRoutes(t *testing.T) {
	a := newTestAPI(t)
	_, studentToken := a.account("asha", model.RoleStudent, "CS01")
	_, adminToken := a.account("warden", model.RoleAdmin, "")

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/inventory/consumables", studentToken, nil).Code)

	w := a.do(http.MethodPost, "/api/inventory/consumables", adminToken, gin.H{"sku": "SOAP", "name": "Soap", "stock": 3})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decode[model.Consumable](t, w)

	issue := "/api/inventory/consumables/" + itoa(item.ID) + "/issue"
	w = a.do(http.MethodPost, issue, adminToken, gin.H{"qty": 5, "issuedTo": "room 101"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "insufficient stock", message(t, w))

	w = a.do(http.MethodPost, issue, adminToken, gin.H{"qty": 2, "issuedTo": "room 101"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[records.Issued](t, w).Consumable.Stock)

	w = a.do(http.MethodPost, "/api/inventory/assets", adminToken, gin.H{"tag": "FAN-1", "name": "Ceiling fan"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	asset := decode[model.Asset](t, w)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/inventory/assets", adminToken, gin.H{"tag": "FAN-1", "name": "Fan"}).Code)

	w = a.do(http.MethodPatch, "/api/inventory/assets/"+itoa(asset.ID), adminToken, gin.H{"status": "repair"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "repair", decode[model.Asset](t, w).Status)

	require.Equal(t, http.StatusOK, a.do(http.MethodDelete, "/api/inventory/assets/"+itoa(asset.ID), adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodDelete, "/api/inventory/assets/"+itoa(asset.ID), adminToken, nil).Code)
}

func TestHousekeepingAndInspectionRoutes(t *testing.T) {
	a := newTestAPI(t)
	asha, studentToken := a.account("asha", model.RoleStudent, "CS01")
	_, adminToken := a.account("warden", model.RoleAdmin, "")

	for _, path := range []string{"/api/housekeeping", "/api/inspections", "/api/inspections/damages"} {
		assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, path, studentToken, nil).Code, path)
	}

	w := a.do(http.MethodPost, "/api/housekeeping", adminToken, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "roomNumber required", message(t, w))

	w = a.do(http.MethodPost, "/api/housekeeping", adminToken, gin.H{
		"roomNumber": 101, "checklist": []gin.H{{"item": "mop floor"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	round := decode[model.HousekeepingLog](t, w)
	assert.Equal(t, "warden", round.StaffName)
	w = a.do(http.MethodPost, "/api/housekeeping", adminToken, gin.H{"roomNumber": 102})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/housekeeping?roomNumber=101", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[[]model.HousekeepingLog](t, w)
	require.Len(t, logs, 1)
	assert.Equal(t, round.ID, logs[0].ID)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/housekeeping?roomNumber=abc", adminToken, nil).Code)

	w = a.do(http.MethodPost, "/api/housekeeping/"+itoa(round.ID)+"/complete", adminToken, gin.H{"remarks": "done early"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	completed := decode[model.HousekeepingLog](t, w)
	assert.Equal(t, model.HousekeepingCompleted, completed.Status)
	assert.Equal(t, "done early", completed.Remarks)
	assert.NotNil(t, completed.PerformedAt)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/housekeeping/"+itoa(round.ID)+"/start", adminToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPost, "/api/housekeeping/"+itoa(round.ID)+"/scrub", adminToken, nil).Code)

	w = a.do(http.MethodGet, "/api/analytics", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	rep := decode[records.Report](t, w)
	assert.Equal(t, int64(1), rep.Housekeeping.CompletedToday)
	assert.Equal(t, int64(1), rep.Housekeeping.ScheduledToday)

	w = a.do(http.MethodPost, "/api/inspections", adminToken, gin.H{"roomNumber": "101"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "roomNumber and date required", message(t, w))

	w = a.do(http.MethodPost, "/api/inspections", adminToken, gin.H{"roomNumber": "101", "date": "2026-03-01"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	older := decode[model.InspectionLog](t, w)
	w = a.do(http.MethodPost, "/api/inspections", adminToken, gin.H{"roomNumber": "102", "date": "2026-03-05"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	newer := decode[model.InspectionLog](t, w)
	assert.Equal(t, "warden", newer.Inspector)

	w = a.do(http.MethodGet, "/api/inspections", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	inspections := decode[[]model.InspectionLog](t, w)
	require.Len(t, inspections, 2)
	assert.Equal(t, newer.ID, inspections[0].ID, "latest date first")

	w = a.do(http.MethodPost, "/api/inspections/"+itoa(older.ID)+"/done", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.InspectionDone, decode[model.InspectionLog](t, w).Status)

	w = a.do(http.MethodPost, "/api/inspections/damages", adminToken, gin.H{"description": "cracked window"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "description and amount required", message(t, w))

	w = a.do(http.MethodPost, "/api/inspections/damages", adminToken, gin.H{
		"roomNumber": "101", "description": "cracked window", "amount": 450, "userId": asha.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	charge := decode[model.DamageCharge](t, w)
	assert.Equal(t, model.DamagePending, charge.Status)

	w = a.do(http.MethodPost, "/api/inspections/damages/"+itoa(charge.ID)+"/waive", adminToken, gin.H{"note": "first offence"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.DamageWaived, decode[model.DamageCharge](t, w).Status)
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/api/inspections/damages/"+itoa(charge.ID)+"/pay", adminToken, nil).Code)

	w = a.do(http.MethodGet, "/api/inspections/damages?status=waived", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	charges := decode[[]model.DamageCharge](t, w)
	require.Len(t, charges, 1)
	require.NotNil(t, charges[0].Account)
	assert.Equal(t, "asha", charges[0].Account.Name)
}

func TestContactAndNoticeRoutes(t *testing.T) {
	a := newTestAPI(t)
	_, adminToken := a.account("warden", model.RoleAdmin, "")

	w := a.do(http.MethodPost, "/api/contact", "", gin.H{"name": "Guest", "email": "not-an-email", "message": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email must be a valid email", message(t, w))

	w = a.do(http.MethodPost, "/api/contact", "", gin.H{"name": "Guest", "email": "Guest@Example.com", "message": "Any rooms?"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/api/contact", "", nil).Code)
	w = a.do(http.MethodGet, "/api/contact?unread=true", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[records.Page[model.ContactMessage]](t, w)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, "guest@example.com", page.Items[0].Email)

	for _, audience := range []string{"all", "admins"} {
		w = a.do(http.MethodPost, "/api/notices", adminToken, gin.H{"title": audience, "content": "x", "audience": audience})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = a.do(http.MethodGet, "/api/notices", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	public := decode[[]model.Notice](t, w)
	require.Len(t, public, 1)
	assert.Equal(t, "all", public[0].Audience)

	w = a.do(http.MethodGet, "/api/notices", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Notice](t, w), 2)

	w = a.do(http.MethodPatch, "/api/notices/"+itoa(public[0].ID), adminToken, gin.H{"pinned": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[model.Notice](t, w).Pinned)
	require.Equal(t, http.StatusOK, a.do(http.MethodDelete, "/api/notices/"+itoa(public[0].ID), adminToken, nil).Code)
}

func TestDailyRoutes(t *testing.T) {
	a := newTestAPI(t)
	_, studentToken := a.account("asha", model.RoleStudent, "CS01")
	_, adminToken := a.account("warden", model.RoleAdmin, "")

	w := a.do(http.MethodGet, "/api/mess/rsvp/me?date=2026-03-01", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[model.MealRSVP](t, w).Breakfast)

	w = a.do(http.MethodPost, "/api/mess/rsvp?date=2026-03-01", studentToken, gin.H{"lunch": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/mess/headcount", studentToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/mess/headcount?date=soon", adminToken, nil).Code)

	w = a.do(http.MethodGet, "/api/mess/headcount?date=2026-03-01", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hc struct {
		Date      string          `json:"date"`
		Headcount model.Headcount `json:"headcount"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hc))
	assert.Equal(t, "2026-03-01", hc.Date)
	assert.Equal(t, model.Headcount{Breakfast: 1, Lunch: 0, Dinner: 1}, hc.Headcount)

	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/attendance/checkin", studentToken, nil).Code)
	w = a.do(http.MethodGet, "/api/attendance/me", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode[model.AttendanceLog](t, w).CheckInAt)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/attendance?userId=x", adminToken, nil).Code)
	w = a.do(http.MethodGet, "/api/attendance", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.AttendanceLog](t, w), 1)

	w = a.do(http.MethodGet, "/api/analytics", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/analytics", studentToken, nil).Code)
}

func TestChatHistory(t *testing.T) {
	a := newTestAPI(t)
	asha, ashaToken := a.account("asha", model.RoleStudent, "CS01")
	bala, _ := a.account("bala", model.RoleStudent, "CS02")
	_, carolToken := a.account("carol", model.RoleStudent, "CS03")

	room := parse.DirectRoom(asha.ID, bala.ID)
	require.NoError(t, a.db.Create(&model.ChatMessage{Room: room, Text: "hey", From: "asha", AccountID: &asha.ID}).Error)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/chat/history", ashaToken, nil).Code)
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodGet, "/api/chat/history?room="+room, carolToken, nil).Code)

	w := a.do(http.MethodGet, "/api/chat/history?room="+room, ashaToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Items   []model.ChatMessage `json:"items"`
		HasMore bool                `json:"hasMore"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "hey", out.Items[0].Text)
	assert.False(t, out.HasMore)
}

func TestSubscriptions(t *testing.T) {
	a := newTestAPI(t)
	_, token := a.account("asha", model.RoleStudent, "CS01")
	endpoint := "https://push.example.com/send/abc"

	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodPut, "/api/subscriptions", "", nil).Code)

	w := a.do(http.MethodPut, "/api/subscriptions", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "request body required", message(t, w))

	w = a.do(http.MethodPut, "/api/subscriptions", token, gin.H{"endpoint": endpoint, "p256dh": "key", "auth": "secret"})
	assert.Equal(t, http.StatusCreated, w.Code)

	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/subscriptions?endpoint="+endpoint, token, nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/subscriptions", token, nil).Code)

	assert.Equal(t, http.StatusNoContent, a.do(http.MethodDelete, "/api/subscriptions", token, gin.H{"endpoint": endpoint}).Code)
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/subscriptions?endpoint="+endpoint, token, nil).Code)
}

func TestVAPIDPublicKey(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(http.MethodGet, "/api/vapid_public_key", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	a = newTestAPI(t, func(_ *config.Config, d *Deps) {
		d.WebPush = &webpush.Options{VAPIDPublicKey: "pub"}
	})
	w = a.do(http.MethodGet, "/api/vapid_public_key", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"publicKey":"pub"}`, w.Body.String())
}

func TestHealthz(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(http.MethodGet, "/api/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRawQueryParam(t *testing.T) {
	testCases := []struct {
		raw      string
		expected string
		found    bool
	}{
		{"endpoint=https%3A%2F%2Fpush.example.com%2Fa", "https://push.example.com/a", true},
		{"x=1&endpoint=https://push.example.com/a", "https://push.example.com/a", true},
		{"endpoint=%zz", "%zz", true},
		{"other=1", "", false},
	}
	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := rawQueryParam(tc.raw, "endpoint")
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestBindJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testCases := []struct {
		name     string
		optional bool
		body     string
		length   int64
		ok       bool
		message  string
	}{
		{name: "required body given", body: `{"note":"ok"}`, length: 13, ok: true},
		{name: "required body missing", message: "request body required"},
		{name: "optional body missing", optional: true, ok: true},
		{name: "optional chunked and empty", optional: true, length: -1, ok: true},
		{name: "optional body malformed", optional: true, body: `{"note":`, length: 8, message: "invalid request body"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(tc.body))
			c.Request.ContentLength = tc.length

			var req actionRequest
			bind := bindJSON
			if tc.optional {
				bind = bindOptionalJSON
			}
			assert.Equal(t, tc.ok, bind(c, &req))
			if tc.ok {
				assert.Equal(t, http.StatusOK, w.Code)
				return
			}
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.message, message(t, w))
		})
	}
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
