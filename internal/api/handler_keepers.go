package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hostel-backend/internal/mw"
	"hostel-backend/internal/parse"
	"hostel-backend/internal/realtime"
	"hostel-backend/internal/records"
)

// Notices lists the notice board: pinned first, then newest. Anonymous
// readers see what students see.
func (h *Handler) Notices(c *gin.Context) {
	viewer, _ := mw.Account(c)
	list, err := h.records.Notices.Board(c.Request.Context(), viewer, c.Query("audience"))
	if err != nil {
		respondError(c, err, "Failed to fetch notices")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) PostNotice(c *gin.Context) {
	var req records.NoticeInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Notices.Post(c.Request.Context(), mw.MustAccount(c), req)
	if err != nil {
		respondError(c, err, "Failed to create notice")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) UpdateNotice(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req records.NoticePatch
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Notices.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Failed to update notice")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteNotice(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.records.Notices.Remove(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete notice")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notice deleted"})
}

func (h *Handler) Assets(c *gin.Context) {
	list, err := h.records.Assets.List(c.Request.Context(),
		records.WhereIf(c.Query("status") != "", "status = ?", c.Query("status")),
		records.WhereIf(c.Query("location") != "", "location = ?", c.Query("location")),
		records.OrderBy("tag"),
	)
	if err != nil {
		respondError(c, err, "Failed to fetch assets")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) AddAsset(c *gin.Context) {
	var req records.AssetInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Assets.Add(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create asset")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) UpdateAsset(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req records.AssetPatch
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Assets.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Failed to update asset")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteAsset(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := h.records.Assets.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete asset")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Asset deleted"})
}

func (h *Handler) Consumables(c *gin.Context) {
	list, err := h.records.Inventory.Stock(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch consumables")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) AddConsumable(c *gin.Context) {
	var req records.ConsumableInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Inventory.AddConsumable(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create consumable")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// IssueConsumable hands out stock; more than is in stock is a 409.
func (h *Handler) IssueConsumable(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req records.IssueInput
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.records.Inventory.Issue(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Failed to issue consumable")
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) HealthProfile(c *gin.Context) {
	rec, err := h.records.Health.Profile(c.Request.Context(), mw.MustAccount(c))
	if err != nil {
		respondError(c, err, "Failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) SaveHealthProfile(c *gin.Context) {
	var req records.ProfileInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Health.SaveProfile(c.Request.Context(), mw.MustAccount(c), req)
	if err != nil {
		respondError(c, err, "Failed to save profile")
		return
	}
	c.JSON(http.StatusOK, rec)
}

type sickLeaveRequest struct {
	From   string `json:"from" binding:"required"`
	To     string `json:"to" binding:"required"`
	Reason string `json:"reason"`
}

func (h *Handler) RequestSickLeave(c *gin.Context) {
	var req sickLeaveRequest
	if !bindJSON(c, &req) {
		return
	}
	from, errFrom := parse.Time(req.From, h.loc)
	to, errTo := parse.Time(req.To, h.loc)
	if errFrom != nil || errTo != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "from and to must be dates or RFC3339 times"})
		return
	}
	rec, err := h.records.Health.RequestSickLeave(c.Request.Context(), mw.MustAccount(c), records.SickLeaveInput{
		From: from, To: to, Reason: req.Reason,
	})
	if err != nil {
		respondError(c, err, "Failed to request sick leave")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Emergencies(c *gin.Context) {
	list, err := h.records.Health.EmergencyLog(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch emergency events")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) LogEmergency(c *gin.Context) {
	var req records.EmergencyInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Health.LogEmergency(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to log emergency event")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) IsolationRooms(c *gin.Context) {
	list, err := h.records.Health.IsolationRooms(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to fetch isolation rooms")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) SetIsolationRoom(c *gin.Context) {
	var req records.IsolationInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Health.SetIsolation(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to save isolation room")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) MealPlan(c *gin.Context) {
	day, ok := h.day(c)
	if !ok {
		return
	}
	rec, err := h.records.Mess.Plan(c.Request.Context(), day)
	if err != nil {
		respondError(c, err, "Failed to fetch meal plan")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) SetMealPlan(c *gin.Context) {
	day, ok := h.day(c)
	if !ok {
		return
	}
	var req records.PlanInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Mess.SetPlan(c.Request.Context(), day, req)
	if err != nil {
		respondError(c, err, "Failed to save meal plan")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) MyRSVP(c *gin.Context) {
	day, ok := h.day(c)
	if !ok {
		return
	}
	rec, err := h.records.Mess.MyRSVP(c.Request.Context(), mw.MustAccount(c), day)
	if err != nil {
		respondError(c, err, "Failed to fetch RSVP")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) SetRSVP(c *gin.Context) {
	day, ok := h.day(c)
	if !ok {
		return
	}
	var req records.RSVPInput
	if !bindOptionalJSON(c, &req) {
		return
	}
	rec, err := h.records.Mess.SetRSVP(c.Request.Context(), mw.MustAccount(c), day, req)
	if err != nil {
		respondError(c, err, "Failed to save RSVP")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) Headcount(c *gin.Context) {
	day, ok := h.day(c)
	if !ok {
		return
	}
	hc, err := h.records.Mess.Headcount(c.Request.Context(), day)
	if err != nil {
		respondError(c, err, "Failed to count RSVPs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": day, "headcount": hc})
}

func (h *Handler) AttendanceToday(c *gin.Context) {
	rec, err := h.records.Attendance.Today(c.Request.Context(), mw.MustAccount(c))
	if err != nil {
		respondError(c, err, "Failed to fetch attendance")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) CheckIn(c *gin.Context) {
	rec, err := h.records.Attendance.CheckIn(c.Request.Context(), mw.MustAccount(c))
	if err != nil {
		respondError(c, err, "Failed to check in")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) CheckOut(c *gin.Context) {
	rec, err := h.records.Attendance.CheckOut(c.Request.Context(), mw.MustAccount(c))
	if err != nil {
		respondError(c, err, "Failed to check out")
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Attendance lists logs for admins: ?userId=&from=&to=.
func (h *Handler) Attendance(c *gin.Context) {
	var f records.AttendanceFilter
	if raw := c.Query("userId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid userId"})
			return
		}
		f.AccountID = uint(id)
	}
	for key, dst := range map[string]*string{"from": &f.From, "to": &f.To} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		day, err := parse.Day(raw, h.now(), h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		*dst = day
	}
	list, err := h.records.Attendance.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, err, "Failed to fetch attendance")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) RegisterVehicle(c *gin.Context) {
	var req records.VehicleInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Parking.RegisterVehicle(c.Request.Context(), mw.MustAccount(c), req)
	if err != nil {
		respondError(c, err, "Failed to register vehicle")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) Slots(c *gin.Context) {
	list, err := h.records.Parking.Slots.List(c.Request.Context(), records.OrderBy("slot"))
	if err != nil {
		respondError(c, err, "Failed to fetch slots")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateSlot(c *gin.Context) {
	var req records.SlotInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Parking.CreateSlot(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create slot")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) UpdateSlot(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req records.SlotPatch
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Parking.UpdateSlot(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Failed to update slot")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) Badges(c *gin.Context) {
	list, err := h.records.Parking.Badges.List(c.Request.Context(), records.OrderBy("badge_id"))
	if err != nil {
		respondError(c, err, "Failed to fetch badges")
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) IssueBadge(c *gin.Context) {
	var req records.BadgeInput
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Parking.IssueBadge(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to issue badge")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) UpdateBadge(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req records.BadgePatch
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.records.Parking.UpdateBadge(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err, "Failed to update badge")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) Analytics(c *gin.Context) {
	rep, err := h.records.Analytics(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to compute analytics")
		return
	}
	c.JSON(http.StatusOK, rep)
}

// ChatHistory pages backwards through a room: ?room=&limit=&before=.
// Direct-message rooms are readable by their participants only.
func (h *Handler) ChatHistory(c *gin.Context) {
	room := c.Query("room")
	if room == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "room required"})
		return
	}
	if !realtime.CanAccess(mw.MustAccount(c).ID, room) {
		c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}
	var before *time.Time
	if raw := c.Query("before"); raw != "" {
		t, err := parse.Time(raw, h.loc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid before"})
			return
		}
		before = &t
	}
	items, hasMore, err := h.chats.History(c.Request.Context(), room, limit, before)
	if err != nil {
		respondError(c, err, "Failed to fetch history")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "hasMore": hasMore})
}
