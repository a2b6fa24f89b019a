package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"hostel-backend/internal/auth"
	"hostel-backend/internal/model"
	"hostel-backend/internal/mw"
	"hostel-backend/internal/realtime"
	"hostel-backend/internal/records"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(d Deps) *gin.Engine {
	r := gin.Default()
	r.Use(mw.CORS(d.Config.Server.AllowedOrigins))

	h := NewHandler(d)
	rec := d.Records

	limiter := d.Limiter
	if limiter == nil {
		limiter = mw.NewIPRateLimiter(rate.Limit(d.Config.Server.RateLimitPerSec), d.Config.Server.RateLimitBurst)
	}

	// Public room views are cached until the next allocation changes them.
	cached := mw.NewResponseCache(time.Duration(d.Config.Server.CacheTTLSeconds) * time.Second)
	if d.Hub != nil {
		d.Hub.Observe(func(event string) {
			if event == realtime.EventRoomsUpdate {
				cached.Flush()
			}
		})
	}

	require := func(action auth.Action) gin.HandlerFunc { return mw.Require(d.Auth, action) }
	signedIn := require(auth.ActionAuthenticated)
	submit := require(auth.ActionRecordSubmit)
	mine := require(auth.ActionRecordListMine)
	all := require(auth.ActionRecordListAll)
	manage := require(auth.ActionRecordManage)

	r.GET("/api/healthz", h.Healthz)
	if d.Realtime != nil {
		r.GET("/ws", gin.WrapH(d.Realtime))
	}

	api := r.Group("/api")
	api.Use(mw.RateLimit(limiter))
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.GET("/me", signedIn, h.Me)

		api.GET("/users", require(auth.ActionUsersList), h.ListUsers)

		roomGroup := api.Group("/rooms")
		roomGroup.GET("/summary", cached.Middleware(), h.RoomSummary)
		roomGroup.GET("/stats", cached.Middleware(), h.RoomStats)
		roomGroup.GET("", require(auth.ActionRoomsList), h.ListRooms)
		roomGroup.POST("/seed", require(auth.ActionRoomsSeed), h.SeedRooms)

		bookingGroup := api.Group("/booking")
		bookingGroup.POST("", require(auth.ActionBookingSubmit), h.SubmitBooking)
		bookingGroup.GET("/mine", require(auth.ActionBookingListMine), h.MyBookings)
		bookingGroup.GET("", require(auth.ActionBookingListAll), h.AllBookings)
		decide := require(auth.ActionBookingDecide)
		bookingGroup.POST("/:id/approve", decide, h.ApproveBooking)
		bookingGroup.POST("/:id/reject", decide, h.RejectBooking)
		bookingGroup.POST("/:id/waitlist", decide, h.WaitlistBooking)

		complaintGroup := api.Group("/complaints")
		complaintGroup.POST("", submit, h.FileComplaint)
		complaintGroup.GET("/mine", mine, listOwned[model.Complaint](rec.Complaints, "student_id"))
		complaintGroup.GET("", all, listAll[model.Complaint](rec.Complaints, records.Preload("Student")))
		complaintGroup.PATCH("/:id", manage, h.UpdateComplaint)

		gatePassGroup := api.Group("/gatepass")
		gatePassGroup.POST("", submit, h.RequestGatePass)
		gatePassGroup.GET("/mine", mine, listOwned[model.GatePass](rec.GatePasses, "account_id"))
		gatePassGroup.GET("", all, listAll[model.GatePass](rec.GatePasses, records.Preload("Account")))
		gatePassGroup.GET("/:id/qr", mine, h.GatePassQR)
		gatePassGroup.POST("/:id/approve", manage, act[model.GatePass](rec.GatePasses, "approve"))
		gatePassGroup.POST("/:id/deny", manage, act[model.GatePass](rec.GatePasses, "deny"))
		gatePassGroup.POST("/:id/verify", manage, act[model.GatePass](rec.GatePasses, "verify"))

		visitorGroup := api.Group("/visitors")
		visitorGroup.POST("", submit, h.RegisterVisitor)
		visitorGroup.GET("/mine", mine, listOwned[model.Visitor](rec.Visitors, "resident_id"))
		visitorGroup.GET("", all, listAll[model.Visitor](rec.Visitors, records.Preload("Resident")))
		visitorGroup.POST("/:id/:action", manage, act[model.Visitor](rec.Visitors, "approve", "deny", "checkin", "checkout"))

		packageGroup := api.Group("/packages")
		packageGroup.POST("", manage, h.LogPackage)
		packageGroup.GET("/mine", mine, listOwned[model.Package](rec.Packages, "recipient_id"))
		packageGroup.GET("", all, listAll[model.Package](rec.Packages, records.Preload("Recipient")))
		packageGroup.POST("/:id/pick", manage, act[model.Package](rec.Packages, "pick"))

		contactGroup := api.Group("/contact")
		contactGroup.POST("", mw.Identify(d.Auth), h.SendContact)
		contactGroup.GET("", all, h.ContactInbox)
		contactGroup.PATCH("/:id/read", manage, act[model.ContactMessage](rec.Contacts, "read"))

		noticeGroup := api.Group("/notices")
		noticeGroup.GET("", mw.Identify(d.Auth), h.Notices)
		noticeManage := require(auth.ActionNoticeManage)
		noticeGroup.POST("", noticeManage, h.PostNotice)
		noticeGroup.PATCH("/:id", noticeManage, h.UpdateNotice)
		noticeGroup.DELETE("/:id", noticeManage, h.DeleteNotice)

		inventoryGroup := api.Group("/inventory", manage)
		inventoryGroup.GET("/assets", h.Assets)
		inventoryGroup.POST("/assets", h.AddAsset)
		inventoryGroup.PATCH("/assets/:id", h.UpdateAsset)
		inventoryGroup.DELETE("/assets/:id", h.DeleteAsset)
		inventoryGroup.GET("/consumables", h.Consumables)
		inventoryGroup.POST("/consumables", h.AddConsumable)
		inventoryGroup.POST("/consumables/:id/issue", h.IssueConsumable)

		healthGroup := api.Group("/health")
		healthGroup.GET("/profile", mine, h.HealthProfile)
		healthGroup.PUT("/profile", submit, h.SaveHealthProfile)
		healthGroup.POST("/sickleave", submit, h.RequestSickLeave)
		healthGroup.GET("/sickleave/mine", mine, listOwned[model.SickLeave](rec.Health.SickLeaves, "account_id"))
		healthGroup.GET("/sickleave", all, listAll[model.SickLeave](rec.Health.SickLeaves, records.Preload("Account")))
		healthGroup.POST("/sickleave/:id/:action", manage, act[model.SickLeave](rec.Health.SickLeaves, "approve", "reject"))
		healthGroup.GET("/events", mine, h.Emergencies)
		healthGroup.POST("/events", manage, h.LogEmergency)
		healthGroup.GET("/isolation", all, h.IsolationRooms)
		healthGroup.PUT("/isolation", manage, h.SetIsolationRoom)

		messGroup := api.Group("/mess")
		messGroup.GET("/plan", mine, h.MealPlan)
		messGroup.PUT("/plan", manage, h.SetMealPlan)
		messGroup.GET("/rsvp/me", mine, h.MyRSVP)
		messGroup.POST("/rsvp", submit, h.SetRSVP)
		messGroup.GET("/headcount", all, h.Headcount)

		attendanceGroup := api.Group("/attendance")
		attendanceGroup.GET("/me", mine, h.AttendanceToday)
		attendanceGroup.POST("/checkin", submit, h.CheckIn)
		attendanceGroup.POST("/checkout", submit, h.CheckOut)
		attendanceGroup.GET("", all, h.Attendance)

		parkingGroup := api.Group("/parking")
		parkingGroup.POST("/vehicles", submit, h.RegisterVehicle)
		parkingGroup.GET("/vehicles/mine", mine, listOwned[model.Vehicle](rec.Parking.Vehicles, "account_id"))
		parkingGroup.GET("/vehicles", all, listAll[model.Vehicle](rec.Parking.Vehicles, records.Preload("Account")))
		parkingGroup.GET("/slots", all, h.Slots)
		parkingGroup.POST("/slots", manage, h.CreateSlot)
		parkingGroup.PATCH("/slots/:id", manage, h.UpdateSlot)
		parkingGroup.GET("/badges", all, h.Badges)
		parkingGroup.POST("/badges", manage, h.IssueBadge)
		parkingGroup.PATCH("/badges/:id", manage, h.UpdateBadge)

		housekeepingGroup := api.Group("/housekeeping", manage)
		housekeepingGroup.POST("", h.ScheduleCleaning)
		housekeepingGroup.GET("", h.CleaningLogs)
		housekeepingGroup.POST("/:id/:action", act[model.HousekeepingLog](rec.Housekeeping.Logs, "start", "complete", "miss"))

		inspectionGroup := api.Group("/inspections", manage)
		inspectionGroup.POST("", h.ScheduleInspection)
		inspectionGroup.GET("", listAll[model.InspectionLog](rec.Housekeeping.Inspections, records.OrderBy("date DESC")))
		inspectionGroup.POST("/damages", h.RaiseDamage)
		inspectionGroup.GET("/damages", listAll[model.DamageCharge](rec.Housekeeping.Damages, records.Preload("Account")))
		inspectionGroup.POST("/damages/:id/:action", act[model.DamageCharge](rec.Housekeeping.Damages, "bill", "pay", "waive"))
		inspectionGroup.POST("/:id/:action", act[model.InspectionLog](rec.Housekeeping.Inspections, "done", "followup"))

		api.GET("/analytics", require(auth.ActionAnalytics), h.Analytics)
		api.GET("/chat/history", require(auth.ActionChatHistory), h.ChatHistory)

		pushGroup := api.Group("", signedIn)
		pushGroup.GET("/subscriptions", h.GetSubscription)
		pushGroup.PUT("/subscriptions", h.PutSubscription)
		pushGroup.DELETE("/subscriptions", h.DeleteSubscription)
	}
	r.GET("/api/vapid_public_key", h.GetVAPIDPublicKey)

	return r
}
