package auth

import "hostel-backend/internal/model"

// Action names a role-gated operation.
type Action string

const (
	ActionAuthenticated Action = "authenticated"

	ActionRoomsList Action = "rooms.list"
	ActionRoomsSeed Action = "rooms.seed"

	ActionBookingSubmit   Action = "booking.submit"
	ActionBookingListMine Action = "booking.list_mine"
	ActionBookingListAll  Action = "booking.list_all"
	ActionBookingDecide   Action = "booking.decide"

	ActionRecordSubmit   Action = "record.submit"
	ActionRecordListMine Action = "record.list_mine"
	ActionRecordListAll  Action = "record.list_all"
	ActionRecordManage   Action = "record.manage"

	ActionNoticeManage Action = "notice.manage"
	ActionAnalytics    Action = "analytics.view"
	ActionUsersList    Action = "users.list"
	ActionChatHistory  Action = "chat.history"
)

var (
	students = []model.Role{model.RoleStudent}
	admins   = []model.Role{model.RoleAdmin}
	everyone = []model.Role{model.RoleStudent, model.RoleAdmin}
)

// policy maps each action to the roles allowed to perform it.
var policy = map[Action][]model.Role{
	ActionAuthenticated: everyone,

	ActionRoomsList: everyone,
	ActionRoomsSeed: admins,

	ActionBookingSubmit:   students,
	ActionBookingListMine: everyone,
	ActionBookingListAll:  admins,
	ActionBookingDecide:   admins,

	ActionRecordSubmit:   everyone,
	ActionRecordListMine: everyone,
	ActionRecordListAll:  admins,
	ActionRecordManage:   admins,

	ActionNoticeManage: admins,
	ActionAnalytics:    admins,
	ActionUsersList:    everyone,
	ActionChatHistory:  everyone,
}

// Allowed reports whether role may perform action. Unknown actions are denied.
func Allowed(role model.Role, action Action) bool {
	for _, r := range policy[action] {
		if r == role {
			return true
		}
	}
	return false
}
