package records

import (
	"log"
	"time"

	"gorm.io/gorm"

	"hostel-backend/internal/realtime"
)

// Realtime events emitted by record keepers.
const (
	EventComplaintStatus = "complaint:status"
	EventContactNew      = "contact:new"
	EventNoticeNew       = "notice:new"
	EventNoticeUpdated   = "notice:updated"
	EventNoticeDeleted   = "notice:deleted"
)

// Notifier delivers a push message to an account's devices.
type Notifier interface {
	Notify(accountID uint, title, body string)
}

// Options configures the record keepers.
type Options struct {
	Location *time.Location
	// Curfew is "HH:MM"; check-ins at or after it are flagged.
	Curfew string
	// Push may be nil.
	Push Notifier
}

// Records bundles every record keeper behind one value for the API layer.
type Records struct {
	Complaints   *Complaints
	GatePasses   *GatePasses
	Visitors     *Visitors
	Packages     *Packages
	Contacts     *Contacts
	Notices      *Notices
	Assets       *Assets
	Inventory    *Inventory
	Health       *Health
	Mess         *Mess
	Attendance   *Attendance
	Parking      *Parking
	Housekeeping *Housekeeping

	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// New wires every record keeper to db. pub may be nil.
func New(db *gorm.DB, pub realtime.Publisher, opts Options) *Records {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	curfew, err := time.Parse("15:04", opts.Curfew)
	if err != nil {
		if opts.Curfew != "" {
			log.Printf("invalid curfew %q: %v. Using 22:00.", opts.Curfew, err)
		}
		curfew = time.Date(0, 1, 1, 22, 0, 0, 0, time.UTC)
	}

	return &Records{
		Complaints:   newComplaints(db, pub),
		GatePasses:   newGatePasses(db),
		Visitors:     newVisitors(db),
		Packages:     newPackages(db, opts.Push),
		Contacts:     newContacts(db, pub),
		Notices:      newNotices(db, pub),
		Assets:       newAssets(db),
		Inventory:    newInventory(db),
		Health:       newHealth(db),
		Mess:         newMess(db),
		Attendance:   newAttendance(db, loc, curfew.Hour()*60+curfew.Minute()),
		Parking:      newParking(db),
		Housekeeping: newHousekeeping(db, loc),
		db:           db,
		loc:          loc,
		now:          time.Now,
	}
}

// Location is the zone day keys are computed in.
func (r *Records) Location() *time.Location { return r.loc }
