// Package rooms derives the room directory views shown on the dashboard grid.
package rooms

import (
	"sort"

	"hostel-backend/internal/model"
)

// State is the display state of a room.
type State string

const (
	StateAvailable   State = "available"
	StatePartial     State = "partial"
	StateBooked      State = "booked"
	StateMaintenance State = "maintenance"
)

const (
	padFloors   = 3
	padCapacity = 2
	padMaxSeq   = 2000
)

// Entry is one cell of the room summary grid.
type Entry struct {
	RoomNumber     int              `json:"roomNumber"`
	Capacity       int              `json:"capacity"`
	OccupantsCount int              `json:"occupantsCount"`
	Status         model.RoomStatus `json:"status"`
	State          State            `json:"state"`
	Floor          int              `json:"floor"`
	HostelName     string           `json:"hostelName,omitempty"`
	Building       int              `json:"building"`
	Synthetic      bool             `json:"synthetic,omitempty"`
}

// Stats are the landing page counters.
type Stats struct {
	TotalRooms       int `json:"totalRooms"`
	BookedRooms      int `json:"bookedRooms"`
	FullyBookedRooms int `json:"fullyBookedRooms"`
	AvailableRooms   int `json:"availableRooms"`
}

// StateOf computes the display state from status and occupancy.
func StateOf(status model.RoomStatus, occupants, capacity int) State {
	switch {
	case status == model.RoomMaintenance:
		return StateMaintenance
	case occupants == 0:
		return StateAvailable
	case occupants >= capacity:
		return StateBooked
	default:
		return StatePartial
	}
}

func buildingOf(floor int) int {
	if floor >= 3 {
		return 2
	}
	return 1
}

// Summary maps rooms to grid entries sorted by number and pads the result
// with synthetic rooms until it holds target entries. Synthetic numbers
// cycle through floors 1..3 as floor*100+seq and never repeat a number.
func Summary(rooms []model.Room, target int, hostelName string) []Entry {
	entries := make([]Entry, 0, max(len(rooms), target))
	seen := make(map[int]struct{}, cap(entries))
	for _, r := range rooms {
		status := r.Status
		if status == "" {
			status = model.RoomAvailable
		}
		entries = append(entries, Entry{
			RoomNumber:     r.Number,
			Capacity:       r.Capacity,
			OccupantsCount: len(r.Occupants),
			Status:         status,
			State:          StateOf(status, len(r.Occupants), r.Capacity),
			Floor:          r.Floor,
			HostelName:     r.HostelName,
			Building:       buildingOf(r.Floor),
		})
		seen[r.Number] = struct{}{}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].RoomNumber < entries[j].RoomNumber })

	for seq := 1; len(entries) < target && seq <= padMaxSeq; seq++ {
		for floor := 1; floor <= padFloors && len(entries) < target; floor++ {
			num := floor*100 + seq
			if _, ok := seen[num]; ok {
				continue
			}
			seen[num] = struct{}{}
			entries = append(entries, Entry{
				RoomNumber: num,
				Capacity:   padCapacity,
				Status:     model.RoomAvailable,
				State:      StateAvailable,
				Floor:      floor,
				HostelName: hostelName,
				Building:   buildingOf(floor),
				Synthetic:  true,
			})
		}
	}

	if target > 0 && len(entries) > target {
		entries = entries[:target]
	}
	return entries
}

// ComputeStats counts booked and full rooms. A positive target overrides
// the real room count as the total.
func ComputeStats(rooms []model.Room, target int) Stats {
	var s Stats
	for _, r := range rooms {
		n := len(r.Occupants)
		if n > 0 {
			s.BookedRooms++
		}
		if n >= r.Capacity {
			s.FullyBookedRooms++
		}
	}
	s.TotalRooms = len(rooms)
	if target > 0 {
		s.TotalRooms = target
	}
	s.AvailableRooms = max(s.TotalRooms-s.BookedRooms, 0)
	return s
}
