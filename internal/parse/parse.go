package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	dmRe   = regexp.MustCompile(`^dm:(\d+):(\d+)$`)
	roomRe = regexp.MustCompile(`(?i)^(?:room|rm|r)?[\s#-]*(\d{3,4})$`)
)

// DayLayout is the storage format of day keys.
const DayLayout = "2006-01-02"

// Day normalises a date parameter to a day key in loc. An empty value
// means the day containing now. Accepts a bare date or an RFC3339 timestamp.
func Day(raw string, now time.Time, loc *time.Location) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return now.In(loc).Format(DayLayout), nil
	}
	if t, err := time.ParseInLocation(DayLayout, s, loc); err == nil {
		return t.Format(DayLayout), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc).Format(DayLayout), nil
	}
	return "", fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", raw)
}

// Time parses an RFC3339 timestamp or a bare date (midnight in loc).
func Time(raw string, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(DayLayout, s, loc); err == nil {
		return t, nil
	}
	// Millisecond epoch, as sent by browser clients.
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q", raw)
}

// DirectRoom returns the chat room key for two accounts; the order of
// the arguments does not matter.
func DirectRoom(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("dm:%d:%d", a, b)
}

// IsDirectRoom reports whether room uses the direct-message prefix.
func IsDirectRoom(room string) bool {
	return strings.HasPrefix(room, "dm:")
}

// ParseDirectRoom extracts the two participants of a direct-message room.
// Only the canonical key produced by DirectRoom is accepted, so "dm:2:1"
// and "dm:01:2" are rejected.
func ParseDirectRoom(room string) (uint, uint, error) {
	m := dmRe.FindStringSubmatch(room)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid dm room %q", room)
	}
	a, errA := strconv.ParseUint(m[1], 10, 64)
	b, errB := strconv.ParseUint(m[2], 10, 64)
	if errA != nil || errB != nil {
		return 0, 0, fmt.Errorf("invalid dm room %q", room)
	}
	if DirectRoom(uint(a), uint(b)) != room {
		return 0, 0, fmt.Errorf("dm room %q is not in canonical order", room)
	}
	return uint(a), uint(b), nil
}

// RoomNumber parses a room label such as "101", "R-101" or "Room 214"
// and returns the number with its floor (the hundreds digit(s)).
func RoomNumber(raw string) (number, floor int, err error) {
	m := roomRe.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, 0, fmt.Errorf("unable to parse room number from %q", raw)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, fmt.Errorf("unable to parse room number from %q: %w", raw, err)
	}
	return n, FloorOf(n), nil
}

// FloorOf returns the floor encoded in a room number (101 -> 1, 1203 -> 12).
func FloorOf(number int) int {
	return number / 100
}
