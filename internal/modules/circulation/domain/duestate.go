package domain

import "time"

// DueSoonWindowDays is how many days ahead of the due date a loan counts as due soon
const DueSoonWindowDays = 3

// DueState is the reminder category of an active loan on a given day
type DueState string

const (
	DueStateNormal  DueState = "normal"
	DueStateDueSoon DueState = "due_soon"
	DueStateOverdue DueState = "overdue"
)

// StartOfDay returns local midnight of t in loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DaysUntilDue is the number of calendar days from now's day to the due day,
// both taken in now's location. It is zero on the due date and negative after it.
func DaysUntilDue(dueDate, now time.Time) int {
	loc := now.Location()
	dy, dm, dd := dueDate.In(loc).Date()
	ny, nm, nd := now.Date()
	// compare as UTC dates so DST shifts never produce fractional days
	due := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(due.Sub(today).Hours() / 24)
}

// Classify places a due date relative to now. A book due today is already overdue.
func Classify(dueDate, now time.Time) DueState {
	days := DaysUntilDue(dueDate, now)
	switch {
	case days <= 0:
		return DueStateOverdue
	case days <= DueSoonWindowDays:
		return DueStateDueSoon
	default:
		return DueStateNormal
	}
}
