package domain

import (
	"math"
	"time"
)

// FinePolicy charges a flat amount per calendar day a book is kept past its due date
type FinePolicy struct {
	PerDay   float64
	Currency string
}

// DaysLate counts whole days between the due day and the return day. Returning
// on the due date costs nothing.
func DaysLate(dueDate, returnedAt time.Time) int {
	return max(0, -DaysUntilDue(dueDate, returnedAt))
}

// Compute returns the fine for a return, rounded to cents
func (p FinePolicy) Compute(dueDate, returnedAt time.Time) float64 {
	if p.PerDay <= 0 {
		return 0
	}
	return math.Round(float64(DaysLate(dueDate, returnedAt))*p.PerDay*100) / 100
}
