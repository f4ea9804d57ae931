package domain

import (
	"errors"

	"github.com/google/uuid"

	notificationDomain "github.com/saransh1220/libraria/internal/modules/notification/domain"
)

// ErrDedupUnavailable means today's notifications could not be read, so the
// run cannot tell which reminders were already sent and creates none.
var ErrDedupUnavailable = errors.New("existing notifications unavailable")

const (
	SkipReasonBookNotFound = "book_not_found"
	FailureReasonCreate    = "create_failed"
)

// SkippedIssue is an active issue the run could not evaluate
type SkippedIssue struct {
	IssueID uuid.UUID `json:"issue_id"`
	BookID  uuid.UUID `json:"book_id"`
	Reason  string    `json:"reason"`
}

// IssueFailure is a reminder the run tried and failed to create
type IssueFailure struct {
	IssueID   uuid.UUID                           `json:"issue_id"`
	BookTitle string                              `json:"book_title"`
	Type      notificationDomain.NotificationType `json:"type"`
	Error     string                              `json:"error"`
}

// RunResult summarises one generator run
type RunResult struct {
	Notifications []notificationDomain.Notification `json:"notifications"`
	Created       int                               `json:"created"`
	Deduplicated  int                               `json:"deduplicated"`
	Skipped       []SkippedIssue                    `json:"skipped"`
	Failures      []IssueFailure                    `json:"failures"`
	LockContended bool                              `json:"lock_contended"`
}
