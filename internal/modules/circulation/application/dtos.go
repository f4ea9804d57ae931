package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/saransh1220/libraria/internal/modules/circulation/domain"
)

// IssueRequest lends one copy of a book to a student of the actor's institution
type IssueRequest struct {
	BookID    uuid.UUID `json:"book_id"`
	StudentID uuid.UUID `json:"student_id"`
	DueDate   time.Time `json:"due_date"`
}

// IssueResponse decorates a record with its state as of the request
type IssueResponse struct {
	domain.IssueRecord
	EffectiveStatus domain.IssueStatus `json:"effective_status"`
	DueState        domain.DueState    `json:"due_state,omitempty"`
	DaysUntilDue    *int               `json:"days_until_due,omitempty"`
}

// IssueList is a page of issue records
type IssueList struct {
	Issues []IssueResponse `json:"issues"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func toIssueResponse(issue domain.IssueRecord, now time.Time) IssueResponse {
	resp := IssueResponse{
		IssueRecord:     issue,
		EffectiveStatus: issue.EffectiveStatus(now),
	}
	if issue.Active() {
		days := domain.DaysUntilDue(issue.DueDate, now)
		resp.DueState = domain.Classify(issue.DueDate, now)
		resp.DaysUntilDue = &days
	}
	return resp
}

func toIssueResponses(issues []domain.IssueRecord, now time.Time) []IssueResponse {
	out := make([]IssueResponse, len(issues))
	for i, issue := range issues {
		out[i] = toIssueResponse(issue, now)
	}
	return out
}
