package domain

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	circulationDomain "github.com/saransh1220/libraria/internal/modules/circulation/domain"
	reminderDomain "github.com/saransh1220/libraria/internal/modules/reminder/domain"
)

// ReminderSummary is what the dashboard's reminder run did
type ReminderSummary struct {
	Created       int                           `json:"created"`
	Deduplicated  int                           `json:"deduplicated"`
	Skipped       []reminderDomain.SkippedIssue `json:"skipped"`
	Failures      []reminderDomain.IssueFailure `json:"failures"`
	LockContended bool                          `json:"lock_contended"`
}

func SummaryOf(r *reminderDomain.RunResult) ReminderSummary {
	return ReminderSummary{
		Created:       r.Created,
		Deduplicated:  r.Deduplicated,
		Skipped:       r.Skipped,
		Failures:      r.Failures,
		LockContended: r.LockContended,
	}
}

type StudentDashboard struct {
	IssuedCount         int                             `json:"issued_count"`
	OverdueCount        int                             `json:"overdue_count"`
	DueSoonCount        int                             `json:"due_soon_count"`
	ReturnedCount       int                             `json:"returned_count"`
	UnreadNotifications int                             `json:"unread_notifications"`
	TotalFines          float64                         `json:"total_fines"`
	Overdue             []circulationDomain.IssueRecord `json:"overdue"`
	DueSoon             []circulationDomain.IssueRecord `json:"due_soon"`
	Reminders           ReminderSummary                 `json:"reminders"`
}

// CatalogTotals is the stock of one institution's catalogue
type CatalogTotals struct {
	TotalTitles     int `json:"total_titles" db:"total_titles"`
	TotalCopies     int `json:"total_copies" db:"total_copies"`
	AvailableCopies int `json:"available_copies" db:"available_copies"`
}

type InstitutionDashboard struct {
	CatalogTotals
	ActiveIssues     int     `json:"active_issues"`
	OverdueIssues    int     `json:"overdue_issues"`
	DueSoonIssues    int     `json:"due_soon_issues"`
	OutstandingFines float64 `json:"outstanding_fines"`
}

type AdminDashboard struct {
	Institutions     int `json:"institutions"`
	PrivateLibraries int `json:"private_libraries"`
	Students         int `json:"students"`
	Librarians       int `json:"librarians"`
}

// DashboardRepository runs the aggregate queries behind the staff and admin views
type DashboardRepository interface {
	CatalogTotals(ctx context.Context, institutionID uuid.UUID) (*CatalogTotals, error)
	OutstandingFines(ctx context.Context, institutionID uuid.UUID) (float64, error)
	CountUsersByRole(ctx context.Context) (map[authDomain.Role]int, error)
}
