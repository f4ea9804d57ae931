package domain

import "time"

// OverdueIssues returns the active issues that classify as overdue on now's day
func OverdueIssues(issues []IssueRecord, now time.Time) []IssueRecord {
	return filterByState(issues, now, DueStateOverdue)
}

// DueSoonIssues returns the active issues that classify as due soon on now's day
func DueSoonIssues(issues []IssueRecord, now time.Time) []IssueRecord {
	return filterByState(issues, now, DueStateDueSoon)
}

func filterByState(issues []IssueRecord, now time.Time, state DueState) []IssueRecord {
	out := []IssueRecord{}
	for _, issue := range issues {
		if issue.Active() && Classify(issue.DueDate, now) == state {
			out = append(out, issue)
		}
	}
	return out
}

// TotalFines sums the fines charged on returned issues
func TotalFines(issues []IssueRecord) float64 {
	var total float64
	for _, issue := range issues {
		total += issue.Fine
	}
	return total
}

// CountByStatus counts issues by persisted status
func CountByStatus(issues []IssueRecord, status IssueStatus) int {
	n := 0
	for _, issue := range issues {
		if issue.Status == status {
			n++
		}
	}
	return n
}
