package application

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	authDomain "github.com/saransh1220/libraria/internal/modules/auth/domain"
	"github.com/saransh1220/libraria/internal/modules/circulation/domain"
)

const (
	exportSheet    = "Issues"
	exportPageSize = 500
	dateLayout     = "2006-01-02"
)

var exportHeader = []interface{}{
	"Issue ID", "Book", "Student ID", "Issue Date", "Due Date", "Return Date", "Status", "Days Until Due", "Fine",
}

// ExportIssues renders the actor's institution register as an xlsx workbook.
// status narrows to issued or returned records; empty exports everything.
func (s *CirculationService) ExportIssues(ctx context.Context, actor *authDomain.Session, status domain.IssueStatus) (*bytes.Buffer, string, error) {
	if !actor.Role.IsStaff() {
		return nil, "", domain.ErrForbidden
	}

	issues, err := s.allInstitutionIssues(ctx, actor, status)
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(exportSheet, "A1", "I1", style)
	}
	_ = f.SetColWidth(exportSheet, "A", "C", 38)
	_ = f.SetColWidth(exportSheet, "D", "I", 14)

	for i, issue := range issues {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
		}
		if err := f.SetSheetRow(exportSheet, cell, exportRow(issue, now)); err != nil {
			return nil, "", fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("failed to write issue export", zap.Error(err))
		return nil, "", fmt.Errorf("%w: %v", domain.ErrExportFailed, err)
	}

	filename := fmt.Sprintf("issues-%s.xlsx", now.Format("20060102"))
	s.logger.Info("issue register exported",
		zap.String("institution_id", actor.InstitutionID.String()),
		zap.Int("rows", len(issues)))
	return buf, filename, nil
}

func (s *CirculationService) allInstitutionIssues(ctx context.Context, actor *authDomain.Session, status domain.IssueStatus) ([]domain.IssueRecord, error) {
	filter := domain.IssueFilter{
		InstitutionID: actor.InstitutionID,
		Status:        status,
		Limit:         exportPageSize,
	}

	var all []domain.IssueRecord
	for {
		page, total, err := s.repo.ListByInstitution(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < exportPageSize || len(all) >= total {
			return all, nil
		}
		filter.Offset += len(page)
	}
}

func exportRow(issue domain.IssueRecord, now time.Time) *[]interface{} {
	returned, daysUntilDue := "", ""
	if issue.ReturnDate != nil {
		returned = issue.ReturnDate.Format(dateLayout)
	}
	if issue.Active() {
		daysUntilDue = strconv.Itoa(domain.DaysUntilDue(issue.DueDate, now))
	}

	book := issue.BookTitle
	if book == "" {
		book = issue.BookID.String()
	}

	return &[]interface{}{
		issue.ID.String(),
		book,
		issue.StudentID.String(),
		issue.IssueDate.Format(dateLayout),
		issue.DueDate.Format(dateLayout),
		returned,
		string(issue.EffectiveStatus(now)),
		daysUntilDue,
		issue.Fine,
	}
}
