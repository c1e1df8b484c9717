package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/SAP-F-2025/recompletion-service/internal/models"
	"github.com/SAP-F-2025/recompletion-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

const (
	archiveSheet = "Archived completions"
	resetsSheet  = "Resets"
)

// ReportService exports the archived completion history of a course
type ReportService interface {
	ExportArchivedCompletions(ctx context.Context, courseID uint) ([]byte, error)
	ExportArchivedCompletionsCSV(ctx context.Context, courseID uint) ([]byte, error)
}

type reportService struct {
	completions repositories.CompletionRepository
	users       repositories.UserRepository
	auditLog    repositories.AuditLogRepository
	logger      *slog.Logger
}

func NewReportService(completions repositories.CompletionRepository, users repositories.UserRepository, auditLog repositories.AuditLogRepository, logger *slog.Logger) ReportService {
	return &reportService{
		completions: completions,
		users:       users,
		auditLog:    auditLog,
		logger:      logger,
	}
}

var archiveHeaders = []string{
	"User ID", "Username", "Full name", "Email", "Time enrolled", "Time started", "Time completed",
}

var resetHeaders = []string{"Time", "User ID", "Actor ID", "Trigger", "Warnings"}

// ExportArchivedCompletions builds a workbook with one sheet of archived completions and one
// sheet of resets from the audit log.
func (s *reportService) ExportArchivedCompletions(ctx context.Context, courseID uint) ([]byte, error) {
	rows, err := s.archiveRows(ctx, courseID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), archiveSheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	writeSheet(f, archiveSheet, archiveHeaders, rows)

	if s.auditLog != nil {
		entries, _, err := s.auditLog.List(ctx, repositories.AuditLogFilters{CourseID: courseID})
		if err != nil {
			return nil, fmt.Errorf("failed to load reset history: %w", err)
		}
		if _, err := f.NewSheet(resetsSheet); err != nil {
			return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
		}
		writeSheet(f, resetsSheet, resetHeaders, s.resetRows(ctx, entries))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.InfoContext(ctx, "Archived completions exported", "course_id", courseID, "rows", len(rows))
	return buf.Bytes(), nil
}

func (s *reportService) ExportArchivedCompletionsCSV(ctx context.Context, courseID uint) ([]byte, error) {
	rows, err := s.archiveRows(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)
	if err := writer.Write(archiveHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *reportService) archiveRows(ctx context.Context, courseID uint) ([][]string, error) {
	archived, err := s.completions.ListArchived(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load archived completions: %w", err)
	}

	ids := make([]uint, 0, len(archived))
	seen := make(map[uint]bool, len(archived))
	for _, a := range archived {
		if !seen[a.UserID] {
			seen[a.UserID] = true
			ids = append(ids, a.UserID)
		}
	}

	users := make(map[uint]models.User, len(ids))
	if len(ids) > 0 {
		list, err := s.users.GetByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("failed to load users: %w", err)
		}
		for _, u := range list {
			users[u.ID] = u
		}
	}

	rows := make([][]string, 0, len(archived))
	for _, a := range archived {
		u := users[a.UserID]
		rows = append(rows, []string{
			strconv.FormatUint(uint64(a.UserID), 10),
			u.Username,
			u.FullName(),
			u.Email,
			formatUnix(a.TimeEnrolled),
			formatUnix(a.TimeStarted),
			formatUnix(a.TimeCompleted),
		})
	}
	return rows, nil
}

func (s *reportService) resetRows(ctx context.Context, entries []models.RecompletionAuditLog) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		var warnings []string
		if len(e.Warnings) > 0 {
			if err := json.Unmarshal(e.Warnings, &warnings); err != nil {
				s.logger.WarnContext(ctx, "Unreadable reset warnings in audit log",
					"audit_id", e.ID, "course_id", e.CourseID, "user_id", e.UserID, "error", err)
			}
		}
		rows = append(rows, []string{
			e.CreatedAt.UTC().Format(time.RFC3339),
			strconv.FormatUint(uint64(e.UserID), 10),
			strconv.FormatUint(uint64(e.ActorID), 10),
			string(e.Trigger),
			strconv.Itoa(len(warnings)),
		})
	}
	return rows
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]string) {
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheet, cell, header)
	}
	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheet, cell, value)
		}
	}
}

func formatUnix(ts int64) string {
	if ts <= 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}
