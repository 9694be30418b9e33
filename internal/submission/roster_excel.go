package submission

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

type RosterImportRowError struct {
	Row    int    `json:"row"`
	UserID string `json:"user_id,omitempty"`
	Error  string `json:"error"`
}

type RosterImportReport struct {
	TotalRows   int                    `json:"total_rows"`
	SuccessRows int                    `json:"success_rows"`
	FailedRows  int                    `json:"failed_rows"`
	Errors      []RosterImportRowError `json:"errors"`
}

// ImportRosterExcel bulk-registers students from a spreadsheet. Required
// columns: user_id, user_name. Optional: exams_enrolled, a semicolon-separated
// list of exam names. Rows that collide with existing users are reported, not
// fatal.
func (s *Service) ImportRosterExcel(ctx context.Context, r io.Reader) (*RosterImportReport, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel sheet is empty")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, errors.New("no data rows found")
	}

	header := map[string]int{}
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"user_id", "user_name"} {
		if _, ok := header[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	report := &RosterImportReport{Errors: make([]RosterImportRowError, 0)}
	for i := 1; i < len(rows); i++ {
		rowNo := i + 1
		row := rows[i]
		report.TotalRows++

		get := func(key string) string {
			idx, ok := header[key]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		userID := get("user_id")
		userName := get("user_name")
		enrolled := splitEnrolled(get("exams_enrolled"))

		if userID == "" || userName == "" {
			report.FailedRows++
			report.Errors = append(report.Errors, RosterImportRowError{
				Row:    rowNo,
				UserID: userID,
				Error:  "user_id and user_name are required",
			})
			continue
		}

		if _, err := s.RegisterUser(ctx, RegisterUserInput{
			UserID:        userID,
			UserName:      userName,
			ExamsEnrolled: enrolled,
		}); err != nil {
			report.FailedRows++
			report.Errors = append(report.Errors, RosterImportRowError{
				Row:    rowNo,
				UserID: userID,
				Error:  err.Error(),
			})
			continue
		}

		report.SuccessRows++
	}

	return report, nil
}

// ExportRosterExcel writes all users to a spreadsheet with the same columns
// the import expects.
func (s *Service) ExportRosterExcel(ctx context.Context) ([]byte, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	headers := []string{"user_id", "user_name", "exams_enrolled", "submitted_exams", "is_active"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, u := range users {
		row := i + 2
		submitted := make([]string, 0, len(u.ExamAnswers))
		for _, a := range u.ExamAnswers {
			submitted = append(submitted, a.ExamName)
		}
		values := []any{
			u.UserID,
			u.UserName,
			strings.Join(u.ExamsEnrolled, ";"),
			strings.Join(submitted, ";"),
			u.IsActive,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "E", 24)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func splitEnrolled(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
