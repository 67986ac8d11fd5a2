// Package export renders a study plan as an Excel workbook.
package export

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/christopherklint97/studyr/internal/progress"
	"github.com/christopherklint97/studyr/internal/store"
)

var ErrNoSessions = errors.New("no sessions to export")

const (
	SessionsSheet = "Sessions"
	ProgressSheet = "Progress"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var sessionHeader = []any{"Day", "Date", "Subject", "Start", "End", "Hours", "Revision", "Done"}

// Workbook builds a two-sheet workbook: every session, and per-subject progress.
func Workbook(sessions []store.Session, sum progress.Summary) (*bytes.Buffer, error) {
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SessionsSheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}
	if _, err := f.NewSheet(ProgressSheet); err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("creating style: %w", err)
	}

	if err := writeRow(f, SessionsSheet, 1, sessionHeader); err != nil {
		return nil, err
	}
	if err := styleSheet(f, SessionsSheet, "H1", headerStyle, map[string]float64{"B": 12, "C": 24}); err != nil {
		return nil, err
	}

	for i, s := range sessions {
		start := s.StartTime.Local()
		end := s.EndTime.Local()
		row := []any{
			s.DayNumber,
			start.Format("2006-01-02"),
			s.Subject,
			start.Format("15:04"),
			end.Format("15:04"),
			roundHours(s.Hours()),
			yesNo(s.IsRevision),
			yesNo(s.Completed),
		}
		if err := writeRow(f, SessionsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := writeRow(f, ProgressSheet, 1, []any{"Subject", "Completed", "Total", "Percent"}); err != nil {
		return nil, err
	}
	if err := styleSheet(f, ProgressSheet, "D1", headerStyle, map[string]float64{"A": 24}); err != nil {
		return nil, err
	}

	for i, sp := range sum.Subjects {
		if err := writeRow(f, ProgressSheet, i+2, []any{sp.Subject, sp.Completed, sp.Total, sp.Percent}); err != nil {
			return nil, err
		}
	}
	totalRow := len(sum.Subjects) + 2
	if err := writeRow(f, ProgressSheet, totalRow, []any{"Overall", sum.Completed, sum.Total, sum.CompletionRate}); err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf, nil
}

// styleSheet applies the header style to A1:lastHeader and sets column widths.
func styleSheet(f *excelize.File, sheet, lastHeader string, style int, widths map[string]float64) error {
	if err := f.SetCellStyle(sheet, "A1", lastHeader, style); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("setting %s column %s width: %w", sheet, col, err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func roundHours(h float64) float64 {
	return float64(int(h*100+0.5)) / 100
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
