// Package export renders attendance summaries as spreadsheets.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"semaphore/dashboard/internal/attendance"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatYAML Format = "yaml"

	SheetName = "Attendance Data"
)

var ErrUnsupportedFormat = errors.New("unsupported_format")

var (
	summaryHeader = []string{"Course", "TotalStudents", "AverageAttendance", "TotalSessions"}
	detailHeader  = []string{"Course", "StudentName", "TotalClasses", "AttendedClasses", "AttendancePercentage"}
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatXLSX:
		return FormatXLSX, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatYAML:
		return "application/yaml"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

// Filename names an export the way the dashboard download does, e.g.
// detailed_attendance_2024-03-04.xlsx.
func Filename(f Format, detailed bool, now time.Time) string {
	prefix := "attendance"
	if detailed {
		prefix = "detailed_attendance"
	}
	return fmt.Sprintf("%s_%s.%s", prefix, now.UTC().Format(time.DateOnly), f)
}

type table struct {
	header []string
	rows   [][]any
}

func summaryTable(summaries []attendance.CourseSummary) table {
	t := table{header: summaryHeader, rows: make([][]any, 0, len(summaries))}
	for _, s := range summaries {
		t.rows = append(t.rows, []any{s.CourseName, s.TotalStudents, percentLabel(s.AverageAttendance), s.TotalSessions})
	}
	return t
}

func detailTable(details []attendance.StudentDetail) table {
	t := table{header: detailHeader, rows: make([][]any, 0, len(details))}
	for _, d := range details {
		t.rows = append(t.rows, []any{d.CourseName, d.StudentName, d.TotalClasses, d.AttendedClasses, percentLabel(d.AttendancePercentage)})
	}
	return t
}

func percentLabel(p int) string {
	return fmt.Sprintf("%d%%", p)
}

// Write renders the summaries, or their per-student rows when detailed is
// set, to w.
func Write(w io.Writer, f Format, summaries []attendance.CourseSummary, detailed bool) error {
	if f == FormatYAML {
		return writeYAML(w, summaries, detailed)
	}
	t := summaryTable(summaries)
	if detailed {
		t = detailTable(attendance.Details(summaries))
	}
	switch f {
	case FormatCSV:
		return writeCSV(w, t)
	case FormatXLSX:
		return writeXLSX(w, t)
	}
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
}

func writeCSV(w io.Writer, t table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.header); err != nil {
		return err
	}
	record := make([]string, len(t.header))
	for _, row := range t.rows {
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeXLSX(w io.Writer, t table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	header := make([]any, len(t.header))
	for i, h := range t.header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, summaries []attendance.CourseSummary, detailed bool) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	var doc any = map[string]any{"courses": summaries}
	if detailed {
		doc = map[string]any{"students": attendance.Details(summaries)}
	}
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
