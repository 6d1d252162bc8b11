// Package attendance rolls flat attendance records up into per-course and
// per-student statistics.
package attendance

import (
	"time"
)

const (
	StatusPresent = "Present"

	UnknownCourse  = "Unknown Course"
	UnknownStudent = "Unknown Student"
)

type Record struct {
	StudentID  string
	CourseID   string
	Status     string
	RecordedAt time.Time
}

type StudentSummary struct {
	StudentID    string `json:"studentId" yaml:"studentId"`
	StudentName  string `json:"studentName" yaml:"studentName"`
	PresentCount int    `json:"presentCount" yaml:"presentCount"`
	TotalCount   int    `json:"totalCount" yaml:"totalCount"`
}

type CourseSummary struct {
	CourseID          string           `json:"courseId" yaml:"courseId"`
	CourseName        string           `json:"courseName" yaml:"courseName"`
	TotalStudents     int              `json:"totalStudents" yaml:"totalStudents"`
	TotalSessions     int              `json:"totalSessions" yaml:"totalSessions"`
	AverageAttendance int              `json:"averageAttendance" yaml:"averageAttendance"`
	Students          []StudentSummary `json:"students" yaml:"students"`
}

// Lookup resolves display names. Unresolved ids fall back to placeholders.
type Lookup interface {
	CourseName(id string) (string, bool)
	StudentName(id string) (string, bool)
}

// Names is a map backed Lookup.
type Names struct {
	Courses  map[string]string
	Students map[string]string
}

func (n Names) CourseName(id string) (string, bool) {
	name, ok := n.Courses[id]
	return name, ok && name != ""
}

func (n Names) StudentName(id string) (string, bool) {
	name, ok := n.Students[id]
	return name, ok && name != ""
}

type courseAcc struct {
	summary  CourseSummary
	students map[string]int
	days     map[string]struct{}
	present  int
	total    int
}

// Aggregate groups records by course in first-seen order. Sessions are the
// distinct local calendar days on which a course has records.
func Aggregate(records []Record, lookup Lookup) []CourseSummary {
	return AggregateIn(records, lookup, time.Local)
}

// AggregateIn is Aggregate with the calendar day computed in loc.
func AggregateIn(records []Record, lookup Lookup, loc *time.Location) []CourseSummary {
	if loc == nil {
		loc = time.Local
	}
	order := make([]string, 0)
	courses := make(map[string]*courseAcc)

	for _, rec := range records {
		acc, ok := courses[rec.CourseID]
		if !ok {
			acc = &courseAcc{
				summary: CourseSummary{
					CourseID:   rec.CourseID,
					CourseName: courseName(lookup, rec.CourseID),
					Students:   make([]StudentSummary, 0),
				},
				students: make(map[string]int),
				days:     make(map[string]struct{}),
			}
			courses[rec.CourseID] = acc
			order = append(order, rec.CourseID)
		}

		acc.days[rec.RecordedAt.In(loc).Format(time.DateOnly)] = struct{}{}

		idx, ok := acc.students[rec.StudentID]
		if !ok {
			idx = len(acc.summary.Students)
			acc.students[rec.StudentID] = idx
			acc.summary.Students = append(acc.summary.Students, StudentSummary{
				StudentID:   rec.StudentID,
				StudentName: studentName(lookup, rec.StudentID),
			})
		}
		student := &acc.summary.Students[idx]
		student.TotalCount++
		acc.total++
		if rec.Status == StatusPresent {
			student.PresentCount++
			acc.present++
		}
	}

	out := make([]CourseSummary, 0, len(order))
	for _, id := range order {
		acc := courses[id]
		acc.summary.TotalStudents = len(acc.summary.Students)
		acc.summary.TotalSessions = len(acc.days)
		acc.summary.AverageAttendance = Percent(acc.present, acc.total)
		out = append(out, acc.summary)
	}
	return out
}

// Percent returns round(100*part/total) with halves rounded up, or 0 when
// total is not positive.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}

func courseName(lookup Lookup, id string) string {
	if lookup != nil {
		if name, ok := lookup.CourseName(id); ok {
			return name
		}
	}
	return UnknownCourse
}

func studentName(lookup Lookup, id string) string {
	if lookup != nil {
		if name, ok := lookup.StudentName(id); ok {
			return name
		}
	}
	return UnknownStudent
}
