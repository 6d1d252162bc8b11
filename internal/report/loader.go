// Package report assembles attendance reports from the backend services.
package report

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"semaphore/dashboard/internal/attendance"
	"semaphore/dashboard/internal/result"
	"semaphore/dashboard/internal/services"
)

const defaultConcurrency = 4

var (
	ErrMissingDepartment = errors.New("missing_department")
	ErrNoAttendance      = errors.New("attendance_unavailable")
)

type Query struct {
	DepartmentID string
	CourseIDs    []string
	SearchTerm   string
	PageNumber   int
	PageSize     int
}

type Report struct {
	DepartmentID string                     `json:"departmentId"`
	GeneratedAt  time.Time                  `json:"generatedAt"`
	Courses      []attendance.CourseSummary `json:"courses"`
	Details      []attendance.StudentDetail `json:"details"`
}

type Loader struct {
	svc         *services.Services
	logger      *slog.Logger
	concurrency int
	now         func() time.Time
}

func NewLoader(svc *services.Services, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{svc: svc, logger: logger, concurrency: defaultConcurrency, now: time.Now}
}

// Load aggregates the attendance of a department's courses, or of
// q.CourseIDs when given. Name lookups that fail are logged and leave
// placeholders. Load fails only when no attendance could be fetched at all.
func (l *Loader) Load(ctx context.Context, q Query) (Report, error) {
	if q.DepartmentID == "" {
		return Report{}, ErrMissingDepartment
	}

	names := attendance.Names{Courses: map[string]string{}, Students: map[string]string{}}

	courses := l.svc.Courses.ListByDepartment(ctx, q.DepartmentID)
	courseIDs := q.CourseIDs
	if courses.Success() {
		for _, c := range courses.Value() {
			names.Courses[c.ID] = c.Title
			if len(q.CourseIDs) == 0 {
				courseIDs = append(courseIDs, c.ID)
			}
		}
	} else {
		l.logFailure("courses lookup failed", courses.Err(), "department_id", q.DepartmentID)
		if len(q.CourseIDs) == 0 {
			return Report{}, courses.Err()
		}
	}

	// Unfiltered: students enrolled from other departments attend these courses too.
	students := l.svc.Students.List(ctx, services.ListParams{PageSize: services.PageSizeAll})
	if students.Success() {
		for _, s := range students.Value().Items {
			names.Students[s.UserID] = s.FullName()
		}
	} else {
		l.logFailure("students lookup failed", students.Err(), "department_id", q.DepartmentID)
	}

	records, err := l.fetchAttendance(ctx, q, courseIDs)
	if err != nil {
		return Report{}, err
	}

	summaries := attendance.Aggregate(records, names)
	return Report{
		DepartmentID: q.DepartmentID,
		GeneratedAt:  l.now().UTC(),
		Courses:      summaries,
		Details:      attendance.Details(summaries),
	}, nil
}

func (l *Loader) fetchAttendance(ctx context.Context, q Query, courseIDs []string) ([]attendance.Record, error) {
	if len(courseIDs) == 0 {
		return []attendance.Record{}, nil
	}

	pageNumber := q.PageNumber
	if pageNumber <= 0 {
		pageNumber = 1
	}
	pageSize := q.PageSize
	if pageSize == 0 {
		pageSize = services.PageSizeAll
	}

	pages := make([]result.Result[services.Page[services.AttendanceRecord]], len(courseIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, id := range courseIDs {
		i, id := i, id
		g.Go(func() error {
			pages[i] = l.svc.Attendance.List(gctx, services.ListParams{
				PageNumber: pageNumber,
				PageSize:   pageSize,
				SearchTerm: q.SearchTerm,
				Filters:    map[string]string{services.FilterCourseID: id},
			})
			return nil
		})
	}
	_ = g.Wait()

	records := make([]attendance.Record, 0)
	var lastErr *result.Error
	fetched := 0
	for i, page := range pages {
		if !page.Success() {
			lastErr = page.Err()
			l.logFailure("attendance fetch failed", page.Err(), "course_id", courseIDs[i])
			continue
		}
		fetched++
		for _, r := range page.Value().Items {
			records = append(records, attendance.Record{
				StudentID:  r.StudentID,
				CourseID:   r.CourseID,
				Status:     r.Status,
				RecordedAt: r.RecordedAt.Time,
			})
		}
	}
	if fetched == 0 {
		return nil, errors.Join(ErrNoAttendance, lastErr)
	}
	return records, nil
}

func (l *Loader) logFailure(msg string, err *result.Error, args ...any) {
	args = append(args, "code", err.Code, "error", err.Message)
	l.logger.Warn(msg, args...)
}
