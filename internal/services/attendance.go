package services

import (
	"context"
	"net/http"

	"semaphore/dashboard/internal/result"
)

const FilterCourseID = "courseId"

type AttendanceService struct {
	api API
}

// List returns one page of attendance records. The backend names the array
// field "reports".
func (s *AttendanceService) List(ctx context.Context, params ListParams) result.Result[Page[AttendanceRecord]] {
	return fetch[Page[AttendanceRecord]](ctx, s.api, PathAttendance, params.Values())
}

func (s *AttendanceService) Sign(ctx context.Context, studentID string, req SignAttendanceRequest) result.Result[AttendanceRecord] {
	return send[AttendanceRecord](ctx, s.api, http.MethodPost, signAttendancePath(studentID), req)
}

func (s *AttendanceService) SignWithoutLocation(ctx context.Context, studentID string, req SignWithoutLocationRequest) result.Result[AttendanceRecord] {
	return send[AttendanceRecord](ctx, s.api, http.MethodPost, signWithoutLocationPath(studentID), req)
}

type EnrollmentService struct {
	api API
}

func (s *EnrollmentService) List(ctx context.Context, studentID string) result.Result[[]Enrollment] {
	return fetch[[]Enrollment](ctx, s.api, enrollmentsPath(studentID), nil)
}

func (s *EnrollmentService) Get(ctx context.Context, studentID, courseID string) result.Result[Enrollment] {
	return fetch[Enrollment](ctx, s.api, enrollmentPath(studentID, courseID), nil)
}

func (s *EnrollmentService) Create(ctx context.Context, studentID string, req EnrollmentRequest) result.Result[Enrollment] {
	return send[Enrollment](ctx, s.api, http.MethodPost, enrollmentsPath(studentID), req)
}

func (s *EnrollmentService) Delete(ctx context.Context, studentID, courseID string) result.Result[Empty] {
	return send[Empty](ctx, s.api, http.MethodDelete, enrollmentPath(studentID, courseID), nil)
}
