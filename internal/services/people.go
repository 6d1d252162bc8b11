package services

import (
	"context"
	"net/http"

	"semaphore/dashboard/internal/result"
)

type LecturerService struct {
	api API
}

func (s *LecturerService) List(ctx context.Context, params ListParams) result.Result[Page[Lecturer]] {
	return fetch[Page[Lecturer]](ctx, s.api, PathLecturers, params.Values())
}

func (s *LecturerService) Get(ctx context.Context, id string) result.Result[Lecturer] {
	return fetch[Lecturer](ctx, s.api, lecturerPath(id), nil)
}

func (s *LecturerService) Create(ctx context.Context, req LecturerRequest) result.Result[Lecturer] {
	return send[Lecturer](ctx, s.api, http.MethodPost, PathLecturers, req)
}

func (s *LecturerService) Update(ctx context.Context, id string, req LecturerRequest) result.Result[Lecturer] {
	return send[Lecturer](ctx, s.api, http.MethodPut, lecturerPath(id), req)
}

type StudentService struct {
	api API
}

// List returns one page of students. Filters such as departmentId are passed
// through ListParams.Filters.
func (s *StudentService) List(ctx context.Context, params ListParams) result.Result[Page[Student]] {
	return fetch[Page[Student]](ctx, s.api, PathStudents, params.Values())
}

func (s *StudentService) Get(ctx context.Context, id string) result.Result[Student] {
	return fetch[Student](ctx, s.api, studentPath(id), nil)
}

// Create posts to the student's own path; students are created for an
// existing user id.
func (s *StudentService) Create(ctx context.Context, userID string, req StudentRequest) result.Result[Student] {
	return send[Student](ctx, s.api, http.MethodPost, studentPath(userID), req)
}

func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest) result.Result[Student] {
	return send[Student](ctx, s.api, http.MethodPut, studentPath(id), req)
}
