// Package services exposes one typed service per backend resource. Every
// call returns a result.Result and never a raw transport error.
package services

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"semaphore/dashboard/internal/apiclient"
	"semaphore/dashboard/internal/result"
	"semaphore/dashboard/internal/session"
	"semaphore/dashboard/internal/validation"
)

// API is the subset of apiclient.Client the services depend on.
type API interface {
	Get(ctx context.Context, path string, params url.Values) (*apiclient.Response, error)
	Post(ctx context.Context, path string, body any) (*apiclient.Response, error)
	Put(ctx context.Context, path string, body any) (*apiclient.Response, error)
	Delete(ctx context.Context, path string) (*apiclient.Response, error)
}

// Empty is the payload of calls whose response body is ignored.
type Empty struct{}

type Services struct {
	Auth           *AuthService
	Faculties      *FacultyService
	Levels         *LevelService
	Departments    *DepartmentService
	Courses        *CourseService
	Lecturers      *LecturerService
	Students       *StudentService
	ClassSchedules *ClassScheduleService
	Classrooms     *ClassroomService
	Attendance     *AttendanceService
	Enrollments    *EnrollmentService
}

func New(api API, store *session.Store, logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	return &Services{
		Auth:           &AuthService{api: api, store: store, logger: logger},
		Faculties:      &FacultyService{api: api},
		Levels:         &LevelService{api: api},
		Departments:    &DepartmentService{api: api},
		Courses:        &CourseService{api: api},
		Lecturers:      &LecturerService{api: api},
		Students:       &StudentService{api: api},
		ClassSchedules: &ClassScheduleService{api: api},
		Classrooms:     &ClassroomService{api: api},
		Attendance:     &AttendanceService{api: api},
		Enrollments:    &EnrollmentService{api: api},
	}
}

func fetch[T any](ctx context.Context, api API, path string, params url.Values) result.Result[T] {
	return result.Execute(ctx, func(ctx context.Context) (T, error) {
		var out T
		resp, err := api.Get(ctx, path, params)
		if err != nil {
			return out, err
		}
		err = resp.Decode(&out)
		return out, err
	})
}

// send validates body when it is non-nil, then issues the call and decodes
// the response into T.
func send[T any](ctx context.Context, api API, method, path string, body any) result.Result[T] {
	return result.Execute(ctx, func(ctx context.Context) (T, error) {
		var out T
		if body != nil {
			if err := validation.Struct(body); err != nil {
				return out, err
			}
		}
		var (
			resp *apiclient.Response
			err  error
		)
		switch method {
		case http.MethodPut:
			resp, err = api.Put(ctx, path, body)
		case http.MethodDelete:
			resp, err = api.Delete(ctx, path)
		default:
			resp, err = api.Post(ctx, path, body)
		}
		if err != nil {
			return out, err
		}
		if _, ignored := any(&out).(*Empty); ignored {
			return out, nil
		}
		err = resp.Decode(&out)
		return out, err
	})
}
