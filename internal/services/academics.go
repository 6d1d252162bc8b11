package services

import (
	"context"
	"net/http"
	"net/url"

	"semaphore/dashboard/internal/result"
)

type FacultyService struct {
	api API
}

func (s *FacultyService) List(ctx context.Context) result.Result[[]Faculty] {
	return fetch[[]Faculty](ctx, s.api, PathFaculties, nil)
}

func (s *FacultyService) Get(ctx context.Context, id string) result.Result[Faculty] {
	return fetch[Faculty](ctx, s.api, facultyPath(id), nil)
}

func (s *FacultyService) Create(ctx context.Context, req FacultyRequest) result.Result[Faculty] {
	return send[Faculty](ctx, s.api, http.MethodPost, PathFaculties, req)
}

type LevelService struct {
	api API
}

func (s *LevelService) List(ctx context.Context) result.Result[[]Level] {
	return fetch[[]Level](ctx, s.api, PathLevels, nil)
}

func (s *LevelService) Get(ctx context.Context, id string) result.Result[Level] {
	return fetch[Level](ctx, s.api, levelPath(id), nil)
}

func (s *LevelService) Create(ctx context.Context, req LevelRequest) result.Result[Level] {
	return send[Level](ctx, s.api, http.MethodPost, PathLevels, req)
}

type DepartmentService struct {
	api API
}

func (s *DepartmentService) List(ctx context.Context) result.Result[[]Department] {
	return fetch[[]Department](ctx, s.api, PathDepartments, nil)
}

func (s *DepartmentService) ListByFaculty(ctx context.Context, facultyID string) result.Result[[]Department] {
	return fetch[[]Department](ctx, s.api, facultyDepartmentsPath(facultyID), nil)
}

func (s *DepartmentService) Get(ctx context.Context, facultyID, id string) result.Result[Department] {
	return fetch[Department](ctx, s.api, departmentPath(facultyID, id), nil)
}

func (s *DepartmentService) Create(ctx context.Context, facultyID string, req DepartmentRequest) result.Result[Department] {
	return send[Department](ctx, s.api, http.MethodPost, facultyDepartmentsPath(facultyID), req)
}

type CourseService struct {
	api API
}

// ListByDepartment returns the department's courses. The backend wraps them
// in a "courses" field.
func (s *CourseService) ListByDepartment(ctx context.Context, departmentID string) result.Result[[]Course] {
	page := fetch[Page[Course]](ctx, s.api, coursesPath(departmentID), nil)
	return result.Map(page, func(p Page[Course]) []Course { return p.Items })
}

func (s *CourseService) Get(ctx context.Context, departmentID, id string) result.Result[Course] {
	return fetch[Course](ctx, s.api, coursePath(departmentID, id), nil)
}

func (s *CourseService) Create(ctx context.Context, departmentID string, req CourseRequest) result.Result[Course] {
	return send[Course](ctx, s.api, http.MethodPost, coursesPath(departmentID), req)
}

type ClassroomService struct {
	api API
}

func (s *ClassroomService) ListByFaculty(ctx context.Context, facultyID string) result.Result[[]Classroom] {
	return fetch[[]Classroom](ctx, s.api, classroomsPath(facultyID), nil)
}

func (s *ClassroomService) Get(ctx context.Context, facultyID, id string) result.Result[Classroom] {
	return fetch[Classroom](ctx, s.api, classroomPath(facultyID, id), nil)
}

func (s *ClassroomService) Create(ctx context.Context, facultyID string, req ClassroomRequest) result.Result[Classroom] {
	return send[Classroom](ctx, s.api, http.MethodPost, classroomsPath(facultyID), req)
}

func (s *ClassroomService) Delete(ctx context.Context, facultyID, id string) result.Result[Empty] {
	return send[Empty](ctx, s.api, http.MethodDelete, classroomPath(facultyID, id), nil)
}

type ClassScheduleService struct {
	api API
}

func (s *ClassScheduleService) List(ctx context.Context) result.Result[[]ClassSchedule] {
	return fetch[[]ClassSchedule](ctx, s.api, PathClassSchedules, nil)
}

func (s *ClassScheduleService) ListByCourses(ctx context.Context, courseIDs []string) result.Result[[]ClassSchedule] {
	params := url.Values{}
	for _, id := range courseIDs {
		params.Add("courseIds", id)
	}
	return fetch[[]ClassSchedule](ctx, s.api, PathClassSchedulesByCourses, params)
}

func (s *ClassScheduleService) Get(ctx context.Context, id string) result.Result[ClassSchedule] {
	return fetch[ClassSchedule](ctx, s.api, classSchedulePath(id), nil)
}

func (s *ClassScheduleService) Create(ctx context.Context, req ClassScheduleRequest) result.Result[ClassSchedule] {
	return send[ClassSchedule](ctx, s.api, http.MethodPost, PathClassSchedules, req)
}

func (s *ClassScheduleService) Update(ctx context.Context, id string, req ClassScheduleRequest) result.Result[ClassSchedule] {
	return send[ClassSchedule](ctx, s.api, http.MethodPut, classSchedulePath(id), req)
}

func (s *ClassScheduleService) Delete(ctx context.Context, id string) result.Result[Empty] {
	return send[Empty](ctx, s.api, http.MethodDelete, classSchedulePath(id), nil)
}
