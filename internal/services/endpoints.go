package services

import (
	"fmt"
	"net/url"
)

const (
	PathFaculties = "/faculties"
	PathLevels    = "/levels"

	PathClassSchedules          = "/class-schedules"
	PathClassSchedulesByCourses = "/class-schedules/courses"

	PathDepartments = "/departments"

	PathLogin              = "/authentication/login"
	PathRegister           = "/authentication"
	PathResetPassword      = "/authentication/reset-password"
	PathChangePassword     = "/authentication/change-password"
	PathGenerateResetToken = "/authentication/generate-reset-token"
	PathRefreshToken       = "/token/refresh"

	PathLecturers  = "/lecturers"
	PathStudents   = "/students"
	PathAttendance = "/attendance"
)

// PublicEndpoints never carry a bearer token.
var PublicEndpoints = []string{PathLogin, PathRegister}

func facultyPath(id string) string {
	return fmt.Sprintf("/faculties/%s", url.PathEscape(id))
}

func levelPath(id string) string {
	return fmt.Sprintf("/levels/%s", url.PathEscape(id))
}

func classSchedulePath(id string) string {
	return fmt.Sprintf("/class-schedules/%s", url.PathEscape(id))
}

func classroomsPath(facultyID string) string {
	return fmt.Sprintf("/faculties/%s/classrooms", url.PathEscape(facultyID))
}

func classroomPath(facultyID, id string) string {
	return fmt.Sprintf("/faculties/%s/classrooms/%s", url.PathEscape(facultyID), url.PathEscape(id))
}

func facultyDepartmentsPath(facultyID string) string {
	return fmt.Sprintf("/faculties/%s/departments", url.PathEscape(facultyID))
}

func departmentPath(facultyID, id string) string {
	return fmt.Sprintf("/faculties/%s/departments/%s", url.PathEscape(facultyID), url.PathEscape(id))
}

func coursesPath(departmentID string) string {
	return fmt.Sprintf("/departments/%s/courses", url.PathEscape(departmentID))
}

func coursePath(departmentID, id string) string {
	return fmt.Sprintf("/departments/%s/courses/%s", url.PathEscape(departmentID), url.PathEscape(id))
}

func lecturerPath(id string) string {
	return fmt.Sprintf("/lecturers/%s", url.PathEscape(id))
}

func studentPath(id string) string {
	return fmt.Sprintf("/students/%s", url.PathEscape(id))
}

func signAttendancePath(studentID string) string {
	return fmt.Sprintf("/attendance/%s", url.PathEscape(studentID))
}

func signWithoutLocationPath(studentID string) string {
	return fmt.Sprintf("/attendance/%s/signin", url.PathEscape(studentID))
}

func enrollmentsPath(studentID string) string {
	return fmt.Sprintf("/enrollments/%s", url.PathEscape(studentID))
}

func enrollmentPath(studentID, courseID string) string {
	return fmt.Sprintf("/enrollments/%s/%s", url.PathEscape(studentID), url.PathEscape(courseID))
}
