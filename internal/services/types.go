package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type Faculty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type Level struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Department struct {
	ID        string `json:"id"`
	FacultyID string `json:"facultyId,omitempty"`
	Name      string `json:"name"`
	Code      string `json:"code"`
}

type Course struct {
	ID           string `json:"id"`
	DepartmentID string `json:"departmentId,omitempty"`
	LevelID      string `json:"levelId,omitempty"`
	Title        string `json:"title"`
	Code         string `json:"code"`
	Description  string `json:"description,omitempty"`
	CreditUnits  int    `json:"creditUnits"`
}

type Lecturer struct {
	ID           string `json:"id"`
	UserID       string `json:"userId,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber,omitempty"`
	DepartmentID string `json:"departmentId,omitempty"`
}

type Student struct {
	UserID              string `json:"userId"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	MatriculationNumber string `json:"matriculationNumber"`
	Email               string `json:"email"`
	ProfileImageURL     string `json:"profileImageUrl,omitempty"`
	DepartmentID        string `json:"departmentId,omitempty"`
	LevelID             string `json:"levelId,omitempty"`
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

type Classroom struct {
	ID             string  `json:"id"`
	FacultyID      string  `json:"facultyId,omitempty"`
	Name           string  `json:"name"`
	Capacity       int     `json:"capacity"`
	TopLeftLat     float64 `json:"topLeftLat"`
	TopLeftLon     float64 `json:"topLeftLon"`
	TopRightLat    float64 `json:"topRightLat"`
	TopRightLon    float64 `json:"topRightLon"`
	BottomLeftLat  float64 `json:"bottomLeftLat"`
	BottomLeftLon  float64 `json:"bottomLeftLon"`
	BottomRightLat float64 `json:"bottomRightLat"`
	BottomRightLon float64 `json:"bottomRightLon"`
}

type ClassSchedule struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId"`
	ClassroomID string `json:"classroomId"`
	LecturerID  string `json:"lecturerId,omitempty"`
	DayOfWeek   string `json:"dayOfWeek"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

type AttendanceRecord struct {
	ID         string    `json:"id,omitempty"`
	StudentID  string    `json:"studentId"`
	CourseID   string    `json:"courseId"`
	Status     string    `json:"status"`
	RecordedAt Timestamp `json:"recordedAt"`
}

type Enrollment struct {
	ID         string    `json:"id,omitempty"`
	StudentID  string    `json:"studentId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt Timestamp `json:"enrolledAt,omitempty"`
}

// Timestamp accepts RFC 3339 values as well as zone-less ISO values, which
// are read in local time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if raw == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unsupported format %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// Requests

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type RegisterRequest struct {
	FirstName       string `json:"firstName" validate:"notblank"`
	LastName        string `json:"lastName" validate:"notblank"`
	Username        string `json:"username" validate:"notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,phone"`
	ProfileImageURL string `json:"profileImageUrl,omitempty" validate:"omitempty,url"`
}

type GenerateResetTokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Token       string `json:"token" validate:"notblank"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,nefield=CurrentPassword"`
}

type FacultyRequest struct {
	Name string `json:"name" validate:"notblank"`
	Code string `json:"code" validate:"notblank"`
}

type LevelRequest struct {
	Name string `json:"name" validate:"notblank"`
}

type DepartmentRequest struct {
	Name string `json:"name" validate:"notblank"`
	Code string `json:"code" validate:"notblank"`
}

type CourseRequest struct {
	Title       string `json:"title" validate:"notblank"`
	Code        string `json:"code" validate:"notblank"`
	Description string `json:"description,omitempty"`
	CreditUnits int    `json:"creditUnits" validate:"gte=0"`
	LevelID     string `json:"levelId" validate:"required"`
}

type LecturerRequest struct {
	FirstName    string `json:"firstName" validate:"notblank"`
	LastName     string `json:"lastName" validate:"notblank"`
	Email        string `json:"email" validate:"required,email"`
	PhoneNumber  string `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
	DepartmentID string `json:"departmentId,omitempty"`
}

type StudentRequest struct {
	FirstName           string `json:"firstName" validate:"notblank"`
	LastName            string `json:"lastName" validate:"notblank"`
	Email               string `json:"email" validate:"required,email"`
	MatriculationNumber string `json:"matriculationNumber" validate:"notblank"`
	DepartmentID        string `json:"departmentId,omitempty"`
	LevelID             string `json:"levelId,omitempty"`
	ProfileImageURL     string `json:"profileImageUrl,omitempty" validate:"omitempty,url"`
}

type ClassroomRequest struct {
	Name           string  `json:"name" validate:"notblank"`
	Capacity       int     `json:"capacity" validate:"gt=0"`
	TopLeftLat     float64 `json:"topLeftLat" validate:"latitude"`
	TopLeftLon     float64 `json:"topLeftLon" validate:"longitude"`
	TopRightLat    float64 `json:"topRightLat" validate:"latitude"`
	TopRightLon    float64 `json:"topRightLon" validate:"longitude"`
	BottomLeftLat  float64 `json:"bottomLeftLat" validate:"latitude"`
	BottomLeftLon  float64 `json:"bottomLeftLon" validate:"longitude"`
	BottomRightLat float64 `json:"bottomRightLat" validate:"latitude"`
	BottomRightLon float64 `json:"bottomRightLon" validate:"longitude"`
}

type ClassScheduleRequest struct {
	CourseID    string `json:"courseId" validate:"required"`
	ClassroomID string `json:"classroomId" validate:"required"`
	LecturerID  string `json:"lecturerId,omitempty"`
	DayOfWeek   string `json:"dayOfWeek" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime   string `json:"startTime" validate:"required,datetime=15:04"`
	EndTime     string `json:"endTime" validate:"required,datetime=15:04"`
}

type SignAttendanceRequest struct {
	CourseID  string  `json:"courseId" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

type SignWithoutLocationRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}

type EnrollmentRequest struct {
	CourseID string `json:"courseId" validate:"required"`
}
