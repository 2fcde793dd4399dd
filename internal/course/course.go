package course

import (
	"errors"
	"time"
)

// Sentinel errors surfaced by the course service.
var (
	ErrNotFound   = errors.New("course not found")
	ErrDuplicate  = errors.New("course with this code already exists")
	ErrValidation = errors.New("validation failed")
)

// Course is owned by exactly one lecturer. Course codes are unique per
// lecturer, not globally.
type Course struct {
	ID          string    `json:"id"`
	CourseCode  string    `json:"course_code"`
	CourseTitle string    `json:"course_title"`
	LecturerID  string    `json:"lecturer_id"`
	CreatedAt   time.Time `json:"created_at"`
}
