package identity

import (
	"errors"
	"time"
)

// Sentinel errors surfaced by the identity service. Handlers map these to
// HTTP statuses.
var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicate          = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
)

// Student is authenticated by matriculation number; the face match itself is
// decided client-side against FaceScanData.
type Student struct {
	ID           string    `json:"id"`
	MatNo        string    `json:"mat_no"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	FaceScanData string    `json:"-"`
	FaceChecked  bool      `json:"face_checked"`
	CreatedAt    time.Time `json:"created_at"`
}

// Lecturer authenticates with email and password.
type Lecturer struct {
	ID           string    `json:"id"`
	LecturerID   string    `json:"lecturer_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Admin authenticates with email and password.
type Admin struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
