package identity

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Store is the persistence surface the service needs. *Repository implements it.
type Store interface {
	CreateStudent(ctx context.Context, st Student) (Student, error)
	GetStudentByMatNo(ctx context.Context, matNo string) (Student, error)
	GetStudent(ctx context.Context, id string) (Student, error)
	SetStudentFaceChecked(ctx context.Context, id string, checked bool) error
	CreateLecturer(ctx context.Context, lec Lecturer) (Lecturer, error)
	GetLecturerByEmail(ctx context.Context, email string) (Lecturer, error)
	GetAdminByEmail(ctx context.Context, email string) (Admin, error)
}

// Service handles registration and credential checks.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// RegisterStudent validates and persists a student profile with a reference
// face image.
func (s *Service) RegisterStudent(ctx context.Context, matNo, name, email, phone, faceScanData string) (Student, error) {
	matNo = strings.TrimSpace(matNo)
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if matNo == "" || name == "" || email == "" || phone == "" || faceScanData == "" {
		return Student{}, fmt.Errorf("%w: all fields and face scan are required for student registration", ErrValidation)
	}
	st := Student{
		MatNo:        strings.ToUpper(matNo),
		Name:         name,
		Email:        email,
		Phone:        phone,
		FaceScanData: faceScanData,
	}
	return s.store.CreateStudent(ctx, st)
}

// RegisterLecturer validates, hashes the password, and persists a lecturer.
func (s *Service) RegisterLecturer(ctx context.Context, lecturerID, name, email, phone, password string) (Lecturer, error) {
	lecturerID = strings.TrimSpace(lecturerID)
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if lecturerID == "" || name == "" || email == "" || phone == "" || strings.TrimSpace(password) == "" {
		return Lecturer{}, fmt.Errorf("%w: all fields are required for lecturer registration", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(password)), bcrypt.DefaultCost)
	if err != nil {
		return Lecturer{}, err
	}
	lec := Lecturer{
		LecturerID:   lecturerID,
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
	}
	return s.store.CreateLecturer(ctx, lec)
}

// LoginStudent resolves a matriculation number to the stored profile. The
// actual accept decision happens client-side by comparing the returned
// reference image against a fresh capture; the server only vouches for the
// mat number lookup.
func (s *Service) LoginStudent(ctx context.Context, matNo string) (Student, error) {
	matNo = strings.ToUpper(strings.TrimSpace(matNo))
	if matNo == "" {
		return Student{}, fmt.Errorf("%w: matriculation number is required", ErrValidation)
	}
	return s.store.GetStudentByMatNo(ctx, matNo)
}

// LoginLecturer verifies email+password for a lecturer.
func (s *Service) LoginLecturer(ctx context.Context, email, password string) (Lecturer, error) {
	lec, err := s.store.GetLecturerByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return Lecturer{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(lec.PasswordHash), []byte(password)) != nil {
		return Lecturer{}, ErrInvalidCredentials
	}
	return lec, nil
}

// LoginAdmin verifies email+password for an admin.
func (s *Service) LoginAdmin(ctx context.Context, email, password string) (Admin, error) {
	adm, err := s.store.GetAdminByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return Admin{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(adm.PasswordHash), []byte(password)) != nil {
		return Admin{}, ErrInvalidCredentials
	}
	return adm, nil
}
