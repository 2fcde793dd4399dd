package course

import (
	"context"
	"fmt"
	"strings"
)

// Store is the persistence surface the service needs. *Repository implements it.
type Store interface {
	Create(ctx context.Context, c Course) (Course, error)
	ListByLecturer(ctx context.Context, lecturerID string) ([]Course, error)
	GetOwned(ctx context.Context, courseID, lecturerID string) (Course, error)
	Get(ctx context.Context, courseID string) (Course, error)
}

// Service manages the course registry.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create registers a new course for the lecturer.
func (s *Service) Create(ctx context.Context, lecturerID, code, title string) (Course, error) {
	code = strings.TrimSpace(code)
	title = strings.TrimSpace(title)
	if code == "" || title == "" {
		return Course{}, fmt.Errorf("%w: courseCode and courseTitle are required", ErrValidation)
	}
	return s.store.Create(ctx, Course{
		CourseCode:  strings.ToUpper(code),
		CourseTitle: title,
		LecturerID:  lecturerID,
	})
}

// ListByLecturer returns the lecturer's owned courses.
func (s *Service) ListByLecturer(ctx context.Context, lecturerID string) ([]Course, error) {
	return s.store.ListByLecturer(ctx, lecturerID)
}

// GetOwned verifies ownership and returns the course.
func (s *Service) GetOwned(ctx context.Context, courseID, lecturerID string) (Course, error) {
	if strings.TrimSpace(courseID) == "" {
		return Course{}, fmt.Errorf("%w: courseId parameter is required", ErrValidation)
	}
	return s.store.GetOwned(ctx, courseID, lecturerID)
}
