package attendance

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/marcusoji/Attendms/internal/geo"
)

// Store is the persistence surface the service needs. *Repository implements it.
type Store interface {
	InsertCode(ctx context.Context, c Code) (Code, error)
	FindValidCode(ctx context.Context, code string, now time.Time) (*Code, error)
	FindExpiredCode(ctx context.Context, code string, now time.Time) (*Code, error)
	HasRecordForDay(ctx context.Context, studentID, courseID string, now time.Time) (bool, error)
	InsertRecord(ctx context.Context, rec Record) (Record, error)
	Records(ctx context.Context, courseID string) ([]RecordDetail, error)
	RecordsByDate(ctx context.Context, courseID, date string) ([]RecordDetail, error)
	Sessions(ctx context.Context, courseID string) ([]Session, error)
	Stats(ctx context.Context, courseID string) (Stats, error)
	StudentHistory(ctx context.Context, studentID string) ([]StudentRecord, error)
}

// Service issues attendance codes and runs the redemption workflow.
type Service struct {
	store     Store
	codeTTL   time.Duration
	geofenceM float64
	now       func() time.Time
}

// NewService creates a service backed by a store. codeTTL bounds code
// validity; geofenceM is the maximum redemption distance in meters.
func NewService(store Store, codeTTL time.Duration, geofenceM float64) *Service {
	if codeTTL <= 0 {
		codeTTL = 10 * time.Minute
	}
	if geofenceM <= 0 {
		geofenceM = 100
	}
	return &Service{store: store, codeTTL: codeTTL, geofenceM: geofenceM, now: time.Now}
}

// IssueCode creates a time-boxed, location-tagged redemption code for a
// course. Expiry is absolute UTC so server and database clock settings
// cannot disagree. Course ownership is the caller's responsibility.
func (s *Service) IssueCode(ctx context.Context, courseID string, lat, lon float64) (Code, error) {
	if strings.TrimSpace(courseID) == "" {
		return Code{}, fmt.Errorf("%w: courseId is required", ErrValidation)
	}
	if !finite(lat) || !finite(lon) {
		return Code{}, fmt.Errorf("%w: lat and lon are required", ErrValidation)
	}
	issuedAt := s.now().UTC()
	return s.store.InsertCode(ctx, Code{
		Code:        newCodeString(),
		CourseID:    courseID,
		LecturerLat: lat,
		LecturerLon: lon,
		ExpiresAt:   issuedAt.Add(s.codeTTL),
	})
}

// Redeem validates a presented code through four short-circuiting gates:
// lookup+expiry, geofence, per-day dedup, then the ledger insert. The insert
// itself may still return ErrAlreadyMarked when a concurrent attempt won the
// race; callers treat that the same as the dedup gate firing.
func (s *Service) Redeem(ctx context.Context, studentID, presented string, lat, lon float64) (RedemptionResult, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(presented))
	if cleaned == "" {
		return RedemptionResult{}, fmt.Errorf("%w: code is required", ErrValidation)
	}
	now := s.now().UTC()

	code, err := s.store.FindValidCode(ctx, cleaned, now)
	if err != nil {
		return RedemptionResult{}, err
	}
	if code == nil {
		// Advisory only: report how stale an expired match is. Never
		// distinguishes "expired" from "never existed" in a way that
		// changes the outcome.
		if expired, lookupErr := s.store.FindExpiredCode(ctx, cleaned, now); lookupErr == nil && expired != nil {
			return RedemptionResult{}, &CodeError{ExpiredAgo: now.Sub(expired.ExpiresAt)}
		}
		return RedemptionResult{}, &CodeError{}
	}

	distance := geo.Distance(lat, lon, code.LecturerLat, code.LecturerLon)
	if distance > s.geofenceM {
		return RedemptionResult{}, &TooFarError{DistanceM: math.Round(distance), MaxM: s.geofenceM}
	}

	marked, err := s.store.HasRecordForDay(ctx, studentID, code.CourseID, now)
	if err != nil {
		return RedemptionResult{}, err
	}
	if marked {
		return RedemptionResult{}, ErrAlreadyMarked
	}

	rec, err := s.store.InsertRecord(ctx, Record{
		StudentID: studentID,
		CourseID:  code.CourseID,
		MarkedAt:  now,
	})
	if err != nil {
		return RedemptionResult{}, err
	}
	return RedemptionResult{
		CourseID:  code.CourseID,
		DistanceM: math.Round(distance),
		MarkedAt:  rec.MarkedAt,
	}, nil
}

// Records returns a course's full ledger.
func (s *Service) Records(ctx context.Context, courseID string) ([]RecordDetail, error) {
	return s.store.Records(ctx, courseID)
}

// RecordsByDate returns one day's attendees for a course.
func (s *Service) RecordsByDate(ctx context.Context, courseID, date string) ([]RecordDetail, error) {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrValidation)
	}
	return s.store.RecordsByDate(ctx, courseID, date)
}

// Sessions groups a course's ledger by UTC day.
func (s *Service) Sessions(ctx context.Context, courseID string) ([]Session, error) {
	return s.store.Sessions(ctx, courseID)
}

// Stats aggregates a course's ledger.
func (s *Service) Stats(ctx context.Context, courseID string) (Stats, error) {
	return s.store.Stats(ctx, courseID)
}

// StudentHistory returns a student's own records across courses.
func (s *Service) StudentHistory(ctx context.Context, studentID string) ([]StudentRecord, error) {
	return s.store.StudentHistory(ctx, studentID)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
