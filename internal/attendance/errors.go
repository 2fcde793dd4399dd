package attendance

import (
	"errors"
	"fmt"
	"time"
)

// ErrAlreadyMarked means a record already exists for the student, course and
// UTC calendar day.
var ErrAlreadyMarked = errors.New("attendance already marked for this course today")

// ErrValidation tags missing or malformed request fields.
var ErrValidation = errors.New("validation failed")

// CodeError is returned when the presented code has no currently valid match.
// ExpiredAgo is advisory detail for user feedback; zero when the code simply
// never existed.
type CodeError struct {
	ExpiredAgo time.Duration
}

func (e *CodeError) Error() string {
	if e.ExpiredAgo > 0 {
		mins := int(e.ExpiredAgo.Minutes())
		secs := int(e.ExpiredAgo.Seconds()) % 60
		return fmt.Sprintf("attendance code expired %d minutes and %d seconds ago", mins, secs)
	}
	return "invalid or expired attendance code"
}

// TooFarError fails the geofence gate. DistanceM is rounded for the message.
type TooFarError struct {
	DistanceM float64
	MaxM      float64
}

func (e *TooFarError) Error() string {
	return fmt.Sprintf("you are too far from the class location (%.0fm away), maximum allowed distance: %.0fm", e.DistanceM, e.MaxM)
}
