package attendance

import "time"

// Code is an ephemeral redemption code tied to a course and the issuing
// lecturer's position. Code strings are not unique across time; the
// non-expired lookup filter is what disambiguates them at redemption.
type Code struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	CourseID    string    `json:"course_id"`
	LecturerLat float64   `json:"lecturer_lat"`
	LecturerLon float64   `json:"lecturer_lon"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Record is one immutable ledger entry.
type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	CourseID  string    `json:"course_id"`
	MarkedAt  time.Time `json:"marked_at"`
}

// RecordDetail is a ledger entry joined with student and course info for
// lecturer reports.
type RecordDetail struct {
	ID          string    `json:"id"`
	MarkedAt    time.Time `json:"marked_at"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	MatNo       string    `json:"mat_no"`
	CourseID    string    `json:"course_id"`
	CourseCode  string    `json:"course_code"`
	CourseTitle string    `json:"course_title"`
}

// StudentRecord is a ledger entry joined with course info for a student's
// own history.
type StudentRecord struct {
	ID          string    `json:"id"`
	MarkedAt    time.Time `json:"marked_at"`
	CourseID    string    `json:"course_id"`
	CourseCode  string    `json:"course_code"`
	CourseTitle string    `json:"course_title"`
}

// Session groups ledger rows for one course and UTC day.
type Session struct {
	Date         string    `json:"attendance_date"`
	TotalMarked  int       `json:"total_students"`
	SessionStart time.Time `json:"session_start"`
	SessionEnd   time.Time `json:"session_end"`
	CourseCode   string    `json:"course_code"`
	CourseTitle  string    `json:"course_title"`
}

// Stats aggregates a course's whole ledger.
type Stats struct {
	UniqueStudents int    `json:"unique_students"`
	TotalRecords   int    `json:"total_attendance_records"`
	TotalSessions  int    `json:"total_sessions"`
	FirstSession   string `json:"first_session,omitempty"`
	LatestSession  string `json:"latest_session,omitempty"`
}

// RedemptionResult confirms a successful redemption.
type RedemptionResult struct {
	CourseID  string    `json:"course_id"`
	DistanceM float64   `json:"distance_m"`
	MarkedAt  time.Time `json:"marked_at"`
}
