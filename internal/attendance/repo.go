package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists codes and ledger rows in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// InsertCode writes a new attendance code.
func (r *Repository) InsertCode(ctx context.Context, c Code) (Code, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_codes (id, code, course_id, lecturer_lat, lecturer_lon, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.Code, c.CourseID, c.LecturerLat, c.LecturerLon, c.ExpiresAt, c.CreatedAt)
	if err != nil {
		return Code{}, err
	}
	return c, nil
}

// FindValidCode returns the code row matching the string with expiry strictly
// after now. No match returns (nil, nil).
func (r *Repository) FindValidCode(ctx context.Context, code string, now time.Time) (*Code, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, course_id, lecturer_lat, lecturer_lon, expires_at, created_at
		FROM attendance_codes
		WHERE code = $1 AND expires_at > $2
		ORDER BY expires_at DESC
		LIMIT 1
	`, code, now)
	var c Code
	if err := row.Scan(&c.ID, &c.Code, &c.CourseID, &c.LecturerLat, &c.LecturerLon, &c.ExpiresAt, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// FindExpiredCode returns the most recently expired row for the code string,
// used only to produce an "expired N minutes ago" message.
func (r *Repository) FindExpiredCode(ctx context.Context, code string, now time.Time) (*Code, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, code, course_id, lecturer_lat, lecturer_lon, expires_at, created_at
		FROM attendance_codes
		WHERE code = $1 AND expires_at <= $2
		ORDER BY expires_at DESC
		LIMIT 1
	`, code, now)
	var c Code
	if err := row.Scan(&c.ID, &c.Code, &c.CourseID, &c.LecturerLat, &c.LecturerLon, &c.ExpiresAt, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// HasRecordForDay reports whether a ledger row exists for the student, course
// and the UTC calendar day containing now.
func (r *Repository) HasRecordForDay(ctx context.Context, studentID, courseID string, now time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM attendance_records
			WHERE student_id = $1 AND course_id = $2
			  AND (marked_at AT TIME ZONE 'UTC')::date = ($3 AT TIME ZONE 'UTC')::date
		)
	`, studentID, courseID, now).Scan(&exists)
	return exists, err
}

// InsertRecord appends to the ledger. A unique violation on the per-day index
// maps to ErrAlreadyMarked; this is the backstop for two redemptions racing
// past HasRecordForDay.
func (r *Repository) InsertRecord(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.MarkedAt.IsZero() {
		rec.MarkedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (id, student_id, course_id, marked_at)
		VALUES ($1, $2, $3, $4)
	`, rec.ID, rec.StudentID, rec.CourseID, rec.MarkedAt)
	if isUniqueViolation(err) {
		return Record{}, ErrAlreadyMarked
	}
	if err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Records returns the full ledger for a course, newest first.
func (r *Repository) Records(ctx context.Context, courseID string) ([]RecordDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ar.id, ar.marked_at, s.id, s.name, s.mat_no, ar.course_id, c.course_code, c.course_title
		FROM attendance_records ar
		JOIN students s ON ar.student_id = s.id
		JOIN courses c ON ar.course_id = c.id
		WHERE ar.course_id = $1
		ORDER BY ar.marked_at DESC
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDetails(rows)
}

// RecordsByDate returns one day's attendees for a course, earliest first.
// date is a UTC calendar date in YYYY-MM-DD form.
func (r *Repository) RecordsByDate(ctx context.Context, courseID, date string) ([]RecordDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ar.id, ar.marked_at, s.id, s.name, s.mat_no, ar.course_id, c.course_code, c.course_title
		FROM attendance_records ar
		JOIN students s ON ar.student_id = s.id
		JOIN courses c ON ar.course_id = c.id
		WHERE ar.course_id = $1 AND (ar.marked_at AT TIME ZONE 'UTC')::date = $2::date
		ORDER BY ar.marked_at ASC
	`, courseID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDetails(rows)
}

// Sessions groups the course ledger by UTC day.
func (r *Repository) Sessions(ctx context.Context, courseID string) ([]Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT (ar.marked_at AT TIME ZONE 'UTC')::date::text,
		       COUNT(ar.id),
		       MIN(ar.marked_at),
		       MAX(ar.marked_at),
		       c.course_code,
		       c.course_title
		FROM attendance_records ar
		JOIN courses c ON ar.course_id = c.id
		WHERE ar.course_id = $1
		GROUP BY (ar.marked_at AT TIME ZONE 'UTC')::date, c.course_code, c.course_title
		ORDER BY (ar.marked_at AT TIME ZONE 'UTC')::date DESC
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		if err := rows.Scan(&s.Date, &s.TotalMarked, &s.SessionStart, &s.SessionEnd, &s.CourseCode, &s.CourseTitle); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Stats aggregates a course's ledger.
func (r *Repository) Stats(ctx context.Context, courseID string) (Stats, error) {
	var st Stats
	var first, latest sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT ar.student_id),
		       COUNT(ar.id),
		       COUNT(DISTINCT (ar.marked_at AT TIME ZONE 'UTC')::date),
		       MIN((ar.marked_at AT TIME ZONE 'UTC')::date)::text,
		       MAX((ar.marked_at AT TIME ZONE 'UTC')::date)::text
		FROM attendance_records ar
		WHERE ar.course_id = $1
	`, courseID).Scan(&st.UniqueStudents, &st.TotalRecords, &st.TotalSessions, &first, &latest)
	if err != nil {
		return Stats{}, err
	}
	st.FirstSession = first.String
	st.LatestSession = latest.String
	return st, nil
}

// StudentHistory returns the student's records across all courses, newest first.
func (r *Repository) StudentHistory(ctx context.Context, studentID string) ([]StudentRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ar.id, ar.marked_at, ar.course_id, c.course_code, c.course_title
		FROM attendance_records ar
		JOIN courses c ON ar.course_id = c.id
		WHERE ar.student_id = $1
		ORDER BY ar.marked_at DESC
	`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []StudentRecord
	for rows.Next() {
		var rec StudentRecord
		if err := rows.Scan(&rec.ID, &rec.MarkedAt, &rec.CourseID, &rec.CourseCode, &rec.CourseTitle); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanDetails(rows *sql.Rows) ([]RecordDetail, error) {
	var details []RecordDetail
	for rows.Next() {
		var d RecordDetail
		if err := rows.Scan(&d.ID, &d.MarkedAt, &d.StudentID, &d.StudentName, &d.MatNo, &d.CourseID, &d.CourseCode, &d.CourseTitle); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
