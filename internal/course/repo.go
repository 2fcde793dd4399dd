package course

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists courses in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a course. A duplicate (lecturer, code) pair maps to
// ErrDuplicate via the unique constraint.
func (r *Repository) Create(ctx context.Context, c Course) (Course, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO courses (id, course_code, course_title, lecturer_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ID, c.CourseCode, c.CourseTitle, c.LecturerID, c.CreatedAt)
	if isUniqueViolation(err) {
		return Course{}, ErrDuplicate
	}
	if err != nil {
		return Course{}, err
	}
	return c, nil
}

// ListByLecturer returns the lecturer's courses ordered by course code.
func (r *Repository) ListByLecturer(ctx context.Context, lecturerID string) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, course_code, course_title, lecturer_id, created_at
		FROM courses WHERE lecturer_id = $1
		ORDER BY course_code ASC
	`, lecturerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.CourseCode, &c.CourseTitle, &c.LecturerID, &c.CreatedAt); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// GetOwned returns the course only when it belongs to the lecturer. Every
// lecturer-facing read goes through this check; there is no row-level
// security below the application layer.
func (r *Repository) GetOwned(ctx context.Context, courseID, lecturerID string) (Course, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, course_code, course_title, lecturer_id, created_at
		FROM courses WHERE id = $1 AND lecturer_id = $2
	`, courseID, lecturerID)
	var c Course
	err := row.Scan(&c.ID, &c.CourseCode, &c.CourseTitle, &c.LecturerID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrNotFound
	}
	return c, err
}

// Get returns a course by id.
func (r *Repository) Get(ctx context.Context, courseID string) (Course, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, course_code, course_title, lecturer_id, created_at
		FROM courses WHERE id = $1
	`, courseID)
	var c Course
	err := row.Scan(&c.ID, &c.CourseCode, &c.CourseTitle, &c.LecturerID, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Course{}, ErrNotFound
	}
	return c, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
