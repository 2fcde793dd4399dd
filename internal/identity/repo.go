package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository persists users in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateStudent inserts a student. A duplicate mat_no or email maps to
// ErrDuplicate via the unique constraints.
func (r *Repository) CreateStudent(ctx context.Context, st Student) (Student, error) {
	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	st.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO students (id, mat_no, name, email, phone, face_scan_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, st.ID, st.MatNo, st.Name, st.Email, st.Phone, st.FaceScanData, st.CreatedAt)
	if isUniqueViolation(err) {
		return Student{}, ErrDuplicate
	}
	if err != nil {
		return Student{}, err
	}
	return st, nil
}

// GetStudentByMatNo returns the student for a matriculation number.
func (r *Repository) GetStudentByMatNo(ctx context.Context, matNo string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, mat_no, name, email, phone, face_scan_data, face_checked, created_at
		FROM students WHERE mat_no = $1
	`, matNo)
	return scanStudent(row)
}

// GetStudent returns a student by id.
func (r *Repository) GetStudent(ctx context.Context, id string) (Student, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, mat_no, name, email, phone, face_scan_data, face_checked, created_at
		FROM students WHERE id = $1
	`, id)
	return scanStudent(row)
}

// SetStudentFaceChecked records the outcome of the enrollment image check.
func (r *Repository) SetStudentFaceChecked(ctx context.Context, id string, checked bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE students SET face_checked = $2 WHERE id = $1`, id, checked)
	return err
}

// CreateLecturer inserts a lecturer.
func (r *Repository) CreateLecturer(ctx context.Context, lec Lecturer) (Lecturer, error) {
	if lec.ID == "" {
		lec.ID = uuid.NewString()
	}
	lec.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lecturers (id, lecturer_id, name, email, phone, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, lec.ID, lec.LecturerID, lec.Name, lec.Email, lec.Phone, lec.PasswordHash, lec.CreatedAt)
	if isUniqueViolation(err) {
		return Lecturer{}, ErrDuplicate
	}
	if err != nil {
		return Lecturer{}, err
	}
	return lec, nil
}

// GetLecturerByEmail returns the lecturer for an email.
func (r *Repository) GetLecturerByEmail(ctx context.Context, email string) (Lecturer, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, lecturer_id, name, email, phone, password_hash, created_at
		FROM lecturers WHERE email = $1
	`, email)
	var lec Lecturer
	err := row.Scan(&lec.ID, &lec.LecturerID, &lec.Name, &lec.Email, &lec.Phone, &lec.PasswordHash, &lec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Lecturer{}, ErrNotFound
	}
	return lec, err
}

// GetAdminByEmail returns the admin for an email.
func (r *Repository) GetAdminByEmail(ctx context.Context, email string) (Admin, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, created_at
		FROM admins WHERE email = $1
	`, email)
	var adm Admin
	err := row.Scan(&adm.ID, &adm.Name, &adm.Email, &adm.PasswordHash, &adm.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Admin{}, ErrNotFound
	}
	return adm, err
}

func scanStudent(row *sql.Row) (Student, error) {
	var st Student
	err := row.Scan(&st.ID, &st.MatNo, &st.Name, &st.Email, &st.Phone, &st.FaceScanData, &st.FaceChecked, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrNotFound
	}
	return st, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
