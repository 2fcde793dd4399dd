package store

import "context"

// Migrate applies the schema. Idempotent; safe to run at startup.
//
// attendance_records carries a unique index on (student_id, course_id, UTC day).
// That index is the only guard against two racing redemptions both passing the
// application-level dedup check, so it must not be dropped.
func (d *DB) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS students (
		id              TEXT PRIMARY KEY,
		mat_no          TEXT UNIQUE NOT NULL,
		name            TEXT NOT NULL,
		email           TEXT UNIQUE NOT NULL,
		phone           TEXT NOT NULL DEFAULT '',
		face_scan_data  TEXT NOT NULL DEFAULT '',
		face_checked    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS lecturers (
		id            TEXT PRIMARY KEY,
		lecturer_id   TEXT UNIQUE NOT NULL,
		name          TEXT NOT NULL,
		email         TEXT UNIQUE NOT NULL,
		phone         TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS admins (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS courses (
		id           TEXT PRIMARY KEY,
		course_code  TEXT NOT NULL,
		course_title TEXT NOT NULL,
		lecturer_id  TEXT NOT NULL REFERENCES lecturers(id),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (lecturer_id, course_code)
	);

	CREATE TABLE IF NOT EXISTS attendance_codes (
		id           TEXT PRIMARY KEY,
		code         TEXT NOT NULL,
		course_id    TEXT NOT NULL REFERENCES courses(id),
		lecturer_lat DOUBLE PRECISION NOT NULL,
		lecturer_lon DOUBLE PRECISION NOT NULL,
		expires_at   TIMESTAMPTZ NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_codes_code ON attendance_codes(code, expires_at);

	CREATE TABLE IF NOT EXISTS attendance_records (
		id         TEXT PRIMARY KEY,
		student_id TEXT NOT NULL REFERENCES students(id),
		course_id  TEXT NOT NULL REFERENCES courses(id),
		marked_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_records_course ON attendance_records(course_id, marked_at);
	CREATE UNIQUE INDEX IF NOT EXISTS uq_attendance_once_per_day
		ON attendance_records (student_id, course_id, ((marked_at AT TIME ZONE 'UTC')::date));
	`
	_, err := d.Client.ExecContext(ctx, schema)
	return err
}
