package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marcusoji/Attendms/internal/attendance"
	"github.com/marcusoji/Attendms/internal/auth"
	"github.com/marcusoji/Attendms/internal/course"
	"github.com/marcusoji/Attendms/internal/identity"
)

const (
	hallLat = 6.51800
	hallLon = 3.39900
	nearLat = 6.51845
	farLat  = 6.56300
)

// ---------- fakes ----------

type fakeIdentityStore struct {
	mu       sync.Mutex
	students []identity.Student
	lects    []identity.Lecturer
	admins   []identity.Admin
}

func (f *fakeIdentityStore) CreateStudent(_ context.Context, st identity.Student) (identity.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.students {
		if other.MatNo == st.MatNo || other.Email == st.Email {
			return identity.Student{}, identity.ErrDuplicate
		}
	}
	st.ID = uuid.NewString()
	f.students = append(f.students, st)
	return st, nil
}

func (f *fakeIdentityStore) GetStudentByMatNo(_ context.Context, matNo string) (identity.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, st := range f.students {
		if st.MatNo == matNo {
			return st, nil
		}
	}
	return identity.Student{}, identity.ErrNotFound
}

func (f *fakeIdentityStore) GetStudent(_ context.Context, id string) (identity.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, st := range f.students {
		if st.ID == id {
			return st, nil
		}
	}
	return identity.Student{}, identity.ErrNotFound
}

func (f *fakeIdentityStore) SetStudentFaceChecked(_ context.Context, id string, checked bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.students {
		if f.students[i].ID == id {
			f.students[i].FaceChecked = checked
		}
	}
	return nil
}

func (f *fakeIdentityStore) CreateLecturer(_ context.Context, lec identity.Lecturer) (identity.Lecturer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.lects {
		if other.Email == lec.Email || other.LecturerID == lec.LecturerID {
			return identity.Lecturer{}, identity.ErrDuplicate
		}
	}
	lec.ID = uuid.NewString()
	f.lects = append(f.lects, lec)
	return lec, nil
}

func (f *fakeIdentityStore) GetLecturerByEmail(_ context.Context, email string) (identity.Lecturer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, lec := range f.lects {
		if lec.Email == email {
			return lec, nil
		}
	}
	return identity.Lecturer{}, identity.ErrNotFound
}

func (f *fakeIdentityStore) GetAdminByEmail(_ context.Context, email string) (identity.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, adm := range f.admins {
		if adm.Email == email {
			return adm, nil
		}
	}
	return identity.Admin{}, identity.ErrNotFound
}

type fakeCourseStore struct {
	mu      sync.Mutex
	courses []course.Course
}

func (f *fakeCourseStore) Create(_ context.Context, c course.Course) (course.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, other := range f.courses {
		if other.LecturerID == c.LecturerID && other.CourseCode == c.CourseCode {
			return course.Course{}, course.ErrDuplicate
		}
	}
	c.ID = uuid.NewString()
	f.courses = append(f.courses, c)
	return c, nil
}

func (f *fakeCourseStore) ListByLecturer(_ context.Context, lecturerID string) ([]course.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []course.Course
	for _, c := range f.courses {
		if c.LecturerID == lecturerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourseStore) GetOwned(_ context.Context, courseID, lecturerID string) (course.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.courses {
		if c.ID == courseID && c.LecturerID == lecturerID {
			return c, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (f *fakeCourseStore) Get(_ context.Context, courseID string) (course.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.courses {
		if c.ID == courseID {
			return c, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

type fakeAttendanceStore struct {
	mu      sync.Mutex
	codes   []attendance.Code
	records []attendance.Record
}

func (f *fakeAttendanceStore) InsertCode(_ context.Context, c attendance.Code) (attendance.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.NewString()
	f.codes = append(f.codes, c)
	return c, nil
}

func (f *fakeAttendanceStore) FindValidCode(_ context.Context, code string, now time.Time) (*attendance.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.codes {
		if f.codes[i].Code == code && f.codes[i].ExpiresAt.After(now) {
			c := f.codes[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceStore) FindExpiredCode(_ context.Context, code string, now time.Time) (*attendance.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.codes {
		if f.codes[i].Code == code && !f.codes[i].ExpiresAt.After(now) {
			c := f.codes[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceStore) HasRecordForDay(_ context.Context, studentID, courseID string, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	day := now.UTC().Format("2006-01-02")
	for _, rec := range f.records {
		if rec.StudentID == studentID && rec.CourseID == courseID && rec.MarkedAt.UTC().Format("2006-01-02") == day {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAttendanceStore) InsertRecord(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	day := rec.MarkedAt.UTC().Format("2006-01-02")
	for _, other := range f.records {
		if other.StudentID == rec.StudentID && other.CourseID == rec.CourseID && other.MarkedAt.UTC().Format("2006-01-02") == day {
			return attendance.Record{}, attendance.ErrAlreadyMarked
		}
	}
	rec.ID = uuid.NewString()
	f.records = append(f.records, rec)
	return rec, nil
}

func (f *fakeAttendanceStore) Records(_ context.Context, courseID string) ([]attendance.RecordDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.RecordDetail
	for _, rec := range f.records {
		if rec.CourseID == courseID {
			out = append(out, attendance.RecordDetail{ID: rec.ID, MarkedAt: rec.MarkedAt, StudentID: rec.StudentID, CourseID: rec.CourseID})
		}
	}
	return out, nil
}

func (f *fakeAttendanceStore) RecordsByDate(_ context.Context, courseID, date string) ([]attendance.RecordDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.RecordDetail
	for _, rec := range f.records {
		if rec.CourseID == courseID && rec.MarkedAt.UTC().Format("2006-01-02") == date {
			out = append(out, attendance.RecordDetail{ID: rec.ID, MarkedAt: rec.MarkedAt, StudentID: rec.StudentID, CourseID: rec.CourseID})
		}
	}
	return out, nil
}

func (f *fakeAttendanceStore) Sessions(_ context.Context, courseID string) ([]attendance.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	byDay := map[string]int{}
	for _, rec := range f.records {
		if rec.CourseID == courseID {
			byDay[rec.MarkedAt.UTC().Format("2006-01-02")]++
		}
	}
	var out []attendance.Session
	for day, n := range byDay {
		out = append(out, attendance.Session{Date: day, TotalMarked: n})
	}
	return out, nil
}

func (f *fakeAttendanceStore) Stats(_ context.Context, courseID string) (attendance.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	students := map[string]bool{}
	days := map[string]bool{}
	total := 0
	for _, rec := range f.records {
		if rec.CourseID == courseID {
			total++
			students[rec.StudentID] = true
			days[rec.MarkedAt.UTC().Format("2006-01-02")] = true
		}
	}
	return attendance.Stats{UniqueStudents: len(students), TotalRecords: total, TotalSessions: len(days)}, nil
}

func (f *fakeAttendanceStore) StudentHistory(_ context.Context, studentID string) ([]attendance.StudentRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.StudentRecord
	for _, rec := range f.records {
		if rec.StudentID == studentID {
			out = append(out, attendance.StudentRecord{ID: rec.ID, MarkedAt: rec.MarkedAt, CourseID: rec.CourseID})
		}
	}
	return out, nil
}

// ---------- harness ----------

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ids := identity.NewService(&fakeIdentityStore{})
	courses := course.NewService(&fakeCourseStore{})
	att := attendance.NewService(&fakeAttendanceStore{}, 10*time.Minute, 100)

	h := New(ids, courses, att, TokenConfig{
		Issuer:     "attendms-test",
		SigningKey: "test-signing-key",
		TTL:        time.Hour,
	}, nil, nil, nil, nil, nil)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	lecturer := api.Group("", h.RequireRole(auth.RoleLecturer))
	lecturer.POST("/courses", h.CreateCourse)
	lecturer.GET("/courses", h.ListCourses)
	lecturer.POST("/generate-code", h.GenerateCode)
	lecturer.GET("/attendance/:courseId", h.CourseRecords)
	lecturer.GET("/attendance/:courseId/sessions", h.CourseSessions)
	lecturer.GET("/attendance/:courseId/date/:date", h.CourseRecordsByDate)
	lecturer.GET("/courses/:courseId/stats", h.CourseStats)

	student := api.Group("", h.RequireRole(auth.RoleStudent))
	student.POST("/mark-attendance", h.MarkAttendance)
	student.GET("/student/attendance", h.StudentHistory)

	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func registerStudent(t *testing.T, r *gin.Engine, matNo string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("userType", "student"))
	require.NoError(t, w.WriteField("matNo", matNo))
	require.NoError(t, w.WriteField("name", "Ada Obi"))
	require.NoError(t, w.WriteField("email", matNo+"@test.edu"))
	require.NoError(t, w.WriteField("phone", "0800"))
	fw, err := w.CreateFormFile("faceScan", "face.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not-really-a-jpeg"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func registerLecturer(t *testing.T, r *gin.Engine, email, password string) {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/register", "", gin.H{
		"userType":    "lecturer",
		"name":        "Dr. Bala",
		"lecturer_id": "LEC-" + email,
		"email":       email,
		"phone":       "0802",
		"password":    password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func loginToken(t *testing.T, r *gin.Engine, body gin.H) string {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/login", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tok, _ := decode(t, rec)["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func lecturerToken(t *testing.T, r *gin.Engine) string {
	registerLecturer(t, r, "bala@test.edu", "s3cret")
	return loginToken(t, r, gin.H{"userType": "lecturer", "email": "bala@test.edu", "password": "s3cret"})
}

func studentToken(t *testing.T, r *gin.Engine) string {
	registerStudent(t, r, "CSC/20/001")
	return loginToken(t, r, gin.H{"userType": "student", "matNo": "CSC/20/001"})
}

func createCourse(t *testing.T, r *gin.Engine, token string) string {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/courses", token, gin.H{"courseCode": "CSC101", "courseTitle": "Intro"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	crs, _ := decode(t, rec)["course"].(map[string]any)
	id, _ := crs["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func generateCode(t *testing.T, r *gin.Engine, token, courseID string) string {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/api/generate-code", token, gin.H{"courseId": courseID, "lat": hallLat, "lon": hallLon})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	code, _ := decode(t, rec)["code"].(string)
	require.Len(t, code, 6)
	return code
}

// ---------- tests ----------

func TestLoginLecturer(t *testing.T) {
	r := newTestRouter(t)
	registerLecturer(t, r, "bala@test.edu", "s3cret")

	t.Run("success", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{"userType": "lecturer", "email": "bala@test.edu", "password": "s3cret"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, decode(t, rec)["token"])
	})
	t.Run("wrong password", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{"userType": "lecturer", "email": "bala@test.edu", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid credentials", decode(t, rec)["message"])
	})
	t.Run("unknown email", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{"userType": "lecturer", "email": "ghost@test.edu", "password": "s3cret"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "User not found", decode(t, rec)["message"])
	})
	t.Run("missing password", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{"userType": "lecturer", "email": "bala@test.edu"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginStudent(t *testing.T) {
	r := newTestRouter(t)
	registerStudent(t, r, "CSC/20/001")

	t.Run("returns face scan data and token", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{"userType": "student", "matNo": "CSC/20/001"})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.NotEmpty(t, body["token"])
		assert.NotEmpty(t, body["faceScanData"])
	})
	t.Run("unknown mat no", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{"userType": "student", "matNo": "CSC/20/999"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
	t.Run("invalid user type", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/login", "", gin.H{"userType": "superuser"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRegisterStudentDuplicate(t *testing.T) {
	r := newTestRouter(t)
	registerStudent(t, r, "CSC/20/001")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("matNo", "CSC/20/001")
	_ = w.WriteField("name", "Other")
	_ = w.WriteField("email", "other@test.edu")
	_ = w.WriteField("phone", "0801")
	fw, _ := w.CreateFormFile("faceScan", "face.jpg")
	_, _ = fw.Write([]byte("img"))
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterStudentMissingFaceScan(t *testing.T) {
	r := newTestRouter(t)
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	_ = w.WriteField("matNo", "CSC/20/002")
	_ = w.WriteField("name", "No Face")
	_ = w.WriteField("email", "noface@test.edu")
	_ = w.WriteField("phone", "0801")
	_ = w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/register", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCourses(t *testing.T) {
	r := newTestRouter(t)
	tok := lecturerToken(t, r)

	t.Run("requires auth", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/courses", "", gin.H{"courseCode": "CSC101", "courseTitle": "Intro"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
	t.Run("create and list", func(t *testing.T) {
		createCourse(t, r, tok)
		rec := doJSON(t, r, http.MethodGet, "/api/courses", tok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, "CSC101", list[0]["course_code"])
	})
	t.Run("duplicate code conflicts", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/courses", tok, gin.H{"courseCode": "csc101", "courseTitle": "Intro again"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
	t.Run("missing title", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/courses", tok, gin.H{"courseCode": "CSC102"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGenerateCode(t *testing.T) {
	r := newTestRouter(t)
	tok := lecturerToken(t, r)
	courseID := createCourse(t, r, tok)

	t.Run("success", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/generate-code", tok, gin.H{"courseId": courseID, "lat": hallLat, "lon": hallLon})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.Len(t, body["code"], 6)
		expiresAt, err := time.Parse(time.RFC3339, body["expiresAt"].(string))
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().UTC().Add(10*time.Minute), expiresAt, 5*time.Second)
	})
	t.Run("missing location", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/generate-code", tok, gin.H{"courseId": courseID})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("unowned course", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/generate-code", tok, gin.H{"courseId": "someone-elses", "lat": hallLat, "lon": hallLon})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
	t.Run("student role rejected", func(t *testing.T) {
		stuTok := studentToken(t, r)
		rec := doJSON(t, r, http.MethodPost, "/api/generate-code", stuTok, gin.H{"courseId": courseID, "lat": hallLat, "lon": hallLon})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestMarkAttendanceFlow(t *testing.T) {
	r := newTestRouter(t)
	lecTok := lecturerToken(t, r)
	stuTok := studentToken(t, r)
	courseID := createCourse(t, r, lecTok)
	code := generateCode(t, r, lecTok, courseID)

	t.Run("success within geofence", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/mark-attendance", stuTok, gin.H{"code": code, "lat": nearLat, "lon": hallLon})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode(t, rec)
		assert.Equal(t, "Attendance marked successfully", body["message"])
		assert.Equal(t, courseID, body["courseId"])
		assert.Less(t, body["distance"].(float64), 100.0)
	})
	t.Run("second attempt same day conflicts", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/mark-attendance", stuTok, gin.H{"code": code, "lat": nearLat, "lon": hallLon})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
	t.Run("history shows the record", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/student/attendance", stuTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		assert.Len(t, list, 1)
	})
}

func TestMarkAttendanceFailures(t *testing.T) {
	r := newTestRouter(t)
	lecTok := lecturerToken(t, r)
	stuTok := studentToken(t, r)
	courseID := createCourse(t, r, lecTok)
	code := generateCode(t, r, lecTok, courseID)

	t.Run("too far", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/mark-attendance", stuTok, gin.H{"code": code, "lat": farLat, "lon": hallLon})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, decode(t, rec)["message"], "m away")
	})
	t.Run("unknown code", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/mark-attendance", stuTok, gin.H{"code": "ZZZZZZ", "lat": nearLat, "lon": hallLon})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode(t, rec)["message"], "invalid or expired")
	})
	t.Run("missing fields", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/mark-attendance", stuTok, gin.H{"code": code})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("lecturer role rejected", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodPost, "/api/mark-attendance", lecTok, gin.H{"code": code, "lat": nearLat, "lon": hallLon})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestReportingOwnership(t *testing.T) {
	r := newTestRouter(t)
	lecTok := lecturerToken(t, r)
	stuTok := studentToken(t, r)
	courseID := createCourse(t, r, lecTok)
	code := generateCode(t, r, lecTok, courseID)

	rec := doJSON(t, r, http.MethodPost, "/api/mark-attendance", stuTok, gin.H{"code": code, "lat": nearLat, "lon": hallLon})
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("sessions", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/attendance/"+courseID+"/sessions", lecTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var sessions []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sessions))
		require.Len(t, sessions, 1)
		assert.Equal(t, 1.0, sessions[0]["total_students"])
	})
	t.Run("stats", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/courses/"+courseID+"/stats", lecTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		stats := decode(t, rec)["statistics"].(map[string]any)
		assert.Equal(t, 1.0, stats["unique_students"])
		assert.Equal(t, 1.0, stats["total_attendance_records"])
	})
	t.Run("by date", func(t *testing.T) {
		today := time.Now().UTC().Format("2006-01-02")
		rec := doJSON(t, r, http.MethodGet, "/api/attendance/"+courseID+"/date/"+today, lecTok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})
	t.Run("bad date", func(t *testing.T) {
		rec := doJSON(t, r, http.MethodGet, "/api/attendance/"+courseID+"/date/not-a-date", lecTok, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("unowned course is not found", func(t *testing.T) {
		other := newTestRouter(t)
		otherTok := lecturerToken(t, other)
		rec := doJSON(t, other, http.MethodGet, "/api/attendance/"+courseID+"/sessions", otherTok, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
