package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/marcusoji/Attendms/internal/attendance"
	"github.com/marcusoji/Attendms/internal/auth"
)

type generateCodeRequest struct {
	CourseID string   `json:"courseId"`
	Lat      *float64 `json:"lat"`
	Lon      *float64 `json:"lon"`
}

// GenerateCode issues a short-lived attendance code pinned to the lecturer's
// position. Ownership of the course is re-verified before issuing.
func (h *Handler) GenerateCode(c *gin.Context) {
	var req generateCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if req.CourseID == "" || req.Lat == nil || req.Lon == nil {
		badRequest(c, "courseId, lat and lon are required")
		return
	}

	lec := auth.ContextIdentity(c)
	if _, err := h.courses.GetOwned(c.Request.Context(), req.CourseID, lec.ID); err != nil {
		fail(c, err)
		return
	}

	code, err := h.attendance.IssueCode(c.Request.Context(), req.CourseID, *req.Lat, *req.Lon)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":      code.Code,
		"expiresAt": code.ExpiresAt.UTC().Format(time.RFC3339),
		"message":   "Attendance code generated successfully",
	})
}

type markAttendanceRequest struct {
	Code string   `json:"code"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

// MarkAttendance redeems a presented code for the authenticated student.
func (h *Handler) MarkAttendance(c *gin.Context) {
	var req markAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if req.Code == "" || req.Lat == nil || req.Lon == nil {
		badRequest(c, "code, lat and lon are required")
		return
	}

	stu := auth.ContextIdentity(c)
	res, err := h.attendance.Redeem(c.Request.Context(), stu.ID, req.Code, *req.Lat, *req.Lon)
	if err != nil {
		h.redemptions.WithLabelValues(redemptionOutcome(err)).Inc()
		fail(c, err)
		return
	}
	h.redemptions.WithLabelValues("marked").Inc()

	c.JSON(http.StatusOK, gin.H{
		"message":  "Attendance marked successfully",
		"distance": res.DistanceM,
		"courseId": res.CourseID,
		"markedAt": res.MarkedAt.UTC().Format(time.RFC3339),
	})
}

func redemptionOutcome(err error) string {
	var codeErr *attendance.CodeError
	var tooFar *attendance.TooFarError
	switch {
	case errors.As(err, &codeErr):
		return "invalid_code"
	case errors.As(err, &tooFar):
		return "too_far"
	case errors.Is(err, attendance.ErrAlreadyMarked):
		return "already_marked"
	default:
		return "error"
	}
}

// CourseRecords returns the full ledger for an owned course.
func (h *Handler) CourseRecords(c *gin.Context) {
	crs, ok := h.ownedCourse(c)
	if !ok {
		return
	}
	records, err := h.attendance.Records(c.Request.Context(), crs.ID)
	if err != nil {
		fail(c, err)
		return
	}
	if records == nil {
		records = []attendance.RecordDetail{}
	}
	c.JSON(http.StatusOK, records)
}

// CourseSessions returns the per-day session grouping for an owned course.
func (h *Handler) CourseSessions(c *gin.Context) {
	crs, ok := h.ownedCourse(c)
	if !ok {
		return
	}
	sessions, err := h.attendance.Sessions(c.Request.Context(), crs.ID)
	if err != nil {
		fail(c, err)
		return
	}
	if sessions == nil {
		sessions = []attendance.Session{}
	}
	c.JSON(http.StatusOK, sessions)
}

// CourseRecordsByDate returns one day's attendees for an owned course.
func (h *Handler) CourseRecordsByDate(c *gin.Context) {
	crs, ok := h.ownedCourse(c)
	if !ok {
		return
	}
	records, err := h.attendance.RecordsByDate(c.Request.Context(), crs.ID, c.Param("date"))
	if err != nil {
		fail(c, err)
		return
	}
	if records == nil {
		records = []attendance.RecordDetail{}
	}
	c.JSON(http.StatusOK, records)
}

// CourseStats returns aggregate statistics for an owned course.
func (h *Handler) CourseStats(c *gin.Context) {
	crs, ok := h.ownedCourse(c)
	if !ok {
		return
	}
	stats, err := h.attendance.Stats(c.Request.Context(), crs.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"course":     gin.H{"course_code": crs.CourseCode, "course_title": crs.CourseTitle},
		"statistics": stats,
	})
}

// StudentHistory returns the authenticated student's own records.
func (h *Handler) StudentHistory(c *gin.Context) {
	stu := auth.ContextIdentity(c)
	records, err := h.attendance.StudentHistory(c.Request.Context(), stu.ID)
	if err != nil {
		fail(c, err)
		return
	}
	if records == nil {
		records = []attendance.StudentRecord{}
	}
	c.JSON(http.StatusOK, records)
}
