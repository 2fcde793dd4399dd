package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marcusoji/Attendms/internal/auth"
	"github.com/marcusoji/Attendms/internal/course"
)

type createCourseRequest struct {
	CourseCode  string `json:"courseCode"`
	CourseTitle string `json:"courseTitle"`
}

// CreateCourse registers a course for the authenticated lecturer.
func (h *Handler) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	lec := auth.ContextIdentity(c)
	created, err := h.courses.Create(c.Request.Context(), lec.ID, req.CourseCode, req.CourseTitle)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Course created successfully", "course": created})
}

// ListCourses returns the authenticated lecturer's courses.
func (h *Handler) ListCourses(c *gin.Context) {
	lec := auth.ContextIdentity(c)
	courses, err := h.courses.ListByLecturer(c.Request.Context(), lec.ID)
	if err != nil {
		fail(c, err)
		return
	}
	if courses == nil {
		courses = []course.Course{}
	}
	c.JSON(http.StatusOK, courses)
}

// ownedCourse resolves the courseId path param and verifies ownership,
// responding on failure. The bool reports whether to continue.
func (h *Handler) ownedCourse(c *gin.Context) (course.Course, bool) {
	lec := auth.ContextIdentity(c)
	crs, err := h.courses.GetOwned(c.Request.Context(), c.Param("courseId"), lec.ID)
	if err != nil {
		fail(c, err)
		return course.Course{}, false
	}
	return crs, true
}
