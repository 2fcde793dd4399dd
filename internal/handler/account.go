package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/marcusoji/Attendms/internal/auth"
	"github.com/marcusoji/Attendms/internal/identity"
	"github.com/marcusoji/Attendms/internal/queue"
)

const maxFaceScanBytes = 10 << 20

// Register handles both registration flows on one route, switched by the
// userType field: students send multipart form data with a faceScan image,
// lecturers send JSON with a password.
func (h *Handler) Register(c *gin.Context) {
	if strings.Contains(c.ContentType(), "multipart/form-data") {
		h.registerStudent(c)
		return
	}
	h.registerLecturer(c)
}

func (h *Handler) registerStudent(c *gin.Context) {
	userType := c.PostForm("userType")
	if userType != "" && userType != auth.RoleStudent {
		badRequest(c, "Invalid user type provided")
		return
	}

	file, header, err := c.Request.FormFile("faceScan")
	if err != nil {
		badRequest(c, "All fields and face scan are required for student registration")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxFaceScanBytes+1))
	if err != nil {
		fail(c, err)
		return
	}
	if len(data) > maxFaceScanBytes {
		badRequest(c, "Face scan image is too large")
		return
	}

	// Prefer hosted storage; fall back to inlining the image so a missing
	// Cloudinary account never blocks registration.
	faceScanData := base64.StdEncoding.EncodeToString(data)
	if h.cloud != nil {
		if result, upErr := h.cloud.UploadBytes(data, header.Filename); upErr != nil {
			log.Printf("face image upload failed, storing inline: %v", upErr)
		} else {
			faceScanData = result.SecureURL
		}
	}

	st, err := h.identity.RegisterStudent(
		c.Request.Context(),
		c.PostForm("matNo"),
		c.PostForm("name"),
		c.PostForm("email"),
		c.PostForm("phone"),
		faceScanData,
	)
	if err != nil {
		fail(c, err)
		return
	}

	if h.queue != nil {
		if err := h.queue.Publish(c.Request.Context(), queue.Message{Type: "enroll", Body: []byte(st.ID)}); err != nil {
			log.Printf("enroll publish failed: %v", err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Student registered successfully!", "user": st})
}

type lecturerRegisterRequest struct {
	UserType   string `json:"userType"`
	Name       string `json:"name"`
	LecturerID string `json:"lecturer_id"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Password   string `json:"password"`
}

func (h *Handler) registerLecturer(c *gin.Context) {
	var req lecturerRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if req.UserType != "" && req.UserType != auth.RoleLecturer {
		badRequest(c, "Invalid user type provided")
		return
	}

	lec, err := h.identity.RegisterLecturer(c.Request.Context(), req.LecturerID, req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Lecturer registered successfully!", "user": lec})
}

type loginRequest struct {
	UserType string `json:"userType"`
	MatNo    string `json:"matNo"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates all three user kinds.
//
// Students are resolved by matriculation number alone: the response carries a
// reference face image and a token, and the client decides acceptance by
// comparing that image against a fresh capture. The server never verifies the
// face match itself, so a client that skips the comparison holds a valid
// token from the mat number alone. Known accepted weakness of the protocol.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	switch req.UserType {
	case auth.RoleStudent:
		h.loginStudent(c, req)
	case auth.RoleLecturer, auth.RoleAdmin:
		h.loginStaff(c, req)
	default:
		badRequest(c, "Invalid user type provided")
	}
}

func (h *Handler) loginStudent(c *gin.Context, req loginRequest) {
	if strings.TrimSpace(req.MatNo) == "" {
		badRequest(c, "Matriculation number is required")
		return
	}
	st, err := h.identity.LoginStudent(c.Request.Context(), req.MatNo)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Student not found"})
			return
		}
		fail(c, err)
		return
	}

	tok, err := h.issueToken(c.Request.Context(), st.ID, auth.RoleStudent, st.MatNo, "")
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      "Student data retrieved for face verification",
		"token":        tok,
		"faceScanData": st.FaceScanData,
		"user":         gin.H{"id": st.ID, "name": st.Name, "mat_no": st.MatNo},
	})
}

func (h *Handler) loginStaff(c *gin.Context, req loginRequest) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		badRequest(c, "email and password are required")
		return
	}

	var (
		id, name, email string
		err             error
	)
	if req.UserType == auth.RoleAdmin {
		adm, admErr := h.identity.LoginAdmin(c.Request.Context(), req.Email, req.Password)
		id, name, email, err = adm.ID, adm.Name, adm.Email, admErr
	} else {
		lec, lecErr := h.identity.LoginLecturer(c.Request.Context(), req.Email, req.Password)
		id, name, email, err = lec.ID, lec.Name, lec.Email, lecErr
	}
	if err != nil {
		fail(c, err)
		return
	}

	tok, err := h.issueToken(c.Request.Context(), id, req.UserType, "", email)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   tok,
		"user":    gin.H{"id": id, "name": name, "email": email},
	})
}

func (h *Handler) issueToken(_ context.Context, subject, role, matNo, email string) (string, error) {
	tok, err := auth.Issue(subject, role, matNo, email, h.tokens.Issuer, h.tokens.SigningKey, h.tokens.TTL)
	if err != nil {
		return "", err
	}
	return tok.Value, nil
}
