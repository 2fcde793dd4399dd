package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/marcusoji/Attendms/internal/attendance"
	"github.com/marcusoji/Attendms/internal/auth"
	"github.com/marcusoji/Attendms/internal/cloudinary"
	"github.com/marcusoji/Attendms/internal/course"
	"github.com/marcusoji/Attendms/internal/identity"
	"github.com/marcusoji/Attendms/internal/queue"
	"github.com/marcusoji/Attendms/internal/store"
)

// TokenConfig carries what the handlers need to mint claim tokens.
type TokenConfig struct {
	Issuer     string
	SigningKey string
	TTL        time.Duration
}

// Handler binds HTTP requests to the domain services.
type Handler struct {
	identity   *identity.Service
	courses    *course.Service
	attendance *attendance.Service
	tokens     TokenConfig
	cloud      *cloudinary.Client // nil when image storage is not configured
	queue      queue.Queue        // nil when no worker is deployed
	db         *store.DB
	redis      *store.Redis

	redemptions *prometheus.CounterVec
}

// New creates a handler. cloud, q and redis may be nil.
func New(
	ids *identity.Service,
	courses *course.Service,
	att *attendance.Service,
	tokens TokenConfig,
	cloud *cloudinary.Client,
	q queue.Queue,
	db *store.DB,
	redis *store.Redis,
	reg prometheus.Registerer,
) *Handler {
	redemptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendms_redemptions_total",
		Help: "Attendance code redemption attempts by outcome.",
	}, []string{"result"})
	if reg != nil {
		reg.MustRegister(redemptions)
	}
	return &Handler{
		identity:    ids,
		courses:     courses,
		attendance:  att,
		tokens:      tokens,
		cloud:       cloud,
		queue:       q,
		db:          db,
		redis:       redis,
		redemptions: redemptions,
	}
}

// Healthz reports database and redis connectivity.
func (h *Handler) Healthz(c *gin.Context) {
	ctx := c.Request.Context()
	dbHealthy := h.db.Healthy(ctx)
	status := http.StatusOK
	if !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{
		"status": http.StatusText(status),
		"db":     dbHealthy,
		"redis":  h.redis.Healthy(ctx),
	})
}

// fail maps a domain error onto an HTTP status and a {"message": ...} body.
// Unexpected errors are logged and reported generically.
func fail(c *gin.Context, err error) {
	var codeErr *attendance.CodeError
	var tooFar *attendance.TooFarError

	switch {
	case errors.Is(err, attendance.ErrValidation),
		errors.Is(err, identity.ErrValidation),
		errors.Is(err, course.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.As(err, &codeErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.As(err, &tooFar):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
	case errors.Is(err, attendance.ErrAlreadyMarked):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, identity.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
	case errors.Is(err, identity.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, identity.ErrDuplicate), errors.Is(err, course.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, course.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Course not found or access denied"})
	default:
		log.Printf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "An internal server error occurred"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}

// RequireRole wires the auth middleware with the handler's token settings.
func (h *Handler) RequireRole(role string) gin.HandlerFunc {
	return auth.RequireRole(role, h.tokens.SigningKey, h.tokens.Issuer)
}
