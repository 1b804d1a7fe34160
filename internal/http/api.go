package http

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"course-portal/internal/domain"
	"course-portal/internal/service"
)

const currentUserKey = "current_user"

// Services groups the domain services the handlers dispatch to.
type Services struct {
	Auth        service.AuthService
	Users       service.UserService
	Courses     service.CourseService
	Enrollments service.EnrollmentService
	Dashboard   service.DashboardService
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	svc         Services
	allowOrigin string
	logger      logrus.FieldLogger
}

func NewHandler(svc Services, allowOrigin string, logger logrus.FieldLogger) *Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		svc:         svc,
		allowOrigin: allowOrigin,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.requestLogger(), corsMiddleware(h.allowOrigin))
	router.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "Not found", nil)
	})

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			respond(c, http.StatusOK, "", nil)
		})

		api.POST("/register/", h.register)
		api.POST("/login/", h.login)
		api.POST("/token/refresh/", h.refreshToken)
	}

	authed := api.Group("", h.requireAuth())
	{
		authed.GET("/profile/", h.getProfile)
		authed.PUT("/profile/", h.updateProfile)
		authed.POST("/change-password/", h.changePassword)

		authed.GET("/courses/", h.listCourses)

		authed.GET("/enrollments/", h.listEnrollments)
		authed.POST("/enrollments/", h.createEnrollment)
		authed.GET("/enrollments/:id/", h.getEnrollment)

		authed.GET("/dashboard/stats/", h.dashboardStats)
		authed.GET("/dashboard/enrolled-courses/", h.enrolledCourses)
	}
}

func corsMiddleware(allowOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestLogger emits one line per request. Bodies are never logged.
func (h *Handler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}
		if user := currentUser(c); user != nil {
			fields["user_id"] = user.ID
		}
		entry := h.logger.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Info("request rejected")
		default:
			entry.Debug("request")
		}
	}
}

func (h *Handler) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			respondError(c, http.StatusUnauthorized, "Authentication credentials were not provided", nil)
			return
		}
		scheme, token, _ := strings.Cut(header, " ")
		if !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			respondError(c, http.StatusUnauthorized, "Invalid authorization header", nil)
			return
		}

		user, err := h.svc.Auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			h.fail(c, err, "")
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

func currentUser(c *gin.Context) *domain.User {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*domain.User)
	return user
}

// respond writes a success envelope merging data at the top level.
func respond(c *gin.Context, status int, message string, data gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}

func respondError(c *gin.Context, status int, message string, details map[string][]string) {
	errBody := gin.H{"message": message}
	if len(details) > 0 {
		errBody["details"] = details
	}
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   errBody,
	})
}

// fail maps a service error onto the envelope. validationMessage replaces the
// headline for field validation failures when set.
func (h *Handler) fail(c *gin.Context, err error, validationMessage string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		msg := validationMessage
		if msg == "" {
			msg = sentence(verr.Message())
		}
		respondError(c, http.StatusBadRequest, msg, verr.Fields)
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountDisabled),
		errors.Is(err, service.ErrInvalidToken):
		respondError(c, http.StatusUnauthorized, sentence(err.Error()), nil)
	case errors.Is(err, service.ErrAlreadyEnrolled):
		respondError(c, http.StatusBadRequest, sentence(err.Error()), nil)
	case errors.Is(err, service.ErrCourseNotFound),
		errors.Is(err, service.ErrEnrollmentNotFound),
		errors.Is(err, service.ErrUserNotFound):
		respondError(c, http.StatusNotFound, sentence(err.Error()), nil)
	default:
		h.logger.WithError(err).WithField("path", c.Request.URL.Path).Error("unhandled error")
		respondError(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

func sentence(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
