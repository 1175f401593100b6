package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"safetrail/models"
	"safetrail/utils"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	environment string
	logger      *logrus.Logger
}

func NewErrorHandler(environment string, logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		environment: environment,
		logger:      logger,
	}
}

// Handle returns the error handling middleware
func (eh *ErrorHandler) Handle() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				eh.handlePanic(c, err)
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			eh.handleGinErrors(c)
		}
	})
}

func (eh *ErrorHandler) handlePanic(c *gin.Context, err interface{}) {
	eh.logger.WithFields(logrus.Fields{
		"panic":      err,
		"stack":      string(debug.Stack()),
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"user_id":    c.GetString("userID"),
	}).Error("Panic recovered")

	message := "An unexpected error occurred"
	if eh.environment == "development" {
		if e, ok := err.(error); ok {
			message = e.Error()
		}
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, models.APIResponse{
		Success: false,
		Message: "Internal server error",
		Error: &models.APIError{
			Code:    models.ErrCodeInternal,
			Message: message,
		},
		Timestamp: time.Now(),
	})
}

// handleGinErrors maps the last collected error to an API response.
// ServiceError carries its own status code and error code.
func (eh *ErrorHandler) handleGinErrors(c *gin.Context) {
	if c.Writer.Written() {
		return
	}

	lastErr := c.Errors.Last().Err

	if serviceErr, ok := utils.GetServiceError(lastErr); ok {
		status := serviceErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		utils.ErrorResponse(c, status, serviceErr.Code, serviceErr.Message, nil)
		return
	}

	eh.logger.WithFields(logrus.Fields{
		"error":      lastErr.Error(),
		"request_id": c.GetString("request_id"),
		"path":       c.Request.URL.Path,
	}).Error("Unhandled request error")

	utils.InternalServerErrorResponse(c, "An unexpected error occurred")
}
