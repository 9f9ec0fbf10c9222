package response

import (
	"errors"
	"fmt"
	"net/http"

	"anoa.com/elearning/pkg/apperror"
	appValidator "anoa.com/elearning/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	str, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// GetUserRole retrieves the role name set by the auth middleware.
func GetUserRole(c *gin.Context) string {
	role, _ := c.Get("user_role")
	name, _ := role.(string)
	return name
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": appValidator.FormatValidationError(validationErrs)})
		return
	}

	code := apperror.MapErrorToStatus(err)

	if code >= http.StatusInternalServerError {
		zap.S().Errorw("request failed", "path", c.FullPath(), "error", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}

// BindError reports a request binding failure. Validation failures keep their
// field messages; malformed input becomes a 400.
func BindError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ResponseError(c, err)
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": apperror.ErrBadRequest.Error() + ": " + err.Error()})
}

// ParamUUID parses the named path parameter. A malformed value is answered with
// a 400 through ResponseError and ok is false.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		ResponseError(c, fmt.Errorf("invalid %s format: %w", name, apperror.ErrBadRequest))
		return uuid.Nil, false
	}
	return id, true
}
