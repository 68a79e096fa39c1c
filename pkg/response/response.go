// Package response holds the helpers every handler replies through: identity
// extraction from the auth middleware and a uniform error payload derived
// from the apperror taxonomy.
package response

import (
	"errors"
	"log"
	"net/http"

	"collegease.app/server/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorBody is the error payload every endpoint replies with. ProfilePending
// marks a partial registration so clients can offer profile completion
// instead of treating the failure as terminal.
type ErrorBody struct {
	Error          string `json:"error"`
	ProfilePending bool   `json:"profile_pending,omitempty"`
}

// GetUserID reads the authenticated user id set by the auth middleware.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// Error replies with the status mapped from the apperror taxonomy. Internal
// errors are logged server-side rather than leaked in detail.
func Error(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, ErrorBody{
		Error:          err.Error(),
		ProfilePending: errors.Is(err, apperror.ErrProfilePending),
	})
}
