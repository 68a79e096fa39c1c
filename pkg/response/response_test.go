package response

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"collegease.app/server/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestGetUserID(t *testing.T) {
	c, _ := testContext(t)
	_, err := GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	c.Set("user_id", "not-a-uuid")
	_, err = GetUserID(c)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	want := uuid.New()
	c.Set("user_id", want.String())
	got, err := GetUserID(c)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{apperror.ErrInvalidCredentials, http.StatusUnauthorized},
		{apperror.ErrForbidden, http.StatusForbidden},
		{apperror.ErrNotFound, http.StatusNotFound},
		{apperror.ErrDuplicateAccount, http.StatusConflict},
		{apperror.ErrInvalidRole, http.StatusBadRequest},
		{apperror.ErrUploadFailed, http.StatusBadGateway},
	}

	for _, tc := range cases {
		c, w := testContext(t)
		Error(c, tc.err)
		assert.Equal(t, tc.code, w.Code, tc.err.Error())
		assert.Contains(t, w.Body.String(), tc.err.Error())
		assert.NotContains(t, w.Body.String(), "profile_pending")
	}
}

func TestError_ProfilePendingFlag(t *testing.T) {
	c, w := testContext(t)

	Error(c, fmt.Errorf("identity created without profile: %w", apperror.ErrProfilePending))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), `"profile_pending":true`)
}
