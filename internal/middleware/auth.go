package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"collegease.app/server/internal/entity"
	authRepo "collegease.app/server/internal/modules/auth/repository"
	authService "collegease.app/server/internal/modules/auth/service"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthMiddleware struct {
	userRepo authRepo.UserRepository
	sessions *authService.SessionStore
	secret   string
}

func NewAuthMiddleware(userRepo authRepo.UserRepository, sessions *authService.SessionStore, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		sessions: sessions,
		secret:   secret,
	}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")

		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		// Fallback to query parameter "token" (useful for WebSockets)
		if tokenString == "" {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(m.secret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}

		// Access tokens carry a session id and no audience. Single-purpose
		// tokens signed with the same secret (email verification) must not
		// pass as API credentials.
		if len(claims.Audience) > 0 || claims.ID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		// A structurally valid token is not enough; the session must not have
		// been revoked by a sign-out.
		if m.sessions != nil && !m.sessions.IsActive(c.Request.Context(), claims.ID) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session revoked"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("session_id", claims.ID)
		c.Next()
	}
}

// RequireRole gates a route group on the caller's profile role. The role
// enum is closed: a stored value outside student/staff is rejected outright
// instead of falling through to any default view.
func (m *AuthMiddleware) RequireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userIDStr, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(userIDStr.(string))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			c.Abort()
			return
		}

		profile, err := m.userRepo.FindProfile(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusConflict, gin.H{"error": "profile creation pending", "profile_pending": true})
				c.Abort()
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
			c.Abort()
			return
		}

		if !profile.Role.Valid() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unrecognized role on profile"})
			c.Abort()
			return
		}

		if profile.Role != role {
			c.JSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("%s access required", role)})
			c.Abort()
			return
		}

		c.Set("profile", profile)
		c.Next()
	}
}
