package handler

import (
	"errors"
	"log"
	"net/http"

	"collegease.app/server/internal/modules/auth/dto"
	"collegease.app/server/internal/modules/auth/service"
	"collegease.app/server/pkg/apperror"
	"collegease.app/server/pkg/response"
	"collegease.app/server/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

type AuthHandler struct {
	service     service.AuthService
	redisClient *redis.Client
	upgrader    websocket.Upgrader
}

func NewAuthHandler(authService service.AuthService, redisClient *redis.Client) *AuthHandler {
	return &AuthHandler{
		service:     authService,
		redisClient: redisClient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		// Partial registration still carries the identity id so the caller
		// can complete the profile later instead of re-registering.
		if errors.Is(err, apperror.ErrProfilePending) && res != nil {
			c.JSON(http.StatusConflict, gin.H{
				"user_id":         res.UserID,
				"profile_pending": true,
				"error":           err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *AuthHandler) CompleteProfile(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var input dto.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	profile, err := h.service.CompleteProfile(c.Request.Context(), userID, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	sessionID := c.GetString("session_id")

	if err := h.service.Logout(c.Request.Context(), userID, sessionID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

func (h *AuthHandler) Session(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.CurrentSession(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

// Dashboard is the role router: a pure dispatch from the caller's profile
// role to a view selection. Unrecognized roles are rejected, never defaulted.
func (h *AuthHandler) Dashboard(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.CurrentSession(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if res.ProfilePending || res.Profile == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "profile creation pending", "profile_pending": true})
		return
	}

	if !res.Profile.Role.Valid() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unrecognized role on profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"view": res.Profile.Role})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token is required"})
		return
	}

	if err := h.service.VerifyEmail(c.Request.Context(), token); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "email verified"})
}

// SessionEvents upgrades to a websocket and forwards session-change events
// for the authenticated account. Clients use it to drop local state when the
// session is revoked elsewhere.
func (h *AuthHandler) SessionEvents(c *gin.Context) {
	userIDStr := c.GetString("user_id")
	if userIDStr == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade websocket: %v", err)
		return
	}
	defer conn.Close()

	if h.redisClient == nil {
		log.Println("Redis client is nil, cannot subscribe to session events")
		return
	}

	pubsub := h.redisClient.Subscribe(c.Request.Context(), service.SessionChannel(userIDStr))
	defer pubsub.Close()

	// Wait for confirmation that subscription is created
	if _, err := pubsub.Receive(c.Request.Context()); err != nil {
		log.Printf("Failed to subscribe to redis channel: %v", err)
		return
	}

	ch := pubsub.Channel()

	clientClosed := make(chan struct{})
	go func() {
		defer close(clientClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Printf("Failed to write session event to websocket: %v", err)
				return
			}
		case <-clientClosed:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}
