package dto

import (
	"collegease.app/server/internal/entity"
)

type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	ProfileInput
}

// ProfileInput carries the second registration phase. Student-only fields are
// validated in the service because their requiredness depends on Role.
type ProfileInput struct {
	FullName   string `json:"full_name" binding:"required"`
	Role       string `json:"role" binding:"required,oneof=student staff"`
	RollNumber string `json:"roll_number"`
	Phone      string `json:"phone"`
	Batch      string `json:"batch"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterResponse struct {
	UserID string `json:"user_id"`
	// ProfilePending marks a partial registration: the identity exists but the
	// profile insert failed. The caller completes it via POST /auth/profile.
	ProfilePending bool `json:"profile_pending"`
	// VerificationToken is only populated in development mode; in production
	// the token leaves through an out-of-band channel.
	VerificationToken string `json:"verification_token,omitempty"`
}

type AuthResponse struct {
	AccessToken    string          `json:"access_token"`
	TokenType      string          `json:"token_type"`
	ExpiresIn      int64           `json:"expires_in"`
	SessionID      string          `json:"session_id"`
	User           *entity.User    `json:"user"`
	Profile        *entity.Profile `json:"profile"`
	ProfilePending bool            `json:"profile_pending"`
}

type SessionResponse struct {
	User           *entity.User    `json:"user"`
	Profile        *entity.Profile `json:"profile"`
	ProfilePending bool            `json:"profile_pending"`
}

// SessionEvent is published on sign-out and fanned out to websocket
// subscribers so other clients of the same account drop their local state.
type SessionEvent struct {
	Event     string `json:"event"`
	SessionID string `json:"session_id"`
	At        int64  `json:"at"`
}
