package client

import "errors"

// ErrNotConfirmed is returned by StudentView.Delete when the interactive
// confirmation callback declines.
var ErrNotConfirmed = errors.New("delete not confirmed")

// AuthError covers credential, verification and duplicate-registration
// failures reported by the backend.
type AuthError struct {
	Msg string
}

func (e *AuthError) Error() string { return e.Msg }

// ProfileError signals a partial account state: the identity exists but the
// profile row does not. Recoverable through Session.CompleteProfile.
type ProfileError struct {
	Msg    string
	UserID string
}

func (e *ProfileError) Error() string { return e.Msg }

type UploadError struct {
	Msg string
}

func (e *UploadError) Error() string { return e.Msg }

type QueryError struct {
	Msg string
}

func (e *QueryError) Error() string { return e.Msg }

// ValidationError is a client-visible rejection of the request payload
// before or at the backend boundary.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
