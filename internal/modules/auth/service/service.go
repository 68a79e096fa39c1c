package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"collegease.app/server/internal/config"
	"collegease.app/server/internal/entity"
	"collegease.app/server/internal/modules/auth/dto"
	"collegease.app/server/internal/modules/auth/repository"
	search "collegease.app/server/internal/modules/search/service"
	"collegease.app/server/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const verificationAudience = "email_verification"

type AuthService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.RegisterResponse, error)
	CompleteProfile(ctx context.Context, userID uuid.UUID, input dto.ProfileInput) (*entity.Profile, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, sessionID string) error
	CurrentSession(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error)
	VerifyEmail(ctx context.Context, token string) error
}

type authService struct {
	repo                repository.UserRepository
	sessions            *SessionStore
	search              search.StudentSearchService
	secret              string
	tokenTTL            time.Duration
	requireVerification bool
	devMode             bool
}

func NewAuthService(repo repository.UserRepository, sessions *SessionStore, searchSvc search.StudentSearchService, cfg *config.Config) AuthService {
	return &authService{
		repo:                repo,
		sessions:            sessions,
		search:              searchSvc,
		secret:              cfg.JWTSecret,
		tokenTTL:            cfg.JWTTTL,
		requireVerification: cfg.RequireEmailVerification,
		devMode:             cfg.AppEnv == "development",
	}
}

// Register is a two-phase operation: the identity insert and the profile
// insert are deliberately not one transaction, mirroring the split between
// the auth store and the profiles table. A profile failure leaves the
// identity in place and reports the partial state instead of hiding it.
func (s *authService) Register(ctx context.Context, input dto.RegisterInput) (*dto.RegisterResponse, error) {
	profile, err := buildProfile(uuid.Nil, input.ProfileInput)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.ErrDuplicateAccount
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", apperror.ErrQueryFailed, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        input.Email,
		PasswordHash: string(hashed),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		// Lost the race against a concurrent registration on the same email.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.ErrDuplicateAccount
		}
		return nil, err
	}

	resp := &dto.RegisterResponse{UserID: user.ID.String()}

	verificationToken, err := s.generateVerificationToken(user.ID)
	if err != nil {
		log.Printf("failed to generate verification token for %s: %v", user.Email, err)
	} else if s.devMode {
		resp.VerificationToken = verificationToken
	} else {
		log.Printf("verification token issued for user %s", user.ID)
	}

	profile.UserID = user.ID
	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		resp.ProfilePending = true
		return resp, fmt.Errorf("identity %s created without profile: %w", user.ID, apperror.ErrProfilePending)
	}

	s.indexStudent(profile)

	return resp, nil
}

// CompleteProfile finishes a partial registration. It refuses to create a
// second profile for an identity that already has one.
func (s *authService) CompleteProfile(ctx context.Context, userID uuid.UUID, input dto.ProfileInput) (*entity.Profile, error) {
	if _, err := s.repo.FindProfile(ctx, userID); err == nil {
		return nil, fmt.Errorf("%w: profile already exists", apperror.ErrBadRequest)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %v", apperror.ErrQueryFailed, err)
	}

	profile, err := buildProfile(userID, input)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("profile creation failed again: %w", apperror.ErrProfilePending)
	}

	s.indexStudent(profile)

	return profile, nil
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	if s.requireVerification && !user.EmailVerified {
		return nil, apperror.ErrEmailNotVerified
	}

	sessionID := uuid.New().String()
	token, expiresAt, err := s.generateToken(user.ID, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Create(ctx, sessionID, user.ID.String()); err != nil {
		log.Printf("failed to record session %s: %v", sessionID, err)
	}

	user.PasswordHash = ""

	return &dto.AuthResponse{
		AccessToken:    token,
		TokenType:      "Bearer",
		ExpiresIn:      expiresAt,
		SessionID:      sessionID,
		User:           user,
		Profile:        user.Profile,
		ProfilePending: user.Profile == nil,
	}, nil
}

// Logout revokes the session and notifies subscribers. It never fails in a
// way that would block the caller from clearing local state.
func (s *authService) Logout(ctx context.Context, userID uuid.UUID, sessionID string) error {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		log.Printf("failed to revoke session %s: %v", sessionID, err)
	}

	s.sessions.PublishEvent(ctx, userID.String(), dto.SessionEvent{
		Event:     SessionEventSignedOut,
		SessionID: sessionID,
		At:        time.Now().Unix(),
	})

	return nil
}

func (s *authService) CurrentSession(ctx context.Context, userID uuid.UUID) (*dto.SessionResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.ErrUnauthorized
		}
		return nil, err
	}

	user.PasswordHash = ""

	return &dto.SessionResponse{
		User:           user,
		Profile:        user.Profile,
		ProfilePending: user.Profile == nil,
	}, nil
}

func (s *authService) VerifyEmail(ctx context.Context, tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	}, jwt.WithAudience(verificationAudience))
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: invalid verification token", apperror.ErrBadRequest)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return fmt.Errorf("%w: invalid verification token", apperror.ErrBadRequest)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return fmt.Errorf("%w: invalid verification token", apperror.ErrBadRequest)
	}

	return s.repo.MarkEmailVerified(ctx, userID)
}

func (s *authService) indexStudent(profile *entity.Profile) {
	if s.search == nil {
		return
	}
	if err := s.search.IndexStudent(profile); err != nil {
		log.Printf("failed to index student %s: %v", profile.UserID, err)
	}
}

func (s *authService) generateToken(userID uuid.UUID, sessionID string) (string, int64, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}

func (s *authService) generateVerificationToken(userID uuid.UUID) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{verificationAudience},
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(48 * time.Hour)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// buildProfile validates the closed role enum and the role-dependent fields.
func buildProfile(userID uuid.UUID, input dto.ProfileInput) (*entity.Profile, error) {
	role := entity.Role(input.Role)
	if !role.Valid() {
		return nil, apperror.ErrInvalidRole
	}

	profile := &entity.Profile{
		UserID:   userID,
		FullName: input.FullName,
		Role:     role,
	}

	if role == entity.RoleStudent {
		if input.RollNumber == "" || input.Phone == "" || input.Batch == "" {
			return nil, fmt.Errorf("%w: roll number, phone and batch are required for students", apperror.ErrInvalidInput)
		}
		profile.RollNumber = stringPtr(input.RollNumber)
		profile.Phone = stringPtr(input.Phone)
		profile.Batch = stringPtr(input.Batch)
	}

	return profile, nil
}

func stringPtr(s string) *string {
	return &s
}
