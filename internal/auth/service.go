package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	pkgAuth "github.com/sxo6luxe/sxo6-backend/pkg/auth"
	"github.com/sxo6luxe/sxo6-backend/pkg/auth/session"
	"github.com/sxo6luxe/sxo6-backend/pkg/config"
	"github.com/sxo6luxe/sxo6-backend/pkg/db"
	"github.com/sxo6luxe/sxo6-backend/pkg/db/models"
	pkgerrors "github.com/sxo6luxe/sxo6-backend/pkg/errors"
	"github.com/sxo6luxe/sxo6-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, accessID string) error
	Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error)
	RequestPasswordReset(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, input UpdatePasswordInput) error
}

type profileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ResetMailer delivers the password reset email.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, email string, fullName *string, token string) error
}

type service struct {
	profiles    profileRepository
	resetTokens ResetTokenRepository
	session     sessionManager
	mailer      ResetMailer
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	ProfileRepo    profileRepository
	ResetTokenRepo ResetTokenRepository
	SessionManager sessionManager
	ResetMailer    ResetMailer
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.ProfileRepo == nil {
		return nil, fmt.Errorf("profile repository is required")
	}
	if params.ResetTokenRepo == nil {
		return nil, fmt.Errorf("reset token repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		profiles:    params.ProfileRepo,
		resetTokens: params.ResetTokenRepo,
		session:     params.SessionManager,
		mailer:      params.ResetMailer,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if len(req.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	profile := &models.Profile{
		Email:        email,
		PasswordHash: hash,
		Phone:        req.Phone,
	}
	if name := strings.TrimSpace(req.FullName); name != "" {
		profile.FullName = &name
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if db.IsUniqueViolation(err, "profiles_email_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create profile")
	}

	return s.issueTokens(ctx, profile)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	profile, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, profile)
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session identity missing")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*RefreshResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, req.AccessToken)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid access token")
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if err == session.ErrInvalidRefreshToken {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	// Re-read the profile so a demoted admin loses the flag on refresh.
	profile, err := s.profiles.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "account no longer exists")
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:  profile.ID,
		Email:   profile.Email,
		IsAdmin: profile.IsAdmin,
		JTI:     newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// RequestPasswordReset always succeeds from the caller's perspective so the
// endpoint does not leak which emails have accounts.
func (s *service) RequestPasswordReset(ctx context.Context, email string) error {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	profile, err := s.profiles.FindByEmail(ctx, normalized)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup profile")
	}
	if profile == nil {
		return nil
	}

	token, err := security.GenerateResetToken()
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset token")
	}

	ttl := s.passwordCfg.ResetTokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	record := &models.PasswordResetToken{
		UserID:    profile.ID,
		TokenHash: security.HashResetToken(token),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}
	if err := s.resetTokens.Create(ctx, record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store reset token")
	}

	if s.mailer != nil {
		if err := s.mailer.SendPasswordReset(ctx, profile.Email, profile.FullName, token); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send reset email")
		}
	}
	return nil
}

func (s *service) UpdatePassword(ctx context.Context, input UpdatePasswordInput) error {
	if len(input.NewPassword) < 8 {
		return pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}

	hash, err := security.HashPassword(input.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	switch {
	case input.ResetToken != nil && strings.TrimSpace(*input.ResetToken) != "":
		now := time.Now().UTC()
		record, err := s.resetTokens.FindValidByHash(ctx, security.HashResetToken(*input.ResetToken), now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup reset token")
		}
		if record == nil {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "reset token is invalid or expired")
		}
		if err := s.profiles.UpdatePasswordHash(ctx, record.UserID, hash); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
		}
		if err := s.resetTokens.MarkUsed(ctx, record.ID, now); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark reset token used")
		}
		return nil

	case input.UserID != nil && *input.UserID != uuid.Nil:
		if err := s.profiles.UpdatePasswordHash(ctx, *input.UserID, hash); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
		}
		return nil

	default:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "a session or reset token is required")
	}
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.Profile, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	profile, err := s.profiles.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup profile")
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	valid, err := security.VerifyPassword(password, profile.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return profile, nil
}

func (s *service) issueTokens(ctx context.Context, profile *models.Profile) (*AuthResponse, error) {
	accessID := session.NewAccessID()
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgAuth.AccessTokenPayload{
		UserID:  profile.ID,
		Email:   profile.Email,
		IsAdmin: profile.IsAdmin,
		JTI:     accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         FromModel(profile),
	}, nil
}
