package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/altklausuren/internal/app/models"
	"github.com/yigit/altklausuren/internal/app/repositories"
	"github.com/yigit/altklausuren/internal/pkg/apperrors"
	"github.com/yigit/altklausuren/internal/pkg/auth"
	"github.com/yigit/altklausuren/internal/pkg/session"
)

// AuthService defines login, logout and session lookup
type AuthService interface {
	Login(ctx context.Context, username, password string) (*session.Session, *models.PublicUser, error)
	Logout(ctx context.Context, sessionID string) error
	CurrentSession(ctx context.Context, sessionID string) (*session.Session, error)
}

type authServiceImpl struct {
	userRepo repositories.IUserRepository
	hasher   auth.PasswordHasher
	sessions session.Store
	logger   zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	hasher auth.PasswordHasher,
	sessions session.Store,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo: userRepo,
		hasher:   hasher,
		sessions: sessions,
		logger:   logger,
	}
}

// Login verifies the credentials and opens a session. Unknown users and
// wrong passwords both yield apperrors.ErrInvalidCredentials.
func (s *authServiceImpl) Login(ctx context.Context, username, password string) (*session.Session, *models.PublicUser, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, nil, apperrors.ErrMissingCredentials
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Warn().Str("username", username).Msg("Login failed: unknown user")
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("error loading user: %w", err)
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return nil, nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		s.logger.Warn().Str("username", username).Msg("Login failed: wrong password")
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, user.ID, user.Username)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating session: %w", err)
	}

	public := user.PublicData()
	s.logger.Info().Int64("userID", user.ID).Str("username", user.Username).Msg("Login successful")
	return sess, &public, nil
}

// Logout destroys the session; an empty id is a no-op
func (s *authServiceImpl) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("error destroying session: %w", err)
	}
	return nil
}

// CurrentSession returns the live session or apperrors.ErrSessionRequired
func (s *authServiceImpl) CurrentSession(ctx context.Context, sessionID string) (*session.Session, error) {
	if sessionID == "" {
		return nil, apperrors.ErrSessionRequired
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, apperrors.ErrSessionRequired
		}
		return nil, fmt.Errorf("error loading session: %w", err)
	}
	return sess, nil
}
