package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"course-portal/internal/auth"
	"course-portal/internal/domain"
	"course-portal/internal/repository"
)

// AuthService covers credential exchange and password rotation.
type AuthService interface {
	Login(ctx context.Context, name, password string) (*domain.User, auth.Pair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
	ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error
}

type authService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens *auth.Tokens
	logger logrus.FieldLogger
}

func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens *auth.Tokens, logger logrus.FieldLogger) AuthService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &authService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
	}
}

// Login looks users up by name, not email. Names are not unique, so every
// account sharing the name is tried in id order and the first whose password
// verifies wins.
func (s *authService) Login(ctx context.Context, name, password string) (*domain.User, auth.Pair, error) {
	name = strings.TrimSpace(name)
	password = strings.TrimSpace(password)
	if name == "" || password == "" {
		verr := newValidationError()
		if name == "" {
			verr.Add("name", ErrRequired)
		}
		if password == "" {
			verr.Add("password", ErrRequired)
		}
		return nil, auth.Pair{}, verr
	}

	candidates, err := s.users.ListByName(ctx, name)
	if err != nil {
		return nil, auth.Pair{}, err
	}

	var user *domain.User
	for i := range candidates {
		ok, err := s.hasher.Verify(password, candidates[i].PasswordHash)
		if err != nil {
			s.logger.WithError(err).WithField("user_id", candidates[i].ID).Warn("verify password hash")
			continue
		}
		if ok {
			user = &candidates[i]
			break
		}
	}
	if user == nil {
		s.logger.WithField("name", name).Info("login failed")
		return nil, auth.Pair{}, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, auth.Pair{}, ErrAccountDisabled
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, auth.Pair{}, fmt.Errorf("issue tokens: %w", err)
	}
	return sanitizeUser(user), pair, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.Parse(strings.TrimSpace(refreshToken), auth.RefreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}
	if _, err := s.activeUser(ctx, userID); err != nil {
		return "", err
	}

	access, err := s.tokens.IssueAccess(userID)
	if err != nil {
		return "", fmt.Errorf("issue access token: %w", err)
	}
	return access, nil
}

func (s *authService) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	userID, err := s.tokens.Parse(accessToken, auth.AccessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.activeUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// ChangePassword stores a new hash. Outstanding tokens stay valid until they
// expire.
func (s *authService) ChangePassword(ctx context.Context, userID int64, currentPassword, newPassword string) error {
	currentPassword = strings.TrimSpace(currentPassword)
	newPassword = strings.TrimSpace(newPassword)

	verr := newValidationError()
	if currentPassword == "" {
		verr.Add("current_password", ErrRequired)
	}
	if newPassword == "" {
		verr.Add("new_password", ErrRequired)
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	ok, err := s.hasher.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return invalid("current_password", ErrWrongCurrentPassword)
	}
	if len(newPassword) < MinPasswordLength {
		return invalid("new_password", ErrPasswordTooShort)
	}
	if len(newPassword) > MaxPasswordLength {
		return invalid("new_password", ErrPasswordTooLong)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.WithField("user_id", userID).Info("password changed")
	return nil
}

func (s *authService) activeUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}
	return user, nil
}
