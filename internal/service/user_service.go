package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"course-portal/internal/auth"
	"course-portal/internal/domain"
	"course-portal/internal/repository"
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	ProfilePic      *Upload
}

// ProfileUpdate is a partial profile change; nil fields are left alone.
type ProfileUpdate struct {
	Name       *string
	ProfilePic *Upload
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, auth.Pair, error)
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*domain.User, error)
	ProfilePicURL(ctx context.Context, user *domain.User) string
}

type userService struct {
	users    repository.UserRepository
	hasher   PasswordHasher
	tokens   *auth.Tokens
	pictures *ProfilePictures
	validate *validator.Validate
	logger   logrus.FieldLogger
}

func NewUserService(users repository.UserRepository, hasher PasswordHasher, tokens *auth.Tokens, pictures *ProfilePictures, logger logrus.FieldLogger) UserService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &userService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		pictures: pictures,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, auth.Pair, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	password := strings.TrimSpace(in.Password)
	confirm := strings.TrimSpace(in.ConfirmPassword)

	verr := newValidationError()
	if name == "" {
		verr.Add("name", ErrRequired)
	}
	switch {
	case email == "":
		verr.Add("email", ErrRequired)
	case s.validate.Var(email, "email") != nil:
		verr.Add("email", ErrInvalidEmail)
	default:
		exists, err := s.users.EmailExists(ctx, email)
		if err != nil {
			return nil, auth.Pair{}, err
		}
		if exists {
			verr.Add("email", ErrDuplicateEmail)
		}
	}
	switch {
	case password == "":
		verr.Add("password", ErrRequired)
	case len(password) < MinPasswordLength:
		verr.Add("password", ErrPasswordTooShort)
	case len(password) > MaxPasswordLength:
		verr.Add("password", ErrPasswordTooLong)
	}
	if confirm == "" {
		verr.Add("confirm_password", ErrRequired)
	}
	if err := verr.orNil(); err != nil {
		return nil, auth.Pair{}, err
	}
	if password != confirm {
		return nil, auth.Pair{}, invalid(NonFieldErrors, ErrPasswordMismatch)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, auth.Pair{}, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if in.ProfilePic != nil {
		key, err := s.pictures.Save(ctx, in.ProfilePic)
		if err != nil {
			return nil, auth.Pair{}, err
		}
		user.ProfilePic = key
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		s.pictures.Delete(ctx, user.ProfilePic)
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, auth.Pair{}, invalid("email", ErrDuplicateEmail)
		}
		return nil, auth.Pair{}, err
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, auth.Pair{}, fmt.Errorf("issue tokens: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("user registered")
	return sanitizeUser(user), pair, nil
}

func (s *userService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, update ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	name := user.Name
	if update.Name != nil {
		name = strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, invalid("name", ErrRequired)
		}
	}

	oldPic := user.ProfilePic
	pic := oldPic
	if update.ProfilePic != nil {
		if pic, err = s.pictures.Save(ctx, update.ProfilePic); err != nil {
			return nil, err
		}
	}

	if err := s.users.UpdateProfile(ctx, userID, name, pic); err != nil {
		if pic != oldPic {
			s.pictures.Delete(ctx, pic)
		}
		return nil, err
	}
	if pic != oldPic {
		s.pictures.Delete(ctx, oldPic)
	}

	user.Name = name
	user.ProfilePic = pic
	return sanitizeUser(user), nil
}

func (s *userService) ProfilePicURL(ctx context.Context, user *domain.User) string {
	if user == nil {
		return ""
	}
	return s.pictures.URL(ctx, user.ProfilePic)
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}

// normalizeEmail trims and lowercases the domain part.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
