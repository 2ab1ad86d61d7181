package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/authz"
	"github.com/pharmaseek/marketplace/backend/internal/platform/apperror"
	"github.com/pharmaseek/marketplace/backend/internal/platform/logger"
	"github.com/pharmaseek/marketplace/backend/internal/users/domain"
	"github.com/pharmaseek/marketplace/backend/internal/users/ports"
)

// Error definitions for service operations
var (
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		apperror.BusinessCodeUserNotFound,
		"user not found",
		http.StatusNotFound,
	)

	ErrUserAlreadyExists = apperror.New(
		apperror.CodeConflict,
		apperror.BusinessCodeUserExists,
		"user already exists",
		http.StatusConflict,
	)

	ErrInvalidUserData = apperror.New(
		apperror.CodeValidationFailed,
		apperror.BusinessCodeInvalidFormat,
		"invalid user data",
		http.StatusBadRequest,
	)
)

// UsersService handles user registration and lookup
type UsersService struct {
	repo   ports.UserRepository
	logger logger.Logger
}

// NewUsersService creates a new users service
func NewUsersService(repo ports.UserRepository, logger logger.Logger) *UsersService {
	return &UsersService{
		repo:   repo,
		logger: logger,
	}
}

// RegisterUserParams contains parameters for registering a new user
type RegisterUserParams struct {
	Subject  string
	Email    string
	Username string
	Role     authz.Role
}

// RegisterUser creates the internal user row for an authenticated identity.
// The subject comes from the verified token, never from the request body.
func (s *UsersService) RegisterUser(ctx context.Context, params RegisterUserParams) (*domain.User, error) {
	existing, err := s.repo.FindBySubject(ctx, params.Subject)
	if err != nil && !errors.Is(err, ports.ErrUserNotFound) {
		s.logger.Error(ctx, "failed to check existing subject", "error", err)
		return nil, s.internalError("failed to register user")
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists.WithDetails("identity is already registered")
	}

	taken, err := s.repo.ExistsByUsername(ctx, params.Username)
	if err != nil {
		s.logger.Error(ctx, "failed to check username availability", "error", err)
		return nil, s.internalError("failed to register user")
	}
	if taken {
		return nil, ErrUserAlreadyExists.WithDetails("username already taken")
	}

	registered, err := s.repo.ExistsByEmail(ctx, params.Email)
	if err != nil {
		s.logger.Error(ctx, "failed to check email availability", "error", err)
		return nil, s.internalError("failed to register user")
	}
	if registered {
		return nil, ErrUserAlreadyExists.WithDetails("email already registered")
	}

	user, err := domain.NewUser(params.Subject, params.Email, params.Username, params.Role)
	if err != nil {
		return nil, ErrInvalidUserData.WithDetails(err.Error())
	}

	if err := s.repo.Create(ctx, user); err != nil {
		s.logger.Error(ctx, "failed to create user", "error", err)
		return nil, s.internalError("failed to register user")
	}

	return user, nil
}

// GetUser retrieves a user by internal ID
func (s *UsersService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error(ctx, "failed to find user", "error", err, "userID", id)
		return nil, s.internalError("failed to retrieve user")
	}
	return user, nil
}

// GetUserBySubject retrieves a user by the external auth subject claim
func (s *UsersService) GetUserBySubject(ctx context.Context, subject string) (*domain.User, error) {
	user, err := s.repo.FindBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, ports.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error(ctx, "failed to find user by subject", "error", err)
		return nil, s.internalError("failed to retrieve user")
	}
	return user, nil
}

func (s *UsersService) internalError(msg string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInternalError,
		apperror.BusinessCodeGeneral,
		msg,
		http.StatusInternalServerError,
	)
}
