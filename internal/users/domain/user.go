package domain

import (
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/authz"
)

var (
	ErrInvalidUsername  = errors.New("invalid username format")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters")
	ErrUsernameTooLong  = errors.New("username must not exceed 30 characters")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmptySubject     = errors.New("auth subject cannot be empty")
	ErrInvalidRole      = errors.New("role must be consumer or pharmacy")
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// User is an authenticated identity with a fixed marketplace role.
type User struct {
	ID        uuid.UUID
	Subject   string // External identity provider subject claim
	Email     string
	Username  string
	Role      authz.Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser creates a user with validation. Self-registration is limited to
// the consumer and pharmacy roles; admins are provisioned out of band.
func NewUser(subject, email, username string, role authz.Role) (*User, error) {
	if subject == "" {
		return nil, ErrEmptySubject
	}

	if err := validateEmail(email); err != nil {
		return nil, err
	}

	if err := validateUsername(username); err != nil {
		return nil, err
	}

	if role != authz.RoleConsumer && role != authz.RolePharmacy {
		return nil, ErrInvalidRole
	}

	now := time.Now()
	return &User{
		ID:        uuid.New(),
		Subject:   subject,
		Email:     email,
		Username:  username,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func validateEmail(email string) error {
	if email == "" || !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func validateUsername(username string) error {
	if len(username) < 3 {
		return ErrUsernameTooShort
	}
	if len(username) > 30 {
		return ErrUsernameTooLong
	}
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}
