package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/authz"
	"github.com/pharmaseek/marketplace/backend/internal/users/application"
	"github.com/pharmaseek/marketplace/backend/internal/users/domain"
	"github.com/pharmaseek/marketplace/backend/internal/users/ports"
)

// mockLogger implements the logger.Logger interface for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(ctx context.Context, msg string, keysAndValues ...interface{}) {}

// mockUserRepo implements ports.UserRepository with overridable functions.
// Unset functions return not-found / zero values.
type mockUserRepo struct {
	createFn           func(ctx context.Context, user *domain.User) error
	findByIDFn         func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	findBySubjectFn    func(ctx context.Context, subject string) (*domain.User, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, ports.ErrUserNotFound
}

func (m *mockUserRepo) FindBySubject(ctx context.Context, subject string) (*domain.User, error) {
	if m.findBySubjectFn != nil {
		return m.findBySubjectFn(ctx, subject)
	}
	return nil, ports.ErrUserNotFound
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func newService(repo *mockUserRepo) *application.UsersService {
	return application.NewUsersService(repo, &mockLogger{})
}

func validParams() application.RegisterUserParams {
	return application.RegisterUserParams{
		Subject:  "auth0|abc123",
		Email:    "jo@example.com",
		Username: "jo_pharm",
		Role:     authz.RoleConsumer,
	}
}

func TestRegisterUser(t *testing.T) {
	var created *domain.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *domain.User) error {
			created = user
			return nil
		},
	}
	service := newService(repo)

	user, err := service.RegisterUser(context.Background(), validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if user.Subject != "auth0|abc123" {
		t.Errorf("expected subject from the token, got %q", user.Subject)
	}
	if user.Role != authz.RoleConsumer {
		t.Errorf("expected consumer role, got %s", user.Role)
	}
	if created == nil {
		t.Fatal("expected repository Create to be called")
	}
}

func TestRegisterUserSubjectAlreadyRegistered(t *testing.T) {
	repo := &mockUserRepo{
		findBySubjectFn: func(ctx context.Context, subject string) (*domain.User, error) {
			return &domain.User{ID: uuid.New(), Subject: subject}, nil
		},
	}
	service := newService(repo)

	_, err := service.RegisterUser(context.Background(), validParams())
	if !errors.Is(err, application.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestRegisterUserUsernameTaken(t *testing.T) {
	repo := &mockUserRepo{
		existsByUsernameFn: func(ctx context.Context, username string) (bool, error) {
			return true, nil
		},
	}
	service := newService(repo)

	_, err := service.RegisterUser(context.Background(), validParams())
	if !errors.Is(err, application.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestRegisterUserEmailRegistered(t *testing.T) {
	repo := &mockUserRepo{
		existsByEmailFn: func(ctx context.Context, email string) (bool, error) {
			return true, nil
		},
	}
	service := newService(repo)

	_, err := service.RegisterUser(context.Background(), validParams())
	if !errors.Is(err, application.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}
}

func TestRegisterUserAdminRoleRejected(t *testing.T) {
	// Admins are provisioned out of band; self-registration only accepts
	// consumer and pharmacy.
	service := newService(&mockUserRepo{})

	params := validParams()
	params.Role = authz.RoleAdmin

	_, err := service.RegisterUser(context.Background(), params)
	if !errors.Is(err, application.ErrInvalidUserData) {
		t.Fatalf("expected ErrInvalidUserData, got %v", err)
	}
}

func TestRegisterUserInvalidUsername(t *testing.T) {
	service := newService(&mockUserRepo{})

	params := validParams()
	params.Username = "x"

	_, err := service.RegisterUser(context.Background(), params)
	if !errors.Is(err, application.ErrInvalidUserData) {
		t.Fatalf("expected ErrInvalidUserData, got %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	service := newService(&mockUserRepo{})

	_, err := service.GetUser(context.Background(), uuid.New())
	if !errors.Is(err, application.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUserBySubject(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Subject: "auth0|abc123", Role: authz.RoleConsumer}
	repo := &mockUserRepo{
		findBySubjectFn: func(ctx context.Context, subject string) (*domain.User, error) {
			if subject != user.Subject {
				return nil, ports.ErrUserNotFound
			}
			return user, nil
		},
	}
	service := newService(repo)

	found, err := service.GetUserBySubject(context.Background(), "auth0|abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.ID != user.ID {
		t.Errorf("expected user %s, got %s", user.ID, found.ID)
	}
}
