package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pharmaseek/marketplace/backend/internal/authz"
	"github.com/pharmaseek/marketplace/backend/internal/platform/postgres"
	"github.com/pharmaseek/marketplace/backend/internal/users/domain"
	"github.com/pharmaseek/marketplace/backend/internal/users/ports"
)

// UserRepository implements the ports.UserRepository interface using PostgreSQL
type UserRepository struct {
	postgres.BaseRepository
}

// NewUserRepository creates a new PostgreSQL user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		BaseRepository: postgres.NewBaseRepository(db),
	}
}

// Create inserts a new user into the database
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query, args, err := r.SB.
		Insert("users").
		Columns("id", "subject", "email", "username", "role", "created_at", "updated_at").
		Values(
			pgtype.UUID{Bytes: user.ID, Valid: true},
			user.Subject,
			user.Email,
			user.Username,
			string(user.Role),
			pgtype.Timestamptz{Time: user.CreatedAt, Valid: true},
			pgtype.Timestamptz{Time: user.UpdatedAt, Valid: true},
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("UserRepository.Create: build query: %w", err)
	}

	_, err = r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("UserRepository.Create: %w", err)
	}

	return nil
}

// FindByID retrieves a user by internal ID
func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query, args, err := r.selectUsers().
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("UserRepository.FindByID: build query: %w", err)
	}

	row := r.DB.QueryRow(ctx, query, args...)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrUserNotFound
		}
		return nil, fmt.Errorf("UserRepository.FindByID: %w", err)
	}

	return user, nil
}

// FindBySubject retrieves a user by external auth subject claim
func (r *UserRepository) FindBySubject(ctx context.Context, subject string) (*domain.User, error) {
	query, args, err := r.selectUsers().
		Where(sq.Eq{"subject": subject}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("UserRepository.FindBySubject: build query: %w", err)
	}

	row := r.DB.QueryRow(ctx, query, args...)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrUserNotFound
		}
		return nil, fmt.Errorf("UserRepository.FindBySubject: %w", err)
	}

	return user, nil
}

// ExistsByEmail checks whether an email is already registered
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, sq.Eq{"email": email}, "UserRepository.ExistsByEmail")
}

// ExistsByUsername checks whether a username is already taken
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, sq.Eq{"username": username}, "UserRepository.ExistsByUsername")
}

// Helper methods

func (r *UserRepository) selectUsers() sq.SelectBuilder {
	return r.SB.
		Select("id", "subject", "email", "username", "role", "created_at", "updated_at").
		From("users")
}

func (r *UserRepository) exists(ctx context.Context, pred sq.Eq, op string) (bool, error) {
	subQuerySQL, subQueryArgs, err := r.SB.Select("1").From("users").Where(pred).ToSql()
	if err != nil {
		return false, fmt.Errorf("%s: build subquery: %w", op, err)
	}

	query := fmt.Sprintf("SELECT EXISTS(%s)", subQuerySQL)

	var exists bool
	err = r.DB.QueryRow(ctx, query, subQueryArgs...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return exists, nil
}

// scanUser scans a single user from pgx.Row
func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var idBytes pgtype.UUID
	var roleStr string

	err := row.Scan(
		&idBytes,
		&user.Subject,
		&user.Email,
		&user.Username,
		&roleStr,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanUser: %w", err)
	}

	user.ID = uuid.UUID(idBytes.Bytes)

	user.Role = authz.Role(roleStr)
	if !user.Role.IsValid() {
		return nil, fmt.Errorf("scanUser: invalid role %s", roleStr)
	}

	return &user, nil
}

// Compile-time check to ensure UserRepository implements ports.UserRepository
var _ ports.UserRepository = (*UserRepository)(nil)
