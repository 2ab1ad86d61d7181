package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pharmaseek/marketplace/backend/internal/pharmacies/domain"
	"github.com/pharmaseek/marketplace/backend/internal/pharmacies/ports"
	"github.com/pharmaseek/marketplace/backend/internal/platform/postgres"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations
const uniqueViolation = "23505"

// PharmacyRepository implements the ports.PharmacyRepository interface using PostgreSQL
type PharmacyRepository struct {
	postgres.BaseRepository
}

// NewPharmacyRepository creates a new PostgreSQL pharmacy repository
func NewPharmacyRepository(db *pgxpool.Pool) *PharmacyRepository {
	return &PharmacyRepository{
		BaseRepository: postgres.NewBaseRepository(db),
	}
}

// Create inserts a new pharmacy into the database. A unique violation on
// the license column is translated to ports.ErrDuplicateLicense so the
// race between a pre-check and the insert still surfaces the right error.
func (r *PharmacyRepository) Create(ctx context.Context, pharmacy *domain.Pharmacy) error {
	query, args, err := r.SB.
		Insert("pharmacies").
		Columns("id", "owner_id", "name", "address", "license", "verified", "created_at", "updated_at").
		Values(
			pgtype.UUID{Bytes: pharmacy.ID, Valid: true},
			pgtype.UUID{Bytes: pharmacy.OwnerID, Valid: true},
			pharmacy.Name,
			pharmacy.Address,
			pharmacy.License,
			pharmacy.Verified,
			pgtype.Timestamptz{Time: pharmacy.CreatedAt, Valid: true},
			pgtype.Timestamptz{Time: pharmacy.UpdatedAt, Valid: true},
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("PharmacyRepository.Create: build query: %w", err)
	}

	_, err = r.DB.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ports.ErrDuplicateLicense
		}
		return fmt.Errorf("PharmacyRepository.Create: %w", err)
	}

	return nil
}

// FindByID retrieves a pharmacy by its ID
func (r *PharmacyRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Pharmacy, error) {
	query, args, err := r.selectPharmacies().
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("PharmacyRepository.FindByID: build query: %w", err)
	}

	row := r.DB.QueryRow(ctx, query, args...)
	pharmacy, err := scanPharmacy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrPharmacyNotFound
		}
		return nil, fmt.Errorf("PharmacyRepository.FindByID: %w", err)
	}

	return pharmacy, nil
}

// FindByOwner retrieves the pharmacy owned by a user, if any
func (r *PharmacyRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Pharmacy, error) {
	query, args, err := r.selectPharmacies().
		Where(sq.Eq{"owner_id": pgtype.UUID{Bytes: ownerID, Valid: true}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("PharmacyRepository.FindByOwner: build query: %w", err)
	}

	row := r.DB.QueryRow(ctx, query, args...)
	pharmacy, err := scanPharmacy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrPharmacyNotFound
		}
		return nil, fmt.Errorf("PharmacyRepository.FindByOwner: %w", err)
	}

	return pharmacy, nil
}

// Update updates an existing pharmacy in the database
func (r *PharmacyRepository) Update(ctx context.Context, pharmacy *domain.Pharmacy) error {
	query, args, err := r.SB.
		Update("pharmacies").
		Set("name", pharmacy.Name).
		Set("address", pharmacy.Address).
		Set("verified", pharmacy.Verified).
		Set("updated_at", pgtype.Timestamptz{Time: pharmacy.UpdatedAt, Valid: true}).
		Where(sq.Eq{"id": pgtype.UUID{Bytes: pharmacy.ID, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("PharmacyRepository.Update: build query: %w", err)
	}

	result, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("PharmacyRepository.Update: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrPharmacyNotFound
	}

	return nil
}

// Delete removes a pharmacy from the database
func (r *PharmacyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.SB.
		Delete("pharmacies").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("PharmacyRepository.Delete: build query: %w", err)
	}

	result, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("PharmacyRepository.Delete: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrPharmacyNotFound
	}

	return nil
}

// List retrieves pharmacies matching the filter
func (r *PharmacyRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Pharmacy, error) {
	qb := r.selectPharmacies()
	qb = applyPharmacyFilters(qb, filter)
	qb = qb.OrderBy("created_at DESC")

	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("PharmacyRepository.List: build query: %w", err)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("PharmacyRepository.List: %w", err)
	}
	defer rows.Close()

	var pharmacies []*domain.Pharmacy
	for rows.Next() {
		pharmacy, err := scanPharmacy(rows)
		if err != nil {
			return nil, err
		}
		pharmacies = append(pharmacies, pharmacy)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("PharmacyRepository.List: rows error: %w", err)
	}

	return pharmacies, nil
}

// Count returns the total number of pharmacies matching the filter
func (r *PharmacyRepository) Count(ctx context.Context, filter ports.ListFilter) (int, error) {
	qb := r.SB.Select("COUNT(*)").From("pharmacies")
	qb = applyPharmacyFilters(qb, filter)

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("PharmacyRepository.Count: build query: %w", err)
	}

	var count int
	err = r.DB.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("PharmacyRepository.Count: %w", err)
	}

	return count, nil
}

// LicenseExists checks if a license is already in use
func (r *PharmacyRepository) LicenseExists(ctx context.Context, license string) (bool, error) {
	subQuerySQL, subQueryArgs, err := r.SB.
		Select("1").
		From("pharmacies").
		Where(sq.Eq{"license": license}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("PharmacyRepository.LicenseExists: build subquery: %w", err)
	}

	query := fmt.Sprintf("SELECT EXISTS(%s)", subQuerySQL)

	var exists bool
	err = r.DB.QueryRow(ctx, query, subQueryArgs...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("PharmacyRepository.LicenseExists: %w", err)
	}

	return exists, nil
}

// GetOwner retrieves just the owner ID for a pharmacy (for ownership checks)
func (r *PharmacyRepository) GetOwner(ctx context.Context, pharmacyID uuid.UUID) (uuid.UUID, error) {
	query, args, err := r.SB.
		Select("owner_id").
		From("pharmacies").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: pharmacyID, Valid: true}}).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("PharmacyRepository.GetOwner: build query: %w", err)
	}

	var ownerIDBytes pgtype.UUID
	err = r.DB.QueryRow(ctx, query, args...).Scan(&ownerIDBytes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ports.ErrPharmacyNotFound
		}
		return uuid.Nil, fmt.Errorf("PharmacyRepository.GetOwner: %w", err)
	}

	return uuid.UUID(ownerIDBytes.Bytes), nil
}

// Helper methods

func (r *PharmacyRepository) selectPharmacies() sq.SelectBuilder {
	return r.SB.
		Select("id", "owner_id", "name", "address", "license", "verified", "created_at", "updated_at").
		From("pharmacies")
}

// applyPharmacyFilters applies common WHERE clauses to a query builder
func applyPharmacyFilters(qb sq.SelectBuilder, filter ports.ListFilter) sq.SelectBuilder {
	if filter.Verified != nil {
		qb = qb.Where(sq.Eq{"verified": *filter.Verified})
	}

	if filter.SearchQuery != "" {
		searchPattern := "%" + filter.SearchQuery + "%"
		qb = qb.Where(sq.Or{
			sq.ILike{"name": searchPattern},
			sq.ILike{"address": searchPattern},
		})
	}

	return qb
}

// scanPharmacy scans a single pharmacy from pgx.Row
func scanPharmacy(row pgx.Row) (*domain.Pharmacy, error) {
	var pharmacy domain.Pharmacy
	var idBytes, ownerIDBytes pgtype.UUID

	err := row.Scan(
		&idBytes,
		&ownerIDBytes,
		&pharmacy.Name,
		&pharmacy.Address,
		&pharmacy.License,
		&pharmacy.Verified,
		&pharmacy.CreatedAt,
		&pharmacy.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanPharmacy: %w", err)
	}

	pharmacy.ID = uuid.UUID(idBytes.Bytes)
	pharmacy.OwnerID = uuid.UUID(ownerIDBytes.Bytes)

	return &pharmacy, nil
}

// Compile-time check to ensure PharmacyRepository implements ports.PharmacyRepository
var _ ports.PharmacyRepository = (*PharmacyRepository)(nil)
