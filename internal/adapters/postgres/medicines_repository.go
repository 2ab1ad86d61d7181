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
	"github.com/pharmaseek/marketplace/backend/internal/medicines/domain"
	"github.com/pharmaseek/marketplace/backend/internal/medicines/ports"
	"github.com/pharmaseek/marketplace/backend/internal/platform/postgres"
	"github.com/shopspring/decimal"
)

// MedicineRepository implements the ports.MedicineRepository interface using PostgreSQL
type MedicineRepository struct {
	postgres.BaseRepository
}

// NewMedicineRepository creates a new PostgreSQL medicine repository
func NewMedicineRepository(db *pgxpool.Pool) *MedicineRepository {
	return &MedicineRepository{
		BaseRepository: postgres.NewBaseRepository(db),
	}
}

// WithTx creates a new repository instance that uses the provided transaction
func (r *MedicineRepository) WithTx(tx pgx.Tx) ports.MedicineRepository {
	return &MedicineRepository{
		BaseRepository: r.BaseRepository.WithTx(tx),
	}
}

// Create inserts a new medicine into the database
func (r *MedicineRepository) Create(ctx context.Context, medicine *domain.Medicine) error {
	query, args, err := r.SB.
		Insert("medicines").
		Columns("id", "pharmacy_id", "name", "description", "price", "availability", "created_at", "updated_at").
		Values(
			pgtype.UUID{Bytes: medicine.ID, Valid: true},
			pgtype.UUID{Bytes: medicine.PharmacyID, Valid: true},
			medicine.Name,
			medicine.Description,
			medicine.Price.String(),
			medicine.Availability,
			pgtype.Timestamptz{Time: medicine.CreatedAt, Valid: true},
			pgtype.Timestamptz{Time: medicine.UpdatedAt, Valid: true},
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("MedicineRepository.Create: build query: %w", err)
	}

	_, err = r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("MedicineRepository.Create: %w", err)
	}

	return nil
}

// FindByID retrieves a medicine by its ID
func (r *MedicineRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Medicine, error) {
	query, args, err := r.selectMedicines().
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("MedicineRepository.FindByID: build query: %w", err)
	}

	row := r.DB.QueryRow(ctx, query, args...)
	medicine, err := scanMedicine(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrMedicineNotFound
		}
		return nil, fmt.Errorf("MedicineRepository.FindByID: %w", err)
	}

	return medicine, nil
}

// Update updates an existing medicine in the database
func (r *MedicineRepository) Update(ctx context.Context, medicine *domain.Medicine) error {
	query, args, err := r.SB.
		Update("medicines").
		Set("name", medicine.Name).
		Set("description", medicine.Description).
		Set("price", medicine.Price.String()).
		Set("availability", medicine.Availability).
		Set("updated_at", pgtype.Timestamptz{Time: medicine.UpdatedAt, Valid: true}).
		Where(sq.Eq{"id": pgtype.UUID{Bytes: medicine.ID, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("MedicineRepository.Update: build query: %w", err)
	}

	result, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("MedicineRepository.Update: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrMedicineNotFound
	}

	return nil
}

// Delete removes a medicine from the database
func (r *MedicineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.SB.
		Delete("medicines").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("MedicineRepository.Delete: build query: %w", err)
	}

	result, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("MedicineRepository.Delete: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrMedicineNotFound
	}

	return nil
}

// List retrieves medicines matching the filter
func (r *MedicineRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Medicine, error) {
	qb := r.selectMedicines()
	qb = applyMedicineFilters(qb, filter)
	qb = qb.OrderBy("created_at DESC")

	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("MedicineRepository.List: build query: %w", err)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("MedicineRepository.List: %w", err)
	}
	defer rows.Close()

	var medicines []*domain.Medicine
	for rows.Next() {
		medicine, err := scanMedicine(rows)
		if err != nil {
			return nil, err
		}
		medicines = append(medicines, medicine)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("MedicineRepository.List: rows error: %w", err)
	}

	return medicines, nil
}

// Count returns the total number of medicines matching the filter
func (r *MedicineRepository) Count(ctx context.Context, filter ports.ListFilter) (int, error) {
	qb := r.SB.Select("COUNT(*)").From("medicines")
	qb = applyMedicineFilters(qb, filter)

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("MedicineRepository.Count: build query: %w", err)
	}

	var count int
	err = r.DB.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("MedicineRepository.Count: %w", err)
	}

	return count, nil
}

// GetPharmacy retrieves just the owning pharmacy ID for a medicine
func (r *MedicineRepository) GetPharmacy(ctx context.Context, medicineID uuid.UUID) (uuid.UUID, error) {
	query, args, err := r.SB.
		Select("pharmacy_id").
		From("medicines").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: medicineID, Valid: true}}).
		ToSql()
	if err != nil {
		return uuid.Nil, fmt.Errorf("MedicineRepository.GetPharmacy: build query: %w", err)
	}

	var pharmacyIDBytes pgtype.UUID
	err = r.DB.QueryRow(ctx, query, args...).Scan(&pharmacyIDBytes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ports.ErrMedicineNotFound
		}
		return uuid.Nil, fmt.Errorf("MedicineRepository.GetPharmacy: %w", err)
	}

	return uuid.UUID(pharmacyIDBytes.Bytes), nil
}

// Helper methods

func (r *MedicineRepository) selectMedicines() sq.SelectBuilder {
	return r.SB.
		Select("id", "pharmacy_id", "name", "description", "price", "availability", "created_at", "updated_at").
		From("medicines")
}

// applyMedicineFilters applies common WHERE clauses to a query builder
func applyMedicineFilters(qb sq.SelectBuilder, filter ports.ListFilter) sq.SelectBuilder {
	if filter.PharmacyID != nil {
		qb = qb.Where(sq.Eq{"pharmacy_id": pgtype.UUID{Bytes: *filter.PharmacyID, Valid: true}})
	}

	if filter.AvailableOnly {
		qb = qb.Where(sq.Eq{"availability": true})
	}

	if filter.SearchQuery != "" {
		searchPattern := "%" + filter.SearchQuery + "%"
		qb = qb.Where(sq.ILike{"name": searchPattern})
	}

	return qb
}

// scanMedicine scans a single medicine from pgx.Row
func scanMedicine(row pgx.Row) (*domain.Medicine, error) {
	var medicine domain.Medicine
	var idBytes, pharmacyIDBytes pgtype.UUID
	var price pgtype.Numeric

	err := row.Scan(
		&idBytes,
		&pharmacyIDBytes,
		&medicine.Name,
		&medicine.Description,
		&price,
		&medicine.Availability,
		&medicine.CreatedAt,
		&medicine.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanMedicine: %w", err)
	}

	medicine.ID = uuid.UUID(idBytes.Bytes)
	medicine.PharmacyID = uuid.UUID(pharmacyIDBytes.Bytes)

	if !price.Valid {
		return nil, fmt.Errorf("scanMedicine: null price")
	}
	medicine.Price = decimal.NewFromBigInt(price.Int, price.Exp)

	return &medicine, nil
}

// Compile-time check to ensure MedicineRepository implements ports.MedicineRepository
var _ ports.MedicineRepository = (*MedicineRepository)(nil)
