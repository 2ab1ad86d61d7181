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
	"github.com/pharmaseek/marketplace/backend/internal/platform/postgres"
	"github.com/pharmaseek/marketplace/backend/internal/reservations/domain"
	"github.com/pharmaseek/marketplace/backend/internal/reservations/ports"
)

// ReservationRepository implements the ports.ReservationRepository interface using PostgreSQL
type ReservationRepository struct {
	postgres.BaseRepository
}

// NewReservationRepository creates a new PostgreSQL reservation repository
func NewReservationRepository(db *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{
		BaseRepository: postgres.NewBaseRepository(db),
	}
}

// WithTx creates a new repository instance that uses the provided transaction
func (r *ReservationRepository) WithTx(tx pgx.Tx) ports.ReservationRepository {
	return &ReservationRepository{
		BaseRepository: r.BaseRepository.WithTx(tx),
	}
}

// Create inserts a new reservation into the database
func (r *ReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	query, args, err := r.SB.
		Insert("reservations").
		Columns("id", "requester_id", "medicine_id", "pharmacy_id", "status", "created_at", "updated_at").
		Values(
			pgtype.UUID{Bytes: reservation.ID, Valid: true},
			pgtype.UUID{Bytes: reservation.RequesterID, Valid: true},
			pgtype.UUID{Bytes: reservation.MedicineID, Valid: true},
			pgtype.UUID{Bytes: reservation.PharmacyID, Valid: true},
			string(reservation.Status),
			pgtype.Timestamptz{Time: reservation.CreatedAt, Valid: true},
			pgtype.Timestamptz{Time: reservation.UpdatedAt, Valid: true},
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("ReservationRepository.Create: build query: %w", err)
	}

	_, err = r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ReservationRepository.Create: %w", err)
	}

	return nil
}

// FindByID retrieves a reservation by its ID
func (r *ReservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	query, args, err := r.selectReservations().
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.FindByID: build query: %w", err)
	}

	row := r.DB.QueryRow(ctx, query, args...)
	reservation, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrReservationNotFound
		}
		return nil, fmt.Errorf("ReservationRepository.FindByID: %w", err)
	}

	return reservation, nil
}

// Update updates an existing reservation in the database
func (r *ReservationRepository) Update(ctx context.Context, reservation *domain.Reservation) error {
	query, args, err := r.SB.
		Update("reservations").
		Set("status", string(reservation.Status)).
		Set("updated_at", pgtype.Timestamptz{Time: reservation.UpdatedAt, Valid: true}).
		Where(sq.Eq{"id": pgtype.UUID{Bytes: reservation.ID, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ReservationRepository.Update: build query: %w", err)
	}

	result, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ReservationRepository.Update: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrReservationNotFound
	}

	return nil
}

// Delete removes a reservation from the database permanently
func (r *ReservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.SB.
		Delete("reservations").
		Where(sq.Eq{"id": pgtype.UUID{Bytes: id, Valid: true}}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ReservationRepository.Delete: build query: %w", err)
	}

	result, err := r.DB.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ReservationRepository.Delete: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ports.ErrReservationNotFound
	}

	return nil
}

// List retrieves reservations matching the filter
func (r *ReservationRepository) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Reservation, error) {
	qb := r.selectReservations()
	qb = applyReservationFilters(qb, filter)
	qb = qb.OrderBy("created_at DESC")

	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		qb = qb.Offset(uint64(filter.Offset))
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.List: build query: %w", err)
	}

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ReservationRepository.List: %w", err)
	}
	defer rows.Close()

	var reservations []*domain.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ReservationRepository.List: rows error: %w", err)
	}

	return reservations, nil
}

// Count returns the total number of reservations matching the filter
func (r *ReservationRepository) Count(ctx context.Context, filter ports.ListFilter) (int, error) {
	qb := r.SB.Select("COUNT(*)").From("reservations")
	qb = applyReservationFilters(qb, filter)

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("ReservationRepository.Count: build query: %w", err)
	}

	var count int
	err = r.DB.QueryRow(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ReservationRepository.Count: %w", err)
	}

	return count, nil
}

// HasPendingForMedicine reports whether the requester already holds a
// pending reservation for the medicine
func (r *ReservationRepository) HasPendingForMedicine(ctx context.Context, requesterID, medicineID uuid.UUID) (bool, error) {
	subQuerySQL, subQueryArgs, err := r.SB.
		Select("1").
		From("reservations").
		Where(sq.Eq{
			"requester_id": pgtype.UUID{Bytes: requesterID, Valid: true},
			"medicine_id":  pgtype.UUID{Bytes: medicineID, Valid: true},
			"status":       string(domain.StatusPending),
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("ReservationRepository.HasPendingForMedicine: build subquery: %w", err)
	}

	query := fmt.Sprintf("SELECT EXISTS(%s)", subQuerySQL)

	var exists bool
	err = r.DB.QueryRow(ctx, query, subQueryArgs...).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ReservationRepository.HasPendingForMedicine: %w", err)
	}

	return exists, nil
}

// Helper methods

func (r *ReservationRepository) selectReservations() sq.SelectBuilder {
	return r.SB.
		Select("id", "requester_id", "medicine_id", "pharmacy_id", "status", "created_at", "updated_at").
		From("reservations")
}

// applyReservationFilters applies common WHERE clauses to a query builder
func applyReservationFilters(qb sq.SelectBuilder, filter ports.ListFilter) sq.SelectBuilder {
	if filter.RequesterID != nil {
		qb = qb.Where(sq.Eq{"requester_id": pgtype.UUID{Bytes: *filter.RequesterID, Valid: true}})
	}

	if filter.PharmacyID != nil {
		qb = qb.Where(sq.Eq{"pharmacy_id": pgtype.UUID{Bytes: *filter.PharmacyID, Valid: true}})
	}

	if filter.Status != nil {
		qb = qb.Where(sq.Eq{"status": string(*filter.Status)})
	}

	return qb
}

// scanReservation scans a single reservation from pgx.Row
func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var reservation domain.Reservation
	var idBytes, requesterIDBytes, medicineIDBytes, pharmacyIDBytes pgtype.UUID
	var statusStr string

	err := row.Scan(
		&idBytes,
		&requesterIDBytes,
		&medicineIDBytes,
		&pharmacyIDBytes,
		&statusStr,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scanReservation: %w", err)
	}

	reservation.ID = uuid.UUID(idBytes.Bytes)
	reservation.RequesterID = uuid.UUID(requesterIDBytes.Bytes)
	reservation.MedicineID = uuid.UUID(medicineIDBytes.Bytes)
	reservation.PharmacyID = uuid.UUID(pharmacyIDBytes.Bytes)

	reservation.Status = domain.Status(statusStr)
	if !reservation.Status.IsValid() {
		return nil, fmt.Errorf("scanReservation: invalid status %s", statusStr)
	}

	return &reservation, nil
}

// Compile-time check to ensure ReservationRepository implements ports.ReservationRepository
var _ ports.ReservationRepository = (*ReservationRepository)(nil)
