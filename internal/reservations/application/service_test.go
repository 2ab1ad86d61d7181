package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pharmaseek/marketplace/backend/internal/authz"
	medicinedomain "github.com/pharmaseek/marketplace/backend/internal/medicines/domain"
	medicineports "github.com/pharmaseek/marketplace/backend/internal/medicines/ports"
	pharmacydomain "github.com/pharmaseek/marketplace/backend/internal/pharmacies/domain"
	pharmacyports "github.com/pharmaseek/marketplace/backend/internal/pharmacies/ports"
	"github.com/pharmaseek/marketplace/backend/internal/platform/eventbus"
	"github.com/pharmaseek/marketplace/backend/internal/platform/metrics"
	"github.com/pharmaseek/marketplace/backend/internal/platform/postgres"
	"github.com/pharmaseek/marketplace/backend/internal/reservations/application"
	"github.com/pharmaseek/marketplace/backend/internal/reservations/domain"
	"github.com/pharmaseek/marketplace/backend/internal/reservations/ports"
)

// mockLogger implements the logger.Logger interface for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(ctx context.Context, msg string, keysAndValues ...interface{}) {}

// Prometheus collectors register on the default registry, so the package
// shares one instance across all tests.
var testMetrics = metrics.New()

// mockReservationRepo implements ports.ReservationRepository with
// overridable functions. Unset functions return not-found / zero values.
type mockReservationRepo struct {
	createFn     func(ctx context.Context, reservation *domain.Reservation) error
	findByIDFn   func(ctx context.Context, id uuid.UUID) (*domain.Reservation, error)
	updateFn     func(ctx context.Context, reservation *domain.Reservation) error
	deleteFn     func(ctx context.Context, id uuid.UUID) error
	listFn       func(ctx context.Context, filter ports.ListFilter) ([]*domain.Reservation, error)
	countFn      func(ctx context.Context, filter ports.ListFilter) (int, error)
	hasPendingFn func(ctx context.Context, requesterID, medicineID uuid.UUID) (bool, error)
}

func (m *mockReservationRepo) Create(ctx context.Context, reservation *domain.Reservation) error {
	if m.createFn != nil {
		return m.createFn(ctx, reservation)
	}
	return nil
}

func (m *mockReservationRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, ports.ErrReservationNotFound
}

func (m *mockReservationRepo) Update(ctx context.Context, reservation *domain.Reservation) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, reservation)
	}
	return nil
}

func (m *mockReservationRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockReservationRepo) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Reservation, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockReservationRepo) Count(ctx context.Context, filter ports.ListFilter) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, filter)
	}
	return 0, nil
}

func (m *mockReservationRepo) HasPendingForMedicine(ctx context.Context, requesterID, medicineID uuid.UUID) (bool, error) {
	if m.hasPendingFn != nil {
		return m.hasPendingFn(ctx, requesterID, medicineID)
	}
	return false, nil
}

func (m *mockReservationRepo) WithTx(tx pgx.Tx) ports.ReservationRepository {
	return m
}

// mockMedicineRepo implements medicineports.MedicineRepository
type mockMedicineRepo struct {
	findByIDFn    func(ctx context.Context, id uuid.UUID) (*medicinedomain.Medicine, error)
	getPharmacyFn func(ctx context.Context, medicineID uuid.UUID) (uuid.UUID, error)
}

func (m *mockMedicineRepo) Create(ctx context.Context, medicine *medicinedomain.Medicine) error {
	return nil
}

func (m *mockMedicineRepo) FindByID(ctx context.Context, id uuid.UUID) (*medicinedomain.Medicine, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, medicineports.ErrMedicineNotFound
}

func (m *mockMedicineRepo) Update(ctx context.Context, medicine *medicinedomain.Medicine) error {
	return nil
}

func (m *mockMedicineRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *mockMedicineRepo) List(ctx context.Context, filter medicineports.ListFilter) ([]*medicinedomain.Medicine, error) {
	return nil, nil
}

func (m *mockMedicineRepo) Count(ctx context.Context, filter medicineports.ListFilter) (int, error) {
	return 0, nil
}

func (m *mockMedicineRepo) GetPharmacy(ctx context.Context, medicineID uuid.UUID) (uuid.UUID, error) {
	if m.getPharmacyFn != nil {
		return m.getPharmacyFn(ctx, medicineID)
	}
	return uuid.Nil, medicineports.ErrMedicineNotFound
}

func (m *mockMedicineRepo) WithTx(tx pgx.Tx) medicineports.MedicineRepository {
	return m
}

// mockPharmacyRepo implements pharmacyports.PharmacyRepository
type mockPharmacyRepo struct {
	getOwnerFn func(ctx context.Context, pharmacyID uuid.UUID) (uuid.UUID, error)
}

func (m *mockPharmacyRepo) Create(ctx context.Context, pharmacy *pharmacydomain.Pharmacy) error {
	return nil
}

func (m *mockPharmacyRepo) FindByID(ctx context.Context, id uuid.UUID) (*pharmacydomain.Pharmacy, error) {
	return nil, pharmacyports.ErrPharmacyNotFound
}

func (m *mockPharmacyRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*pharmacydomain.Pharmacy, error) {
	return nil, pharmacyports.ErrPharmacyNotFound
}

func (m *mockPharmacyRepo) Update(ctx context.Context, pharmacy *pharmacydomain.Pharmacy) error {
	return nil
}

func (m *mockPharmacyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (m *mockPharmacyRepo) List(ctx context.Context, filter pharmacyports.ListFilter) ([]*pharmacydomain.Pharmacy, error) {
	return nil, nil
}

func (m *mockPharmacyRepo) Count(ctx context.Context, filter pharmacyports.ListFilter) (int, error) {
	return 0, nil
}

func (m *mockPharmacyRepo) LicenseExists(ctx context.Context, license string) (bool, error) {
	return false, nil
}

func (m *mockPharmacyRepo) GetOwner(ctx context.Context, pharmacyID uuid.UUID) (uuid.UUID, error) {
	if m.getOwnerFn != nil {
		return m.getOwnerFn(ctx, pharmacyID)
	}
	return uuid.Nil, pharmacyports.ErrPharmacyNotFound
}

// mockTransaction records commit/rollback calls; Tx() returns nil because
// the mock repositories ignore the bound transaction.
type mockTransaction struct {
	committed  bool
	rolledBack bool
}

func (t *mockTransaction) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *mockTransaction) Rollback(ctx context.Context) error {
	t.rolledBack = true
	return nil
}

func (t *mockTransaction) Tx() pgx.Tx {
	return nil
}

type mockTxManager struct {
	tx      *mockTransaction
	began   int
	beginFn func(ctx context.Context) (postgres.Transaction, error)
}

func (m *mockTxManager) BeginTx(ctx context.Context) (postgres.Transaction, error) {
	m.began++
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	m.tx = &mockTransaction{}
	return m.tx, nil
}

func newService(reservations *mockReservationRepo, medicines *mockMedicineRepo, pharmacies *mockPharmacyRepo, txManager *mockTxManager) *application.ReservationsService {
	logger := &mockLogger{}
	return application.NewReservationsService(
		reservations,
		medicines,
		pharmacies,
		txManager,
		eventbus.NewBus(logger),
		testMetrics,
		logger,
	)
}

func consumer() authz.Principal {
	return authz.Principal{ID: uuid.New(), Role: authz.RoleConsumer}
}

func pharmacist() authz.Principal {
	return authz.Principal{ID: uuid.New(), Role: authz.RolePharmacy}
}

func admin() authz.Principal {
	return authz.Principal{ID: uuid.New(), Role: authz.RoleAdmin}
}

func availableMedicine(pharmacyID uuid.UUID) *medicinedomain.Medicine {
	return &medicinedomain.Medicine{
		ID:           uuid.New(),
		PharmacyID:   pharmacyID,
		Name:         "Ibuprofen 400mg",
		Availability: true,
	}
}

func TestCreateReservation(t *testing.T) {
	principal := consumer()
	pharmacyID := uuid.New()
	medicine := availableMedicine(pharmacyID)

	var created *domain.Reservation
	reservations := &mockReservationRepo{
		createFn: func(ctx context.Context, reservation *domain.Reservation) error {
			created = reservation
			return nil
		},
	}
	medicines := &mockMedicineRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*medicinedomain.Medicine, error) {
			if id != medicine.ID {
				return nil, medicineports.ErrMedicineNotFound
			}
			return medicine, nil
		},
	}
	txManager := &mockTxManager{}
	service := newService(reservations, medicines, &mockPharmacyRepo{}, txManager)

	reservation, err := service.CreateReservation(context.Background(), principal, medicine.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reservation.Status != domain.StatusPending {
		t.Errorf("expected status pending, got %s", reservation.Status)
	}
	if reservation.RequesterID != principal.ID {
		t.Errorf("expected requester %s, got %s", principal.ID, reservation.RequesterID)
	}
	if reservation.PharmacyID != pharmacyID {
		t.Errorf("expected pharmacy snapshot %s, got %s", pharmacyID, reservation.PharmacyID)
	}
	if created == nil {
		t.Fatal("expected repository Create to be called")
	}
	if !txManager.tx.committed {
		t.Error("expected transaction to be committed")
	}
}

func TestCreateReservationMedicineNotFound(t *testing.T) {
	txManager := &mockTxManager{}
	service := newService(&mockReservationRepo{}, &mockMedicineRepo{}, &mockPharmacyRepo{}, txManager)

	_, err := service.CreateReservation(context.Background(), consumer(), uuid.New())
	if !errors.Is(err, application.ErrMedicineNotFound) {
		t.Fatalf("expected ErrMedicineNotFound, got %v", err)
	}
	if txManager.tx.committed {
		t.Error("expected transaction not to be committed")
	}
	if !txManager.tx.rolledBack {
		t.Error("expected transaction to be rolled back")
	}
}

func TestCreateReservationMedicineUnavailable(t *testing.T) {
	medicine := availableMedicine(uuid.New())
	medicine.Availability = false

	medicines := &mockMedicineRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*medicinedomain.Medicine, error) {
			return medicine, nil
		},
	}
	txManager := &mockTxManager{}
	service := newService(&mockReservationRepo{}, medicines, &mockPharmacyRepo{}, txManager)

	_, err := service.CreateReservation(context.Background(), consumer(), medicine.ID)
	if !errors.Is(err, application.ErrMedicineUnavailable) {
		t.Fatalf("expected ErrMedicineUnavailable, got %v", err)
	}
	if txManager.tx.committed {
		t.Error("expected transaction not to be committed")
	}
}

func TestCreateReservationDuplicatePending(t *testing.T) {
	principal := consumer()
	medicine := availableMedicine(uuid.New())

	reservations := &mockReservationRepo{
		hasPendingFn: func(ctx context.Context, requesterID, medicineID uuid.UUID) (bool, error) {
			if requesterID != principal.ID || medicineID != medicine.ID {
				t.Errorf("pending check used wrong keys: %s %s", requesterID, medicineID)
			}
			return true, nil
		},
		createFn: func(ctx context.Context, reservation *domain.Reservation) error {
			t.Error("Create should not be called when a pending reservation exists")
			return nil
		},
	}
	medicines := &mockMedicineRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*medicinedomain.Medicine, error) {
			return medicine, nil
		},
	}
	service := newService(reservations, medicines, &mockPharmacyRepo{}, &mockTxManager{})

	_, err := service.CreateReservation(context.Background(), principal, medicine.ID)
	if !errors.Is(err, application.ErrDuplicatePendingReservation) {
		t.Fatalf("expected ErrDuplicatePendingReservation, got %v", err)
	}
}

func TestCreateReservationRequiresConsumerRole(t *testing.T) {
	txManager := &mockTxManager{}
	service := newService(&mockReservationRepo{}, &mockMedicineRepo{}, &mockPharmacyRepo{}, txManager)

	_, err := service.CreateReservation(context.Background(), pharmacist(), uuid.New())
	if !errors.Is(err, application.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if txManager.began != 0 {
		t.Error("expected no transaction before the role check passes")
	}
}

func existingReservation(requesterID, pharmacyID uuid.UUID, status domain.Status) *domain.Reservation {
	return &domain.Reservation{
		ID:          uuid.New(),
		RequesterID: requesterID,
		MedicineID:  uuid.New(),
		PharmacyID:  pharmacyID,
		Status:      status,
	}
}

func repoWith(reservation *domain.Reservation) *mockReservationRepo {
	return &mockReservationRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
			if id != reservation.ID {
				return nil, ports.ErrReservationNotFound
			}
			return reservation, nil
		},
	}
}

func pharmacyOwnedBy(ownerID uuid.UUID) *mockPharmacyRepo {
	return &mockPharmacyRepo{
		getOwnerFn: func(ctx context.Context, pharmacyID uuid.UUID) (uuid.UUID, error) {
			return ownerID, nil
		},
	}
}

func TestSetStatusConfirmByServicingPharmacyOwner(t *testing.T) {
	owner := pharmacist()
	reservation := existingReservation(uuid.New(), uuid.New(), domain.StatusPending)

	repo := repoWith(reservation)
	var updated *domain.Reservation
	repo.updateFn = func(ctx context.Context, r *domain.Reservation) error {
		updated = r
		return nil
	}
	service := newService(repo, &mockMedicineRepo{}, pharmacyOwnedBy(owner.ID), &mockTxManager{})

	result, err := service.SetStatus(context.Background(), owner, reservation.ID, domain.StatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.StatusConfirmed {
		t.Errorf("expected status confirmed, got %s", result.Status)
	}
	if updated == nil {
		t.Fatal("expected repository Update to be called")
	}
}

func TestSetStatusConfirmByRequesterDenied(t *testing.T) {
	requester := consumer()
	reservation := existingReservation(requester.ID, uuid.New(), domain.StatusPending)

	service := newService(repoWith(reservation), &mockMedicineRepo{}, pharmacyOwnedBy(uuid.New()), &mockTxManager{})

	_, err := service.SetStatus(context.Background(), requester, reservation.ID, domain.StatusConfirmed)
	if !errors.Is(err, application.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestSetStatusCancelByRequester(t *testing.T) {
	requester := consumer()
	reservation := existingReservation(requester.ID, uuid.New(), domain.StatusPending)

	service := newService(repoWith(reservation), &mockMedicineRepo{}, pharmacyOwnedBy(uuid.New()), &mockTxManager{})

	result, err := service.SetStatus(context.Background(), requester, reservation.ID, domain.StatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.StatusCancelled {
		t.Errorf("expected status cancelled, got %s", result.Status)
	}
}

func TestSetStatusCancelByServicingPharmacyOwner(t *testing.T) {
	owner := pharmacist()
	reservation := existingReservation(uuid.New(), uuid.New(), domain.StatusPending)

	service := newService(repoWith(reservation), &mockMedicineRepo{}, pharmacyOwnedBy(owner.ID), &mockTxManager{})

	result, err := service.SetStatus(context.Background(), owner, reservation.ID, domain.StatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.StatusCancelled {
		t.Errorf("expected status cancelled, got %s", result.Status)
	}
}

func TestSetStatusCancelByStrangerDenied(t *testing.T) {
	reservation := existingReservation(uuid.New(), uuid.New(), domain.StatusPending)

	service := newService(repoWith(reservation), &mockMedicineRepo{}, pharmacyOwnedBy(uuid.New()), &mockTxManager{})

	_, err := service.SetStatus(context.Background(), consumer(), reservation.ID, domain.StatusCancelled)
	if !errors.Is(err, application.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestSetStatusBackToPendingRequiresAdmin(t *testing.T) {
	requester := consumer()
	reservation := existingReservation(requester.ID, uuid.New(), domain.StatusCancelled)

	service := newService(repoWith(reservation), &mockMedicineRepo{}, pharmacyOwnedBy(uuid.New()), &mockTxManager{})

	_, err := service.SetStatus(context.Background(), requester, reservation.ID, domain.StatusPending)
	if !errors.Is(err, application.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized for requester, got %v", err)
	}

	result, err := service.SetStatus(context.Background(), admin(), reservation.ID, domain.StatusPending)
	if err != nil {
		t.Fatalf("unexpected error for admin: %v", err)
	}
	if result.Status != domain.StatusPending {
		t.Errorf("expected status pending, got %s", result.Status)
	}
}

func TestSetStatusOutOfConfirmedIsNotBlocked(t *testing.T) {
	// The current status places no restriction; authorization is per
	// target status only.
	owner := pharmacist()
	reservation := existingReservation(uuid.New(), uuid.New(), domain.StatusConfirmed)

	service := newService(repoWith(reservation), &mockMedicineRepo{}, pharmacyOwnedBy(owner.ID), &mockTxManager{})

	result, err := service.SetStatus(context.Background(), owner, reservation.ID, domain.StatusCancelled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.StatusCancelled {
		t.Errorf("expected status cancelled, got %s", result.Status)
	}
}

func TestSetStatusConfirmAfterCancelIsNotBlocked(t *testing.T) {
	// Cancelled is not a dead end; the servicing pharmacy owner may still
	// confirm.
	owner := pharmacist()
	reservation := existingReservation(uuid.New(), uuid.New(), domain.StatusCancelled)

	service := newService(repoWith(reservation), &mockMedicineRepo{}, pharmacyOwnedBy(owner.ID), &mockTxManager{})

	result, err := service.SetStatus(context.Background(), owner, reservation.ID, domain.StatusConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != domain.StatusConfirmed {
		t.Errorf("expected status confirmed, got %s", result.Status)
	}
}

func TestSetStatusInvalidStatus(t *testing.T) {
	service := newService(&mockReservationRepo{}, &mockMedicineRepo{}, &mockPharmacyRepo{}, &mockTxManager{})

	_, err := service.SetStatus(context.Background(), admin(), uuid.New(), domain.Status("shipped"))
	if !errors.Is(err, application.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestSetStatusReservationNotFound(t *testing.T) {
	service := newService(&mockReservationRepo{}, &mockMedicineRepo{}, &mockPharmacyRepo{}, &mockTxManager{})

	_, err := service.SetStatus(context.Background(), admin(), uuid.New(), domain.StatusCancelled)
	if !errors.Is(err, application.ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound, got %v", err)
	}
}

func TestSetStatusOrphanedPharmacyDeniesConfirm(t *testing.T) {
	// When the snapshotted pharmacy no longer exists, nobody holds the
	// servicing relation and only admins can still drive the reservation.
	owner := pharmacist()
	reservation := existingReservation(uuid.New(), uuid.New(), domain.StatusPending)

	service := newService(repoWith(reservation), &mockMedicineRepo{}, &mockPharmacyRepo{}, &mockTxManager{})

	_, err := service.SetStatus(context.Background(), owner, reservation.ID, domain.StatusConfirmed)
	if !errors.Is(err, application.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	if _, err := service.SetStatus(context.Background(), admin(), reservation.ID, domain.StatusConfirmed); err != nil {
		t.Fatalf("unexpected error for admin: %v", err)
	}
}

func TestDeleteReservation(t *testing.T) {
	requester := consumer()
	reservation := existingReservation(requester.ID, uuid.New(), domain.StatusCancelled)

	repo := repoWith(reservation)
	deleted := false
	repo.deleteFn = func(ctx context.Context, id uuid.UUID) error {
		deleted = true
		return nil
	}
	service := newService(repo, &mockMedicineRepo{}, pharmacyOwnedBy(uuid.New()), &mockTxManager{})

	if err := service.DeleteReservation(context.Background(), requester, reservation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected repository Delete to be called")
	}
}

func TestDeleteReservationByAdmin(t *testing.T) {
	// Admin is neither the requester nor the servicing pharmacy owner.
	reservation := existingReservation(uuid.New(), uuid.New(), domain.StatusConfirmed)

	repo := repoWith(reservation)
	deleted := false
	repo.deleteFn = func(ctx context.Context, id uuid.UUID) error {
		deleted = true
		return nil
	}
	service := newService(repo, &mockMedicineRepo{}, pharmacyOwnedBy(uuid.New()), &mockTxManager{})

	if err := service.DeleteReservation(context.Background(), admin(), reservation.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected repository Delete to be called")
	}
}

func TestDeleteReservationByStrangerDenied(t *testing.T) {
	reservation := existingReservation(uuid.New(), uuid.New(), domain.StatusPending)

	service := newService(repoWith(reservation), &mockMedicineRepo{}, pharmacyOwnedBy(uuid.New()), &mockTxManager{})

	err := service.DeleteReservation(context.Background(), consumer(), reservation.ID)
	if !errors.Is(err, application.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestGetReservationVisibility(t *testing.T) {
	requester := consumer()
	owner := pharmacist()
	reservation := existingReservation(requester.ID, uuid.New(), domain.StatusPending)

	service := newService(repoWith(reservation), &mockMedicineRepo{}, pharmacyOwnedBy(owner.ID), &mockTxManager{})

	if _, err := service.GetReservation(context.Background(), requester, reservation.ID); err != nil {
		t.Errorf("requester should see the reservation: %v", err)
	}
	if _, err := service.GetReservation(context.Background(), owner, reservation.ID); err != nil {
		t.Errorf("servicing pharmacy owner should see the reservation: %v", err)
	}
	if _, err := service.GetReservation(context.Background(), admin(), reservation.ID); err != nil {
		t.Errorf("admin should see the reservation: %v", err)
	}
	if _, err := service.GetReservation(context.Background(), consumer(), reservation.ID); !errors.Is(err, application.ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized for a stranger, got %v", err)
	}
}

func TestListMyReservationsFiltersByRequester(t *testing.T) {
	principal := consumer()

	var captured ports.ListFilter
	repo := &mockReservationRepo{
		listFn: func(ctx context.Context, filter ports.ListFilter) ([]*domain.Reservation, error) {
			captured = filter
			return []*domain.Reservation{}, nil
		},
	}
	service := newService(repo, &mockMedicineRepo{}, &mockPharmacyRepo{}, &mockTxManager{})

	status := domain.StatusPending
	if _, _, err := service.ListMyReservations(context.Background(), principal, &status, 10, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.RequesterID == nil || *captured.RequesterID != principal.ID {
		t.Error("expected filter to pin the requester to the principal")
	}
	if captured.Status == nil || *captured.Status != domain.StatusPending {
		t.Error("expected filter to carry the status")
	}
}

func TestListAllReservationsAdminOnly(t *testing.T) {
	service := newService(&mockReservationRepo{}, &mockMedicineRepo{}, &mockPharmacyRepo{}, &mockTxManager{})

	if _, _, err := service.ListAllReservations(context.Background(), consumer(), nil, 10, 0); !errors.Is(err, application.ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized for consumer, got %v", err)
	}
	if _, _, err := service.ListAllReservations(context.Background(), admin(), nil, 10, 0); err != nil {
		t.Errorf("unexpected error for admin: %v", err)
	}
}

func TestListPharmacyReservationsOwnerOnly(t *testing.T) {
	owner := pharmacist()
	pharmacyID := uuid.New()

	var captured ports.ListFilter
	repo := &mockReservationRepo{
		listFn: func(ctx context.Context, filter ports.ListFilter) ([]*domain.Reservation, error) {
			captured = filter
			return []*domain.Reservation{}, nil
		},
	}
	service := newService(repo, &mockMedicineRepo{}, pharmacyOwnedBy(owner.ID), &mockTxManager{})

	if _, _, err := service.ListPharmacyReservations(context.Background(), owner, pharmacyID, nil, 10, 0); err != nil {
		t.Fatalf("unexpected error for owner: %v", err)
	}
	if captured.PharmacyID == nil || *captured.PharmacyID != pharmacyID {
		t.Error("expected filter to pin the pharmacy")
	}

	if _, _, err := service.ListPharmacyReservations(context.Background(), pharmacist(), pharmacyID, nil, 10, 0); !errors.Is(err, application.ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized for a different pharmacist, got %v", err)
	}

	if _, _, err := service.ListPharmacyReservations(context.Background(), admin(), pharmacyID, nil, 10, 0); err != nil {
		t.Errorf("unexpected error for admin: %v", err)
	}
}
