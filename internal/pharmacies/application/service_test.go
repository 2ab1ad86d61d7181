package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/pharmaseek/marketplace/backend/internal/authz"
	"github.com/pharmaseek/marketplace/backend/internal/pharmacies/application"
	"github.com/pharmaseek/marketplace/backend/internal/pharmacies/domain"
	"github.com/pharmaseek/marketplace/backend/internal/pharmacies/ports"
	"github.com/pharmaseek/marketplace/backend/internal/platform/eventbus"
)

// mockLogger implements the logger.Logger interface for testing
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, keysAndValues ...interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(ctx context.Context, msg string, keysAndValues ...interface{}) {}

// mockPharmacyRepo implements ports.PharmacyRepository with overridable
// functions. Unset functions return not-found / zero values.
type mockPharmacyRepo struct {
	createFn        func(ctx context.Context, pharmacy *domain.Pharmacy) error
	findByIDFn      func(ctx context.Context, id uuid.UUID) (*domain.Pharmacy, error)
	findByOwnerFn   func(ctx context.Context, ownerID uuid.UUID) (*domain.Pharmacy, error)
	updateFn        func(ctx context.Context, pharmacy *domain.Pharmacy) error
	deleteFn        func(ctx context.Context, id uuid.UUID) error
	licenseExistsFn func(ctx context.Context, license string) (bool, error)
}

func (m *mockPharmacyRepo) Create(ctx context.Context, pharmacy *domain.Pharmacy) error {
	if m.createFn != nil {
		return m.createFn(ctx, pharmacy)
	}
	return nil
}

func (m *mockPharmacyRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Pharmacy, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, ports.ErrPharmacyNotFound
}

func (m *mockPharmacyRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Pharmacy, error) {
	if m.findByOwnerFn != nil {
		return m.findByOwnerFn(ctx, ownerID)
	}
	return nil, ports.ErrPharmacyNotFound
}

func (m *mockPharmacyRepo) Update(ctx context.Context, pharmacy *domain.Pharmacy) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, pharmacy)
	}
	return nil
}

func (m *mockPharmacyRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPharmacyRepo) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Pharmacy, error) {
	return nil, nil
}

func (m *mockPharmacyRepo) Count(ctx context.Context, filter ports.ListFilter) (int, error) {
	return 0, nil
}

func (m *mockPharmacyRepo) LicenseExists(ctx context.Context, license string) (bool, error) {
	if m.licenseExistsFn != nil {
		return m.licenseExistsFn(ctx, license)
	}
	return false, nil
}

func (m *mockPharmacyRepo) GetOwner(ctx context.Context, pharmacyID uuid.UUID) (uuid.UUID, error) {
	return uuid.Nil, ports.ErrPharmacyNotFound
}

func newService(repo *mockPharmacyRepo) *application.PharmaciesService {
	logger := &mockLogger{}
	return application.NewPharmaciesService(repo, eventbus.NewBus(logger), logger)
}

func pharmacist() authz.Principal {
	return authz.Principal{ID: uuid.New(), Role: authz.RolePharmacy}
}

func validParams() application.CreatePharmacyParams {
	return application.CreatePharmacyParams{
		Name:    "Central Pharmacy",
		Address: "1 Main Street, Springfield",
		License: "NL-AMS-004521",
	}
}

func ownedPharmacy(ownerID uuid.UUID) *domain.Pharmacy {
	return &domain.Pharmacy{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Name:    "Central Pharmacy",
		Address: "1 Main Street, Springfield",
		License: "NL-AMS-004521",
	}
}

func TestCreatePharmacy(t *testing.T) {
	principal := pharmacist()

	var created *domain.Pharmacy
	repo := &mockPharmacyRepo{
		createFn: func(ctx context.Context, pharmacy *domain.Pharmacy) error {
			created = pharmacy
			return nil
		},
	}
	service := newService(repo)

	pharmacy, err := service.CreatePharmacy(context.Background(), principal, validParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pharmacy.OwnerID != principal.ID {
		t.Errorf("expected owner %s, got %s", principal.ID, pharmacy.OwnerID)
	}
	if pharmacy.Verified {
		t.Error("new pharmacies must start unverified")
	}
	if created == nil {
		t.Fatal("expected repository Create to be called")
	}
}

func TestCreatePharmacyNormalizesLicense(t *testing.T) {
	repo := &mockPharmacyRepo{}
	service := newService(repo)

	params := validParams()
	params.License = "  nl-ams-004521 "

	pharmacy, err := service.CreatePharmacy(context.Background(), pharmacist(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pharmacy.License != "NL-AMS-004521" {
		t.Errorf("expected normalized license NL-AMS-004521, got %q", pharmacy.License)
	}
}

func TestCreatePharmacyRequiresPharmacyRole(t *testing.T) {
	service := newService(&mockPharmacyRepo{})

	principal := authz.Principal{ID: uuid.New(), Role: authz.RoleConsumer}
	_, err := service.CreatePharmacy(context.Background(), principal, validParams())
	if !errors.Is(err, application.ErrNotPharmacyOwner) {
		t.Fatalf("expected ErrNotPharmacyOwner, got %v", err)
	}
}

func TestCreatePharmacyOnePerUser(t *testing.T) {
	principal := pharmacist()

	repo := &mockPharmacyRepo{
		findByOwnerFn: func(ctx context.Context, ownerID uuid.UUID) (*domain.Pharmacy, error) {
			return ownedPharmacy(ownerID), nil
		},
	}
	service := newService(repo)

	_, err := service.CreatePharmacy(context.Background(), principal, validParams())
	if !errors.Is(err, application.ErrAlreadyHasPharmacy) {
		t.Fatalf("expected ErrAlreadyHasPharmacy, got %v", err)
	}
}

func TestCreatePharmacyDuplicateLicensePreCheck(t *testing.T) {
	repo := &mockPharmacyRepo{
		licenseExistsFn: func(ctx context.Context, license string) (bool, error) {
			return true, nil
		},
		createFn: func(ctx context.Context, pharmacy *domain.Pharmacy) error {
			t.Error("Create should not be called when the license pre-check fails")
			return nil
		},
	}
	service := newService(repo)

	_, err := service.CreatePharmacy(context.Background(), pharmacist(), validParams())
	if !errors.Is(err, application.ErrDuplicateLicense) {
		t.Fatalf("expected ErrDuplicateLicense, got %v", err)
	}
}

func TestCreatePharmacyDuplicateLicenseAtWrite(t *testing.T) {
	// The pre-check can race; the unique constraint at write time is
	// authoritative and maps to the same conflict.
	repo := &mockPharmacyRepo{
		createFn: func(ctx context.Context, pharmacy *domain.Pharmacy) error {
			return ports.ErrDuplicateLicense
		},
	}
	service := newService(repo)

	_, err := service.CreatePharmacy(context.Background(), pharmacist(), validParams())
	if !errors.Is(err, application.ErrDuplicateLicense) {
		t.Fatalf("expected ErrDuplicateLicense, got %v", err)
	}
}

func TestCreatePharmacyInvalidLicense(t *testing.T) {
	service := newService(&mockPharmacyRepo{})

	params := validParams()
	params.License = "x!"

	_, err := service.CreatePharmacy(context.Background(), pharmacist(), params)
	if !errors.Is(err, application.ErrInvalidPharmacyData) {
		t.Fatalf("expected ErrInvalidPharmacyData, got %v", err)
	}
}

func TestUpdatePharmacy(t *testing.T) {
	owner := pharmacist()
	pharmacy := ownedPharmacy(owner.ID)

	repo := &mockPharmacyRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Pharmacy, error) {
			return pharmacy, nil
		},
	}
	service := newService(repo)

	updated, err := service.UpdatePharmacy(context.Background(), owner, pharmacy.ID, application.UpdatePharmacyParams{
		Name:    "Renamed Pharmacy",
		Address: "2 Side Street, Springfield",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Name != "Renamed Pharmacy" {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
	if updated.License != "NL-AMS-004521" {
		t.Error("license must not change on update")
	}
}

func TestUpdatePharmacyByNonOwnerDenied(t *testing.T) {
	pharmacy := ownedPharmacy(uuid.New())

	repo := &mockPharmacyRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Pharmacy, error) {
			return pharmacy, nil
		},
	}
	service := newService(repo)

	_, err := service.UpdatePharmacy(context.Background(), pharmacist(), pharmacy.ID, application.UpdatePharmacyParams{
		Name:    "Hijacked",
		Address: "Nowhere",
	})
	if !errors.Is(err, application.ErrNotPharmacyOwner) {
		t.Fatalf("expected ErrNotPharmacyOwner, got %v", err)
	}
}

func TestUpdatePharmacyNotFound(t *testing.T) {
	service := newService(&mockPharmacyRepo{})

	_, err := service.UpdatePharmacy(context.Background(), pharmacist(), uuid.New(), application.UpdatePharmacyParams{
		Name:    "Anything",
		Address: "Anywhere",
	})
	if !errors.Is(err, application.ErrPharmacyNotFound) {
		t.Fatalf("expected ErrPharmacyNotFound, got %v", err)
	}
}

func TestSetVerified(t *testing.T) {
	owner := pharmacist()
	pharmacy := ownedPharmacy(owner.ID)

	repo := &mockPharmacyRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Pharmacy, error) {
			return pharmacy, nil
		},
	}
	service := newService(repo)

	updated, err := service.SetVerified(context.Background(), owner, pharmacy.ID, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Verified {
		t.Error("expected pharmacy to be verified")
	}
}

func TestSetVerifiedByAdmin(t *testing.T) {
	pharmacy := ownedPharmacy(uuid.New())

	repo := &mockPharmacyRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Pharmacy, error) {
			return pharmacy, nil
		},
	}
	service := newService(repo)

	principal := authz.Principal{ID: uuid.New(), Role: authz.RoleAdmin}
	if _, err := service.SetVerified(context.Background(), principal, pharmacy.ID, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDeletePharmacy(t *testing.T) {
	owner := pharmacist()
	pharmacy := ownedPharmacy(owner.ID)

	deleted := false
	repo := &mockPharmacyRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Pharmacy, error) {
			return pharmacy, nil
		},
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			deleted = true
			return nil
		},
	}
	service := newService(repo)

	if err := service.DeletePharmacy(context.Background(), owner, pharmacy.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected repository Delete to be called")
	}
}

func TestDeletePharmacyByNonOwnerDenied(t *testing.T) {
	pharmacy := ownedPharmacy(uuid.New())

	repo := &mockPharmacyRepo{
		findByIDFn: func(ctx context.Context, id uuid.UUID) (*domain.Pharmacy, error) {
			return pharmacy, nil
		},
	}
	service := newService(repo)

	err := service.DeletePharmacy(context.Background(), pharmacist(), pharmacy.ID)
	if !errors.Is(err, application.ErrNotPharmacyOwner) {
		t.Fatalf("expected ErrNotPharmacyOwner, got %v", err)
	}
}
