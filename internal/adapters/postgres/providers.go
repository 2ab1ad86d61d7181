package postgres

import (
	"github.com/google/wire"
	medicineports "github.com/pharmaseek/marketplace/backend/internal/medicines/ports"
	pharmacyports "github.com/pharmaseek/marketplace/backend/internal/pharmacies/ports"
	reservationports "github.com/pharmaseek/marketplace/backend/internal/reservations/ports"
	userports "github.com/pharmaseek/marketplace/backend/internal/users/ports"
)

// ProviderSet is the wire provider set for postgres repositories
var ProviderSet = wire.NewSet(
	NewUserRepository,
	wire.Bind(new(userports.UserRepository), new(*UserRepository)),

	NewPharmacyRepository,
	wire.Bind(new(pharmacyports.PharmacyRepository), new(*PharmacyRepository)),

	NewMedicineRepository,
	wire.Bind(new(medicineports.MedicineRepository), new(*MedicineRepository)),

	NewReservationRepository,
	wire.Bind(new(reservationports.ReservationRepository), new(*ReservationRepository)),
)
