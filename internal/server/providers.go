package server

import (
	"context"

	"github.com/pharmaseek/marketplace/backend/internal/adapters/rest/middleware"
	medicinesapp "github.com/pharmaseek/marketplace/backend/internal/medicines/application"
	medicineports "github.com/pharmaseek/marketplace/backend/internal/medicines/ports"
	pharmaciesapp "github.com/pharmaseek/marketplace/backend/internal/pharmacies/application"
	pharmacyports "github.com/pharmaseek/marketplace/backend/internal/pharmacies/ports"
	"github.com/pharmaseek/marketplace/backend/internal/platform/logger"
	"github.com/pharmaseek/marketplace/backend/internal/platform/ownership"
)

// provideVersion provides the application version
func provideVersion() string {
	return "1.0.0"
}

// provideLoggerConfig creates logger config from server config
func provideLoggerConfig(config Config) logger.Config {
	return logger.Config{
		Environment: config.Environment,
		LogLevel:    config.LogLevel,
	}
}

// provideJWTMiddleware creates JWT middleware from config
func provideJWTMiddleware(ctx context.Context, config Config) (*middleware.JWTMiddleware, error) {
	return middleware.NewJWTMiddleware(ctx, config.JWKSEndpoint, config.JWTIssuer)
}

// provideOwnershipRegistry builds the ownership registry with every
// owner-gated resource type registered
func provideOwnershipRegistry(
	pharmacies pharmacyports.PharmacyRepository,
	medicines medicineports.MedicineRepository,
	log logger.Logger,
) *ownership.DefaultRegistry {
	registry := ownership.NewRegistry()
	pharmaciesapp.RegisterPharmacyOwnership(registry, pharmacies, log)
	medicinesapp.RegisterMedicineOwnership(registry, medicines, pharmacies, log)
	return registry
}
