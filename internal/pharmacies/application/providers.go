package application

import (
	"github.com/google/wire"
)

// ProviderSet is the wire provider set for the pharmacies application services
var ProviderSet = wire.NewSet(
	NewPharmaciesService,
)
