package application

import (
	"github.com/google/wire"
)

// ProviderSet is the wire provider set for the medicines application services
var ProviderSet = wire.NewSet(
	NewMedicinesService,
)
