package application

import (
	"github.com/google/wire"
)

// ProviderSet is the wire provider set for the users application services
var ProviderSet = wire.NewSet(
	NewUsersService,
)
