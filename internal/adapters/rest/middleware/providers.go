package middleware

import (
	"github.com/google/wire"
)

// ProviderSet is the wire provider set for REST middleware
var ProviderSet = wire.NewSet(
	NewPrincipalResolver,
	NewAuthorizationMiddleware,
)
