// Package di contains dependency injection tokens for the routing context.
package di

import (
	"github.com/fd1az/arbitrage-analyzer/business/routing/app"
	"github.com/fd1az/arbitrage-analyzer/internal/di"
)

// Public service tokens - exposed to other modules
var (
	Registry = di.NewToken[*app.Registry]("routing.Registry")
)

// Private dependency tokens - internal to routing module
var (
	SettlementBackend = di.NewToken[app.SettlementBackend]("routing:settlementBackend")
)

// Helper functions for type-safe access
func GetRegistry(c di.ServiceRegistry) *app.Registry {
	return di.GetToken(c, Registry)
}

func GetSettlementBackend(c di.ServiceRegistry) app.SettlementBackend {
	return di.GetToken(c, SettlementBackend)
}
