// Package routing implements the routing bounded context: the route
// registry and the settlement backend it validates against.
package routing

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/arbitrage-analyzer/business/routing/app"
	routingDI "github.com/fd1az/arbitrage-analyzer/business/routing/di"
	"github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/business/routing/infra/settlement"
	"github.com/fd1az/arbitrage-analyzer/internal/config"
	"github.com/fd1az/arbitrage-analyzer/internal/di"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
	"github.com/fd1az/arbitrage-analyzer/internal/monolith"
)

// Module implements the routing bounded context.
type Module struct{}

// RegisterServices registers all routing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register SettlementBackend (executor contract) - private dependency
	di.RegisterToken(c, routingDI.SettlementBackend, func(sr di.ServiceRegistry) app.SettlementBackend {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		var client settlement.ContractClient
		if ec, ok := sr.Get("ethClient").(*ethclient.Client); ok && ec != nil {
			client = ec
		}

		backend, err := settlement.NewBackend(client, cfg, log)
		if err != nil {
			panic("failed to create settlement backend: " + err.Error())
		}
		return backend
	})

	// Register Registry (public - exposed to other modules)
	di.RegisterToken(c, routingDI.Registry, func(sr di.ServiceRegistry) *app.Registry {
		log := sr.Get("logger").(logger.LoggerInterface)
		return app.NewRegistry(routingDI.GetSettlementBackend(sr), log)
	})

	return nil
}

// Startup loads the configured routes into the registry.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	params, err := RouteParamsFromConfig(cfg)
	if err != nil {
		return err
	}

	registry := routingDI.GetRegistry(mono.Services())
	if len(params) > 0 {
		if _, err := registry.AddRoutesBatch(ctx, params); err != nil {
			return fmt.Errorf("failed to register configured routes: %w", err)
		}
	}

	log.Info(ctx, "routing module started", "routes", registry.Count())
	return nil
}

// RouteParamsFromConfig resolves the configured routes' token symbols and
// venue names.
func RouteParamsFromConfig(cfg *config.Config) ([]domain.RouteParams, error) {
	out := make([]domain.RouteParams, 0, len(cfg.Routes))
	for i, rc := range cfg.Routes {
		path := make([]common.Address, len(rc.Path))
		for j, ref := range rc.Path {
			addr, err := cfg.ResolveToken(ref)
			if err != nil {
				return nil, fmt.Errorf("routes[%d]: %w", i, err)
			}
			path[j] = addr
		}

		venueA, err := domain.ParseVenue(rc.VenueA)
		if err != nil {
			return nil, fmt.Errorf("routes[%d].venue_a: %w", i, err)
		}
		venueB, err := domain.ParseVenue(rc.VenueB)
		if err != nil {
			return nil, fmt.Errorf("routes[%d].venue_b: %w", i, err)
		}

		floor, err := rc.MinProfitWei()
		if err != nil {
			return nil, fmt.Errorf("routes[%d].min_profit: %w", i, err)
		}

		out = append(out, domain.RouteParams{
			Path:      path,
			MinProfit: floor,
			VenueA:    venueA,
			VenueB:    venueB,
		})
	}
	return out, nil
}
