// Package pricing implements the pricing bounded context: venue quotes,
// reference oracle prices and token metadata.
package pricing

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/arbitrage-analyzer/business/pricing/app"
	pricingDI "github.com/fd1az/arbitrage-analyzer/business/pricing/di"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/infra/binance"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/infra/chainlink"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/infra/erc20"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/infra/evm"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/infra/router"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/infra/uniswap"
	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/asset"
	"github.com/fd1az/arbitrage-analyzer/internal/config"
	"github.com/fd1az/arbitrage-analyzer/internal/di"
	"github.com/fd1az/arbitrage-analyzer/internal/logger"
	"github.com/fd1az/arbitrage-analyzer/internal/monolith"
)

// Module implements the pricing bounded context.
type Module struct{}

// contractCaller returns the shared eth client, or nil when none is dialed.
func contractCaller(sr di.ServiceRegistry) evm.ContractCaller {
	if ec, ok := sr.Get("ethClient").(*ethclient.Client); ok && ec != nil {
		return ec
	}
	return nil
}

// RegisterServices registers all pricing services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register venue quoters - private dependency
	di.RegisterToken(c, pricingDI.Quoters, func(sr di.ServiceRegistry) map[string]app.VenueQuoter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)
		client := contractCaller(sr)

		quoters := make(map[string]app.VenueQuoter, 3)

		v3, err := uniswap.NewQuoter(client, cfg.Venues.UniswapV3.QuoterAddressHex(), cfg.Venues.UniswapV3.FeeTiers, log)
		if err != nil {
			panic("failed to create uniswap quoter: " + err.Error())
		}
		quoters[config.VenueUniswapV3] = v3

		for _, venue := range []string{config.VenueUniswapV2, config.VenueSushiSwap} {
			addr, ok := cfg.Venues.RouterAddress(venue)
			if !ok {
				continue
			}
			q, err := router.NewQuoter(client, venue, addr)
			if err != nil {
				panic("failed to create " + venue + " quoter: " + err.Error())
			}
			quoters[venue] = q
		}
		return quoters
	})

	// Register PrimaryFeed (Chainlink) - private dependency
	di.RegisterToken(c, pricingDI.PrimaryFeed, func(sr di.ServiceRegistry) app.PriceFeed {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		feeds := make(map[common.Address]common.Address)
		for _, t := range cfg.Tokens {
			if common.IsHexAddress(t.ChainlinkFeed) {
				feeds[t.AddressHex()] = common.HexToAddress(t.ChainlinkFeed)
			}
		}

		feed, err := chainlink.NewFeed(contractCaller(sr), feeds, cfg.Oracle.CacheTTL, log)
		if err != nil {
			panic("failed to create chainlink feed: " + err.Error())
		}
		return feed
	})

	// Register SecondaryFeed (Binance) - private dependency, nil when disabled
	di.RegisterToken(c, pricingDI.SecondaryFeed, func(sr di.ServiceRegistry) app.PriceFeed {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		if !cfg.Oracle.SecondaryEnabled {
			return nil
		}

		tickerCfg := binance.TickerConfig{
			BaseURL:            cfg.Binance.BaseURL,
			Timeout:            cfg.Binance.Timeout,
			RateLimitPerMinute: cfg.Binance.RateLimitPerMinute,
			Symbols:            make(map[common.Address]string),
			Pegged:             make(map[common.Address]bool),
		}
		for _, t := range cfg.Tokens {
			if t.BinanceSymbol != "" {
				tickerCfg.Symbols[t.AddressHex()] = t.BinanceSymbol
			}
			if t.Pegged {
				tickerCfg.Pegged[t.AddressHex()] = true
			}
		}

		feed, err := binance.NewTickerFeed(tickerCfg, log)
		if err != nil {
			panic("failed to create binance feed: " + err.Error())
		}
		return feed
	})

	// Register TokenMetadata (ERC-20) - private dependency
	di.RegisterToken(c, pricingDI.TokenMetadata, func(sr di.ServiceRegistry) app.TokenMetadata {
		cfg := sr.Get("config").(*config.Config)
		registry := sr.Get("assetRegistry").(*asset.Registry)

		return erc20.NewMetadata(contractCaller(sr), registry.TokenDecimals(cfg.Ethereum.ChainID))
	})

	// Register PricingService (public - exposed to other modules)
	di.RegisterToken(c, pricingDI.PricingService, func(sr di.ServiceRegistry) *app.PricingService {
		log := sr.Get("logger").(logger.LoggerInterface)

		quoters := make(map[routingDomain.Venue]app.VenueQuoter)
		for venue, q := range pricingDI.GetQuoters(sr) {
			quoters[routingDomain.Venue(venue)] = q
		}

		svc, err := app.NewPricingService(
			quoters,
			pricingDI.GetPrimaryFeed(sr),
			pricingDI.GetSecondaryFeed(sr),
			pricingDI.GetTokenMetadata(sr),
			log,
		)
		if err != nil {
			panic("failed to create pricing service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup initializes the pricing module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	cfg := mono.Config()
	svc := pricingDI.GetPricingService(mono.Services())

	venues := make([]string, 0, 3)
	for _, v := range []routingDomain.Venue{routingDomain.VenueUniswapV3, routingDomain.VenueUniswapV2, routingDomain.VenueSushiSwap} {
		if svc.HasVenue(v) {
			venues = append(venues, v.String())
		}
	}

	mono.Logger().Info(ctx, "pricing module started",
		"venues", venues,
		"oracle", cfg.Oracle.Enabled,
		"secondary_oracle", svc.Secondary() != nil)
	return nil
}
