// Package di contains dependency injection tokens for the pricing context.
package di

import (
	"github.com/fd1az/arbitrage-analyzer/business/pricing/app"
	"github.com/fd1az/arbitrage-analyzer/internal/di"
)

// Public service tokens - exposed to other modules
var (
	PricingService = di.NewToken[*app.PricingService]("pricing.PricingService")
)

// Private dependency tokens - internal to pricing module
var (
	Quoters       = di.NewToken[map[string]app.VenueQuoter]("pricing:quoters")
	PrimaryFeed   = di.NewToken[app.PriceFeed]("pricing:primaryFeed")
	SecondaryFeed = di.NewToken[app.PriceFeed]("pricing:secondaryFeed")
	TokenMetadata = di.NewToken[app.TokenMetadata]("pricing:tokenMetadata")
)

// Helper functions for type-safe access
func GetPricingService(c di.ServiceRegistry) *app.PricingService {
	return di.GetToken(c, PricingService)
}

func GetQuoters(c di.ServiceRegistry) map[string]app.VenueQuoter {
	return di.GetToken(c, Quoters)
}

func GetPrimaryFeed(c di.ServiceRegistry) app.PriceFeed {
	return di.GetToken(c, PrimaryFeed)
}

// GetSecondaryFeed returns nil when the secondary oracle is disabled.
func GetSecondaryFeed(c di.ServiceRegistry) app.PriceFeed {
	feed, _ := c.Get(SecondaryFeed.Name()).(app.PriceFeed)
	return feed
}

func GetTokenMetadata(c di.ServiceRegistry) app.TokenMetadata {
	return di.GetToken(c, TokenMetadata)
}
