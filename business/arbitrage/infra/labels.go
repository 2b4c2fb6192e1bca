// Package infra contains infrastructure adapters for the arbitrage context.
package infra

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/config"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
)

// TokenLabels maps token addresses to display symbols and decimals.
type TokenLabels struct {
	symbols  map[common.Address]string
	decimals map[common.Address]uint8
}

// NewTokenLabels builds labels from the configured tokens.
func NewTokenLabels(tokens []config.TokenConfig) *TokenLabels {
	l := &TokenLabels{
		symbols:  make(map[common.Address]string, len(tokens)),
		decimals: make(map[common.Address]uint8, len(tokens)),
	}
	for _, t := range tokens {
		addr := t.AddressHex()
		l.symbols[addr] = t.Symbol
		l.decimals[addr] = t.Decimals
	}
	return l
}

// Symbol returns the token's symbol, or a shortened address when unknown.
func (l *TokenLabels) Symbol(token common.Address) string {
	if s, ok := l.symbols[token]; ok {
		return s
	}
	return token.Hex()[:8]
}

// Amount formats base units of token as a human decimal with its symbol.
func (l *TokenLabels) Amount(token common.Address, v *uint256.Int) string {
	dec, ok := l.decimals[token]
	if !ok {
		dec = fixedpoint.Decimals
	}
	places := int32(dec)
	if places > 6 {
		places = 6
	}
	return fixedpoint.ToDecimal(v, int32(dec)).StringFixed(places) + " " + l.Symbol(token)
}

// Path renders a route's hops, e.g. WETH→USDC→WETH.
func (l *TokenLabels) Path(r routingDomain.Route) string {
	hops := make([]string, len(r.Path))
	for i, a := range r.Path {
		hops[i] = l.Symbol(a)
	}
	return strings.Join(hops, "→")
}

// Venues renders a route's venue pair.
func Venues(r routingDomain.Route) string {
	return r.VenueA.Label() + " / " + r.VenueB.Label()
}

// gweiString formats a wei amount as gwei with one decimal.
func gweiString(wei *uint256.Int) string {
	return fixedpoint.ToDecimal(wei, 9).StringFixed(1)
}

// failureLabel returns the error code of a failed evaluation.
func failureLabel(err error) string {
	return string(apperror.GetCode(err))
}

// bpsPercent renders basis points as a percentage, e.g. 1234 -> 12.34%.
func bpsPercent(bps uint64) string {
	return fmt.Sprintf("%d.%02d%%", bps/100, bps%100)
}

// bestBreakdown returns the winning route and its breakdown when both exist.
func bestBreakdown(res *domain.ScanResult) (routingDomain.Route, *domain.Breakdown, bool) {
	route, ok := res.BestRoute()
	if !ok || res.Best.Breakdown == nil {
		return routingDomain.Route{}, nil, false
	}
	return route, res.Best.Breakdown, true
}
