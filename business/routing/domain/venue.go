// Package domain contains the route model for the routing context.
package domain

import (
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/config"
)

// Venue is a swap venue. The set is closed.
type Venue string

const (
	VenueUniswapV3 Venue = config.VenueUniswapV3
	VenueUniswapV2 Venue = config.VenueUniswapV2
	VenueSushiSwap Venue = config.VenueSushiSwap
)

// Venues lists every known venue.
var Venues = []Venue{VenueUniswapV3, VenueUniswapV2, VenueSushiSwap}

// ParseVenue maps a config name to a Venue.
func ParseVenue(s string) (Venue, error) {
	v := Venue(s)
	if !v.Valid() {
		return "", apperror.Validation(apperror.CodeVenueNotConfigured, "unknown venue: "+s)
	}
	return v, nil
}

// Valid reports whether v is one of the known venues.
func (v Venue) Valid() bool {
	switch v {
	case VenueUniswapV3, VenueUniswapV2, VenueSushiSwap:
		return true
	}
	return false
}

// String returns the config name of the venue.
func (v Venue) String() string {
	return string(v)
}

// Label returns a display name.
func (v Venue) Label() string {
	switch v {
	case VenueUniswapV3:
		return "Uniswap V3"
	case VenueUniswapV2:
		return "Uniswap V2"
	case VenueSushiSwap:
		return "SushiSwap"
	}
	return string(v)
}
