package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Path length bounds, inclusive.
const (
	MinPathLength = 2
	MaxPathLength = 4
)

// RouteID is the registry slot of a route. Deleting a route moves the last
// route into the freed slot, so an ID held across a delete may refer to a
// different route afterwards.
type RouteID uint64

// Route is a circular token path traded across two venues.
type Route struct {
	ID        RouteID
	Path      []common.Address
	MinProfit *uint256.Int // absolute floor, in borrow-asset base units
	VenueA    Venue
	VenueB    Venue
}

// RouteParams is the input for adding or replacing a route.
type RouteParams struct {
	Path      []common.Address
	MinProfit *uint256.Int
	VenueA    Venue
	VenueB    Venue
}

// NewRoute builds a route from params, copying the path.
func NewRoute(id RouteID, p RouteParams) Route {
	minProfit := new(uint256.Int)
	if p.MinProfit != nil {
		minProfit.Set(p.MinProfit)
	}
	path := make([]common.Address, len(p.Path))
	copy(path, p.Path)
	return Route{
		ID:        id,
		Path:      path,
		MinProfit: minProfit,
		VenueA:    p.VenueA,
		VenueB:    p.VenueB,
	}
}

// Clone returns a deep copy.
func (r Route) Clone() Route {
	return NewRoute(r.ID, r.Params())
}

// Params returns the route's definition without its ID.
func (r Route) Params() RouteParams {
	return RouteParams{Path: r.Path, MinProfit: r.MinProfit, VenueA: r.VenueA, VenueB: r.VenueB}
}

// BorrowAsset is the token borrowed and repaid.
func (r Route) BorrowAsset() common.Address {
	if len(r.Path) == 0 {
		return common.Address{}
	}
	return r.Path[0]
}

// Leg1Path is the hop sequence swapped on VenueA: every token except the
// closing one.
func (r Route) Leg1Path() []common.Address {
	if len(r.Path) < 2 {
		return nil
	}
	return r.Path[:len(r.Path)-1]
}

// ClosingHop is the swap back into the borrow asset on VenueB.
func (r Route) ClosingHop() (tokenIn, tokenOut common.Address) {
	n := len(r.Path)
	if n < 2 {
		return common.Address{}, common.Address{}
	}
	return r.Path[n-2], r.Path[n-1]
}

// String renders the route for logs.
func (r Route) String() string {
	hops := make([]string, len(r.Path))
	for i, a := range r.Path {
		hops[i] = a.Hex()[:8]
	}
	return fmt.Sprintf("#%d %s [%s→%s]", r.ID, strings.Join(hops, "→"), r.VenueA, r.VenueB)
}

// SettlementResult is the outcome of asking the settlement backend to run
// a route.
type SettlementResult struct {
	Success     bool
	Reason      string
	GasEstimate uint64
}
