// Package domain contains the core domain types for the pricing context.
package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Quote is the output of swapping AmountIn of TokenIn on a single venue.
type Quote struct {
	TokenIn     common.Address
	TokenOut    common.Address
	AmountIn    *uint256.Int
	AmountOut   *uint256.Int
	Venue       string
	FeeTier     uint32 // pool fee in hundredths of a bip (3000 = 0.30%)
	GasEstimate uint64
	Timestamp   time.Time
}

// NewQuote creates a quote stamped with the current time.
func NewQuote(tokenIn, tokenOut common.Address, amountIn, amountOut *uint256.Int, venue string) *Quote {
	return &Quote{
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  amountIn,
		AmountOut: amountOut,
		Venue:     venue,
		Timestamp: time.Now(),
	}
}

// IsEmpty reports whether the venue returned no output.
func (q *Quote) IsEmpty() bool {
	return q == nil || q.AmountOut == nil || q.AmountOut.IsZero()
}
