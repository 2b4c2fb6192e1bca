package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
)

// Oracle sources.
const (
	SourceChainlink = "chainlink"
	SourceBinance   = "binance"
)

// OraclePrice is a token's USD price scaled to 18 decimals.
type OraclePrice struct {
	Token      common.Address
	Value      *uint256.Int
	ObservedAt time.Time
	Source     string
}

// IsZero reports whether the feed returned no usable price.
func (p OraclePrice) IsZero() bool {
	return p.Value == nil || p.Value.IsZero()
}

// Age returns how old the observation is at now.
func (p OraclePrice) Age(now time.Time) time.Duration {
	return now.Sub(p.ObservedAt)
}

// USD returns the price as a decimal for display.
func (p OraclePrice) USD() decimal.Decimal {
	return fixedpoint.ToDecimal(p.Value, fixedpoint.Decimals)
}

// ScaleTo18 rescales an answer with the given decimals to 18 decimals.
func ScaleTo18(answer *uint256.Int, decimals uint8) (*uint256.Int, error) {
	switch {
	case decimals == fixedpoint.Decimals:
		return answer.Clone(), nil
	case decimals < fixedpoint.Decimals:
		return fixedpoint.Mul(answer, fixedpoint.Pow10(fixedpoint.Decimals-decimals))
	default:
		return fixedpoint.Div(answer, fixedpoint.Pow10(decimals-fixedpoint.Decimals)), nil
	}
}
