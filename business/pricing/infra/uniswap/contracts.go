// Package uniswap implements the Uniswap V3 venue quoter.
package uniswap

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Uniswap V3 pool fee tiers, in hundredths of a basis point.
const (
	FeeTier005 = 500
	FeeTier030 = 3000
	FeeTier100 = 10000
)

// DefaultFeeTiers are quoted when no tiers are configured. The 0.01% tier
// is left out because it only holds stable pairs.
var DefaultFeeTiers = []int{FeeTier005, FeeTier030, FeeTier100}

// QuoterV2ABI binds QuoterV2.quoteExactInputSingle, the only call the venue
// makes. Outputs are (amountOut, sqrtPriceX96After, initializedTicksCrossed,
// gasEstimate).
const QuoterV2ABI = `[{
	"type": "function",
	"name": "quoteExactInputSingle",
	"stateMutability": "nonpayable",
	"inputs": [{
		"name": "params",
		"type": "tuple",
		"internalType": "struct IQuoterV2.QuoteExactInputSingleParams",
		"components": [
			{"name": "tokenIn", "type": "address"},
			{"name": "tokenOut", "type": "address"},
			{"name": "amountIn", "type": "uint256"},
			{"name": "fee", "type": "uint24"},
			{"name": "sqrtPriceLimitX96", "type": "uint160"}
		]
	}],
	"outputs": [
		{"name": "amountOut", "type": "uint256"},
		{"name": "sqrtPriceX96After", "type": "uint160"},
		{"name": "initializedTicksCrossed", "type": "uint32"},
		{"name": "gasEstimate", "type": "uint256"}
	]
}]`

const (
	outAmount = 0
	outGas    = 3
	outCount  = 4
)

// singleHopQuery is the tuple argument of quoteExactInputSingle. Field names
// must match the ABI component names for packing.
type singleHopQuery struct {
	TokenIn           common.Address
	TokenOut          common.Address
	AmountIn          *big.Int
	Fee               *big.Int
	SqrtPriceLimitX96 *big.Int
}

// newSingleHopQuery builds an unbounded exact-input query for one pool.
func newSingleHopQuery(tokenIn, tokenOut common.Address, amountIn *uint256.Int, fee uint32) singleHopQuery {
	return singleHopQuery{
		TokenIn:           tokenIn,
		TokenOut:          tokenOut,
		AmountIn:          amountIn.ToBig(),
		Fee:               new(big.Int).SetUint64(uint64(fee)),
		SqrtPriceLimitX96: new(big.Int),
	}
}

// quoteResult is one fee tier's answer.
type quoteResult struct {
	amountOut   *big.Int
	gasEstimate uint64
	feeTier     uint32
}

// decodeQuote reads amountOut and gasEstimate from the unpacked outputs. A gas
// estimate that does not fit in 64 bits is reported as zero.
func decodeQuote(fee uint32, outputs []any) (*quoteResult, error) {
	if len(outputs) < outCount {
		return nil, fmt.Errorf("unexpected output length: %d", len(outputs))
	}
	amountOut, ok := outputs[outAmount].(*big.Int)
	if !ok || amountOut == nil {
		return nil, fmt.Errorf("unexpected amountOut type %T", outputs[outAmount])
	}

	res := &quoteResult{amountOut: amountOut, feeTier: fee}
	if g, ok := outputs[outGas].(*big.Int); ok && g.IsUint64() {
		res.gasEstimate = g.Uint64()
	}
	return res, nil
}
