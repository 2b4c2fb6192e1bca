// Package router implements venue quoters for constant-product routers
// (Uniswap V2 and its forks) via getAmountsOut.
package router

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/arbitrage-analyzer/business/pricing/app"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/domain"
	"github.com/fd1az/arbitrage-analyzer/business/pricing/infra/evm"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/circuitbreaker"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
)

const tracerName = "router"

// RouterV2ABI covers getAmountsOut of IUniswapV2Router02.
const RouterV2ABI = `[
	{
		"inputs": [
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"internalType": "address[]", "name": "path", "type": "address[]"}
		],
		"name": "getAmountsOut",
		"outputs": [
			{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

// FeeBps is the constant-product pool fee (0.30%).
const FeeBps = 30

// Ensure Quoter implements VenueQuoter.
var _ app.VenueQuoter = (*Quoter)(nil)

// Quoter quotes single hops on a V2-style router.
type Quoter struct {
	venue  string
	router *evm.Contract
	tracer trace.Tracer
}

// NewQuoter binds a quoter for venue to the router at addr.
func NewQuoter(client evm.ContractCaller, venue string, addr common.Address) (*Quoter, error) {
	cb := circuitbreaker.New[[]byte](circuitbreaker.DefaultConfig(venue + "-router"))
	contract, err := evm.NewContract(client, addr, RouterV2ABI, cb)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s router: %w", venue, err)
	}
	return &Quoter{venue: venue, router: contract, tracer: otel.Tracer(tracerName)}, nil
}

// Quote returns getAmountsOut(amountIn, [tokenIn, tokenOut])[1].
func (q *Quoter) Quote(ctx context.Context, tokenIn, tokenOut common.Address, amountIn *uint256.Int) (*domain.Quote, error) {
	ctx, span := q.tracer.Start(ctx, q.venue+".quote",
		trace.WithAttributes(
			attribute.String("token_in", tokenIn.Hex()),
			attribute.String("token_out", tokenOut.Hex()),
			attribute.String("amount_in", amountIn.Dec()),
		),
	)
	defer span.End()

	outputs, err := q.router.Call(ctx, "getAmountsOut", amountIn.ToBig(), []common.Address{tokenIn, tokenOut})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "getAmountsOut failed")
		return nil, err
	}

	amounts, ok := outputs[0].([]*big.Int)
	if !ok || len(amounts) != 2 {
		return nil, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithContext(fmt.Sprintf("%s: unexpected getAmountsOut result", q.venue)))
	}

	amountOut, err := fixedpoint.FromBig(amounts[1])
	if err != nil {
		return nil, err
	}

	quote := domain.NewQuote(tokenIn, tokenOut, amountIn, amountOut, q.venue)
	quote.FeeTier = FeeBps * 100 // hundredths of a bip, like V3 tiers
	span.SetAttributes(attribute.String("amount_out", amountOut.Dec()))
	return quote, nil
}
