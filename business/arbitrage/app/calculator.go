// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
	routingDomain "github.com/fd1az/arbitrage-analyzer/business/routing/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
)

// Calculate itemizes costs and profit for borrowing borrow and receiving
// leg1Out then leg2Out. It has no side effects.
func Calculate(borrow, leg1Out, leg2Out *uint256.Int, params domain.CostParams) (*domain.Breakdown, error) {
	switch {
	case borrow == nil || borrow.IsZero():
		return nil, apperror.Validation(apperror.CodeInvalidInput, "borrow amount must be positive")
	case leg1Out == nil || leg1Out.IsZero():
		return nil, apperror.Validation(apperror.CodeInvalidInput, "leg1 output must be positive")
	case leg2Out == nil || leg2Out.IsZero():
		return nil, apperror.Validation(apperror.CodeInvalidInput, "leg2 output must be positive")
	}

	gasPrice := params.GasPriceWei
	if gasPrice == nil {
		gasPrice = fixedpoint.Zero()
	}
	minAbsolute := params.MinProfitAbsolute
	if minAbsolute == nil {
		minAbsolute = fixedpoint.Zero()
	}

	flashLoanFee, err := fixedpoint.Bps(borrow, params.FlashLoanPremiumBps)
	if err != nil {
		return nil, err
	}
	gasCost, err := fixedpoint.Mul(gasPrice, uint256.NewInt(params.GasUnitsEstimate))
	if err != nil {
		return nil, err
	}
	builderTip, err := fixedpoint.Bps(borrow, params.BuilderTipBps)
	if err != nil {
		return nil, err
	}
	safetyBuffer, err := fixedpoint.Bps(borrow, params.SafetyBufferBps)
	if err != nil {
		return nil, err
	}

	totalCosts := flashLoanFee.Clone()
	for _, term := range []*uint256.Int{gasCost, builderTip, safetyBuffer} {
		if totalCosts, err = fixedpoint.Add(totalCosts, term); err != nil {
			return nil, err
		}
	}

	grossProfit := fixedpoint.SaturatingSub(leg2Out, borrow)
	netProfit := fixedpoint.SaturatingSub(grossProfit, totalCosts)

	profitable := false
	if !netProfit.IsZero() {
		// netProfit <= leg2Out, so netProfit*BPS fits comfortably
		profitBps, err := fixedpoint.MulDiv(netProfit, fixedpoint.BPSScale(), borrow)
		if err != nil {
			return nil, err
		}
		profitable = !profitBps.LtUint64(params.MinProfitBps) && !netProfit.Lt(minAbsolute)
	}

	return &domain.Breakdown{
		BorrowAmount: borrow.Clone(),
		Leg1Out:      leg1Out.Clone(),
		Leg2Out:      leg2Out.Clone(),
		FlashLoanFee: flashLoanFee,
		GasCost:      gasCost,
		BuilderTip:   builderTip,
		SafetyBuffer: safetyBuffer,
		TotalCosts:   totalCosts,
		GrossProfit:  grossProfit,
		NetProfit:    netProfit,
		IsProfitable: profitable,
	}, nil
}

// CalculateForRoute is Calculate with the absolute floor raised to the
// route's own minimum profit when that is higher.
func CalculateForRoute(route routingDomain.Route, borrow, leg1Out, leg2Out *uint256.Int, params domain.CostParams) (*domain.Breakdown, error) {
	return Calculate(borrow, leg1Out, leg2Out, EffectiveParams(route, params))
}

// EffectiveParams applies the route's minimum profit to params.
func EffectiveParams(route routingDomain.Route, params domain.CostParams) domain.CostParams {
	floor := params.MinProfitAbsolute
	if floor == nil {
		floor = fixedpoint.Zero()
	}
	if route.MinProfit != nil {
		floor = fixedpoint.Max(floor, route.MinProfit)
	}
	return params.WithMinProfitAbsolute(floor)
}
