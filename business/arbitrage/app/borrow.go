package app

import (
	"github.com/holiman/uint256"

	"github.com/fd1az/arbitrage-analyzer/business/arbitrage/domain"
	"github.com/fd1az/arbitrage-analyzer/internal/apperror"
	"github.com/fd1az/arbitrage-analyzer/internal/fixedpoint"
)

// FindOptimalBorrowAmount scans min..max inclusive in increments of step,
// assuming leg1Out equals the amount and leg2Out = amount*ratio/1e18, and
// returns the amount with the strictly highest net profit. The grid is
// coarse; callers choose step for the resolution they need and may bound
// the work with StepCount.
func FindOptimalBorrowAmount(min, max, step, ratio *uint256.Int, params domain.CostParams) (domain.BorrowOptimum, error) {
	switch {
	case min == nil || min.IsZero(), max == nil || max.IsZero(), step == nil || step.IsZero():
		return domain.BorrowOptimum{}, apperror.Validation(apperror.CodeInvalidInput, "min, max and step must be positive")
	case min.Gt(max):
		return domain.BorrowOptimum{}, apperror.Validation(apperror.CodeInvalidInput, "min exceeds max")
	case ratio == nil || ratio.IsZero():
		return domain.BorrowOptimum{}, apperror.Validation(apperror.CodeInvalidInput, "expected output ratio must be positive")
	}

	best := domain.BorrowOptimum{Amount: min.Clone(), MaxProfit: fixedpoint.Zero()}

	amount := min.Clone()
	for !amount.Gt(max) {
		best.Steps++
		if b, err := evaluateAmount(amount, ratio, params); err == nil && b.NetProfit.Gt(best.MaxProfit) {
			best.Amount = amount.Clone()
			best.MaxProfit = b.NetProfit.Clone()
		}

		next, overflow := new(uint256.Int).AddOverflow(amount, step)
		if overflow {
			break
		}
		amount = next
	}

	// Grid points whose leg2Out truncates to zero have no breakdown.
	if b, err := evaluateAmount(best.Amount, ratio, params); err == nil {
		best.Breakdown = b
	}
	return best, nil
}

// StepCount returns the number of grid points FindOptimalBorrowAmount
// visits, saturating at the maximum uint64.
func StepCount(min, max, step *uint256.Int) uint64 {
	if min == nil || max == nil || step == nil || step.IsZero() || min.Gt(max) {
		return 0
	}
	n := new(uint256.Int).Sub(max, min)
	n.Div(n, step)
	if !n.IsUint64() || n.Uint64() == ^uint64(0) {
		return ^uint64(0)
	}
	return n.Uint64() + 1
}

func evaluateAmount(amount, ratio *uint256.Int, params domain.CostParams) (*domain.Breakdown, error) {
	leg2Out, err := fixedpoint.MulDiv(amount, ratio, fixedpoint.Precision())
	if err != nil {
		return nil, err
	}
	return Calculate(amount, amount, leg2Out, params)
}
