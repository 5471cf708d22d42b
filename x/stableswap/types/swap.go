package types

import (
	"cosmossdk.io/math"
)

var (
	// DefaultMaxSpread is applied when the trader sets a belief price but no
	// explicit spread limit
	DefaultMaxSpread = math.LegacyNewDecWithPrec(5, 3) // 0.5%

	// MaxAllowedSpread caps any caller-supplied spread limit
	MaxAllowedSpread = math.LegacyNewDecWithPrec(50, 2) // 50%
)

// SwapResult holds the outcome of a swap computation. All amounts are in the
// ask asset's native precision.
type SwapResult struct {
	ReturnAmount     math.Int
	SpreadAmount     math.Int
	CommissionAmount math.Int
	ProtocolFee      math.Int
}

// ComputeSwap solves the invariant for the post-swap ask balance and returns
// the gross return amount and spread, both in the normalized fixed-point
// domain. balances are the pool reserves normalized to the greatest precision
// and exclude the incoming offer amount; offerAmount is normalized too.
func ComputeSwap(amp uint64, balances []math.Int, offerIndex, askIndex int, offerAmount math.Int) (returnAmount, spreadAmount math.Int, err error) {
	if offerIndex == askIndex {
		return math.Int{}, math.Int{}, ErrInvalidAsset.Wrap("offer and ask asset must differ")
	}
	if !offerAmount.IsPositive() {
		return math.Int{}, math.Int{}, ErrZeroAmount.Wrap("offer amount must be positive")
	}

	d, err := ComputeD(amp, balances)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	newBalances := make([]math.Int, len(balances))
	copy(newBalances, balances)
	newBalances[offerIndex] = newBalances[offerIndex].Add(offerAmount)

	newAskBalance, err := ComputeY(amp, newBalances, d, askIndex)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}

	returnAmount = balances[askIndex].Sub(newAskBalance)
	if !returnAmount.IsPositive() {
		return math.Int{}, math.Int{}, ErrInsufficientLiquidity.Wrap("swap output is zero")
	}

	// Assets trade near parity, so the ideal return equals the offer amount;
	// anything less is spread.
	spreadAmount = math.MaxInt(offerAmount.Sub(returnAmount), math.ZeroInt())
	return returnAmount, spreadAmount, nil
}

// AssertMaxSpread enforces the trader's slippage protection. With a belief
// price the ideal output is offerAmount * beliefPrice and the realized
// shortfall must stay within maxSpread of it; without one the realized spread
// ratio is checked directly. Amounts are in the ask asset's native precision
// except offerAmount, which the caller supplies in the same scale it derived
// the belief price for.
func AssertMaxSpread(beliefPrice, maxSpread *math.LegacyDec, offerAmount, returnAmount, spreadAmount math.Int) error {
	if beliefPrice == nil && maxSpread == nil {
		return nil
	}

	spreadLimit := DefaultMaxSpread
	if maxSpread != nil {
		if maxSpread.IsNegative() {
			return ErrInvalidInput.Wrap("max spread cannot be negative")
		}
		spreadLimit = *maxSpread
		if spreadLimit.GT(MaxAllowedSpread) {
			spreadLimit = MaxAllowedSpread
		}
	}

	if beliefPrice != nil {
		if !beliefPrice.IsPositive() {
			return ErrInvalidInput.Wrap("belief price must be positive")
		}
		idealReturn := beliefPrice.MulInt(offerAmount)
		if idealReturn.IsZero() {
			return ErrInvalidInput.Wrap("belief price yields zero expected return")
		}
		shortfall := idealReturn.Sub(math.LegacyNewDecFromInt(returnAmount))
		if shortfall.IsPositive() && shortfall.Quo(idealReturn).GT(spreadLimit) {
			return ErrMaxSpreadAssertion.Wrapf(
				"expected %s, got %s with max spread %s", idealReturn, returnAmount, spreadLimit)
		}
		return nil
	}

	grossReturn := returnAmount.Add(spreadAmount)
	if grossReturn.IsZero() {
		return ErrMaxSpreadAssertion.Wrap("swap produced no output")
	}
	realized := math.LegacyNewDecFromInt(spreadAmount).Quo(math.LegacyNewDecFromInt(grossReturn))
	if realized.GT(spreadLimit) {
		return ErrMaxSpreadAssertion.Wrapf("realized spread %s exceeds limit %s", realized, spreadLimit)
	}
	return nil
}
