package types

import (
	"cosmossdk.io/math"
)

// NormalizeAmount scales an amount from its native precision up to the target
// precision. targetPrecision must be >= assetPrecision.
func NormalizeAmount(amount math.Int, assetPrecision, targetPrecision uint32) math.Int {
	if assetPrecision == targetPrecision {
		return amount
	}
	return amount.Mul(tenPow(targetPrecision - assetPrecision))
}

// DenormalizeAmount scales an amount from the common precision back down to
// the asset's native precision. Division truncates toward zero, so rounding
// always favors the pool.
func DenormalizeAmount(amount math.Int, targetPrecision, assetPrecision uint32) math.Int {
	if assetPrecision == targetPrecision {
		return amount
	}
	return amount.Quo(tenPow(targetPrecision - assetPrecision))
}

// AdjustPrecision rescales an amount between two arbitrary precisions,
// truncating when scaling down.
func AdjustPrecision(amount math.Int, currentPrecision, targetPrecision uint32) math.Int {
	switch {
	case currentPrecision == targetPrecision:
		return amount
	case currentPrecision < targetPrecision:
		return amount.Mul(tenPow(targetPrecision - currentPrecision))
	default:
		return amount.Quo(tenPow(currentPrecision - targetPrecision))
	}
}

func tenPow(exp uint32) math.Int {
	return math.NewIntWithDecimal(1, int(exp))
}
