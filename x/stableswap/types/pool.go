package types

import (
	"fmt"

	"cosmossdk.io/math"
)

const (
	// MinPoolAssets is the smallest number of assets a stableswap pool can hold
	MinPoolAssets = 2

	// MaxPoolAssets bounds the solver loops
	MaxPoolAssets = 8

	// MinimumLiquidityAmount is the amount of LP shares permanently locked on
	// the first deposit to prevent the empty-pool rounding attack
	MinimumLiquidityAmount = 1000
)

// PoolAsset is one pooled asset: its denom, native decimal precision and the
// reserve tracked in that native precision.
type PoolAsset struct {
	Denom    string   `json:"denom"`
	Decimals uint32   `json:"decimals"`
	Reserve  math.Int `json:"reserve"`
}

// CumulativePrice is one cumulative price register of the pool, accumulating
// offer->ask spot prices over time for TWAP consumers.
type CumulativePrice struct {
	OfferDenom string   `json:"offer_denom"`
	AskDenom   string   `json:"ask_denom"`
	Value      math.Int `json:"value"`
}

// Pool is the full state of one stableswap pool.
type Pool struct {
	Id      uint64 `json:"id"`
	Creator string `json:"creator"`
	LpDenom string `json:"lp_denom"`

	Assets            []PoolAsset `json:"assets"`
	GreatestPrecision uint32      `json:"greatest_precision"`

	// Amplification ramp, both endpoints scaled by AmpPrecision
	InitAmp     uint64 `json:"init_amp"`
	InitAmpTime int64  `json:"init_amp_time"`
	NextAmp     uint64 `json:"next_amp"`
	NextAmpTime int64  `json:"next_amp_time"`

	TotalShares math.Int `json:"total_shares"`

	// TradingStarts gates swaps and imbalanced liquidity until the given unix time
	TradingStarts int64 `json:"trading_starts"`
	// Frozen is the circuit-breaker flag
	Frozen bool `json:"frozen"`

	BlockTimeLast    int64             `json:"block_time_last"`
	CumulativePrices []CumulativePrice `json:"cumulative_prices"`
}

// AssetIndex returns the position of denom in the pool's asset list.
func (p Pool) AssetIndex(denom string) (int, bool) {
	for i, a := range p.Assets {
		if a.Denom == denom {
			return i, true
		}
	}
	return 0, false
}

// NormalizedBalances returns all reserves scaled up to the pool's greatest
// precision, the fixed-point domain the invariant solver operates in.
func (p Pool) NormalizedBalances() []math.Int {
	balances := make([]math.Int, len(p.Assets))
	for i, a := range p.Assets {
		balances[i] = NormalizeAmount(a.Reserve, a.Decimals, p.GreatestPrecision)
	}
	return balances
}

// HasZeroReserve reports whether any reserve is zero, which makes a swap
// against the pool impossible.
func (p Pool) HasZeroReserve() bool {
	for _, a := range p.Assets {
		if !a.Reserve.IsPositive() {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants of a pool record.
func (p Pool) Validate() error {
	if p.Id == 0 {
		return ErrInvalidPoolId.Wrap("pool id cannot be zero")
	}
	if len(p.Assets) < MinPoolAssets || len(p.Assets) > MaxPoolAssets {
		return ErrInvalidNumberOfAssets.Wrapf("pool must hold between %d and %d assets, got %d",
			MinPoolAssets, MaxPoolAssets, len(p.Assets))
	}

	seen := make(map[string]struct{}, len(p.Assets))
	greatest := uint32(0)
	for _, a := range p.Assets {
		if a.Denom == "" {
			return ErrInvalidInput.Wrap("asset denom cannot be empty")
		}
		if _, ok := seen[a.Denom]; ok {
			return ErrInvalidInput.Wrapf("duplicate asset %s", a.Denom)
		}
		seen[a.Denom] = struct{}{}
		if a.Reserve.IsNil() || a.Reserve.IsNegative() {
			return ErrInvalidInput.Wrapf("reserve of %s must be non-negative", a.Denom)
		}
		if a.Decimals > greatest {
			greatest = a.Decimals
		}
	}
	if p.GreatestPrecision != greatest {
		return ErrInvalidInput.Wrapf("greatest precision %d does not match assets (want %d)",
			p.GreatestPrecision, greatest)
	}

	if err := ValidateAmp(p.InitAmp / AmpPrecision); err != nil {
		return err
	}
	if err := ValidateAmp(p.NextAmp / AmpPrecision); err != nil {
		return err
	}

	if p.TotalShares.IsNil() || p.TotalShares.IsNegative() {
		return ErrInvalidInput.Wrap("total shares must be non-negative")
	}
	// total shares is zero only while the pool is uninitialized
	if p.TotalShares.IsZero() {
		for _, a := range p.Assets {
			if !a.Reserve.IsZero() {
				return ErrInvalidInput.Wrapf("pool %d has reserves but zero total shares", p.Id)
			}
		}
	}
	return nil
}

// String implements fmt.Stringer for log output.
func (p Pool) String() string {
	return fmt.Sprintf("pool %d (%d assets, shares %s)", p.Id, len(p.Assets), p.TotalShares)
}
