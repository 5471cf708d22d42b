package types

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Params defines the fee configuration shared by all stableswap pools.
// TotalFeeRate is charged on every swap; ProtocolFeeShare is the fraction of
// the collected commission forwarded to the fee collector, the remainder is
// retained in the pool reserves for LPs.
type Params struct {
	TotalFeeRate     math.LegacyDec `json:"total_fee_rate"`
	ProtocolFeeShare math.LegacyDec `json:"protocol_fee_share"`
	FeeCollector     string         `json:"fee_collector,omitempty"`
}

// DefaultParams returns default parameters for the stableswap module
func DefaultParams() Params {
	return Params{
		TotalFeeRate:     math.LegacyNewDecWithPrec(3, 3),   // 0.3%
		ProtocolFeeShare: math.LegacyNewDecWithPrec(166, 3), // 16.6% of the commission
		FeeCollector:     "",
	}
}

// Validate performs basic validation of the fee parameters.
func (p Params) Validate() error {
	if p.TotalFeeRate.IsNil() || p.TotalFeeRate.IsNegative() || p.TotalFeeRate.GTE(math.LegacyOneDec()) {
		return fmt.Errorf("total fee rate must be in [0, 1)")
	}
	if p.ProtocolFeeShare.IsNil() || p.ProtocolFeeShare.IsNegative() || p.ProtocolFeeShare.GT(math.LegacyOneDec()) {
		return fmt.Errorf("protocol fee share must be in [0, 1]")
	}
	if p.FeeCollector != "" {
		if _, err := sdk.AccAddressFromBech32(p.FeeCollector); err != nil {
			return fmt.Errorf("invalid fee collector address: %w", err)
		}
	}
	return nil
}

// ImbalanceFeeRate derives the fee rate charged on imbalanced deposits and
// withdrawals from the pool's swap fee: total_fee_rate * n / (4 * (n - 1)).
func ImbalanceFeeRate(totalFeeRate math.LegacyDec, nAssets int) math.LegacyDec {
	return totalFeeRate.MulInt64(int64(nAssets)).QuoInt64(4 * int64(nAssets-1))
}
