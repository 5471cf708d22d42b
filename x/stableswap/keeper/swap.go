package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/nectar-chain/nectar/x/stableswap/types"
)

// Swap trades offer for askDenom against the pool. The trader pays the offer
// coin, the receiver gets the return net of commission. beliefPrice and
// maxSpread are the trader's optional slippage protection; receiver may equal
// the trader. All invariant math happens on copies and state is written only
// after every check has passed.
func (k Keeper) Swap(
	ctx context.Context,
	trader sdk.AccAddress,
	poolID uint64,
	offer sdk.Coin,
	askDenom string,
	beliefPrice, maxSpread *math.LegacyDec,
	receiver sdk.AccAddress,
) (types.SwapResult, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return types.SwapResult{}, err
	}
	if pool.Frozen {
		return types.SwapResult{}, types.ErrPoolFrozen.Wrapf("pool %d", poolID)
	}
	if now < pool.TradingStarts {
		return types.SwapResult{}, types.ErrTradingNotStarted.Wrapf(
			"trading on pool %d starts at %d", poolID, pool.TradingStarts)
	}
	if !offer.Amount.IsPositive() {
		return types.SwapResult{}, types.ErrZeroAmount.Wrap("offer amount must be positive")
	}
	if receiver == nil {
		receiver = trader
	}

	offerIdx, ok := pool.AssetIndex(offer.Denom)
	if !ok {
		return types.SwapResult{}, types.ErrInvalidAsset.Wrapf("%s is not in pool %d", offer.Denom, poolID)
	}
	askIdx, ok := pool.AssetIndex(askDenom)
	if !ok {
		return types.SwapResult{}, types.ErrInvalidAsset.Wrapf("%s is not in pool %d", askDenom, poolID)
	}
	if offerIdx == askIdx {
		return types.SwapResult{}, types.ErrInvalidAsset.Wrap("offer and ask asset must differ")
	}
	if pool.HasZeroReserve() {
		return types.SwapResult{}, types.ErrInsufficientLiquidity.Wrapf("pool %d has an empty reserve", poolID)
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return types.SwapResult{}, err
	}

	offerAsset := pool.Assets[offerIdx]
	askAsset := pool.Assets[askIdx]

	balances := pool.NormalizedBalances()
	offerNorm := types.NormalizeAmount(offer.Amount, offerAsset.Decimals, pool.GreatestPrecision)
	amp := pool.CurrentAmp(now)

	returnNorm, spreadNorm, err := types.ComputeSwap(amp, balances, offerIdx, askIdx, offerNorm)
	if err != nil {
		return types.SwapResult{}, err
	}

	grossReturn := types.DenormalizeAmount(returnNorm, pool.GreatestPrecision, askAsset.Decimals)
	spreadAmount := types.DenormalizeAmount(spreadNorm, pool.GreatestPrecision, askAsset.Decimals)

	commission := params.TotalFeeRate.MulInt(grossReturn).TruncateInt()
	returnAmount := grossReturn.Sub(commission)
	if !returnAmount.IsPositive() {
		return types.SwapResult{}, types.ErrInsufficientLiquidity.Wrap("swap output is zero after commission")
	}

	protocolFee := math.ZeroInt()
	if params.FeeCollector != "" {
		protocolFee = params.ProtocolFeeShare.MulInt(commission).TruncateInt()
	}

	// the trader's spread includes the commission: both reduce the realized
	// output versus the ideal one
	if err := types.AssertMaxSpread(beliefPrice, maxSpread, offer.Amount, returnAmount, spreadAmount.Add(commission)); err != nil {
		return types.SwapResult{}, err
	}

	if askAsset.Reserve.LTE(returnAmount.Add(protocolFee)) {
		return types.SwapResult{}, types.ErrInsufficientLiquidity.Wrapf(
			"pool %d cannot pay out %s%s", poolID, grossReturn, askDenom)
	}

	// all checks passed; move funds and write state
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, trader, types.ModuleName, sdk.NewCoins(offer)); err != nil {
		return types.SwapResult{}, err
	}
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, receiver,
		sdk.NewCoins(sdk.NewCoin(askDenom, returnAmount))); err != nil {
		return types.SwapResult{}, err
	}
	if protocolFee.IsPositive() {
		collector, err := sdk.AccAddressFromBech32(params.FeeCollector)
		if err != nil {
			return types.SwapResult{}, types.ErrInvalidInput.Wrapf("invalid fee collector: %v", err)
		}
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, collector,
			sdk.NewCoins(sdk.NewCoin(askDenom, protocolFee))); err != nil {
			return types.SwapResult{}, err
		}
	}

	accumulatePoolPrices(&pool, now)

	// the commission share not forwarded to the collector stays in the
	// reserves and accrues to LPs
	pool.Assets[offerIdx].Reserve = offerAsset.Reserve.Add(offer.Amount)
	pool.Assets[askIdx].Reserve = askAsset.Reserve.Sub(returnAmount).Sub(protocolFee)
	if err := k.SetPool(ctx, pool); err != nil {
		return types.SwapResult{}, err
	}
	k.recordPoolPrice(ctx, pool, now)

	sdkCtx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeSwap,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyTrader, trader.String()),
			sdk.NewAttribute(types.AttributeKeyReceiver, receiver.String()),
			sdk.NewAttribute(types.AttributeKeyOfferAsset, offer.Denom),
			sdk.NewAttribute(types.AttributeKeyAskAsset, askDenom),
			sdk.NewAttribute(types.AttributeKeyOfferAmount, offer.Amount.String()),
			sdk.NewAttribute(types.AttributeKeyReturnAmount, returnAmount.String()),
			sdk.NewAttribute(types.AttributeKeySpreadAmount, spreadAmount.String()),
			sdk.NewAttribute(types.AttributeKeyCommission, commission.String()),
			sdk.NewAttribute(types.AttributeKeyProtocolFee, protocolFee.String()),
		),
	})

	k.Logger(ctx).Info("executed swap",
		"pool_id", poolID,
		"trader", trader.String(),
		"offer", offer.String(),
		"return", returnAmount.String(),
		"commission", commission.String(),
		"spread", spreadAmount.String(),
	)

	m := GetMetrics()
	poolLabel := fmt.Sprintf("%d", poolID)
	m.SwapsTotal.WithLabelValues(poolLabel, offer.Denom, askDenom).Inc()
	m.SwapVolume.WithLabelValues(poolLabel, offer.Denom).Add(intToFloat(offer.Amount))
	m.SwapFeesCollected.WithLabelValues(poolLabel, askDenom).Add(intToFloat(commission))
	idealReturn := grossReturn.Add(spreadAmount)
	spreadPct, _ := math.LegacyNewDecFromInt(spreadAmount).
		Quo(math.LegacyNewDecFromInt(idealReturn)).MulInt64(100).Float64()
	m.SwapSpread.Observe(spreadPct)

	return types.SwapResult{
		ReturnAmount:     returnAmount,
		SpreadAmount:     spreadAmount,
		CommissionAmount: commission,
		ProtocolFee:      protocolFee,
	}, nil
}

// SimulateSwap computes the outcome of a swap without touching state or
// enforcing the trading-start and freeze gates.
func (k Keeper) SimulateSwap(
	ctx context.Context,
	poolID uint64,
	offer sdk.Coin,
	askDenom string,
) (types.SwapResult, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return types.SwapResult{}, err
	}
	offerIdx, ok := pool.AssetIndex(offer.Denom)
	if !ok {
		return types.SwapResult{}, types.ErrInvalidAsset.Wrapf("%s is not in pool %d", offer.Denom, poolID)
	}
	askIdx, ok := pool.AssetIndex(askDenom)
	if !ok {
		return types.SwapResult{}, types.ErrInvalidAsset.Wrapf("%s is not in pool %d", askDenom, poolID)
	}
	if pool.HasZeroReserve() {
		return types.SwapResult{}, types.ErrInsufficientLiquidity.Wrapf("pool %d has an empty reserve", poolID)
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return types.SwapResult{}, err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	amp := pool.CurrentAmp(sdkCtx.BlockTime().Unix())

	offerNorm := types.NormalizeAmount(offer.Amount, pool.Assets[offerIdx].Decimals, pool.GreatestPrecision)
	returnNorm, spreadNorm, err := types.ComputeSwap(amp, pool.NormalizedBalances(), offerIdx, askIdx, offerNorm)
	if err != nil {
		return types.SwapResult{}, err
	}

	askDecimals := pool.Assets[askIdx].Decimals
	grossReturn := types.DenormalizeAmount(returnNorm, pool.GreatestPrecision, askDecimals)
	spreadAmount := types.DenormalizeAmount(spreadNorm, pool.GreatestPrecision, askDecimals)
	commission := params.TotalFeeRate.MulInt(grossReturn).TruncateInt()

	protocolFee := math.ZeroInt()
	if params.FeeCollector != "" {
		protocolFee = params.ProtocolFeeShare.MulInt(commission).TruncateInt()
	}

	return types.SwapResult{
		ReturnAmount:     grossReturn.Sub(commission),
		SpreadAmount:     spreadAmount,
		CommissionAmount: commission,
		ProtocolFee:      protocolFee,
	}, nil
}

// SimulateReverseSwap computes the offer amount needed to receive ask,
// rounding against the trader so the quoted offer is always sufficient.
func (k Keeper) SimulateReverseSwap(
	ctx context.Context,
	poolID uint64,
	offerDenom string,
	ask sdk.Coin,
) (math.Int, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	offerIdx, ok := pool.AssetIndex(offerDenom)
	if !ok {
		return math.Int{}, types.ErrInvalidAsset.Wrapf("%s is not in pool %d", offerDenom, poolID)
	}
	askIdx, ok := pool.AssetIndex(ask.Denom)
	if !ok {
		return math.Int{}, types.ErrInvalidAsset.Wrapf("%s is not in pool %d", ask.Denom, poolID)
	}
	if offerIdx == askIdx {
		return math.Int{}, types.ErrInvalidAsset.Wrap("offer and ask asset must differ")
	}
	if !ask.Amount.IsPositive() {
		return math.Int{}, types.ErrZeroAmount.Wrap("ask amount must be positive")
	}
	if pool.HasZeroReserve() {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrapf("pool %d has an empty reserve", poolID)
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return math.Int{}, err
	}

	// gross up the desired net output by the commission
	grossReturn := math.LegacyNewDecFromInt(ask.Amount).
		Quo(math.LegacyOneDec().Sub(params.TotalFeeRate)).Ceil().TruncateInt()

	askAsset := pool.Assets[askIdx]
	offerAsset := pool.Assets[offerIdx]
	grossNorm := types.NormalizeAmount(grossReturn, askAsset.Decimals, pool.GreatestPrecision)

	balances := pool.NormalizedBalances()
	if balances[askIdx].LTE(grossNorm) {
		return math.Int{}, types.ErrInsufficientLiquidity.Wrapf(
			"pool %d cannot pay out %s%s", poolID, grossReturn, ask.Denom)
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	amp := pool.CurrentAmp(sdkCtx.BlockTime().Unix())

	d, err := types.ComputeD(amp, balances)
	if err != nil {
		return math.Int{}, err
	}

	newBalances := make([]math.Int, len(balances))
	copy(newBalances, balances)
	newBalances[askIdx] = newBalances[askIdx].Sub(grossNorm)

	newOfferBalance, err := types.ComputeY(amp, newBalances, d, offerIdx)
	if err != nil {
		return math.Int{}, err
	}
	offerNorm := newOfferBalance.Sub(balances[offerIdx])
	if !offerNorm.IsPositive() {
		return math.Int{}, types.ErrZeroAmount.Wrap("required offer amount is zero")
	}

	offerAmount := types.DenormalizeAmount(offerNorm, pool.GreatestPrecision, offerAsset.Decimals)
	if types.NormalizeAmount(offerAmount, offerAsset.Decimals, pool.GreatestPrecision).LT(offerNorm) {
		offerAmount = offerAmount.AddRaw(1)
	}
	return offerAmount, nil
}

// SpotPrice returns the instantaneous price of askDenom per unit of
// offerDenom, derived from the normalized reserves.
func (k Keeper) SpotPrice(ctx context.Context, poolID uint64, offerDenom, askDenom string) (math.LegacyDec, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.LegacyDec{}, err
	}
	offerIdx, ok := pool.AssetIndex(offerDenom)
	if !ok {
		return math.LegacyDec{}, types.ErrInvalidAsset.Wrapf("%s is not in pool %d", offerDenom, poolID)
	}
	askIdx, ok := pool.AssetIndex(askDenom)
	if !ok {
		return math.LegacyDec{}, types.ErrInvalidAsset.Wrapf("%s is not in pool %d", askDenom, poolID)
	}
	if pool.HasZeroReserve() {
		return math.LegacyDec{}, types.ErrInsufficientLiquidity.Wrapf("pool %d has an empty reserve", poolID)
	}

	balances := pool.NormalizedBalances()
	return math.LegacyNewDecFromInt(balances[askIdx]).Quo(math.LegacyNewDecFromInt(balances[offerIdx])), nil
}
