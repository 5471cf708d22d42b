package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/nectar-chain/nectar/x/stableswap/types"
)

// ProvideLiquidity deposits assets into the pool and mints LP shares to the
// receiver. The first deposit must cover every asset and permanently locks
// MinimumLiquidityAmount shares in the module account; later deposits may be
// imbalanced once trading has started and pay the imbalance fee on the
// portion that deviates from the pool's current ratio.
func (k Keeper) ProvideLiquidity(
	ctx context.Context,
	provider sdk.AccAddress,
	poolID uint64,
	deposits sdk.Coins,
	receiver sdk.AccAddress,
) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return math.Int{}, err
	}
	if pool.Frozen {
		return math.Int{}, types.ErrPoolFrozen.Wrapf("pool %d", poolID)
	}
	if receiver == nil {
		receiver = provider
	}

	if deposits.IsZero() {
		return math.Int{}, types.ErrZeroAmount.Wrap("no deposit provided")
	}
	for _, coin := range deposits {
		if _, ok := pool.AssetIndex(coin.Denom); !ok {
			return math.Int{}, types.ErrInvalidAsset.Wrapf("%s is not in pool %d", coin.Denom, poolID)
		}
	}

	depositAmounts := make([]math.Int, len(pool.Assets))
	depositNorm := make([]math.Int, len(pool.Assets))
	for i, asset := range pool.Assets {
		amount := deposits.AmountOf(asset.Denom)
		depositAmounts[i] = amount
		depositNorm[i] = types.NormalizeAmount(amount, asset.Decimals, pool.GreatestPrecision)
		if asset.Reserve.IsZero() && !amount.IsPositive() {
			return math.Int{}, types.ErrInvalidInput.Wrapf(
				"initial deposit must include every pool asset, %s is missing", asset.Denom)
		}
	}

	firstDeposit := pool.TotalShares.IsZero()
	if !firstDeposit && now < pool.TradingStarts && !isProportionalDeposit(pool, depositAmounts) {
		return math.Int{}, types.ErrTradingNotStarted.Wrapf(
			"imbalanced deposits into pool %d are allowed from %d", poolID, pool.TradingStarts)
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return math.Int{}, err
	}

	amp := pool.CurrentAmp(now)
	oldBalances := pool.NormalizedBalances()

	initD, err := types.ComputeD(amp, oldBalances)
	if err != nil {
		return math.Int{}, err
	}

	newBalances := make([]math.Int, len(oldBalances))
	for i := range oldBalances {
		newBalances[i] = oldBalances[i].Add(depositNorm[i])
	}
	depositD, err := types.ComputeD(amp, newBalances)
	if err != nil {
		return math.Int{}, err
	}
	if depositD.LTE(initD) {
		return math.Int{}, types.ErrLiquidityTooSmall.Wrap("deposit does not grow the invariant")
	}

	var mintedShares, lockedShares math.Int
	if firstDeposit {
		lockedShares = math.NewInt(types.MinimumLiquidityAmount)
		mintedShares = depositD.Sub(lockedShares)
		if !mintedShares.IsPositive() {
			return math.Int{}, types.ErrMinimumLiquidityAmount.Wrapf(
				"initial deposit yields %s shares, need more than %d", depositD, types.MinimumLiquidityAmount)
		}
	} else {
		lockedShares = math.ZeroInt()

		// charge the imbalance fee on the deviation from a perfectly
		// proportional deposit before measuring the invariant growth
		feeRate := types.ImbalanceFeeRate(params.TotalFeeRate, len(pool.Assets))
		adjusted := make([]math.Int, len(newBalances))
		for i := range newBalances {
			ideal := depositD.Mul(oldBalances[i]).Quo(initD)
			diff := newBalances[i].Sub(ideal).Abs()
			fee := feeRate.MulInt(diff).TruncateInt()
			adjusted[i] = newBalances[i].Sub(fee)
			if !adjusted[i].IsPositive() {
				return math.Int{}, types.ErrLiquidityTooSmall.Wrapf(
					"imbalance fee consumes the whole %s deposit", pool.Assets[i].Denom)
			}
		}
		afterFeeD, err := types.ComputeD(amp, adjusted)
		if err != nil {
			return math.Int{}, err
		}

		mintedShares = pool.TotalShares.Mul(afterFeeD.Sub(initD)).Quo(initD)
		if !mintedShares.IsPositive() {
			return math.Int{}, types.ErrLiquidityTooSmall.Wrap("deposit would mint zero shares")
		}
	}

	// all checks passed; move funds and write state
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, provider, types.ModuleName, deposits); err != nil {
		return math.Int{}, err
	}
	totalMint := mintedShares.Add(lockedShares)
	lpCoins := sdk.NewCoins(sdk.NewCoin(pool.LpDenom, totalMint))
	if err := k.bankKeeper.MintCoins(ctx, types.ModuleName, lpCoins); err != nil {
		return math.Int{}, err
	}
	// the locked minimum stays on the module account forever
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, receiver,
		sdk.NewCoins(sdk.NewCoin(pool.LpDenom, mintedShares))); err != nil {
		return math.Int{}, err
	}

	accumulatePoolPrices(&pool, now)
	for i := range pool.Assets {
		pool.Assets[i].Reserve = pool.Assets[i].Reserve.Add(depositAmounts[i])
	}
	pool.TotalShares = pool.TotalShares.Add(totalMint)
	if err := k.SetPool(ctx, pool); err != nil {
		return math.Int{}, err
	}
	k.recordPoolPrice(ctx, pool, now)

	sdkCtx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeProvideLiquidity,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyCreator, provider.String()),
			sdk.NewAttribute(types.AttributeKeyReceiver, receiver.String()),
			sdk.NewAttribute(types.AttributeKeyAssets, deposits.String()),
			sdk.NewAttribute(types.AttributeKeyShares, mintedShares.String()),
		),
	})

	k.Logger(ctx).Info("provided liquidity",
		"pool_id", poolID,
		"provider", provider.String(),
		"deposits", deposits.String(),
		"shares", mintedShares.String(),
		"first_deposit", firstDeposit,
	)

	m := GetMetrics()
	poolLabel := fmt.Sprintf("%d", poolID)
	for _, coin := range deposits {
		m.LiquidityAdded.WithLabelValues(poolLabel, coin.Denom).Add(intToFloat(coin.Amount))
	}
	m.LPShareSupply.WithLabelValues(poolLabel).Set(intToFloat(pool.TotalShares))

	return mintedShares, nil
}

// WithdrawLiquidity redeems LP shares for pool assets. With no assets
// requested the withdrawal is balanced and burns exactly providedShares; with
// explicit assets the pool computes the shares those assets cost, charges the
// imbalance fee, burns that amount (never more than providedShares) and
// refunds the unused remainder. It returns the withdrawn coins and the shares
// actually burned.
func (k Keeper) WithdrawLiquidity(
	ctx context.Context,
	provider sdk.AccAddress,
	poolID uint64,
	providedShares math.Int,
	assets sdk.Coins,
) (sdk.Coins, math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return nil, math.Int{}, err
	}
	if providedShares.IsNil() || !providedShares.IsPositive() {
		return nil, math.Int{}, types.ErrZeroAmount.Wrap("shares must be positive")
	}
	if !pool.TotalShares.IsPositive() {
		return nil, math.Int{}, types.ErrInsufficientLiquidity.Wrapf("pool %d has no shares", poolID)
	}
	if providedShares.GTE(pool.TotalShares) {
		return nil, math.Int{}, types.ErrInsufficientShares.Wrapf(
			"%s shares exceed the outstanding supply", providedShares)
	}

	var (
		refunds      sdk.Coins
		burnedShares math.Int
	)
	if assets.IsZero() {
		refunds, burnedShares, err = k.balancedWithdrawal(pool, providedShares)
	} else {
		refunds, burnedShares, err = k.imbalancedWithdrawal(ctx, pool, providedShares, assets, now)
	}
	if err != nil {
		return nil, math.Int{}, err
	}

	// all checks passed; move funds and write state
	lpCoins := sdk.NewCoins(sdk.NewCoin(pool.LpDenom, providedShares))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, provider, types.ModuleName, lpCoins); err != nil {
		return nil, math.Int{}, err
	}
	if err := k.bankKeeper.BurnCoins(ctx, types.ModuleName,
		sdk.NewCoins(sdk.NewCoin(pool.LpDenom, burnedShares))); err != nil {
		return nil, math.Int{}, err
	}
	unusedShares := providedShares.Sub(burnedShares)
	if unusedShares.IsPositive() {
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, provider,
			sdk.NewCoins(sdk.NewCoin(pool.LpDenom, unusedShares))); err != nil {
			return nil, math.Int{}, err
		}
	}
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, provider, refunds); err != nil {
		return nil, math.Int{}, err
	}

	accumulatePoolPrices(&pool, now)
	for i := range pool.Assets {
		pool.Assets[i].Reserve = pool.Assets[i].Reserve.Sub(refunds.AmountOf(pool.Assets[i].Denom))
	}
	pool.TotalShares = pool.TotalShares.Sub(burnedShares)
	if err := k.SetPool(ctx, pool); err != nil {
		return nil, math.Int{}, err
	}
	k.recordPoolPrice(ctx, pool, now)

	sdkCtx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeWithdrawLiquidity,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyCreator, provider.String()),
			sdk.NewAttribute(types.AttributeKeyRefundAssets, refunds.String()),
			sdk.NewAttribute(types.AttributeKeyBurnedShares, burnedShares.String()),
		),
	})

	k.Logger(ctx).Info("withdrew liquidity",
		"pool_id", poolID,
		"provider", provider.String(),
		"refunds", refunds.String(),
		"burned_shares", burnedShares.String(),
	)

	m := GetMetrics()
	poolLabel := fmt.Sprintf("%d", poolID)
	for _, coin := range refunds {
		m.LiquidityRemoved.WithLabelValues(poolLabel, coin.Denom).Add(intToFloat(coin.Amount))
	}
	m.LPShareSupply.WithLabelValues(poolLabel).Set(intToFloat(pool.TotalShares))

	return refunds, burnedShares, nil
}

// balancedWithdrawal redeems shares pro-rata against all reserves, rounding
// each refund down so the pool never over-pays.
func (k Keeper) balancedWithdrawal(pool types.Pool, shares math.Int) (sdk.Coins, math.Int, error) {
	refunds := sdk.NewCoins()
	for _, asset := range pool.Assets {
		amount := asset.Reserve.Mul(shares).Quo(pool.TotalShares)
		if amount.IsPositive() {
			refunds = refunds.Add(sdk.NewCoin(asset.Denom, amount))
		}
	}
	if refunds.IsZero() {
		return nil, math.Int{}, types.ErrLiquidityTooSmall.Wrap("shares redeem to zero assets")
	}
	return refunds, shares, nil
}

// imbalancedWithdrawal prices the exact assets requested in LP shares,
// mirroring the deposit-side imbalance fee, and rounds the burned shares up.
func (k Keeper) imbalancedWithdrawal(
	ctx context.Context,
	pool types.Pool,
	providedShares math.Int,
	assets sdk.Coins,
	now int64,
) (sdk.Coins, math.Int, error) {
	withdrawNorm := make([]math.Int, len(pool.Assets))
	for i, asset := range pool.Assets {
		amount := assets.AmountOf(asset.Denom)
		withdrawNorm[i] = types.NormalizeAmount(amount, asset.Decimals, pool.GreatestPrecision)
	}
	for _, coin := range assets {
		if _, ok := pool.AssetIndex(coin.Denom); !ok {
			return nil, math.Int{}, types.ErrInvalidAsset.Wrapf("%s is not in pool %d", coin.Denom, pool.Id)
		}
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, math.Int{}, err
	}

	amp := pool.CurrentAmp(now)
	oldBalances := pool.NormalizedBalances()

	initD, err := types.ComputeD(amp, oldBalances)
	if err != nil {
		return nil, math.Int{}, err
	}

	newBalances := make([]math.Int, len(oldBalances))
	for i := range oldBalances {
		newBalances[i] = oldBalances[i].Sub(withdrawNorm[i])
		if !newBalances[i].IsPositive() {
			return nil, math.Int{}, types.ErrInsufficientLiquidity.Wrapf(
				"withdrawal would drain the %s reserve", pool.Assets[i].Denom)
		}
	}
	withdrawD, err := types.ComputeD(amp, newBalances)
	if err != nil {
		return nil, math.Int{}, err
	}

	feeRate := types.ImbalanceFeeRate(params.TotalFeeRate, len(pool.Assets))
	adjusted := make([]math.Int, len(newBalances))
	for i := range newBalances {
		ideal := withdrawD.Mul(oldBalances[i]).Quo(initD)
		diff := newBalances[i].Sub(ideal).Abs()
		fee := feeRate.MulInt(diff).TruncateInt()
		adjusted[i] = newBalances[i].Sub(fee)
		if !adjusted[i].IsPositive() {
			return nil, math.Int{}, types.ErrInsufficientLiquidity.Wrapf(
				"imbalance fee would drain the %s reserve", pool.Assets[i].Denom)
		}
	}
	afterFeeD, err := types.ComputeD(amp, adjusted)
	if err != nil {
		return nil, math.Int{}, err
	}

	// round the share cost up so rounding always favors the pool
	burnedShares := pool.TotalShares.Mul(initD.Sub(afterFeeD)).Quo(initD).AddRaw(1)
	if burnedShares.GT(providedShares) {
		return nil, math.Int{}, types.ErrInsufficientShares.Wrapf(
			"withdrawal costs %s shares, %s provided", burnedShares, providedShares)
	}
	return assets, burnedShares, nil
}

// isProportionalDeposit reports whether the deposit matches the pool's
// current reserve ratio exactly.
func isProportionalDeposit(pool types.Pool, deposits []math.Int) bool {
	for i := 1; i < len(pool.Assets); i++ {
		left := deposits[i].Mul(pool.Assets[0].Reserve)
		right := deposits[0].Mul(pool.Assets[i].Reserve)
		if !left.Equal(right) {
			return false
		}
	}
	return true
}
