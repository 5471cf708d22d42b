package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/nectar-chain/nectar/x/stableswap/types"
)

// StartAmpRamp begins a linear amplification ramp from the pool's current
// effective amp to nextAmp, finishing at nextAmpTime. Only the module
// authority may ramp, the target must stay within MaxAmpChange of the current
// value and both the ramp duration and the gap since the previous ramp must
// satisfy MinAmpChangingTime.
func (k Keeper) StartAmpRamp(
	ctx context.Context,
	authority string,
	poolID uint64,
	nextAmp uint64,
	nextAmpTime int64,
) error {
	if authority != k.authority {
		return types.ErrUnauthorized.Wrapf("expected %s, got %s", k.authority, authority)
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return err
	}
	if err := pool.ValidateAmpRamp(nextAmp, nextAmpTime, now); err != nil {
		return err
	}

	pool.InitAmp = pool.CurrentAmp(now)
	pool.InitAmpTime = now
	pool.NextAmp = nextAmp * types.AmpPrecision
	pool.NextAmpTime = nextAmpTime
	if err := k.SetPool(ctx, pool); err != nil {
		return err
	}

	sdkCtx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeAmpRampStarted,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyInitAmp, fmt.Sprintf("%d", pool.InitAmp)),
			sdk.NewAttribute(types.AttributeKeyNextAmp, fmt.Sprintf("%d", pool.NextAmp)),
			sdk.NewAttribute(types.AttributeKeyNextAmpTime, fmt.Sprintf("%d", nextAmpTime)),
		),
	})

	k.Logger(ctx).Info("started amp ramp",
		"pool_id", poolID,
		"init_amp", pool.InitAmp,
		"next_amp", pool.NextAmp,
		"next_amp_time", nextAmpTime,
	)
	GetMetrics().AmpValue.WithLabelValues(fmt.Sprintf("%d", poolID)).
		Set(float64(pool.InitAmp) / float64(types.AmpPrecision))

	return nil
}

// StopAmpRamp freezes the amplification at its current effective value,
// cancelling any ramp in progress.
func (k Keeper) StopAmpRamp(ctx context.Context, authority string, poolID uint64) error {
	if authority != k.authority {
		return types.ErrUnauthorized.Wrapf("expected %s, got %s", k.authority, authority)
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return err
	}

	current := pool.CurrentAmp(now)
	pool.InitAmp = current
	pool.InitAmpTime = now
	pool.NextAmp = current
	pool.NextAmpTime = now
	if err := k.SetPool(ctx, pool); err != nil {
		return err
	}

	sdkCtx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeAmpRampStopped,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyNextAmp, fmt.Sprintf("%d", current)),
		),
	})

	k.Logger(ctx).Info("stopped amp ramp", "pool_id", poolID, "amp", current)
	GetMetrics().AmpValue.WithLabelValues(fmt.Sprintf("%d", poolID)).
		Set(float64(current) / float64(types.AmpPrecision))

	return nil
}
