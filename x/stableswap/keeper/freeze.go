package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/nectar-chain/nectar/x/stableswap/types"
)

// SetFrozen flips the pool's circuit breaker. A frozen pool rejects swaps and
// deposits; withdrawals stay open so providers can always exit.
func (k Keeper) SetFrozen(ctx context.Context, authority string, poolID uint64, frozen bool) error {
	if authority != k.authority {
		return types.ErrUnauthorized.Wrapf("expected %s, got %s", k.authority, authority)
	}

	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return err
	}
	if pool.Frozen == frozen {
		return nil
	}
	pool.Frozen = frozen
	if err := k.SetPool(ctx, pool); err != nil {
		return err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypeFreeze,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyFrozen, fmt.Sprintf("%t", frozen)),
		),
	})

	k.Logger(ctx).Info("pool freeze status changed", "pool_id", poolID, "frozen", frozen)

	frozenGauge := 0.0
	if frozen {
		frozenGauge = 1.0
	}
	GetMetrics().PoolsFrozen.WithLabelValues(fmt.Sprintf("%d", poolID)).Set(frozenGauge)

	return nil
}
