package keeper

import (
	"context"
	"fmt"

	"github.com/nectar-chain/nectar/x/stableswap/types"
)

// InitGenesis initializes the stableswap module state from genesis
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return fmt.Errorf("invalid stableswap genesis: %w", err)
	}
	if err := k.SetParams(ctx, genState.Params); err != nil {
		return err
	}
	for _, pool := range genState.Pools {
		if err := k.SetPool(ctx, pool); err != nil {
			return err
		}
	}
	k.SetNextPoolID(ctx, genState.NextPoolId)
	return nil
}

// ExportGenesis exports the stableswap module state
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	pools, err := k.GetAllPools(ctx)
	if err != nil {
		return nil, err
	}
	return &types.GenesisState{
		Params:     params,
		Pools:      pools,
		NextPoolId: k.GetNextPoolID(ctx),
	}, nil
}
