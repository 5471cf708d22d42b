package types

import (
	"fmt"
)

// GenesisState holds the full stableswap module state.
type GenesisState struct {
	Params     Params `json:"params"`
	Pools      []Pool `json:"pools"`
	NextPoolId uint64 `json:"next_pool_id"`
}

// DefaultGenesis returns the default genesis state for the stableswap module.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:     DefaultParams(),
		Pools:      []Pool{},
		NextPoolId: 1,
	}
}

// Validate ensures the genesis state is well-formed.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	if gs.NextPoolId == 0 {
		return fmt.Errorf("next pool id must be positive")
	}

	seen := make(map[uint64]struct{}, len(gs.Pools))
	for _, pool := range gs.Pools {
		if _, ok := seen[pool.Id]; ok {
			return fmt.Errorf("duplicate pool id %d", pool.Id)
		}
		seen[pool.Id] = struct{}{}
		if pool.Id >= gs.NextPoolId {
			return fmt.Errorf("pool id %d not below next pool id %d", pool.Id, gs.NextPoolId)
		}
		if err := pool.Validate(); err != nil {
			return fmt.Errorf("invalid pool %d: %w", pool.Id, err)
		}
	}
	return nil
}
