package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultGenesisValid(t *testing.T) {
	require.NoError(t, DefaultGenesis().Validate())
}

func TestGenesisValidate_ZeroNextPoolID(t *testing.T) {
	gs := DefaultGenesis()
	gs.NextPoolId = 0
	require.Error(t, gs.Validate())
}

func TestGenesisValidate_DuplicatePool(t *testing.T) {
	gs := DefaultGenesis()
	gs.Pools = []Pool{validPool(), validPool()}
	gs.NextPoolId = 2
	require.Error(t, gs.Validate())
}

func TestGenesisValidate_PoolIDAboveCounter(t *testing.T) {
	gs := DefaultGenesis()
	pool := validPool()
	pool.Id = 9
	gs.Pools = []Pool{pool}
	gs.NextPoolId = 5
	require.Error(t, gs.Validate())
}

func TestGenesisValidate_InvalidPool(t *testing.T) {
	gs := DefaultGenesis()
	pool := validPool()
	pool.GreatestPrecision = 42
	gs.Pools = []Pool{pool}
	gs.NextPoolId = 2
	require.Error(t, gs.Validate())
}
