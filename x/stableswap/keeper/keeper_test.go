package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/nectar-chain/nectar/testutil/keeper"
	"github.com/nectar-chain/nectar/x/stableswap/keeper"
	"github.com/nectar-chain/nectar/x/stableswap/types"
)

var (
	creatorAddr  = sdk.AccAddress([]byte("creator_____________"))
	traderAddr   = sdk.AccAddress([]byte("trader______________"))
	receiverAddr = sdk.AccAddress([]byte("receiver____________"))
)

// setupPool creates a uusdc/uusdt pool (both 6 decimals, amp 100) seeded with
// one million units of each asset.
func setupPool(t *testing.T) (keeper.Keeper, *keepertest.MockBankKeeper, sdk.Context, types.Pool) {
	t.Helper()
	k, bank, ctx := keepertest.StableswapKeeper(t)
	pool := seedPool(t, k, bank, ctx)
	return k, bank, ctx, pool
}

func seedPool(t *testing.T, k keeper.Keeper, bank *keepertest.MockBankKeeper, ctx sdk.Context) types.Pool {
	t.Helper()
	bank.SetDenomMetadata("uusdc", 6)
	bank.SetDenomMetadata("uusdt", 6)

	pool, err := k.CreatePool(ctx, creatorAddr, []string{"uusdc", "uusdt"}, 100, 0)
	require.NoError(t, err)

	bank.FundAccount(creatorAddr, sdk.NewCoins(
		sdk.NewCoin("uusdc", math.NewInt(100_000_000)),
		sdk.NewCoin("uusdt", math.NewInt(100_000_000)),
	))
	_, err = k.ProvideLiquidity(ctx, creatorAddr, pool.Id, sdk.NewCoins(
		sdk.NewCoin("uusdc", math.NewInt(1_000_000)),
		sdk.NewCoin("uusdt", math.NewInt(1_000_000)),
	), nil)
	require.NoError(t, err)

	pool, err = k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	return pool
}

func TestCreatePool(t *testing.T) {
	k, bank, ctx := keepertest.StableswapKeeper(t)
	bank.SetDenomMetadata("uusdc", 6)
	bank.SetDenomMetadata("adai", 18)

	pool, err := k.CreatePool(ctx, creatorAddr, []string{"uusdc", "adai"}, 100, 0)
	require.NoError(t, err)

	require.Equal(t, uint64(1), pool.Id)
	require.Equal(t, "stableswap/1/lp", pool.LpDenom)
	require.Equal(t, uint32(18), pool.GreatestPrecision)
	require.Equal(t, uint32(6), pool.Assets[0].Decimals)
	require.Equal(t, uint32(18), pool.Assets[1].Decimals)
	require.Equal(t, 100*types.AmpPrecision, pool.CurrentAmp(ctx.BlockTime().Unix()))
	require.True(t, pool.TotalShares.IsZero())

	stored, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, pool, stored)
}

func TestCreatePool_IDsIncrement(t *testing.T) {
	k, bank, ctx := keepertest.StableswapKeeper(t)
	bank.SetDenomMetadata("uusdc", 6)
	bank.SetDenomMetadata("uusdt", 6)
	bank.SetDenomMetadata("adai", 18)

	first, err := k.CreatePool(ctx, creatorAddr, []string{"uusdc", "uusdt"}, 100, 0)
	require.NoError(t, err)
	second, err := k.CreatePool(ctx, creatorAddr, []string{"uusdc", "adai"}, 50, 0)
	require.NoError(t, err)

	require.Equal(t, uint64(1), first.Id)
	require.Equal(t, uint64(2), second.Id)
	require.Equal(t, uint64(3), k.GetNextPoolID(ctx))
}

func TestCreatePool_UnknownMetadata(t *testing.T) {
	k, bank, ctx := keepertest.StableswapKeeper(t)
	bank.SetDenomMetadata("uusdc", 6)

	_, err := k.CreatePool(ctx, creatorAddr, []string{"uusdc", "uusdt"}, 100, 0)
	require.ErrorIs(t, err, types.ErrUnknownAssetPrecision)
}

func TestCreatePool_DuplicateDenom(t *testing.T) {
	k, bank, ctx := keepertest.StableswapKeeper(t)
	bank.SetDenomMetadata("uusdc", 6)

	_, err := k.CreatePool(ctx, creatorAddr, []string{"uusdc", "uusdc"}, 100, 0)
	require.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestCreatePool_InvalidAmp(t *testing.T) {
	k, bank, ctx := keepertest.StableswapKeeper(t)
	bank.SetDenomMetadata("uusdc", 6)
	bank.SetDenomMetadata("uusdt", 6)

	_, err := k.CreatePool(ctx, creatorAddr, []string{"uusdc", "uusdt"}, 0, 0)
	require.ErrorIs(t, err, types.ErrIncorrectAmp)

	_, err = k.CreatePool(ctx, creatorAddr, []string{"uusdc", "uusdt"}, types.MaxAmp+1, 0)
	require.ErrorIs(t, err, types.ErrIncorrectAmp)
}

func TestCreatePool_TooFewAssets(t *testing.T) {
	k, bank, ctx := keepertest.StableswapKeeper(t)
	bank.SetDenomMetadata("uusdc", 6)

	_, err := k.CreatePool(ctx, creatorAddr, []string{"uusdc"}, 100, 0)
	require.ErrorIs(t, err, types.ErrInvalidNumberOfAssets)
}

func TestGetPool_NotFound(t *testing.T) {
	k, _, ctx := keepertest.StableswapKeeper(t)

	_, err := k.GetPool(ctx, 42)
	require.ErrorIs(t, err, types.ErrPoolNotFound)

	_, err = k.GetPool(ctx, 0)
	require.ErrorIs(t, err, types.ErrInvalidPoolId)
}

func TestSharesToAssets(t *testing.T) {
	k, _, ctx, pool := setupPool(t)

	// a quarter of the outstanding shares redeems a quarter of each reserve
	coins, err := k.SharesToAssets(ctx, pool.Id, math.NewInt(500_000))
	require.NoError(t, err)
	require.Equal(t, math.NewInt(250_000), coins.AmountOf("uusdc"))
	require.Equal(t, math.NewInt(250_000), coins.AmountOf("uusdt"))

	_, err = k.SharesToAssets(ctx, pool.Id, pool.TotalShares.AddRaw(1))
	require.ErrorIs(t, err, types.ErrInsufficientShares)
}
