package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/nectar-chain/nectar/x/stableswap/types"
)

// CreatePool registers a new stableswap pool over the given denoms. Asset
// decimals are resolved from the bank denom metadata; the pool starts empty
// and the first liquidity deposit initializes its shares. tradingStarts may be
// zero to open the pool for swaps immediately.
func (k Keeper) CreatePool(
	ctx context.Context,
	creator sdk.AccAddress,
	denoms []string,
	amp uint64,
	tradingStarts int64,
) (types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	now := sdkCtx.BlockTime().Unix()

	if len(denoms) < types.MinPoolAssets || len(denoms) > types.MaxPoolAssets {
		return types.Pool{}, types.ErrInvalidNumberOfAssets.Wrapf(
			"pool must hold between %d and %d assets, got %d",
			types.MinPoolAssets, types.MaxPoolAssets, len(denoms))
	}
	if err := types.ValidateAmp(amp); err != nil {
		return types.Pool{}, err
	}
	if tradingStarts < 0 {
		return types.Pool{}, types.ErrInvalidInput.Wrap("trading start time cannot be negative")
	}

	assets := make([]types.PoolAsset, 0, len(denoms))
	greatest := uint32(0)
	seen := make(map[string]struct{}, len(denoms))
	for _, denom := range denoms {
		if err := sdk.ValidateDenom(denom); err != nil {
			return types.Pool{}, types.ErrInvalidInput.Wrapf("invalid denom %q: %v", denom, err)
		}
		if _, ok := seen[denom]; ok {
			return types.Pool{}, types.ErrInvalidInput.Wrapf("duplicate asset %s", denom)
		}
		seen[denom] = struct{}{}

		decimals, err := k.resolveDecimals(ctx, denom)
		if err != nil {
			return types.Pool{}, err
		}
		if decimals > greatest {
			greatest = decimals
		}
		assets = append(assets, types.PoolAsset{
			Denom:    denom,
			Decimals: decimals,
			Reserve:  math.ZeroInt(),
		})
	}

	poolID, err := k.nextPoolID(ctx)
	if err != nil {
		return types.Pool{}, err
	}

	ampScaled := amp * types.AmpPrecision
	pool := types.Pool{
		Id:                poolID,
		Creator:           creator.String(),
		LpDenom:           types.LpDenom(poolID),
		Assets:            assets,
		GreatestPrecision: greatest,
		InitAmp:           ampScaled,
		InitAmpTime:       now,
		NextAmp:           ampScaled,
		NextAmpTime:       now,
		TotalShares:       math.ZeroInt(),
		TradingStarts:     tradingStarts,
		BlockTimeLast:     now,
		CumulativePrices:  newCumulativePrices(assets),
	}
	if err := pool.Validate(); err != nil {
		return types.Pool{}, err
	}
	if err := k.SetPool(ctx, pool); err != nil {
		return types.Pool{}, err
	}

	sdkCtx.EventManager().EmitEvents(sdk.Events{
		sdk.NewEvent(
			types.EventTypePoolCreated,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyCreator, creator.String()),
			sdk.NewAttribute(types.AttributeKeyAssets, joinDenoms(assets)),
		),
	})

	k.Logger(ctx).Info("created stableswap pool",
		"pool_id", poolID,
		"assets", joinDenoms(assets),
		"amp", amp,
		"greatest_precision", greatest,
	)
	GetMetrics().PoolCreations.Inc()

	return pool, nil
}

// resolveDecimals looks up an asset's decimal precision from the bank denom
// metadata: the exponent of the display unit relative to the base denom.
func (k Keeper) resolveDecimals(ctx context.Context, denom string) (uint32, error) {
	metadata, found := k.bankKeeper.GetDenomMetaData(ctx, denom)
	if !found {
		return 0, types.ErrUnknownAssetPrecision.Wrapf("no denom metadata for %s", denom)
	}
	for _, unit := range metadata.DenomUnits {
		if unit.Denom == metadata.Display {
			return unit.Exponent, nil
		}
	}
	return 0, types.ErrUnknownAssetPrecision.Wrapf("denom metadata for %s has no display unit", denom)
}

// GetPool returns a pool by ID
func (k Keeper) GetPool(ctx context.Context, poolID uint64) (types.Pool, error) {
	if poolID == 0 {
		return types.Pool{}, types.ErrInvalidPoolId.Wrap("pool id cannot be zero")
	}
	store := k.getStore(ctx)
	bz := store.Get(PoolKey(poolID))
	if bz == nil {
		return types.Pool{}, types.ErrPoolNotFound.Wrapf("pool %d", poolID)
	}

	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return types.Pool{}, fmt.Errorf("GetPool: unmarshal pool %d: %w", poolID, err)
	}
	return pool, nil
}

// SetPool persists a pool record
func (k Keeper) SetPool(ctx context.Context, pool types.Pool) error {
	bz, err := json.Marshal(pool)
	if err != nil {
		return fmt.Errorf("SetPool: marshal pool %d: %w", pool.Id, err)
	}
	k.getStore(ctx).Set(PoolKey(pool.Id), bz)
	return nil
}

// GetAllPools returns every pool, ordered by ID.
func (k Keeper) GetAllPools(ctx context.Context) ([]types.Pool, error) {
	var pools []types.Pool
	err := k.IteratePools(ctx, func(pool types.Pool) bool {
		pools = append(pools, pool)
		return false
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i].Id < pools[j].Id })
	return pools, nil
}

// IteratePools walks all pool records; the callback returns true to stop.
func (k Keeper) IteratePools(ctx context.Context, cb func(pool types.Pool) bool) error {
	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, PoolKeyPrefix)
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var pool types.Pool
		if err := json.Unmarshal(iterator.Value(), &pool); err != nil {
			return fmt.Errorf("IteratePools: unmarshal: %w", err)
		}
		if cb(pool) {
			break
		}
	}
	return nil
}

// GetNextPoolID returns the next pool ID without consuming it.
func (k Keeper) GetNextPoolID(ctx context.Context) uint64 {
	store := k.getStore(ctx)
	bz := store.Get(PoolCountKey)
	if bz == nil {
		return 1
	}
	return binary.BigEndian.Uint64(bz)
}

// SetNextPoolID sets the pool ID counter, used by genesis import.
func (k Keeper) SetNextPoolID(ctx context.Context, id uint64) {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, id)
	k.getStore(ctx).Set(PoolCountKey, bz)
}

// nextPoolID consumes and returns the next pool ID
func (k Keeper) nextPoolID(ctx context.Context) (uint64, error) {
	id := k.GetNextPoolID(ctx)
	if id == 0 {
		return 0, types.ErrInvalidPoolId.Wrap("pool id counter corrupted")
	}
	k.SetNextPoolID(ctx, id+1)
	return id, nil
}

// SharesToAssets returns the underlying asset value of the given LP shares at
// the current reserves, rounding down.
func (k Keeper) SharesToAssets(ctx context.Context, poolID uint64, shares math.Int) (sdk.Coins, error) {
	pool, err := k.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if shares.IsNil() || !shares.IsPositive() {
		return nil, types.ErrZeroAmount.Wrap("shares must be positive")
	}
	if !pool.TotalShares.IsPositive() {
		return nil, types.ErrInsufficientLiquidity.Wrapf("pool %d has no shares", poolID)
	}
	if shares.GT(pool.TotalShares) {
		return nil, types.ErrInsufficientShares.Wrapf(
			"%s shares requested, %s outstanding", shares, pool.TotalShares)
	}

	out := sdk.NewCoins()
	for _, asset := range pool.Assets {
		amount := asset.Reserve.Mul(shares).Quo(pool.TotalShares)
		if amount.IsPositive() {
			out = out.Add(sdk.NewCoin(asset.Denom, amount))
		}
	}
	return out, nil
}

func newCumulativePrices(assets []types.PoolAsset) []types.CumulativePrice {
	prices := make([]types.CumulativePrice, 0, len(assets)*(len(assets)-1))
	for _, from := range assets {
		for _, to := range assets {
			if from.Denom == to.Denom {
				continue
			}
			prices = append(prices, types.CumulativePrice{
				OfferDenom: from.Denom,
				AskDenom:   to.Denom,
				Value:      math.ZeroInt(),
			})
		}
	}
	return prices
}

func joinDenoms(assets []types.PoolAsset) string {
	out := ""
	for i, a := range assets {
		if i > 0 {
			out += ","
		}
		out += a.Denom
	}
	return out
}
