package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	"cosmossdk.io/math"

	"github.com/nectar-chain/nectar/x/stableswap/types"
)

// accumulatePoolPrices advances every cumulative price register of the pool by
// elapsed * spot, using the reserves as they stand right now. Callers invoke
// it before mutating reserves so each interval is weighted by the price that
// actually held during it. A repeated timestamp is a no-op.
func accumulatePoolPrices(pool *types.Pool, now int64) {
	elapsed := now - pool.BlockTimeLast
	if elapsed <= 0 {
		return
	}
	defer func() { pool.BlockTimeLast = now }()

	if pool.HasZeroReserve() {
		return
	}

	normalized := pool.NormalizedBalances()
	index := make(map[string]int, len(pool.Assets))
	for i, a := range pool.Assets {
		index[a.Denom] = i
	}

	for i, register := range pool.CumulativePrices {
		offer, ok := index[register.OfferDenom]
		if !ok {
			continue
		}
		ask, ok := index[register.AskDenom]
		if !ok {
			continue
		}
		spot := math.LegacyNewDecFromInt(normalized[ask]).Quo(math.LegacyNewDecFromInt(normalized[offer]))
		pool.CumulativePrices[i].Value = register.Value.Add(spot.MulInt64(elapsed).TruncateInt())
	}
}

// GetPoolTWAP returns the TWAP record for a pool, if one has been written.
func (k Keeper) GetPoolTWAP(ctx context.Context, poolID uint64) (types.PoolTWAP, bool, error) {
	store := k.getStore(ctx)
	bz := store.Get(PoolTWAPKey(poolID))
	if bz == nil {
		return types.PoolTWAP{}, false, nil
	}
	var twap types.PoolTWAP
	if err := json.Unmarshal(bz, &twap); err != nil {
		return types.PoolTWAP{}, false, fmt.Errorf("GetPoolTWAP: unmarshal pool %d: %w", poolID, err)
	}
	return twap, true, nil
}

// SetPoolTWAP persists a TWAP record
func (k Keeper) SetPoolTWAP(ctx context.Context, twap types.PoolTWAP) error {
	bz, err := json.Marshal(twap)
	if err != nil {
		return fmt.Errorf("SetPoolTWAP: marshal pool %d: %w", twap.PoolId, err)
	}
	k.getStore(ctx).Set(PoolTWAPKey(twap.PoolId), bz)
	return nil
}

// recordPoolPrice updates the pool's TWAP record with the instantaneous price
// of the first asset pair and forwards it to the oracle sink. Sink failures
// are logged but never revert the triggering operation.
func (k Keeper) recordPoolPrice(ctx context.Context, pool types.Pool, now int64) {
	if pool.HasZeroReserve() {
		return
	}

	normalized := pool.NormalizedBalances()
	price := math.LegacyNewDecFromInt(normalized[1]).Quo(math.LegacyNewDecFromInt(normalized[0]))

	twap, found, err := k.GetPoolTWAP(ctx, pool.Id)
	if err != nil {
		k.Logger(ctx).Error("failed to load TWAP record", "pool_id", pool.Id, "error", err)
		return
	}
	if !found {
		twap = types.PoolTWAP{
			PoolId:          pool.Id,
			OfferDenom:      pool.Assets[0].Denom,
			AskDenom:        pool.Assets[1].Denom,
			LastPrice:       price,
			CumulativePrice: math.LegacyZeroDec(),
			TwapPrice:       price,
			LastTimestamp:   now,
		}
	} else {
		elapsed := now - twap.LastTimestamp
		if elapsed > 0 {
			twap.CumulativePrice = twap.CumulativePrice.Add(twap.LastPrice.MulInt64(elapsed))
			twap.TotalSeconds += elapsed
			twap.TwapPrice = twap.CumulativePrice.QuoInt64(twap.TotalSeconds)
			twap.LastTimestamp = now
		}
		twap.LastPrice = price
	}

	if err := k.SetPoolTWAP(ctx, twap); err != nil {
		k.Logger(ctx).Error("failed to store TWAP record", "pool_id", pool.Id, "error", err)
		return
	}

	if k.oracleSink != nil {
		if err := k.oracleSink.RecordPrice(ctx, pool.Id, price, now); err != nil {
			k.Logger(ctx).Error("oracle sink rejected price", "pool_id", pool.Id, "error", err)
		}
	}

	m := GetMetrics()
	m.TWAPUpdates.Inc()
	twapPrice, _ := twap.TwapPrice.Float64()
	m.TWAPValue.WithLabelValues(fmt.Sprintf("%d", pool.Id)).Set(twapPrice)
}
