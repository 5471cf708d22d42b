package keeper

import (
	"context"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/nectar-chain/nectar/x/stableswap/types"
)

// Keeper of the stableswap store
type Keeper struct {
	storeKey   storetypes.StoreKey
	bankKeeper types.BankKeeper
	oracleSink types.OracleSink

	// authority can start/stop amp ramps and freeze pools (typically gov)
	authority string

	moduleAddressCache sdk.AccAddress
}

// NewKeeper creates a new stableswap Keeper instance. oracleSink may be nil
// when no external oracle is wired; prices are still accumulated in state.
func NewKeeper(
	key storetypes.StoreKey,
	bankKeeper types.BankKeeper,
	oracleSink types.OracleSink,
	authority string,
) Keeper {
	return Keeper{
		storeKey:           key,
		bankKeeper:         bankKeeper,
		oracleSink:         oracleSink,
		authority:          authority,
		moduleAddressCache: authtypes.NewModuleAddress(types.ModuleName),
	}
}

// GetAuthority returns the module's configured authority address.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// GetModuleAddress returns the cached module account address holding the
// pooled reserves and the locked minimum-liquidity shares.
func (k Keeper) GetModuleAddress() sdk.AccAddress {
	return k.moduleAddressCache
}

// Logger returns a module-tagged logger.
func (k Keeper) Logger(ctx context.Context) log.Logger {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.Logger().With("module", "x/"+types.ModuleName)
}

// getStore returns the KVStore for the stableswap module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.KVStore(k.storeKey)
}
