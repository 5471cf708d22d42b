package types

import (
	"context"

	sdkmath "cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
)

// BankKeeper is the token ledger the stableswap module depends on: it moves
// pooled assets in and out of the module account, mints/burns LP shares and
// resolves asset decimals from denom metadata.
type BankKeeper interface {
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	BurnCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	GetDenomMetaData(ctx context.Context, denom string) (banktypes.Metadata, bool)
}

// OracleSink receives the pool's instantaneous relative price for TWAP
// bookkeeping. Timestamps are monotonically non-decreasing; a duplicate
// timestamp must be a no-op on the sink side.
type OracleSink interface {
	RecordPrice(ctx context.Context, poolID uint64, price sdkmath.LegacyDec, timestamp int64) error
}
