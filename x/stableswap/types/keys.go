package types

import "fmt"

const (
	// ModuleName defines the module name
	ModuleName = "stableswap"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName

	// Event types
	EventTypePoolCreated       = "stableswap_pool_created"
	EventTypeSwap              = "stableswap_swap"
	EventTypeProvideLiquidity  = "stableswap_provide_liquidity"
	EventTypeWithdrawLiquidity = "stableswap_withdraw_liquidity"
	EventTypeAmpRampStarted    = "stableswap_amp_ramp_started"
	EventTypeAmpRampStopped    = "stableswap_amp_ramp_stopped"
	EventTypeFreeze            = "stableswap_freeze"

	// Event attribute keys
	AttributeKeyPoolID         = "pool_id"
	AttributeKeyCreator        = "creator"
	AttributeKeyTrader         = "trader"
	AttributeKeyReceiver       = "receiver"
	AttributeKeyOfferAsset     = "offer_asset"
	AttributeKeyAskAsset       = "ask_asset"
	AttributeKeyOfferAmount    = "offer_amount"
	AttributeKeyReturnAmount   = "return_amount"
	AttributeKeySpreadAmount   = "spread_amount"
	AttributeKeyCommission     = "commission_amount"
	AttributeKeyProtocolFee    = "protocol_fee_amount"
	AttributeKeyAssets         = "assets"
	AttributeKeyShares         = "shares"
	AttributeKeyRefundAssets   = "refund_assets"
	AttributeKeyBurnedShares   = "burned_shares"
	AttributeKeyInitAmp        = "init_amp"
	AttributeKeyNextAmp        = "next_amp"
	AttributeKeyNextAmpTime    = "next_amp_time"
	AttributeKeyFrozen         = "frozen"
)

// LpDenom returns the LP share denom for a pool.
func LpDenom(poolID uint64) string {
	return fmt.Sprintf("%s/%d/lp", ModuleName, poolID)
}
