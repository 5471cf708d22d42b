package types

import (
	"cosmossdk.io/math"
)

// PoolTWAP is the time-weighted average price record kept per pool for the
// first asset pair. It is updated on every state-changing pool operation and
// mirrors what is forwarded to the oracle sink.
type PoolTWAP struct {
	PoolId          uint64         `json:"pool_id"`
	OfferDenom      string         `json:"offer_denom"`
	AskDenom        string         `json:"ask_denom"`
	LastPrice       math.LegacyDec `json:"last_price"`
	CumulativePrice math.LegacyDec `json:"cumulative_price"`
	TwapPrice       math.LegacyDec `json:"twap_price"`
	LastTimestamp   int64          `json:"last_timestamp"`
	TotalSeconds    int64          `json:"total_seconds"`
}
