package keeper

import (
	"sync"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the stableswap module
type Metrics struct {
	// Swap metrics
	SwapsTotal        *prometheus.CounterVec
	SwapVolume        *prometheus.CounterVec
	SwapFeesCollected *prometheus.CounterVec
	SwapSpread        prometheus.Histogram

	// Liquidity metrics
	LiquidityAdded   *prometheus.CounterVec
	LiquidityRemoved *prometheus.CounterVec
	LPShareSupply    *prometheus.GaugeVec

	// Pool metrics
	PoolCreations prometheus.Counter
	PoolsFrozen   *prometheus.GaugeVec
	AmpValue      *prometheus.GaugeVec

	// TWAP metrics
	TWAPUpdates prometheus.Counter
	TWAPValue   *prometheus.GaugeVec
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
)

// NewMetrics creates and registers stableswap metrics (singleton pattern)
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "nectar",
					Subsystem: "stableswap",
					Name:      "swaps_total",
					Help:      "Total number of swaps executed",
				},
				[]string{"pool_id", "offer_denom", "ask_denom"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "nectar",
					Subsystem: "stableswap",
					Name:      "swap_volume_total",
					Help:      "Total swap volume in base units",
				},
				[]string{"pool_id", "denom"},
			),
			SwapFeesCollected: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "nectar",
					Subsystem: "stableswap",
					Name:      "swap_fees_collected_total",
					Help:      "Total swap commission collected",
				},
				[]string{"pool_id", "denom"},
			),
			SwapSpread: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: "nectar",
					Subsystem: "stableswap",
					Name:      "swap_spread_percent",
					Help:      "Realized swap spread percentage",
					Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.0, 5.0},
				},
			),
			LiquidityAdded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "nectar",
					Subsystem: "stableswap",
					Name:      "liquidity_added_total",
					Help:      "Total liquidity added to pools",
				},
				[]string{"pool_id", "denom"},
			),
			LiquidityRemoved: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "nectar",
					Subsystem: "stableswap",
					Name:      "liquidity_removed_total",
					Help:      "Total liquidity removed from pools",
				},
				[]string{"pool_id", "denom"},
			),
			LPShareSupply: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "nectar",
					Subsystem: "stableswap",
					Name:      "lp_share_supply",
					Help:      "LP share supply per pool",
				},
				[]string{"pool_id"},
			),
			PoolCreations: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "nectar",
					Subsystem: "stableswap",
					Name:      "pool_creations_total",
					Help:      "Total number of pools created",
				},
			),
			PoolsFrozen: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "nectar",
					Subsystem: "stableswap",
					Name:      "pool_frozen",
					Help:      "Pool freeze status (0=active, 1=frozen)",
				},
				[]string{"pool_id"},
			),
			AmpValue: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "nectar",
					Subsystem: "stableswap",
					Name:      "amplification",
					Help:      "Effective amplification coefficient per pool",
				},
				[]string{"pool_id"},
			),
			TWAPUpdates: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "nectar",
					Subsystem: "stableswap",
					Name:      "twap_updates_total",
					Help:      "Total TWAP update operations",
				},
			),
			TWAPValue: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "nectar",
					Subsystem: "stableswap",
					Name:      "twap_price",
					Help:      "Time-weighted average price",
				},
				[]string{"pool_id"},
			),
		}
	})
	return metrics
}

// GetMetrics returns the singleton stableswap metrics instance
func GetMetrics() *Metrics {
	if metrics == nil {
		return NewMetrics()
	}
	return metrics
}

// intToFloat converts a chain amount to a float for metric export without
// panicking on values beyond int64.
func intToFloat(amount math.Int) float64 {
	f, _ := math.LegacyNewDecFromInt(amount).Float64()
	return f
}
