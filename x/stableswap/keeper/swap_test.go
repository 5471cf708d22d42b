package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	keepertest "github.com/nectar-chain/nectar/testutil/keeper"
	"github.com/nectar-chain/nectar/x/stableswap/keeper"
	"github.com/nectar-chain/nectar/x/stableswap/types"
)

func TestSwap_Basic(t *testing.T) {
	k, bank, ctx, pool := setupPool(t)

	offer := sdk.NewCoin("uusdc", math.NewInt(100_000))
	bank.FundAccount(traderAddr, sdk.NewCoins(offer))

	result, err := k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", nil, nil, nil)
	require.NoError(t, err)

	require.True(t, result.ReturnAmount.IsPositive())
	require.True(t, result.ReturnAmount.LT(offer.Amount))
	require.True(t, result.CommissionAmount.IsPositive())
	require.True(t, result.ProtocolFee.IsZero(), "no fee collector configured")

	// the commission matches the configured rate on the gross return
	params, err := k.GetParams(ctx)
	require.NoError(t, err)
	gross := result.ReturnAmount.Add(result.CommissionAmount)
	require.Equal(t, params.TotalFeeRate.MulInt(gross).TruncateInt(), result.CommissionAmount)

	// trader paid the offer and received the net return
	require.True(t, bank.Balance(traderAddr, "uusdc").IsZero())
	require.Equal(t, result.ReturnAmount, bank.Balance(traderAddr, "uusdt"))

	// offer side grows by the full offer; ask side shrinks only by the net
	// return, the retained commission accrues to LPs
	stored, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_100_000), stored.Assets[0].Reserve)
	require.Equal(t, math.NewInt(1_000_000).Sub(result.ReturnAmount), stored.Assets[1].Reserve)
}

func TestSwap_NearParityReturn(t *testing.T) {
	k, bank, ctx, pool := setupPool(t)

	offer := sdk.NewCoin("uusdc", math.NewInt(10_000))
	bank.FundAccount(traderAddr, sdk.NewCoins(offer))

	result, err := k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", nil, nil, nil)
	require.NoError(t, err)

	// a 1% trade against amp 100 returns within ~0.5% of parity
	minReturn := math.NewInt(9_950)
	require.True(t, result.ReturnAmount.GTE(minReturn),
		"return %s below the near-parity floor %s", result.ReturnAmount, minReturn)
}

func TestSwap_ProtocolFeeForwarded(t *testing.T) {
	k, bank, ctx, pool := setupPool(t)

	collector := sdk.AccAddress([]byte("collector___________"))
	params, err := k.GetParams(ctx)
	require.NoError(t, err)
	params.FeeCollector = collector.String()
	require.NoError(t, k.SetParams(ctx, params))

	offer := sdk.NewCoin("uusdc", math.NewInt(100_000))
	bank.FundAccount(traderAddr, sdk.NewCoins(offer))

	result, err := k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", nil, nil, nil)
	require.NoError(t, err)

	require.Equal(t, params.ProtocolFeeShare.MulInt(result.CommissionAmount).TruncateInt(), result.ProtocolFee)
	require.Equal(t, result.ProtocolFee, bank.Balance(collector, "uusdt"))

	stored, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t,
		math.NewInt(1_000_000).Sub(result.ReturnAmount).Sub(result.ProtocolFee),
		stored.Assets[1].Reserve)
}

func TestSwap_ToReceiver(t *testing.T) {
	k, bank, ctx, pool := setupPool(t)

	offer := sdk.NewCoin("uusdc", math.NewInt(50_000))
	bank.FundAccount(traderAddr, sdk.NewCoins(offer))

	result, err := k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", nil, nil, receiverAddr)
	require.NoError(t, err)

	require.Equal(t, result.ReturnAmount, bank.Balance(receiverAddr, "uusdt"))
	require.True(t, bank.Balance(traderAddr, "uusdt").IsZero())
}

func TestSwap_MaxSpreadRejectsLargeTrade(t *testing.T) {
	k, bank, ctx, pool := setupPool(t)

	offer := sdk.NewCoin("uusdc", math.NewInt(900_000))
	bank.FundAccount(traderAddr, sdk.NewCoins(offer))

	belief := math.LegacyOneDec()
	limit := math.LegacyNewDecWithPrec(1, 3) // 0.1%

	_, err := k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", &belief, &limit, nil)
	require.ErrorIs(t, err, types.ErrMaxSpreadAssertion)

	// nothing moved
	require.Equal(t, offer.Amount, bank.Balance(traderAddr, "uusdc"))
	stored, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_000_000), stored.Assets[0].Reserve)
}

func TestSwap_Frozen(t *testing.T) {
	k, bank, ctx, pool := setupPool(t)
	require.NoError(t, k.SetFrozen(ctx, keepertest.TestAuthority, pool.Id, true))

	offer := sdk.NewCoin("uusdc", math.NewInt(1_000))
	bank.FundAccount(traderAddr, sdk.NewCoins(offer))

	_, err := k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", nil, nil, nil)
	require.ErrorIs(t, err, types.ErrPoolFrozen)
}

func TestSwap_TradingNotStarted(t *testing.T) {
	k, bank, ctx := keepertest.StableswapKeeper(t)
	bank.SetDenomMetadata("uusdc", 6)
	bank.SetDenomMetadata("uusdt", 6)

	tradingStarts := ctx.BlockTime().Add(time.Hour).Unix()
	pool, err := k.CreatePool(ctx, creatorAddr, []string{"uusdc", "uusdt"}, 100, tradingStarts)
	require.NoError(t, err)

	bank.FundAccount(creatorAddr, sdk.NewCoins(
		sdk.NewCoin("uusdc", math.NewInt(1_000_000)),
		sdk.NewCoin("uusdt", math.NewInt(1_000_000)),
	))
	_, err = k.ProvideLiquidity(ctx, creatorAddr, pool.Id, sdk.NewCoins(
		sdk.NewCoin("uusdc", math.NewInt(1_000_000)),
		sdk.NewCoin("uusdt", math.NewInt(1_000_000)),
	), nil)
	require.NoError(t, err)

	offer := sdk.NewCoin("uusdc", math.NewInt(1_000))
	bank.FundAccount(traderAddr, sdk.NewCoins(offer))

	_, err = k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", nil, nil, nil)
	require.ErrorIs(t, err, types.ErrTradingNotStarted)

	ctx = ctx.WithBlockTime(time.Unix(tradingStarts, 0))
	_, err = k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", nil, nil, nil)
	require.NoError(t, err)
}

func TestSwap_UnknownAsset(t *testing.T) {
	k, bank, ctx, pool := setupPool(t)

	offer := sdk.NewCoin("uatom", math.NewInt(1_000))
	bank.FundAccount(traderAddr, sdk.NewCoins(offer))

	_, err := k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", nil, nil, nil)
	require.ErrorIs(t, err, types.ErrInvalidAsset)

	_, err = k.Swap(ctx, traderAddr, pool.Id, sdk.NewCoin("uusdc", math.NewInt(1_000)), "uatom", nil, nil, nil)
	require.ErrorIs(t, err, types.ErrInvalidAsset)
}

func TestSwap_EmptyPool(t *testing.T) {
	k, bank, ctx := keepertest.StableswapKeeper(t)
	bank.SetDenomMetadata("uusdc", 6)
	bank.SetDenomMetadata("uusdt", 6)

	pool, err := k.CreatePool(ctx, creatorAddr, []string{"uusdc", "uusdt"}, 100, 0)
	require.NoError(t, err)

	offer := sdk.NewCoin("uusdc", math.NewInt(1_000))
	bank.FundAccount(traderAddr, sdk.NewCoins(offer))

	_, err = k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", nil, nil, nil)
	require.ErrorIs(t, err, types.ErrInsufficientLiquidity)
}

func TestSimulateSwap_MatchesSwap(t *testing.T) {
	k, bank, ctx, pool := setupPool(t)

	offer := sdk.NewCoin("uusdc", math.NewInt(25_000))
	simulated, err := k.SimulateSwap(ctx, pool.Id, offer, "uusdt")
	require.NoError(t, err)

	bank.FundAccount(traderAddr, sdk.NewCoins(offer))
	executed, err := k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", nil, nil, nil)
	require.NoError(t, err)

	require.Equal(t, simulated.ReturnAmount, executed.ReturnAmount)
	require.Equal(t, simulated.CommissionAmount, executed.CommissionAmount)
	require.Equal(t, simulated.SpreadAmount, executed.SpreadAmount)
}

func TestSimulateSwap_DoesNotMutate(t *testing.T) {
	k, _, ctx, pool := setupPool(t)

	_, err := k.SimulateSwap(ctx, pool.Id, sdk.NewCoin("uusdc", math.NewInt(25_000)), "uusdt")
	require.NoError(t, err)

	stored, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	require.Equal(t, math.NewInt(1_000_000), stored.Assets[0].Reserve)
	require.Equal(t, math.NewInt(1_000_000), stored.Assets[1].Reserve)
}

func TestSimulateReverseSwap_QuotesSufficientOffer(t *testing.T) {
	k, _, ctx, pool := setupPool(t)

	desired := sdk.NewCoin("uusdt", math.NewInt(50_000))
	offerAmount, err := k.SimulateReverseSwap(ctx, pool.Id, "uusdc", desired)
	require.NoError(t, err)
	require.True(t, offerAmount.GT(desired.Amount), "the quote covers commission and slippage")

	forward, err := k.SimulateSwap(ctx, pool.Id, sdk.NewCoin("uusdc", offerAmount), "uusdt")
	require.NoError(t, err)
	require.True(t, forward.ReturnAmount.GTE(desired.Amount.SubRaw(2)),
		"forward swap of the quoted offer returns %s, wanted ~%s", forward.ReturnAmount, desired.Amount)
}

func TestSpotPrice_BalancedPoolAtParity(t *testing.T) {
	k, _, ctx, pool := setupPool(t)

	price, err := k.SpotPrice(ctx, pool.Id, "uusdc", "uusdt")
	require.NoError(t, err)
	require.Equal(t, math.LegacyOneDec(), price)

	_, err = k.SpotPrice(ctx, pool.Id, "uusdc", "uatom")
	require.ErrorIs(t, err, types.ErrInvalidAsset)
}

func TestSwap_ZeroAmount(t *testing.T) {
	k, _, ctx, pool := setupPool(t)

	_, err := k.Swap(ctx, traderAddr, pool.Id, sdk.NewCoin("uusdc", math.ZeroInt()), "uusdt", nil, nil, nil)
	require.ErrorIs(t, err, types.ErrZeroAmount)
}

func TestSwap_FeeBearingSwapGrowsInvariant(t *testing.T) {
	k, bank, ctx, pool := setupPool(t)

	amp := pool.CurrentAmp(ctx.BlockTime().Unix())
	before, err := types.ComputeD(amp, pool.NormalizedBalances())
	require.NoError(t, err)

	offer := sdk.NewCoin("uusdc", math.NewInt(100_000))
	bank.FundAccount(traderAddr, sdk.NewCoins(offer))
	_, err = k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", nil, nil, nil)
	require.NoError(t, err)

	stored, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	after, err := types.ComputeD(amp, stored.NormalizedBalances())
	require.NoError(t, err)

	// with no fee collector the whole commission stays in the reserves, so
	// the invariant must grow
	require.True(t, after.GT(before), "D went from %s to %s", before, after)
}

func TestSwap_ZeroFeeSwapPreservesInvariant(t *testing.T) {
	k, bank, ctx, pool := setupPool(t)

	params, err := k.GetParams(ctx)
	require.NoError(t, err)
	params.TotalFeeRate = math.LegacyZeroDec()
	require.NoError(t, k.SetParams(ctx, params))

	amp := pool.CurrentAmp(ctx.BlockTime().Unix())
	before, err := types.ComputeD(amp, pool.NormalizedBalances())
	require.NoError(t, err)

	offer := sdk.NewCoin("uusdc", math.NewInt(100_000))
	bank.FundAccount(traderAddr, sdk.NewCoins(offer))
	_, err = k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", nil, nil, nil)
	require.NoError(t, err)

	stored, err := k.GetPool(ctx, pool.Id)
	require.NoError(t, err)
	after, err := types.ComputeD(amp, stored.NormalizedBalances())
	require.NoError(t, err)

	// without a commission the trade moves along the curve; only the solver
	// truncation may shift D, by at most a unit per solve
	require.True(t, after.Sub(before).Abs().LTE(math.NewInt(2)),
		"D went from %s to %s", before, after)
}

func TestSwap_ObservesSpreadHistogram(t *testing.T) {
	k, bank, ctx, pool := setupPool(t)

	before := swapSpreadSampleCount(t)

	offer := sdk.NewCoin("uusdc", math.NewInt(100_000))
	bank.FundAccount(traderAddr, sdk.NewCoins(offer))
	_, err := k.Swap(ctx, traderAddr, pool.Id, offer, "uusdt", nil, nil, nil)
	require.NoError(t, err)

	require.Equal(t, before+1, swapSpreadSampleCount(t))
}

func swapSpreadSampleCount(t *testing.T) uint64 {
	t.Helper()
	var pb dto.Metric
	require.NoError(t, keeper.GetMetrics().SwapSpread.Write(&pb))
	return pb.GetHistogram().GetSampleCount()
}
